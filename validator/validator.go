// Package validator holds the monetary rules a transaction must pass before
// the session may move forward. All checks are pure.
package validator

import (
	"fmt"

	"github.com/layer-3/teller/core"
	"github.com/shopspring/decimal"
)

// TransferCeilingUnits is the largest amount a single transfer may carry
const TransferCeilingUnits = 100_000_000

// DefaultTransferCeiling returns TransferCeilingUnits as a decimal
func DefaultTransferCeiling() decimal.Decimal {
	return decimal.NewFromInt(TransferCeilingUnits)
}

// Validator applies the rules with a configured transfer ceiling
type Validator struct {
	transferCeiling decimal.Decimal
}

// New creates a validator. A non-positive ceiling falls back to DefaultTransferCeiling.
func New(transferCeiling decimal.Decimal) Validator {
	if !transferCeiling.IsPositive() {
		transferCeiling = DefaultTransferCeiling()
	}
	return Validator{transferCeiling: transferCeiling}
}

// TransferCeiling returns the ceiling in effect
func (v Validator) TransferCeiling() decimal.Decimal {
	if v.transferCeiling.IsZero() {
		return DefaultTransferCeiling()
	}
	return v.transferCeiling
}

// CheckWithdrawalLimit fails when amount is non-positive or would take the
// day's total past dailyLimit
func (v Validator) CheckWithdrawalLimit(amount, dailyLimit, alreadyWithdrawn decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("withdrawal of %s: %w", amount, core.ErrInvalidAmount)
	}
	if alreadyWithdrawn.Add(amount).GreaterThan(dailyLimit) {
		return fmt.Errorf("%s already withdrawn, %s requested, limit %s: %w",
			alreadyWithdrawn, amount, dailyLimit, core.ErrLimitExceeded)
	}
	return nil
}

// CheckSufficientBalance fails when amount is non-positive or would leave
// less than minBalance in the account
func (v Validator) CheckSufficientBalance(balance, amount, minBalance decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("debit of %s: %w", amount, core.ErrInvalidAmount)
	}
	if balance.Sub(amount).LessThan(minBalance) {
		return fmt.Errorf("balance %s minus %s is under %s: %w", balance, amount, minBalance, core.ErrBelowMinimum)
	}
	return nil
}

// CheckTransferAmount fails when amount is non-positive or above the ceiling.
// The ceiling itself is allowed.
func (v Validator) CheckTransferAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("transfer of %s: %w", amount, core.ErrInvalidAmount)
	}
	if ceiling := v.TransferCeiling(); amount.GreaterThan(ceiling) {
		return fmt.Errorf("transfer of %s over %s: %w", amount, ceiling, core.ErrCeilingExceeded)
	}
	return nil
}

var std = Validator{}

// CheckWithdrawalLimit applies the withdrawal rule
func CheckWithdrawalLimit(amount, dailyLimit, alreadyWithdrawn decimal.Decimal) error {
	return std.CheckWithdrawalLimit(amount, dailyLimit, alreadyWithdrawn)
}

// CheckSufficientBalance applies the minimum-balance rule
func CheckSufficientBalance(balance, amount, minBalance decimal.Decimal) error {
	return std.CheckSufficientBalance(balance, amount, minBalance)
}

// CheckTransferAmount applies the transfer rule with TransferCeilingUnits
func CheckTransferAmount(amount decimal.Decimal) error {
	return std.CheckTransferAmount(amount)
}
