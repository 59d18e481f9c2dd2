package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/layer-3/teller/core"
	"github.com/layer-3/teller/credential"
	"github.com/layer-3/teller/ports"
	"github.com/layer-3/teller/receipt"
	"github.com/layer-3/teller/validator"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// pinBufferSize fits a full PIN plus terminator
const pinBufferSize = credential.PinLength + 1

// Options tune the teller's policies
type Options struct {
	MaxPinAttempts int
	LockoutTTL     time.Duration
	SessionTTL     time.Duration
	DailyLimit     decimal.Decimal
	MinBalance     decimal.Decimal
	BankName       string
	TerminalID     string
}

// DefaultOptions mirror the bank's standard terminal policy
func DefaultOptions() Options {
	return Options{
		MaxPinAttempts: 3,
		LockoutTTL:     24 * time.Hour,
		SessionTTL:     60 * time.Second,
		DailyLimit:     decimal.NewFromInt(10_000_000),
		MinBalance:     decimal.NewFromInt(50_000),
		BankName:       "BANKING ECOSYSTEM",
		TerminalID:     "ATM-001",
	}
}

// WithdrawalRequest carries the account figures a withdrawal is checked against.
// DailyLimit and MinBalance override the terminal defaults when valid.
type WithdrawalRequest struct {
	Amount           decimal.Decimal
	Balance          decimal.Decimal
	AlreadyWithdrawn decimal.Decimal
	DailyLimit       decimal.NullDecimal
	MinBalance       decimal.NullDecimal
}

// TransferRequest carries a transfer and the balance it is debited from
type TransferRequest struct {
	Amount      decimal.Decimal
	Balance     decimal.Decimal
	Destination string
	MinBalance  decimal.NullDecimal
}

// Result describes a completed transaction
type Result struct {
	SessionID string
	Amount    decimal.Decimal
	Receipt   string
	Printed   bool
}

// TellerService drives one terminal's session through its lifecycle. Every
// transition is requested only after the matching credential or monetary
// check has passed.
type TellerService struct {
	mu        sync.Mutex
	machine   *core.Machine
	session   *core.Session
	devices   ports.Peripherals
	guard     *credential.Guard
	validator validator.Validator
	attempts  ports.AttemptStore
	tokenizer ports.Tokenizer
	eventPub  ports.EventPublisher
	logger    *zap.Logger
	opts      Options
	now       func() time.Time
}

// NewTellerService creates a teller with its own state machine
func NewTellerService(
	devices ports.Peripherals,
	guard *credential.Guard,
	v validator.Validator,
	attempts ports.AttemptStore,
	tokenizer ports.Tokenizer,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
	opts Options,
) *TellerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxPinAttempts < 1 {
		opts.MaxPinAttempts = DefaultOptions().MaxPinAttempts
	}

	s := &TellerService{
		devices:   devices,
		guard:     guard,
		validator: v,
		attempts:  attempts,
		tokenizer: tokenizer,
		eventPub:  eventPub,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
	s.machine = core.NewMachine().WithObserver(func(from, to core.State) {
		s.logger.Debug("state changed", zap.Stringer("from", from), zap.Stringer("to", to))
	})

	return s
}

// State returns the current session state
func (s *TellerService) State() core.State {
	return s.machine.Current()
}

// Session returns a copy of the active session, or nil when Idle
func (s *TellerService) Session() *core.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return nil
	}
	cp := *s.session
	return &cp
}

// InsertCard opens a session for cardNumber
func (s *TellerService) InsertCard(ctx context.Context, cardNumber string) (*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.machine.Current(); !core.CanTransition(current, core.CardPresent) {
		return nil, fmt.Errorf("insert card in %s: %w", current, core.ErrInvalidTransition)
	}

	failures, err := s.attempts.Failures(ctx, cardNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to check pin attempts: %w", err)
	}
	if failures >= s.opts.MaxPinAttempts {
		s.logger.Warn("locked card refused", zap.String("card", core.MaskCard(cardNumber)))
		return nil, core.ErrCardLocked
	}

	if err := s.devices.Card.Insert(cardNumber); err != nil {
		return nil, fmt.Errorf("card reader: %w", err)
	}

	now := s.now()
	s.session = &core.Session{
		ID:         uuid.New().String(),
		CardNumber: cardNumber,
		StartedAt:  now,
		ExpiresAt:  now.Add(s.opts.SessionTTL),
	}

	if err := s.transition(ctx, core.CardPresent); err != nil {
		_ = s.devices.Card.Eject()
		s.session = nil
		return nil, err
	}

	s.logger.Info("card accepted",
		zap.String("session_id", s.session.ID),
		zap.String("card", s.session.MaskedCard()),
	)

	cp := *s.session
	return &cp, nil
}

// BeginPinEntry readies the keypad and moves to PinEntry
func (s *TellerService) BeginPinEntry(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.machine.Current(); !core.CanTransition(current, core.PinEntry) {
		return fmt.Errorf("begin pin entry in %s: %w", current, core.ErrInvalidTransition)
	}
	if s.session.Expired(s.now()) {
		return s.expire(ctx)
	}

	if err := s.devices.Keypad.Ready(pinBufferSize); err != nil {
		return fmt.Errorf("keypad: %w", err)
	}

	return s.transition(ctx, core.PinEntry)
}

// SubmitPin checks a PIN obfuscated at the keypad against the stored hash.
// A malformed PIN leaves the session in PinEntry. A wrong PIN fails the
// session and counts towards the card's lockout.
func (s *TellerService) SubmitPin(ctx context.Context, encodedPin string, expected credential.Hash) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if current := s.machine.Current(); current != core.PinEntry {
		return fmt.Errorf("submit pin in %s: %w", current, core.ErrInvalidTransition)
	}
	if s.session.Expired(s.now()) {
		return s.expire(ctx)
	}

	pin, err := s.guard.Deobfuscate(encodedPin)
	if err != nil {
		return err
	}
	if err := credential.ValidatePinFormat(pin); err != nil {
		return err
	}

	if !credential.VerifyPin(pin, expected) {
		return s.rejectPin(ctx)
	}

	if err := s.attempts.Clear(ctx, s.session.CardNumber); err != nil {
		s.logger.Warn("failed to clear pin attempts", zap.Error(err))
	}

	now := s.now()
	authenticated := *s.session
	authenticated.AuthenticatedAt = now
	authenticated.ExpiresAt = now.Add(s.opts.SessionTTL)

	token, err := s.tokenizer.SessionToToken(&authenticated)
	if err != nil {
		return fmt.Errorf("failed to issue session token: %w", err)
	}
	authenticated.AuthToken = token

	if err := s.transition(ctx, core.Authenticated); err != nil {
		return err
	}
	s.session = &authenticated

	s.logger.Info("pin verified", zap.String("session_id", s.session.ID))
	return nil
}

func (s *TellerService) rejectPin(ctx context.Context) error {
	card := s.session.CardNumber

	if err := s.transition(ctx, core.Failed); err != nil {
		return err
	}

	count, err := s.attempts.RecordFailure(ctx, card, s.opts.LockoutTTL)
	if err != nil {
		s.logger.Error("failed to record pin attempt", zap.Error(err))
		return errors.Join(core.ErrPinMismatch, fmt.Errorf("failed to record pin attempt: %w", err))
	}

	s.logger.Warn("pin rejected",
		zap.String("session_id", s.session.ID),
		zap.Int("attempt", count),
		zap.Int("max_attempts", s.opts.MaxPinAttempts),
	)

	if count >= s.opts.MaxPinAttempts {
		return errors.Join(core.ErrPinMismatch, core.ErrCardLocked)
	}
	return core.ErrPinMismatch
}

// Withdraw checks the request against the daily limit and balance floor,
// pays out the cash and completes the session
func (s *TellerService) Withdraw(ctx context.Context, req WithdrawalRequest) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.startTransaction(ctx); err != nil {
		return nil, err
	}

	dailyLimit := s.opts.DailyLimit
	if req.DailyLimit.Valid {
		dailyLimit = req.DailyLimit.Decimal
	}
	minBalance := s.opts.MinBalance
	if req.MinBalance.Valid {
		minBalance = req.MinBalance.Decimal
	}

	if err := s.validator.CheckWithdrawalLimit(req.Amount, dailyLimit, req.AlreadyWithdrawn); err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := s.validator.CheckSufficientBalance(req.Balance, req.Amount, minBalance); err != nil {
		return nil, s.fail(ctx, err)
	}
	if req.Amount.GreaterThan(s.devices.Cash.Remaining()) {
		return nil, s.fail(ctx, core.ErrInsufficientCash)
	}

	if err := s.transition(ctx, core.Dispensing); err != nil {
		return nil, err
	}
	if err := s.devices.Cash.Dispense(req.Amount); err != nil {
		return nil, s.fail(ctx, fmt.Errorf("cash dispenser: %w", err))
	}
	if err := s.transition(ctx, core.Completed); err != nil {
		return nil, err
	}

	s.logger.Info("withdrawal completed",
		zap.String("session_id", s.session.ID),
		zap.Stringer("amount", req.Amount),
	)

	return s.complete("WITHDRAWAL", req.Amount, func(b *receipt.Builder) {
		b.Amount("Balance", req.Balance.Sub(req.Amount))
	}), nil
}

// Transfer checks the amount against the ceiling and balance floor and
// completes the session
func (s *TellerService) Transfer(ctx context.Context, req TransferRequest) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if req.Destination == "" {
		return nil, fmt.Errorf("transfer destination: %w", core.ErrInvalidInput)
	}
	if err := s.startTransaction(ctx); err != nil {
		return nil, err
	}

	minBalance := s.opts.MinBalance
	if req.MinBalance.Valid {
		minBalance = req.MinBalance.Decimal
	}

	if err := s.validator.CheckTransferAmount(req.Amount); err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := s.validator.CheckSufficientBalance(req.Balance, req.Amount, minBalance); err != nil {
		return nil, s.fail(ctx, err)
	}
	if err := s.transition(ctx, core.Completed); err != nil {
		return nil, err
	}

	s.logger.Info("transfer completed",
		zap.String("session_id", s.session.ID),
		zap.Stringer("amount", req.Amount),
	)

	return s.complete("TRANSFER", req.Amount, func(b *receipt.Builder) {
		b.Field("To", req.Destination)
		b.Amount("Balance", req.Balance.Sub(req.Amount))
	}), nil
}

// EndSession ejects the card and returns the terminal to Idle
func (s *TellerService) EndSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return core.ErrNoSession
	}
	return s.end(ctx)
}

// Recover forces the terminal back to Idle from any state
func (s *TellerService) Recover(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from := s.machine.Current()
	s.machine.Reset()
	if s.devices.Card.IsInserted() {
		_ = s.devices.Card.Eject()
	}

	if s.session != nil {
		s.publish(ctx, s.session.ID, from, core.Idle)
		s.logger.Warn("session reset", zap.String("session_id", s.session.ID), zap.Stringer("from", from))
	}
	s.session = nil
}

// startTransaction confirms the session token is still valid and moves to
// TransactionInProgress. An expired session is closed.
func (s *TellerService) startTransaction(ctx context.Context) error {
	if current := s.machine.Current(); current != core.Authenticated {
		return fmt.Errorf("start transaction in %s: %w", current, core.ErrInvalidTransition)
	}

	if _, err := s.tokenizer.TokenToSession(s.session.AuthToken); err != nil {
		if errors.Is(err, core.ErrSessionExpired) {
			return s.expire(ctx)
		}
		return fmt.Errorf("session token: %w", err)
	}

	return s.transition(ctx, core.TransactionInProgress)
}

// expire closes a session whose inactivity window has lapsed
func (s *TellerService) expire(ctx context.Context) error {
	s.logger.Info("session expired",
		zap.String("session_id", s.session.ID),
		zap.String("state", s.machine.Current().String()),
	)
	if err := s.end(ctx); err != nil {
		return errors.Join(core.ErrSessionExpired, err)
	}
	return core.ErrSessionExpired
}

func (s *TellerService) complete(kind string, amount decimal.Decimal, body func(*receipt.Builder)) *Result {
	b := receipt.New().
		Header(s.opts.BankName, s.opts.TerminalID, s.now()).
		Field("Type", kind).
		Field("Card", s.session.MaskedCard()).
		Amount("Amount", amount)
	body(b)
	text := b.Separator().Footer(kind).String()

	result := &Result{SessionID: s.session.ID, Amount: amount, Receipt: text}

	if !s.devices.Printer.IsReady() {
		s.logger.Warn("receipt printer not ready", zap.String("session_id", s.session.ID))
		return result
	}
	if err := s.devices.Printer.Print(text); err != nil {
		s.logger.Error("failed to print receipt", zap.String("session_id", s.session.ID), zap.Error(err))
		return result
	}
	result.Printed = true

	return result
}

func (s *TellerService) fail(ctx context.Context, cause error) error {
	if err := s.transition(ctx, core.Failed); err != nil {
		return errors.Join(cause, err)
	}

	s.logger.Warn("transaction failed", zap.String("session_id", s.session.ID), zap.Error(cause))
	return cause
}

func (s *TellerService) end(ctx context.Context) error {
	if err := s.transition(ctx, core.Idle); err != nil {
		return err
	}
	if err := s.devices.Card.Eject(); err != nil && !errors.Is(err, core.ErrNoCard) {
		s.logger.Error("failed to eject card", zap.Error(err))
	}

	s.logger.Info("session ended", zap.String("session_id", s.session.ID))
	s.session = nil
	return nil
}

func (s *TellerService) transition(ctx context.Context, to core.State) error {
	from := s.machine.Current()
	if err := s.machine.Transition(to); err != nil {
		return err
	}

	if s.session != nil {
		s.publish(ctx, s.session.ID, from, to)
	}
	return nil
}

func (s *TellerService) publish(ctx context.Context, sessionID string, from, to core.State) {
	if s.eventPub == nil {
		return
	}

	// A lost event must not undo a transition that already happened
	if err := s.eventPub.PublishTransition(ctx, sessionID, from, to, s.now()); err != nil {
		s.logger.Warn("failed to publish transition", zap.String("session_id", sessionID), zap.Error(err))
	}
}
