package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/layer-3/teller/adapters/events"
	"github.com/layer-3/teller/adapters/peripheral"
	"github.com/layer-3/teller/adapters/store"
	"github.com/layer-3/teller/adapters/tokenizer"
	"github.com/layer-3/teller/config"
	"github.com/layer-3/teller/credential"
	"github.com/layer-3/teller/logging"
	"github.com/layer-3/teller/ports"
	"github.com/layer-3/teller/service"
	"github.com/layer-3/teller/validator"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	var (
		configDir = flag.String("config-dir", ".", "Directory containing an optional .env file")
		card      = flag.String("card", "4111111111111111", "Card number to insert")
		pin       = flag.String("pin", "123456", "PIN typed at the keypad")
		storedPin = flag.String("stored-pin", "123456", "PIN the account store holds a hash of")
		amount    = flag.String("amount", "500000", "Amount to withdraw")
		balance   = flag.String("balance", "5000000", "Account balance before the withdrawal")
		withdrawn = flag.String("withdrawn", "0", "Amount already withdrawn today")
	)
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	guard, err := credential.NewGuard(cfg.SharedKey)
	if err != nil {
		logger.Fatal("invalid shared key", zap.Error(err))
	}

	// Session tokens only need to outlive one process
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		logger.Fatal("failed to generate signing key", zap.Error(err))
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	attempts, publisher, closeBackends := buildBackends(cfg, logger)
	defer closeBackends()

	devices := peripheral.NewSimulated(os.Stdout, config.Amount(cfg.InitialCash), config.Amount(cfg.Denomination))

	teller := service.NewTellerService(
		devices,
		guard,
		validator.New(config.Amount(cfg.TransferCeiling)),
		attempts,
		tokenizer.NewJWTTokenizer(signKey),
		events.NewWatermillPublisher(publisher),
		logger,
		service.Options{
			MaxPinAttempts: cfg.MaxPinAttempts,
			LockoutTTL:     cfg.LockoutTTL,
			SessionTTL:     cfg.SessionTTL,
			DailyLimit:     config.Amount(cfg.DailyLimit),
			MinBalance:     config.Amount(cfg.MinBalance),
			BankName:       cfg.BankName,
			TerminalID:     cfg.TerminalID,
		},
	)

	if err := run(ctx, teller, guard, *card, *pin, *storedPin, *amount, *balance, *withdrawn); err != nil {
		logger.Error("session failed", zap.Error(err), zap.Stringer("state", teller.State()))
		teller.Recover(ctx)
		os.Exit(1)
	}

	logger.Info("cash remaining", zap.Stringer("amount", devices.Cash.Remaining()))
}

func run(ctx context.Context, teller *service.TellerService, guard *credential.Guard, card, pin, storedPin, amount, balance, withdrawn string) error {
	hash, err := credential.HashPin(storedPin)
	if err != nil {
		return fmt.Errorf("stored pin: %w", err)
	}

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	bal, err := decimal.NewFromString(balance)
	if err != nil {
		return fmt.Errorf("balance: %w", err)
	}
	done, err := decimal.NewFromString(withdrawn)
	if err != nil {
		return fmt.Errorf("withdrawn: %w", err)
	}

	if _, err := teller.InsertCard(ctx, card); err != nil {
		return err
	}
	if err := teller.BeginPinEntry(ctx); err != nil {
		return err
	}

	encoded, err := guard.Obfuscate(pin)
	if err != nil {
		return err
	}
	if err := teller.SubmitPin(ctx, encoded, hash); err != nil {
		return err
	}

	if _, err := teller.Withdraw(ctx, service.WithdrawalRequest{
		Amount:           amt,
		Balance:          bal,
		AlreadyWithdrawn: done,
	}); err != nil {
		return err
	}

	return teller.EndSession(ctx)
}

// buildBackends uses Redis for attempt counting and events when REDIS_URL is
// set, and in-process implementations otherwise
func buildBackends(cfg *config.Config, logger *zap.Logger) (ports.AttemptStore, message.Publisher, func()) {
	wmLogger := watermill.NewStdLogger(false, false)

	if cfg.RedisURL == "" {
		pubSub := gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		return store.NewMemoryStore(), pubSub, func() { _ = pubSub.Close() }
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{
			Client: redisClient,
		},
		wmLogger,
	)
	if err != nil {
		logger.Fatal("failed to create Redis publisher", zap.Error(err))
	}

	return store.NewRedisStore(redisClient), publisher, func() {
		_ = publisher.Close()
		_ = redisClient.Close()
	}
}
