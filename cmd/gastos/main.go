package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"gastos/assets"
	"gastos/internal/agent"
	"gastos/internal/bot"
	"gastos/internal/config"
	"gastos/internal/core"
	ports "gastos/internal/sheets"
	gsheet "gastos/internal/sheets/google"
	mem "gastos/internal/sheets/memory"
	"gastos/internal/session"
	"gastos/internal/tools"
)

func main() {
	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		appender ports.RecordAppender
		wallets  ports.WalletReader
		cats     ports.CategoryReader
		refunds  ports.RefundReader
		scanner  ports.RowScanner
	)

	switch cfg.DataBackend {
	case "sheets":
		cli, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		appender, wallets, cats, refunds, scanner = cli, cli, cli, cli, cli
		logger.Info("Initialized Google Sheets backend", "backend", cfg.DataBackend)
	default:
		store := mem.New(
			[]string{"efectivo", "bcp", "yape"},
			[]core.Category{
				{Name: "comida", Description: "restaurantes y mercado"},
				{Name: "transporte", Description: "bus, taxi y gasolina"},
				{Name: "hogar", Description: "servicios y mantenimiento"},
			},
			[]string{"ana", "luis"},
		)
		appender, wallets, cats, refunds, scanner = store, store, store, store, store
		logger.Info("Initialized memory backend", "backend", cfg.DataBackend)
	}

	if err := probeReferenceSheets(ctx, wallets, cats, refunds); err != nil {
		logger.Error("Reference sheets unreachable", "error", err)
		os.Exit(1)
	}

	instruction := assets.DefaultInstruction
	if cfg.InstructionFile != "" {
		data, err := os.ReadFile(cfg.InstructionFile)
		if err != nil {
			logger.Error("Failed to read instruction file", "error", err, "path", cfg.InstructionFile)
			os.Exit(1)
		}
		instruction = string(data)
	}

	handler := tools.NewHandler(appender, wallets, cats, refunds, scanner)
	ag := agent.New(agent.Config{
		APIKey:         cfg.OpenAIAPIKey,
		BaseURL:        cfg.OpenAIBaseURL,
		Model:          cfg.OpenAIModel,
		Instruction:    instruction,
		MaxSteps:       cfg.AgentMaxSteps,
		MaxToolRetries: cfg.AgentMaxToolRetries,
	}, handler)

	sessions := session.NewStore(cfg.SessionMaxEntries, cfg.SessionTTL, cfg.SessionMaxHistory)

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		logger.Error("Failed to connect to Telegram", "error", err)
		os.Exit(1)
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	logger.Info("Starting gastos bot", "backend", cfg.DataBackend, "model", cfg.OpenAIModel)
	if err := bot.New(api, ag, sessions).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Bot error", "error", err)
		os.Exit(1)
	}

	logger.Info("Bot stopped gracefully")
}

// probeReferenceSheets reads the three reference lists once at startup so a
// misconfigured spreadsheet fails fast instead of on the first user message.
func probeReferenceSheets(ctx context.Context, wallets ports.WalletReader, cats ports.CategoryReader, refunds ports.RefundReader) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		names, err := wallets.Wallets(ctx)
		if err == nil {
			slog.Info("Wallets loaded", "count", len(names))
		}
		return err
	})
	g.Go(func() error {
		list, err := cats.Categories(ctx)
		if err == nil {
			slog.Info("Categories loaded", "count", len(list))
		}
		return err
	})
	g.Go(func() error {
		names, err := refunds.RefundTargets(ctx)
		if err == nil {
			slog.Info("Refund targets loaded", "count", len(names))
		}
		return err
	})
	return g.Wait()
}
