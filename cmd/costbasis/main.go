package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/config"
	"github.com/evanhs/costbasis/internal/domain"
	"github.com/evanhs/costbasis/internal/handler"
	"github.com/evanhs/costbasis/internal/service"
)

func main() {
	serve := flag.Bool("serve", false, "Run the HTTP API instead of one-shot calculation")
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	pricesFlag := flag.String("prices", "", "Current prices for the holdings snapshot, e.g. BTC=43000,ETH=2600")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level. In one-shot mode the
	// report goes to stdout, so logs go to stderr.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logOut := os.Stdout
	if !*serve {
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	importer := service.NewImporter()
	calculator := service.NewCalculator(cfg.CalculatorOptions(), logger)

	if *serve {
		runServer(cfg, importer, calculator, logger)
		return
	}

	if err := runOnce(importer, calculator, flag.Args(), *pricesFlag, logger); err != nil {
		logger.Error("calculation failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runOnce reads the normalized transaction CSV (a file argument, or
// stdin when none is given), runs the calculation, and prints the JSON
// report to stdout.
func runOnce(importer *service.Importer, calculator *service.Calculator, args []string, pricesFlag string, logger *slog.Logger) error {
	prices, err := parsePrices(pricesFlag)
	if err != nil {
		return err
	}

	var in *os.File
	switch len(args) {
	case 0:
		in = os.Stdin
	case 1:
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	default:
		return fmt.Errorf("expected at most one input file, got %d arguments", len(args))
	}

	result, err := importer.Read(in)
	if err != nil {
		return err
	}

	report, err := calculator.Calculate(result.Transactions, prices)
	if err != nil {
		return err
	}

	if result.UnpricedLegs > 0 {
		logger.Warn("legs without a value treated as zero", slog.Int("count", result.UnpricedLegs))
		warning := domain.Warning{
			Code:    domain.WarnUnpricedValue,
			Message: fmt.Sprintf("%d legs had no value and were treated as zero", result.UnpricedLegs),
		}
		report.Warnings = append(report.Warnings, warning.String())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// parsePrices parses the -prices flag, a comma-separated list of
// ASSET=PRICE pairs.
func parsePrices(s string) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	if s == "" {
		return prices, nil
	}
	for _, pair := range strings.Split(s, ",") {
		asset, val, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("invalid price %q, expected ASSET=PRICE", pair)
		}
		price, err := decimal.NewFromString(val)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", asset, err)
		}
		prices[strings.ToUpper(asset)] = price
	}
	return prices, nil
}

// runServer starts the HTTP API and blocks until SIGINT/SIGTERM, then
// shuts down gracefully.
func runServer(cfg *config.Config, importer *service.Importer, calculator *service.Calculator, logger *slog.Logger) {
	router := handler.NewRouter(importer, calculator, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("ruleset", cfg.RulesetLabel),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}
