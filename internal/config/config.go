package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/evanhs/costbasis/internal/domain"
	"github.com/evanhs/costbasis/internal/service"
)

// Config holds all runtime configuration for the calculator.
type Config struct {
	// Ruleset selects the jurisdiction and cost basis method:
	// UK_INDIVIDUAL, UK_COMPANY_<MON>, US_FIFO, US_LIFO, US_HIFO,
	// US_LOFO.
	Ruleset      domain.Ruleset
	RulesetLabel string
	// TaxYear restricts output to one tax year; 0 reports all years.
	TaxYear int
	// TransfersAreDisposals treats deposits/withdrawals as taxable
	// events and promotes audit mismatches to hard failures.
	TransfersAreDisposals bool
	// ZeroBasisIfUnmatched settles queue sells with no matching buys at
	// zero cost basis instead of deferring to the holdings pool.
	ZeroBasisIfUnmatched bool
	// FiatAssets are excluded from gains matching.
	FiatAssets map[string]bool
	// FiatIncome counts income received in fiat as taxable income.
	FiatIncome bool
	// ReportingCurrency is the currency all leg values are denominated
	// in. Informational: it is stamped on the report, not converted.
	ReportingCurrency string

	Port            int
	LogLevel        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// Load reads configuration from environment variables, applies defaults,
// and validates values. It returns an error for any invalid value.
func Load() (*Config, error) {
	rulesetStr := getStr("RULESET", "UK_INDIVIDUAL")
	ruleset, err := domain.ParseRuleset(rulesetStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RULESET: %w", err)
	}

	taxYear, err := getInt("TAX_YEAR", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid TAX_YEAR: %w", err)
	}

	transfersAreDisposals, err := getBool("TRANSFERS_ARE_DISPOSALS", false)
	if err != nil {
		return nil, fmt.Errorf("invalid TRANSFERS_ARE_DISPOSALS: %w", err)
	}

	zeroBasis, err := getBool("ZERO_BASIS_IF_UNMATCHED", true)
	if err != nil {
		return nil, fmt.Errorf("invalid ZERO_BASIS_IF_UNMATCHED: %w", err)
	}

	fiatIncome, err := getBool("FIAT_INCOME", true)
	if err != nil {
		return nil, fmt.Errorf("invalid FIAT_INCOME: %w", err)
	}

	reportingCurrency := strings.ToUpper(strings.TrimSpace(getStr("REPORTING_CURRENCY", "GBP")))

	fiatAssets := make(map[string]bool)
	for _, a := range strings.Split(getStr("FIAT_ASSETS", "GBP,USD,EUR"), ",") {
		a = strings.ToUpper(strings.TrimSpace(a))
		if a != "" {
			fiatAssets[a] = true
		}
	}

	port, err := getInt("PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	logLevel := getStr("LOG_LEVEL", "info")
	if !isValidLogLevel(logLevel) {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %q, must be one of: debug, info, warn, error", logLevel)
	}

	readTimeout, err := getDuration("READ_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := getDuration("WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid WRITE_TIMEOUT: %w", err)
	}

	idleTimeout, err := getDuration("IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid IDLE_TIMEOUT: %w", err)
	}

	shutdownTimeout, err := getDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
	}

	return &Config{
		Ruleset:               ruleset,
		RulesetLabel:          strings.ToUpper(rulesetStr),
		TaxYear:               taxYear,
		TransfersAreDisposals: transfersAreDisposals,
		ZeroBasisIfUnmatched:  zeroBasis,
		FiatAssets:            fiatAssets,
		FiatIncome:            fiatIncome,
		ReportingCurrency:     reportingCurrency,
		Port:                  port,
		LogLevel:              logLevel,
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           idleTimeout,
		ShutdownTimeout:       shutdownTimeout,
	}, nil
}

// CalculatorOptions maps the config onto the calculation pipeline's
// immutable options.
func (c *Config) CalculatorOptions() service.CalculatorOptions {
	return service.CalculatorOptions{
		Ruleset:               c.Ruleset,
		RulesetLabel:          c.RulesetLabel,
		TransfersAreDisposals: c.TransfersAreDisposals,
		ZeroBasisIfUnmatched:  c.ZeroBasisIfUnmatched,
		FiatAssets:            c.FiatAssets,
		FiatIncome:            c.FiatIncome,
		ReportingCurrency:     c.ReportingCurrency,
		TaxYear:               c.TaxYear,
	}
}

func getStr(key, defaultVal string) string {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v
}

func getInt(key string, defaultVal int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.Atoi(v)
}

func getBool(key string, defaultVal bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return strconv.ParseBool(v)
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal, nil
	}
	return time.ParseDuration(v)
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	}
	return false
}
