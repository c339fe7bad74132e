package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/merchantkit/order-sync/pkg/budget"
	"github.com/merchantkit/order-sync/pkg/catalogcache"
	"github.com/merchantkit/order-sync/pkg/collector"
	"github.com/merchantkit/order-sync/pkg/logging"
	"github.com/merchantkit/order-sync/pkg/platform"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// config holds the runtime configuration of one collection run.
type config struct {
	RedisAddr   string
	AccessToken string
	UserAgent   string
	BaseURL     string
	MetricsAddr string
	LogLevel    string
	LogPretty   bool
	PageSize    int
	Lookback    time.Duration
	CatalogTTL  time.Duration
	RateLimit   float64
	Burst       int
}

// loadConfig reads configuration from environment variables with the
// ORDERSYNC prefix, optionally layered over an order-sync.yaml file in the
// working directory.
func loadConfig() (config, error) {
	v := viper.New()

	v.SetDefault("redis_addr", "localhost:6379")
	v.SetDefault("user_agent", "order-sync/1.0.0")
	v.SetDefault("base_url", platform.DefaultBaseURL)
	v.SetDefault("metrics_addr", ":9090")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", false)
	v.SetDefault("page_size", 100)
	v.SetDefault("lookback", 24*time.Hour)
	v.SetDefault("catalog_ttl", catalogcache.DefaultTTL)
	v.SetDefault("rate_limit", 10.0)
	v.SetDefault("burst", 5)

	v.SetConfigName("order-sync")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.SetEnvPrefix("ORDERSYNC")
	v.AutomaticEnv()

	cfg := config{
		RedisAddr:   v.GetString("redis_addr"),
		AccessToken: v.GetString("access_token"),
		UserAgent:   v.GetString("user_agent"),
		BaseURL:     v.GetString("base_url"),
		MetricsAddr: v.GetString("metrics_addr"),
		LogLevel:    v.GetString("log_level"),
		LogPretty:   v.GetBool("log_pretty"),
		PageSize:    v.GetInt("page_size"),
		Lookback:    v.GetDuration("lookback"),
		CatalogTTL:  v.GetDuration("catalog_ttl"),
		RateLimit:   v.GetFloat64("rate_limit"),
		Burst:       v.GetInt("burst"),
	}

	if cfg.AccessToken == "" {
		return config{}, fmt.Errorf("access token is required (ORDERSYNC_ACCESS_TOKEN)")
	}

	return cfg, nil
}

// runSummary is the JSON report printed after a collection run.
type runSummary struct {
	Orders     int       `json:"orders"`
	WindowFrom time.Time `json:"window_from"`
	WindowTo   time.Time `json:"window_to"`
	Duration   string    `json:"duration"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	}).With().Str("component", "order-sync").Logger()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.RedisAddr).Msg("Connected to Redis")

	tracker := budget.NewTracker(redisClient, logging.NewLogger("budget"))
	cache := catalogcache.NewManager(redisClient, cfg.CatalogTTL)

	platformCfg := platform.DefaultConfig(cfg.AccessToken, cfg.UserAgent)
	platformCfg.BaseURL = cfg.BaseURL
	platformCfg.Budget = tracker
	platformCfg.Cache = cache
	platformCfg.Throttle.RequestsPerSecond = cfg.RateLimit
	platformCfg.Throttle.Burst = cfg.Burst

	client, err := platform.New(platformCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create platform client")
	}

	pipelineCfg := collector.DefaultConfig()
	pipelineCfg.PageSize = cfg.PageSize

	pipeline, err := collector.New(client, client, client, pipelineCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create collection pipeline")
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, logger)
	}

	now := time.Now().UTC()
	window := collector.TimeWindow{
		StartUTC: now.Add(-cfg.Lookback),
		EndUTC:   now,
	}

	logger.Info().
		Time("window_from", window.StartUTC).
		Time("window_to", window.EndUTC).
		Msg("Starting collection run")

	start := time.Now()
	orders, err := pipeline.Collect(ctx, window)
	if err != nil {
		logger.Fatal().Err(err).Msg("Collection run failed")
	}

	summary := runSummary{
		Orders:     len(orders),
		WindowFrom: window.StartUTC,
		WindowTo:   window.EndUTC,
		Duration:   time.Since(start).Round(time.Millisecond).String(),
	}
	if err := json.NewEncoder(os.Stdout).Encode(summary); err != nil {
		logger.Error().Err(err).Msg("Failed to write run summary")
	}

	logger.Info().Int("orders", len(orders)).Msg("Collection run finished")
}

func serveMetrics(addr string, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)

	logger.Info().Str("addr", addr).Msg("Serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}
