package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"nightdrive/config"
	"nightdrive/feed"
	"nightdrive/server"
	"nightdrive/sources"
	"nightdrive/sources/autodev"
	"nightdrive/sources/ebay"
	"nightdrive/sources/marketcheck"
	"nightdrive/storage"
	"nightdrive/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := utils.NewFileLogger(cfg.LogDir)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("=== nightdrive starting (env=%s) ===", cfg.Env)

	httpClient := sources.NewHTTPClient(cfg.UpstreamTimeout)
	retry := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries + 1,
		BaseDelay:   cfg.RetryBaseDelay,
		Logger:      logger,
	}

	mc := marketcheck.New(cfg.MarketCheckAPIKey, httpClient, retry, logger)
	eb := ebay.New(cfg.EbayEnvironment, cfg.EbayClientID, cfg.EbayClientSecret, httpClient, logger)
	ad := autodev.New(cfg.AutoDevAPIKey, httpClient, retry, logger)

	for _, src := range []struct {
		name       string
		configured bool
	}{
		{"marketcheck", mc.Configured()},
		{"ebay", eb.Configured()},
		{"autodev", ad.Configured()},
	} {
		if src.configured {
			logger.Info("[serve] source %s configured", src.name)
		} else {
			logger.Warn("[serve] source %s not configured, tier skipped", src.name)
		}
	}

	leads, err := storage.NewNDJSONStore(cfg.DataDir)
	if err != nil {
		return err
	}
	featured, err := storage.NewFeaturedStore(filepath.Join(cfg.DataDir, "featured.json"))
	if err != nil {
		return err
	}

	var leadsDB storage.LeadWriter
	if cfg.LeadsDSN != "" {
		pg, err := storage.NewPostgresWriter(cfg.LeadsDSN)
		if err != nil {
			// The NDJSON store remains the system of record; keep serving.
			logger.Error("[serve] postgres mirror unavailable: %v", err)
		} else {
			leadsDB = pg
			defer pg.Close()
			logger.Info("[serve] postgres lead mirror connected")
		}
	}

	cache := feed.NewCache(cfg.CacheFreshTTL, cfg.CacheStaleTTL)
	feedSvc := feed.New(mc, eb, ad, featured, cache, logger)
	srv := server.New(cfg, feedSvc, leads, leadsDB, featured, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("[serve] bye")
	return nil
}
