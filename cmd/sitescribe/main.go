package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/sitescribe/sitescribe/internal/api"
	"github.com/sitescribe/sitescribe/internal/clock/system"
	"github.com/sitescribe/sitescribe/internal/config"
	"github.com/sitescribe/sitescribe/internal/hash/sha256"
	"github.com/sitescribe/sitescribe/internal/logging"
	"github.com/sitescribe/sitescribe/internal/progress"
	"github.com/sitescribe/sitescribe/internal/progress/sinks"
	pubsubpublisher "github.com/sitescribe/sitescribe/internal/publisher/pubsub"
	"github.com/sitescribe/sitescribe/internal/renderer"
	"github.com/sitescribe/sitescribe/internal/scrape"
	"github.com/sitescribe/sitescribe/internal/sink"
	"github.com/sitescribe/sitescribe/internal/storage/postgres"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	applyArgs(&cfg, flag.Args())
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

// applyArgs lets the start address and max depth be given positionally:
//
//	sitescribe https://example.com 2
func applyArgs(cfg *config.Config, args []string) {
	if len(args) > 0 {
		cfg.Crawl.StartURL = args[0]
	}
	if len(args) > 1 {
		if depth, err := strconv.Atoi(args[1]); err == nil {
			cfg.Crawl.MaxDepth = depth
		}
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	engine := buildEngine(cfg)
	defer func() {
		if err := engine.Close(context.Background()); err != nil {
			logger.Warn("close render engine", zap.Error(err))
		}
	}()

	fsSink, err := sink.NewFSSink(cfg.Output.Dir)
	if err != nil {
		return err
	}
	var artifacts scrape.ArtifactSink = fsSink
	if cfg.Storage.GCSBucket != "" {
		mirror, err := sink.NewGCSMirror(ctx, fsSink, cfg.Storage.GCSBucket, cfg.Storage.Prefix, logger)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := mirror.Close(); closeErr != nil {
				logger.Warn("close GCS mirror", zap.Error(closeErr))
			}
		}()
		artifacts = mirror
	}

	var opts []scrape.CrawlerOption
	if cfg.DB.DSN != "" {
		store, err := postgres.NewPageStore(ctx, cfg.DB.DSN, cfg.DB.Table)
		if err != nil {
			return err
		}
		defer store.Close()
		opts = append(opts, scrape.WithRecorder(store))
	}
	if cfg.PubSub.ProjectID != "" && cfg.PubSub.TopicID != "" {
		pub, err := pubsubpublisher.New(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicID)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := pub.Close(); closeErr != nil {
				logger.Warn("close publisher", zap.Error(closeErr))
			}
		}()
		opts = append(opts, scrape.WithPublisher(pub))
	}

	hub, statusSink, err := buildProgress(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if closeErr := hub.Close(closeCtx); closeErr != nil {
			logger.Warn("close progress hub", zap.Error(closeErr))
		}
	}()

	if cfg.Server.Port > 0 {
		server := api.NewServer(statusSink, prometheus.DefaultGatherer, logger)
		server.Start(cfg.Server.Port)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
				logger.Warn("shutdown status server", zap.Error(shutdownErr))
			}
		}()
	}

	var robots scrape.RobotsPolicy = scrape.AllowAllPolicy{}
	if cfg.Crawl.RespectRobots {
		robots = scrape.NewRobotsEnforcer(cfg.Crawl.UserAgent, logger)
	}

	crawler := scrape.NewCrawler(
		cfg,
		engine,
		artifacts,
		robots,
		sha256.New(),
		system.New(),
		hub,
		logger,
		opts...,
	)
	_, err = crawler.Run(ctx)
	return err
}

func buildEngine(cfg config.Config) scrape.RenderEngine {
	rendererCfg := renderer.Config{
		UserAgent:   cfg.Crawl.UserAgent,
		SettleDelay: cfg.SettleDelay(),
		DomainQPS:   cfg.Renderer.DomainQPS,
	}
	if cfg.Renderer.Engine == "http" {
		return renderer.NewStaticEngine(rendererCfg)
	}
	return renderer.NewChromeEngine(rendererCfg)
}

func buildProgress(cfg config.Config, logger *zap.Logger) (*progress.Hub, *sinks.StatusSink, error) {
	statusSink := sinks.NewStatusSink()
	hubSinks := []progress.Sink{sinks.NewLogSink(logger), statusSink}
	if cfg.Server.Port > 0 {
		promSink, err := sinks.NewPrometheusSink(prometheus.DefaultRegisterer)
		if err != nil {
			return nil, nil, err
		}
		hubSinks = append(hubSinks, promSink)
	}
	hub := progress.NewHub(progress.Config{Logger: logger}, hubSinks...)
	return hub, statusSink, nil
}
