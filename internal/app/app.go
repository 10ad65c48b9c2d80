package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/advisor/internal/common"
	"github.com/ternarybob/advisor/internal/handlers"
	"github.com/ternarybob/advisor/internal/interfaces"
	"github.com/ternarybob/advisor/internal/marketdata"
	"github.com/ternarybob/advisor/internal/models"
	"github.com/ternarybob/advisor/internal/newsapi"
	"github.com/ternarybob/advisor/internal/services/advice"
	"github.com/ternarybob/advisor/internal/services/digest"
	"github.com/ternarybob/advisor/internal/services/expiry"
	"github.com/ternarybob/advisor/internal/services/llm"
	"github.com/ternarybob/advisor/internal/services/orchestrator"
	"github.com/ternarybob/advisor/internal/services/report"
	"github.com/ternarybob/advisor/internal/services/scheduler"
	"github.com/ternarybob/advisor/internal/storage/badger"
)

// ReportJobName is the scheduler job that pre-generates the daily report
const ReportJobName = "daily-report"

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Content generation
	LLMFactory   *llm.ProviderFactory
	Orchestrator interfaces.Orchestrator

	// Background jobs
	SchedulerService interfaces.SchedulerService

	// HTTP handlers
	APIHandler       *handlers.APIHandler
	NewsHandler      *handlers.NewsHandler
	ReportHandler    *handlers.ReportHandler
	HoldingsHandler  *handlers.HoldingsHandler
	SchedulerHandler *handlers.SchedulerHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	storageManager, err := badger.NewManager(logger, &cfg.Storage.Badger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	app.StorageManager = storageManager

	// External data clients
	newsClient := newsapi.NewClient(cfg.NewsAPI.APIKey,
		newsapi.WithBaseURL(cfg.NewsAPI.BaseURL),
		newsapi.WithHTTPClient(&http.Client{Timeout: cfg.NewsAPI.Timeout.Duration()}),
		newsapi.WithLogger(logger),
		newsapi.WithRateLimit(requestsPerSecond(cfg.NewsAPI.RateLimit.Duration())),
	)
	marketClient := marketdata.NewClient(
		marketdata.WithBaseURL(cfg.MarketData.BaseURL),
		marketdata.WithHTTPClient(&http.Client{Timeout: cfg.MarketData.Timeout.Duration()}),
		marketdata.WithLogger(logger),
		marketdata.WithRateLimit(requestsPerSecond(cfg.MarketData.RateLimit.Duration())),
	)

	// Text generation
	app.LLMFactory = llm.NewProviderFactory(&cfg.Gemini, &cfg.Claude, &cfg.LLM, logger)

	// Tier pipelines behind a single orchestrator
	newsSource := digest.NewNewsAPISource(newsClient, logger)
	pipelines := []interfaces.TierPipeline{
		digest.NewService(newsSource, app.LLMFactory, &cfg.News, logger),
		report.NewService(marketClient, app.LLMFactory, cfg.Market.Symbols, logger),
		advice.NewService(storageManager.HoldingStorage(), marketClient, app.LLMFactory, logger),
	}

	policy := expiry.NewPolicy(expiry.WithNewsWindow(cfg.News.CacheWindow.Duration()))
	app.Orchestrator = orchestrator.NewService(storageManager.CacheStorage(), policy, pipelines, logger)

	// Scheduler with the nightly report job
	app.SchedulerService = scheduler.NewService(cfg.Location(), logger)
	if err := app.registerReportJob(); err != nil {
		storageManager.Close()
		return nil, err
	}

	// HTTP handlers
	app.APIHandler = handlers.NewAPIHandler()
	app.NewsHandler = handlers.NewNewsHandler(app.Orchestrator, logger)
	app.ReportHandler = handlers.NewReportHandler(app.Orchestrator, cfg.Location(), logger)
	app.HoldingsHandler = handlers.NewHoldingsHandler(storageManager.HoldingStorage(), marketClient, logger)
	app.SchedulerHandler = handlers.NewSchedulerHandler(app.SchedulerService, logger)

	logger.Info().Msg("Application initialized")

	return app, nil
}

// registerReportJob wires the nightly forced regeneration of the daily
// report. Forcing the resolve replaces any report generated on demand
// earlier the same day with one built from closing data.
func (a *App) registerReportJob() error {
	location := a.Config.Location()
	err := a.SchedulerService.RegisterJob(ReportJobName, a.Config.Scheduler.ReportSchedule, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		key := models.DailyReportKey(time.Now().In(location))
		_, err := a.Orchestrator.Resolve(ctx, key, true)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to register report job: %w", err)
	}
	return nil
}

// Start begins background processing
func (a *App) Start() error {
	if !a.Config.Scheduler.Enabled {
		a.Logger.Info().Msg("Scheduler disabled by configuration")
		return nil
	}
	return a.SchedulerService.Start()
}

// Close shuts down all application components
func (a *App) Close() error {
	if a.SchedulerService != nil && a.SchedulerService.IsRunning() {
		if err := a.SchedulerService.Stop(); err != nil {
			a.Logger.Warn().Err(err).Msg("Scheduler stop failed")
		}
	}

	if a.LLMFactory != nil {
		if err := a.LLMFactory.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("LLM factory close failed")
		}
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application closed")
	return nil
}

// requestsPerSecond converts a minimum interval between requests to the
// rate the HTTP clients expect
func requestsPerSecond(interval time.Duration) int {
	if interval <= 0 {
		return 0
	}
	rps := int(time.Second / interval)
	if rps < 1 {
		rps = 1
	}
	return rps
}
