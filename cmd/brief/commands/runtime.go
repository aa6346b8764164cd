package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/basis"
	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/collect"
	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/internal/external/chinabond"
	"github.com/zhenliu/marketbrief/internal/external/eastmoney"
	"github.com/zhenliu/marketbrief/internal/external/sina"
	"github.com/zhenliu/marketbrief/internal/external/tencent"
	"github.com/zhenliu/marketbrief/internal/pipeline"
	"github.com/zhenliu/marketbrief/internal/quality"
	"github.com/zhenliu/marketbrief/internal/report"
	"github.com/zhenliu/marketbrief/internal/snapshot"
	"github.com/zhenliu/marketbrief/internal/storage"
	"github.com/zhenliu/marketbrief/pkg/config"
	"github.com/zhenliu/marketbrief/pkg/database"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
	"github.com/zhenliu/marketbrief/pkg/redis"
)

// runtime carries the wired application graph for one command invocation.
type runtime struct {
	cfg    *config.Config
	log    *logger.Logger
	cal    *calendar.Calendar
	store  contracts.Store
	runner *pipeline.Runner
	redis  *redis.Client
	db     *database.DB
}

// close releases pooled resources.
func (rt *runtime) close() {
	if rt.db != nil {
		rt.db.Close()
	}
	if rt.redis != nil {
		rt.redis.Close()
	}
}

// buildRuntime wires the full pipeline from configuration. When a
// Postgres URL is configured snapshots go there, otherwise to flat JSON
// files under the data directory.
func buildRuntime(withReporters bool) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)
	cal := calendar.New()

	rt := &runtime{cfg: cfg, log: log, cal: cal}

	if cfg.Database.Enabled() {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.db = db

		pgStore := storage.NewPostgresStore(db.Pool, log)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pgStore.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
		rt.store = pgStore
	} else {
		fileStore, err := storage.NewFileStore(cfg.DataDir, log)
		if err != nil {
			return nil, err
		}
		rt.store = fileStore
	}

	rdb, err := redis.New(cfg)
	if err != nil {
		rt.close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	rt.redis = rdb

	// One HTTP client per upstream, each with its own rate budget.
	tencentClient := httputil.New(log, 15*time.Second).WithRateLimit(5, 5)
	eastmoneyClient := httputil.New(log, 15*time.Second).WithRateLimit(10, 10)
	sinaClient := httputil.New(log, 15*time.Second).WithRateLimit(5, 5)
	chinabondClient := httputil.New(log, 15*time.Second).WithRateLimit(2, 2)

	sinaFeed := sina.NewClient(sinaClient, log)
	adapters := []contracts.Adapter{
		tencent.NewIndexAdapter(tencentClient, log),
		eastmoney.NewFuturesAdapter(eastmoneyClient, log),
		sina.NewCurrencyAdapter(sinaFeed, log),
		sina.NewCommodityAdapter(sinaFeed, log),
		sina.NewNewsAdapter(sinaClient, log),
		chinabond.NewBondAdapter(chinabondClient, log),
	}

	var reporters []contracts.Reporter
	if withReporters && cfg.Feishu.Enabled() {
		webhookClient := httputil.New(log, 10*time.Second)
		reporters = append(reporters, report.NewFeishuReporter(webhookClient, log, cfg.Feishu.WebhookURL))
	}

	rt.runner = pipeline.NewRunner(
		cal,
		collect.NewOrchestrator(cal, log, adapters...),
		quality.NewScorer(log),
		basis.NewAnalyzer(cal, log),
		snapshot.NewAssembler(log),
		rt.store,
		log,
		reporters...,
	)

	return rt, nil
}
