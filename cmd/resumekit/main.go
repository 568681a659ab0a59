// Command resumekit serves the résumé builder API: billing webhooks and
// reconciliation, tier-gated résumé editing and AI drafting.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/resumekit/db"
	"github.com/dmitrymomot/resumekit/modules/apierr"
	billingmod "github.com/dmitrymomot/resumekit/modules/billing"
	"github.com/dmitrymomot/resumekit/modules/editor"
	"github.com/dmitrymomot/resumekit/pkg/config"
	"github.com/dmitrymomot/resumekit/pkg/environment"
	"github.com/dmitrymomot/resumekit/pkg/httpserver"
	"github.com/dmitrymomot/resumekit/pkg/jwt"
	"github.com/dmitrymomot/resumekit/pkg/logger"
	"github.com/dmitrymomot/resumekit/pkg/pg"
	"github.com/dmitrymomot/resumekit/pkg/ratelimiter"
	"github.com/dmitrymomot/resumekit/pkg/redis"
	"github.com/dmitrymomot/resumekit/pkg/requestid"
	"github.com/dmitrymomot/resumekit/pkg/subscription"
	"github.com/dmitrymomot/resumekit/svc/aidraft"
	"github.com/dmitrymomot/resumekit/svc/resume"
	storage "github.com/dmitrymomot/resumekit/svc/subscription"
)

// quotas caps per-user calls that reach paid upstream APIs.
type quotas struct {
	ReconcilePerMinute int `env:"RATELIMIT_RECONCILE_PER_MINUTE" envDefault:"5"`
	AIPerMinute        int `env:"RATELIMIT_AI_PER_MINUTE" envDefault:"10"`
}

func main() {
	var app config.App
	config.MustLoad(&app)

	env := environment.Parse(app.Env)
	log := logger.New(
		logger.WithEnvironment(env, app.Name),
		logger.WithContextExtractors(requestid.LogExtractor, userIDExtractor),
	)
	slog.SetDefault(log)

	ctx := environment.WithContext(context.Background(), env)
	if err := run(ctx, app, log); err != nil {
		log.ErrorContext(ctx, "resumekit stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app config.App, log *slog.Logger) error {
	var (
		pgCfg     pg.Config
		redisCfg  redis.Config
		httpCfg   httpserver.Config
		jwtCfg    jwt.Config
		stripeCfg subscription.StripeConfig
		priceCfg  subscription.PriceConfig
		coCfg     subscription.CheckoutConfig
		aiCfg     aidraft.Config
		limits    quotas
	)
	for _, load := range []func() error{
		func() error { return config.Load(&pgCfg) },
		func() error { return config.Load(&redisCfg) },
		func() error { return config.Load(&httpCfg) },
		func() error { return config.Load(&jwtCfg) },
		func() error { return config.Load(&stripeCfg) },
		func() error { return config.Load(&priceCfg) },
		func() error { return config.Load(&coCfg) },
		func() error { return config.Load(&limits) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	// AI drafting is optional; without a key the routes are not mounted.
	aiEnabled := config.Load(&aiCfg) == nil

	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if pgCfg.Migrate {
		if err := pg.Migrate(ctx, pool, db.Migrations(), log); err != nil {
			return err
		}
	}

	rdb, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	prices, err := subscription.PriceSetFromConfig(priceCfg)
	if err != nil {
		return err
	}
	provider, err := subscription.NewStripeProvider(stripeCfg)
	if err != nil {
		return err
	}
	tokens, err := jwt.New(jwtCfg)
	if err != nil {
		return err
	}

	coCfg = coCfg.WithBaseURL(app.BaseURL)

	store := storage.NewPGStore(pool)
	linker := storage.NewRedisLinker(rdb, redisCfg.KeyPrefix)
	resolver := subscription.NewResolver(store, prices)
	gate := subscription.NewGate(resolver)
	reconciler := subscription.NewReconciler(provider, store, linker, resolver,
		subscription.WithLogger(log),
		subscription.WithProviderTimeout(stripeCfg.Timeout),
	)
	checkout := subscription.NewCheckout(provider, linker, resolver, prices, coCfg, log)

	reconcileLimit, err := perUserLimiter(rdb, redisCfg.KeyPrefix+":reconcile", limits.ReconcilePerMinute)
	if err != nil {
		return err
	}
	aiLimit, err := perUserLimiter(rdb, redisCfg.KeyPrefix+":ai", limits.AIPerMinute)
	if err != nil {
		return err
	}

	editorOpts := editor.RouterOptions{
		Resumes:   resume.NewService(resume.NewPGRepository(pool), gate, log),
		Logger:    log,
		AILimiter: aiLimit,
	}
	if aiEnabled {
		editorOpts.Drafter = aidraft.NewDrafter(aidraft.NewClient(aiCfg), gate, aiCfg.Model, log)
	} else {
		log.WarnContext(ctx, "OPENAI_API_KEY not set, AI drafting disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestid.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", httpserver.LivenessHandler())
	r.Get("/health/ready", httpserver.ReadinessHandler(log, 3*time.Second,
		httpserver.Check{Name: "postgres", Fn: pg.Healthcheck(pool)},
		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
	))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(jwt.Middleware(tokens, jwt.WithErrorHandler(apierr.Unauthorized)))

		r.Mount("/billing", billingmod.Router(billingmod.RouterOptions{
			Reconciler: reconciler,
			Gate:       gate,
			Checkout:   checkout,
			Metrics:    billingmod.NewMetrics(reg),
			Logger:     log,

			ReconcileLimiter: reconcileLimit,
		}))

		r.With(subscription.Middleware(resolver, jwt.UserID,
			subscription.WithMiddlewareErrorHandler(apierr.Write),
		)).Mount("/editor", editor.Router(editorOpts))
	})

	return httpserver.New(httpCfg, log).Run(ctx, r)
}

func perUserLimiter(rdb goredis.UniversalClient, prefix string, perMinute int) (func(http.Handler) http.Handler, error) {
	bucket, err := ratelimiter.NewBucket(ratelimiter.NewRedisStore(rdb, prefix), ratelimiter.Config{
		Capacity:       perMinute,
		RefillRate:     perMinute,
		RefillInterval: time.Minute,
	})
	if err != nil {
		return nil, err
	}
	return ratelimiter.Middleware(bucket, ratelimiter.ByUser(jwt.UserID),
		ratelimiter.WithErrorHandler(apierr.Write),
	), nil
}

func userIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := jwt.UserID(ctx)
	if !ok {
		return slog.Attr{}, false
	}
	return logger.UserID(id), true
}
