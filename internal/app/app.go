package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/wellamo/mobile-bff/internal/cache"
	"github.com/wellamo/mobile-bff/internal/config"
	"github.com/wellamo/mobile-bff/internal/handler"
	"github.com/wellamo/mobile-bff/internal/repository"
	"github.com/wellamo/mobile-bff/internal/service"
	"github.com/wellamo/mobile-bff/internal/utils"
	"github.com/wellamo/mobile-bff/internal/woocommerce"
	"github.com/wellamo/mobile-bff/internal/wordpress"
	"github.com/wellamo/mobile-bff/pkg/observability"
)

const (
	shutdownTimeout = 5 * time.Second
	tokenGCInterval = 12 * time.Hour
)

type App struct {
	infra  Infrastructure
	config *config.Config
	store  *cache.Store
	tokens repository.TokenRepository
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry.Duration,
		cfg.JWT.RefreshTokenExpiry.Duration,
	)

	var redisClient *goredis.Client
	if infra.Redis() != nil {
		redisClient = infra.Redis().Client
	}
	store := cache.New(redisClient, infra.Logger(), cfg.Cache.SweepInterval.Duration)

	wordpressClient := wordpress.NewClient(cfg.WordPress.BaseURL, cfg.WordPress.Timeout.Duration, infra.Logger())

	commerceClient, err := woocommerce.NewClient(
		cfg.WooCommerce.BaseURL,
		cfg.WooCommerce.ConsumerKey,
		cfg.WooCommerce.ConsumerSecret,
		cfg.WooCommerce.Timeout.Duration,
		infra.Logger(),
	)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to build WooCommerce client: %w", err)
	}

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.Token,
		wordpressClient,
		commerceClient,
		jwtManager,
		cfg.Security.BCryptCost,
		infra.Logger(),
	)

	ordersService := service.NewOrdersService(commerceClient, store, cfg.Cache.OrdersTTL.Duration, cfg.Cache.OrderDetailTTL.Duration, infra.Logger())
	subscriptionsService := service.NewSubscriptionsService(commerceClient, store, cfg.Cache.SubscriptionsTTL.Duration, infra.Logger())
	planService := service.NewPlanService(commerceClient, subscriptionsService, store, cfg.Cache.PlanTTL.Duration, infra.Logger())
	treatmentsService := service.NewTreatmentsService(commerceClient, store, cfg.Cache.TreatmentsTTL.Duration, infra.Logger())
	addressesService := service.NewAddressesService(commerceClient, store, cfg.Cache.AddressesTTL.Duration, infra.Logger())
	invalidator := service.NewInvalidator(store, infra.Logger())

	authHandler := handler.NewAuthHandler(authService, cfg.Env, infra.Logger())
	meHandler := handler.NewMeHandler(
		repos.User,
		ordersService,
		subscriptionsService,
		planService,
		treatmentsService,
		addressesService,
		cfg.Env,
		infra.Logger(),
	)
	webhookHandler := handler.NewWebhookHandler(invalidator, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("mobile-bff"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, meHandler, webhookHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		store:  store,
		tokens: repos.Token,
		router: router,
		server: srv,
	}, nil
}

// gcTokens periodically deletes expired and revoked refresh token rows.
// FindActive filters them out regardless, so this is housekeeping only.
func (a *App) gcTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenGCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.tokens.DeleteExpired(ctx); err != nil {
				a.infra.Logger().Warn("Refresh token GC failed", zap.Error(err))
			}
		}
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	meHandler *handler.MeHandler,
	webhookHandler *handler.WebhookHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				handler.RateLimitMiddleware(rateLimiter, cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey),
				authHandler.Login,
			)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", authHandler.Logout)
		}

		me := v1.Group("/me", handler.AuthMiddleware(authService))
		{
			me.GET("", meHandler.Me)
			me.PUT("/push-token", meHandler.UpdatePushToken)
			me.GET("/addresses", meHandler.GetAddresses)
			me.PATCH("/addresses", meHandler.UpdateAddresses)
			me.GET("/orders", meHandler.ListOrders)
			me.GET("/orders/:orderId", meHandler.GetOrder)
			me.GET("/subscriptions", meHandler.ListSubscriptions)
			me.GET("/plan", meHandler.GetPlan)
			me.GET("/treatments", meHandler.ListTreatments)
			me.GET("/treatments/:orderId", meHandler.GetTreatment)
		}

		// Store-side webhooks carry no bearer token; they only flush cache keys.
		v1.POST("/webhooks/woocommerce", webhookHandler.WooCommerce)
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go a.gcTokens(ctx)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.store.Close()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
