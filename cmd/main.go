package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"odyssey/config"
	_ "odyssey/docs"
	"odyssey/internal/handler"
	"odyssey/internal/metrics"
	"odyssey/internal/ports"
	"odyssey/internal/repository"
	"odyssey/internal/security"
	"odyssey/internal/service"
	"odyssey/internal/util"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Odyssey
// @version 1.0
// @description Trip planning backend: accounts, cookie sessions and nearby places search

// @host localhost:5000

// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name access_token
func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config, empty for env only")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := util.SetupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting odyssey", slog.String("env", cfg.Env), slog.String("session_backend", cfg.Session.Backend))

	db, err := config.SetupDatabase(cfg.DatabaseConfig.DSN)
	if err != nil {
		log.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := db.Migrate(ctx); err != nil {
		log.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}

	registry, closeRegistry, err := setupSessionRegistry(ctx, cfg, db)
	if err != nil {
		log.Error("failed to set up session registry", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeRegistry()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)

	jwtService := security.NewJWTService(cfg.JWT.SecretKey, cfg.JWT.Issuer)
	guard := security.NewGuard(jwtService, registry, security.GuardConfig{
		CookieName:   cfg.Session.CookieName,
		CookieSecure: cfg.Session.CookieSecure,
		TokenTTL:     cfg.JWT.AccessTokenTTL,
		LoginPath:    cfg.Session.LoginPath,
	}, m)

	placesClient := service.NewPlacesClient(&cfg.Places)
	aggregator := service.NewAggregatorService(placesClient, cfg.Places.MaxPageChain, cfg.Places.PageTokenDelay, m)
	authService := service.NewAuthenticationService(userRepo, registry, jwtService, cfg.JWT.AccessTokenTTL)
	userService := service.NewUserService(userRepo, registry)

	hour, minute, second := cfg.PurgeClock()
	purger := service.NewSessionPurger(registry, cfg.Session.RefreshMaxAge, cfg.Scheduler.PurgeTimeout,
		service.PurgeSchedule{Hour: hour, Minute: minute, Second: second}, m)
	go func() {
		if err := purger.Run(ctx); err != nil {
			log.Error("refresh record purge not scheduled", slog.Any("error", err))
		}
	}()

	authHandler := handler.NewAuthenticationHandler(authService, guard)
	userHandler := handler.NewUserHandler(userService, guard)
	placesHandler := handler.NewPlacesHandler(aggregator)

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(util.RequestLogger(log))
	router.Use(middleware.Recoverer)
	router.NotFound(util.NotFound)
	router.MethodNotAllowed(util.MethodNotAllowed)

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	setupAuthRoutes(router, authHandler, guard, cfg)
	setupUserRoutes(router, userHandler, guard)
	setupPlacesRoutes(router, placesHandler, guard)

	runServer(ctx, srv)
}

func setupSessionRegistry(ctx context.Context, cfg *config.AppConfig, db *config.Database) (ports.SessionRegistry, func(), error) {
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisClient, err := config.SetupRedis(&cfg.RedisConfig)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("failed to close redis", slog.Any("error", err))
			}
		}
		return repository.NewRedisSessionRepository(redisClient), closer, nil

	case config.SessionBackendMongo:
		mongoClient, err := config.NewMongoClient(ctx, &cfg.MongoConfig)
		if err != nil {
			return nil, nil, err
		}
		closer := func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Close(closeCtx); err != nil {
				slog.Error("failed to close mongo", slog.Any("error", err))
			}
		}
		sessions := repository.NewMongoSessionRepository(mongoClient)
		if err := sessions.EnsureIndexes(ctx); err != nil {
			closer()
			return nil, nil, err
		}
		return sessions, closer, nil

	default:
		return repository.NewSessionRepository(db), func() {}, nil
	}
}

func setupAuthRoutes(r chi.Router, h *handler.AuthenticationHandler, guard *security.Guard, cfg *config.AppConfig) {
	r.Post("/sign_up", h.SignUp)
	r.With(guard.RedirectIfAuthenticated(cfg.Session.DashboardPath)).Get("/login", h.LoginPage)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAPI)
		r.Delete("/logout", h.Logout)
	})
}

func setupUserRoutes(r chi.Router, h *handler.UserHandler, guard *security.Guard) {
	r.Group(func(r chi.Router) {
		r.Use(guard.RequirePage)
		r.Get("/dashboard", h.Dashboard)
		r.Get("/user_settings", h.UserSettings)
		r.Get("/plan_trip", h.PlanTrip)
	})

	r.Group(func(r chi.Router) {
		r.Use(guard.RequireAPI)
		r.Post("/update_user", h.UpdateUser)
		r.Delete("/delete_user", h.DeleteUser)
	})
}

func setupPlacesRoutes(r chi.Router, h *handler.PlacesHandler, guard *security.Guard) {
	r.With(guard.RequireAPI).Get("/find_nearby_places", h.FindNearbyPlaces)
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("server started", slog.String("addr", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", slog.Any("error", err))
		}
	case sig := <-signalChannel:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		slog.Error("server shutdown failed", slog.Any("error", err))
	} else {
		slog.Info("server stopped")
	}
}
