// Package server assembles the HTTP API, the outbox worker and their
// dependencies, and runs them until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/1auto-market/vehiclestore-backend/config"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository"
	"github.com/1auto-market/vehiclestore-backend/internal/adapters/repository/memory"
	"github.com/1auto-market/vehiclestore-backend/internal/cache"
	"github.com/1auto-market/vehiclestore-backend/internal/database"
	"github.com/1auto-market/vehiclestore-backend/internal/email"
	"github.com/1auto-market/vehiclestore-backend/internal/handlers"
	"github.com/1auto-market/vehiclestore-backend/internal/logging"
	"github.com/1auto-market/vehiclestore-backend/internal/services/assistant"
	"github.com/1auto-market/vehiclestore-backend/internal/services/listing"
	"github.com/1auto-market/vehiclestore-backend/internal/services/notify"
	"github.com/1auto-market/vehiclestore-backend/internal/services/payment"
	"github.com/1auto-market/vehiclestore-backend/internal/services/rating"
	"github.com/1auto-market/vehiclestore-backend/internal/services/user"
	"github.com/1auto-market/vehiclestore-backend/internal/socket"
	"github.com/1auto-market/vehiclestore-backend/internal/storage"
	"github.com/1auto-market/vehiclestore-backend/internal/telegram"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const DriverMemory = "memory"

// Store is an opened persistence backend.
type Store struct {
	Repos repository.Repositories
	Ping  func(ctx context.Context) error
	Close func(ctx context.Context) error
}

// OpenStore connects to MongoDB, or builds an in-process store when the
// driver is "memory".
func OpenStore(ctx context.Context, cfg config.MongoConfig) (Store, error) {
	if cfg.Driver == DriverMemory {
		logrus.Warn("Using in-memory store; data is lost on exit")
		return Store{
			Repos: memory.NewStore().Repositories(),
			Ping:  func(context.Context) error { return nil },
			Close: func(context.Context) error { return nil },
		}, nil
	}

	db, err := database.Init(ctx, cfg)
	if err != nil {
		return Store{}, err
	}
	return Store{
		Repos: repository.NewMongoRepositories(db),
		Ping:  database.Ping,
		Close: database.Shutdown,
	}, nil
}

type Server struct {
	cfg        config.Config
	httpServer *http.Server
	worker     *notify.Worker
	hub        *socket.Hub
	gemini     *assistant.Gemini
	store      Store
}

// New wires every component for cfg. The returned server owns the store.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	utils.ConfigureJWT(cfg.JWT.Secret, cfg.JWT.Expiration)

	store, err := OpenStore(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if cfg.Mongo.Driver != DriverMemory {
		if db, err := database.Database(); err == nil {
			if err := database.EnsureIndexes(ctx, db); err != nil {
				logrus.WithError(err).Warn("Could not ensure indexes")
			}
		}
	}

	s, err := build(ctx, cfg, store)
	if err != nil {
		_ = store.Close(context.Background())
		return nil, err
	}
	return s, nil
}

func build(ctx context.Context, cfg config.Config, store Store) (*Server, error) {
	repos := store.Repos

	media, err := storage.New(ctx, cfg.Media, cfg.Cloudinary, cfg.S3)
	if err != nil {
		return nil, err
	}

	var gen assistant.Generator
	gemini := assistant.NewGemini(cfg.Gemini)
	if gemini != nil {
		gen = gemini
	}
	var intents payment.IntentCreator
	if s := payment.NewStripe(cfg.Stripe); s != nil {
		intents = s
	}

	vehicleCache := cache.NewVehicleCache(cfg.Cache.Size, cfg.Cache.TTL)
	hub := socket.NewHub()

	users := user.NewService(repos.Users)
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if _, _, err := users.SeedAdmin(ctx, cfg.Admin); err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}

	listings := listing.NewService(repos.Vehicles, repos.Users, listing.Options{
		DefaultCurrency: cfg.App.DefaultCurrency,
		Composer:        notify.Composer{AdminEmail: cfg.Email.AdminAddress, BaseURL: cfg.App.BaseURL},
		Cache:           vehicleCache,
	})

	deps := handlers.Deps{
		Listings:       listings,
		Ratings:        rating.NewService(repos.Ratings, repos.Vehicles, vehicleCache),
		Users:          users,
		Assistant:      assistant.NewService(gen),
		Payments:       payment.NewService(repos.Vehicles, intents, cfg.Stripe),
		Favorites:      repos.Favorites,
		Categories:     repos.Categories,
		Analytics:      repos.Analytics,
		Storage:        media,
		Hub:            hub,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Ping:           store.Ping,
	}

	dispatcher := &notify.Dispatcher{
		Email:    email.NewSender(cfg.Email),
		Telegram: telegram.New(cfg.Telegram.BotToken),
		Push:     hub,
	}

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         ":" + cfg.Server.Port,
			Handler:      NewRouter(cfg.Server, deps),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		},
		worker: notify.NewWorker(repos.Notifications, dispatcher, cfg.Outbox),
		hub:    hub,
		gemini: gemini,
		store:  store,
	}, nil
}

// NewRouter builds the gin engine with logging, recovery and CORS.
func NewRouter(cfg config.ServerConfig, deps handlers.Deps) *gin.Engine {
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}
	router := gin.New()
	router.Use(logging.RequestLogger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.FromContext(c).WithField("panic", recovered).Error("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, utils.ErrorResponse("Internal server error"))
	}))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Stripe-Signature", logging.RequestIDHeader},
		ExposeHeaders:    []string{logging.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	handlers.SetupRoutes(router, deps)
	return router
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run serves HTTP and drains the outbox until ctx is cancelled or either
// fails, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logrus.WithField("addr", s.httpServer.Addr).Info("Starting API server")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return s.worker.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.cfg.Server.WriteTimeout > 0 {
		return s.cfg.Server.WriteTimeout + 5*time.Second
	}
	return 20 * time.Second
}

// Shutdown stops accepting requests, disconnects websocket clients and
// closes the store.
func (s *Server) Shutdown(ctx context.Context) error {
	logrus.Info("Shutting down server...")
	err := s.httpServer.Shutdown(ctx)
	s.hub.Close()
	if cerr := s.gemini.Close(); cerr != nil {
		logrus.WithError(cerr).Warn("Closing Gemini client failed")
	}
	if cerr := s.store.Close(ctx); cerr != nil && err == nil {
		err = cerr
	}
	return err
}
