package application

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rahul-J-IT/stream-app/internal/config"
	"github.com/Rahul-J-IT/stream-app/internal/database"
	"github.com/Rahul-J-IT/stream-app/internal/handler"
	"github.com/Rahul-J-IT/stream-app/internal/hub"
	"github.com/Rahul-J-IT/stream-app/internal/registry"
	"github.com/Rahul-J-IT/stream-app/internal/router"
	"github.com/Rahul-J-IT/stream-app/internal/service"
)

// API is the HTTP + WebSocket application.
type API struct {
	cfg *config.Config
	srv *http.Server
	db  *gorm.DB
	reg *registry.Registry
	log *zap.Logger
}

// NewAPI wires the application: validates config, opens the optional
// identity store, and builds registry, hub, relay, and router.
func NewAPI(cfg *config.Config) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, _ := zap.NewProduction()
	if cfg.AppEnv == "development" {
		logger, _ = zap.NewDevelopment()
	}

	db, dir, err := openDirectory(cfg)
	if err != nil {
		// Outside production the relay runs without the identity store;
		// stream owners then keep their raw ids as display names.
		if cfg.AppEnv == "production" {
			return nil, err
		}
		logger.Warn("identity store unavailable, continuing without it", zap.Error(err))
		db, dir = nil, nil
	}

	reg := registry.New(cfg.SessionRetention, cfg.SessionSweepInterval, logger)
	h := hub.New(hub.Options{
		MaxMessageSize: cfg.WSMaxMessageSize,
		PingInterval:   cfg.WSPingInterval,
		PongWait:       cfg.WSPongWait,
		WriteWait:      cfg.WSWriteWait,
	}, logger)
	relay := service.NewRelay(reg, h, logger)

	streamHandler := handler.NewStreamHandler(reg, dir, logger)
	socketHandler := handler.NewSocketHandler(h, relay,
		cfg.WSReadBufferSize, cfg.WSWriteBufferSize, cfg.AllowedOrigin, logger)
	health := handler.NewHealthHandler()

	r := router.New(streamHandler, socketHandler, health)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &API{cfg: cfg, srv: srv, db: db, reg: reg, log: logger}, nil
}

// openDirectory migrates and opens the identity store. Returns nils without
// error when DB_DISABLE is set.
func openDirectory(cfg *config.Config) (*gorm.DB, handler.OwnerResolver, error) {
	if cfg.DBDisable {
		return nil, nil, nil
	}
	if err := database.MigrateUp(cfg.DatabaseURL()); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := database.Open(cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	return db, service.NewDirectory(db), nil
}

// Run starts the server and the registry janitor, and blocks until ctx is
// cancelled; then shuts down gracefully.
func (a *API) Run(ctx context.Context) error {
	defer a.log.Sync()

	host := a.cfg.AppHost
	if host == "0.0.0.0" {
		host = "localhost"
	}
	log.Printf("stream-server listening on %s", a.srv.Addr)
	log.Printf("  Streams:   http://%s:%s/api/streams", host, a.cfg.HTTPPort)
	log.Printf("  WebSocket: ws://%s:%s/ws", host, a.cfg.HTTPPort)

	go a.reg.Run(ctx)

	go func() {
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
