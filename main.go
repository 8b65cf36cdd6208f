package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Fomkes/uae-water-delivery1-sub001/config"
	"github.com/Fomkes/uae-water-delivery1-sub001/entities"
	"github.com/Fomkes/uae-water-delivery1-sub001/handlers"
	logx "github.com/Fomkes/uae-water-delivery1-sub001/pkg/logger"
	"github.com/Fomkes/uae-water-delivery1-sub001/pkg/rabbitmq"
	"github.com/Fomkes/uae-water-delivery1-sub001/repository"
	"github.com/Fomkes/uae-water-delivery1-sub001/services"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func main() {
	envFile := flag.String("env", ".env", "dotenv file to load before reading the environment")
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	if *hashPassword != "" {
		hash, err := services.HashPassword(*hashPassword)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	logx.Init()
	cfg, err := config.Load(*envFile)
	if err != nil {
		logx.Fatal().Err(err).Msg("failed to load configuration")
	}
	logx.Init(logx.LoggerOpts{Environment: cfg.Env()})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal().Err(err).Msg("storefront stopped with error")
	}
	logx.Info().Msg("storefront stopped")
}

func run(ctx context.Context, cfg config.AppConfig) error {
	records, closeRecords, err := openRecords(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRecords()

	db, err := sql.Open(cfg.Catalog.Driver, cfg.Catalog.DSN)
	if err != nil {
		return fmt.Errorf("open catalog database: %w", err)
	}
	defer db.Close()
	if cfg.Catalog.Driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	productRepo, err := repository.NewProductRepository(db, cfg.Catalog.Driver)
	if err != nil {
		return fmt.Errorf("connect catalog database: %w", err)
	}
	if err := productRepo.Migrate(ctx); err != nil {
		return err
	}
	if cfg.Catalog.Seed {
		if err := repository.SeedProducts(ctx, productRepo); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}
	logx.Info().Str("driver", cfg.Catalog.Driver).Msg("catalog connected")

	cartRepo, err := repository.NewCartRepository(records, cfg.Cart.TTL)
	if err != nil {
		return err
	}
	sessionRepo, err := repository.NewAdminSessionRepository(records, cfg.Admin.SessionTTL)
	if err != nil {
		return err
	}

	auth, err := newAuthenticator(ctx, cfg, db)
	if err != nil {
		return err
	}

	publisher, closePublisher, err := openPublisher(cfg.RabbitMQ)
	if err != nil {
		return err
	}
	defer closePublisher()

	cartService := services.NewCartService(productRepo, cartRepo, cfg.Cart.IdleEviction)
	go cartService.RunSweeper(ctx, cfg.Cart.SweepInterval)

	h := handlers.NewHandler(handlers.HandlerParams{
		CrtService: cartService,
		AdmService: services.NewAdminService(sessionRepo, auth),
		PrdService: services.NewProductService(productRepo),
		OrdService: services.NewOrderService(cartService, publisher),
		CartTTL:    cfg.Cart.TTL,
		SessionTTL: cfg.Admin.SessionTTL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", srv.Addr).Str("env", cfg.Env().String()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logx.Info().Msg("shutting down server")
	return srv.Shutdown(shutdownCtx)
}

func openRecords(ctx context.Context, cfg config.AppConfig) (repository.Records, func(), error) {
	if cfg.Storage == config.StorageMemory {
		logx.Warn().Msg("using in-memory storage, carts and admin sessions will not survive a restart")
		return repository.NewMemoryRecords(), func() {}, nil
	}
	rdb, err := cfg.Redis.New(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	records, err := repository.NewRedisRecords(rdb)
	if err != nil {
		rdb.Close()
		return nil, nil, err
	}
	logx.Info().Msg("redis connected")
	return records, func() { rdb.Close() }, nil
}

func newAuthenticator(ctx context.Context, cfg config.AppConfig, db *sql.DB) (services.Authenticator, error) {
	profile := entities.AdminUser{
		Id:       "admin-1",
		Username: cfg.Admin.Username,
		Email:    cfg.Admin.Email,
		Role:     entities.RoleSuperAdmin,
	}
	switch {
	case cfg.Admin.Auth == config.AuthDatabase:
		users, err := repository.NewUserRepository(db, cfg.Catalog.Driver)
		if err != nil {
			return nil, err
		}
		if err := users.Migrate(ctx); err != nil {
			return nil, err
		}
		if err := services.EnsureAdmin(ctx, users, profile, cfg.Admin.Password); err != nil {
			return nil, fmt.Errorf("bootstrap admin: %w", err)
		}
		return services.NewDatabaseCredentials(users), nil
	case cfg.Admin.PasswordHash != "":
		return services.NewStaticCredentialsFromHash(cfg.Admin.Username, cfg.Admin.PasswordHash, profile)
	default:
		return services.NewStaticCredentials(cfg.Admin.Username, cfg.Admin.Password, profile)
	}
}

func openPublisher(cfg config.RabbitMQConfig) (services.OrderPublisher, func(), error) {
	if cfg.URL == "" {
		logx.Warn().Msg("RABBITMQ_URL not set, orders will only be logged")
		return services.LogPublisher{}, func() {}, nil
	}
	pool, err := rabbitmq.NewChannelPool(cfg.URL, cfg.Queue, cfg.PoolSize)
	if err != nil {
		return nil, nil, err
	}
	return rabbitmq.NewPublisher(pool, cfg.Queue), pool.Close, nil
}
