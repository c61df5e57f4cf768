package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Zoemateus324/sosmecanicos-sub000/internal/auth"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/cache"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/config"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/email"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/handlers"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/logger"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/middleware"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/models"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/repositories"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/routes"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/services/payment"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/validator"
	"github.com/Zoemateus324/sosmecanicos-sub000/internal/workers"
	"github.com/Zoemateus324/sosmecanicos-sub000/ws"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("failed to get *sql.DB from gorm", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	logger.Info("database connected")

	if err := migrate(gormDB); err != nil {
		logger.Fatal("auto-migration failed", "error", err)
	}

	if err := seedFirstAdmin(gormDB, cfg); err != nil {
		logger.Fatal("failed to seed first admin user", "error", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal("redis unavailable", "error", err)
	}
	logger.Info("redis connected", "addr", cfg.Redis.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ginRouter, background := SetupRouter(cfg, gormDB, redisClient)
	background.Start(ctx)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    address,
		Handler: ginRouter,
	}

	go func() {
		logger.Info("server starting", "address", address)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server startup error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	logger.Info("server stopped")
}

// Background aggregates the workers so Run can start them together.
type Background struct {
	Payment      *workers.PaymentWorker
	Subscription *workers.SubscriptionWorker
	Location     *workers.LocationWorker
}

func (b *Background) Start(ctx context.Context) {
	b.Payment.Start(ctx)
	b.Subscription.Start(ctx)
	b.Location.Start(ctx)
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB, redisClient *redis.Client) (*gin.Engine, *Background) {
	userRepo := repositories.NewUserRepository(gormDB)
	tokenRepo := repositories.NewRefreshTokenRepository(gormDB)
	vehicleRepo := repositories.NewVehicleRepository(gormDB)
	requestRepo := repositories.NewRequestRepository(gormDB)
	proposalRepo := repositories.NewProposalRepository(gormDB)
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	subscriptionRepo := repositories.NewSubscriptionRepository(gormDB)
	statsRepo := repositories.NewStatsRepository(gormDB)

	sessions := cache.New(cache.NewRedisStore(redisClient), services.SessionFreshness())
	mailer := email.NewProvider(cfg)
	gateway := payment.NewHTTPGateway(payment.Config{
		BaseURL:      cfg.Payment.BaseURL,
		ClientID:     cfg.Payment.ClientID,
		ClientSecret: cfg.Payment.ClientSecret,
	})

	wsManager := ws.NewManager()
	go wsManager.Run()
	wsHandler := ws.NewHandler(wsManager)

	serviceContainer := services.NewServiceContainer(services.Dependencies{
		UserRepo:         userRepo,
		TokenRepo:        tokenRepo,
		VehicleRepo:      vehicleRepo,
		RequestRepo:      requestRepo,
		ProposalRepo:     proposalRepo,
		NotificationRepo: notificationRepo,
		SubscriptionRepo: subscriptionRepo,
		StatsRepo:        statsRepo,
		Sessions:         sessions,
		Mailer:           mailer,
		Gateway:          gateway,
		Pusher:           wsManager,
	})

	appHandlers := handlers.NewAppHandlers(validator.New(), serviceContainer)

	ginRouter := initializeGinRouter(cfg, gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	background := &Background{
		Payment: workers.NewPaymentWorker(
			proposalRepo,
			serviceContainer.Proposal,
			gateway,
			time.Duration(cfg.Payment.PollInterval)*time.Second,
		),
		Subscription: workers.NewSubscriptionWorker(subscriptionRepo, tokenRepo),
		Location: workers.NewLocationWorker(
			statsRepo,
			time.Duration(cfg.Location.StaleMinutes)*time.Minute,
		),
	}

	return ginRouter, background
}

func initializeGinRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ginRouter := gin.New()
	ginRouter.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(nil),
		middleware.DBMiddleware(gormDB),
	)
	return ginRouter
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.RefreshToken{},
		&models.Vehicle{},
		&models.ServiceRequest{},
		&models.Proposal{},
		&models.PaymentTransaction{},
		&models.Notification{},
		&models.SubscriptionPlan{},
		&models.UserSubscription{},
		&models.ProviderStats{},
		&models.Review{},
	)
}

// seedFirstAdmin creates the admin account from config on first boot.
// Admin accounts never go through registration.
func seedFirstAdmin(db *gorm.DB, cfg *config.Config) error {
	if cfg.FirstAdminEmail == "" || cfg.FirstAdminPassword == "" {
		logger.Warn("FIRST_ADMIN_EMAIL or FIRST_ADMIN_PASSWORD not set, skipping admin seeding")
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).
			Where("email = ?", cfg.FirstAdminEmail).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		hash, err := auth.HashPassword(cfg.FirstAdminPassword)
		if err != nil {
			return err
		}

		admin := &models.User{
			Email:        cfg.FirstAdminEmail,
			PasswordHash: hash,
			Role:         models.UserRoleAdmin,
			Status:       models.UserStatusActive,
			IsVerified:   true,
		}
		if err := tx.Create(admin).Error; err != nil {
			return err
		}

		profile := &models.Profile{
			UserID: admin.ID,
			Name:   "Administrador",
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		logger.Info("first admin user seeded", "email", cfg.FirstAdminEmail)
		return nil
	})
}
