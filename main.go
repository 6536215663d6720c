package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Rohit1034/HrudaySparshi/cartsync"
	"github.com/Rohit1034/HrudaySparshi/common/auth"
	apperrors "github.com/Rohit1034/HrudaySparshi/common/errors"
	"github.com/Rohit1034/HrudaySparshi/common/logger"
	commonmw "github.com/Rohit1034/HrudaySparshi/common/middleware"
	"github.com/Rohit1034/HrudaySparshi/config"
	"github.com/Rohit1034/HrudaySparshi/controllers"
	"github.com/Rohit1034/HrudaySparshi/database"
	"github.com/Rohit1034/HrudaySparshi/middleware"
	"github.com/Rohit1034/HrudaySparshi/notification"
	aws_pkg "github.com/Rohit1034/HrudaySparshi/pkg/aws"
	ddb "github.com/Rohit1034/HrudaySparshi/pkg/dynamodb"
	"github.com/Rohit1034/HrudaySparshi/repository"
	"github.com/Rohit1034/HrudaySparshi/routes"
	"github.com/Rohit1034/HrudaySparshi/sender"
	"github.com/Rohit1034/HrudaySparshi/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "hruday-sparshi-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
	if err != nil {
		panic("failed to load AWS config: " + err.Error())
	}

	// --- 1. Logging ---
	var sinks []io.Writer
	if cfg.CloudWatchLogGroup != "" {
		cwLogs, err := aws_pkg.NewCloudWatchLogsClient(ctx, awsCfg, cfg.CloudWatchLogGroup, serviceName)
		if err != nil {
			panic("failed to initialize CloudWatch logs: " + err.Error())
		}
		sinks = append(sinks, cwLogs)
	}
	log, err := logger.New(cfg.Env, sinks...)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()
	zap.ReplaceGlobals(log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace, cfg.CloudWatchEnabled)

	// --- 2. Stores ---
	db, err := database.ConnectPostgres(cfg.PostgresDSN(), log)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}

	mongoClient, mongoDB, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	orderRepo := repository.NewGormOrderRepository(db)
	notificationRepo := repository.NewGormNotificationRepository(db)
	userRepo := repository.NewMongoUserRepository(mongoDB)
	homepageRepo := repository.NewMongoHomepageRepository(mongoDB)
	cartRepo := repository.NewRedisCartRepository(redisClient, cfg.Cart.TTL)

	var productRepo repository.ProductRepository
	switch cfg.ProductStore {
	case "dynamodb":
		ddbClient := ddb.NewClientFromConfig(awsCfg)
		if err := ddb.EnsureTable(ctx, ddbClient, cfg.DynamoProductsTable, "id"); err != nil {
			log.Fatal("Failed to ensure products table", zap.String("table", cfg.DynamoProductsTable), zap.Error(err))
		}
		productRepo = repository.NewDynamoProductRepository(ddbClient, cfg.DynamoProductsTable)
	default:
		productRepo = repository.NewMongoProductRepository(mongoDB)
	}
	log.Info("Product store selected", zap.String("store", cfg.ProductStore))

	// --- 3. Notifications ---
	email := sender.NewSMTPSender(sender.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUser,
		Password:    cfg.SMTPPass,
		FromName:    cfg.EmailFromName,
		FromAddress: cfg.EmailFromAddress,
	})

	var chat sender.ChatSender
	switch cfg.WhatsAppProvider {
	case "twilio":
		chat = sender.NewTwilioWhatsAppSender(sender.TwilioConfig{
			AccountSID: cfg.TwilioAccountSID,
			AuthToken:  cfg.TwilioAuthToken,
			FromNumber: cfg.TwilioFromNumber,
		})
	default:
		chat = sender.NewWhatsAppCloudSender(sender.WhatsAppCloudConfig{
			APIURL:        cfg.WhatsAppAPIURL,
			Token:         cfg.WhatsAppAPIToken,
			PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		})
	}

	location, err := time.LoadLocation(cfg.PostgresTimeZone)
	if err != nil {
		log.Warn("Unknown time zone, using UTC in messages", zap.String("tz", cfg.PostgresTimeZone))
		location = time.UTC
	}
	adminURL := ""
	if cfg.FrontendURL != "" {
		adminURL = cfg.FrontendURL + "/admin/orders"
	}
	builder, err := notification.NewBuilder(notification.BuilderConfig{
		BusinessName: cfg.BusinessName,
		AdminEmail:   cfg.AdminEmail,
		AdminPhone:   cfg.AdminPhone,
		AdminURL:     adminURL,
		Location:     location,
	})
	if err != nil {
		log.Fatal("Failed to parse notification templates", zap.Error(err))
	}

	dispatcherOpts := []notification.Option{notification.WithMetrics(metrics)}
	if cfg.NotificationDLQURL != "" {
		dlq := notification.NewSQSDeadLetter(aws_pkg.NewSQSProducer(awsCfg, cfg.NotificationDLQURL))
		dispatcherOpts = append(dispatcherOpts, notification.WithDeadLetter(dlq))
	}
	dispatcher := notification.NewDispatcher(notification.Config{
		Workers:     cfg.Notify.Workers,
		QueueSize:   cfg.Notify.QueueSize,
		Timeout:     cfg.Notify.Timeout,
		MaxAttempts: cfg.Notify.MaxAttempts,
		Backoff:     cfg.Notify.Backoff,
	}, email, chat, notificationRepo, log, dispatcherOpts...)
	dispatcher.Start()

	// --- 4. Services ---
	carts := cartsync.NewManager(cartRepo, cartsync.Config{
		FlushInterval:  cfg.Cart.FlushInterval,
		PersistTimeout: cfg.Cart.PersistTimeout,
		SessionIdle:    cfg.Cart.SessionIdle,
	}, log, cartsync.WithMetrics(metrics))

	var images services.ImagePresigner
	if cfg.S3Bucket != "" {
		images = aws_pkg.NewS3Presigner(awsCfg, cfg.S3Bucket)
	}

	var events *services.OrderEvents
	if cfg.OrderEventsTopicARN != "" {
		events = services.NewOrderEvents(aws_pkg.NewSNSClient(awsCfg), cfg.OrderEventsTopicARN, log)
	}

	productService := services.NewProductService(
		productRepo,
		services.NewProductCache(redisClient, cfg.CacheTTL, log),
		images,
		metrics,
		log,
	)
	orderService := services.NewOrderService(orderRepo, userRepo, productRepo, cfg.Order, log,
		services.WithNotifications(builder, dispatcher),
		services.WithCartClearer(carts),
		services.WithOrderEvents(events),
		services.WithOrderMetrics(metrics),
	)
	homepageService := services.NewHomepageService(homepageRepo, cfg.BusinessName)
	userService := services.NewUserService(userRepo)
	cartService := services.NewCartService(carts, productService)

	// --- 5. HTTP Server & Middleware ---
	if err := controllers.RegisterValidators(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		logger.RequestID(),
		commonmw.RequestLogger(log),
		commonmw.MetricsMiddleware(metrics, serviceName),
		commonmw.SecurityHeaders(),
		commonmw.CORS(cfg.AllowedOrigins),
		commonmw.RateLimitMiddleware(ctx, cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		commonmw.BodyLimit(10<<20),
		commonmw.Timeout(cfg.RequestTimeout),
		apperrors.ErrorMiddleware(log),
	)
	r.NoRoute(commonmw.NotFound())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "OK",
			"service":     serviceName,
			"activeCarts": carts.ActiveSessions(),
			"timestamp":   time.Now().UTC(),
		})
	})

	routes.RegisterRoutes(r, routes.Controllers{
		Orders:   controllers.NewOrderController(orderService),
		Products: controllers.NewProductController(productService),
		Homepage: controllers.NewHomepageController(homepageService),
		Admin:    controllers.NewAdminController(orderService, notificationRepo),
		Users:    controllers.NewUserController(userService),
		Cart:     controllers.NewCartController(cartService),
	},
		middleware.Authenticate(auth.NewJWTVerifier(cfg.JWTSecret), userRepo, log),
		middleware.AdminOnly(),
	)

	// --- 6. Graceful Shutdown ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Carts flush before the stores they write to are closed.
	if err := carts.Close(shutdownCtx); err != nil {
		log.Error("Failed to flush carts", zap.Error(err))
	}
	if err := dispatcher.Stop(shutdownCtx); err != nil {
		log.Error("Notification queue did not drain", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		log.Error("Failed to close Redis", zap.Error(err))
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error("Failed to disconnect MongoDB", zap.Error(err))
	}
	if err := database.ClosePostgres(db); err != nil {
		log.Error("Failed to close PostgreSQL", zap.Error(err))
	}

	log.Info("Server stopped gracefully")
}
