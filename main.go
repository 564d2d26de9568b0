package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/malikarslanasif131/hackathon-backend/handlers"
	"github.com/malikarslanasif131/hackathon-backend/internal/auth"
	"github.com/malikarslanasif131/hackathon-backend/internal/config"
	"github.com/malikarslanasif131/hackathon-backend/internal/dashboard"
	"github.com/malikarslanasif131/hackathon-backend/internal/database"
	"github.com/malikarslanasif131/hackathon-backend/internal/notify"
	"github.com/malikarslanasif131/hackathon-backend/internal/oidc"
	"github.com/malikarslanasif131/hackathon-backend/internal/schema"
	"github.com/malikarslanasif131/hackathon-backend/internal/sessions"
	"github.com/malikarslanasif131/hackathon-backend/internal/storage"
	"github.com/malikarslanasif131/hackathon-backend/internal/store"
	"github.com/malikarslanasif131/hackathon-backend/internal/users"
	"github.com/malikarslanasif131/hackathon-backend/pkg/logger"
	"github.com/malikarslanasif131/hackathon-backend/pkg/metrics"
	"github.com/malikarslanasif131/hackathon-backend/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level via LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v google=%v sendgrid=%v",
		cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Google.ClientID != "", cfg.SendGrid.APIKey != "")

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	origins := []string{"*"}
	if raw := os.Getenv("CORS_ALLOWED_ORIGINS"); raw != "" {
		origins = strings.Split(raw, ",")
	}
	r.Use(middleware.CORS(origins))
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so the blacklist and the rate limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("connected to Redis: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			window := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			limit := int64(cfg.RateLimit.RPS * window.Seconds())
			if limit < 1 {
				limit = 1
			}
			r.Use(middleware.NewRedisRateLimiter(redisClient, limit, window).Middleware())
		} else {
			r.Use(middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware())
		}
	}

	// Connect to MongoDB with retry/backoff to tolerate startup races
	const maxAttempts = 5
	backoff := time.Second
	var client *mongo.Client
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
		if err == nil {
			break
		}
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}
	if err != nil {
		logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, err)
	}
	defer func() { _ = client.Disconnect(ctx) }()

	db := client.Database(cfg.MongoDB.Database)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Warnf("failed to ensure indexes: %v", err)
	}
	docStore := store.NewMongoStore(client, cfg.MongoDB.Database)

	userSvc := users.NewService(users.NewMongoUserRepository(db.Collection(store.Users)))

	// Prefer Redis-backed refresh sessions; fall back to a Mongo collection
	var sessionsSvc *sessions.Service
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "session:"))
		logger.Info("using Redis for session storage")
	} else {
		sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
		logger.Info("using MongoDB for session storage")
	}

	// Google sign-in verifier; insecure fallback for integration tests only
	var verifier oidc.TokenVerifier
	if cfg.Google.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Google.Issuer, cfg.Google.ClientID)
		if err != nil {
			logger.Warnf("failed to initialize Google verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure token verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	authz := auth.NewService(docStore, cfg.JWT.Secret)
	mailer := notify.NewSendGridMailer(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	dashboardSvc := dashboard.NewService(docStore, schema.Default(), authz, mailer, dashboard.Templates{
		Confirmation: cfg.SendGrid.ConfirmationTemplate,
		Acceptance:   cfg.SendGrid.AcceptanceTemplate,
		Rejection:    cfg.SendGrid.RejectionTemplate,
	})

	if verifier != nil {
		handlers.NewAuthHandler(verifier, userSvc, sessionsSvc, cfg).RegisterRoutes(r)
	} else {
		logger.Warn("auth routes not registered: no token verifier available")
	}
	handlers.NewDashboardHandler(dashboardSvc).RegisterRoutes(r)

	// Resume storage is optional; the portal runs without it
	if minioCfg := storage.LoadMinIOConfig(); minioCfg.Endpoint != "" {
		resumes, err := storage.NewResumeStorage(minioCfg)
		if err != nil {
			logger.Warnf("failed to initialize resume storage: %v", err)
		} else {
			handlers.NewUploadHandler(resumes, docStore, authz).RegisterRoutes(r)
			logger.Infof("resume storage ready: %s/%s", minioCfg.Endpoint, minioCfg.Bucket)
		}
	}

	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongodb": client.Ping(c.Request.Context(), nil) == nil,
			"redis":   true,
			"oidc":    verifier != nil,
		}
		if redisClient != nil {
			deps["redis"] = redisClient.Ping(c.Request.Context()).Err() == nil
		}
		ready := deps["mongodb"] && deps["redis"]
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": fmt.Sprintf("%s", time.Since(startTime))})
	})

	promReg := prometheus.NewRegistry()
	metrics.RegisterCollectors(promReg)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("listening on %s (env=%s)", addr, cfg.Server.Environment)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server exited: %v", err)
	}
}
