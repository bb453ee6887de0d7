package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Siilah/controllers"
	"github.com/Siilah/initializers"
	"github.com/Siilah/middlewares"
	"github.com/Siilah/services"
	"github.com/Siilah/services/seed"
)

// bootstrap loads configuration, the logger and the optional journal database.
func bootstrap() {
	if err := initializers.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	initializers.InitLogger(initializers.Config.LogLevel)
	if err := initializers.ConnectDB(initializers.Config.DBURL); err != nil {
		initializers.Log.Warnw("failed to connect to activity journal database, continuing without it", "error", err)
	}
}

// buildSanctuary wires the state container to every optional collaborator
// that is configured.
func buildSanctuary(ctx context.Context, cfg initializers.AppConfig, hub *services.RealtimeHub) *services.Sanctuary {
	deps := services.SanctuaryDeps{Broadcaster: hub}

	if cfg.GeminiAPIKey != "" {
		gateway, err := services.NewGeminiGateway(ctx, cfg.GeminiAPIKey, cfg.GeminiProModel, cfg.GeminiFlashModel)
		if err != nil {
			initializers.Log.Warnw("failed to create AI gateway, AI features disabled", "error", err)
		} else {
			deps.Gateway = gateway
		}
	} else {
		initializers.Log.Warn("GEMINI_API_KEY not set, AI features disabled")
	}

	push := services.InitPushNotificationService(ctx, cfg.FirebaseServiceAccountPath)
	deps.Notifier = services.InitNotificationCenter(push)

	if mailer := services.InitEmailService(cfg.ResendAPIKey, cfg.EmailFrom); mailer != nil {
		deps.Mailer = mailer
	}
	if journal := services.InitActivityJournal(initializers.DB); journal != nil {
		deps.Journal = journal
	}

	sanctuary := services.InitSanctuary(services.SanctuaryConfig{
		PresenceTTL:              cfg.PresenceTTL,
		CompanionChatDelay:       cfg.CompanionChatDelay,
		CompanionReflectionDelay: cfg.CompanionReflectionDelay,
		AITimeout:                cfg.AITimeout,
		AdminEmails:              cfg.AdminEmailList(),
	}, deps)

	corpus, err := seed.Load()
	if err != nil {
		initializers.Log.Fatalw("failed to load seed corpus", "error", err)
	}
	sanctuary.SeedCorpus(corpus)
	initializers.Log.Infow("sanctuary ready", "candidates", len(corpus.People), "publicCircles", len(corpus.Circles))
	return sanctuary
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.Metrics)

	router.POST("/onboarding", middlewares.RateLimitMiddleware(2, 2, middlewares.ClientIPKey("onboarding")), controllers.Onboard)
	router.POST("/login", middlewares.RateLimitMiddleware(2, 2, middlewares.ClientIPKey("login")), controllers.UserLogin)
	router.GET("/ping", middlewares.RateLimitMiddleware(2, 2, middlewares.ClientIPKey("ping")), controllers.Ping)
	router.GET("/metrics", gin.WrapH(services.MetricsHandler()))

	auth := router.Group("/")
	auth.Use(middlewares.CheckAuth)
	auth.Use(middlewares.RateLimitMiddleware(10, 20, middlewares.UserKey("auth")))
	{
		// user routes
		auth.GET("/users/me", controllers.GetUserProfile)
		auth.PATCH("/users/me/settings", controllers.UpdateUserSettings)
		auth.POST("/users/push-token", controllers.StorePushToken)
		auth.GET("/home", controllers.GetHome)

		// notification routes
		auth.GET("/users/me/notifications", controllers.GetUserNotifications)
		auth.PATCH("/users/me/notifications/:notification_id", controllers.ToggleUserNotificationStatus)
		auth.POST("/users/me/notifications/read", controllers.MarkAllNotificationsAsRead)

		// discovery routes, each call is a model request
		discover := auth.Group("/discover")
		discover.Use(middlewares.RateLimitMiddleware(1, 3, middlewares.UserKey("discover")))
		{
			discover.GET("/matches", controllers.GetMatches)
			discover.GET("/search", controllers.SearchCommunity)
		}

		// circle routes
		auth.GET("/circles", controllers.GetUserCircles)
		auth.POST("/circles/match", controllers.CreateCircleFromMatch)
		auth.POST("/circles/companion", controllers.CreateCompanionCircle)
		auth.GET("/circles/:circle_id", controllers.GetCircle)
		auth.POST("/circles/:circle_id/read", controllers.MarkCircleRead)
		auth.GET("/circles/:circle_id/live", controllers.StreamCircle)
		auth.GET("/circles/:circle_id/prompt", controllers.GetCirclePrompt)
		auth.POST("/circles/:circle_id/summary", middlewares.RateLimitMiddleware(0.1, 1, middlewares.UserKey("summary")), controllers.GenerateCircleSummary)

		// post routes
		auth.GET("/circles/:circle_id/posts", controllers.GetCirclePosts)
		auth.POST("/circles/:circle_id/posts", controllers.CreatePost)
		auth.PUT("/circles/:circle_id/posts/:post_id", controllers.UpdatePost)
		auth.POST("/circles/:circle_id/posts/:post_id/reactions", controllers.ReactToPost)
		auth.POST("/circles/:circle_id/posts/:post_id/praying", controllers.TogglePrayer)
		auth.POST("/circles/:circle_id/posts/:post_id/answered", controllers.MarkPrayerAnswered)
		auth.POST("/circles/:circle_id/posts/:post_id/responses", controllers.CreateResponse)
		auth.POST("/circles/:circle_id/posts/:post_id/responses/read", controllers.MarkResponsesRead)

		//admin only routes
		admin := auth.Group("/admin")
		admin.Use(middlewares.CheckAdmin)
		admin.Use(middlewares.RateLimitMiddleware(5, 5, middlewares.UserKey("admin")))
		{
			admin.POST("/notifications/send", controllers.SendPushNotification)
			admin.POST("/jobs/weekly-summaries", controllers.RunWeeklySummaries)
			admin.GET("/circles/:circle_id/activity", controllers.GetCircleActivity)
		}
	}

	return router
}

func main() {
	bootstrap()
	defer initializers.SyncLogger()
	cfg := initializers.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := services.InitRealtimeHub()
	sanctuary := buildSanctuary(ctx, cfg, hub)

	scheduler, err := services.StartScheduler(sanctuary, cfg.PresenceSweepInterval, cfg.WeeklySummarySchedule)
	if err != nil {
		initializers.Log.Fatalw("failed to start scheduler", "error", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(),
	}

	go func() {
		initializers.Log.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			initializers.Log.Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	initializers.Log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	scheduler.Stop()
	hub.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		initializers.Log.Warnw("server shutdown incomplete", "error", err)
	}
	sanctuary.Close()
}
