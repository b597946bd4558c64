package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/paulfarrow/runclubbackend/controllers"
	"github.com/paulfarrow/runclubbackend/mailer"
	"github.com/paulfarrow/runclubbackend/managers"
	"github.com/paulfarrow/runclubbackend/middleware"
	"github.com/paulfarrow/runclubbackend/models"
	"github.com/paulfarrow/runclubbackend/storage"
	"github.com/paulfarrow/runclubbackend/store"
	"github.com/paulfarrow/runclubbackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	st, err := store.New(utils.DataDir(), sugar)
	if err != nil {
		sugar.Fatalw("init store", "error", err)
	}
	// Seed the documents so first reads always see valid JSON.
	if err := st.Init("runs", models.NewRunsDocument()); err != nil {
		sugar.Fatalw("init runs document", "error", err)
	}
	if err := st.Init("users", models.NewUsersDocument()); err != nil {
		sugar.Fatalw("init users document", "error", err)
	}
	if err := st.Init("photos", models.NewPhotosDocument()); err != nil {
		sugar.Fatalw("init photos document", "error", err)
	}

	var photoFiles storage.PhotoStorage
	var localUploads *storage.LocalStorage
	if bucket := os.Getenv("GCS_BUCKET"); bucket != "" {
		gcs, err := storage.NewGCSStorage(context.Background(), bucket)
		if err != nil {
			sugar.Fatalw("init gcs storage", "error", err)
		}
		photoFiles = gcs
		sugar.Infow("photo storage: gcs", "bucket", bucket)
	} else {
		localUploads, err = storage.NewLocalStorage(utils.UploadDir())
		if err != nil {
			sugar.Fatalw("init local storage", "error", err)
		}
		photoFiles = localUploads
		sugar.Infow("photo storage: local", "dir", localUploads.Dir())
	}

	sendgridKey := os.Getenv("SENDGRID_API_KEY")
	m := mailer.New(sendgridKey, utils.ClubEmail(), utils.SiteURL(), sugar)
	if m.Configured() {
		sugar.Info("SendGrid configured")
	} else {
		sugar.Warn("SendGrid not configured - emails will not be sent")
	}

	users := managers.NewUsers(st, m, sugar)
	runs := managers.NewRuns(st, sugar)
	photos := managers.NewPhotos(st, photoFiles, m, sugar)
	v := utils.NewImageValidator()

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			// No allow-list configured means open CORS, as the site ran.
			if len(allowedOrigins) == 0 {
				return true
			}
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	if localUploads != nil {
		r.Static("/uploads", localUploads.Dir())
	}

	r.POST("/api/auth/register", controllers.Register(users))
	r.POST("/api/auth/login", controllers.Login(users))
	r.GET("/api/auth/verify-email", controllers.VerifyEmail(users))
	r.POST("/api/auth/resend-verification", controllers.ResendVerification(users))
	r.GET("/api/auth/user/:userId", controllers.GetUser(users))

	r.GET("/api/runs", controllers.GetRuns(runs))
	r.POST("/api/runs", middleware.RequireUser(users), controllers.AddRun(runs))
	r.GET("/api/user/:userId", controllers.GetUserStats(runs))
	r.GET("/api/leaderboard", controllers.GetLeaderboard(runs))

	r.GET("/api/photos", controllers.GetPhotos(photos))
	r.POST("/api/photos", controllers.UploadPhoto(photos, v))
	r.DELETE("/api/photos/:id", controllers.DeletePhoto(photos))

	r.POST("/api/contact", controllers.Contact(m))

	admin := r.Group("/api/admin")
	admin.POST("/login", controllers.AdminLogin())
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/pending-photos", controllers.GetPendingPhotos(photos))
		admin.POST("/approve-photo/:id", controllers.ApprovePhoto(photos))
		admin.POST("/reject-photo/:id", controllers.RejectPhoto(photos))
	}

	r.GET("/api/health", func(c *gin.Context) {
		sendgrid := "Not configured"
		if m.Configured() {
			sendgrid = "Configured"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "OK",
			"message":  "Dave's Running Club API is running",
			"sendgrid": sendgrid,
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "5001"
	}
	sugar.Infow("server starting", "port", port)
	if err := r.Run(":" + port); err != nil {
		sugar.Fatalw("server exited", "error", err)
	}
}
