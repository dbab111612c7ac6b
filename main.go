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

	"github.com/interiora/interiorabackend/controllers"
	"github.com/interiora/interiorabackend/database"
	"github.com/interiora/interiorabackend/middleware"
	"github.com/interiora/interiorabackend/models"
	"github.com/interiora/interiorabackend/services"
	"github.com/interiora/interiorabackend/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file")
	}

	ctx := context.Background()
	open := models.Opener(func(name string) models.Collection {
		return database.OpenCollection(name)
	})

	creds := models.NewCredentialModel(open)
	if err := utils.SeedAdminCredential(ctx, creds); err != nil {
		log.Fatal(err)
	}

	otpStore := services.NewOTPStore()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			otpStore.SweepExpired()
		}
	}()

	sender := services.NewSMTPSenderFromEnv()
	aggregation := services.NewAggregationService(open)
	imageValidator := utils.NewImageValidator()

	r := gin.New()

	origins := os.Getenv("ALLOWED_ORIGINS")
	allowedOrigins := map[string]bool{}
	for _, origin := range strings.Split(origins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
	log.Printf("Allowed origins: %v", allowedOrigins)
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Interiora API!",
			"endpoints": gin.H{
				"auth":        "/api/auth",
				"otp":         "/api/otp",
				"collections": "/",
			},
		})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	controllers.RegisterCollectionRoutes(r, open)

	r.GET("/user-data/:role/:userId", controllers.GetUserData(aggregation))
	r.POST("/products/:id/images", controllers.UploadProductImages(models.NewBaseModel("products", open), imageValidator))

	auth := r.Group("/api/auth")
	{
		auth.POST("/login", controllers.Login(creds))
		auth.POST("/register", controllers.Register(creds))
	}

	// OTP endpoints, mounted at the root as well for older clients.
	otp := r.Group("/api/otp")
	{
		otp.POST("/send-otp", controllers.SendOTP(otpStore, sender))
		otp.POST("/verify-otp", controllers.VerifyOTP(otpStore))
	}
	r.POST("/send-otp", controllers.SendOTP(otpStore, sender))
	r.POST("/verify-otp", controllers.VerifyOTP(otpStore))

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	{
		admin.GET("/stats", controllers.AdminStats(open))
	}

	r.Run()
}
