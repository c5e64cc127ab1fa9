package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/sharevault/sharevault-backend/auth/Oauth"
	"github.com/sharevault/sharevault-backend/auth/middleware"
	"github.com/sharevault/sharevault-backend/checkout"
	"github.com/sharevault/sharevault-backend/handlers"
	"github.com/sharevault/sharevault-backend/initializers"
	"github.com/sharevault/sharevault-backend/plans"
	"github.com/sharevault/sharevault-backend/registry"
	"github.com/sharevault/sharevault-backend/routes"
)

const defaultPort = "8080"

func main() {
	if os.Getenv("RENDER") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("⚠️  Warning: No .env file found. Using system environment variables.")
		}
	}

	db, err := initializers.ConnectDatabase()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	store, err := initializers.NewBlobStore(context.Background())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}

	sessionStore := Oauth.InitProviders()

	planService := plans.NewService(db)
	fileRegistry := registry.New(store)
	checkoutClient := checkout.NewClient(
		os.Getenv("POLAR_API_URL"),
		os.Getenv("POLAR_API_KEY"),
		os.Getenv("SITE_URL"),
	)

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:3000"
	}

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{siteURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimit())
	router.Use(sessions.Sessions("sharevault", sessionStore))

	routes.Register(router, routes.Deps{
		Files:    handlers.NewFileHandler(fileRegistry, planService),
		Plans:    handlers.NewPlanHandler(planService),
		Auth:     handlers.NewAuthHandler(db),
		Checkout: handlers.NewCheckoutHandler(checkoutClient),
		OAuth:    Oauth.NewHandler(db),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	log.Printf("listening on http://localhost:%s", port)
	log.Fatal(router.Run(":" + port))
}
