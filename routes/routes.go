package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sharevault/sharevault-backend/auth/Oauth"
	"github.com/sharevault/sharevault-backend/auth/middleware"
	"github.com/sharevault/sharevault-backend/handlers"
)

type Deps struct {
	Files    *handlers.FileHandler
	Plans    *handlers.PlanHandler
	Auth     *handlers.AuthHandler
	Checkout *handlers.CheckoutHandler
	OAuth    *Oauth.Handler
}

func Register(r *gin.Engine, d Deps) {
	// OAuth flow (session-based, pre-JWT).
	r.GET("/auth/:provider", d.OAuth.Begin)
	r.GET("/auth/:provider/callback", d.OAuth.Callback)

	// Checkout carries its own open CORS policy.
	r.POST("/create-checkout", d.Checkout.Create)
	r.OPTIONS("/create-checkout", d.Checkout.Preflight)

	api := r.Group("/api")
	api.POST("/auth/signup", d.Auth.Signup)
	api.POST("/auth/login", d.Auth.Login)
	api.POST("/refresh-token", d.Auth.Refresh)
	api.GET("/me", middleware.AuthRequired(), d.Auth.Me)

	api.GET("/plans", d.Plans.List)
	api.GET("/subscription", middleware.AuthRequired(), d.Plans.Subscription)

	files := api.Group("/files")
	files.Use(middleware.AuthRequired())
	files.POST("/upload", d.Files.Upload)
	files.GET("/", d.Files.List)
	files.DELETE("", d.Files.Delete)
	files.GET("/share", d.Files.ShareLink)
	files.GET("/share/qr", d.Files.ShareQR)
}
