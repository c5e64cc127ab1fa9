package Oauth

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/markbates/goth/providers/google"
	"gorm.io/gorm"

	"github.com/sharevault/sharevault-backend/auth"
	"github.com/sharevault/sharevault-backend/models"
)

// Handler completes OAuth sign-in against the user table.
type Handler struct {
	DB *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db}
}

// InitProviders wires the goth session store and the configured providers.
// The returned store must also be mounted as the router's session middleware.
func InitProviders() sessions.Store {
	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		log.Fatal("SESSION_SECRET is not set")
	}

	store := cookie.NewStore([]byte(sessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   true,
	})
	gothic.Store = store

	providers := []goth.Provider{}

	if os.Getenv("GOOGLE_CLIENT_ID") != "" {
		googleProvider := google.New(
			os.Getenv("GOOGLE_CLIENT_ID"),
			os.Getenv("GOOGLE_CLIENT_SECRET"),
			os.Getenv("GOOGLE_REDIRECT_URL"),
			"email",
			"profile",
		)
		googleProvider.SetAccessType("offline")
		googleProvider.SetPrompt("consent")
		providers = append(providers, googleProvider)
	}

	if os.Getenv("GITHUB_CLIENT_ID") != "" {
		providers = append(providers, github.New(
			os.Getenv("GITHUB_CLIENT_ID"),
			os.Getenv("GITHUB_CLIENT_SECRET"),
			os.Getenv("GITHUB_REDIRECT_URL"),
			"user:email",
		))
	}

	goth.UseProviders(providers...)
	return store
}

// Begin starts the OAuth flow for the provider in the URL path.
func (h *Handler) Begin(c *gin.Context) {
	provider := c.Param("provider")

	q := c.Request.URL.Query()
	q.Add("provider", provider)
	if provider == "google" {
		q.Add("access_type", "offline")
		q.Add("prompt", "consent")
	}
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// Callback completes the OAuth flow, finds or creates the user, and hands
// back a token pair via cookie + redirect.
func (h *Handler) Callback(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Add("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.Printf("Auth error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	user, err := h.findOrCreateUser(gothUser)
	if err != nil {
		log.Printf("Database error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process user data"})
		return
	}

	accessToken, refreshToken, err := auth.GenerateTokens(user.ID.String())
	if err != nil {
		log.Printf("Token generation error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate tokens"})
		return
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     "refresh_token",
		Value:    refreshToken,
		HttpOnly: true,
		Secure:   true,
		Path:     "/api/refresh-token",
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})

	session := sessions.Default(c)
	session.Set("authenticated", true)
	session.Set("user_id", user.ID.String())
	if err := session.Save(); err != nil {
		log.Printf("Session save error: %v", err)
		// Session state is optional alongside JWTs; keep going.
	}

	log.Printf("OAuth authentication successful for user: %s", user.Email)

	frontendURL := os.Getenv("SITE_URL")
	c.Redirect(http.StatusTemporaryRedirect, fmt.Sprintf("%s/auth/success?token=%s", frontendURL, accessToken))
}

func (h *Handler) findOrCreateUser(gothUser goth.User) (*models.User, error) {
	var user models.User

	var err error
	switch gothUser.Provider {
	case "google":
		err = h.DB.Where("google_id = ?", gothUser.UserID).First(&user).Error
	case "github":
		err = h.DB.Where("git_hub_id = ?", gothUser.UserID).First(&user).Error
	default:
		return nil, fmt.Errorf("unsupported provider: %s", gothUser.Provider)
	}
	if err == nil {
		return h.updateTokens(&user, gothUser)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("database query error: %v", err)
	}

	// No account for this provider id yet; link by email if one exists.
	err = h.DB.Where("email = ?", gothUser.Email).First(&user).Error
	if err == nil {
		return h.linkAccount(&user, gothUser)
	}
	if err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("database query error: %v", err)
	}

	return h.createUser(gothUser)
}

func (h *Handler) updateTokens(user *models.User, gothUser goth.User) (*models.User, error) {
	updates := map[string]interface{}{
		"name":       gothUser.Name,
		"avatar_url": gothUser.AvatarURL,
	}
	applyProviderUpdates(updates, gothUser)

	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update user: %v", err)
	}
	return user, nil
}

func (h *Handler) linkAccount(user *models.User, gothUser goth.User) (*models.User, error) {
	updates := map[string]interface{}{
		"name":       gothUser.Name,
		"avatar_url": gothUser.AvatarURL,
		"provider":   gothUser.Provider,
	}
	switch gothUser.Provider {
	case "google":
		updates["google_id"] = gothUser.UserID
	case "github":
		updates["git_hub_id"] = gothUser.UserID
	}
	applyProviderUpdates(updates, gothUser)

	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to link OAuth account: %v", err)
	}
	return user, nil
}

func applyProviderUpdates(updates map[string]interface{}, gothUser goth.User) {
	switch gothUser.Provider {
	case "google":
		updates["google_access_token"] = gothUser.AccessToken
		if gothUser.RefreshToken != "" {
			updates["google_refresh_token"] = gothUser.RefreshToken
		}
		if !gothUser.ExpiresAt.IsZero() {
			updates["google_token_expires_at"] = gothUser.ExpiresAt
		}
	case "github":
		updates["git_hub_access_token"] = gothUser.AccessToken
		if !gothUser.ExpiresAt.IsZero() {
			updates["git_hub_token_expires_at"] = gothUser.ExpiresAt
		}
	}
}

func (h *Handler) createUser(gothUser goth.User) (*models.User, error) {
	user := models.User{
		Email:     gothUser.Email,
		Name:      gothUser.Name,
		AvatarURL: gothUser.AvatarURL,
		Provider:  &gothUser.Provider,
	}

	switch gothUser.Provider {
	case "google":
		user.GoogleID = &gothUser.UserID
		user.GoogleAccessToken = &gothUser.AccessToken
		if gothUser.RefreshToken != "" {
			user.GoogleRefreshToken = &gothUser.RefreshToken
		}
		if !gothUser.ExpiresAt.IsZero() {
			user.GoogleTokenExpiresAt = &gothUser.ExpiresAt
		}
	case "github":
		user.GitHubID = &gothUser.UserID
		user.GitHubAccessToken = &gothUser.AccessToken
		if !gothUser.ExpiresAt.IsZero() {
			user.GitHubTokenExpiresAt = &gothUser.ExpiresAt
		}
	}

	if err := h.DB.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %v", err)
	}
	return &user, nil
}
