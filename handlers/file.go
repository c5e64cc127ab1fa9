package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/sharevault/sharevault-backend/auth/middleware"
	"github.com/sharevault/sharevault-backend/plans"
	"github.com/sharevault/sharevault-backend/registry"
)

// FileHandler serves the file lifecycle endpoints. Uploads are quota-gated
// here, before the registry or the blob store is touched; the registry
// itself does not enforce plan limits.
type FileHandler struct {
	Registry *registry.Registry
	Plans    *plans.Service
}

func NewFileHandler(reg *registry.Registry, plans *plans.Service) *FileHandler {
	return &FileHandler{Registry: reg, Plans: plans}
}

func (h *FileHandler) Upload(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if fileHeader.Size > registry.MaxFileSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": registry.ErrFileTooLarge.Error()})
		return
	}

	if blocked, msg := h.quotaExceeded(c, userID); blocked {
		c.JSON(http.StatusForbidden, gin.H{
			"error":       msg,
			"upgrade_url": "/subscription",
		})
		return
	}
	if c.IsAborted() {
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}
	defer src.Close()

	file, err := h.Registry.Upload(
		c.Request.Context(),
		userID.String(),
		fileHeader.Filename,
		src,
		fileHeader.Size,
		fileHeader.Header.Get("Content-Type"),
	)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		case errors.Is(err, registry.ErrUploadConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			// Blob store failures are surfaced verbatim.
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"file": file})
}

// quotaExceeded checks the caller's plan limit against their current file
// count. Missing subscription means the unlimited default tier. Lookup
// failures abort the request.
func (h *FileHandler) quotaExceeded(c *gin.Context, userID uuid.UUID) (bool, string) {
	sub, err := h.Plans.Subscription(c.Request.Context(), userID)
	if err != nil {
		log.Printf("Subscription lookup failed for %s: %v", userID, err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to check subscription"})
		return false, ""
	}
	if sub == nil || sub.Plan.FileLimit <= 0 {
		return false, ""
	}

	count, err := h.Registry.Count(c.Request.Context(), userID.String())
	if err != nil {
		log.Printf("File count failed for %s: %v", userID, err)
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "Failed to check file count"})
		return false, ""
	}
	if count >= sub.Plan.FileLimit {
		return true, fmt.Sprintf("You've reached the %d-file limit of the %s plan", sub.Plan.FileLimit, sub.Plan.Name)
	}
	return false, ""
}

func (h *FileHandler) List(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	files, err := h.Registry.List(c.Request.Context(), userID.String())
	if err != nil {
		log.Printf("Listing files failed for %s: %v", userID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch files"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (h *FileHandler) Delete(c *gin.Context) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	if err := h.Registry.Delete(c.Request.Context(), userID.String(), path); err != nil {
		if errors.Is(err, registry.ErrNotOwner) {
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this file"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *FileHandler) ShareLink(c *gin.Context) {
	link, ok := h.shareLink(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}

// ShareQR renders the share link as a QR code PNG.
func (h *FileHandler) ShareQR(c *gin.Context) {
	link, ok := h.shareLink(c)
	if !ok {
		return
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render QR code"})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *FileHandler) shareLink(c *gin.Context) (string, bool) {
	userID := c.MustGet(middleware.UserIDKey).(uuid.UUID)

	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return "", false
	}

	link, err := h.Registry.ShareLink(c.Request.Context(), userID.String(), path)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't own this file"})
		case errors.Is(err, registry.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		}
		return "", false
	}
	return link, true
}
