package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/eventzone/booking-backend/internal/middleware"
	"github.com/eventzone/booking-backend/internal/models"
	"github.com/eventzone/booking-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// UploadURLPrefix is where uploaded files are served from
const UploadURLPrefix = "/uploads"

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ProfileHandler handles profile reads and edits
type ProfileHandler struct {
	users         *services.UserService
	uploadDir     string
	maxUploadSize int64
	logger        logrus.FieldLogger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(users *services.UserService, uploadDir string, maxUploadSize int64, logger logrus.FieldLogger) *ProfileHandler {
	return &ProfileHandler{
		users:         users,
		uploadDir:     uploadDir,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// GetUser handles GET /api/user/:username
func (h *ProfileHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// UpdateProfile handles POST /api/update-profile
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	var req models.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireSelf(c, req.Username) {
		return
	}

	if err := h.users.UpdateProfile(c.Request.Context(), req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Profile updated successfully")
}

// UploadProfilePic handles POST /api/upload-profile-pic (multipart: username, profilePic)
func (h *ProfileHandler) UploadProfilePic(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize+1<<20)

	username := strings.TrimSpace(c.PostForm("username"))
	if username == "" {
		respondBadRequest(c, "username is required")
		return
	}
	if !requireSelf(c, username) {
		return
	}

	file, err := c.FormFile("profilePic")
	if err != nil {
		respondBadRequest(c, "profilePic file is required")
		return
	}
	if file.Size > h.maxUploadSize {
		respondBadRequest(c, fmt.Sprintf("file exceeds the %d MB limit", h.maxUploadSize>>20))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExtensions[ext] {
		respondBadRequest(c, "only jpg, jpeg, png, gif and webp images are allowed")
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		respondError(c, h.logger, fmt.Errorf("failed to create upload directory: %w", err))
		return
	}

	name := fmt.Sprintf("%s-%s%s", username, uuid.NewString(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		respondError(c, h.logger, fmt.Errorf("failed to save upload: %w", err))
		return
	}

	path := UploadURLPrefix + "/" + name
	if err := h.users.SetProfilePic(c.Request.Context(), username, path); err != nil {
		_ = os.Remove(filepath.Join(h.uploadDir, name))
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Profile picture updated",
		"profilePic": path,
	})
}

// VerifyPassword handles POST /api/verify-password
func (h *ProfileHandler) VerifyPassword(c *gin.Context) {
	var req models.VerifyPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireSelf(c, req.Username) {
		return
	}

	if err := h.users.VerifyPassword(c.Request.Context(), req.Username, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Password verified")
}

// UpdatePassword handles POST /api/update-password
func (h *ProfileHandler) UpdatePassword(c *gin.Context) {
	var req models.UpdatePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if !requireSelf(c, req.Username) {
		return
	}

	if err := h.users.UpdatePassword(c.Request.Context(), req.Username, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, "Password updated successfully")
}

// requireSelf lets a user act on their own account only. Admins may act on any account.
func requireSelf(c *gin.Context, username string) bool {
	userCtx, ok := middleware.GetUserContext(c)
	if ok && (userCtx.IsAdmin() || strings.EqualFold(userCtx.Username, strings.TrimSpace(username))) {
		return true
	}
	c.JSON(http.StatusForbidden, ErrorResponse{
		Success: false,
		Error:   "forbidden",
		Message: "You can only modify your own account",
	})
	return false
}
