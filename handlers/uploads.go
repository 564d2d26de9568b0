package handlers

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/malikarslanasif131/hackathon-backend/internal/auth"
	"github.com/malikarslanasif131/hackathon-backend/internal/schema"
	"github.com/malikarslanasif131/hackathon-backend/internal/storage"
	"github.com/malikarslanasif131/hackathon-backend/internal/store"
	"github.com/malikarslanasif131/hackathon-backend/pkg/logger"
	"github.com/malikarslanasif131/hackathon-backend/pkg/middleware"
)

const maxResumeSize = 10 << 20 // 10 MiB

// ResumeStorage is the object-storage surface the upload handler needs,
// satisfied by *storage.ResumeStorage.
type ResumeStorage interface {
	Upload(ctx context.Context, uid string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(ctx context.Context, uid string, expires time.Duration) (string, error)
}

var _ ResumeStorage = (*storage.ResumeStorage)(nil)

// UploadHandler stores participant resumes in object storage and hands out
// short-lived download links to admins.
type UploadHandler struct {
	resumes ResumeStorage
	store   store.Store
	authz   auth.Authorizer
}

func NewUploadHandler(resumes ResumeStorage, st store.Store, authz auth.Authorizer) *UploadHandler {
	return &UploadHandler{resumes: resumes, store: st, authz: authz}
}

func (h *UploadHandler) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/uploads")
	g.POST("/resume", middleware.RequireAuth(h.authz), h.UploadResume)
	g.GET("/resume/:uid", h.DownloadResume)
}

// UploadResume accepts a multipart "resume" file and attaches the object key
// to the caller's account.
func (h *UploadHandler) UploadResume(c *gin.Context) {
	caller := middleware.Caller(c)

	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Bad Request: resume file is required"})
		return
	}
	defer file.Close()
	if header.Size > maxResumeSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Bad Request: resume exceeds 10 MiB"})
		return
	}

	ctx := c.Request.Context()
	key, err := h.resumes.Upload(ctx, caller.ID, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		logger.Errorf("uploads: store resume for %s failed: %v", caller.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not store resume"})
		return
	}
	if err := h.store.Update(ctx, store.Users, caller.ID, map[string]any{"resume": key}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not record resume"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "key": key})
}

// DownloadResume returns a presigned link for a participant's resume.
// Admins only.
func (h *UploadHandler) DownloadResume(c *gin.Context) {
	ctx := c.Request.Context()
	v := h.authz.Authenticate(ctx, middleware.BearerToken(c), schema.AllowList{"admins": {1}})
	if v.Status != http.StatusOK {
		c.JSON(v.Status, gin.H{"message": "Authentication Error: " + v.Message})
		return
	}

	// only presign when the account actually recorded an upload; a bare
	// presigned URL would 404 at the object store instead of here
	uid := c.Param("uid")
	doc, err := h.store.Get(ctx, store.Users, uid)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found: unknown user"})
		return
	}
	if key, _ := doc.Fields["resume"].(string); key == "" {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found: no resume for this user"})
		return
	}

	url, err := h.resumes.PresignedURL(ctx, uid, 15*time.Minute)
	if err != nil {
		logger.Errorf("uploads: presign resume for %s failed: %v", uid, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal Server Error: could not create download link"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "OK", "url": url})
}
