package downloads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"homologation/internal/auth"
	"homologation/internal/events"
	"homologation/internal/logger"
	"homologation/pkg/models"
)

// ErrLimitReached is returned when a trial account has used its quota.
var ErrLimitReached = errors.New("download limit reached for trial users")

// Users looks up the account behind a token.
type Users interface {
	GetByID(ctx context.Context, id string) (*auth.User, error)
}

type Handler struct {
	Repo       *Repo
	Users      Users
	Events     events.Publisher
	TrialLimit int
	Log        *logger.Logger
}

func NewHandler(repo *Repo, users Users, pub events.Publisher, trialLimit int, log *logger.Logger) *Handler {
	if pub == nil {
		pub = events.Discard
	}
	return &Handler{Repo: repo, Users: users, Events: pub, TrialLimit: trialLimit, Log: log}
}

// RegisterRoutes mounts the export, profile and history endpoints behind
// authed.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authed gin.HandlerFunc) {
	rg.POST("/export-document", authed, h.exportDocument)
	rg.GET("/profile/", authed, h.profile)
	rg.PATCH("/downloads/:id/status", authed, h.updateStatus)
}

type exportReq struct {
	Language  string             `json:"language"`
	FinalData []models.FinalPair `json:"final_data"`
}

// CheckQuota fails with ErrLimitReached when a trial user already has
// TrialLimit recorded downloads.
func (h *Handler) CheckQuota(ctx context.Context, claims *auth.Claims) error {
	if claims.Role != auth.RoleTrial {
		return nil
	}
	n, err := h.Repo.CountByUser(ctx, claims.UserID)
	if err != nil {
		return err
	}
	if n >= h.TrialLimit {
		return ErrLimitReached
	}
	return nil
}

func (h *Handler) exportDocument(c *gin.Context) {
	var req exportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if len(req.FinalData) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no 'final_data' provided for export"})
		return
	}
	lang, supported := NormalizeLanguage(req.Language)
	if !supported {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported language: " + req.Language})
		return
	}

	if err := h.CheckQuota(ctx, claims); err != nil {
		if errors.Is(err, ErrLimitReached) {
			h.Log.Warn("trial download limit reached", "user_id", claims.UserID)
			c.JSON(http.StatusForbidden, gin.H{"error": "Download limit reached for trial users. Please contact the administrator."})
			return
		}
		h.Log.Error("count downloads failed", "user_id", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify download quota"})
		return
	}

	body, err := RenderCSV(req.FinalData)
	if err != nil {
		h.Log.Error("render sheet failed", "user_id", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate document"})
		return
	}

	cds := CDSIdentifier(req.FinalData)
	snapshot, _ := json.Marshal(req.FinalData)
	d := Download{
		ID:               uuid.NewString(),
		UserID:           claims.UserID,
		TemplateLanguage: lang,
		CDSIdentifier:    cds,
		Status:           StatusOK,
		Snapshot:         string(snapshot),
		DownloadedAt:     time.Now().UTC(),
	}
	// the document is still delivered when the history write fails
	if err := h.Repo.Create(ctx, d); err != nil {
		h.Log.Error("record download failed", "user_id", claims.UserID, "error", err)
	}

	h.Events.Publish(events.Event{
		Type:          events.TypeDocumentExported,
		UserID:        claims.UserID,
		CDSIdentifier: cds,
		Language:      lang,
	})

	name := FileName(cds)
	h.Log.Info("sending sheet", "user_id", claims.UserID, "file", name, "bytes", len(body))
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Header("X-Download-Id", d.ID)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

type historyItem struct {
	ID            string `json:"id"`
	CDSIdentifier string `json:"cds_identifier"`
	DownloadedAt  string `json:"downloaded_at"`
	Status        string `json:"status"`
}

func (h *Handler) profile(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	u, err := h.Users.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user profile not found"})
		return
	}

	list, err := h.Repo.ListByUser(ctx, claims.UserID)
	if err != nil {
		h.Log.Error("list downloads failed", "user_id", claims.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}

	items := make([]historyItem, 0, len(list))
	for _, d := range list {
		items = append(items, historyItem{
			ID:            d.ID,
			CDSIdentifier: d.CDSIdentifier,
			DownloadedAt:  d.DownloadedAt.UTC().Format(time.RFC3339),
			Status:        d.Status,
		})
	}

	resp := gin.H{
		"email":     u.Email,
		"username":  u.Username,
		"role":      u.Role,
		"downloads": items,
	}
	if u.Role == auth.RoleTrial {
		resp["downloads_remaining"] = max(h.TrialLimit-len(list), 0)
	}
	c.JSON(http.StatusOK, resp)
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	status := strings.TrimSpace(req.Status)
	if status == "" || len(status) > 64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status must be 1-64 chars"})
		return
	}

	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	err := h.Repo.UpdateStatus(c.Request.Context(), c.Param("id"), claims.UserID, status)
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "download record not found or you do not have permission to edit it"})
	case err != nil:
		h.Log.Error("update download status failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
	default:
		c.Status(http.StatusNoContent)
	}
}

func requireClaims(c *gin.Context) (*auth.Claims, bool) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return claims, true
}
