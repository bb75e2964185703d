package processing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"homologation/internal/auth"
	"homologation/internal/logger"
)

const errNoData = "no data could be obtained from any URL"

type Handler struct {
	Service *Service
	Log     *logger.Logger
}

func NewHandler(s *Service, log *logger.Logger) *Handler {
	return &Handler{Service: s, Log: log}
}

// RegisterRoutes mounts the processing endpoint behind authed.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authed gin.HandlerFunc) {
	rg.POST("/process-vehicle", authed, h.processVehicle)
}

func (h *Handler) processVehicle(c *gin.Context) {
	var req Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	claims := auth.MustGetClaims(c)
	userID := ""
	if claims != nil {
		userID = claims.UserID
	}
	h.Log.Info("process vehicle", "user_id", userID,
		"url1", req.URL1, "url2", req.URL2, "url3", req.URL3, "transmission", req.TransmissionOption)

	res, err := h.Service.Process(c.Request.Context(), userID, req)
	switch {
	case errors.Is(err, ErrNoURLs):
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoData})
		return
	case err != nil:
		h.Log.Error("process vehicle failed", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	if len(res.Rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoData})
		return
	}
	for _, issue := range res.Issues {
		h.Log.Debug("derivation issue", "user_id", userID, "issue", issue)
	}
	c.JSON(http.StatusOK, res.Rows)
}
