package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/showscribe/showscribe/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// handleUnifiedVideo handles POST /api/videos/unified. The processing result
// always carries its own success flag; HTTP status codes are reserved for
// request validation and quota denial.
func (s *Server) handleUnifiedVideo(c *gin.Context) {
	var req model.UnifiedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result := s.unifier.Process(c.Request.Context(), req)

	if result.Success && req.UserID != "" && s.usage != nil {
		duration := 0
		if result.Metadata != nil {
			duration = result.Metadata.Duration
		}

		check := s.usage.CanProcessYouTubeVideo(c.Request.Context(), req.UserID, duration)
		if !check.CanProcess {
			s.logger.Warn("video processing denied by quota",
				zap.String("user_id", req.UserID),
				zap.String("video_id", result.VideoID),
				zap.Int("estimated_minutes", check.EstimatedMinutes))
			c.JSON(http.StatusForbidden, check)
			return
		}

		s.usage.UpdateUsageAfterYouTubeVideo(c.Request.Context(), req.UserID, duration)
	}

	c.JSON(http.StatusOK, result)
}

// handleUsage handles GET /api/usage?userId=...
func (s *Server) handleUsage(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "userId is required"})
		return
	}

	entry := s.usage.GetCurrentUsage(c.Request.Context(), userID)
	c.JSON(http.StatusOK, entry)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "showscribe",
	})
}
