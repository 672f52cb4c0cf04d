package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// handleV1Snapshot returns the raw station snapshot currently served
// GET /api/v1/snapshot
func (s *Server) handleV1Snapshot(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		s.fail(c, err)
		return
	}

	meta := gin.H{"generated_at": time.Now().UTC().Format(time.RFC3339)}
	if cached, ok := s.source.(interface{ FetchedAt() time.Time }); ok {
		meta["fetched_at"] = cached.FetchedAt().UTC().Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": snap,
		"meta": meta,
	})
}
