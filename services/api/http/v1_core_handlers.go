package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleV1ListPages returns the names and titles of all pages
// GET /api/v1/pages
func (s *Server) handleV1ListPages(c *gin.Context) {
	pages := s.catalog.Pages()
	out := make([]gin.H, 0, len(pages))
	for _, p := range pages {
		out = append(out, gin.H{
			"name":       p.Name,
			"title":      p.Title,
			"resolution": p.Resolution,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"data": out,
		"meta": gin.H{
			"count": len(out),
		},
	})
}

// handleV1GetPage returns the full definition of a page
// GET /api/v1/pages/:page
func (s *Server) handleV1GetPage(c *gin.Context) {
	page, ok := s.catalog.Lookup(c.Param("page"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": page,
	})
}
