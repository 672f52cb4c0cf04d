package http

import (
	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/plantstation-viewer/internal/render"
)

// registerV1Routes sets up the v1 API structure
// Groups: /api/v1/pages, /api/v1/dashboard, /api/v1/snapshot
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}

	// Page catalog
	pages := v1.Group("/pages")
	{
		pages.GET("", s.handleV1ListPages)
		pages.GET("/:page", s.handleV1GetPage)
	}

	// Chart payloads and rendered charts
	dashboard := v1.Group("/dashboard")
	{
		dashboard.GET("/:page", s.handleV1Dashboard)
		dashboard.GET("/:page/chart.svg", s.handleV1DashboardChart(render.FormatSVG))
		dashboard.GET("/:page/chart.png", s.handleV1DashboardChart(render.FormatPNG))
	}

	// Raw station snapshot currently served
	v1.GET("/snapshot", s.handleV1Snapshot)
}

func apiVersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", "v1")
		c.Next()
	}
}
