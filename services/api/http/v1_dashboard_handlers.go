package http

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
	"github.com/02loveslollipop/plantstation-viewer/internal/render"
	"github.com/02loveslollipop/plantstation-viewer/internal/station"
)

const maxChartSide = 4096

// statusFor maps build, fetch and render errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chart.ErrMalformedInput),
		errors.Is(err, chart.ErrConfigIncomplete),
		errors.Is(err, render.ErrNothingToRender):
		return http.StatusUnprocessableEntity
	case errors.Is(err, render.ErrUnknownAxis):
		return http.StatusBadRequest
	case errors.Is(err, station.ErrUnavailable),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.WithError(err).WithField("request_id", c.GetString(requestIDKey)).Warn("dashboard request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// buildPage fetches one snapshot and builds the requested page from it. On
// failure the response has already been written.
func (s *Server) buildPage(c *gin.Context) (chart.Payload, bool) {
	page, ok := s.catalog.Lookup(c.Param("page"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "page not found"})
		return chart.Payload{}, false
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.cfg.RequestTimeout)
	defer cancel()

	snap, err := s.source.Snapshot(ctx)
	if err != nil {
		s.fail(c, err)
		return chart.Payload{}, false
	}

	start := time.Now()
	payload, err := s.charts.Build(snap, page)
	s.metrics.ObserveBuild(page.Name, time.Since(start), err)
	if err != nil {
		s.fail(c, err)
		return chart.Payload{}, false
	}
	return payload, true
}

// handleV1Dashboard returns the chart payload of a page
// GET /api/v1/dashboard/:page
func (s *Server) handleV1Dashboard(c *gin.Context) {
	payload, ok := s.buildPage(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": payload,
		"meta": gin.H{
			"points":       len(payload.Labels),
			"series":       len(payload.Series),
			"lines":        len(payload.Lines),
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// handleV1DashboardChart renders one axis of a page in the format named by
// the route
// GET /api/v1/dashboard/:page/chart.svg?axis=weight-y-axis&width=1024&height=400
// GET /api/v1/dashboard/:page/chart.png?axis=weight-y-axis
func (s *Server) handleV1DashboardChart(format render.Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		opts := render.Options{Axis: c.Query("axis"), Format: format}
		if opts.Axis == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "axis is required"})
			return
		}

		for name, dst := range map[string]*int{"width": &opts.Width, "height": &opts.Height} {
			if v := c.Query(name); v != "" {
				parsed, err := strconv.Atoi(v)
				if err != nil || parsed <= 0 || parsed > maxChartSide {
					c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
					return
				}
				*dst = parsed
			}
		}

		payload, ok := s.buildPage(c)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := render.Render(&buf, payload, opts); err != nil {
			s.fail(c, err)
			return
		}
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}
