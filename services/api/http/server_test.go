package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/plantstation-viewer/internal/chart"
	"github.com/02loveslollipop/plantstation-viewer/internal/metrics"
	"github.com/02loveslollipop/plantstation-viewer/internal/models"
	"github.com/02loveslollipop/plantstation-viewer/internal/station"
	"github.com/02loveslollipop/plantstation-viewer/services/api/config"
	httpserver "github.com/02loveslollipop/plantstation-viewer/services/api/http"
)

const dualStation = `{
	"data": {
		"weight": [[1500, 1490, 1480], [1400, 1390]],
		"temperature": [2150, 2200, 2250],
		"humidity": [4500, 4600, 4700],
		"water": [[0, 3000, 0], [0, 0]],
		"time": 0
	},
	"mindata": {
		"weight": [[1480, 1481], [1390, 1391]],
		"temperature": [2250, 2251],
		"humidity": [4700, 4701],
		"time": 59
	},
	"config": [
		{"max": 20000, "low": 1400, "dst": 1500, "range": 100},
		{"max": 10000, "low": 1300, "dst": 1450, "range": 50}
	]
}`

type stubSource struct {
	doc   string
	err   error
	panic bool
}

func (s stubSource) Snapshot(context.Context) (models.Snapshot, error) {
	if s.panic {
		panic("boom")
	}
	if s.err != nil {
		return models.Snapshot{}, s.err
	}
	return models.Parse([]byte(s.doc))
}

func newServer(t *testing.T, src station.Source, token string) (*httpserver.Server, *metrics.Recorder) {
	t.Helper()
	catalog, err := chart.OpenCatalog("")
	require.NoError(t, err)
	logger, _ := test.NewNullLogger()
	rec := metrics.New()
	cfg := config.Config{Port: 8080, RequestTimeout: time.Second, BearerToken: token}
	return httpserver.New(cfg, src, catalog, rec, logger), rec
}

func get(t *testing.T, srv *httpserver.Server, path string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	srv.Engine().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzAndRequestID(t *testing.T) {
	srv, _ := newServer(t, stubSource{doc: dualStation}, "")

	rec := get(t, srv, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = get(t, srv, "/healthz", "X-Request-ID", "abc-123")
	require.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestListAndGetPages(t *testing.T) {
	srv, _ := newServer(t, stubSource{doc: dualStation}, "")

	rec := get(t, srv, "/api/v1/pages")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "v1", rec.Header().Get("X-API-Version"))
	body := decode(t, rec)
	require.Equal(t, 3.0, body["meta"].(map[string]any)["count"])

	rec = get(t, srv, "/api/v1/pages/dual")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "dual", decode(t, rec)["data"].(map[string]any)["name"])

	rec = get(t, srv, "/api/v1/pages/weekly")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboard(t *testing.T) {
	srv, rec := newServer(t, stubSource{doc: dualStation}, "")

	resp := get(t, srv, "/api/v1/dashboard/dual")
	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"data":[null,1400,1390]`)

	data := decode(t, resp)["data"].(map[string]any)
	require.Equal(t, []any{22.0, 23.0, 0.0}, data["labels"])
	require.Len(t, data["lines"], 8)

	metricsResp := httptest.NewRecorder()
	rec.Handler().ServeHTTP(metricsResp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, metricsResp.Body.String(), `plantstation_page_builds_total{page="dual",result="ok"} 1`)
}

func TestDashboardErrors(t *testing.T) {
	cases := map[string]struct {
		src    station.Source
		path   string
		status int
	}{
		"unknown page":      {stubSource{doc: dualStation}, "/api/v1/dashboard/weekly", http.StatusNotFound},
		"station offline":   {stubSource{err: station.ErrUnavailable}, "/api/v1/dashboard/dual", http.StatusBadGateway},
		"fetch timeout":     {stubSource{err: context.DeadlineExceeded}, "/api/v1/dashboard/dual", http.StatusBadGateway},
		"malformed":         {stubSource{doc: `{"data": {"weight": [1], "time": 0}}`}, "/api/v1/dashboard/dual", http.StatusUnprocessableEntity},
		"config incomplete": {stubSource{doc: strings.Replace(dualStation, `"range": 50`, `"range": null`, 1)}, "/api/v1/dashboard/dual", http.StatusUnprocessableEntity},
		"no minute window":  {stubSource{doc: `{"data": {"weight": [1], "time": 0}}`}, "/api/v1/dashboard/minute", http.StatusUnprocessableEntity},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := newServer(t, tc.src, "")
			rec := get(t, srv, tc.path)
			require.Equal(t, tc.status, rec.Code)
			require.NotEmpty(t, decode(t, rec)["error"])
		})
	}
}

func TestDashboardChart(t *testing.T) {
	srv, _ := newServer(t, stubSource{doc: dualStation}, "")

	rec := get(t, srv, "/api/v1/dashboard/dual/chart.svg?axis=weight-y-axis&width=640&height=320")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Body.String(), "<svg")

	rec = get(t, srv, "/api/v1/dashboard/dual/chart.png?axis=water-y-axis")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.True(t, strings.HasPrefix(rec.Body.String(), "\x89PNG"))

	rec = get(t, srv, "/api/v1/dashboard/dual/chart.svg?axis=water-y-axis&format=png")
	require.Equal(t, "image/svg+xml", rec.Header().Get("Content-Type"))

	require.Equal(t, http.StatusNotFound, get(t, srv, "/api/v1/dashboard/dual/chart.gif?axis=water-y-axis").Code)

	for _, q := range []string{"", "?axis=weight-y-axis&width=0", "?axis=weight-y-axis&height=5000", "?axis=wind-y-axis"} {
		rec = get(t, srv, "/api/v1/dashboard/dual/chart.svg"+q)
		require.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestSnapshotFromCache(t *testing.T) {
	cache := station.NewCache(stubSource{doc: dualStation})
	require.NoError(t, cache.Refresh(context.Background()))
	srv, _ := newServer(t, cache, "")

	rec := get(t, srv, "/api/v1/snapshot")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Contains(t, body["meta"], "fetched_at")
	require.Equal(t, 0.0, body["data"].(map[string]any)["data"].(map[string]any)["time"])
}

func TestBearerToken(t *testing.T) {
	srv, _ := newServer(t, stubSource{doc: dualStation}, "s3cret")

	require.Equal(t, http.StatusUnauthorized, get(t, srv, "/api/v1/pages").Code)
	require.Equal(t, http.StatusUnauthorized, get(t, srv, "/api/v1/pages", "Authorization", "Bearer nope").Code)
	require.Equal(t, http.StatusOK, get(t, srv, "/api/v1/pages", "Authorization", "Bearer s3cret").Code)
	require.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestPanicRecovery(t *testing.T) {
	srv, _ := newServer(t, stubSource{panic: true}, "")

	rec := get(t, srv, "/api/v1/snapshot")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal error", decode(t, rec)["error"])
}
