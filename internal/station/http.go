package station

import (
	"context"
	"fmt"
	"net/http"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

// HTTPSource reads snapshots from the station's /data endpoint.
type HTTPSource struct {
	client   *http.Client
	url      string
	user     string
	password string
}

// NewHTTPSource returns a source for url. Basic auth is sent when user is set.
func NewHTTPSource(client *http.Client, url, user, password string) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{client: client, url: url, user: user, password: password}
}

// Snapshot fetches and decodes the current snapshot.
func (s *HTTPSource) Snapshot(ctx context.Context) (models.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return models.Snapshot{}, err
	}
	req.Header.Set("Accept", "application/json")
	if s.user != "" {
		req.SetBasicAuth(s.user, s.password)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("%w: request snapshot: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.Snapshot{}, fmt.Errorf("%w: unexpected status %s", ErrUnavailable, resp.Status)
	}

	snap, err := models.Decode(resp.Body)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, nil
}
