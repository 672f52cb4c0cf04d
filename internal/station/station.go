package station

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

// ErrUnavailable marks a snapshot that could not be fetched from the station
// or its mirror.
var ErrUnavailable = errors.New("station unavailable")

// ErrNoSnapshot is returned when the mirror holds no snapshot yet.
var ErrNoSnapshot = fmt.Errorf("%w: no snapshot stored", ErrUnavailable)

// Source yields the station's current snapshot.
type Source interface {
	Snapshot(ctx context.Context) (models.Snapshot, error)
}

// FetchObserver is notified about every fetch a Source performs.
type FetchObserver interface {
	ObserveFetch(source string, err error)
}

type observed struct {
	Source
	name string
	obs  FetchObserver
}

func (o observed) Snapshot(ctx context.Context) (models.Snapshot, error) {
	snap, err := o.Source.Snapshot(ctx)
	o.obs.ObserveFetch(o.name, err)
	return snap, err
}

// Instrument reports every fetch of src to obs under name. A nil obs returns
// src unchanged.
func Instrument(src Source, name string, obs FetchObserver) Source {
	if obs == nil {
		return src
	}
	return observed{Source: src, name: name, obs: obs}
}

// Options selects and configures a Source.
type Options struct {
	URL         string
	DatabaseURL string
	User        string
	Password    string
	Timeout     time.Duration
}

// Open returns the Source described by opts, its metrics name and a release
// func. The station URL wins when both URL and DatabaseURL are set.
func Open(ctx context.Context, opts Options) (Source, string, func(), error) {
	switch {
	case opts.URL != "":
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client := &http.Client{Timeout: timeout}
		return NewHTTPSource(client, opts.URL, opts.User, opts.Password), "http", func() {}, nil
	case opts.DatabaseURL != "":
		src, err := NewPGSource(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		return src, "postgres", src.Close, nil
	default:
		return nil, "", nil, errors.New("station URL or database URL is required")
	}
}
