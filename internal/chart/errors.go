package chart

import (
	"errors"

	"github.com/02loveslollipop/plantstation-viewer/internal/models"
)

var (
	// ErrMalformedInput reports a snapshot or page that cannot produce a
	// chart: missing arrays, out of range channels or window times,
	// non-numeric samples. It is the same value as models.ErrMalformed.
	ErrMalformedInput = models.ErrMalformed

	// ErrConfigIncomplete reports a threshold config lacking low, dst,
	// range or max.
	ErrConfigIncomplete = errors.New("config incomplete")

	// ErrDivisionDegenerate is raised (as a panic) when a segment with no
	// members is closed. Average never does that.
	ErrDivisionDegenerate = errors.New("segment average over zero members")
)
