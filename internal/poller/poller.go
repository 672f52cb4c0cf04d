package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Refresher is refreshed once per tick.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Poller refreshes a target on a cron schedule. Every run is independent; a
// failed run is logged and the next tick tries again.
type Poller struct {
	schedule cron.Schedule
	spec     string
	target   Refresher
	timeout  time.Duration
	log      logrus.FieldLogger
}

// New parses spec (standard five-field cron or a descriptor such as
// "@every 1m").
func New(spec string, target Refresher, timeout time.Duration, log logrus.FieldLogger) (*Poller, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{schedule: schedule, spec: spec, target: target, timeout: timeout, log: log}, nil
}

// Run refreshes once immediately, then on every tick until ctx is done.
func (p *Poller) Run(ctx context.Context) {
	p.refresh(ctx)

	c := cron.New()
	c.Schedule(p.schedule, cron.FuncJob(func() { p.refresh(ctx) }))
	c.Start()
	p.log.WithField("schedule", p.spec).Info("snapshot poller started")

	<-ctx.Done()
	<-c.Stop().Done()
	p.log.Info("snapshot poller stopped")
}

func (p *Poller) refresh(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := p.target.Refresh(ctx); err != nil {
		p.log.WithError(err).Warn("snapshot refresh failed")
		return
	}
	p.log.WithField("took", time.Since(start)).Debug("snapshot refreshed")
}
