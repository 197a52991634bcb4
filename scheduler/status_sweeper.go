package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultSweepSpec = "@every 30s"
	sweepTimeout     = 10 * time.Second
)

// Opener opens registration for scheduled tournaments that are due.
type Opener interface {
	OpenDueRegistrations(ctx context.Context) (int64, error)
}

// StatusSweeper periodically applies the scheduled -> registration_open
// transition so tournaments open even when nobody lists them.
type StatusSweeper struct {
	opener Opener
	spec   string
	cron   *cron.Cron
	log    *zap.Logger
}

func NewStatusSweeper(opener Opener, spec string, log *zap.Logger) *StatusSweeper {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	return &StatusSweeper{
		opener: opener,
		spec:   spec,
		cron:   cron.New(cron.WithLogger(cron.DiscardLogger)),
		log:    log,
	}
}

// Run starts the schedule, sweeps once immediately and blocks until ctx is
// done. It waits for a running sweep before returning.
func (s *StatusSweeper) Run(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return err
	}
	s.RunOnce(ctx)
	s.cron.Start()
	s.log.Info("status sweeper started", zap.String("spec", s.spec))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *StatusSweeper) RunOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	if _, err := s.opener.OpenDueRegistrations(sweepCtx); err != nil {
		s.log.Warn("status sweep failed", zap.Error(err))
	}
}
