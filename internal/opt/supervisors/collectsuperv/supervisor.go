// Package collectsuperv schedules periodic maintenance for the collector:
// full rescans (which also refresh peer data) and snapshot retention.
package collectsuperv

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/traitdex/traitdex/config"
	"github.com/traitdex/traitdex/internal/opt/archive"
)

type CollectSupervisorOpts struct {
	// Rescan pokes the collect pipeline; never nil.
	Rescan func() error
	// Archiver is nil when no storage backend is configured.
	Archiver *archive.Archiver
}

type CollectSupervisor struct {
	l    *slog.Logger
	cfg  *config.Config
	opts *CollectSupervisorOpts
}

func NewCollectSupervisor(cfg *config.Config, opts *CollectSupervisorOpts) *CollectSupervisor {
	return &CollectSupervisor{
		l:    slog.With(slog.String("component", "collect-supervisor")),
		cfg:  cfg,
		opts: opts,
	}
}

func (u *CollectSupervisor) log() *slog.Logger {
	if u.l != nil {
		return u.l
	}
	return slog.With(slog.String("component", "collect-supervisor"))
}

func (u *CollectSupervisor) Run(ctx context.Context) {
	if u.cfg.Collector.Cron == "" {
		u.log().Info("no cron schedule configured, supervisor idle")
		<-ctx.Done()
		return
	}

	// POSIX compatible cron syntax: "* * * * *". Without support of seconds.
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	_, err := c.AddFunc(u.cfg.Collector.Cron, func() {
		u.log().Info("starting scheduled rescan")
		if err := u.opts.Rescan(); err != nil {
			// a pending trigger already covers this tick
			u.log().Debug("scheduled rescan skipped", slog.Any("err", err))
		}

		if u.opts.Archiver != nil && u.cfg.Storage.Retention.Enable {
			u.log().Info("starting snapshot retention")
			policy := archive.RetentionPolicy{
				KeepLast:   u.cfg.Storage.Retention.KeepLast,
				KeepPeriod: u.cfg.RetentionKeepPeriod(),
			}
			if err := u.opts.Archiver.PerformRetention(ctx, policy); err != nil {
				u.log().Error("snapshot retention failed", slog.Any("err", err))
			}
		}
	})
	if err != nil {
		u.log().Error("cannot schedule rescan cron", slog.Any("err", err))
		return
	}

	c.Start()
	u.log().Info("supervisor started", slog.String("cron", u.cfg.Collector.Cron))

	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	u.log().Info("supervisor stopped")
}
