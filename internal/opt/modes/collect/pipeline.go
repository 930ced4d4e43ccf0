// Package collect runs the scan -> merge -> publish pipeline of the daemon.
package collect

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/grafana/dskit/services"

	"github.com/traitdex/traitdex/internal/core/registry"
	"github.com/traitdex/traitdex/internal/opt/archive"
	"github.com/traitdex/traitdex/internal/opt/jobq"
	"github.com/traitdex/traitdex/internal/opt/loader"
	"github.com/traitdex/traitdex/internal/opt/remote"
)

// CollectPipelineService owns one registry publication cycle:
//
//	scan local fragments -> merge peer maps -> single Publish -> archive job
//
// A cycle always assembles the complete map before publishing, so consumers
// never observe a partial registry. Cycles run on demand: the initial one at
// startup, then one per trigger (watcher debounce, cron, POST /rescan).
type CollectPipelineService struct {
	*services.BasicService
	log      *slog.Logger
	loader   *loader.Loader
	fetcher  *remote.Fetcher
	pub      *registry.Publisher
	archiver *archive.Archiver
	jobQueue *jobq.JobQueue
	trigger  chan struct{}
}

type CollectPipelineOpts struct {
	Loader   *loader.Loader
	Fetcher  *remote.Fetcher    // nil when no peers configured
	Pub      *registry.Publisher
	Archiver *archive.Archiver // nil when no storage configured
	JobQueue *jobq.JobQueue
}

func NewCollectPipelineService(opts *CollectPipelineOpts, log *slog.Logger) *CollectPipelineService {
	s := &CollectPipelineService{
		log:      log.With("component", "collect-pipeline"),
		loader:   opts.Loader,
		fetcher:  opts.Fetcher,
		pub:      opts.Pub,
		archiver: opts.Archiver,
		jobQueue: opts.JobQueue,
		trigger:  make(chan struct{}, 1),
	}

	s.BasicService = services.NewBasicService(nil, s.run, nil).
		WithName("collect-pipeline")

	return s
}

// Trigger schedules a rescan cycle. Triggers collapse: while one is pending,
// further ones are no-ops.
func (s *CollectPipelineService) Trigger() error {
	select {
	case s.trigger <- struct{}{}:
		return nil
	default:
		return fmt.Errorf("rescan already pending")
	}
}

func (s *CollectPipelineService) run(ctx context.Context) error {
	s.log.Info("collect pipeline started")

	// initial publication
	if err := s.runCycle(ctx); err != nil {
		s.log.Error("initial scan failed", slog.Any("err", err))
	}

	for {
		select {
		case <-ctx.Done():
			s.log.Info("collect pipeline context canceled, stopping")
			return nil
		case <-s.trigger:
			if err := s.runCycle(ctx); err != nil {
				// one broken build must not take the daemon down; the last
				// good map stays published
				s.log.Error("scan cycle failed", slog.Any("err", err))
			}
		}
	}
}

func (s *CollectPipelineService) runCycle(ctx context.Context) error {
	m, err := s.loader.Scan()
	if err != nil {
		return err
	}

	// Peer traits merge under the local ones: local fragments win on
	// duplicates, peer order follows the configured URL order.
	if s.fetcher != nil {
		for _, peer := range s.fetcher.FetchAll(ctx) {
			m.MergeFragment(peer)
		}
	}

	s.pub.Publish(m)
	s.log.Info("registry published",
		slog.Int("traits", len(m)),
		slog.Int("implementors", m.ImplementorCount()),
	)

	if s.archiver != nil {
		snapshot := m.Clone()
		err := s.jobQueue.Submit("snapshot-upload", func(jobCtx context.Context) {
			if err := s.archiver.Upload(jobCtx, snapshot); err != nil {
				s.log.Error("snapshot upload failed", slog.Any("err", err))
			}
		})
		if err != nil {
			s.log.Warn("snapshot upload not scheduled", slog.Any("err", err))
		}
	}
	return nil
}
