package cmd

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/grafana/dskit/services"

	"github.com/traitdex/traitdex/cmd/loops"
	"github.com/traitdex/traitdex/cmd/repo"
	"github.com/traitdex/traitdex/config"
	"github.com/traitdex/traitdex/internal/core/registry"
	"github.com/traitdex/traitdex/internal/opt/archive"
	"github.com/traitdex/traitdex/internal/opt/httpsrv"
	"github.com/traitdex/traitdex/internal/opt/jobq"
	"github.com/traitdex/traitdex/internal/opt/loader"
	"github.com/traitdex/traitdex/internal/opt/modes/collect"
	"github.com/traitdex/traitdex/internal/opt/regview"
	"github.com/traitdex/traitdex/internal/opt/remote"
	"github.com/traitdex/traitdex/internal/opt/supervisors/collectsuperv"
	"github.com/traitdex/traitdex/internal/opt/watcher"
)

func RunDaemonMode(cfg *config.Config) {
	verbose := strings.EqualFold(cfg.Log.Level, "trace")

	// setup context
	ctx, cancel := context.WithCancel(context.Background())
	ctx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()
	defer cancel()

	// registry plumbing: the publisher hands completed maps to the view,
	// the view backs the HTTP surface
	pub := registry.NewPublisher()
	view := regview.New()
	pub.SetHook(view.Update)

	var fetcher *remote.Fetcher
	if len(cfg.Peers.URLs) > 0 {
		fetcher = remote.NewFetcher(&remote.FetcherOpts{
			URLs:       cfg.Peers.URLs,
			Timeout:    cfg.PeerTimeout(),
			RetryCount: cfg.Peers.RetryCount,
		})
	}

	var archiver *archive.Archiver
	if cfg.HasStorageConfigured() {
		stor, err := repo.SetupStorage()
		if err != nil {
			//nolint:gocritic
			log.Fatal(err)
		}
		archiver = archive.NewArchiver(&archive.ArchiverOpts{
			Storage:     stor,
			StorageName: cfg.Storage.Name,
		})
	}

	jobQueue := jobq.NewJobQueue(16)
	jobQueue.Start(ctx)

	pipeline := collect.NewCollectPipelineService(&collect.CollectPipelineOpts{
		Loader:   loader.New(cfg.Main.DocsDir),
		Fetcher:  fetcher,
		Pub:      pub,
		Archiver: archiver,
		JobQueue: jobQueue,
	}, slog.Default())

	if err := services.StartAndAwaitRunning(ctx, pipeline); err != nil {
		log.Fatal(err)
	}

	// Use WaitGroup to wait for all goroutines to finish
	var wg sync.WaitGroup

	// docs dir watcher
	if cfg.Collector.Watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("watcher panicked",
						slog.Any("panic", r),
						slog.String("goroutine", "watcher"),
					)
				}
			}()

			w := watcher.New(cfg.Main.DocsDir, cfg.ScanDebounce(), func() {
				// a pending trigger already covers this burst
				_ = pipeline.Trigger()
			})
			if err := w.Run(ctx); err != nil {
				slog.Error("watcher failed", slog.Any("err", err))
			}
		}()
	}

	// cron supervisor (scheduled rescan + retention)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("supervisor panicked",
					slog.Any("panic", r),
					slog.String("goroutine", "supervisor"),
				)
			}
		}()

		sup := collectsuperv.NewCollectSupervisor(cfg, &collectsuperv.CollectSupervisorOpts{
			Rescan:   pipeline.Trigger,
			Archiver: archiver,
		})
		sup.Run(ctx)
	}()

	// HTTP server
	// It shouldn't cancel() the pipeline even on error.
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("http server panicked",
					slog.Any("panic", r),
					slog.String("goroutine", "http-server"),
				)
			}
		}()

		handlers := httpsrv.InitHTTPHandlers(&httpsrv.HTTPHandlersOpts{
			View:        view,
			Verbose:     verbose,
			RunningMode: config.ModeDaemon,
			Rescan:      pipeline.Trigger,
			Retention:   retentionFunc(cfg, jobQueue, archiver),
		})
		if err := loops.RunHTTPServer(ctx, cfg.Main.ListenPort, handlers); err != nil {
			slog.Error("http server failed", slog.Any("err", err))
		}
	}()

	// Wait for signal (context cancellation)
	<-ctx.Done()
	slog.Info("shutting down, waiting for goroutines...")

	if err := services.StopAndAwaitTerminated(context.Background(), pipeline); err != nil {
		slog.Error("pipeline shutdown error", slog.Any("err", err))
	}

	// Wait for all goroutines to finish
	wg.Wait()
	slog.Info("all components shut down cleanly")
}

// retentionFunc schedules a snapshot retention run on the job queue, or
// returns nil when no storage backend is configured.
func retentionFunc(cfg *config.Config, jobQueue *jobq.JobQueue, archiver *archive.Archiver) func() error {
	if archiver == nil {
		return nil
	}
	policy := archive.RetentionPolicy{
		KeepLast:   cfg.Storage.Retention.KeepLast,
		KeepPeriod: cfg.RetentionKeepPeriod(),
	}
	return func() error {
		return jobQueue.Submit("snapshot-retention", func(jobCtx context.Context) {
			if err := archiver.PerformRetention(jobCtx, policy); err != nil {
				slog.Error("snapshot retention failed", slog.Any("err", err))
			}
		})
	}
}
