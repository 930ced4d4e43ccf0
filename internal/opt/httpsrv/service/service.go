package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/httpsrv/model"
	"github.com/traitdex/traitdex/internal/opt/regview"
)

type ControlService interface {
	Status() *model.Status
	Registry() implmap.ImplementorMap
	Implementors(trait string) ([]string, bool)
	Artifact() ([]byte, error)
	TriggerRescan() error
	RunRetention() error
}

type lockInfo struct {
	task     string
	acquired time.Time
}

type controlSvc struct {
	view        *regview.View
	runningMode string

	// rescan pokes the collector pipeline; retention schedules a snapshot
	// cleanup. Both are injected so the service stays transport-only.
	rescan    func() error
	retention func() error

	mu   sync.Mutex // protects access to `lock`
	held bool       // is the lock currently held?
	info lockInfo   // metadata about the lock
}

var _ ControlService = &controlSvc{}

type ControlServiceOpts struct {
	View        *regview.View
	RunningMode string
	Rescan      func() error
	Retention   func() error
}

func NewControlService(opts *ControlServiceOpts) ControlService {
	return &controlSvc{
		view:        opts.View,
		runningMode: opts.RunningMode,
		rescan:      opts.Rescan,
		retention:   opts.Retention,
	}
}

// tryLock attempts to acquire the operation lock
func (s *controlSvc) tryLock(task string) (bool, *lockInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.held {
		// Copy so caller can safely read
		info := s.info
		return false, &info
	}

	s.held = true
	s.info = lockInfo{
		task:     task,
		acquired: time.Now(),
	}
	return true, nil
}

func (s *controlSvc) unlock() {
	s.mu.Lock()
	s.held = false
	s.info = lockInfo{} // clear metadata
	s.mu.Unlock()
}

func (s *controlSvc) Status() *model.Status {
	// read-only; doesn't need to block
	m, publishedAt := s.view.Snapshot()

	status := &model.Status{
		RunningMode:  s.runningMode,
		Traits:       len(m),
		Implementors: m.ImplementorCount(),
	}
	if !publishedAt.IsZero() {
		status.LastPublish = publishedAt.Format(time.RFC3339)
	}
	return status
}

func (s *controlSvc) Registry() implmap.ImplementorMap {
	m, _ := s.view.Snapshot()
	if m == nil {
		return implmap.ImplementorMap{}
	}
	return m
}

func (s *controlSvc) Implementors(trait string) ([]string, bool) {
	m, _ := s.view.Snapshot()
	impls, ok := m[trait]
	return impls, ok
}

func (s *controlSvc) Artifact() ([]byte, error) {
	m, _ := s.view.Snapshot()
	if m == nil {
		m = implmap.ImplementorMap{}
	}
	return implmap.RenderArtifact(m)
}

func (s *controlSvc) TriggerRescan() error {
	if s.rescan == nil {
		return fmt.Errorf("rescan is not available in %s mode", s.runningMode)
	}
	return s.rescan()
}

func (s *controlSvc) RunRetention() error {
	if s.retention == nil {
		return fmt.Errorf("retention is not configured")
	}

	ok, current := s.tryLock("RunRetention")
	if !ok {
		return fmt.Errorf("cannot run RunRetention: %s is already running since %s",
			current.task, current.acquired.Format(time.RFC3339))
	}
	defer s.unlock()

	return s.retention()
}
