// Package regview is the consumer side of the registry publisher: a hook
// target that retains the last published implementors map for the HTTP API.
package regview

import (
	"sync"
	"time"

	"github.com/traitdex/traitdex/internal/core/implmap"
	"github.com/traitdex/traitdex/internal/opt/metrics"
)

type View struct {
	mu          sync.RWMutex
	m           implmap.ImplementorMap
	publishedAt time.Time
}

func New() *View {
	return &View{}
}

// Update is installed as the registry hook. It receives complete maps only;
// the publisher guarantees there is no partial state to observe.
func (v *View) Update(m implmap.ImplementorMap) {
	now := time.Now()

	v.mu.Lock()
	v.m = m
	v.publishedAt = now
	v.mu.Unlock()

	metrics.PublishesTotal.Inc()
	metrics.RegistryTraits.Set(float64(len(m)))
	metrics.RegistryImplementors.Set(float64(m.ImplementorCount()))
	metrics.LastPublishUnix.Set(float64(now.Unix()))
}

// Snapshot returns the last published map and its publish time. The map is
// immutable after publication; callers must not modify it.
func (v *View) Snapshot() (implmap.ImplementorMap, time.Time) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.m, v.publishedAt
}
