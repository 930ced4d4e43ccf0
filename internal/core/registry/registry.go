// Package registry implements publication of a completed implementors map.
//
// A consumer installs a registration hook; a producer publishes a map. When
// the hook is already installed at publish time it receives the map directly,
// otherwise the map is parked in a pending slot and handed over as soon as a
// hook shows up. The publisher is an explicit value wired in by the caller;
// there is no package-level registry.
package registry

import (
	"sync"

	"github.com/traitdex/traitdex/internal/core/implmap"
)

// Hook receives a completed implementors map. It is invoked exactly once per
// published map, with the map fully assembled, never a partial view.
type Hook func(m implmap.ImplementorMap)

// Publisher delivers implementors maps to a single registration hook.
// The zero value is not usable; construct with NewPublisher.
type Publisher struct {
	mu      sync.Mutex
	hook    Hook
	pending implmap.ImplementorMap
}

func NewPublisher() *Publisher {
	return &Publisher{}
}

// Publish hands m to the installed hook, or parks it in the pending slot when
// no hook is installed yet. The map is cloned first, so later mutation by the
// producer cannot leak into what the consumer sees. A publish within the same
// cycle before a hook arrives replaces the pending snapshot wholesale; the
// slot never holds a partially assembled map.
func (p *Publisher) Publish(m implmap.ImplementorMap) {
	snapshot := m.Clone()

	p.mu.Lock()
	hook := p.hook
	if hook == nil {
		p.pending = snapshot
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	// Invoked outside the lock: the hook may call back into the publisher.
	hook(snapshot)
}

// SetHook installs the registration hook. If a map is already pending it is
// delivered immediately and the slot is cleared. Passing nil uninstalls the
// hook; subsequent publishes park in the pending slot again.
func (p *Publisher) SetHook(h Hook) {
	p.mu.Lock()
	p.hook = h
	var deliver implmap.ImplementorMap
	if h != nil && p.pending != nil {
		deliver = p.pending
		p.pending = nil
	}
	p.mu.Unlock()

	if deliver != nil {
		h(deliver)
	}
}

// Pending returns the parked map, or nil when the slot is empty.
func (p *Publisher) Pending() implmap.ImplementorMap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending
}
