package orderbot

import (
	"context"

	contractx "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/contract"
)

type observerEntry struct {
	id       uint64
	observer contractx.Observer
}

// Subscribe registers obs for snapshot notifications and returns a function
// that removes it. Observers run synchronously on the goroutine that performed
// the intent, outside the session lock, so they may call intents themselves.
// Deliveries from concurrent intents can interleave; Snapshot.Version orders
// them.
func (m *Machine) Subscribe(obs contractx.Observer) (unsubscribe func()) {
	if obs == nil {
		return func() {}
	}

	m.observersMu.Lock()
	m.nextObserverID++
	id := m.nextObserverID
	m.observers = append(m.observers, observerEntry{id: id, observer: obs})
	m.observersMu.Unlock()

	return func() {
		m.observersMu.Lock()
		defer m.observersMu.Unlock()
		for i, entry := range m.observers {
			if entry.id == id {
				m.observers = append(m.observers[:i:i], m.observers[i+1:]...)
				return
			}
		}
	}
}

func (m *Machine) notify(ctx context.Context) {
	m.observersMu.RLock()
	if len(m.observers) == 0 {
		m.observersMu.RUnlock()
		return
	}
	entries := make([]observerEntry, len(m.observers))
	copy(entries, m.observers)
	m.observersMu.RUnlock()

	snap := m.Snapshot()
	for _, entry := range entries {
		entry.observer.OnSnapshot(ctx, snap)
	}
}
