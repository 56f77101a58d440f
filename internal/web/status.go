package web

import (
	"sync/atomic"
	"time"

	"maze-runner/internal/explore"
)

// Status holds what the web UI reports. The exploration loop publishes
// snapshots; handlers only ever read them.
type Status struct {
	startUnixNano int64
	published     uint64
	backend       atomic.Value // string
	latest        atomic.Pointer[explore.Snapshot]
}

func NewStatus() *Status {
	s := &Status{}
	atomic.StoreInt64(&s.startUnixNano, time.Now().UTC().UnixNano())
	s.backend.Store("")
	return s
}

func (s *Status) SetBackend(name string) {
	s.backend.Store(name)
}

// Set publishes snap. It fits explore.WithObserver directly.
func (s *Status) Set(snap explore.Snapshot) {
	s.latest.Store(&snap)
	atomic.AddUint64(&s.published, 1)
}

// Latest returns the last published snapshot, or false before the first one.
func (s *Status) Latest() (explore.Snapshot, bool) {
	p := s.latest.Load()
	if p == nil {
		return explore.Snapshot{}, false
	}
	return *p, true
}

type StatusSnapshot struct {
	Service   string            `json:"service"`
	NowUTC    string            `json:"now_utc"`
	UptimeSec int64             `json:"uptime_sec"`
	Backend   string            `json:"backend"`
	Updates   uint64            `json:"updates"`
	Explore   *explore.Snapshot `json:"explore,omitempty"`
}

func (s *Status) Snapshot(nowUTC time.Time) StatusSnapshot {
	if nowUTC.IsZero() {
		nowUTC = time.Now().UTC()
	}
	start := time.Unix(0, atomic.LoadInt64(&s.startUnixNano)).UTC()
	snap := StatusSnapshot{
		Service:   "maze-runner",
		NowUTC:    nowUTC.UTC().Format(time.RFC3339Nano),
		UptimeSec: int64(nowUTC.Sub(start).Seconds()),
		Backend:   s.backend.Load().(string),
		Updates:   atomic.LoadUint64(&s.published),
	}
	if ex, ok := s.Latest(); ok {
		snap.Explore = &ex
	}
	return snap
}
