package trace

import (
	"sync"
	"time"
)

// DefaultDelay separates successive timestamps so reports see distinct times.
const DefaultDelay = 100 * time.Microsecond

// RecorderConfig holds configuration for a Recorder.
type RecorderConfig struct {
	Delay     time.Duration // Pause after start, before stop and after stop (0 disables)
	IDRetries int           // Random draws before the id pool probes linearly

	Now   func() time.Time    // Clock (default time.Now)
	Sleep func(time.Duration) // Delay function (default time.Sleep)
	IntN  func(n int) int     // Random source for ids (default math/rand/v2)
}

// DefaultRecorderConfig returns the default configuration.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Delay:     DefaultDelay,
		IDRetries: DefaultIDRetries,
	}
}

// Recorder collects the events of one run. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	ids   *IDPool
	log   Log
	delay time.Duration
	now   func() time.Time
	sleep func(time.Duration)
}

// NewRecorder creates a Recorder with an empty log and id pool.
func NewRecorder(cfg RecorderConfig) *Recorder {
	ids := NewIDPool()
	if cfg.IDRetries > 0 {
		ids.Retries = cfg.IDRetries
	}
	if cfg.IntN != nil {
		ids.intn = cfg.IntN
	}

	r := &Recorder{
		ids:   ids,
		delay: cfg.Delay,
		now:   cfg.Now,
		sleep: cfg.Sleep,
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.sleep == nil {
		r.sleep = time.Sleep
	}
	return r
}

// Begin draws a fresh id and records a start event for function.
func (r *Recorder) Begin(function string) (int, error) {
	r.mu.Lock()
	id, err := r.ids.Next()
	if err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.log = append(r.log, Event{ID: id, Time: r.now(), Function: function, Phase: Start})
	r.mu.Unlock()

	r.pause()
	return id, nil
}

// End records the stop event matching a Begin.
func (r *Recorder) End(id int, function string) {
	r.pause()

	r.mu.Lock()
	r.log = append(r.log, Event{ID: id, Time: r.now(), Function: function, Phase: Stop})
	r.mu.Unlock()

	r.pause()
}

// Events returns a copy of the events recorded so far, in order.
func (r *Recorder) Events() Log {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make(Log, len(r.log))
	copy(events, r.log)
	return events
}

// Len returns the number of events recorded so far.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.log)
}

func (r *Recorder) pause() {
	if r.delay > 0 {
		r.sleep(r.delay)
	}
}
