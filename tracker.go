package entrypool

import (
	stderrors "errors"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/holmberd/go-entrypool/internal/clock"
	"github.com/pkg/errors"
)

const shardCount = 64 // Must be a power of two for unbiased modulo.

func shardIndex(n uint64) uint64 {
	return n & (shardCount - 1)
}

type TrackerConfig struct {
	Window int64 // Sliding window length in milliseconds.
	Limit  int   // Maximum hits per key within a window.

	InitialSize int    // Buffers allocated up front by each shard pool.
	Growth      Growth // Growth policy of each shard pool.

	Clock  func() int64 // Millisecond clock used by HitNow.
	Logger *slog.Logger
}

func (c TrackerConfig) Validate() error {
	var errs []error
	if c.Window < 1 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: window %d must be greater than 0", c.Window))
	}
	if c.Limit < 1 {
		errs = append(errs, errors.Wrapf(ErrInvalidArgument, "invalid config: limit %d must be greater than 0", c.Limit))
	} else {
		errs = append(errs, c.poolConfig().Validate())
	}
	if c.InitialSize < 1 && !c.Growth.canGrowFromEmpty() {
		// An empty shard pool could never check out a buffer.
		errs = append(errs, errors.Wrapf(
			ErrInvalidArgument, "invalid config: initial size %d must be greater than 0 with %v growth", c.InitialSize, c.Growth,
		))
	}
	return stderrors.Join(errs...)
}

func (c TrackerConfig) poolConfig() Config {
	pc := DefaultConfig(c.Limit)
	pc.InitialSize = c.InitialSize
	pc.Growth = c.Growth
	pc.Logger = c.Logger
	if c.Clock != nil {
		pc.Clock = c.Clock
	}
	return pc
}

func DefaultTrackerConfig(window int64, limit int) TrackerConfig {
	return TrackerConfig{
		Window:      window,
		Limit:       limit,
		InitialSize: 16,
		Growth:      DoubleGrowth(),
		Clock:       clock.NowMilli,
		Logger:      slog.Default(),
	}
}

type shard struct {
	sync.Mutex
	pool *Pool[struct{}]
	keys map[string]*Buffer[struct{}]
}

// release returns a key's buffer to the shard pool.
// It assumes the caller holds the lock.
func (s *shard) release(key string, b *Buffer[struct{}], logger *slog.Logger) {
	delete(s.keys, key)
	if err := s.pool.Put(b); err != nil {
		// Unreachable unless a buffer from another pool was tracked.
		logger.Error("failed to return buffer to pool", "key", key, "error", err)
	}
}

// Tracker counts hits per key within a sliding time window, such as for
// rate limiting. Each tracked key holds a pooled buffer of hit timestamps
// that is returned to its pool once the key has no hits left in the window.
//
// A Tracker is safe for concurrent use. Keys are sharded across
// independently locked pools.
type Tracker struct {
	logger *slog.Logger
	window int64
	limit  int
	growth Growth
	now    func() int64
	shards [shardCount]shard
}

// NewTracker creates a new tracker.
func NewTracker(config TrackerConfig) (*Tracker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	pc := config.poolConfig()
	t := &Tracker{
		logger: pc.Logger,
		window: config.Window,
		limit:  config.Limit,
		growth: config.Growth,
		now:    pc.Clock,
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	for i := range t.shards {
		p, err := NewPool[struct{}](pc)
		if err != nil {
			return nil, err
		}
		t.shards[i].pool = p
		t.shards[i].keys = make(map[string]*Buffer[struct{}])
	}
	return t, nil
}

func (t *Tracker) shard(key string) *shard {
	return &t.shards[shardIndex(xxhash.Sum64String(key))]
}

// Hit records a hit for key at ts. It ages out hits older than the window
// first and returns false if the key already reached its limit.
func (t *Tracker) Hit(key string, ts int64) (ok bool, err error) {
	s := t.shard(key)
	s.Lock()
	defer s.Unlock()

	b, tracked := s.keys[key]
	if !tracked {
		if b, err = s.pool.Get(); err != nil {
			return false, err
		}
		s.keys[key] = b
	}
	b.Cleanup(ts - t.window)
	i, err := b.Insert(ts)
	if b.IsEmpty() {
		s.release(key, b, t.logger)
	}
	if err != nil {
		return false, err
	}
	return i != NotInserted, nil
}

// HitNow records a hit for key at the current time.
func (t *Tracker) HitNow(key string) (bool, error) {
	return t.Hit(key, t.now())
}

// Count returns the number of hits for key within the window ending at now.
func (t *Tracker) Count(key string, now int64) int {
	s := t.shard(key)
	s.Lock()
	defer s.Unlock()

	b, tracked := s.keys[key]
	if !tracked {
		return 0
	}
	n := b.Cleanup(now - t.window)
	if n == 0 {
		s.release(key, b, t.logger)
	}
	return n
}

// Remaining returns the number of hits key may still record within the window ending at now.
func (t *Tracker) Remaining(key string, now int64) int {
	return t.limit - t.Count(key, now)
}

// Forget drops all hits for key. It returns true if the key was tracked.
func (t *Tracker) Forget(key string) bool {
	s := t.shard(key)
	s.Lock()
	defer s.Unlock()

	b, tracked := s.keys[key]
	if tracked {
		s.release(key, b, t.logger)
	}
	return tracked
}

// Sweep ages out hits older than the window ending at now for every key,
// releases keys left without hits and trims each shard pool down to minKept
// buffers. Pools that cannot grow from empty keep at least one slot.
// It returns the number of keys released.
func (t *Tracker) Sweep(now int64, minKept int) (int, error) {
	if minKept < 0 {
		return 0, errors.Wrapf(ErrInvalidArgument, "cannot trim pools to negative size %d", minKept)
	}
	if minKept < 1 && !t.growth.canGrowFromEmpty() {
		minKept = 1
	}
	released := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.Lock()
		for key, b := range s.keys {
			if b.Cleanup(now-t.window) == 0 {
				s.release(key, b, t.logger)
				released++
			}
		}
		err := s.pool.Trim(minKept)
		s.Unlock()
		if err != nil {
			return released, err
		}
	}
	t.logger.Debug("tracker swept", "released", released)
	return released, nil
}

// Len returns the number of tracked keys.
func (t *Tracker) Len() int {
	n := 0
	for i := range t.shards {
		s := &t.shards[i]
		s.Lock()
		n += len(s.keys)
		s.Unlock()
	}
	return n
}

// UpdateStats adds the stats of every shard pool to s.
func (t *Tracker) UpdateStats(s *Stats) {
	for i := range t.shards {
		sh := &t.shards[i]
		sh.Lock()
		sh.pool.UpdateStats(s)
		sh.Unlock()
	}
}
