package ratelimit

import (
	"strings"
	"sync"
	"time"
)

// Budget permits Limit requests per Window; up to Limit may arrive at once.
type Budget struct {
	Limit  int
	Window time.Duration
}

func (b Budget) normalized() Budget {
	if b.Limit <= 0 {
		b.Limit = 1
	}
	if b.Window <= 0 {
		b.Window = time.Second
	}
	return b
}

func (b Budget) perSecond() float64 {
	return float64(b.Limit) / b.Window.Seconds()
}

// Config describes per-caller budgets. Keys have the form "<class>:<id>"
// (for example "agent:7" or "ip:10.0.0.1"); ByClass overrides Default for a
// class.
type Config struct {
	Default    Budget
	ByClass    map[string]Budget
	TTL        time.Duration // idle buckets are dropped after TTL; 0 keeps them
	MaxBuckets int           // new callers are refused beyond this; 0 is unbounded
}

// Buckets is a per-caller token bucket limiter.
type Buckets struct {
	cfg   Config
	clock Clock

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type bucket struct {
	budget   Budget
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

// NewBuckets creates a limiter. A nil clock uses the system time.
func NewBuckets(clock Clock, cfg Config) *Buckets {
	if clock == nil {
		clock = systemClock{}
	}
	cfg.Default = cfg.Default.normalized()
	classes := make(map[string]Budget, len(cfg.ByClass))
	for class, b := range cfg.ByClass {
		classes[class] = b.normalized()
	}
	cfg.ByClass = classes
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &Buckets{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

// Allow takes one token from the caller's bucket.
func (l *Buckets) Allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweep(now)

	b, ok := l.buckets[key]
	if !ok {
		if l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets {
			return false
		}
		budget := l.budgetFor(key)
		b = &bucket{budget: budget, tokens: float64(budget.Limit), last: now}
		l.buckets[key] = b
	}
	return b.take(now)
}

// Len reports the number of tracked callers.
func (l *Buckets) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *Buckets) budgetFor(key string) Budget {
	class, _, _ := strings.Cut(key, ":")
	if b, ok := l.cfg.ByClass[class]; ok {
		return b
	}
	return l.cfg.Default
}

func (l *Buckets) sweep(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}
	every := max(l.cfg.TTL/2, time.Minute)
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < every {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > l.cfg.TTL {
			delete(l.buckets, key)
		}
	}
}

func (b *bucket) take(now time.Time) bool {
	if dt := now.Sub(b.last); dt > 0 {
		b.tokens = min(b.tokens+dt.Seconds()*b.budget.perSecond(), float64(b.budget.Limit))
		b.last = now
	}
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}
