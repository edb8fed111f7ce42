// Package alert raises an alert when a user keeps failing validation on the
// same form.
package alert

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWindow    = 5 * time.Minute
	DefaultThreshold = 3
	DefaultCooldown  = 15 * time.Minute
)

// Failure is one rejected form submission
type Failure struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Form     string
	Fields   []string
	At       time.Time
}

// Alert is raised when failures reach the threshold inside the window
type Alert struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	UserID      uuid.UUID `json:"user_id"`
	Form        string    `json:"form"`
	Failures    int       `json:"failures"`
	Fields      []string  `json:"fields"`
	WindowStart time.Time `json:"window_start"`
	RaisedAt    time.Time `json:"raised_at"`
}

type Config struct {
	Window    time.Duration
	Threshold int
	Cooldown  time.Duration
}

func DefaultConfig() Config {
	return Config{Window: DefaultWindow, Threshold: DefaultThreshold, Cooldown: DefaultCooldown}
}

type key struct {
	tenant uuid.UUID
	user   uuid.UUID
	form   string
}

type window struct {
	hits      []time.Time
	fields    map[string]struct{}
	lastAlert time.Time
}

// Detector keeps a sliding window of failures per tenant, user and form.
// It is safe for concurrent use.
type Detector struct {
	cfg     Config
	mu      sync.Mutex
	windows map[key]*window
}

func NewDetector(cfg Config) *Detector {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Cooldown < 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Detector{cfg: cfg, windows: make(map[key]*window)}
}

// Record adds a failure and returns an alert when the threshold is reached
// and no alert was raised for the same key during the cooldown.
func (d *Detector) Record(f Failure) *Alert {
	d.mu.Lock()
	defer d.mu.Unlock()

	k := key{tenant: f.TenantID, user: f.UserID, form: f.Form}
	w, ok := d.windows[k]
	if !ok {
		w = &window{fields: make(map[string]struct{})}
		d.windows[k] = w
	}
	w.hits = append(w.hits, f.At)
	w.hits = trim(w.hits, f.At.Add(-d.cfg.Window))
	for _, field := range f.Fields {
		w.fields[field] = struct{}{}
	}

	if len(w.hits) < d.cfg.Threshold {
		return nil
	}
	if !w.lastAlert.IsZero() && f.At.Sub(w.lastAlert) < d.cfg.Cooldown {
		return nil
	}
	w.lastAlert = f.At

	fields := make([]string, 0, len(w.fields))
	for field := range w.fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	a := &Alert{
		TenantID:    f.TenantID,
		UserID:      f.UserID,
		Form:        f.Form,
		Failures:    len(w.hits),
		Fields:      fields,
		WindowStart: w.hits[0],
		RaisedAt:    f.At,
	}
	w.hits = nil
	w.fields = make(map[string]struct{})
	return a
}

// Prune forgets windows with no recent failure and no active cooldown
func (d *Detector) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	removed := 0
	for k, w := range d.windows {
		w.hits = trim(w.hits, now.Add(-d.cfg.Window))
		if len(w.hits) == 0 && now.Sub(w.lastAlert) >= d.cfg.Cooldown {
			delete(d.windows, k)
			removed++
		}
	}
	return removed
}

// trim drops hits before cutoff; hits are in arrival order
func trim(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && hits[i].Before(cutoff) {
		i++
	}
	return hits[i:]
}
