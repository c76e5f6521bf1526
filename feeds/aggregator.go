package feeds

import "time"

// LastUpdated tracks the newest publish date seen so far. The zero value has
// seen nothing.
type LastUpdated struct {
	latest time.Time
	set    bool
}

// Observe replaces the current value only if t is strictly later, so the
// first of several equal dates is the one kept
func (l *LastUpdated) Observe(t time.Time) {
	if !l.set || l.latest.Before(t) {
		l.latest = t
		l.set = true
	}
}

// Value returns the newest date and false when nothing was observed
func (l *LastUpdated) Value() (time.Time, bool) {
	return l.latest, l.set
}
