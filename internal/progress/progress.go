// Package progress reports long table scans without flooding the log.
package progress

import (
	"time"

	"TLC/internal/logging"

	"golang.org/x/time/rate"
)

// Reporter logs progress at most once per interval, plus the final step.
type Reporter struct {
	label   string
	limiter *rate.Limiter
}

func New(label string, every time.Duration) *Reporter {
	return &Reporter{
		label:   label,
		limiter: rate.NewLimiter(rate.Every(every), 1),
	}
}

// Observe matches the integral.Observer signature.
func (r *Reporter) Observe(done, total int) {
	if done != total && !r.limiter.Allow() {
		return
	}
	pct := 100.0
	if total > 0 {
		pct = 100 * float64(done) / float64(total)
	}
	logging.Infof("%s: %d/%d rows (%.0f%%)", r.label, done, total, pct)
}
