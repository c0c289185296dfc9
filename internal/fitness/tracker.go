// Package fitness maintains per-role running statistics from reported
// episode outcomes.
package fitness

import (
	"fmt"

	"tribemind/internal/role"
)

// Tracker applies win/loss outcomes to role statistics using an exponential
// moving average. Safe for concurrent use across different roles; a single
// role must not receive concurrent updates.
type Tracker struct {
	Alpha float64
}

func NewTracker(alpha float64) (Tracker, error) {
	if alpha <= 0 || alpha > 1 {
		return Tracker{}, fmt.Errorf("smoothing factor must be in (0, 1]: %v", alpha)
	}
	return Tracker{Alpha: alpha}, nil
}

// Record folds one completed scored unit into the role. The first outcome
// initializes the score to the raw win indicator; later outcomes blend with
// the configured smoothing factor.
func (t Tracker) Record(r *role.Role, won bool) {
	indicator := 0.0
	if won {
		indicator = 1.0
	}

	if r.Games == 0 {
		r.Score = indicator
	} else {
		r.Score = t.Alpha*indicator + (1-t.Alpha)*r.Score
	}

	r.Games++
	if won {
		r.Wins++
	}
}
