package mapping

import "fmt"

// Stats aggregates the outcomes of a run.
type Stats struct {
	TotalAccesses int `json:"total_accesses"`
	Hits          int `json:"hits"`
	Misses        int `json:"misses"`
}

// StatsFromEvents counts the outcomes of events.
func StatsFromEvents(events []Event) Stats {
	s := Stats{TotalAccesses: len(events)}

	for _, e := range events {
		if e.IsHit() {
			s.Hits++
		} else {
			s.Misses++
		}
	}

	return s
}

// HitRate returns hits divided by total accesses. A run without accesses
// has no hit rate and returns ErrNoAccesses.
func (s Stats) HitRate() (float64, error) {
	if s.TotalAccesses == 0 {
		return 0, ErrNoAccesses
	}

	return float64(s.Hits) / float64(s.TotalAccesses), nil
}

// FormatHitRate renders the hit rate with two decimals, or "n/a".
func (s Stats) FormatHitRate() string {
	rate, err := s.HitRate()
	if err != nil {
		return "n/a"
	}

	return fmt.Sprintf("%.2f", rate)
}

func (s Stats) String() string {
	return fmt.Sprintf("accesses=%d hits=%d misses=%d hit_rate=%s",
		s.TotalAccesses, s.Hits, s.Misses, s.FormatHitRate())
}
