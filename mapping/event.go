package mapping

import "fmt"

// Outcome tells whether an access found its address resident.
type Outcome int

// The possible outcomes of an access.
const (
	Miss Outcome = iota
	Hit
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case Miss:
		return "miss"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome as "hit" or "miss".
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText decodes "hit" or "miss".
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hit":
		*o = Hit
	case "miss":
		*o = Miss
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}

	return nil
}

// An Event describes one processed access. Target is the line index in a
// direct-mapped cache and the set index in a set-associative cache.
type Event struct {
	Seq        int     `json:"seq"`
	Address    uint64  `json:"address"`
	Target     int     `json:"target"`
	Outcome    Outcome `json:"outcome"`
	Evicted    uint64  `json:"evicted"`
	HasEvicted bool    `json:"has_evicted"`
}

// IsHit returns true if the access was a hit.
func (e Event) IsHit() bool {
	return e.Outcome == Hit
}
