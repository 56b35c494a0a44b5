package mapping

// Geometry describes the shape of a simulated cache. SetSize is only
// consulted by set-associative runs.
type Geometry struct {
	TotalLines int `json:"total_lines" yaml:"total_lines"`
	SetSize    int `json:"set_size,omitempty" yaml:"set_size,omitempty"`
}

// NumSets returns the number of sets of a set-associative cache. It is only
// meaningful for a geometry that passed ValidateSetAssociative.
func (g Geometry) NumSets() int {
	if g.SetSize <= 0 {
		return 0
	}

	return g.TotalLines / g.SetSize
}

// ValidateDirect checks that the geometry can back a direct-mapped cache.
func (g Geometry) ValidateDirect() error {
	if g.TotalLines <= 0 {
		return &ConfigError{
			Field:  "total lines",
			Value:  g.TotalLines,
			Reason: "must be positive",
		}
	}

	return nil
}

// ValidateSetAssociative checks that the geometry can back a set-associative
// cache.
func (g Geometry) ValidateSetAssociative() error {
	if err := g.ValidateDirect(); err != nil {
		return err
	}

	if g.SetSize <= 0 {
		return &ConfigError{
			Field:  "set size",
			Value:  g.SetSize,
			Reason: "must be positive",
		}
	}

	if g.TotalLines%g.SetSize != 0 {
		return &ConfigError{
			Field:  "set size",
			Value:  g.SetSize,
			Reason: "must evenly divide total lines",
		}
	}

	return nil
}
