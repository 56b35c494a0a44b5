package tagging

// A Line is one slot of a direct-mapped cache.
type Line struct {
	Index   int
	Address uint64
	IsValid bool
}

// LineArray is the line storage of a direct-mapped cache. Address a lives in
// line a mod len(Lines).
type LineArray struct {
	Lines []Line
}

// NewLineArray creates a LineArray of numLines empty lines. numLines must be
// positive.
func NewLineArray(numLines int) *LineArray {
	if numLines <= 0 {
		panic("line array must have at least one line")
	}

	a := &LineArray{Lines: make([]Line, numLines)}
	for i := range a.Lines {
		a.Lines[i].Index = i
	}

	return a
}

// GetLine returns the line that addr maps to.
func (a *LineArray) GetLine(addr uint64) Line {
	return a.Lines[addr%uint64(len(a.Lines))]
}

// Lookup reports whether the line that addr maps to currently holds addr.
func (a *LineArray) Lookup(addr uint64) (Line, bool) {
	line := a.GetLine(addr)

	return line, line.IsValid && line.Address == addr
}

// Fill overwrites the line that addr maps to and returns what it held
// before.
func (a *LineArray) Fill(addr uint64) (previous Line) {
	index := int(addr % uint64(len(a.Lines)))
	previous = a.Lines[index]

	a.Lines[index] = Line{
		Index:   index,
		Address: addr,
		IsValid: true,
	}

	return previous
}

// Snapshot returns a copy of all the lines.
func (a *LineArray) Snapshot() []Line {
	snapshot := make([]Line, len(a.Lines))
	copy(snapshot, a.Lines)

	return snapshot
}
