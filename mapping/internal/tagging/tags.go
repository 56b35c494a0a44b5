// Package tagging holds the resident-address bookkeeping of the simulated
// caches.
package tagging

// A Block is one way of a set. A block that has never been filled is not
// valid.
type Block struct {
	SetID   int
	WayID   int
	Address uint64
	IsValid bool
}

// A Set is a list of blocks where a certain address can be stored at. The
// LRUQueue lists way IDs from least recently used to most recently used.
type Set struct {
	Blocks   []Block
	LRUQueue []int
}

// Residents returns the valid addresses of the set from least recently used
// to most recently used.
func (s *Set) Residents() []uint64 {
	residents := make([]uint64, 0, len(s.Blocks))

	for _, wayID := range s.LRUQueue {
		block := s.Blocks[wayID]
		if block.IsValid {
			residents = append(residents, block.Address)
		}
	}

	return residents
}

// NumValid returns the number of filled ways.
func (s *Set) NumValid() int {
	n := 0

	for _, block := range s.Blocks {
		if block.IsValid {
			n++
		}
	}

	return n
}

// SetArray is a set-associative tag array. Address a lives in set
// a mod NumSets.
type SetArray struct {
	NumSets int
	NumWays int
	Sets    []Set
}

// NewSetArray creates a SetArray with all blocks invalid. Both numSets and
// numWays must be positive.
func NewSetArray(numSets, numWays int) *SetArray {
	if numSets <= 0 || numWays <= 0 {
		panic("set array must have at least one set and one way")
	}

	a := &SetArray{
		NumSets: numSets,
		NumWays: numWays,
	}

	a.Reset()

	return a
}

// GetSet returns the set that a certain address should be stored at.
func (a *SetArray) GetSet(addr uint64) (set *Set, setID int) {
	setID = int(addr % uint64(a.NumSets))
	set = &a.Sets[setID]

	return
}

// Lookup finds the valid block that holds addr.
func (a *SetArray) Lookup(addr uint64) (Block, bool) {
	set, _ := a.GetSet(addr)
	for _, block := range set.Blocks {
		if block.IsValid && block.Address == addr {
			return block, true
		}
	}

	return Block{}, false
}

// Update writes the block information back into its set.
func (a *SetArray) Update(block Block) {
	a.Sets[block.SetID].Blocks[block.WayID] = block
}

// Visit moves the block to the most recently used end of the LRUQueue.
func (a *SetArray) Visit(block Block) {
	set := &a.Sets[block.SetID]
	newLRUQueue := make([]int, 0, len(set.LRUQueue))

	for _, wayID := range set.LRUQueue {
		if wayID != block.WayID {
			newLRUQueue = append(newLRUQueue, wayID)
		}
	}

	newLRUQueue = append(newLRUQueue, block.WayID)

	set.LRUQueue = newLRUQueue
}

// Reset marks all the blocks invalid and restores the initial way order.
func (a *SetArray) Reset() {
	a.Sets = make([]Set, a.NumSets)
	for i := 0; i < a.NumSets; i++ {
		for j := 0; j < a.NumWays; j++ {
			block := Block{
				SetID: i,
				WayID: j,
			}

			a.Sets[i].Blocks = append(a.Sets[i].Blocks, block)
			a.Sets[i].LRUQueue = append(a.Sets[i].LRUQueue, j)
		}
	}
}

// Snapshot returns the residents of every set, each in recency order.
func (a *SetArray) Snapshot() [][]uint64 {
	snapshot := make([][]uint64, len(a.Sets))
	for i := range a.Sets {
		snapshot[i] = a.Sets[i].Residents()
	}

	return snapshot
}
