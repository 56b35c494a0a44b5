package tagging

// A VictimFinder decides which block receives a newly inserted address.
type VictimFinder interface {
	FindVictim(tags *SetArray, addr uint64) Block
}

// LRUVictimFinder fills empty ways first and otherwise picks the least
// recently used block.
type LRUVictimFinder struct {
}

// NewLRUVictimFinder returns a newly constructed lru victim finder.
func NewLRUVictimFinder() *LRUVictimFinder {
	e := new(LRUVictimFinder)
	return e
}

// FindVictim returns the block to fill for addr. If the returned block is
// valid, the set is full and its resident must be evicted.
func (e *LRUVictimFinder) FindVictim(tags *SetArray, addr uint64) Block {
	set, _ := tags.GetSet(addr)

	for _, wayID := range set.LRUQueue {
		block := set.Blocks[wayID]
		if !block.IsValid {
			return block
		}
	}

	return set.Blocks[set.LRUQueue[0]]
}
