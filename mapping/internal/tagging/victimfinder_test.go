package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LRU Victim Finder", func() {
	var (
		tags   *SetArray
		finder *LRUVictimFinder
	)

	BeforeEach(func() {
		tags = NewSetArray(1, 3)
		finder = NewLRUVictimFinder()
	})

	fill := func(block Block, addr uint64) {
		block.Address = addr
		block.IsValid = true
		tags.Update(block)
		tags.Visit(block)
	}

	It("should pick an empty way first", func() {
		fill(tags.Sets[0].Blocks[0], 7)
		tags.Visit(tags.Sets[0].Blocks[2])

		victim := finder.FindVictim(tags, 1)

		Expect(victim.IsValid).To(BeFalse())
		Expect(victim.WayID).To(Equal(1))
	})

	It("should pick the least recently used block when full", func() {
		fill(tags.Sets[0].Blocks[0], 10)
		fill(tags.Sets[0].Blocks[1], 11)
		fill(tags.Sets[0].Blocks[2], 12)
		tags.Visit(tags.Sets[0].Blocks[0])

		victim := finder.FindVictim(tags, 13)

		Expect(victim.IsValid).To(BeTrue())
		Expect(victim.Address).To(Equal(uint64(11)))
	})
})
