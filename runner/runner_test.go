package runner

import (
	"errors"

	"github.com/sarchlab/cachemap/hooking"
	"github.com/sarchlab/cachemap/mapping"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("ParseMode", func() {
	DescribeTable("known names",
		func(name string, mode Mode) {
			parsed, err := ParseMode(name)
			Expect(err).NotTo(HaveOccurred())
			Expect(parsed).To(Equal(mode))
		},
		Entry("direct", "direct", ModeDirect),
		Entry("direto", "Direto", ModeDirect),
		Entry("associative", "associative", ModeSetAssociative),
		Entry("associativo", " associativo ", ModeSetAssociative),
		Entry("set-associative", "set-associative", ModeSetAssociative),
		Entry("comparar", "COMPARAR", ModeCompare),
	)

	It("should reject unknown names", func() {
		_, err := ParseMode("fully-associative")
		Expect(err).To(MatchError(ErrUnknownMode))
	})
})

var _ = Describe("Runner", func() {
	var (
		r *Runner
	)

	BeforeEach(func() {
		r = MakeBuilder().Build()
	})

	It("should run the direct simulator", func() {
		result, err := r.Run(ModeDirect,
			mapping.Geometry{TotalLines: 5}, []uint64{33, 11, 3, 5})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Simulator).To(Equal("direct"))
		Expect(result.Stats.Misses).To(Equal(4))
	})

	It("should run the set-associative simulator", func() {
		result, err := r.Run(ModeSetAssociative,
			mapping.Geometry{TotalLines: 2, SetSize: 2}, []uint64{1, 2, 1, 3})

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Simulator).To(Equal("set-associative"))
		Expect(result.Stats.Hits).To(Equal(1))
	})

	It("should refuse compare as a single mode", func() {
		_, err := r.Run(ModeCompare, mapping.Geometry{TotalLines: 1}, nil)
		Expect(err).To(MatchError(ErrUnknownMode))
	})

	It("should compare both disciplines on the same trace", func() {
		trace := []uint64{0, 4, 0, 4}

		cmp, err := r.Compare(mapping.Geometry{TotalLines: 4, SetSize: 2}, trace)

		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Direct.Stats).To(Equal(
			mapping.Stats{TotalAccesses: 4, Misses: 4}))
		Expect(cmp.SetAssociative.Stats).To(Equal(
			mapping.Stats{TotalAccesses: 4, Hits: 2, Misses: 2}))
	})

	It("should fail a comparison on a bad set size", func() {
		_, err := r.Compare(mapping.Geometry{TotalLines: 6, SetSize: 4}, nil)
		Expect(err).To(MatchError(mapping.ErrConfig))
	})

	It("should register hooks on both simulators", func() {
		var names []string
		hook := hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == mapping.HookPosRunEnd {
				names = append(names, ctx.Domain.(mapping.Simulator).Name())
			}
		})
		r = MakeBuilder().WithHook(hook).Build()

		_, err := r.Compare(mapping.Geometry{TotalLines: 2, SetSize: 1}, []uint64{1})

		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"direct", "set-associative"}))
	})
})

var _ = Describe("Runner with mocked simulators", func() {
	var (
		mockCtrl *gomock.Controller
		direct   *MockSimulator
		assoc    *MockSimulator
		r        *Runner
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		direct = NewMockSimulator(mockCtrl)
		assoc = NewMockSimulator(mockCtrl)
		r = &Runner{direct: direct, setAssociative: assoc}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should validate both before running either", func() {
		g := mapping.Geometry{TotalLines: 4, SetSize: 2}
		trace := []uint64{1}

		gomock.InOrder(
			direct.EXPECT().Validate(g).Return(nil),
			assoc.EXPECT().Validate(g).Return(nil),
			direct.EXPECT().Run(g, trace).Return(mapping.Result{Simulator: "d"}, nil),
			assoc.EXPECT().Run(g, trace).Return(mapping.Result{Simulator: "a"}, nil),
		)

		cmp, err := r.Compare(g, trace)

		Expect(err).NotTo(HaveOccurred())
		Expect(cmp.Direct.Simulator).To(Equal("d"))
		Expect(cmp.SetAssociative.Simulator).To(Equal("a"))
	})

	It("should report both configuration errors and run nothing", func() {
		g := mapping.Geometry{}
		directErr := errors.New("direct is broken")
		assocErr := errors.New("associative is broken")

		direct.EXPECT().Validate(g).Return(directErr)
		assoc.EXPECT().Validate(g).Return(assocErr)

		_, err := r.Compare(g, nil)

		Expect(err).To(MatchError(directErr))
		Expect(err).To(MatchError(assocErr))
	})
})
