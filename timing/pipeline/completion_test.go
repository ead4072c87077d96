package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/timing/latency"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

var _ = Describe("CompletionTracker", func() {
	var tracker *pipeline.CompletionTracker

	BeforeEach(func() {
		tracker = pipeline.NewCompletionTracker()
	})

	Describe("Issue", func() {
		It("should mark the unit busy", func() {
			tracker.Issue(latency.UnitMul, 3, false, 42, 3)

			Expect(tracker.Busy(latency.UnitMul)).To(BeTrue())
			Expect(tracker.Busy(latency.UnitDiv)).To(BeFalse())
			Expect(tracker.AnyBusy()).To(BeTrue())
		})

		It("should clamp latency to at least one cycle", func() {
			tracker.Issue(latency.UnitMul, 3, false, 42, 0)

			Expect(tracker.CompletingNextCycle(latency.UnitMul)).To(BeTrue())
		})

		It("should panic on a busy unit with invariant checks on", func() {
			tracker.SetInvariantChecks(true)
			tracker.Issue(latency.UnitDiv, 3, false, 42, 10)

			Expect(func() {
				tracker.Issue(latency.UnitDiv, 4, false, 7, 10)
			}).To(Panic())
		})
	})

	Describe("Tick", func() {
		It("should complete after the issued latency", func() {
			tracker.Issue(latency.UnitMul, 3, false, 42, 3)

			Expect(tracker.CompletingNextCycle(latency.UnitMul)).To(BeFalse())

			tracker.Tick()
			tracker.Tick()
			Expect(tracker.CompletingNextCycle(latency.UnitMul)).To(BeTrue())
			Expect(tracker.ResultValid(latency.UnitMul)).To(BeFalse())

			tracker.Tick()
			Expect(tracker.ResultValid(latency.UnitMul)).To(BeTrue())
		})

		It("should hold a finished result until it is collected", func() {
			tracker.Issue(latency.UnitMul, 3, false, 42, 1)

			tracker.Tick()
			tracker.Tick()
			tracker.Tick()

			Expect(tracker.ResultValid(latency.UnitMul)).To(BeTrue())
			Expect(tracker.Busy(latency.UnitMul)).To(BeTrue())
		})
	})

	Describe("Collect", func() {
		It("should return the issued result and destination", func() {
			tracker.Issue(latency.UnitFPDivSqrt, 7, true, 0x40C00000, 2)
			tracker.Tick()
			tracker.Tick()

			value, rd, fp := tracker.Collect(latency.UnitFPDivSqrt)

			Expect(value).To(Equal(uint32(0x40C00000)))
			Expect(rd).To(Equal(uint8(7)))
			Expect(fp).To(BeTrue())
			Expect(tracker.Busy(latency.UnitFPDivSqrt)).To(BeFalse())
		})
	})

	Describe("ResultFor", func() {
		It("should find a finished result by destination register", func() {
			tracker.Issue(latency.UnitMul, 5, false, 42, 1)
			tracker.Tick()

			value, ok := tracker.ResultFor(5, false)

			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(uint32(42)))
		})

		It("should not match a result still in flight", func() {
			tracker.Issue(latency.UnitMul, 5, false, 42, 3)
			tracker.Tick()

			_, ok := tracker.ResultFor(5, false)

			Expect(ok).To(BeFalse())
		})

		It("should not cross register files", func() {
			tracker.Issue(latency.UnitFPAddMul, 5, true, 42, 1)
			tracker.Tick()

			_, ok := tracker.ResultFor(5, false)

			Expect(ok).To(BeFalse())
		})
	})

	Describe("Cancel", func() {
		It("should free the unit without a result", func() {
			tracker.Issue(latency.UnitDiv, 3, false, 42, 10)

			tracker.Cancel(latency.UnitDiv)

			Expect(tracker.Busy(latency.UnitDiv)).To(BeFalse())
			_, ok := tracker.ResultFor(3, false)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Reset", func() {
		It("should free every unit", func() {
			tracker.Issue(latency.UnitMul, 3, false, 1, 3)
			tracker.Issue(latency.UnitDiv, 4, false, 2, 10)

			tracker.Reset()

			Expect(tracker.AnyBusy()).To(BeFalse())
		})
	})
})
