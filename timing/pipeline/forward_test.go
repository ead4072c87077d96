package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/twosigma/frost-sub002/emu"
	"github.com/twosigma/frost-sub002/insts"
	"github.com/twosigma/frost-sub002/timing/latency"
	"github.com/twosigma/frost-sub002/timing/pipeline"
)

var _ = Describe("ForwardingNetwork", func() {
	var (
		decoder *insts.Decoder
		network *pipeline.ForwardingNetwork
		tracker *pipeline.CompletionTracker
		ma      pipeline.MemAccessRegister
		wb      pipeline.WritebackRegister
	)

	BeforeEach(func() {
		decoder = insts.NewDecoder()
		network = pipeline.NewForwardingNetwork()
		tracker = pipeline.NewCompletionTracker()
		ma = pipeline.MemAccessRegister{}
		wb = pipeline.WritebackRegister{}
	})

	It("should fall back to the register-file value with nothing in flight", func() {
		value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

		Expect(value).To(Equal(uint32(77)))
		Expect(source).To(Equal(pipeline.ForwardNone))
	})

	It("should never forward x0", func() {
		ma = pipeline.MemAccessRegister{
			Valid:  true,
			Inst:   decoder.Decode(insts.EncodeADD(0, 1, 2)),
			Result: 99,
		}

		value, source := network.Operand(0, false, 0, &ma, tracker, &wb)

		Expect(value).To(Equal(uint32(0)))
		Expect(source).To(Equal(pipeline.ForwardNone))
	})

	Describe("memory-access source", func() {
		It("should forward an ALU result one stage ahead", func() {
			ma = pipeline.MemAccessRegister{
				Valid:  true,
				Inst:   decoder.Decode(insts.EncodeADD(5, 1, 2)),
				Result: 111,
			}

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(111)))
			Expect(source).To(Equal(pipeline.ForwardFromMemAccess))
		})

		It("should win over an older writeback value", func() {
			ma = pipeline.MemAccessRegister{
				Valid:  true,
				Inst:   decoder.Decode(insts.EncodeADD(5, 1, 2)),
				Result: 111,
			}
			wb = pipeline.WritebackRegister{
				Valid: true, Rd: 5, Value: 222, WritesReg: true,
			}

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(111)))
			Expect(source).To(Equal(pipeline.ForwardFromMemAccess))
		})

		It("should not forward a load before its data phase", func() {
			ma = pipeline.MemAccessRegister{
				Valid: true,
				Inst:  decoder.Decode(insts.EncodeLW(5, 1, 0)),
			}
			wb = pipeline.WritebackRegister{
				Valid: true, Rd: 5, Value: 222, WritesReg: true,
			}

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(222)))
			Expect(source).To(Equal(pipeline.ForwardFromWriteback))
		})

		It("should not forward a CSR read before it happens", func() {
			ma = pipeline.MemAccessRegister{
				Valid: true,
				Inst:  decoder.Decode(insts.EncodeCSRRW(5, emu.CSRMScratch, 1)),
			}

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(77)))
			Expect(source).To(Equal(pipeline.ForwardNone))
		})

		It("should not forward a pending unit result", func() {
			ma = pipeline.MemAccessRegister{
				Valid:         true,
				Inst:          decoder.Decode(insts.EncodeMUL(5, 1, 2)),
				ResultPending: true,
			}

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(77)))
			Expect(source).To(Equal(pipeline.ForwardNone))
		})

		It("should not match a different destination", func() {
			ma = pipeline.MemAccessRegister{
				Valid:  true,
				Inst:   decoder.Decode(insts.EncodeADD(6, 1, 2)),
				Result: 111,
			}

			_, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(source).To(Equal(pipeline.ForwardNone))
		})
	})

	Describe("completion-tracker source", func() {
		It("should forward a finished result awaiting collection", func() {
			tracker.Issue(latency.UnitMul, 5, false, 42, 1)
			tracker.Tick()

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(42)))
			Expect(source).To(Equal(pipeline.ForwardFromTracker))
		})
	})

	Describe("writeback source", func() {
		It("should forward the retiring value", func() {
			wb = pipeline.WritebackRegister{
				Valid: true, Rd: 5, Value: 222, WritesReg: true,
			}

			value, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(222)))
			Expect(source).To(Equal(pipeline.ForwardFromWriteback))
		})

		It("should ignore a packet that writes no register", func() {
			wb = pipeline.WritebackRegister{
				Valid: true, Rd: 5, Value: 222, WritesReg: false,
			}

			_, source := network.Operand(5, false, 77, &ma, tracker, &wb)

			Expect(source).To(Equal(pipeline.ForwardNone))
		})
	})

	Describe("register files", func() {
		It("should keep integer and FP registers apart", func() {
			ma = pipeline.MemAccessRegister{
				Valid:  true,
				Inst:   decoder.Decode(insts.EncodeFADDS(5, 1, 2)),
				Result: 111,
			}

			_, source := network.Operand(5, false, 77, &ma, tracker, &wb)
			Expect(source).To(Equal(pipeline.ForwardNone))

			value, source := network.Operand(5, true, 77, &ma, tracker, &wb)
			Expect(value).To(Equal(uint32(111)))
			Expect(source).To(Equal(pipeline.ForwardFromMemAccess))
		})

		It("should forward f0, which is a real register", func() {
			ma = pipeline.MemAccessRegister{
				Valid:  true,
				Inst:   decoder.Decode(insts.EncodeFADDS(0, 1, 2)),
				Result: 111,
			}

			value, source := network.Operand(0, true, 77, &ma, tracker, &wb)

			Expect(value).To(Equal(uint32(111)))
			Expect(source).To(Equal(pipeline.ForwardFromMemAccess))
		})
	})
})
