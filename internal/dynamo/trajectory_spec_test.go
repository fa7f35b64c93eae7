package dynamo_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

var _ = Describe("Generate", func() {
	var g dynamo.Geometry

	BeforeEach(func() {
		var err error
		g, err = dynamo.NewGeometry(300, 100, 40, 432, 256)
		Expect(err).NotTo(HaveOccurred())
	})

	DescribeTable("lands the heavier pan on the base line",
		func(w dynamo.WeightConfig, frames int, ease dynamo.Easing) {
			out, err := dynamo.Resolve(w)
			Expect(err).NotTo(HaveOccurred())
			Expect(out.Winner).NotTo(Equal(dynamo.Tie))

			traj, err := dynamo.Generate(g, out, frames, ease)
			Expect(err).NotTo(HaveOccurred())
			Expect(traj.States).To(HaveLen(frames))
			Expect(traj.First().Angle).To(BeZero())

			last := traj.Last()
			Expect(last.Terminal).To(BeTrue())
			Expect(last.Angle).To(Equal(traj.TargetAngle))

			lower := last.RightPan
			if out.Winner == dynamo.Left {
				lower = last.LeftPan
			}
			Expect(lower.Y).To(BeNumerically("~", g.BaseY, 1e-6))
			Expect(lower).To(Equal(last.LowerPan()))

			for i := 1; i < len(traj.States); i++ {
				Expect(math.Abs(traj.States[i].Angle)).To(BeNumerically(">=", math.Abs(traj.States[i-1].Angle)))
				Expect(math.Abs(traj.States[i].Angle)).To(BeNumerically("<=", math.Abs(traj.TargetAngle)))
				Expect(traj.States[i-1].Terminal).To(BeFalse())
			}
		},
		Entry("left, ease-out, 30 frames", dynamo.WeightConfig{Left: []int{5, 3, 7}, Right: []int{4, 2}}, 30, dynamo.Easing(dynamo.EaseOutCubic)),
		Entry("right, linear, 2 frames", dynamo.WeightConfig{Left: []int{1}, Right: []int{2}}, 2, dynamo.Easing(dynamo.Linear)),
		Entry("right, smoothstep, 25 frames", dynamo.WeightConfig{Left: []int{3, 3}, Right: []int{10, 1, 1}}, 25, dynamo.Easing(dynamo.SmoothStep)),
		Entry("left, ease-in-out, 500 frames", dynamo.WeightConfig{Left: []int{10, 10, 10, 10}, Right: []int{1}}, 500, dynamo.Easing(dynamo.EaseInOutCubic)),
	)

	It("keeps the fulcrum fixed", func() {
		traj, err := dynamo.Generate(g, dynamo.Outcome{LeftSum: 1, RightSum: 2, Winner: dynamo.Right}, 20, dynamo.EaseOutCubic)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.Geometry.Fulcrum).To(Equal(g.Fulcrum))
		for _, s := range traj.States {
			Expect((s.LeftEnd.X + s.RightEnd.X) / 2).To(BeNumerically("~", g.Fulcrum.X, 1e-9))
			Expect((s.LeftEnd.Y + s.RightEnd.Y) / 2).To(BeNumerically("~", g.Fulcrum.Y, 1e-9))
		}
	})

	It("holds a tie level", func() {
		traj, err := dynamo.Generate(g, dynamo.Outcome{LeftSum: 6, RightSum: 6, Winner: dynamo.Tie}, 8, dynamo.Linear)
		Expect(err).NotTo(HaveOccurred())
		Expect(traj.TargetAngle).To(BeZero())
		for _, s := range traj.States {
			Expect(s.Angle).To(BeZero())
			Expect(s.LeftPan.Y).To(Equal(s.RightPan.Y))
		}
	})

	It("rejects a single frame", func() {
		_, err := dynamo.Generate(g, dynamo.Outcome{LeftSum: 2, RightSum: 1, Winner: dynamo.Left}, 1, dynamo.Linear)
		Expect(err).To(MatchError(dynamo.ErrConfig))
	})
})
