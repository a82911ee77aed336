package creeper

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/sim"
)

// buildWalker wires real legs: targets hang under the ghost, feet are free.
func buildWalker(offsets []mgl64.Vec3, groupOf []int) (*Controller, []*LegController) {
	a := pose.NewArena()
	end, _ := a.Add("end", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())
	ghost, _ := a.Add("ghost", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())
	mixer, _ := a.Add("mixer", ghost, mgl64.Vec3{}, mgl64.QuatIdent())
	model, _ := a.Add("body", pose.None, mgl64.Vec3{}, mgl64.QuatIdent())

	var legs []*LegController
	members := map[int][]Leg{}
	maxGroup := 0
	for i, off := range offsets {
		target, _ := a.Add("", ghost, off, mgl64.QuatIdent())
		foot, _ := a.Add("", pose.None, off, mgl64.QuatIdent())
		leg, err := NewLegController("leg", a, foot, target, DefaultLegConfig())
		Expect(err).NotTo(HaveOccurred())
		legs = append(legs, leg)
		members[groupOf[i]] = append(members[groupOf[i]], leg)
		if groupOf[i] > maxGroup {
			maxGroup = groupOf[i]
		}
	}

	var groups []*LegGroup
	for g := 0; g <= maxGroup; g++ {
		group, err := NewLegGroup(members[g]...)
		Expect(err).NotTo(HaveOccurred())
		groups = append(groups, group)
	}

	c, err := New(DefaultConfig(), Body{Arena: a, Model: model, Ghost: ghost, EndPoint: end, Mixer: mixer}, groups, nil)
	Expect(err).NotTo(HaveOccurred())
	return c, legs
}

var _ = Describe("Controller", func() {
	var (
		c      *Controller
		legs   []*LegController
		clock  *sim.Clock
		steps  []StepEvent
		frames int
	)

	tick := func() {
		f := clock.Tick(1.0 / 60)
		c.Update(f)
		for _, l := range legs {
			l.Update(f)
		}
		frames++
	}

	BeforeEach(func() {
		c, legs = buildWalker([]mgl64.Vec3{
			{0.2, 0, 0.2}, {-0.2, 0, 0.2}, {0.2, 0, -0.2}, {-0.2, 0, -0.2},
		}, []int{0, 1, 1, 0})
		clock = sim.NewClock(sim.FixedScale(1))
		steps = nil
		frames = 0
		c.AddObserver(ObserverFunc(func(ev StepEvent) { steps = append(steps, ev) }))
	})

	Context("when the end point stays put", func() {
		It("stays idle until the realign delay passes", func() {
			for clock.Now() < 4.9 {
				tick()
			}
			Expect(steps).To(BeEmpty())
			Expect(c.Phase()).To(Equal(Idle))

			for clock.Now() < 5.2 {
				tick()
			}
			Expect(steps).To(HaveLen(1))
			Expect(steps[0].Forced).To(BeTrue())
			for _, l := range legs {
				Expect(l.Steps()).To(Equal(1))
			}
		})
	})

	Context("when the end point walks away", func() {
		BeforeEach(func() {
			b := c.Body()
			b.Arena.SetWorldPosition(b.EndPoint, mgl64.Vec3{2, 0, 0})
		})

		It("alternates groups and respects the move interval", func() {
			for clock.Now() < 3 {
				tick()
			}
			Expect(len(steps)).To(BeNumerically(">", 2))
			Expect(steps[0].Time).To(BeNumerically(">=", c.Config().LegMoveIntervalTime))
			for i := 1; i < len(steps); i++ {
				Expect(steps[i].Group).NotTo(Equal(steps[i-1].Group))
				Expect(steps[i].Time - steps[i-1].Time).To(BeNumerically(">=", c.Config().LegMoveIntervalTime-1e-9))
			}
		})

		It("keeps the feet close to the body", func() {
			for clock.Now() < 6 {
				tick()
				for _, l := range legs {
					Expect(l.CurrentDistance()).To(BeNumerically("<", 0.5))
				}
			}
			b := c.Body()
			Expect(b.Arena.WorldPosition(b.Ghost).Sub(mgl64.Vec3{2, 0, 0}).Len()).To(BeNumerically("<", 1e-9))
		})

		It("lands every foot after a teleport", func() {
			for clock.Now() < 0.5 {
				tick()
			}
			c.Teleport()
			for _, l := range legs {
				Expect(l.NeedsMove()).To(BeFalse())
				Expect(l.Moving()).To(BeFalse())
			}
		})
	})

	It("never produces NaN in look-at mode", func() {
		cfg := DefaultConfig()
		cfg.SyncRotation = false
		Expect(c.SetConfig(cfg)).To(Succeed())

		b := c.Body()
		for frames < 600 {
			now := clock.Now()
			b.Arena.SetWorldPosition(b.EndPoint, mgl64.Vec3{math.Sin(now), 0, math.Sin(2 * now)})
			tick()
			Expect(pose.Finite(b.Arena.WorldPosition(b.Model))).To(BeTrue())
		}
	})
})
