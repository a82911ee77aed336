package liquid

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/creepersim/internal/sim"
	"gopkg.in/yaml.v3"
)

func TestForceFieldShapes(t *testing.T) {
	tests := []struct {
		name   string
		shape  Shape
		px, py float64
		wantX  float64
		wantY  float64
	}{
		{"sphere radial", Sphere, 3, 4, 0.6 * math.Exp(-0.5), 0.8 * math.Exp(-0.5)},
		{"sphere outside", Sphere, 8, 8, 0, 0},
		{"cube dominant x", Cube, -4, 1, -math.Exp(-0.4), 0},
		{"cube corner inside", Cube, 9, 9, math.Exp(-0.9), 0},
		{"cylinder ignores y", Cylinder, 2, 100, math.Exp(-0.2), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewForceField(0, 0, 10)
			f.Shape = tt.shape
			fx, fy := f.Force(tt.px, tt.py)
			if math.Abs(fx-tt.wantX) > 1e-12 || math.Abs(fy-tt.wantY) > 1e-12 {
				t.Errorf("Force(%v, %v) = (%v, %v), want (%v, %v)", tt.px, tt.py, fx, fy, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestForceFieldNegativeStrengthAttracts(t *testing.T) {
	f := NewForceField(0, 0, 10)
	f.Strength = -0.5
	fx, _ := f.Force(2, 0)
	if fx >= 0 {
		t.Errorf("negative strength should pull toward the centre, got %v", fx)
	}
}

func TestShapeYAML(t *testing.T) {
	cfg := ForceFieldConfig{Shape: Cylinder, Strength: -0.25, DistanceDecay: 3}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatal(err)
	}
	var back ForceFieldConfig
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}
	if back != cfg {
		t.Errorf("got %+v, want %+v", back, cfg)
	}

	if err := yaml.Unmarshal([]byte("shape: torus\n"), &back); !errors.Is(err, ErrUnknownShape) {
		t.Errorf("expected ErrUnknownShape, got %v", err)
	}
}

func TestForceFieldConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  ForceFieldConfig
		ok   bool
	}{
		{"default", DefaultForceFieldConfig(), true},
		{"strength too high", ForceFieldConfig{Strength: 1.5}, false},
		{"decay negative", ForceFieldConfig{DistanceDecay: -1}, false},
		{"bad shape", ForceFieldConfig{Shape: 7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, ok %v", err, tt.ok)
			}
		})
	}
}

type memStore map[string][]byte

func (s memStore) ObjectPropExists(o, p string) bool { _, ok := s[o+"/"+p]; return ok }
func (s memStore) LoadObjectProp(o, p string) ([]byte, error) {
	return s[o+"/"+p], nil
}
func (s memStore) SaveObjectProp(o, p string, data []byte) error {
	s[o+"/"+p] = data
	return nil
}

func TestControllerSkipsLoadEvents(t *testing.T) {
	store := memStore{}
	saved := NewForceFieldSetting("cursor", ForceFieldConfig{Shape: Cube, Strength: -1, DistanceDecay: 4})
	if err := saved.Save(store); err != nil {
		t.Fatal(err)
	}

	s := NewForceFieldSetting("cursor", DefaultForceFieldConfig())
	field := NewForceField(0, 0, 5)
	c := NewForceFieldController(s, field)
	c.Attach()

	if err := s.Load(store); err != nil {
		t.Fatal(err)
	}
	if c.Updates() != 0 || field.Shape != Sphere {
		t.Fatalf("load must not update the field, updates=%d shape=%v", c.Updates(), field.Shape)
	}

	c.UpdateSetting()
	if field.Shape != Cube || field.Strength != -1 || field.DistanceDecay != 4 {
		t.Errorf("field not updated: %+v", field)
	}

	s.Set(ForceFieldConfig{Shape: Cylinder, Strength: 0.5, DistanceDecay: 2})
	if field.Shape != Cylinder || field.Strength != 0.5 {
		t.Errorf("set should propagate: %+v", field)
	}
	if err := s.Save(store); err != nil {
		t.Fatal(err)
	}
	if c.Updates() != 3 {
		t.Errorf("expected 3 updates (manual, set, save), got %d", c.Updates())
	}

	c.Detach()
	s.Set(DefaultForceFieldConfig())
	if field.Shape != Cylinder {
		t.Error("detached controller must not update the field")
	}
}

func TestControllerClampsOutOfRange(t *testing.T) {
	s := NewForceFieldSetting("x", DefaultForceFieldConfig())
	field := NewForceField(0, 0, 5)
	c := NewForceFieldController(s, field)
	c.Attach()

	s.Set(ForceFieldConfig{Shape: Sphere, Strength: 4, DistanceDecay: 20})
	if field.Strength != 1 || field.DistanceDecay != 10 {
		t.Errorf("expected clamped values, got %+v", field)
	}
}

func TestLiquidSettles(t *testing.T) {
	for _, name := range Integrators() {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Particles = 36
			cfg.Integrator = name
			l, err := New(cfg)
			if err != nil {
				t.Fatal(err)
			}
			_, y0 := l.CenterOfMass()
			for i := 0; i < 60; i++ {
				l.Update(sim.Frame{Dt: 1.0 / 60, Scale: 1})
				if !l.Valid() {
					t.Fatalf("non-finite state at frame %d", i)
				}
			}
			if _, y := l.CenterOfMass(); y >= y0 {
				t.Errorf("liquid should fall under gravity: y0=%v y=%v", y0, y)
			}
		})
	}
}

func TestLiquidFieldPushesParticles(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Particles = 25
	cfg.Gravity = 0
	cfg.Stiffness = 0
	cfg.Viscosity = 0

	calm, _ := New(cfg)
	pushed, _ := New(cfg)
	cx, cy := pushed.CenterOfMass()
	f := NewForceField(cx-5, cy, 20)
	pushed.AddField(f)

	for i := 0; i < 30; i++ {
		frame := sim.Frame{Dt: 1.0 / 60, Scale: 1}
		calm.Update(frame)
		pushed.Update(frame)
	}
	x0, _ := calm.CenterOfMass()
	x1, _ := pushed.CenterOfMass()
	if x1 <= x0 {
		t.Errorf("repelling field should push the liquid away: calm %v pushed %v", x0, x1)
	}
	if pushed.KineticEnergy() <= calm.KineticEnergy() {
		t.Error("field should add kinetic energy")
	}
}

func TestLiquidConfigErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Integrator = "midpoint"
	if _, err := New(cfg); !errors.Is(err, ErrUnknownIntegrator) {
		t.Errorf("expected ErrUnknownIntegrator, got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Substeps = 0
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}
