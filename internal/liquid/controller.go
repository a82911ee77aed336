package liquid

import (
	"fmt"
	"math"

	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/setting"
	"go.uber.org/zap"
)

// ForceFieldConfig is the user-editable part of a force field.
type ForceFieldConfig struct {
	Shape Shape `yaml:"shape"`
	// Strength of the force acting on the liquid, [-1, 1].
	Strength float64 `yaml:"strength"`
	// How fast the force loses strength with distance to the centre, [0, 10].
	DistanceDecay float64 `yaml:"distance_decay"`
}

func DefaultForceFieldConfig() ForceFieldConfig {
	return ForceFieldConfig{Shape: Sphere, Strength: 1, DistanceDecay: 1}
}

func (c ForceFieldConfig) Validate() error {
	if _, ok := shapeNames[c.Shape]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownShape, int(c.Shape))
	}
	if math.IsNaN(c.Strength) || c.Strength < -1 || c.Strength > 1 {
		return fmt.Errorf("%w: strength %v not in [-1, 1]", ErrInvalidConfig, c.Strength)
	}
	if math.IsNaN(c.DistanceDecay) || c.DistanceDecay < 0 || c.DistanceDecay > 10 {
		return fmt.Errorf("%w: distance decay %v not in [0, 10]", ErrInvalidConfig, c.DistanceDecay)
	}
	return nil
}

// clamped pulls out-of-range values back into their valid ranges.
func (c ForceFieldConfig) clamped() ForceFieldConfig {
	if _, ok := shapeNames[c.Shape]; !ok {
		c.Shape = Sphere
	}
	c.Strength = clamp(c.Strength, -1, 1)
	c.DistanceDecay = clamp(c.DistanceDecay, 0, 10)
	return c
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

// NewForceFieldSetting wraps cfg as a persistent setting stored under name.
func NewForceFieldSetting(name string, cfg ForceFieldConfig) *setting.Persistent[ForceFieldConfig] {
	return setting.NewPersistent("force_field", name, cfg)
}

// ForceFieldController copies its setting into a ForceField whenever the
// setting is edited or saved. Loads are ignored: the values restored from
// storage are applied by the first UpdateSetting call.
type ForceFieldController struct {
	setting *setting.Persistent[ForceFieldConfig]
	field   *ForceField
	detach  func()
	updates int
	log     *zap.Logger
}

func NewForceFieldController(s *setting.Persistent[ForceFieldConfig], field *ForceField) *ForceFieldController {
	return &ForceFieldController{setting: s, field: field, log: logger.Named("liquid")}
}

func (c *ForceFieldController) Attach() {
	c.Detach()
	c.detach = c.setting.Changed.Subscribe(c.OnPersistentChanged)
}

func (c *ForceFieldController) Detach() {
	if c.detach != nil {
		c.detach()
		c.detach = nil
	}
}

func (c *ForceFieldController) OnPersistentChanged(state setting.ChangeState) {
	if state == setting.ChangeLoad {
		return
	}
	c.UpdateSetting()
}

// UpdateSetting copies shape, strength and decay into the field.
func (c *ForceFieldController) UpdateSetting() {
	cfg := c.setting.Get()
	if err := cfg.Validate(); err != nil {
		c.log.Warn("force field setting out of range, clamping", zap.Error(err))
		cfg = cfg.clamped()
	}
	c.field.Shape = cfg.Shape
	c.field.Strength = cfg.Strength
	c.field.DistanceDecay = cfg.DistanceDecay
	c.updates++
}

// Updates counts UpdateSetting calls.
func (c *ForceFieldController) Updates() int { return c.updates }

func (c *ForceFieldController) Field() *ForceField { return c.field }
