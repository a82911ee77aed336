package scenario

import (
	"context"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gopxl/beep"
	"github.com/san-kum/creepersim/internal/audio"
	"github.com/san-kum/creepersim/internal/creeper"
	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/metrics"
	"github.com/san-kum/creepersim/internal/pose"
	"github.com/san-kum/creepersim/internal/rig"
	"github.com/san-kum/creepersim/internal/setting"
	"github.com/san-kum/creepersim/internal/sim"
	"go.uber.org/zap"
)

// Sample is one recorded frame.
type Sample struct {
	Time     float64
	Body     mgl64.Vec3
	EndPoint mgl64.Vec3
	Lag      float64
	Phase    creeper.Phase
	Scale    float64
	Bounce   float64
}

type Result struct {
	Config   Config
	Samples  []Sample
	Steps    []creeper.StepEvent
	Metrics  map[string]float64
	Feet     []mgl64.Vec3
	Rebuilds int
}

// Experiment owns one creeper and everything that drives it.
type Experiment struct {
	cfg      Config
	creeper  *Creeper
	settings *setting.CommonSettingManager
	helper   *rig.Helper
	analyser *audio.Analyser
	source   beep.Streamer
	bounce   *audio.Bounce
	loop     *sim.Loop
	path     Path

	legOffsets  []mgl64.Vec3
	changes     []ScaleChange
	prevSize    float64
	unsubscribe func()
	samples     []Sample
	steps       []creeper.StepEvent
	log         *zap.Logger
}

// New builds the creeper and wires every per-frame system. settings may be
// nil, in which case an in-memory manager is used.
func New(cfg Config, settings *setting.CommonSettingManager) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	path, err := lookupPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	c, err := Build(cfg)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		settings = setting.NewCommonSettingManager(nil)
	}
	prevSize := settings.CursorSize()
	if err := settings.SetCursorSize(cfg.Scale); err != nil {
		return nil, err
	}

	e := &Experiment{
		cfg:      cfg,
		creeper:  c,
		settings: settings,
		path:     path,
		changes:  append([]ScaleChange(nil), cfg.ScaleChanges...),
		prevSize: prevSize,
		log:      logger.Named("scenario").With(zap.String("scenario", cfg.Name)),
	}
	for _, l := range c.Legs {
		e.legOffsets = append(e.legOffsets, c.Arena.LocalPosition(l.Target()).Mul(1/cfg.Scale))
	}
	e.unsubscribe = settings.CursorSizeChanged.Subscribe(e.rescale)

	e.loop = sim.New(sim.NewClock(settings))
	e.loop.AddSystem(sim.SystemFunc(e.drive))

	if cfg.Audio.Enabled {
		e.analyser = audio.NewAnalyser(audio.DefaultSampleRate)
		e.source = audio.Beat(cfg.Audio.Frequency, cfg.Audio.Amplitude, cfg.Audio.Period, cfg.Audio.Duty, audio.DefaultSampleRate)
		e.bounce = audio.NewBounce(e.analyser, c.Arena, c.Body.Mixer, cfg.Audio.Gain)
		e.loop.AddSystem(sim.SystemFunc(e.listen))
		e.loop.AddSystem(e.bounce)
	}

	e.loop.AddSystem(c.Controller)
	for _, l := range c.Legs {
		e.loop.AddSystem(l)
	}
	if c.Solver != nil {
		e.helper, err = rig.NewHelper(c.Arena, c.Solver, c.Tail...)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.helper.Attach(settings)
		e.loop.AddSystem(e.helper)
	}

	steps, aligns, cadence := metrics.NewSteps(), metrics.NewAlignments(), metrics.NewCadence()
	for _, o := range []creeper.Observer{steps, aligns, cadence, creeper.ObserverFunc(e.recordStep)} {
		c.Controller.AddObserver(o)
	}
	for _, m := range []sim.Metric{
		steps, aligns, cadence,
		metrics.NewMaxLag(c.Lag),
		metrics.NewMeanLag(c.Lag),
		metrics.NewReach(c.LegDistances, 4*cfg.Leg.MoveThreshold*cfg.Scale),
	} {
		e.loop.AddMetric(m)
	}
	e.loop.AddObserver(e)
	return e, nil
}

func (e *Experiment) Config() Config { return e.cfg }

func (e *Experiment) Creeper() *Creeper { return e.creeper }

func (e *Experiment) Settings() *setting.CommonSettingManager { return e.settings }

// Analyser is nil unless audio is enabled.
func (e *Experiment) Analyser() *audio.Analyser { return e.analyser }

func (e *Experiment) Helper() *rig.Helper { return e.helper }

func (e *Experiment) Samples() []Sample { return e.samples }

func (e *Experiment) Steps() []creeper.StepEvent { return e.steps }

// Last returns the most recent sample, or the zero Sample before any frame.
func (e *Experiment) Last() Sample {
	if len(e.samples) == 0 {
		return Sample{}
	}
	return e.samples[len(e.samples)-1]
}

// Step advances one frame at the configured dt.
func (e *Experiment) Step() Sample {
	e.loop.Step(e.cfg.Dt)
	return e.Last()
}

// Run steps the whole configured duration.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	e.log.Info("scenario started",
		zap.String("path", e.cfg.Path),
		zap.Int("legs", e.cfg.Legs),
		zap.Int("groups", e.cfg.Groups),
		zap.Float64("duration", e.cfg.Duration))

	res, err := e.loop.Run(ctx, e.cfg.SimConfig())
	out := e.result(res)
	if err != nil {
		e.log.Warn("scenario stopped early", zap.Error(err), zap.Int("frames", len(e.samples)))
		return out, err
	}
	e.log.Info("scenario finished",
		zap.Int("frames", res.Frames),
		zap.Float64("steps", res.Metrics["steps"]),
		zap.Float64("max_lag", res.Metrics["max_lag"]))
	return out, nil
}

func (e *Experiment) result(res *sim.Result) *Result {
	out := &Result{
		Config:  e.cfg,
		Samples: e.samples,
		Steps:   e.steps,
		Feet:    e.creeper.Feet(),
	}
	if res != nil {
		out.Metrics = res.Metrics
	}
	if e.helper != nil {
		out.Rebuilds = e.helper.Rebuilds()
	}
	return out
}

// drive moves the end point along the path and applies due scale changes.
func (e *Experiment) drive(f sim.Frame) {
	for len(e.changes) > 0 && f.Now >= e.changes[0].At {
		ch := e.changes[0]
		e.changes = e.changes[1:]
		if err := e.settings.SetCursorSize(ch.Size); err != nil {
			e.log.Warn("ignoring scale change", zap.Error(err))
		}
	}

	wp := e.path(f.Now, e.cfg.Speed, e.cfg.Size)
	a := e.creeper.Arena
	a.SetWorldPosition(e.creeper.Body.EndPoint, wp.Position)
	a.SetWorldRotation(e.creeper.Body.EndPoint, pose.QuatYaw(wp.Heading))
}

func (e *Experiment) listen(f sim.Frame) {
	n := int(math.Round(float64(e.analyser.SampleRate()) * f.Dt))
	if n <= 0 {
		return
	}
	if _, err := e.analyser.Pull(e.source, n, n); err != nil {
		e.log.Warn("audio source failed", zap.Error(err))
	}
}

// Close unsubscribes from the settings manager and puts back the cursor size
// it had before New. Safe to call more than once.
func (e *Experiment) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	if e.helper != nil {
		e.helper.Detach()
	}
	if e.prevSize > 0 {
		if err := e.settings.SetCursorSize(e.prevSize); err != nil {
			e.log.Warn("cursor size not restored", zap.Error(err))
		}
		e.prevSize = 0
	}
}

// rescale keeps leg targets proportional to the cursor size.
func (e *Experiment) rescale(size float64) {
	for i, l := range e.creeper.Legs {
		e.creeper.Arena.SetLocalPosition(l.Target(), e.legOffsets[i].Mul(size))
	}
	e.log.Debug("cursor resized", zap.Float64("size", size))
}

func (e *Experiment) recordStep(ev creeper.StepEvent) {
	e.steps = append(e.steps, ev)
}

// OnFrame records a sample after every system ran.
func (e *Experiment) OnFrame(f sim.Frame) {
	a := e.creeper.Arena
	s := Sample{
		Time:     f.Now,
		Body:     a.WorldPosition(e.creeper.Body.Model),
		EndPoint: a.WorldPosition(e.creeper.Body.EndPoint),
		Lag:      e.creeper.Lag(),
		Phase:    e.creeper.Controller.Phase(),
		Scale:    f.Scale,
	}
	if e.bounce != nil {
		s.Bounce = e.bounce.Offset()
	}
	e.samples = append(e.samples, s)
}

// RunBatch runs every config concurrently. Results keep the order of cfgs.
func RunBatch(ctx context.Context, cfgs []Config) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	err := sim.RunBatch(ctx, len(cfgs), func(ctx context.Context, i int) error {
		e, err := New(cfgs[i], nil)
		if err != nil {
			return err
		}
		defer e.Close()
		res, err := e.Run(ctx)
		results[i] = res
		return err
	})
	return results, err
}
