package sim

import (
	"context"
)

// Loop drives systems in registration order, then feeds metrics and observers.
type Loop struct {
	clock     *Clock
	systems   []System
	metrics   []Metric
	observers []Observer
}

func New(clock *Clock) *Loop {
	if clock == nil {
		clock = NewClock(nil)
	}
	return &Loop{clock: clock}
}

func (l *Loop) AddSystem(s System)     { l.systems = append(l.systems, s) }
func (l *Loop) AddMetric(m Metric)     { l.metrics = append(l.metrics, m) }
func (l *Loop) AddObserver(o Observer) { l.observers = append(l.observers, o) }

func (l *Loop) Clock() *Clock { return l.clock }

// Step advances exactly one frame.
func (l *Loop) Step(dt float64) Frame {
	f := l.clock.Tick(dt)
	for _, s := range l.systems {
		s.Update(f)
	}
	for _, m := range l.metrics {
		m.Observe(f)
	}
	for _, o := range l.observers {
		o.OnFrame(f)
	}
	return f
}

// Run steps cfg.Steps() frames at a fixed dt.
func (l *Loop) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	steps := cfg.Steps()
	result := &Result{
		Times:   make([]float64, 0, steps),
		Metrics: make(map[string]float64),
	}

	for _, m := range l.metrics {
		m.Reset()
	}

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			l.collect(result)
			return result, &FrameError{Frame: l.clock.index, Time: l.clock.now, Wrapped: ErrCanceled}
		default:
		}

		f := l.Step(cfg.Dt)
		result.Frames++
		result.Times = append(result.Times, f.Now)
	}

	l.collect(result)
	return result, nil
}

// RunWithCallback steps until the duration elapses or callback returns false.
func (l *Loop) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	for i := 0; i < cfg.Steps(); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(l.Step(cfg.Dt)) {
			return nil
		}
	}
	return nil
}

func (l *Loop) collect(result *Result) {
	for _, m := range l.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
