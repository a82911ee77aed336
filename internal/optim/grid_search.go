// Package optim tunes locomotion parameters by exhaustive grid search over
// scenario runs.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/creepersim/internal/logger"
	"github.com/san-kum/creepersim/internal/scenario"
	"go.uber.org/zap"
)

var (
	ErrUnknownParam = errors.New("optim: unknown parameter")
	ErrNoCandidates = errors.New("optim: no valid candidate")
)

// setters write one tunable parameter into a scenario config.
var setters = map[string]func(*scenario.Config, float64){
	"body_move_speed":         func(c *scenario.Config, v float64) { c.Creeper.BodyMoveSpeed = v },
	"ghost_body_move_speed":   func(c *scenario.Config, v float64) { c.Creeper.GhostBodyMoveSpeed = v },
	"ghost_body_rotate_speed": func(c *scenario.Config, v float64) { c.Creeper.GhostBodyRotateSpeed = v },
	"leg_move_interval_time":  func(c *scenario.Config, v float64) { c.Creeper.LegMoveIntervalTime = v },
	"move_threshold":          func(c *scenario.Config, v float64) { c.Leg.MoveThreshold = v },
	"tween_duration":          func(c *scenario.Config, v float64) { c.Leg.TweenDuration = v },
	"step_height":             func(c *scenario.Config, v float64) { c.Leg.StepHeight = v },
	"leg_span":                func(c *scenario.Config, v float64) { c.LegSpan = v },
}

// Params lists tunable parameter names, sorted.
func Params() []string {
	names := make([]string, 0, len(setters))
	for n := range setters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for _, p := range params {
		if _, ok := setters[p]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, p)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Candidate is one evaluated grid point.
type Candidate struct {
	Params map[string]float64
	Value  float64
}

// Search runs every valid grid point on top of base and returns the one with
// the lowest value of metric. Points whose config does not validate are
// skipped.
func (g *GridSearch) Search(ctx context.Context, base scenario.Config, metric string) (Candidate, []Candidate, error) {
	log := logger.Named("optim")

	var points []map[string]float64
	var cfgs []scenario.Config
	g.expand(0, make(map[string]float64), func(params map[string]float64) {
		cfg := base
		cfg.ScaleChanges = append([]scenario.ScaleChange(nil), base.ScaleChanges...)
		for name, v := range params {
			setters[name](&cfg, v)
		}
		if err := cfg.Validate(); err != nil {
			log.Debug("skipping grid point", zap.Any("params", params), zap.Error(err))
			return
		}
		points = append(points, params)
		cfgs = append(cfgs, cfg)
	})
	if len(cfgs) == 0 {
		return Candidate{}, nil, ErrNoCandidates
	}

	results, err := scenario.RunBatch(ctx, cfgs)
	if err != nil {
		return Candidate{}, nil, err
	}

	all := make([]Candidate, len(results))
	best := Candidate{Value: math.Inf(1)}
	for i, res := range results {
		v, ok := res.Metrics[metric]
		if !ok {
			return Candidate{}, nil, fmt.Errorf("optim: run did not report metric %q", metric)
		}
		all[i] = Candidate{Params: points[i], Value: v}
		if v < best.Value {
			best = all[i]
		}
	}
	log.Info("grid search finished",
		zap.Int("points", len(all)),
		zap.String("metric", metric),
		zap.Float64("best", best.Value))
	return best, all, nil
}

func (g *GridSearch) expand(depth int, current map[string]float64, visit func(map[string]float64)) {
	if depth == len(g.paramNames) {
		visit(current)
		return
	}
	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val
		g.expand(depth+1, next, visit)
	}
}
