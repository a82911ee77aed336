package config

import (
	"sort"

	"github.com/san-kum/creepersim/internal/scenario"
)

// Presets are named scenario tweaks applied on top of the defaults.
var Presets = map[string]func(*scenario.Config){
	"small": func(c *scenario.Config) {
		c.Legs, c.Groups = 4, 2
		c.LegSpan = 0.15
		c.Scale = 0.6
	},
	"spider": func(c *scenario.Config) {
		c.Legs, c.Groups = 8, 2
		c.LegSpan = 0.3
		c.Path = "figure8"
		c.Creeper.GhostBodyMoveSpeed = 1.6
	},
	"crab": func(c *scenario.Config) {
		c.Legs, c.Groups = 10, 2
		c.Path = "line"
		c.Creeper.SyncRotation = false
		c.Creeper.LegMoveIntervalTime = 0.15
	},
	"lizard": func(c *scenario.Config) {
		c.Legs, c.Groups = 4, 2
		c.Tail = 6
		c.Path = "stop_go"
		c.Duration = 16
	},
	"dancer": func(c *scenario.Config) {
		c.Path = "circle"
		c.Speed = 0.4
		c.Audio.Enabled = true
	},
}

// GetPreset returns the default scenario with the named preset applied.
func GetPreset(name string) (scenario.Config, bool) {
	apply, ok := Presets[name]
	if !ok {
		return scenario.Config{}, false
	}
	cfg := scenario.DefaultConfig()
	cfg.Name = name
	apply(&cfg)
	return cfg, true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
