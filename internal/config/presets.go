package config

import "sort"

// Presets are partial overrides applied on top of DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"wide": func(c *Config) {
		c.Image.Width = 768
		c.Scale.BeamLength = 480
		c.Scale.PanWidth = 140
	},
	"compact": func(c *Config) {
		c.Image.Width, c.Image.Height = 256, 256
		c.Image.BaseMargin = 40
		c.Scale.BeamLength = 150
		c.Scale.BeamHeight = 4
		c.Scale.FulcrumHeight = 50
		c.Scale.FulcrumWidth = 30
		c.Scale.ArmLength = 20
		c.Scale.PanWidth = 50
		c.Scale.PanHeight = 6
	},
	"heavy": func(c *Config) {
		c.Sampling.MinWeight = 5
		c.Sampling.MaxWeight = 20
	},
	"crowded": func(c *Config) {
		c.Sampling.MinObjects = 3
		c.Sampling.MaxObjects = 6
		c.Scale.PanWidth = 140
		c.Scale.BeamLength = 360
	},
	"smooth": func(c *Config) {
		c.Animation.Frames = 60
		c.Animation.FPS = 30
		c.Animation.HoldFrames = 15
		c.Animation.Easing = "ease-in-out"
	},
}

// GetPreset returns DefaultConfig with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
