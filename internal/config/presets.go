package config

import "sort"

type Preset struct {
	Description string
	apply       func(*Config)
}

var Presets = map[string]Preset{
	"standard": {
		Description: "default lander under earth gravity",
		apply:       func(*Config) {},
	},
	"heavy": {
		Description: "three times the mass with a larger engine",
		apply: func(c *Config) {
			c.Body.Mass = 3000
			c.Body.Inertia = Vec3{X: 4749, Y: 1500, Z: 4749}
			c.Lander.ThrustPower = 45000
			c.Lander.RCSPower = 3000
		},
	},
	"agile": {
		Description: "light airframe with strong reaction control",
		apply: func(c *Config) {
			c.Body.Mass = 600
			c.Body.Inertia = Vec3{X: 950, Y: 300, Z: 950}
			c.Lander.ThrustPower = 15000
			c.Lander.RCSPower = 2000
			c.Lander.RollScale = 0.25
		},
	},
	"lunar": {
		Description: "moon gravity and a throttled-down engine",
		apply: func(c *Config) {
			c.Body.Gravity = 1.62
			c.Lander.ThrustPower = 4000
		},
	},
}

// GetPreset returns a fresh config with the named preset applied over the
// defaults, or nil if there is no such preset.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	p.apply(cfg)
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
