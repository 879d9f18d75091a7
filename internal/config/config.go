package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/stepbridge/internal/integrators"
	"github.com/san-kum/stepbridge/internal/rocket"
	"gopkg.in/yaml.v3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	DefaultListen       = "127.0.0.1:5000"
	DefaultDt           = 0.02
	DefaultIntegrator   = "rk4"
	DefaultTickInterval = time.Millisecond
	DefaultDataDir      = ".stepbridge"
	DefaultLogLevel     = "info"
	DefaultShutdown     = 2 * time.Second
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	Sim      SimConfig     `yaml:"sim"`
	Body     BodyConfig    `yaml:"body"`
	Lander   LanderConfig  `yaml:"lander"`
	Target   Vec3          `yaml:"target"`
	Record   RecordConfig  `yaml:"record"`
	Monitor  bool          `yaml:"monitor"`
	Shutdown time.Duration `yaml:"shutdown_timeout"`
}

type SimConfig struct {
	Dt           float64       `yaml:"dt"`
	Integrator   string        `yaml:"integrator"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

type BodyConfig struct {
	Mass        float64 `yaml:"mass"`
	Inertia     Vec3    `yaml:"inertia"`
	Gravity     float64 `yaml:"gravity"`
	Drag        float64 `yaml:"drag"`
	AngularDrag float64 `yaml:"angular_drag"`
}

type LanderConfig struct {
	ThrustPower  float64 `yaml:"thrust_power"`
	RCSPower     float64 `yaml:"rcs_power"`
	RollScale    float64 `yaml:"roll_scale"`
	SensorOffset Vec3    `yaml:"sensor_offset"`
	Ground       bool    `yaml:"ground"`
	GroundLevel  float64 `yaml:"ground_level"`
}

type RecordConfig struct {
	Enabled bool   `yaml:"enabled"`
	DataDir string `yaml:"data_dir"`
}

type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v Vec3) R3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func vec3(v r3.Vec) Vec3 { return Vec3{X: v.X, Y: v.Y, Z: v.Z} }

func DefaultConfig() *Config {
	body := rocket.NewBody()
	params := rocket.DefaultParams()
	return &Config{
		Listen:   DefaultListen,
		LogLevel: DefaultLogLevel,
		Sim: SimConfig{
			Dt:           DefaultDt,
			Integrator:   DefaultIntegrator,
			TickInterval: DefaultTickInterval,
		},
		Body: BodyConfig{
			Mass:        body.Mass,
			Inertia:     vec3(body.Inertia),
			Gravity:     body.Gravity,
			Drag:        body.Drag,
			AngularDrag: body.AngularDrag,
		},
		Lander: LanderConfig{
			ThrustPower:  params.ThrustPower,
			RCSPower:     params.RCSPower,
			RollScale:    params.RollScale,
			SensorOffset: vec3(params.SensorOffset),
			Ground:       params.Ground,
			GroundLevel:  params.GroundLevel,
		},
		Target: vec3(params.Target),
		Record: RecordConfig{
			DataDir: DefaultDataDir,
		},
		Shutdown: DefaultShutdown,
	}
}

// Load reads a yaml file over the defaults, so a file only needs the keys
// it changes.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	var errs []error
	if c.Listen == "" {
		errs = append(errs, fmt.Errorf("listen address is empty"))
	}
	if c.Sim.Dt <= 0 {
		errs = append(errs, fmt.Errorf("sim.dt must be positive, got %g", c.Sim.Dt))
	}
	if _, err := integrators.New(c.Sim.Integrator); err != nil {
		errs = append(errs, err)
	}
	if c.Sim.TickInterval < 0 {
		errs = append(errs, fmt.Errorf("sim.tick_interval must not be negative"))
	}
	if c.Body.Mass <= 0 {
		errs = append(errs, fmt.Errorf("body.mass must be positive, got %g", c.Body.Mass))
	}
	if c.Body.Inertia.X <= 0 || c.Body.Inertia.Y <= 0 || c.Body.Inertia.Z <= 0 {
		errs = append(errs, fmt.Errorf("body.inertia components must be positive"))
	}
	if c.Body.Drag < 0 || c.Body.AngularDrag < 0 {
		errs = append(errs, fmt.Errorf("drag must not be negative"))
	}
	if c.Lander.ThrustPower < 0 || c.Lander.RCSPower < 0 {
		errs = append(errs, fmt.Errorf("actuator power must not be negative"))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

func (c *Config) NewBody() *rocket.Body {
	return &rocket.Body{
		Mass:        c.Body.Mass,
		Inertia:     c.Body.Inertia.R3(),
		Gravity:     c.Body.Gravity,
		Drag:        c.Body.Drag,
		AngularDrag: c.Body.AngularDrag,
	}
}

func (c *Config) LanderParams() rocket.Params {
	return rocket.Params{
		ThrustPower:  c.Lander.ThrustPower,
		RCSPower:     c.Lander.RCSPower,
		RollScale:    c.Lander.RollScale,
		SensorOffset: c.Lander.SensorOffset.R3(),
		Target:       c.Target.R3(),
		Ground:       c.Lander.Ground,
		GroundLevel:  c.Lander.GroundLevel,
	}
}

// NewLander builds the backend described by c.
func (c *Config) NewLander() (*rocket.Lander, error) {
	integ, err := integrators.New(c.Sim.Integrator)
	if err != nil {
		return nil, err
	}
	return rocket.NewLander(c.NewBody(), integ, c.LanderParams()), nil
}
