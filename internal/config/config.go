package config

import (
	"fmt"
	"image/color"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

const (
	DefaultDomain        = "scale_balance"
	DefaultImageSize     = 512
	DefaultBaseMargin    = 80
	DefaultMinObjects    = 1
	DefaultMaxObjects    = 4
	DefaultMinWeight     = 1
	DefaultMaxWeight     = 10
	DefaultBeamLength    = 300
	DefaultBeamHeight    = 8
	DefaultFulcrumHeight = 100
	DefaultFulcrumWidth  = 60
	DefaultArmLength     = 40
	DefaultPanWidth      = 100
	DefaultPanHeight     = 10
	DefaultFrames        = 25
	DefaultHoldFrames    = 8
	DefaultFPS           = 10
	DefaultWorkers       = 4
)

// Tie policies for samples whose pans weigh the same.
const (
	TieReperturb = "reperturb"
	TieBalanced  = "balanced"
	TieSkip      = "skip"
)

type Config struct {
	Domain    string          `yaml:"domain"`
	Image     ImageConfig     `yaml:"image"`
	Sampling  SamplingConfig  `yaml:"sampling"`
	Scale     ScaleConfig     `yaml:"scale"`
	Animation AnimationConfig `yaml:"animation"`
	Colors    ColorConfig     `yaml:"colors"`
	Output    OutputConfig    `yaml:"output"`
}

type ImageConfig struct {
	Width      int `yaml:"width"`
	Height     int `yaml:"height"`
	BaseMargin int `yaml:"base_margin"`
}

type SamplingConfig struct {
	MinObjects int    `yaml:"min_objects"`
	MaxObjects int    `yaml:"max_objects"`
	MinWeight  int    `yaml:"min_weight"`
	MaxWeight  int    `yaml:"max_weight"`
	TiePolicy  string `yaml:"tie_policy"`
}

type ScaleConfig struct {
	BeamLength    float64 `yaml:"beam_length"`
	BeamHeight    float64 `yaml:"beam_height"`
	FulcrumHeight float64 `yaml:"fulcrum_height"`
	FulcrumWidth  float64 `yaml:"fulcrum_width"`
	ArmLength     float64 `yaml:"arm_length"`
	PanWidth      float64 `yaml:"pan_width"`
	PanHeight     float64 `yaml:"pan_height"`
}

type AnimationConfig struct {
	Frames     int    `yaml:"frames"`
	HoldFrames int    `yaml:"hold_frames"`
	FPS        int    `yaml:"fps"`
	Easing     string `yaml:"easing"`
	Video      bool   `yaml:"video"`
}

// RGB is written as a three element sequence in yaml.
type RGB [3]uint8

func (c RGB) Color() color.RGBA { return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff} }

func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]) }

type ColorConfig struct {
	Background RGB `yaml:"background"`
	Beam       RGB `yaml:"beam"`
	Fulcrum    RGB `yaml:"fulcrum"`
	Pan        RGB `yaml:"pan"`
	Weight     RGB `yaml:"weight"`
	Heavy      RGB `yaml:"heavy"`
	StopLine   RGB `yaml:"stop_line"`
	Chain      RGB `yaml:"chain"`
	Label      RGB `yaml:"label"`
	Sum        RGB `yaml:"sum"`
}

type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Workers int    `yaml:"workers"`
	SVG     bool   `yaml:"svg"`
}

func DefaultConfig() *Config {
	return &Config{
		Domain: DefaultDomain,
		Image: ImageConfig{
			Width:      DefaultImageSize,
			Height:     DefaultImageSize,
			BaseMargin: DefaultBaseMargin,
		},
		Sampling: SamplingConfig{
			MinObjects: DefaultMinObjects,
			MaxObjects: DefaultMaxObjects,
			MinWeight:  DefaultMinWeight,
			MaxWeight:  DefaultMaxWeight,
			TiePolicy:  TieReperturb,
		},
		Scale: ScaleConfig{
			BeamLength:    DefaultBeamLength,
			BeamHeight:    DefaultBeamHeight,
			FulcrumHeight: DefaultFulcrumHeight,
			FulcrumWidth:  DefaultFulcrumWidth,
			ArmLength:     DefaultArmLength,
			PanWidth:      DefaultPanWidth,
			PanHeight:     DefaultPanHeight,
		},
		Animation: AnimationConfig{
			Frames:     DefaultFrames,
			HoldFrames: DefaultHoldFrames,
			FPS:        DefaultFPS,
			Easing:     dynamo.DefaultEasing,
			Video:      true,
		},
		Colors: ColorConfig{
			Background: RGB{255, 255, 255},
			Beam:       RGB{139, 90, 43},
			Fulcrum:    RGB{100, 100, 100},
			Pan:        RGB{180, 180, 180},
			Weight:     RGB{80, 80, 200},
			Heavy:      RGB{200, 50, 50},
			StopLine:   RGB{255, 100, 100},
			Chain:      RGB{100, 100, 100},
			Label:      RGB{80, 80, 80},
			Sum:        RGB{100, 100, 100},
		},
		Output: OutputConfig{
			Dir:     "data",
			Workers: DefaultWorkers,
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of base. Keys missing from the file keep the
// values already in base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, base); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return base, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BaseY is the stop line height in image coordinates.
func (c *Config) BaseY() float64 {
	return float64(c.Image.Height - c.Image.BaseMargin)
}

func (c *Config) Geometry() (dynamo.Geometry, error) {
	return dynamo.NewGeometry(
		c.Scale.BeamLength,
		c.Scale.FulcrumHeight,
		c.Scale.ArmLength,
		c.BaseY(),
		float64(c.Image.Width/2),
	)
}

func (c *Config) Easing() (dynamo.Easing, error) {
	return dynamo.LookupEasing(c.Animation.Easing)
}

// Validate reports the first setting that cannot produce a sample. All
// errors wrap dynamo.ErrConfig.
func (c *Config) Validate() error {
	s := c.Sampling
	switch {
	case c.Image.Width <= 0 || c.Image.Height <= 0:
		return invalid("image", "size must be positive, got %dx%d", c.Image.Width, c.Image.Height)
	case c.Image.BaseMargin < 0 || c.Image.BaseMargin >= c.Image.Height:
		return invalid("image.base_margin", "must lie inside the image, got %d", c.Image.BaseMargin)
	case s.MinObjects < 1:
		return invalid("sampling.min_objects", "must be at least 1, got %d", s.MinObjects)
	case s.MaxObjects < s.MinObjects:
		return invalid("sampling.max_objects", "%d is below min_objects %d", s.MaxObjects, s.MinObjects)
	case s.MinWeight < 1:
		return invalid("sampling.min_weight", "must be at least 1, got %d", s.MinWeight)
	case s.MaxWeight < s.MinWeight:
		return invalid("sampling.max_weight", "%d is below min_weight %d", s.MaxWeight, s.MinWeight)
	case c.Animation.Frames < 2:
		return invalid("animation.frames", "need at least 2, got %d", c.Animation.Frames)
	case c.Animation.HoldFrames < 0:
		return invalid("animation.hold_frames", "must not be negative, got %d", c.Animation.HoldFrames)
	case c.Animation.FPS <= 0:
		return invalid("animation.fps", "must be positive, got %d", c.Animation.FPS)
	case c.Output.Workers < 1:
		return invalid("output.workers", "must be at least 1, got %d", c.Output.Workers)
	}

	switch s.TiePolicy {
	case TieReperturb, TieBalanced, TieSkip:
	default:
		return invalid("sampling.tie_policy", "unknown policy %q", s.TiePolicy)
	}

	if _, err := c.Easing(); err != nil {
		return err
	}
	if _, err := c.Geometry(); err != nil {
		return err
	}

	if top := c.BaseY() - c.Scale.FulcrumHeight; top < 0 {
		return invalid("scale.fulcrum_height", "pivot above the image (y=%.0f)", top)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", dynamo.ErrConfig, field, fmt.Sprintf(format, args...))
}
