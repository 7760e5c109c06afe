package wlral

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"strings"
	"time"

	"deedles.dev/wlral/geom"
	"deedles.dev/wlral/internal/util"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

const DefaultOutputTestTimeout = 10 * time.Second

var DefaultBackground = Color{color.NRGBA{0x77, 0x77, 0x77, 0xFF}}

// Config is the compositor's runtime configuration.
type Config struct {
	Keyboard   KeyboardConfig `yaml:"keyboard"`
	Background Color          `yaml:"background"`
	Outputs    []OutputConfig `yaml:"outputs"`

	// OutputTestTimeout is how long a tested output configuration
	// stays applied before it is reverted.
	OutputTestTimeout time.Duration `yaml:"output_test_timeout"`
}

// DefaultConfig returns the configuration used when none is
// provided. Keyboard settings fall back to the XKB_DEFAULT_*
// environment variables.
func DefaultConfig() Config {
	return Config{
		Keyboard:          DefaultKeyboardConfig(),
		Background:        DefaultBackground,
		OutputTestTimeout: DefaultOutputTestTimeout,
	}
}

// LoadConfig reads a YAML configuration from r. Unset fields keep
// their default values.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	if err := d.Decode(&cfg); err != nil && err != io.EOF {
		return cfg, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	return LoadConfig(file)
}

// Output returns the configuration for the named output, or nil if
// there is none.
func (cfg Config) Output(name string) *OutputConfig {
	oc, ok := util.FindFunc(cfg.Outputs, func(oc OutputConfig) bool { return oc.Name == name })
	if !ok {
		return nil
	}
	return &oc
}

// OutputConfig is the desired initial state of a named output.
type OutputConfig struct {
	Name string `yaml:"name"`

	// Size selects the mode with a matching resolution. If it is zero
	// or no mode matches, the preferred mode is used.
	Size geom.Size `yaml:"size"`

	// Position places the output in the layout. If it is nil, the
	// output is placed automatically.
	Position *geom.Point[int] `yaml:"position"`

	Scale     float32         `yaml:"scale"`
	Transform OutputTransform `yaml:"transform"`
}

// KeyboardConfig describes the XKB keymap and key repeat of every
// keyboard.
type KeyboardConfig struct {
	Rules   string `yaml:"rules"`
	Model   string `yaml:"model"`
	Layout  string `yaml:"layout"`
	Variant string `yaml:"variant"`
	Options string `yaml:"options"`

	// RepeatRate is in keys per second and RepeatDelay is in
	// milliseconds.
	RepeatRate  int `yaml:"repeat_rate"`
	RepeatDelay int `yaml:"repeat_delay"`
}

func DefaultKeyboardConfig() KeyboardConfig {
	return KeyboardConfig{
		Rules:       os.Getenv("XKB_DEFAULT_RULES"),
		Model:       os.Getenv("XKB_DEFAULT_MODEL"),
		Layout:      os.Getenv("XKB_DEFAULT_LAYOUT"),
		Variant:     os.Getenv("XKB_DEFAULT_VARIANT"),
		Options:     os.Getenv("XKB_DEFAULT_OPTIONS"),
		RepeatRate:  25,
		RepeatDelay: 600,
	}
}

// Color is a color that can be written in YAML either as #rrggbb,
// #rrggbbaa, or as an SVG color name.
type Color struct {
	color.NRGBA
}

func (c Color) Color() color.Color {
	return c.NRGBA
}

func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return Color{color.NRGBAModel.Convert(c).(color.NRGBA)}, nil
	}

	if !strings.HasPrefix(s, "#") {
		return Color{}, fmt.Errorf("unknown color %q", s)
	}

	var c color.NRGBA
	switch len(s) {
	case 7:
		c.A = 0xFF
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	case 9:
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x%02x", &c.R, &c.G, &c.B, &c.A); err != nil {
			return Color{}, fmt.Errorf("parse color %q: %w", s, err)
		}
	default:
		return Color{}, fmt.Errorf("parse color %q: bad length", s)
	}
	return Color{c}, nil
}

func (c Color) String() string {
	if c.A == 0xFF {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseColor(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (c Color) MarshalYAML() (any, error) {
	return c.String(), nil
}

var transformNames = map[OutputTransform]string{
	TransformNormal:     "normal",
	Transform90:         "90",
	Transform180:        "180",
	Transform270:        "270",
	TransformFlipped:    "flipped",
	TransformFlipped90:  "flipped-90",
	TransformFlipped180: "flipped-180",
	TransformFlipped270: "flipped-270",
}

func (t OutputTransform) String() string {
	if name, ok := transformNames[t]; ok {
		return name
	}
	return fmt.Sprintf("OutputTransform(%d)", int(t))
}

func ParseOutputTransform(s string) (OutputTransform, error) {
	for t, name := range transformNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown output transform %q", s)
}

func (t *OutputTransform) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseOutputTransform(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t OutputTransform) MarshalYAML() (any, error) {
	return t.String(), nil
}

// ConfigManager holds the current configuration and notifies
// listeners when it changes.
type ConfigManager struct {
	config          Config
	onConfigChanged Event[Config]
}

func NewConfigManager(cfg Config) *ConfigManager {
	return &ConfigManager{config: cfg}
}

// Config returns a copy of the current configuration.
func (m *ConfigManager) Config() Config {
	cfg := m.config
	cfg.Outputs = append([]OutputConfig(nil), cfg.Outputs...)
	return cfg
}

// Update modifies the configuration with f and then emits
// OnConfigChanged.
func (m *ConfigManager) Update(f func(*Config)) {
	f(&m.config)
	m.onConfigChanged.Emit(m.Config())
}

func (m *ConfigManager) OnConfigChanged() *Event[Config] {
	return &m.onConfigChanged
}
