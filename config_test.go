package wlral

import (
	"image/color"
	"strings"
	"testing"
	"time"

	"deedles.dev/wlral/geom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
keyboard:
  layout: us,de
  options: caps:escape
  repeat_rate: 30
background: "#336699"
output_test_timeout: 15s
outputs:
  - name: DP-1
    size:
      width: 2560
      height: 1440
    position:
      x: 0
      y: 0
    scale: 1.5
    transform: "90"
  - name: HDMI-A-1
    transform: flipped-180
`

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(testConfig))
	require.NoError(t, err)

	assert.Equal(t, "us,de", cfg.Keyboard.Layout)
	assert.Equal(t, "caps:escape", cfg.Keyboard.Options)
	assert.Equal(t, 30, cfg.Keyboard.RepeatRate)
	assert.Equal(t, 600, cfg.Keyboard.RepeatDelay, "unset fields keep their defaults")
	assert.Equal(t, color.NRGBA{0x33, 0x66, 0x99, 0xFF}, cfg.Background.NRGBA)
	assert.Equal(t, 15*time.Second, cfg.OutputTestTimeout)

	require.Len(t, cfg.Outputs, 2)
	dp := cfg.Output("DP-1")
	require.NotNil(t, dp)
	assert.Equal(t, geom.Sz(2560, 1440), dp.Size)
	require.NotNil(t, dp.Position)
	assert.Equal(t, geom.Pt(0, 0), *dp.Position)
	assert.Equal(t, float32(1.5), dp.Scale)
	assert.Equal(t, Transform90, dp.Transform)

	hdmi := cfg.Output("HDMI-A-1")
	require.NotNil(t, hdmi)
	assert.Nil(t, hdmi.Position)
	assert.Equal(t, TransformFlipped180, hdmi.Transform)

	assert.Nil(t, cfg.Output("eDP-1"))
}

func TestLoadConfigEmpty(t *testing.T) {
	cfg, err := LoadConfig(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		config string
	}{
		{"unknown field", "colour: red\n"},
		{"bad color", "background: notacolor\n"},
		{"bad transform", "outputs:\n  - name: x\n    transform: sideways\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(strings.NewReader(tt.config))
			assert.Error(t, err)
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in       string
		expected color.NRGBA
	}{
		{"#000000", color.NRGBA{0, 0, 0, 0xFF}},
		{"#ff8000", color.NRGBA{0xFF, 0x80, 0x00, 0xFF}},
		{"#ff800080", color.NRGBA{0xFF, 0x80, 0x00, 0x80}},
		{"cornflowerblue", color.NRGBA{0x64, 0x95, 0xED, 0xFF}},
		{"Black", color.NRGBA{0, 0, 0, 0xFF}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseColor(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.NRGBA)
		})
	}

	_, err := ParseColor("#12345")
	assert.Error(t, err)
}

func TestColorString(t *testing.T) {
	assert.Equal(t, "#336699", Color{color.NRGBA{0x33, 0x66, 0x99, 0xFF}}.String())
	assert.Equal(t, "#33669980", Color{color.NRGBA{0x33, 0x66, 0x99, 0x80}}.String())
}

func TestConfigManagerUpdate(t *testing.T) {
	m := NewConfigManager(DefaultConfig())

	var got Config
	m.OnConfigChanged().Subscribe(func(cfg Config) { got = cfg })
	m.Update(func(cfg *Config) {
		cfg.Outputs = append(cfg.Outputs, OutputConfig{Name: "DP-1"})
	})

	assert.Len(t, got.Outputs, 1)
	got.Outputs[0].Name = "changed"
	assert.Equal(t, "DP-1", m.Config().Outputs[0].Name, "listeners get a copy")
}
