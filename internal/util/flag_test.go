package util

import (
	"flag"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepeatedFlag(t *testing.T) {
	f := repeatedFlag{values: []string{"default"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&f, "exec", "")

	require.NoError(t, fs.Parse([]string{"-exec", "foot", "-exec", "waybar -c x"}))
	assert.Equal(t, []string{"foot", "waybar -c x"}, f.values)
	assert.Equal(t, "foot,waybar -c x", f.String())
}

func TestRepeatedFlagDefault(t *testing.T) {
	f := repeatedFlag{values: []string{"default"}}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Var(&f, "exec", "")

	require.NoError(t, fs.Parse(nil))
	assert.Equal(t, []string{"default"}, f.values)
}

func TestLevelFlag(t *testing.T) {
	f := levelFlag{level: log.InfoLevel}
	require.NoError(t, f.Set("debug"))
	assert.Equal(t, log.DebugLevel, f.level)
	assert.Equal(t, "debug", f.String())

	assert.Error(t, f.Set("loud"))
	assert.Equal(t, log.DebugLevel, f.level)
}

func TestFindFunc(t *testing.T) {
	v, ok := FindFunc([]int{1, 4, 9}, func(v int) bool { return v > 3 })
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = FindFunc([]int{1, 4, 9}, func(v int) bool { return v == 5 })
	assert.False(t, ok)
}
