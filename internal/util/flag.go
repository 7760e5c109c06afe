package util

import (
	"flag"
	"strings"

	"github.com/charmbracelet/log"
)

// Flag registers value with the default flag set and returns it.
func Flag[T flag.Value](name string, value T, usage string) T {
	flag.Var(value, name, usage)
	return value
}

type stringsFlag []string

func (s stringsFlag) String() string {
	return strings.Join(s, ",")
}

func (s *stringsFlag) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// StringsFlag defines a flag that may be given more than once. Every
// occurrence appends to the list. The defaults in value are replaced
// by the first occurrence.
func StringsFlag(name string, value []string, usage string) *[]string {
	f := &repeatedFlag{values: value}
	Flag(name, f, usage)
	return &f.values
}

type repeatedFlag struct {
	values []string
	set    bool
}

func (f *repeatedFlag) String() string {
	return stringsFlag(f.values).String()
}

func (f *repeatedFlag) Set(v string) error {
	if !f.set {
		f.values = nil
		f.set = true
	}
	return (*stringsFlag)(&f.values).Set(v)
}

type levelFlag struct {
	level log.Level
}

func (f *levelFlag) String() string {
	return f.level.String()
}

func (f *levelFlag) Set(v string) error {
	level, err := log.ParseLevel(v)
	if err != nil {
		return err
	}
	f.level = level
	return nil
}

// LevelFlag defines a flag that takes a log level name, such as
// "debug" or "warn".
func LevelFlag(name string, value log.Level, usage string) *log.Level {
	return &Flag(name, &levelFlag{level: value}, usage).level
}
