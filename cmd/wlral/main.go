// Command wlral is a Wayland compositor with a floating or tiling
// window management policy.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"deedles.dev/wlral"
	"deedles.dev/wlral/internal/util"
	"deedles.dev/wlral/internal/wlrbackend"
	"deedles.dev/wlral/policy/floating"
	"deedles.dev/wlral/policy/tiling"
	"github.com/charmbracelet/log"
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "wlral", "config.yaml")
}

func defaultLevel() log.Level {
	level, err := log.ParseLevel(os.Getenv("WLRAL_LOG_LEVEL"))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

func loadConfig(path string) (wlral.Config, error) {
	if path == "" {
		return wlral.DefaultConfig(), nil
	}

	cfg, err := wlral.LoadConfigFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug("no config file", "path", path)
		return wlral.DefaultConfig(), nil
	}
	return cfg, err
}

func newPolicy(name string, c *wlral.Compositor) (wlral.WindowManagementPolicy, error) {
	switch name {
	case "floating":
		return floating.New(c), nil
	case "tiling":
		return tiling.New(c, nil), nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

func startAll(cmds []string) {
	for _, c := range cmds {
		args := strings.Fields(c)
		if len(args) == 0 {
			continue
		}

		cmd := exec.Command(args[0], args[1:]...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			log.Error("start command", "cmd", c, "err", err)
			continue
		}
		go cmd.Wait()
	}
}

func run() error {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML configuration file")
	policyName := flag.String("policy", "floating", "window management policy: floating or tiling")
	level := util.LevelFlag("log-level", defaultLevel(), "log level (overrides WLRAL_LOG_LEVEL)")
	execs := util.StringsFlag("exec", nil, "command to run once the compositor has started (may be repeated)")
	flag.Parse()

	log.SetLevel(*level)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	backend := wlrbackend.New()
	c, err := wlral.NewCompositor(backend, wlral.NewConfigManager(cfg))
	if err != nil {
		return err
	}

	policy, err := newPolicy(*policyName, c)
	if err != nil {
		backend.Destroy()
		return err
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		// Terminating the display only wakes the event loop, so it is
		// safe from another goroutine.
		sig := <-signals
		log.Info("terminating", "signal", sig)
		backend.Terminate()
	}()

	startAll(*execs)
	return c.Run(policy)
}

func main() {
	if err := run(); err != nil {
		log.Fatal("wlral", "err", err)
	}
}
