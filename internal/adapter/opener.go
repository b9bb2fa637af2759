package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
)

// Opener opens preview and screenshot URLs in an external viewer
type Opener struct {
	command string   // configured viewer command, empty for system default
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// run starts the command; replaced in tests
	run func(name string, args ...string) error
}

// NewOpener creates an Opener for the configured viewer
func NewOpener(cfg ViewerConfig, logger *slog.Logger) *Opener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Opener{
		command: cfg.Command,
		args:    cfg.Args,
		logger:  logger,
		run:     startCommand,
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}

// Open opens url in the configured viewer or the system default
func (o *Opener) Open(url string) error {
	if url == "" {
		return fmt.Errorf("nothing to open")
	}

	name, args := o.commandFor(url)
	o.logger.Info("opening in viewer", "command", name, "args", args)
	if err := o.run(name, args...); err != nil {
		return fmt.Errorf("failed to launch %s: %w", name, err)
	}
	return nil
}

// commandFor builds the command line, URL last
func (o *Opener) commandFor(url string) (string, []string) {
	if o.command != "" {
		args := append(append([]string{}, o.args...), url)
		return o.command, args
	}

	switch runtime.GOOS {
	case "darwin":
		return "open", []string{url}
	case "windows":
		return "cmd", []string{"/c", "start", "", url}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", []string{url}
	}
}
