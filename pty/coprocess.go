package pty

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RestartPolicy controls what happens when a coprocess exits.
type RestartPolicy int

const (
	RestartNever RestartPolicy = iota
	RestartAlways
	RestartOnFailure
)

// CoprocessSpec describes an auxiliary line-buffered-stdin process run
// alongside the main shell (e.g. a log shipper or a notification relay).
type CoprocessSpec struct {
	Name          string
	Command       string
	Args          []string
	Env           []string
	Policy        RestartPolicy
	RestartDelay  time.Duration
	OnLine        func(line string)
}

// Coprocess supervises one auxiliary process's lifecycle independent of the
// primary shell.
type Coprocess struct {
	spec   CoprocessSpec
	logger zerolog.Logger

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  func(string) error
	cancel context.CancelFunc
}

// StartCoprocess launches spec and applies its restart policy until ctx is
// canceled.
func StartCoprocess(ctx context.Context, spec CoprocessSpec, logger zerolog.Logger) *Coprocess {
	ctx, cancel := context.WithCancel(ctx)
	c := &Coprocess{spec: spec, logger: logger, cancel: cancel}
	go c.run(ctx)
	return c
}

func (c *Coprocess) run(ctx context.Context) {
	for {
		exitErr := c.runOnce(ctx)
		if ctx.Err() != nil {
			return
		}

		switch c.spec.Policy {
		case RestartAlways:
		case RestartOnFailure:
			if exitErr == nil {
				return
			}
		default:
			return
		}

		c.logger.Warn().Str("coprocess", c.spec.Name).Err(exitErr).Msg("coprocess exited, restarting")
		select {
		case <-ctx.Done():
			return
		case <-time.After(c.spec.RestartDelay):
		}
	}
}

func (c *Coprocess) runOnce(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.spec.Command, c.spec.Args...)
	cmd.Env = c.spec.Env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("coprocess %s: stdin pipe: %w", c.spec.Name, err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("coprocess %s: stdout pipe: %w", c.spec.Name, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("coprocess %s: start: %w", c.spec.Name, err)
	}

	c.mu.Lock()
	c.cmd = cmd
	c.stdin = func(line string) error {
		_, err := stdin.Write([]byte(line + "\n"))
		return err
	}
	c.mu.Unlock()

	scanner := bufio.NewScanner(stdout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for scanner.Scan() {
			if c.spec.OnLine != nil {
				c.spec.OnLine(scanner.Text())
			}
		}
	}()

	err = cmd.Wait()
	<-done

	c.mu.Lock()
	c.cmd = nil
	c.stdin = nil
	c.mu.Unlock()

	return err
}

// WriteLine writes a line to the coprocess's stdin, if currently running.
func (c *Coprocess) WriteLine(line string) error {
	c.mu.Lock()
	stdin := c.stdin
	c.mu.Unlock()
	if stdin == nil {
		return fmt.Errorf("coprocess %s: not running", c.spec.Name)
	}
	return stdin(line)
}

// Stop cancels the coprocess and prevents further restarts.
func (c *Coprocess) Stop() {
	c.cancel()
}
