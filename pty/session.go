// Package pty spawns and supervises the shell process backing a terminal
// session: the PTY pair, its reader goroutine, resize, and the restart
// policy applied when the shell exits unexpectedly.
package pty

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/creack/pty"
	"github.com/rs/zerolog"
)

// Spec describes how to spawn the shell process for a session.
type Spec struct {
	Command string
	Args    []string
	Env     []string
	Dir     string
	Cols    int
	Rows    int

	// RestartOnExit re-spawns Command after an unexpected exit. Disabled by
	// --no-restart-shell.
	RestartOnExit bool
}

// Shell owns the live PTY file and child process for one session. Every
// write MUST read the current file under mu rather than caching it, since a
// restart swaps the file out from under callers.
type Shell struct {
	spec   Spec
	logger zerolog.Logger

	mu      sync.RWMutex
	file    *os.File
	cmd     *exec.Cmd
	closed  bool
	exited  chan struct{}

	// onOutput is invoked from the reader goroutine for every chunk read.
	onOutput func([]byte)
	// onExit is invoked once the child process exit is observed, whether or
	// not a restart follows.
	onExit func(err error)
}

// New spawns the shell described by spec and starts its background reader.
// onOutput receives PTY bytes as they arrive; onExit is called whenever the
// underlying process exits (including right before an automatic restart).
func New(spec Spec, logger zerolog.Logger, onOutput func([]byte), onExit func(error)) (*Shell, error) {
	s := &Shell{
		spec:     spec,
		logger:   logger,
		onOutput: onOutput,
		onExit:   onExit,
	}
	if err := s.spawn(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Shell) spawn() error {
	cmd := exec.Command(s.spec.Command, s.spec.Args...)
	cmd.Env = s.spec.Env
	cmd.Dir = s.spec.Dir

	file, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("pty: spawn %s: %w", s.spec.Command, err)
	}

	cols, rows := s.spec.Cols, s.spec.Rows
	if cols <= 0 {
		cols = 80
	}
	if rows <= 0 {
		rows = 24
	}
	_ = pty.Setsize(file, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})

	s.mu.Lock()
	s.file = file
	s.cmd = cmd
	s.exited = make(chan struct{})
	s.mu.Unlock()

	go s.readLoop(file, s.exited)
	go s.waitLoop(cmd, s.exited)
	return nil
}

func (s *Shell) readLoop(file *os.File, exited chan struct{}) {
	buf := make([]byte, 4096)
	for {
		n, err := file.Read(buf)
		if n > 0 && s.onOutput != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.onOutput(chunk)
		}
		if err != nil {
			if err != io.EOF {
				s.logger.Debug().Err(err).Msg("pty read ended")
			}
			return
		}
		select {
		case <-exited:
			return
		default:
		}
	}
}

func (s *Shell) waitLoop(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()
	close(exited)

	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()

	if s.onExit != nil {
		s.onExit(err)
	}
	if closed || !s.spec.RestartOnExit {
		return
	}

	s.logger.Warn().Err(err).Str("command", s.spec.Command).Msg("shell exited, restarting")
	s.drain()
	if respawnErr := s.spawn(); respawnErr != nil {
		s.logger.Error().Err(respawnErr).Msg("shell restart failed")
	}
}

// drain closes the old PTY file and reaps the process, freeing resources
// before a restart spawns a fresh pair.
func (s *Shell) drain() {
	s.mu.Lock()
	file := s.file
	cmd := s.cmd
	s.file = nil
	s.cmd = nil
	s.mu.Unlock()

	if file != nil {
		_ = file.Close()
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// Write sends bytes to the PTY, fetching the current file on every call so
// a concurrent restart cannot leave a write directed at a dead descriptor.
func (s *Shell) Write(data []byte) (int, error) {
	s.mu.RLock()
	file := s.file
	s.mu.RUnlock()
	if file == nil {
		return 0, fmt.Errorf("pty: no active shell")
	}
	return file.Write(data)
}

// Resize changes the PTY window size.
func (s *Shell) Resize(cols, rows int) error {
	s.mu.RLock()
	file := s.file
	s.mu.RUnlock()
	if file == nil {
		return fmt.Errorf("pty: no active shell")
	}
	return pty.Setsize(file, &pty.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}

// Alive reports whether the current child process is still running.
func (s *Shell) Alive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return false
	}
	select {
	case <-s.exited:
		return false
	default:
		return true
	}
}

// Close terminates the shell and suppresses any further restart.
func (s *Shell) Close() error {
	s.mu.Lock()
	s.closed = true
	file := s.file
	cmd := s.cmd
	s.mu.Unlock()

	var err error
	if file != nil {
		err = file.Close()
	}
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
	return err
}

// InjectCommand writes cmd followed by a newline after a short settle delay,
// used to run an --command flag once the shell has finished its startup.
func (s *Shell) InjectCommand(cmd string, settle time.Duration) {
	if cmd == "" {
		return
	}
	go func() {
		time.Sleep(settle)
		_, _ = s.Write([]byte(cmd + "\n"))
	}()
}
