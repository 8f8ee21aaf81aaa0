package player

import (
	"fmt"
	"io"
	"os/exec"
)

// FFplaySink plays encoded audio through the default output by piping it to
// ffplay. It is the production Sink; tests inject an in-memory one.
type FFplaySink struct {
	// Binary overrides the ffplay executable name.
	Binary string

	cmd   *exec.Cmd
	stdin io.WriteCloser
}

func (s *FFplaySink) Start(mimeType string) error {
	binary := s.Binary
	if binary == "" {
		binary = "ffplay"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return fmt.Errorf("playback binary: %w", err)
	}

	cmd := exec.Command(binary, "-nodisp", "-autoexit", "-loglevel", "error", "-i", "-")
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("playback pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}

	s.cmd = cmd
	s.stdin = stdin
	return nil
}

func (s *FFplaySink) Write(chunk []byte) error {
	if s.stdin == nil {
		return fmt.Errorf("playback not started")
	}
	_, err := s.stdin.Write(chunk)
	return err
}

func (s *FFplaySink) Close() error {
	if s.stdin != nil {
		_ = s.stdin.Close()
	}
	if s.cmd != nil {
		return s.cmd.Wait()
	}
	return nil
}
