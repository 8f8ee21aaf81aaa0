package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
)

// FFmpegDevice captures the default microphone by shelling out to ffmpeg,
// producing Opus-in-WebM chunks on stdout. It is the production
// CaptureDevice; tests use audiotest.Device instead.
type FFmpegDevice struct {
	// Binary overrides the ffmpeg executable name.
	Binary string
	// Input is the capture backend and device, e.g. ("pulse", "default").
	InputFormat string
	InputDevice string
}

// NewFFmpegDevice returns a device reading the default pulse source.
func NewFFmpegDevice() *FFmpegDevice {
	return &FFmpegDevice{Binary: "ffmpeg", InputFormat: "pulse", InputDevice: "default"}
}

// Open spawns the capture process. A missing binary or capture backend maps
// to ErrDeviceUnavailable; an access refusal maps to ErrPermissionDenied.
func (d *FFmpegDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	binary := d.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", d.InputFormat, "-i", d.InputDevice,
	}
	if c.SampleRate > 0 {
		args = append(args, "-ar", strconv.Itoa(c.SampleRate))
	}
	if c.EchoCancellation || c.NoiseSuppression {
		// highpass+lowpass is the closest ffmpeg gets to browser-style
		// noise suppression without extra filter builds.
		args = append(args, "-af", "highpass=f=200,lowpass=f=3000")
	}
	args = append(args, "-c:a", "libopus", "-f", "webm", "-")

	cmd := exec.CommandContext(ctx, binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		if errors.Is(err, syscall.EACCES) {
			return nil, fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	s := &ffmpegStream{
		cmd:    cmd,
		chunks: make(chan []byte, 16),
	}
	go s.pump(stdout)
	return s, nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	chunks chan []byte

	mu    sync.Mutex
	state StreamState
}

const captureChunkSize = 4096

// pump reads encoded audio off the process until it exits.
func (s *ffmpegStream) pump(r io.Reader) {
	defer close(s.chunks)
	defer s.cmd.Wait()

	buf := make([]byte, captureChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			s.chunks <- chunk
		}
		if err != nil {
			return
		}
	}
}

func (s *ffmpegStream) Chunks() <-chan []byte {
	return s.chunks
}

func (s *ffmpegStream) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StreamRecording {
		return nil
	}
	if err := s.cmd.Process.Signal(syscall.SIGSTOP); err != nil {
		return fmt.Errorf("pause capture: %w", err)
	}
	s.state = StreamPaused
	return nil
}

func (s *ffmpegStream) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StreamPaused {
		return nil
	}
	if err := s.cmd.Process.Signal(syscall.SIGCONT); err != nil {
		return fmt.Errorf("resume capture: %w", err)
	}
	s.state = StreamRecording
	return nil
}

// Stop terminates the capture process, which closes the chunk channel once
// buffered output drains. Idempotent.
func (s *ffmpegStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StreamStopped {
		return nil
	}
	s.state = StreamStopped

	// Ask ffmpeg to finish the container cleanly; escalate if it lingers.
	if err := s.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		_ = s.cmd.Process.Kill()
	}
	return nil
}

func (s *ffmpegStream) State() StreamState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
