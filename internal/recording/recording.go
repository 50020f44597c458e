package recording

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

var (
	// ErrToolMissing means pw-record is not installed.
	ErrToolMissing = errors.New("pw-record not found")
	// ErrNoDevice means PipeWire is down or the target node does not exist.
	ErrNoDevice = errors.New("no capture device")
	// ErrPermission means the capture node refused access.
	ErrPermission = errors.New("capture permission denied")
)

type AudioFrame struct {
	Data      []byte
	Timestamp time.Time
}

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16",
		BufferSize:        8192,
		Device:            "",
		ChannelBufferSize: 30,
	}
}

type Recorder struct {
	config    Config
	recording atomic.Bool

	mu     sync.Mutex // guards cmd and cancel
	cmd    *exec.Cmd
	cancel context.CancelFunc

	// overridable in tests
	lookPath   func(string) (string, error)
	checkAudio func(context.Context) error

	wg sync.WaitGroup
}

func NewRecorder(config Config) *Recorder {
	return &Recorder{
		config:     config,
		lookPath:   exec.LookPath,
		checkAudio: checkPipeWireRunning,
	}
}

func NewDefaultRecorder() *Recorder { return NewRecorder(DefaultConfig()) }

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Start launches pw-record and streams raw PCM frames until Stop or ctx ends.
// Errors from Start wrap ErrToolMissing, ErrNoDevice or ErrPermission when
// the failure is one of those.
func (r *Recorder) Start(ctx context.Context) (<-chan AudioFrame, <-chan error, error) {
	if r.recording.Load() {
		return nil, nil, fmt.Errorf("already recording")
	}

	if err := r.validateConfig(); err != nil {
		return nil, nil, err
	}

	if _, err := r.lookPath("pw-record"); err != nil {
		return nil, nil, fmt.Errorf("%w: %v (install pipewire-tools)", ErrToolMissing, err)
	}
	if err := r.checkAudio(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: PipeWire not running or accessible: %v", ErrNoDevice, err)
	}

	recordingCtx, cancel := context.WithCancel(ctx)

	frameCh := make(chan AudioFrame, r.config.ChannelBufferSize)
	errCh := make(chan error, 1)

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.recording.Store(true)
	r.wg.Add(1)
	go r.captureLoop(recordingCtx, frameCh, errCh)

	return frameCh, errCh, nil
}

func (r *Recorder) Stop() error {
	if !r.recording.Load() {
		return nil
	}
	r.requestCancel()
	return nil
}

func (r *Recorder) Wait() {
	r.wg.Wait()
}

func (r *Recorder) captureLoop(ctx context.Context, frameCh chan<- AudioFrame, errCh chan<- error) {
	defer func() {
		close(frameCh)
		close(errCh)
		r.recording.Store(false)

		// reap the child
		r.mu.Lock()
		if r.cmd != nil {
			_ = r.cmd.Wait()
			r.cmd = nil
		}
		r.cancel = nil
		r.mu.Unlock()

		r.wg.Done()
	}()

	cmd := exec.CommandContext(ctx, "pw-record", r.buildPwRecordArgs()...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stdout pipe: %w", err))
		return
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		r.emitErr(errCh, fmt.Errorf("create stderr pipe: %w", err))
		return
	}

	r.mu.Lock()
	r.cmd = cmd
	r.mu.Unlock()

	if err := cmd.Start(); err != nil {
		if errors.Is(err, os.ErrPermission) {
			err = fmt.Errorf("%w: %v", ErrPermission, err)
		}
		r.emitErr(errCh, fmt.Errorf("start pw-record: %w", err))
		return
	}

	// stderr is the only place pw-record reports a missing or forbidden node
	stderrDone := make(chan error, 1)
	go func() {
		var classified error
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			line := scanner.Text()
			log.Debugf("Recording stderr: %s", line)
			if classified == nil {
				classified = ClassifyStderr(line)
			}
		}
		stderrDone <- classified
	}()

	buffer := make([]byte, r.config.BufferSize)
	var droppedCount int
	lastDropLog := time.Now()

	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			frameData := make([]byte, n)
			copy(frameData, buffer[:n])

			select {
			case frameCh <- AudioFrame{Data: frameData, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			default:
				droppedCount++
				if time.Since(lastDropLog) > time.Second {
					log.Warnf("Recording: dropped %d frames due to backpressure", droppedCount)
					lastDropLog = time.Now()
					droppedCount = 0
				}
			}
		}

		if readErr != nil {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if errors.Is(readErr, io.EOF) {
				// pw-record exited on its own; surface why if stderr said so
				if cause := <-stderrDone; cause != nil {
					r.emitErr(errCh, cause)
				}
				return
			}
			r.emitErr(errCh, fmt.Errorf("read audio: %w", readErr))
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// ClassifyStderr maps a pw-record diagnostic line onto ErrNoDevice or
// ErrPermission. It returns nil for anything else.
func ClassifyStderr(line string) error {
	l := strings.ToLower(line)
	switch {
	case strings.Contains(l, "permission denied"), strings.Contains(l, "not allowed"):
		return fmt.Errorf("%w: %s", ErrPermission, strings.TrimSpace(line))
	case strings.Contains(l, "no target"), strings.Contains(l, "target not found"),
		strings.Contains(l, "no such node"), strings.Contains(l, "host is down"),
		strings.Contains(l, "can't connect"):
		return fmt.Errorf("%w: %s", ErrNoDevice, strings.TrimSpace(line))
	}
	return nil
}

func (r *Recorder) requestCancel() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (r *Recorder) emitErr(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
	log.Errorf("Recording error: %v", err)
}

func (r *Recorder) buildPwRecordArgs() []string {
	args := []string{
		"--format", r.config.Format,
		"--rate", strconv.Itoa(r.config.SampleRate),
		"--channels", strconv.Itoa(r.config.Channels),
		"-", // stdout
	}
	if r.config.Device != "" {
		args = append(args, "--target", r.config.Device)
	}
	return args
}

// CheckPipeWireAvailable reports whether capture can start at all.
func CheckPipeWireAvailable(ctx context.Context) error {
	if _, err := exec.LookPath("pw-record"); err != nil {
		return fmt.Errorf("%w: %v (install pipewire-tools)", ErrToolMissing, err)
	}
	if err := checkPipeWireRunning(ctx); err != nil {
		return fmt.Errorf("%w: PipeWire not running or accessible: %v", ErrNoDevice, err)
	}
	return nil
}

func checkPipeWireRunning(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return exec.CommandContext(checkCtx, "pw-cli", "info").Run()
}

func (r *Recorder) validateConfig() error {
	if r.config.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", r.config.SampleRate)
	}
	if r.config.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", r.config.Channels)
	}
	if r.config.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", r.config.BufferSize)
	}
	if r.config.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", r.config.ChannelBufferSize)
	}
	if r.config.Format == "" {
		return fmt.Errorf("invalid Format: empty")
	}
	// 2 bytes per sample per channel for s16
	if r.config.Format == "s16" {
		frameBytes := 2 * r.config.Channels
		if r.config.BufferSize%frameBytes != 0 {
			log.Warnf("Recording: BufferSize %d not aligned to frame size %d; audio frames may split",
				r.config.BufferSize, frameBytes)
		}
	}
	return nil
}
