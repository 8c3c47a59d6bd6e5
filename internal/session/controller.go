package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/maheshsundaram/gemini-voice-input/internal/domain"
)

// State is the recording session lifecycle state.
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// ErrSessionActive is returned by Start while a session is already
// capturing. At most one session exists at a time.
var ErrSessionActive = errors.New("a recording session is already active")

// CaptureDevice abstracts the microphone. Start begins delivering binary
// audio fragments to the callback at an interval the device controls;
// Stop flushes pending fragments and halts delivery; Release frees the
// underlying hardware handle.
type CaptureDevice interface {
	Start(onFragment func(data []byte)) error
	Stop() error
	Release()
}

// OpenDeviceFunc acquires a capture device, requesting user permission.
type OpenDeviceFunc func() (CaptureDevice, error)

// SubmitFunc receives the finalized artifact of a session. The controller
// invokes it on its own goroutine so Stop never blocks on it.
type SubmitFunc func(artifact domain.AudioArtifact)

// Notify carries the user-visible status/error surfaces. Either func may
// be nil.
type Notify struct {
	Status func(msg string)
	Error  func(msg string)
}

// Controller owns the capture lifecycle for one microphone. It holds at
// most one active session; Start from any state but Idle is rejected and
// Stop outside Capturing is a no-op.
type Controller struct {
	mu        sync.Mutex
	state     State
	sessionID string
	chunks    [][]byte
	device    CaptureDevice

	open   OpenDeviceFunc
	submit SubmitFunc
	notify Notify
}

func NewController(open OpenDeviceFunc, submit SubmitFunc, notify Notify) *Controller {
	return &Controller{
		open:   open,
		submit: submit,
		notify: notify,
	}
}

// State reports the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SessionID reports the identifier of the active session, or "" when idle.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Start begins a new recording session. It acquires the capture device,
// clears any previously buffered fragments, and transitions to Capturing.
// On permission denial or device failure the controller stays Idle and the
// error surface is updated.
func (c *Controller) Start() error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}

	device, err := c.open()
	if err != nil {
		c.mu.Unlock()
		c.notifyError(fmt.Sprintf("Error accessing microphone: %v", err))
		return fmt.Errorf("access microphone: %w", err)
	}

	c.device = device
	c.chunks = nil
	c.sessionID = uuid.NewString()
	c.state = StateCapturing
	c.mu.Unlock()

	if err := device.Start(c.appendFragment); err != nil {
		c.mu.Lock()
		c.device = nil
		c.sessionID = ""
		c.state = StateIdle
		c.mu.Unlock()

		device.Release()
		c.notifyError(fmt.Sprintf("Error accessing microphone: %v", err))
		return fmt.Errorf("start capture: %w", err)
	}

	c.notifyStatus("Listening...")
	return nil
}

// Stop finalizes the active session: the device is stopped and released
// unconditionally, buffered fragments are concatenated in arrival order
// into one artifact, and the artifact is handed off on a detached
// goroutine. The controller returns to Idle immediately without waiting
// for the transcription call. Stop outside Capturing is a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state != StateCapturing {
		c.mu.Unlock()
		return nil
	}
	c.state = StateFinalizing
	device := c.device
	c.mu.Unlock()

	stopErr := device.Stop()
	device.Release()

	c.mu.Lock()
	chunks := c.chunks
	c.chunks = nil
	c.device = nil
	c.sessionID = ""
	c.state = StateIdle
	c.mu.Unlock()

	if stopErr != nil {
		c.notifyError(fmt.Sprintf("Error stopping capture: %v", stopErr))
		return fmt.Errorf("stop capture: %w", stopErr)
	}

	artifact := assemble(chunks)
	c.notifyStatus("Transcribing...")
	go c.submit(artifact)
	return nil
}

// Toggle starts a session when idle and stops it when capturing.
func (c *Controller) Toggle() error {
	if c.State() == StateCapturing {
		return c.Stop()
	}
	return c.Start()
}

// appendFragment buffers one device-delivered fragment. Zero-length
// fragments are discarded. Fragments are accepted during Capturing and
// Finalizing (devices flush trailing data while stopping).
func (c *Controller) appendFragment(data []byte) {
	if len(data) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	c.chunks = append(c.chunks, buf)
}

func assemble(chunks [][]byte) domain.AudioArtifact {
	size := 0
	for _, chunk := range chunks {
		size += len(chunk)
	}

	data := make([]byte, 0, size)
	for _, chunk := range chunks {
		data = append(data, chunk...)
	}

	return domain.AudioArtifact{
		Bytes:    data,
		MIMEType: domain.AudioMIMEType,
	}
}

func (c *Controller) notifyStatus(msg string) {
	if c.notify.Status != nil {
		c.notify.Status(msg)
	}
}

func (c *Controller) notifyError(msg string) {
	if c.notify.Error != nil {
		c.notify.Error(msg)
	}
}
