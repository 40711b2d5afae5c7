package session

import (
	"sync"

	"github.com/frahmantamala/crm-assistant/internal"
	"github.com/google/uuid"
)

type VoiceState string

const (
	VoiceIdle         VoiceState = "idle"
	VoiceListening    VoiceState = "listening"
	VoiceInterpreting VoiceState = "interpreting"
)

// Voice tracks the single speech capture of a session:
// idle -> listening -> interpreting -> idle. Interim transcripts are kept
// for display only. Only a final transcript moves the capture to
// interpreting, and only once.
type Voice struct {
	mu        sync.Mutex
	state     VoiceState
	captureID string
	interim   string
}

func NewVoice() *Voice {
	return &Voice{state: VoiceIdle}
}

type VoiceStatus struct {
	State     VoiceState `json:"state"`
	CaptureID string     `json:"captureId,omitempty"`
	Interim   string     `json:"interim,omitempty"`
}

func (v *Voice) Status() VoiceStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return VoiceStatus{State: v.state, CaptureID: v.captureID, Interim: v.interim}
}

// Start opens a new capture. An active capture is stopped first and its id is
// returned as stopped.
func (v *Voice) Start() (captureID, stopped string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != VoiceIdle {
		stopped = v.captureID
	}
	v.captureID = uuid.New().String()
	v.state = VoiceListening
	v.interim = ""
	return v.captureID, stopped
}

// Interim records a partial transcript for display.
func (v *Voice) Interim(captureID, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != VoiceListening || v.captureID != captureID {
		return internal.ErrVoiceNotListening
	}
	v.interim = text
	return nil
}

// Final moves the capture to interpreting. The returned func must be called
// once interpretation is over and returns the capture to idle.
func (v *Voice) Final(captureID string) (func(), error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.state != VoiceListening || v.captureID != captureID {
		return nil, internal.ErrVoiceNotListening
	}
	v.state = VoiceInterpreting
	v.interim = ""
	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if v.captureID == captureID {
				v.state = VoiceIdle
				v.captureID = ""
			}
		})
	}, nil
}

// Stop ends any capture. It reports whether one was active.
func (v *Voice) Stop() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	active := v.state != VoiceIdle
	v.state = VoiceIdle
	v.captureID = ""
	v.interim = ""
	return active
}
