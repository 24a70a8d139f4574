package tts

import (
	"context"
	"os"
	"sync"
	"time"
)

// MockCall records a method invocation for verification.
type MockCall struct {
	Method string
	Text   string
	Path   string
	Time   time.Time
}

type recorder struct {
	mu    sync.Mutex
	calls []MockCall
}

func (r *recorder) record(method, text, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, MockCall{Method: method, Text: text, Path: path, Time: time.Now()})
}

// Calls returns all recorded method calls.
func (r *recorder) Calls() []MockCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MockCall, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (r *recorder) CallCount(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MockSpeaker implements Speaker for testing. Function fields override the
// defaults; by default SaveToFile writes a tiny WAV file.
type MockSpeaker struct {
	recorder

	VoiceList      []Voice
	VoicesFunc     func(ctx context.Context) ([]Voice, error)
	SaveToFileFunc func(ctx context.Context, text, language string, speed float64, path string) error

	mu     sync.Mutex
	rate   int
	volume float64
	voice  string
}

// NewMockSpeaker creates a MockSpeaker offering the given voices.
func NewMockSpeaker(voices ...Voice) *MockSpeaker {
	return &MockSpeaker{VoiceList: voices}
}

// Name returns "mock".
func (m *MockSpeaker) Name() string { return "mock" }

// Voices returns VoiceList unless VoicesFunc is set.
func (m *MockSpeaker) Voices(ctx context.Context) ([]Voice, error) {
	m.record("Voices", "", "")
	if m.VoicesFunc != nil {
		return m.VoicesFunc(ctx)
	}
	return m.VoiceList, nil
}

// SetRate records the rate.
func (m *MockSpeaker) SetRate(wpm int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rate = wpm
}

// SetVolume records the volume.
func (m *MockSpeaker) SetVolume(v float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.volume = v
}

// SetVoice records the voice id.
func (m *MockSpeaker) SetVoice(id string) {
	m.record("SetVoice", id, "")
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voice = id
}

// Settings returns the last configured rate, volume and voice id.
func (m *MockSpeaker) Settings() (rate int, volume float64, voice string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rate, m.volume, m.voice
}

// SaveToFile calls SaveToFileFunc or writes a placeholder WAV.
func (m *MockSpeaker) SaveToFile(ctx context.Context, text, language string, speed float64, path string) error {
	m.record("SaveToFile", text, path)
	if m.SaveToFileFunc != nil {
		return m.SaveToFileFunc(ctx, text, language, speed, path)
	}
	return os.WriteFile(path, []byte("RIFF\x24\x00\x00\x00WAVEfmt "), 0o644)
}

// MockEngine implements Engine for testing. By default it writes a
// placeholder MP3 file.
type MockEngine struct {
	recorder

	Ext               string
	TrySynthesizeFunc func(ctx context.Context, req Request, path string) error
}

// NewMockEngine creates a MockEngine producing .mp3 files.
func NewMockEngine() *MockEngine {
	return &MockEngine{Ext: "mp3"}
}

// Name returns "mock".
func (m *MockEngine) Name() string { return "mock" }

// Extension returns Ext.
func (m *MockEngine) Extension() string { return m.Ext }

// TrySynthesize calls TrySynthesizeFunc or writes a placeholder MP3.
func (m *MockEngine) TrySynthesize(ctx context.Context, req Request, path string) error {
	m.record("TrySynthesize", req.Text, path)
	if m.TrySynthesizeFunc != nil {
		return m.TrySynthesizeFunc(ctx, req, path)
	}
	return os.WriteFile(path, []byte("ID3\x04\x00\x00\x00\x00\x00\x00"), 0o644)
}

var (
	_ Speaker = (*MockSpeaker)(nil)
	_ Engine  = (*MockEngine)(nil)
)
