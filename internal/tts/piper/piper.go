// Package piper implements tts.Speaker using a Piper Wyoming protocol server.
//
// Piper is a fast, local neural text-to-speech system. The linuxserver/piper
// container exposes the Wyoming protocol on TCP port 10200. Each event is:
//
//	{"type": "...", "data_length": N, "payload_length": M}\n
//	<N bytes of JSON data>
//	<M bytes of payload>
//
// Older servers put "data" inline in the header line; both forms are read.
package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"time"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/tts"
)

// defaultVoices maps ISO-639-1 language codes to Piper voice model names.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"ar": "ar_JO-kareem-medium",
}

// Speaker implements tts.Speaker over the Wyoming protocol. Connections are
// per-call; the selected voice and volume are the only state.
type Speaker struct {
	endpoint string
	voices   map[string]string // language -> voice name
	volume   float64
	selected tts.Voice
	known    []tts.Voice // from the last describe
}

// New creates a Piper speaker from config without contacting the server.
func New(cfg config.PiperConfig) *Speaker {
	voices := make(map[string]string, len(defaultVoices))
	for k, v := range defaultVoices {
		voices[k] = v
	}
	for k, v := range cfg.Voices {
		voices[k] = v
	}

	endpoint := strings.TrimPrefix(cfg.Endpoint, "tcp://")
	endpoint = strings.TrimPrefix(endpoint, "http://")

	return &Speaker{endpoint: endpoint, voices: voices, volume: 1.0}
}

// Factory returns a tts.SpeakerFactory that fails unless the server answers
// a describe request.
func Factory(cfg config.PiperConfig) tts.SpeakerFactory {
	return func(ctx context.Context) (tts.Speaker, error) {
		s := New(cfg)
		if s.endpoint == "" {
			return nil, fmt.Errorf("%w: no piper endpoint configured", tts.ErrEngineUnavailable)
		}
		if _, err := s.Voices(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", tts.ErrEngineUnavailable, err)
		}
		return s, nil
	}
}

// Name returns the engine identifier.
func (s *Speaker) Name() string { return "piper" }

// Voices asks the server for its installed voices.
func (s *Speaker) Voices(ctx context.Context) ([]tts.Voice, error) {
	conn, err := s.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := writeEvent(conn, event{Type: "describe"}, nil); err != nil {
		return nil, fmt.Errorf("sending describe event: %w", err)
	}

	r := bufio.NewReader(conn)
	for {
		evt, _, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}
		if evt.Type != "info" {
			continue
		}
		s.known = parseInfo(evt.Data)
		return s.known, nil
	}
}

// SetRate is a no-op: Wyoming synthesize events carry no rate.
func (s *Speaker) SetRate(int) {}

// SetVolume scales output samples, 0.0-1.0.
func (s *Speaker) SetVolume(v float64) {
	s.volume = min(max(v, 0), 1)
}

// SetVoice selects a voice model by name.
func (s *Speaker) SetVoice(id string) {
	s.selected = tts.Voice{ID: id, Name: id}
	for _, v := range s.known {
		if v.ID == id {
			s.selected = v
			return
		}
	}
}

// SaveToFile synthesizes text and writes it to path as WAV. Speed is ignored.
func (s *Speaker) SaveToFile(ctx context.Context, text, language string, _ float64, path string) error {
	if text == "" {
		return fmt.Errorf("empty text for synthesis")
	}

	voice := s.voiceFor(language)
	slog.Debug("piper synthesize", "text_length", len(text), "voice", voice, "language", language, "endpoint", s.endpoint)

	conn, err := s.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	synth := event{
		Type: "synthesize",
		Data: map[string]any{
			"text":  text,
			"voice": map[string]any{"name": voice},
		},
	}
	if err := writeEvent(conn, synth, nil); err != nil {
		return fmt.Errorf("sending synthesize event: %w", err)
	}

	// audio-start -> audio-chunk* -> audio-stop
	var (
		r          = bufio.NewReader(conn)
		pcm        bytes.Buffer
		sampleRate = 22050
		channels   = 1
		width      = 2
	)
	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			sampleRate = intField(evt.Data, "rate", sampleRate)
			channels = intField(evt.Data, "channels", channels)
			width = intField(evt.Data, "width", width)

		case "audio-chunk":
			pcm.Write(payload)

		case "audio-stop":
			if pcm.Len() == 0 {
				return fmt.Errorf("%w: piper returned no audio", tts.ErrEmptyOutput)
			}
			audio := pcm.Bytes()
			if width == 2 {
				scaleVolume(audio, s.volume)
			}
			slog.Debug("piper audio-stop", "pcm_bytes", len(audio), "rate", sampleRate)
			return os.WriteFile(path, pcmToWAV(audio, sampleRate, channels, width), 0o644)

		case "error":
			msg := "unknown error"
			if text, ok := evt.Data["text"].(string); ok {
				msg = text
			}
			return fmt.Errorf("piper error: %s", msg)
		}
	}
}

// voiceFor prefers the selected voice when it speaks language, then the
// per-language map, then English.
func (s *Speaker) voiceFor(language string) string {
	if s.selected.ID != "" && speaks(s.selected, language) {
		return s.selected.ID
	}
	if v := s.voices[language]; v != "" {
		return v
	}
	return s.voices["en"]
}

func speaks(v tts.Voice, language string) bool {
	if len(v.Languages) == 0 {
		// Piper voice names start with the locale, e.g. "en_US-lessac-medium".
		return strings.HasPrefix(v.ID, language+"_")
	}
	for _, l := range v.Languages {
		if l == language || strings.HasPrefix(l, language+"_") {
			return true
		}
	}
	return false
}

func (s *Speaker) dial(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(30 * time.Second))
	}
	return conn, nil
}

// parseInfo extracts voices from an info event's "tts" programs.
func parseInfo(data map[string]any) []tts.Voice {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	var info struct {
		TTS []struct {
			Voices []struct {
				Name      string   `json:"name"`
				Languages []string `json:"languages"`
				Installed *bool    `json:"installed"`
			} `json:"voices"`
		} `json:"tts"`
	}
	if err := json.Unmarshal(raw, &info); err != nil {
		return nil
	}
	var voices []tts.Voice
	for _, prog := range info.TTS {
		for _, v := range prog.Voices {
			if v.Installed != nil && !*v.Installed {
				continue
			}
			voices = append(voices, tts.Voice{ID: v.Name, Name: v.Name, Languages: v.Languages})
		}
	}
	return voices
}

func intField(data map[string]any, key string, fallback int) int {
	if v, ok := data[key].(float64); ok {
		return int(v)
	}
	return fallback
}

// scaleVolume multiplies 16-bit little-endian samples in place.
func scaleVolume(pcm []byte, volume float64) {
	if volume >= 1 {
		return
	}
	for i := 0; i+1 < len(pcm); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(pcm[i:]))
		binary.LittleEndian.PutUint16(pcm[i:], uint16(int16(float64(sample)*volume)))
	}
}

// --- Wyoming protocol helpers ---

type event struct {
	Type string
	Data map[string]any
}

type header struct {
	Type          string         `json:"type"`
	Data          map[string]any `json:"data,omitempty"`
	DataLength    int            `json:"data_length,omitempty"`
	PayloadLength int            `json:"payload_length,omitempty"`
}

// writeEvent sends a Wyoming event.
func writeEvent(w io.Writer, evt event, payload []byte) error {
	var data []byte
	if len(evt.Data) > 0 {
		var err error
		if data, err = json.Marshal(evt.Data); err != nil {
			return fmt.Errorf("marshalling event data: %w", err)
		}
	}

	hdr, err := json.Marshal(header{Type: evt.Type, DataLength: len(data), PayloadLength: len(payload)})
	if err != nil {
		return fmt.Errorf("marshalling event header: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(hdr) + 1 + len(data) + len(payload))
	buf.Write(hdr)
	buf.WriteByte('\n')
	buf.Write(data)
	buf.Write(payload)
	_, err = w.Write(buf.Bytes())
	return err
}

// readEvent reads one Wyoming event.
func readEvent(r *bufio.Reader) (*event, []byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	var hdr header
	if err := json.Unmarshal(line, &hdr); err != nil {
		return nil, nil, fmt.Errorf("invalid wyoming header %q: %w", bytes.TrimSpace(line), err)
	}

	evt := &event{Type: hdr.Type, Data: hdr.Data}
	if hdr.DataLength > 0 {
		data := make([]byte, hdr.DataLength)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, nil, fmt.Errorf("reading data: %w", err)
		}
		if err := json.Unmarshal(data, &evt.Data); err != nil {
			return nil, nil, fmt.Errorf("unmarshalling event data: %w", err)
		}
	}

	var payload []byte
	if hdr.PayloadLength > 0 {
		payload = make([]byte, hdr.PayloadLength)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return evt, payload, nil
}

// pcmToWAV wraps raw PCM data in a 44-byte RIFF/WAVE header.
func pcmToWAV(pcm []byte, sampleRate, channels, bytesPerSample int) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}

var _ tts.Speaker = (*Speaker)(nil)
