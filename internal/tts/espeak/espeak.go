// Package espeak implements the tts.Speaker interface on top of the
// espeak-ng (or legacy espeak) command-line synthesizer.
//
// Text is piped on stdin and the WAV output is written with -w, so the call
// returns only after the engine has finished writing the file.
package espeak

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/tts"
)

// binaries are probed in order when no explicit binary is configured.
var binaries = []string{"espeak-ng", "espeak"}

// runFunc runs the engine binary with stdin and returns its stdout.
type runFunc func(ctx context.Context, stdin string, name string, args ...string) ([]byte, error)

// Speaker drives an espeak binary. Settings are plain fields; tts.Backend
// serializes access.
type Speaker struct {
	binary string
	rate   int
	volume float64
	voice  tts.Voice
	run    runFunc
}

// Factory returns a tts.SpeakerFactory that probes for the binary on each call.
func Factory(cfg config.LocalTTSConfig) tts.SpeakerFactory {
	return func(ctx context.Context) (tts.Speaker, error) {
		bin, err := lookup(cfg.Binary)
		if err != nil {
			return nil, err
		}
		return &Speaker{binary: bin, rate: 175, volume: 1.0, run: runCommand}, nil
	}
}

func lookup(explicit string) (string, error) {
	candidates := binaries
	if explicit != "" {
		candidates = []string{explicit}
	}
	for _, name := range candidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of %s found in PATH", tts.ErrEngineUnavailable, strings.Join(candidates, ", "))
}

func runCommand(ctx context.Context, stdin string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = strings.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w (stderr: %s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// Name returns the engine identifier.
func (s *Speaker) Name() string { return "espeak" }

// Voices lists installed voices via --voices.
func (s *Speaker) Voices(ctx context.Context) ([]tts.Voice, error) {
	out, err := s.run(ctx, "", s.binary, "--voices")
	if err != nil {
		return nil, err
	}
	return parseVoices(out), nil
}

// SetRate sets the speaking rate in words per minute.
func (s *Speaker) SetRate(wpm int) {
	if wpm > 0 {
		s.rate = wpm
	}
}

// SetVolume sets the volume, 0.0-1.0.
func (s *Speaker) SetVolume(v float64) {
	s.volume = min(max(v, 0), 1)
}

// SetVoice selects a voice by language identifier (e.g., "en-us").
func (s *Speaker) SetVoice(id string) {
	s.voice = tts.Voice{ID: id, Languages: []string{id}}
}

// SaveToFile writes a WAV rendering of text to path. The configured voice is
// used when it matches language; otherwise language itself selects the voice.
func (s *Speaker) SaveToFile(ctx context.Context, text, language string, speed float64, path string) error {
	_, err := s.run(ctx, text, s.binary, s.args(language, speed, path)...)
	return err
}

func (s *Speaker) args(language string, speed float64, path string) []string {
	if speed <= 0 {
		speed = 1.0
	}
	voice := language
	if s.voice.ID != "" && sameLanguage(s.voice.ID, language) {
		voice = s.voice.ID
	}
	args := []string{
		"-w", path,
		"-s", strconv.Itoa(int(float64(s.rate)*speed + 0.5)),
		"-a", strconv.Itoa(int(s.volume*100 + 0.5)), // espeak amplitude: 100 is normal
	}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	return append(args, "--stdin")
}

// sameLanguage reports whether voice id "en-us" belongs to language "en".
func sameLanguage(voiceID, language string) bool {
	if language == "" {
		return true
	}
	base, _, _ := strings.Cut(strings.ToLower(voiceID), "-")
	base, _, _ = strings.Cut(base, "+")
	return base == strings.ToLower(language)
}

// parseVoices reads the --voices table:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US            (en 5)
//
// Names are suffixed with the gender so a "female" hint can match.
func parseVoices(out []byte) []tts.Voice {
	var voices []tts.Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 || fields[0] == "Pty" {
			continue
		}
		lang, ageGender, name := fields[1], fields[2], fields[3]

		gender := ""
		if _, g, ok := strings.Cut(ageGender, "/"); ok {
			switch g {
			case "F":
				gender = "female"
			case "M":
				gender = "male"
			}
		}
		display := strings.ReplaceAll(name, "_", " ")
		if gender != "" {
			display += " (" + gender + ")"
		}
		voices = append(voices, tts.Voice{ID: lang, Name: display, Languages: []string{lang}})
	}
	return voices
}

var _ tts.Speaker = (*Speaker)(nil)
