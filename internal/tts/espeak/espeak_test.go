package espeak

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/tts"
)

const voicesOutput = `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  af              --/M      Afrikaans          gmw/af
 5  ar              --/M      Arabic             sem/ar
 2  en-gb           --/M      English_(Great_Britain) gmw/en            (en 2)
 5  en-us           --/F      English_(America)  gmw/en-US            (en 3)
`

type fakeRunner struct {
	stdin string
	name  string
	args  []string
	out   []byte
	err   error
}

func (f *fakeRunner) run(ctx context.Context, stdin string, name string, args ...string) ([]byte, error) {
	f.stdin, f.name, f.args = stdin, name, args
	return f.out, f.err
}

func TestParseVoices(t *testing.T) {
	voices := parseVoices([]byte(voicesOutput))
	require.Len(t, voices, 4)

	assert.Equal(t, "af", voices[0].ID)
	assert.Equal(t, "Afrikaans (male)", voices[0].Name)
	assert.Equal(t, "English (Great Britain) (male)", voices[2].Name)
	assert.Equal(t, "en-us", voices[3].ID)
	assert.Equal(t, "English (America) (female)", voices[3].Name)

	v, ok := tts.PreferVoice("female")(voices)
	require.True(t, ok)
	assert.Equal(t, "en-us", v.ID)
}

func TestVoices_UsesRunner(t *testing.T) {
	f := &fakeRunner{out: []byte(voicesOutput)}
	s := &Speaker{binary: "/usr/bin/espeak-ng", rate: 175, volume: 1, run: f.run}

	voices, err := s.Voices(context.Background())
	require.NoError(t, err)
	assert.Len(t, voices, 4)
	assert.Equal(t, []string{"--voices"}, f.args)
}

func TestSaveToFile_Args(t *testing.T) {
	f := &fakeRunner{}
	s := &Speaker{binary: "espeak-ng", rate: 175, volume: 1, run: f.run}
	s.SetRate(150)
	s.SetVolume(1.0)
	s.SetVoice("en-us")

	require.NoError(t, s.SaveToFile(context.Background(), "Hello there", "en", 1.3, "/tmp/out.wav"))

	assert.Equal(t, "Hello there", f.stdin)
	assert.Equal(t, "espeak-ng", f.name)
	assert.Equal(t, []string{"-w", "/tmp/out.wav", "-s", "195", "-a", "100", "-v", "en-us", "--stdin"}, f.args)
}

func TestSaveToFile_LanguageOverridesMismatchedVoice(t *testing.T) {
	f := &fakeRunner{}
	s := &Speaker{binary: "espeak-ng", rate: 150, volume: 0.5, run: f.run}
	s.SetVoice("en-us")

	require.NoError(t, s.SaveToFile(context.Background(), "مرحبا", "ar", 1.0, "/tmp/ar.wav"))
	assert.Equal(t, []string{"-w", "/tmp/ar.wav", "-s", "150", "-a", "50", "-v", "ar", "--stdin"}, f.args)
}

func TestSaveToFile_Error(t *testing.T) {
	f := &fakeRunner{err: errors.New("espeak-ng failed: exit status 1")}
	s := &Speaker{binary: "espeak-ng", rate: 150, volume: 1, run: f.run}

	err := s.SaveToFile(context.Background(), "x", "en", 1, "/tmp/x.wav")
	assert.ErrorContains(t, err, "exit status 1")
}

func TestSetters_Clamp(t *testing.T) {
	s := &Speaker{rate: 175, volume: 1}
	s.SetRate(0)
	s.SetVolume(3)
	assert.Equal(t, 175, s.rate)
	assert.InDelta(t, 1.0, s.volume, 1e-9)

	s.SetVolume(-1)
	assert.InDelta(t, 0.0, s.volume, 1e-9)
}

func TestFactory_MissingBinary(t *testing.T) {
	factory := Factory(config.LocalTTSConfig{Binary: "definitely-not-an-espeak-binary"})
	sp, err := factory(context.Background())
	assert.Nil(t, sp)
	assert.ErrorIs(t, err, tts.ErrEngineUnavailable)
}

func TestSameLanguage(t *testing.T) {
	assert.True(t, sameLanguage("en-us", "en"))
	assert.True(t, sameLanguage("en+f3", "en"))
	assert.True(t, sameLanguage("ar", "ar"))
	assert.False(t, sameLanguage("en-gb", "ar"))
	assert.True(t, sameLanguage("en-gb", ""))
}
