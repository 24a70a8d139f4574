package tts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferVoice(t *testing.T) {
	voices := []Voice{
		{ID: "1", Name: "Microsoft David"},
		{ID: "2", Name: "Microsoft Zira - FEMALE"},
		{ID: "3", Name: "female 2"},
	}

	tests := []struct {
		name   string
		hint   string
		voices []Voice
		wantID string
		wantOK bool
	}{
		{name: "case-insensitive match", hint: "female", voices: voices, wantID: "2", wantOK: true},
		{name: "no match falls back to first", hint: "soprano", voices: voices, wantID: "1", wantOK: true},
		{name: "empty hint picks first", hint: "", voices: voices, wantID: "1", wantOK: true},
		{name: "no voices", hint: "female", voices: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := PreferVoice(tt.hint)(tt.voices)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, v.ID)
		})
	}
}

func TestMatchVoice(t *testing.T) {
	voices := []Voice{
		{ID: "en-us", Name: "English (America) (female)"},
		{ID: "ar", Name: "Arabic (male)"},
	}

	v, ok := matchVoice(voices, "AR")
	assert.True(t, ok)
	assert.Equal(t, "ar", v.ID)

	v, ok = matchVoice(voices, "female")
	assert.True(t, ok)
	assert.Equal(t, "en-us", v.ID)

	_, ok = matchVoice(voices, "soprano")
	assert.False(t, ok)

	_, ok = matchVoice(voices, "")
	assert.False(t, ok)
}

func TestSynthesisError_Message(t *testing.T) {
	e := &SynthesisError{}
	assert.Equal(t, "speech synthesis failed", e.Error())

	e.add(StageInit, ErrEngineUnavailable)
	e.add(StageFallback, ErrEmptyOutput)
	assert.Equal(t, "speech synthesis failed: initialization: tts: engine unavailable; fallback synthesis: tts: empty output", e.Error())
	assert.ErrorIs(t, e, ErrEngineUnavailable)
	assert.ErrorIs(t, e, ErrEmptyOutput)
}
