package message

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChat() ChatRequest {
	return ChatRequest{
		Text:        "Tell me about 3-bedroom houses",
		Language:    "en",
		Model:       "gpt-3.5-turbo",
		Temperature: 0.7,
		MaxTokens:   1000,
	}
}

func TestChatRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *ChatRequest)
		wantErr error
		wantMsg string
	}{
		{name: "valid", mutate: func(r *ChatRequest) {}},
		{name: "empty text", mutate: func(r *ChatRequest) { r.Text = "" }, wantErr: ErrEmptyText},
		{name: "blank text", mutate: func(r *ChatRequest) { r.Text = "  \n\t" }, wantErr: ErrEmptyText},
		{name: "empty text wins over bad language", mutate: func(r *ChatRequest) { r.Text = ""; r.Language = "fr" }, wantErr: ErrEmptyText},
		{name: "unsupported language", mutate: func(r *ChatRequest) { r.Language = "fr" }, wantErr: ErrUnsupportedLanguage},
		{name: "arabic", mutate: func(r *ChatRequest) { r.Language = "ar" }},
		{name: "temperature too high", mutate: func(r *ChatRequest) { r.Temperature = 2.1 }, wantMsg: "temperature"},
		{name: "temperature negative", mutate: func(r *ChatRequest) { r.Temperature = -0.1 }, wantMsg: "temperature"},
		{name: "temperature bounds", mutate: func(r *ChatRequest) { r.Temperature = 2.0 }},
		{name: "zero max tokens", mutate: func(r *ChatRequest) { r.MaxTokens = 0 }, wantMsg: "max_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validChat()
			tt.mutate(&r)
			err := r.Validate()
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateLanguage_ListsSupportedCodes(t *testing.T) {
	err := ValidateLanguage("de")
	require.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Contains(t, err.Error(), "en, ar")
}

func TestLookupLanguage(t *testing.T) {
	l, ok := LookupLanguage("ar")
	assert.True(t, ok)
	assert.Equal(t, "Arabic", l.Name)

	_, ok = LookupLanguage("xx")
	assert.False(t, ok)
}

func TestChatTurn_Response(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 30, 0, 0, time.FixedZone("x", 3600))

	t.Run("without audio", func(t *testing.T) {
		turn := &ChatTurn{AnswerText: "hello", GeneratedAt: at}
		resp := turn.Response()

		assert.Equal(t, "hello", resp.Text)
		assert.Empty(t, resp.AudioPath)
		assert.Empty(t, resp.AudioURL)
		assert.NotNil(t, resp.URLs)
		assert.Equal(t, "2026-03-01T11:30:00Z", resp.Timestamp)

		raw, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "audio_url")
		assert.Contains(t, string(raw), `"urls":[]`)
	})

	t.Run("with audio", func(t *testing.T) {
		turn := &ChatTurn{
			AnswerText:  "see https://example.com",
			URLs:        []string{"https://example.com"},
			Audio:       &AudioArtifact{StoragePath: "static/audio/output_x.wav", PublicURL: "/static/audio/output_x.wav"},
			GeneratedAt: at,
		}
		resp := turn.Response()

		assert.Equal(t, "static/audio/output_x.wav", resp.AudioPath)
		assert.Equal(t, "/static/audio/output_x.wav", resp.AudioURL)
		assert.Equal(t, []string{"https://example.com"}, resp.URLs)
	})
}

func TestTTSRequest_Validate(t *testing.T) {
	r := TTSRequest{Text: "hi", Language: "en"}
	assert.NoError(t, r.Validate())

	r.Text = " "
	assert.ErrorIs(t, r.Validate(), ErrEmptyText)

	r = TTSRequest{Text: "hi", Language: "jp"}
	assert.ErrorIs(t, r.Validate(), ErrUnsupportedLanguage)
}
