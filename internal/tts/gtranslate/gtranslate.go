// Package gtranslate implements the network fallback engine on the public
// Google Translate text-to-speech endpoint. Output is MP3.
package gtranslate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/tts"
)

const (
	defaultEndpoint = "https://translate.google.com/translate_tts"

	// maxChunk is the longest text, in characters, the endpoint accepts per request.
	maxChunk = 100
)

// Engine fetches MP3 audio from Google Translate.
type Engine struct {
	endpoint string
	client   *http.Client
}

// New creates the engine. An empty endpoint uses the public service.
func New(cfg config.NetworkConfig) *Engine {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Engine{endpoint: endpoint, client: &http.Client{Timeout: timeout}}
}

// Name returns the engine identifier.
func (e *Engine) Name() string { return "gtranslate" }

// Extension returns "mp3".
func (e *Engine) Extension() string { return "mp3" }

// TrySynthesize downloads every chunk and writes the concatenated MP3 to path.
// Voice and speed are not supported by the service and are ignored.
func (e *Engine) TrySynthesize(ctx context.Context, req tts.Request, path string) error {
	lang := req.Language
	if lang == "" {
		lang = "en"
	}

	chunks := splitText(req.Text, maxChunk)
	if len(chunks) == 0 {
		return fmt.Errorf("gtranslate: empty text")
	}

	var audio bytes.Buffer
	for i, chunk := range chunks {
		if err := e.fetch(ctx, &audio, chunk, lang, i, len(chunks)); err != nil {
			return fmt.Errorf("gtranslate chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	slog.Debug("gtranslate synthesized", "chunks", len(chunks), "bytes", audio.Len(), "language", lang)
	return os.WriteFile(path, audio.Bytes(), 0o644)
}

func (e *Engine) fetch(ctx context.Context, w io.Writer, text, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(utf8.RuneCountInString(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	return nil
}

// splitText breaks text into pieces of at most limit characters, cutting at
// whitespace where possible. Words longer than limit are split mid-word.
func splitText(text string, limit int) []string {
	var (
		chunks []string
		cur    strings.Builder
		n      int
	)
	flush := func() {
		if n > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			n = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wn := utf8.RuneCountInString(word)
		for wn > limit {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:limit]))
			word = string(runes[limit:])
			wn -= limit
		}
		if n > 0 && n+1+wn > limit {
			flush()
		}
		if n > 0 {
			cur.WriteByte(' ')
			n++
		}
		cur.WriteString(word)
		n += wn
	}
	flush()
	return chunks
}

var _ tts.Engine = (*Engine)(nil)
