// Package http implements the REST transport for voxestate.
//
// It exposes the chat, text-to-speech and language-listing operations,
// serves generated audio from the static mount and hosts the Swagger UI.
// Errors are returned as {"detail": "..."} with a status derived from the
// error kind.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/voxestate/internal/apperr"
	"github.com/nadzzz/voxestate/internal/config"
	"github.com/nadzzz/voxestate/internal/message"
	"github.com/nadzzz/voxestate/internal/transport"
)

const maxBodyBytes = 1 << 20

// StatusResponse is returned by GET /.
type StatusResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// Transport implements transport.Transport over HTTP.
type Transport struct {
	cfg     config.HTTPConfig
	media   config.MediaConfig
	version string
	server  *http.Server
}

// New creates a new HTTP transport. Audio files under media.Dir are served
// at media.Mount.
func New(cfg config.HTTPConfig, media config.MediaConfig, version string) *Transport {
	return &Transport{cfg: cfg, media: media, version: version}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler builds the routes for svc.
func (t *Transport) Handler(svc transport.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", t.handleRoot)
	mux.HandleFunc("POST /api/chat", func(w http.ResponseWriter, r *http.Request) {
		handleChat(w, r, svc)
	})
	mux.HandleFunc("POST /api/tts", func(w http.ResponseWriter, r *http.Request) {
		handleTTS(w, r, svc)
	})
	mux.HandleFunc("GET /api/languages", func(w http.ResponseWriter, r *http.Request) {
		handleLanguages(w, r, svc)
	})

	// Swagger UI serving the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	api := cors.Handler(cors.Options{
		AllowedOrigins:   t.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	})(mux)

	// Generated audio bypasses the API CORS policy: any origin may fetch it,
	// e.g. an <audio> element on another host.
	root := http.NewServeMux()
	mount := "/" + strings.Trim(t.media.Mount, "/") + "/"
	static := http.StripPrefix(strings.TrimSuffix(mount, "/"), http.FileServer(http.Dir(t.media.Dir)))
	root.Handle("GET "+mount, staticCORS(static))
	root.Handle("OPTIONS "+mount, staticCORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	root.Handle("/", api)
	return root
}

// Listen starts the HTTP server and serves requests from svc.
func (t *Transport) Listen(ctx context.Context, svc transport.Service) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.cfg.Port),
		Handler:           t.Handler(svc),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.cfg.Port, "static_mount", t.media.Mount)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = t.server.Shutdown(shutdownCtx)
	}()

	if err := t.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return t.server.Shutdown(ctx)
	}
	return nil
}

// handleRoot reports that the service is up.
//
// @Summary     Service status
// @Tags        status
// @Produce     json
// @Success     200  {object}  StatusResponse
// @Router      / [get]
func (t *Transport) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:  "running",
		Service: "voxestate real estate assistant",
		Version: t.version,
	})
}

// handleChat processes a POST /api/chat request.
//
// @Summary     Ask the real estate assistant
// @Description Generates an answer with the configured LLM, optionally renders it as speech
// @Description and opens any URLs it contains. Speech failures leave the audio fields out.
// @Tags        chat
// @Accept      json
// @Produce     json
// @Param       request  body      message.ChatRequest   true  "Chat request; omitted fields take server defaults"
// @Success     200      {object}  message.ChatResponse
// @Failure     400      {object}  ErrorResponse  "Empty text, unsupported language or bad parameters"
// @Failure     502      {object}  ErrorResponse  "LLM provider failed"
// @Router      /api/chat [post]
func handleChat(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	req := svc.NewChatRequest("")
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	turn, err := svc.Process(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, turn.Response())
}

// handleTTS processes a POST /api/tts request.
//
// @Summary     Convert text to speech
// @Description Synthesizes text with the local engine, falling back to the network engine.
// @Description The voice is advisory and may be ignored.
// @Tags        tts
// @Accept      json
// @Produce     json
// @Param       request  body      message.TTSRequest  true  "Text and language"
// @Success     200      {object}  message.TTSResponse
// @Failure     400      {object}  ErrorResponse  "Empty text or unsupported language"
// @Failure     500      {object}  ErrorResponse  "Every synthesis engine failed"
// @Router      /api/tts [post]
func handleTTS(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	req := svc.NewTTSRequest("")
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	art, err := svc.Speak(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, message.TTSResponse{AudioURL: art.PublicURL})
}

// handleLanguages lists the supported languages.
//
// @Summary     List supported languages
// @Tags        tts
// @Produce     json
// @Success     200  {object}  message.LanguagesResponse
// @Router      /api/languages [get]
func handleLanguages(w http.ResponseWriter, r *http.Request, svc transport.Service) {
	writeJSON(w, http.StatusOK, message.LanguagesResponse{Languages: svc.Languages()})
}

func decode(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return apperr.Validation("request body", fmt.Errorf("invalid json: %w", err))
	}
	return nil
}

// statusFor maps an error kind to an HTTP status code.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUpstream:
		return http.StatusBadGateway
	case apperr.KindConfiguration:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if errors.Is(err, context.DeadlineExceeded) {
		code = http.StatusGatewayTimeout
	}
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "status", code, "kind", apperr.KindOf(err).String(), "error", err)
	}
	writeJSON(w, code, ErrorResponse{Detail: err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func staticCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		next.ServeHTTP(w, r)
	})
}
