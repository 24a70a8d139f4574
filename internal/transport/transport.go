// Package transport defines the interface for pluggable request transports.
//
// Each transport (HTTP, gRPC) implements this interface and serves a
// Service. The pipeline doesn't care how requests arrive; it only works
// with the Service contract.
package transport

import (
	"context"

	"github.com/nadzzz/voxestate/internal/message"
)

// Service is the set of operations a transport exposes. Implemented by
// pipeline.Pipeline.
type Service interface {
	// Process runs a chat request through generation, synthesis and URL opening.
	Process(ctx context.Context, req message.ChatRequest) (*message.ChatTurn, error)

	// Speak renders text as speech.
	Speak(ctx context.Context, req message.TTSRequest) (*message.AudioArtifact, error)

	// Languages returns the supported-language table.
	Languages() []message.Language

	// NewChatRequest and NewTTSRequest return requests with defaults filled
	// in, for transports to decode caller input on top of.
	NewChatRequest(text string) message.ChatRequest
	NewTTSRequest(text string) message.TTSRequest

	// PrimaryReady reports whether the on-device speech engine is initialized.
	PrimaryReady() bool
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting requests and serves them from svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
