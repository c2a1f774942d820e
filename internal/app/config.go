package app

import (
	"time"

	"github.com/hyperifyio/laudo/internal/llm"
)

// DefaultAddr is the listen address of the HTTP API when none is set.
const DefaultAddr = ":8080"

// DefaultDataDir holds cases when no directory is configured.
const DefaultDataDir = ".laudo"

// Config holds runtime configuration for the application.
type Config struct {
	// Storage
	DataDir     string
	StrictPerms bool

	// AI provider. An empty provider falls back to the stored configuration.
	AI llm.Config
	// AIBaseURL points every provider at an OpenAI-compatible base such as
	// "http://localhost:8081/v1". Claude and Gemini use it without "/v1".
	AIBaseURL string

	// CacheDir enables the on-disk cache of model answers.
	CacheDir    string
	CacheMaxAge time.Duration

	// NTEPMatrix is an optional YAML matrix replacing the embedded one.
	NTEPMatrix string

	// HTTP
	Addr string

	// Concurrency bounds the section batch of the report pipeline.
	Concurrency int

	Verbose bool
}
