package app

import (
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/hyperifyio/laudo/internal/llm"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
    if cfg == nil { return }

    if cfg.DataDir == "" {
        cfg.DataDir = os.Getenv("LAUDO_DATA_DIR")
    }
    if cfg.AI.Provider == "" {
        cfg.AI.Provider = llm.Provider(os.Getenv("LAUDO_AI_PROVIDER"))
    }
    if cfg.AI.APIKey == "" {
        cfg.AI.APIKey = os.Getenv("LAUDO_AI_KEY")
    }
    if cfg.AI.Model == "" {
        cfg.AI.Model = os.Getenv("LAUDO_AI_MODEL")
    }
    if cfg.AIBaseURL == "" {
        cfg.AIBaseURL = os.Getenv("LAUDO_AI_BASE_URL")
    }
    if cfg.CacheDir == "" {
        cfg.CacheDir = os.Getenv("LAUDO_CACHE_DIR")
    }
    if cfg.CacheMaxAge == 0 {
        if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv("LAUDO_CACHE_MAX_AGE"))); err == nil && d > 0 {
            cfg.CacheMaxAge = d
        }
    }
    if cfg.Addr == "" {
        cfg.Addr = os.Getenv("LAUDO_ADDR")
    }
    if cfg.NTEPMatrix == "" {
        cfg.NTEPMatrix = os.Getenv("LAUDO_NTEP_MATRIX")
    }
    if cfg.Concurrency == 0 {
        if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("LAUDO_CONCURRENCY"))); err == nil && n > 0 {
            cfg.Concurrency = n
        }
    }
    if !cfg.Verbose {
        setBool(&cfg.Verbose, os.Getenv("VERBOSE"))
    }
}

// setBool parses common truthy/falsy strings and leaves dst untouched on
// anything else.
func setBool(dst *bool, v string) {
    switch strings.ToLower(strings.TrimSpace(v)) {
    case "1", "true", "yes", "on", "sim":
        *dst = true
    case "0", "false", "no", "off", "nao", "não":
        *dst = false
    }
}
