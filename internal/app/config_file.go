package app

import (
    "encoding/json"
    "errors"
    "fmt"
    "net/url"
    "os"
    "path/filepath"
    "strings"
    "time"

    yaml "gopkg.in/yaml.v3"

    "github.com/hyperifyio/laudo/internal/llm"
)

// FileConfig is the single-file configuration schema.
type FileConfig struct {
    DataDir     string `yaml:"dataDir" json:"dataDir"`
    StrictPerms bool   `yaml:"strictPerms" json:"strictPerms"`

    AI struct {
        Provider string `yaml:"provider" json:"provider"`
        Key      string `yaml:"key" json:"key"`
        Model    string `yaml:"model" json:"model"`
        BaseURL  string `yaml:"baseURL" json:"baseURL"`
    } `yaml:"ai" json:"ai"`

    Cache struct {
        Dir    string        `yaml:"dir" json:"dir"`
        MaxAge time.Duration `yaml:"maxAge" json:"maxAge"`
    } `yaml:"cache" json:"cache"`

    NTEP struct {
        Matrix string `yaml:"matrix" json:"matrix"`
    } `yaml:"ntep" json:"ntep"`

    HTTP struct {
        Addr string `yaml:"addr" json:"addr"`
    } `yaml:"http" json:"http"`

    Concurrency int  `yaml:"concurrency" json:"concurrency"`
    Verbose     bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads path as YAML or JSON by extension. Unknown extensions
// are tried as YAML first, then JSON.
func LoadConfigFile(path string) (*FileConfig, error) {
    b, err := os.ReadFile(path)
    if err != nil {
        return nil, err
    }
    var fc FileConfig
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yaml", ".yml":
        if err := yaml.Unmarshal(b, &fc); err != nil {
            return nil, fmt.Errorf("parse yaml %s: %w", path, err)
        }
    case ".json":
        if err := json.Unmarshal(b, &fc); err != nil {
            return nil, fmt.Errorf("parse json %s: %w", path, err)
        }
    default:
        if yerr := yaml.Unmarshal(b, &fc); yerr != nil {
            if jerr := json.Unmarshal(b, &fc); jerr != nil {
                return nil, fmt.Errorf("parse config %s: %v; %v", path, yerr, jerr)
            }
        }
    }
    return &fc, nil
}

// ApplyFileConfig copies non-zero file values into cfg. Values already set
// on cfg, typically from flags, are kept.
func ApplyFileConfig(cfg *Config, fc *FileConfig) {
    if cfg == nil || fc == nil { return }
    if cfg.DataDir == "" { cfg.DataDir = trim(fc.DataDir) }
    if fc.StrictPerms { cfg.StrictPerms = true }
    if cfg.AI.Provider == "" { cfg.AI.Provider = llm.Provider(trim(fc.AI.Provider)) }
    if cfg.AI.APIKey == "" { cfg.AI.APIKey = trim(fc.AI.Key) }
    if cfg.AI.Model == "" { cfg.AI.Model = trim(fc.AI.Model) }
    if cfg.AIBaseURL == "" { cfg.AIBaseURL = trim(fc.AI.BaseURL) }
    if cfg.CacheDir == "" { cfg.CacheDir = trim(fc.Cache.Dir) }
    if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 { cfg.CacheMaxAge = fc.Cache.MaxAge }
    if cfg.NTEPMatrix == "" { cfg.NTEPMatrix = trim(fc.NTEP.Matrix) }
    if cfg.Addr == "" { cfg.Addr = trim(fc.HTTP.Addr) }
    if cfg.Concurrency == 0 && fc.Concurrency > 0 { cfg.Concurrency = fc.Concurrency }
    if fc.Verbose { cfg.Verbose = true }
}

// ValidateConfig fills defaults and rejects values that cannot work.
func ValidateConfig(cfg *Config) error {
    if cfg == nil {
        return errors.New("nil config")
    }
    if trim(cfg.DataDir) == "" {
        cfg.DataDir = DefaultDataDir
    }
    if trim(cfg.Addr) == "" {
        cfg.Addr = DefaultAddr
    }
    if cfg.Concurrency < 0 {
        return fmt.Errorf("concurrency must be >= 0, got %d", cfg.Concurrency)
    }
    if cfg.AI.Provider != "" {
        ai := cfg.AI.Normalize()
        switch ai.Provider {
        case llm.ProviderOpenAI, llm.ProviderClaude, llm.ProviderGemini:
        default:
            return fmt.Errorf("%w: %q", llm.ErrUnsupportedProvider, cfg.AI.Provider)
        }
        cfg.AI = ai
    }
    if cfg.CacheMaxAge < 0 {
        return fmt.Errorf("cache max age must be >= 0, got %s", cfg.CacheMaxAge)
    }
    if cfg.AIBaseURL != "" {
        u, err := url.Parse(cfg.AIBaseURL)
        if err != nil || u.Scheme == "" || u.Host == "" {
            return fmt.Errorf("invalid AI base URL %q", cfg.AIBaseURL)
        }
    }
    if cfg.NTEPMatrix != "" {
        if _, err := os.Stat(cfg.NTEPMatrix); err != nil {
            return fmt.Errorf("ntep matrix: %w", err)
        }
    }
    return nil
}

func trim(s string) string { return strings.TrimSpace(s) }
