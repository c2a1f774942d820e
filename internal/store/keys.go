package store

import (
    "encoding/json"
    "errors"
    "fmt"

    "github.com/hyperifyio/laudo/internal/llm"
    "github.com/hyperifyio/laudo/internal/record"
)

// SaveExtraction overwrites the cached extraction of data.ProcessID.
func (s *Store) SaveExtraction(data record.ProcessedPDFData) error {
    if data.ProcessID == "" {
        return errors.New("extraction: empty process id")
    }
    b, err := json.Marshal(data)
    if err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.writeFile(extractionPfx+data.ProcessID, ".json", b)
}

// LoadExtraction returns the cached extraction for a case.
func (s *Store) LoadExtraction(id string) (record.ProcessedPDFData, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, err := s.readFile(extractionPfx+id, ".json")
    if err != nil {
        return record.ProcessedPDFData{}, fmt.Errorf("extraction %s: %w", id, err)
    }
    var data record.ProcessedPDFData
    if err := json.Unmarshal(b, &data); err != nil {
        return record.ProcessedPDFData{}, fmt.Errorf("decode extraction %s: %w", id, err)
    }
    return data, nil
}

func (s *Store) ClearExtraction(id string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.removeFile(extractionPfx+id, ".json")
}

// SaveReport stores the last generated report HTML for a case.
func (s *Store) SaveReport(id string, html []byte) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.writeFile(reportPfx+id, ".html", html)
}

func (s *Store) LoadReport(id string) ([]byte, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, err := s.readFile(reportPfx+id, ".html")
    if err != nil {
        return nil, fmt.Errorf("report %s: %w", id, err)
    }
    return b, nil
}

// SaveAIConfig stores the global provider configuration after trimming the
// key and migrating the model identifier.
func (s *Store) SaveAIConfig(cfg llm.Config) error {
    b, err := json.MarshalIndent(cfg.Normalize(), "", "  ")
    if err != nil {
        return err
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.writeFile(aiConfigKey, ".json", b)
}

// LoadAIConfig reads the provider configuration. A deprecated model
// identifier is migrated and the migrated value is written back.
func (s *Store) LoadAIConfig() (llm.Config, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    b, err := s.readFile(aiConfigKey, ".json")
    if err != nil {
        return llm.Config{}, fmt.Errorf("ai config: %w", err)
    }
    var cfg llm.Config
    if err := json.Unmarshal(b, &cfg); err != nil {
        return llm.Config{}, fmt.Errorf("decode ai config: %w", err)
    }
    norm := cfg.Normalize()
    if norm != cfg {
        nb, err := json.MarshalIndent(norm, "", "  ")
        if err == nil {
            // Best effort; the migrated value is still returned.
            _ = s.writeFile(aiConfigKey, ".json", nb)
        }
    }
    return norm, nil
}
