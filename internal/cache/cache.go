// Package cache keeps provider answers on disk, keyed by provider, model and
// prompt, so regenerating a report from unchanged case data reuses them.
package cache

import (
    "context"
    "crypto/sha256"
    "encoding/hex"
    "encoding/json"
    "errors"
    "io/fs"
    "os"
    "path/filepath"
    "strings"
    "time"

    "github.com/rs/zerolog/log"

    "github.com/hyperifyio/laudo/internal/llm"
)

// Responses is a directory of cached answers, one JSON file per key.
type Responses struct {
    Dir string
    // StrictPerms enforces 0700 on the directory and 0600 on files; answers
    // quote medical data from the case.
    StrictPerms bool
    // MaxAge expires entries on read. Zero keeps them forever.
    MaxAge time.Duration
    // Now is injectable for tests.
    Now func() time.Time
}

type entry struct {
    Provider llm.Provider `json:"provider"`
    Model    string       `json:"model"`
    Text     string       `json:"text"`
    SavedAt  time.Time    `json:"savedAt"`
}

// Key digests the provider, effective model and prompt.
func Key(cfg llm.Config, prompt string) string {
    cfg = cfg.Normalize()
    h := sha256.Sum256([]byte(string(cfg.Provider) + "\n" + cfg.ModelOrDefault() + "\n\n" + prompt))
    return hex.EncodeToString(h[:])
}

func (c *Responses) now() time.Time {
    if c.Now != nil {
        return c.Now().UTC()
    }
    return time.Now().UTC()
}

func (c *Responses) ensureDir() error {
    if c == nil || strings.TrimSpace(c.Dir) == "" {
        return errors.New("cache dir not configured")
    }
    perm := os.FileMode(0o755)
    if c.StrictPerms {
        perm = 0o700
    }
    if err := os.MkdirAll(c.Dir, perm); err != nil {
        return err
    }
    if c.StrictPerms {
        if info, err := os.Stat(c.Dir); err == nil && info.Mode()&0o777 != 0o700 {
            _ = os.Chmod(c.Dir, 0o700)
        }
    }
    return nil
}

func (c *Responses) pathFor(key string) string {
    return filepath.Join(c.Dir, key+".json")
}

func (c *Responses) expired(saved time.Time) bool {
    return c.MaxAge > 0 && c.now().Sub(saved) > c.MaxAge
}

// Get returns the cached answer for key. Unreadable, malformed and expired
// entries are misses.
func (c *Responses) Get(key string) (string, bool) {
    if c == nil || c.Dir == "" {
        return "", false
    }
    b, err := os.ReadFile(c.pathFor(key))
    if err != nil {
        return "", false
    }
    var e entry
    if err := json.Unmarshal(b, &e); err != nil || e.Text == "" || c.expired(e.SavedAt) {
        return "", false
    }
    return e.Text, true
}

// Put stores text under key.
func (c *Responses) Put(key string, cfg llm.Config, text string) error {
    if err := c.ensureDir(); err != nil {
        return err
    }
    cfg = cfg.Normalize()
    b, err := json.Marshal(entry{Provider: cfg.Provider, Model: cfg.ModelOrDefault(), Text: text, SavedAt: c.now()})
    if err != nil {
        return err
    }
    mode := os.FileMode(0o644)
    if c.StrictPerms {
        mode = 0o600
    }
    return os.WriteFile(c.pathFor(key), b, mode)
}

// Purge removes expired entries and returns how many were deleted.
func (c *Responses) Purge() (int, error) {
    if c == nil || c.Dir == "" || c.MaxAge <= 0 {
        return 0, nil
    }
    removed := 0
    err := filepath.WalkDir(c.Dir, func(path string, d fs.DirEntry, err error) error {
        if err != nil {
            if errors.Is(err, fs.ErrNotExist) {
                return nil
            }
            return err
        }
        if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
            return nil
        }
        b, err := os.ReadFile(path)
        if err != nil {
            return nil
        }
        var e entry
        if json.Unmarshal(b, &e) == nil && !c.expired(e.SavedAt) {
            return nil
        }
        if os.Remove(path) == nil {
            removed++
        }
        return nil
    })
    return removed, err
}

// Clear removes every entry and leaves an empty directory.
func (c *Responses) Clear() error {
    if c == nil || strings.TrimSpace(c.Dir) == "" {
        return errors.New("cache dir not configured")
    }
    if err := os.RemoveAll(c.Dir); err != nil {
        return err
    }
    return c.ensureDir()
}

// Wrap returns a sender answering from the cache when it can and storing
// every fresh answer. Errors are never cached.
func (c *Responses) Wrap(next llm.Sender) llm.Sender {
    if c == nil || c.Dir == "" {
        return next
    }
    return &cachedSender{next: next, cache: c}
}

type cachedSender struct {
    next  llm.Sender
    cache *Responses
}

func (s *cachedSender) Send(ctx context.Context, prompt string, cfg llm.Config) (string, error) {
    key := Key(cfg, prompt)
    if text, ok := s.cache.Get(key); ok {
        log.Debug().Str("key", key[:12]).Msg("model answer from cache")
        return text, nil
    }
    text, err := s.next.Send(ctx, prompt, cfg)
    if err != nil {
        return "", err
    }
    if err := s.cache.Put(key, cfg, text); err != nil {
        log.Warn().Err(err).Msg("model answer not cached")
    }
    return text, nil
}
