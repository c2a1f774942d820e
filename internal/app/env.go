package app

import (
    "bufio"
    "errors"
    "os"
    "strings"
)

// LoadEnvFiles loads dotenv files of KEY=VALUE lines into the process
// environment, typically to provide LAUDO_AI_KEY without a shell export.
// Variables already set to a non-empty value in the process environment are
// never replaced. Among the files, later ones override earlier ones and
// missing files are skipped.
func LoadEnvFiles(paths ...string) error {
    preset := map[string]bool{}
    for _, kv := range os.Environ() {
        if k, v, ok := strings.Cut(kv, "="); ok && v != "" {
            preset[k] = true
        }
    }
    for _, p := range paths {
        if strings.TrimSpace(p) == "" {
            continue
        }
        err := loadEnvFile(p, preset)
        if errors.Is(err, os.ErrNotExist) {
            continue
        }
        if err != nil {
            return err
        }
    }
    return nil
}

func loadEnvFile(path string, preset map[string]bool) error {
    f, err := os.Open(path)
    if err != nil {
        return err
    }
    defer f.Close()

    sc := bufio.NewScanner(f)
    for sc.Scan() {
        key, val, ok := parseEnvLine(sc.Text())
        if !ok || preset[key] {
            continue
        }
        if err := os.Setenv(key, val); err != nil {
            return err
        }
    }
    return sc.Err()
}

// parseEnvLine accepts "KEY=VALUE" and "export KEY=VALUE". Values may be
// wrapped in single or double quotes; nothing is expanded.
func parseEnvLine(line string) (string, string, bool) {
    line = strings.TrimSpace(line)
    if line == "" || strings.HasPrefix(line, "#") {
        return "", "", false
    }
    line = strings.TrimPrefix(line, "export ")
    key, val, found := strings.Cut(line, "=")
    key = strings.TrimSpace(key)
    if !found || key == "" || strings.ContainsAny(key, " \t") {
        return "", "", false
    }
    val = strings.TrimSpace(val)
    if n := len(val); n >= 2 && (val[0] == '"' || val[0] == '\'') && val[n-1] == val[0] {
        val = val[1 : n-1]
    }
    return key, val, true
}
