package record

import (
    "encoding/json"
    "fmt"
    "strings"
    "time"
)

// Date is a calendar date without a time-of-day component. It serializes as
// ISO "YYYY-MM-DD" and renders in the Brazilian "DD/MM/YYYY" form.
type Date struct {
    time.Time
}

const isoDate = "2006-01-02"
const brDate = "02/01/2006"

// NewDate builds a Date at midnight UTC.
func NewDate(year int, month time.Month, day int) Date {
    return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) Date {
    y, m, d := t.Date()
    return NewDate(y, m, d)
}

// Today is the current local calendar day.
func Today() Date { return DateOf(time.Now()) }

// ParseBR parses "DD/MM/YYYY". The boolean is false for malformed input;
// callers decide how to surface it instead of substituting a default.
func ParseBR(s string) (Date, bool) {
    t, err := time.Parse(brDate, strings.TrimSpace(s))
    if err != nil {
        return Date{}, false
    }
    return Date{t}, true
}

// BR formats the date as DD/MM/YYYY, or "" for the zero date.
func (d Date) BR() string {
    if d.IsZero() {
        return ""
    }
    return d.Format(brDate)
}

// ISO formats the date as YYYY-MM-DD, or "" for the zero date.
func (d Date) ISO() string {
    if d.IsZero() {
        return ""
    }
    return d.Format(isoDate)
}

var monthsPT = [...]string{"janeiro", "fevereiro", "março", "abril", "maio", "junho", "julho", "agosto", "setembro", "outubro", "novembro", "dezembro"}

// LongPT renders the date as "15 de outubro de 2026".
func (d Date) LongPT() string {
    if d.IsZero() {
        return ""
    }
    return fmt.Sprintf("%02d de %s de %d", d.Day(), monthsPT[d.Month()-1], d.Year())
}

func (d Date) MarshalJSON() ([]byte, error) {
    if d.IsZero() {
        return []byte("null"), nil
    }
    return json.Marshal(d.Format(isoDate))
}

func (d *Date) UnmarshalJSON(b []byte) error {
    s := strings.TrimSpace(string(b))
    if s == "null" || s == `""` {
        d.Time = time.Time{}
        return nil
    }
    var raw string
    if err := json.Unmarshal(b, &raw); err != nil {
        return fmt.Errorf("date: %w", err)
    }
    // Accept full timestamps written by older clients.
    if t, err := time.Parse(time.RFC3339, raw); err == nil {
        *d = DateOf(t)
        return nil
    }
    t, err := time.Parse(isoDate, raw)
    if err != nil {
        if bd, ok := ParseBR(raw); ok {
            *d = bd
            return nil
        }
        return fmt.Errorf("date %q: %w", raw, err)
    }
    d.Time = t
    return nil
}
