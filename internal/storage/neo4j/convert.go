package neo4j

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub002/internal/domain"
)

// Timestamps are stored as epoch milliseconds so range filters stay numeric.

func millis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

// zeroableMillis maps the zero time to null
func zeroableMillis(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return millis(t)
}

func ptrMillis(t *time.Time) any {
	if t == nil || t.IsZero() {
		return nil
	}
	return millis(*t)
}

func ptrFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func propString(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

func propInt(props map[string]any, key string) int {
	n, _ := props[key].(int64)
	return int(n)
}

func propFloat(props map[string]any, key string) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	}
	return 0
}

func propFloatPtr(props map[string]any, key string) *float64 {
	if _, ok := props[key]; !ok || props[key] == nil {
		return nil
	}
	f := propFloat(props, key)
	return &f
}

func propBool(props map[string]any, key string) bool {
	b, _ := props[key].(bool)
	return b
}

func propTime(props map[string]any, key string) time.Time {
	ms, ok := props[key].(int64)
	if !ok {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

func propTimePtr(props map[string]any, key string) *time.Time {
	t := propTime(props, key)
	if t.IsZero() {
		return nil
	}
	return &t
}

func propStrings(props map[string]any, key string) []string {
	raw, _ := props[key].([]any)
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// Maps are not valid property values, so metadata travels as JSON text.
func encodeMap(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}

func decodeMap(s string) map[string]string {
	if s == "" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}

func statusStrings(statuses []domain.InterviewStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %s: %w", kind, id, domain.ErrNotFound)
}
