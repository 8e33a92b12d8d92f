// Package jsonx decodifica campos que el backend no manda siempre con el
// mismo tipo. Un valor que no se puede leer queda en cero en vez de romper
// el documento entero.
package jsonx

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/spf13/cast"
)

var null = []byte("null")

// String acepta string, número o bool y devuelve su texto.
func String(raw json.RawMessage) string {
	v, ok := decode(raw)
	if !ok {
		return ""
	}
	switch x := v.(type) {
	case json.Number:
		return x.String()
	case map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

// Time acepta RFC3339 con o sin zona, "2006-01-02 15:04:05", fechas solas
// y epoch en segundos. Sin zona se asume UTC.
func Time(raw json.RawMessage) time.Time {
	v, ok := decode(raw)
	if !ok {
		return time.Time{}
	}
	switch x := v.(type) {
	case json.Number:
		sec, err := x.Int64()
		if err != nil {
			return time.Time{}
		}
		return time.Unix(sec, 0).UTC()
	case string:
		if x == "" {
			return time.Time{}
		}
	}
	t, err := cast.ToTimeInDefaultLocationE(v, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

func decode(raw json.RawMessage) (any, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, null) {
		return nil, false
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	return v, true
}

// Float acepta número o string numérico. ok es false si no hay valor legible.
func Float(raw json.RawMessage) (float64, bool) {
	v, ok := decode(raw)
	if !ok {
		return 0, false
	}
	if n, isNum := v.(json.Number); isNum {
		f, err := n.Float64()
		return f, err == nil
	}
	s, isStr := v.(string)
	if !isStr {
		return 0, false
	}
	f, err := cast.ToFloat64E(strings.TrimSpace(s))
	return f, err == nil
}

// Timestamp es un time.Time que se decodifica con Time. Se codifica igual
// que time.Time.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	t.Time = Time(data)
	return nil
}
