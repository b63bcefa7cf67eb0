package api

import (
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Record is a raw API object as decoded from JSON. The server returns
// PascalCase or camelCase keys interchangeably depending on endpoint, so raw
// records are resolved field by field instead of unmarshaled into rigid
// structs.
type Record map[string]any

// Resolve returns the first defined value for field among its camelCase key,
// its PascalCase key, and the given synonyms (each tried in both casings).
// Only nil and missing keys fall through: 0, false and "" are present values.
// The record is never mutated and resolution never panics.
func Resolve(rec Record, field string, synonyms ...string) (any, bool) {
	if rec == nil {
		return nil, false
	}
	for _, key := range candidateKeys(field, synonyms) {
		if v, ok := rec[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func candidateKeys(field string, synonyms []string) []string {
	keys := make([]string, 0, 2+2*len(synonyms))
	keys = append(keys, lowerFirst(field), upperFirst(field))
	for _, syn := range synonyms {
		keys = append(keys, lowerFirst(syn), upperFirst(syn))
	}
	return keys
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// ResolveString resolves field as a display string. Numeric wire values are
// formatted rather than dropped because identifier fields (ISBN, TMDB id)
// occasionally arrive as JSON numbers.
func ResolveString(rec Record, field string, synonyms ...string) string {
	v, ok := Resolve(rec, field, synonyms...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// ResolveBool resolves field as a bool, treating false as a present value.
func ResolveBool(rec Record, field string, synonyms ...string) bool {
	v, ok := Resolve(rec, field, synonyms...)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ResolveInt resolves field as an int, accepting JSON numbers and numeric
// strings. Zero is a present value.
func ResolveInt(rec Record, field string, synonyms ...string) int {
	v, ok := Resolve(rec, field, synonyms...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0
		}
		return i
	default:
		return 0
	}
}

// ResolveFloat resolves field as a float64.
func ResolveFloat(rec Record, field string, synonyms ...string) float64 {
	v, ok := Resolve(rec, field, synonyms...)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// timeLayouts are the wire formats the server has been observed to emit.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ResolveTime resolves field as a timestamp. Unparseable values resolve to
// nil rather than failing the whole record.
func ResolveTime(rec Record, field string, synonyms ...string) *time.Time {
	s := ResolveString(rec, field, synonyms...)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// ResolveNames resolves an array field whose elements may be plain strings or
// objects carrying a name/Name key, normalizing every element to a display
// string. Malformed elements are dropped individually instead of failing the
// array.
func ResolveNames(rec Record, field string, synonyms ...string) []string {
	v, ok := Resolve(rec, field, synonyms...)
	if !ok {
		return nil
	}
	var arr []any
	switch a := v.(type) {
	case []any:
		arr = a
	case []string:
		// Canonical records built in-process carry typed slices.
		arr = make([]any, len(a))
		for i, s := range a {
			arr[i] = s
		}
	default:
		return nil
	}
	names := make([]string, 0, len(arr))
	for _, el := range arr {
		switch e := el.(type) {
		case string:
			if e != "" {
				names = append(names, e)
			}
		case map[string]any:
			if name := ResolveString(Record(e), "name"); name != "" {
				names = append(names, name)
			}
		}
	}
	if len(names) == 0 {
		return nil
	}
	return names
}

// ResolveRecords resolves an array field to its object elements, preserving
// the original shape for consumers that need more than a display string.
// Non-object elements are skipped.
func ResolveRecords(rec Record, field string, synonyms ...string) []Record {
	v, ok := Resolve(rec, field, synonyms...)
	if !ok {
		return nil
	}
	switch a := v.(type) {
	case []any:
		records := make([]Record, 0, len(a))
		for _, el := range a {
			if m, ok := el.(map[string]any); ok {
				records = append(records, Record(m))
			}
		}
		if len(records) == 0 {
			return nil
		}
		return records
	case []Record:
		return a
	default:
		return nil
	}
}
