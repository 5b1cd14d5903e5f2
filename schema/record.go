package schema

import (
	"fmt"
	"strconv"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Record is the flat result of one analysis: string keys mapped to scalar values,
// kept in insertion order so serialized output is stable.
type Record struct {
	values *orderedmap.OrderedMap[string, any]
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	return &Record{values: orderedmap.New[string, any]()}
}

// Set stores a value, keeping the original position when the key already exists.
func (r *Record) Set(key string, value any) {
	r.values.Set(key, value)
}

// Get returns the value stored under key.
func (r *Record) Get(key string) (any, bool) {
	return r.values.Get(key)
}

// Len returns the number of keys.
func (r *Record) Len() int {
	return r.values.Len()
}

// Keys returns all keys in insertion order.
func (r *Record) Keys() []string {
	keys := make([]string, 0, r.values.Len())
	for pair := r.values.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every key/value pair in insertion order.
func (r *Record) Each(fn func(key string, value any)) {
	for pair := r.values.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// MarshalJSON encodes the record as a JSON object in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	return r.values.MarshalJSON()
}

// FormatValue renders a scalar for text and CSV output.
// Floats use the given precision, times use RFC3339 and nil becomes an empty string.
func FormatValue(v any, precision int) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', precision, 64)
	case time.Time:
		return val.Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}

// ValueType names the scalar kind of a value, used when persisting records.
func ValueType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float"
	default:
		return "string"
	}
}
