package scratch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Field lookup errors.
var (
	ErrFieldUnknown = errors.New("field not yet known")
	ErrFieldAbsent  = errors.New("field absent from record")
	ErrNotAnObject  = errors.New("record is not a JSON object")
)

// FieldState tags what a document knows about a field.
type FieldState int

const (
	// FieldUnknown means the document has not been hydrated and was not seeded
	// with the field.
	FieldUnknown FieldState = iota
	// FieldAbsent means the document is hydrated and the remote record does
	// not carry the field.
	FieldAbsent
	// FieldKnown means the field has a value.
	FieldKnown
)

// String returns the state name.
func (s FieldState) String() string {
	switch s {
	case FieldUnknown:
		return "unknown"
	case FieldAbsent:
		return "absent"
	case FieldKnown:
		return "known"
	default:
		return fmt.Sprintf("FieldState(%d)", int(s))
	}
}

// Field is the result of looking up one key of a Record or Document.
type Field struct {
	name  string
	state FieldState
	raw   json.RawMessage
}

// Name returns the field name.
func (f Field) Name() string { return f.name }

// State returns the field state.
func (f Field) State() FieldState { return f.state }

// Known reports whether the field has a value.
func (f Field) Known() bool { return f.state == FieldKnown }

// Raw returns the raw JSON value, or nil when the field is not known.
func (f Field) Raw() json.RawMessage { return f.raw }

// Decode unmarshals the field value into v.
func (f Field) Decode(v interface{}) error {
	switch f.state {
	case FieldKnown:
		err := json.Unmarshal(f.raw, v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrUnexpectedFieldType, f.name, err)
		}

		return nil
	case FieldAbsent:
		return fmt.Errorf("%w: %s", ErrFieldAbsent, f.name)
	default:
		return fmt.Errorf("%w: %s", ErrFieldUnknown, f.name)
	}
}

// Record is a partial JSON object: the set of fields known about an entity.
// The zero value is an empty record. Records are immutable; methods that
// change content return a new Record.
type Record struct {
	fields map[string]json.RawMessage
}

// NewRecord builds a record from raw field values.
func NewRecord(fields map[string]json.RawMessage) Record {
	return Record{fields: maps.Clone(fields)}
}

// RecordFrom builds a record from any value whose JSON form is an object,
// such as map[string]interface{} or a tagged struct.
func RecordFrom(v interface{}) (Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Record{}, fmt.Errorf("encoding record: %w", err)
	}

	return ParseRecord(data)
}

// ParseRecord decodes a JSON object into a record.
func ParseRecord(data []byte) (Record, error) {
	var record Record

	err := json.Unmarshal(data, &record)
	if err != nil {
		return Record{}, err
	}

	return record, nil
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Has reports whether the record carries name.
func (r Record) Has(name string) bool {
	_, ok := r.fields[name]

	return ok
}

// Get returns the raw value for name.
func (r Record) Get(name string) (json.RawMessage, bool) {
	raw, ok := r.fields[name]

	return raw, ok
}

// Lookup returns name as a Field: known when present, absent otherwise.
func (r Record) Lookup(name string) Field {
	if raw, ok := r.fields[name]; ok {
		return Field{name: name, state: FieldKnown, raw: raw}
	}

	return Field{name: name, state: FieldAbsent}
}

// Keys returns the field names in sorted order.
func (r Record) Keys() []string {
	return slices.Sorted(maps.Keys(r.fields))
}

// Merge returns a record holding r's fields plus the fields of other that r
// does not carry. Fields already in r are never overwritten.
func (r Record) Merge(other Record) Record {
	merged := make(map[string]json.RawMessage, len(r.fields)+len(other.fields))
	maps.Copy(merged, other.fields)
	maps.Copy(merged, r.fields)

	return Record{fields: merged}
}

// MarshalJSON encodes the record as a JSON object.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.fields == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(r.fields)
}

// UnmarshalJSON decodes a JSON object. Any other JSON value is rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotAnObject
	}

	var fields map[string]json.RawMessage

	err := json.Unmarshal(trimmed, &fields)
	if err != nil {
		return fmt.Errorf("decoding record: %w", err)
	}

	r.fields = fields

	return nil
}

// MarshalYAML encodes the record through its decoded JSON form.
func (r Record) MarshalYAML() (interface{}, error) {
	decoded := make(map[string]interface{}, len(r.fields))

	for name, raw := range r.fields {
		var value interface{}

		err := json.Unmarshal(raw, &value)
		if err != nil {
			return nil, fmt.Errorf("decoding field %s: %w", name, err)
		}

		decoded[name] = value
	}

	return decoded, nil
}
