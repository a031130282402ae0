package atoms

import (
	"errors"
	"fmt"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
)

// FieldType is the declared type of a schema field.
type FieldType string

// Field types.
const (
	FieldBool             FieldType = "bool"
	FieldInt              FieldType = "int"
	FieldLong             FieldType = "long"
	FieldFloat            FieldType = "float"
	FieldString           FieldType = "string"
	FieldBytes            FieldType = "bytes"
	FieldAttributionChain FieldType = "attribution_chain"
	FieldKeyValuePairs    FieldType = "key_value_pairs"
)

// Valid reports whether t is a known field type.
func (t FieldType) Valid() bool {
	switch t {
	case FieldBool, FieldInt, FieldLong, FieldFloat, FieldString, FieldBytes,
		FieldAttributionChain, FieldKeyValuePairs:
		return true
	}
	return false
}

// Schema describes one atom.
type Schema struct {
	ID     int32   `yaml:"id"`
	Name   string  `yaml:"name"`
	Fields []Field `yaml:"fields"`
}

// Field is one positional field of a schema.
type Field struct {
	Name        string       `yaml:"name"`
	Type        FieldType    `yaml:"type"`
	Annotations []Annotation `yaml:"annotations,omitempty"`
}

// Annotation is a fixed annotation attached to every value of a field.
// Type is "bool" or "int".
type Annotation struct {
	ID    uint8  `yaml:"id"`
	Type  string `yaml:"type"`
	Value string `yaml:"value"`
}

// Sentinel errors.
var (
	// ErrUnknownAtom indicates a lookup for an atom not in the catalog.
	ErrUnknownAtom = errors.New("unknown atom")

	// ErrValueCount indicates the number of values does not match the schema.
	ErrValueCount = errors.New("value count does not match schema")

	// ErrInvalidSchema indicates a schema that cannot be encoded.
	ErrInvalidSchema = errors.New("invalid schema")
)

// FieldError reports a value that could not be parsed for its field.
type FieldError struct {
	// Field is the schema field name.
	Field string
	// Value is the raw input.
	Value string
	// Err is the underlying parse error.
	Err error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: invalid value %q: %v", e.Field, e.Value, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// Validate checks that the schema can be encoded without tripping the
// encoder's limits.
func (s Schema) Validate() error {
	if s.ID <= 0 {
		return fmt.Errorf("%w: atom %q: id must be positive, got %d", ErrInvalidSchema, s.Name, s.ID)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: atom %d: name is required", ErrInvalidSchema, s.ID)
	}
	if len(s.Fields) > statsevent.MaxNumElements {
		return fmt.Errorf("%w: atom %s: %d fields exceeds %d",
			ErrInvalidSchema, s.Name, len(s.Fields), statsevent.MaxNumElements)
	}
	for i, f := range s.Fields {
		if !f.Type.Valid() {
			return fmt.Errorf("%w: atom %s: field %d (%s): unknown type %q",
				ErrInvalidSchema, s.Name, i, f.Name, f.Type)
		}
		if len(f.Annotations) > statsevent.MaxAnnotationCount {
			return fmt.Errorf("%w: atom %s: field %s: too many annotations",
				ErrInvalidSchema, s.Name, f.Name)
		}
		for _, a := range f.Annotations {
			if a.ID == 0 || a.ID > statsevent.MaxAnnotationID {
				return fmt.Errorf("%w: atom %s: field %s: annotation id %d out of range",
					ErrInvalidSchema, s.Name, f.Name, a.ID)
			}
			if _, err := parseAnnotation(a); err != nil {
				return fmt.Errorf("%w: atom %s: field %s: %v", ErrInvalidSchema, s.Name, f.Name, err)
			}
		}
	}
	return nil
}
