package atoms

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
)

// writeFunc applies one parsed value to a builder.
type writeFunc func(b *statsevent.Builder)

// Encode sets the schema's atom id on b and writes values as its fields,
// followed by each field's annotations. All values are parsed first;
// on error nothing is written.
func Encode(b *statsevent.Builder, schema Schema, values []string) error {
	if len(values) != len(schema.Fields) {
		return fmt.Errorf("%w: atom %s has %d fields, got %d values",
			ErrValueCount, schema.Name, len(schema.Fields), len(values))
	}

	writes := make([]writeFunc, 0, len(values))
	for i, f := range schema.Fields {
		w, err := parseValue(f.Type, values[i])
		if err != nil {
			return &FieldError{Field: f.Name, Value: values[i], Err: err}
		}
		writes = append(writes, w)
		for _, a := range f.Annotations {
			aw, err := parseAnnotation(a)
			if err != nil {
				return &FieldError{Field: f.Name, Value: a.Value, Err: err}
			}
			writes = append(writes, aw)
		}
	}

	b.SetAtomID(schema.ID)
	for _, w := range writes {
		w(b)
	}
	return nil
}

func parseValue(t FieldType, raw string) (writeFunc, error) {
	switch t {
	case FieldBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteBool(v) }, nil

	case FieldInt:
		v, err := strconv.ParseInt(raw, 0, 32)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteInt32(int32(v)) }, nil

	case FieldLong:
		v, err := strconv.ParseInt(raw, 0, 64)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteInt64(v) }, nil

	case FieldFloat:
		v, err := strconv.ParseFloat(raw, 32)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteFloat32(float32(v)) }, nil

	case FieldString:
		return func(b *statsevent.Builder) { b.WriteString(raw) }, nil

	case FieldBytes:
		v, err := hex.DecodeString(raw)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteByteArray(v) }, nil

	case FieldAttributionChain:
		uids, tags, err := ParseAttributionChain(raw)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteAttributionChain(uids, tags) }, nil

	case FieldKeyValuePairs:
		kv, err := ParseKeyValuePairs(raw)
		if err != nil {
			return nil, err
		}
		return func(b *statsevent.Builder) { b.WriteKeyValuePairs(kv) }, nil

	default:
		return nil, fmt.Errorf("unknown field type %q", t)
	}
}

func parseAnnotation(a Annotation) (writeFunc, error) {
	switch a.Type {
	case "bool":
		v, err := strconv.ParseBool(a.Value)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", a.ID, err)
		}
		return func(b *statsevent.Builder) { b.AddBoolAnnotation(a.ID, v) }, nil
	case "int":
		v, err := strconv.ParseInt(a.Value, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("annotation %d: %w", a.ID, err)
		}
		return func(b *statsevent.Builder) { b.AddInt32Annotation(a.ID, int32(v)) }, nil
	default:
		return nil, fmt.Errorf("annotation %d: unknown type %q", a.ID, a.Type)
	}
}

// ParseAttributionChain parses "uid:tag" nodes separated by commas. The
// tag may be empty ("1000:") and may itself contain colons. An empty
// string is an empty chain.
func ParseAttributionChain(raw string) ([]int32, []string, error) {
	if raw == "" {
		return []int32{}, []string{}, nil
	}
	nodes := strings.Split(raw, ",")
	uids := make([]int32, 0, len(nodes))
	tags := make([]string, 0, len(nodes))
	for _, node := range nodes {
		uidStr, tag, found := strings.Cut(node, ":")
		if !found {
			return nil, nil, fmt.Errorf("attribution node %q: expected uid:tag", node)
		}
		uid, err := strconv.ParseInt(strings.TrimSpace(uidStr), 10, 32)
		if err != nil {
			return nil, nil, fmt.Errorf("attribution node %q: %w", node, err)
		}
		uids = append(uids, int32(uid))
		tags = append(tags, tag)
	}
	return uids, tags, nil
}

// ParseKeyValuePairs parses "key:type=value" entries separated by commas,
// where type is int, long, string or float. String values run to the
// next comma. A key may appear once per type. An empty string is an
// empty set of pairs.
func ParseKeyValuePairs(raw string) (statsevent.KeyValuePairs, error) {
	var kv statsevent.KeyValuePairs
	if raw == "" {
		return kv, nil
	}
	for _, entry := range strings.Split(raw, ",") {
		keyStr, rest, found := strings.Cut(entry, ":")
		if !found {
			return kv, fmt.Errorf("pair %q: expected key:type=value", entry)
		}
		typ, value, found := strings.Cut(rest, "=")
		if !found {
			return kv, fmt.Errorf("pair %q: expected key:type=value", entry)
		}
		k, err := strconv.ParseInt(strings.TrimSpace(keyStr), 10, 32)
		if err != nil {
			return kv, fmt.Errorf("pair %q: key: %w", entry, err)
		}
		key := int32(k)
		if err := addPair(&kv, key, typ, value); err != nil {
			return kv, fmt.Errorf("pair %q: %w", entry, err)
		}
	}
	return kv, nil
}

func addPair(kv *statsevent.KeyValuePairs, key int32, typ, value string) error {
	switch typ {
	case "int":
		v, err := strconv.ParseInt(value, 0, 32)
		if err != nil {
			return err
		}
		if kv.Ints == nil {
			kv.Ints = map[int32]int32{}
		}
		if _, dup := kv.Ints[key]; dup {
			return fmt.Errorf("duplicate int key %d", key)
		}
		kv.Ints[key] = int32(v)
	case "long":
		v, err := strconv.ParseInt(value, 0, 64)
		if err != nil {
			return err
		}
		if kv.Longs == nil {
			kv.Longs = map[int32]int64{}
		}
		if _, dup := kv.Longs[key]; dup {
			return fmt.Errorf("duplicate long key %d", key)
		}
		kv.Longs[key] = v
	case "string":
		if kv.Strings == nil {
			kv.Strings = map[int32]string{}
		}
		if _, dup := kv.Strings[key]; dup {
			return fmt.Errorf("duplicate string key %d", key)
		}
		kv.Strings[key] = value
	case "float":
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return err
		}
		if kv.Floats == nil {
			kv.Floats = map[int32]float32{}
		}
		if _, dup := kv.Floats[key]; dup {
			return fmt.Errorf("duplicate float key %d", key)
		}
		kv.Floats[key] = float32(v)
	default:
		return fmt.Errorf("unknown value type %q", typ)
	}
	return nil
}
