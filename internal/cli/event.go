package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/statsevent/pkg/statsevent"
	"github.com/randalmurphal/statsevent/pkg/statsevent/atoms"
)

// eventOptions describe the event to encode, shared by emit and dump.
type eventOptions struct {
	atomID      int32
	fields      []string
	timestampNs int64
}

func (o *eventOptions) addFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Int32Var(&o.atomID, "atom", 0, "Atom id for an ad-hoc event built from --field")
	flags.StringArrayVarP(&o.fields, "field", "f", nil, "Field as type=value, repeatable (types: bool, int, long, float, string, bytes, attribution_chain, key_value_pairs)")
	flags.Int64Var(&o.timestampNs, "timestamp-ns", 0, "Override the event timestamp")
}

// resolve returns the schema and values for the command's input. An
// event is either ad-hoc (--atom with --field) or named by its first
// positional argument and filled from the remaining ones.
func (o *eventOptions) resolve(catalog *atoms.Catalog, args []string) (atoms.Schema, []string, error) {
	if o.atomID != 0 {
		if len(args) > 0 {
			return atoms.Schema{}, nil, fmt.Errorf("positional arguments are not allowed with --atom")
		}
		schema := atoms.Schema{ID: o.atomID, Name: fmt.Sprintf("atom_%d", o.atomID)}
		values := make([]string, 0, len(o.fields))
		for i, f := range o.fields {
			typ, value, ok := strings.Cut(f, "=")
			if !ok {
				return atoms.Schema{}, nil, fmt.Errorf("--field %q: expected type=value", f)
			}
			schema.Fields = append(schema.Fields, atoms.Field{
				Name: fmt.Sprintf("field_%d", i+1),
				Type: atoms.FieldType(typ),
			})
			values = append(values, value)
		}
		if err := schema.Validate(); err != nil {
			return atoms.Schema{}, nil, err
		}
		return schema, values, nil
	}

	if len(o.fields) > 0 {
		return atoms.Schema{}, nil, fmt.Errorf("--field requires --atom")
	}
	if len(args) == 0 {
		return atoms.Schema{}, nil, fmt.Errorf("an atom name or id, or --atom, is required")
	}
	schema, err := catalog.Resolve(args[0])
	if err != nil {
		return atoms.Schema{}, nil, err
	}
	return schema, args[1:], nil
}

// build encodes the event with b.
func (o *eventOptions) build(b *statsevent.Builder, schema atoms.Schema, values []string) (*statsevent.Event, error) {
	if o.timestampNs != 0 {
		b.SetTimestampNs(o.timestampNs)
	}
	if err := atoms.Encode(b, schema, values); err != nil {
		// Build hands the unused buffer back to the pool.
		if ev, buildErr := b.Build(); buildErr == nil {
			ev.Release()
		}
		return nil, err
	}
	return b.Build()
}
