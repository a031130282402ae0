// Package atoms describes atom schemas and encodes events from them.
//
// A catalog is loaded from YAML:
//
//	atoms:
//	  - id: 105
//	    name: screen_state_changed
//	    fields:
//	      - name: state
//	        type: int
//	      - name: uid
//	        type: int
//	        annotations:
//	          - id: 1
//	            type: bool
//	            value: "true"
//
// Encode turns a schema plus string values, as typed on a command line,
// into builder calls:
//
//	schema, _ := catalog.Lookup("screen_state_changed")
//	b := enc.NewBuilder()
//	if err := atoms.Encode(b, schema, []string{"2", "10001"}); err != nil {
//	    return err
//	}
//	ev, err := b.Build()
//
// Values are parsed before anything is written, so a bad value leaves the
// builder untouched.
//
// Field types: bool, int, long, float, string, bytes (hex) and
// attribution_chain ("uid:tag" pairs separated by commas).
package atoms
