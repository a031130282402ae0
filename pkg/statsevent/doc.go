/*
Package statsevent encodes statistics events into the compact binary
format read by the stats collection daemon.

# Overview

An event ("atom") is a fixed-schema record identified by an integer atom
id. A Builder writes the atom's fields in schema order into a pooled,
fixed-capacity Buffer; Build seals the payload into an immutable Event
that the caller hands to a transport and then releases.

The encoder is designed for hot paths:
  - Buffers are recycled through a Pool instead of allocated per event
  - Writes never panic and never return errors mid-chain
  - Problems are collected in an ErrorMask embedded in the payload

# Basic Usage

	enc := statsevent.NewEncoder()

	ev, err := enc.NewBuilder().
	    SetAtomID(105).
	    WriteBool(false).
	    WriteString("x").
	    Build()
	if err != nil {
	    return err // only ErrAlreadyBuilt
	}
	defer ev.Release()

	send(ev.AtomID(), ev.Bytes())

# Wire Format

All integers are little-endian. Every payload starts with a 16 byte header:

	[0]      tag: OBJECT type id (low nibble), annotation count (high nibble)
	[1]      number of user fields, or 3 if an errors field follows
	[2]      tag: LONG
	[3..10]  timestamp in nanoseconds
	[11]     tag: INT
	[12..15] atom id
	[16..]   fields: tag byte, value bytes, then any annotations

A tag byte packs the TypeID in its low 4 bits and the number of
annotations on the field in its high 4 bits.

# Annotations

Annotations attach to the most recently written field and must be added
before the next field:

	b.WriteInt32(uid).AddBoolAnnotation(annotationIsUID, true)

Each annotation is written as [id][type tag][value] and the field's tag
byte is patched with the new count. At most MaxAnnotationCount
annotations fit on one field.

# Errors

Limit violations set bits in the builder's ErrorMask rather than failing
the call. Build adds checks for a missing timestamp or atom id, buffer
overflow and too many fields. If any bit is set the payload is cut back
to the header followed by a single TypeErrors field holding the mask, and
the count byte is set to 3.
*/
package statsevent
