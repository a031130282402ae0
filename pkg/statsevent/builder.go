package statsevent

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// KeyValuePairs holds the four typed maps written by WriteKeyValuePairs.
// Each map is emitted as its own group in ascending key order: ints,
// then longs, then strings, then floats.
type KeyValuePairs struct {
	Ints    map[int32]int32
	Longs   map[int32]int64
	Strings map[int32]string
	Floats  map[int32]float32
}

// Len returns the combined number of entries.
func (kv KeyValuePairs) Len() int {
	return len(kv.Ints) + len(kv.Longs) + len(kv.Strings) + len(kv.Floats)
}

// Builder encodes one event. Fields are written in schema order; each
// annotation attaches to the field written just before it. Problems are
// recorded in an error mask that Build embeds in the payload, so a chain
// of calls always completes.
//
// A Builder is single-use and not safe for concurrent use.
type Builder struct {
	buf  *Buffer
	pool *Pool

	atomID      int32
	timestampNs int64

	pos             int
	posLastField    int
	lastType        TypeID
	annotationCount uint8
	numElements     int
	errorMask       ErrorMask
	built           bool
}

func newBuilder(pool *Pool, timestampNs int64) *Builder {
	b := &Builder{
		buf:         pool.Acquire(),
		pool:        pool,
		timestampNs: timestampNs,
	}
	b.writeTypeID(TypeObject)
	b.pos = HeaderSize
	b.posLastField = 0
	b.lastType = 0
	return b
}

// SetAtomID sets the atom id. Zero means unset.
func (b *Builder) SetAtomID(atomID int32) *Builder {
	if !b.built {
		b.atomID = atomID
	}
	return b
}

// SetTimestampNs overrides the construction-time timestamp. Zero means
// unset.
func (b *Builder) SetTimestampNs(ns int64) *Builder {
	if !b.built {
		b.timestampNs = ns
	}
	return b
}

// WriteBool writes a boolean field.
func (b *Builder) WriteBool(v bool) *Builder {
	if b.built {
		return b
	}
	b.writeTypeID(TypeBool)
	b.pos += b.buf.PutBool(b.pos, v)
	b.numElements++
	return b
}

// WriteInt32 writes a 32-bit integer field.
func (b *Builder) WriteInt32(v int32) *Builder {
	if b.built {
		return b
	}
	b.writeTypeID(TypeInt32)
	b.pos += b.buf.PutInt32(b.pos, v)
	b.numElements++
	return b
}

// WriteInt64 writes a 64-bit integer field.
func (b *Builder) WriteInt64(v int64) *Builder {
	if b.built {
		return b
	}
	b.writeTypeID(TypeInt64)
	b.pos += b.buf.PutInt64(b.pos, v)
	b.numElements++
	return b
}

// WriteFloat32 writes a 32-bit float field.
func (b *Builder) WriteFloat32(v float32) *Builder {
	if b.built {
		return b
	}
	b.writeTypeID(TypeFloat32)
	b.pos += b.buf.PutFloat32(b.pos, v)
	b.numElements++
	return b
}

// WriteString writes a string field as its UTF-8 byte length followed
// by the bytes. Invalid UTF-8 sequences are replaced with U+FFFD.
func (b *Builder) WriteString(v string) *Builder {
	if b.built {
		return b
	}
	b.writeLengthPrefixed(TypeString, []byte(validUTF8(v)))
	return b
}

// WriteByteArray writes an opaque byte field. A nil slice encodes as
// zero length.
func (b *Builder) WriteByteArray(v []byte) *Builder {
	if b.built {
		return b
	}
	b.writeLengthPrefixed(TypeByteArray, v)
	return b
}

func (b *Builder) writeLengthPrefixed(typeID TypeID, v []byte) {
	b.writeTypeID(typeID)
	b.pos += b.buf.PutInt32(b.pos, int32(len(v)))
	b.pos += b.buf.PutBytes(b.pos, v)
	b.numElements++
}

// WriteAttributionChain writes a chain of (uid, tag) nodes. uids and
// tags must be the same length and hold at most MaxAttributionNodes
// entries; otherwise nothing is written and an error flag is set.
func (b *Builder) WriteAttributionChain(uids []int32, tags []string) *Builder {
	if b.built {
		return b
	}
	switch {
	case len(uids) != len(tags):
		b.errorMask |= ErrorAttributionUIDsTagsSizesNotEqual
		return b
	case len(uids) > MaxAttributionNodes:
		b.errorMask |= ErrorAttributionChainTooLong
		return b
	}

	b.writeTypeID(TypeAttributionChain)
	b.pos += b.buf.PutByte(b.pos, byte(len(uids)))
	for i, uid := range uids {
		b.pos += b.buf.PutInt32(b.pos, uid)
		b.putString(tags[i])
	}
	b.numElements++
	return b
}

// WriteKeyValuePairs writes the four typed maps as one field. At most
// MaxKeyValuePairs entries are accepted across all maps.
func (b *Builder) WriteKeyValuePairs(kv KeyValuePairs) *Builder {
	if b.built {
		return b
	}
	total := kv.Len()
	if total > MaxKeyValuePairs {
		b.errorMask |= ErrorTooManyKeyValuePairs
		return b
	}

	fieldPos := b.pos
	b.writeTypeID(TypeKeyValuePairs)
	b.pos += b.buf.PutByte(b.pos, byte(total))

	for _, key := range slices.Sorted(maps.Keys(kv.Ints)) {
		b.pos += b.buf.PutInt32(b.pos, key)
		b.writeTypeID(TypeInt32)
		b.pos += b.buf.PutInt32(b.pos, kv.Ints[key])
	}
	for _, key := range slices.Sorted(maps.Keys(kv.Longs)) {
		b.pos += b.buf.PutInt32(b.pos, key)
		b.writeTypeID(TypeInt64)
		b.pos += b.buf.PutInt64(b.pos, kv.Longs[key])
	}
	for _, key := range slices.Sorted(maps.Keys(kv.Strings)) {
		b.pos += b.buf.PutInt32(b.pos, key)
		b.writeTypeID(TypeString)
		b.putString(kv.Strings[key])
	}
	for _, key := range slices.Sorted(maps.Keys(kv.Floats)) {
		b.pos += b.buf.PutInt32(b.pos, key)
		b.writeTypeID(TypeFloat32)
		b.pos += b.buf.PutFloat32(b.pos, kv.Floats[key])
	}

	// Entry tags moved the annotation target; point it back at the
	// pairs field itself.
	b.posLastField = fieldPos
	b.lastType = TypeKeyValuePairs
	b.annotationCount = 0
	b.numElements++
	return b
}

// AddBoolAnnotation attaches a boolean annotation to the last field.
func (b *Builder) AddBoolAnnotation(annotationID uint8, v bool) *Builder {
	if b.built || !b.checkAnnotation(annotationID) {
		return b
	}
	b.pos += b.buf.PutByte(b.pos, annotationID)
	b.pos += b.buf.PutByte(b.pos, byte(TypeBool))
	b.pos += b.buf.PutBool(b.pos, v)
	b.annotationCount++
	b.patchLastFieldTag()
	return b
}

// AddInt32Annotation attaches an integer annotation to the last field.
func (b *Builder) AddInt32Annotation(annotationID uint8, v int32) *Builder {
	if b.built || !b.checkAnnotation(annotationID) {
		return b
	}
	b.pos += b.buf.PutByte(b.pos, annotationID)
	b.pos += b.buf.PutByte(b.pos, byte(TypeInt32))
	b.pos += b.buf.PutInt32(b.pos, v)
	b.annotationCount++
	b.patchLastFieldTag()
	return b
}

func (b *Builder) checkAnnotation(annotationID uint8) bool {
	switch {
	case b.posLastField == 0:
		b.errorMask |= ErrorAnnotationDoesNotFollowField
	case annotationID == 0:
		b.errorMask |= ErrorInvalidAnnotationID
	case annotationID > MaxAnnotationID:
		b.errorMask |= ErrorAnnotationIDTooLarge
	case b.annotationCount >= MaxAnnotationCount:
		b.errorMask |= ErrorTooManyAnnotations
	default:
		return true
	}
	return false
}

// ErrorMask returns the error flags accumulated so far. Flags detected
// only at Build time (timestamp, atom id, overflow, field count) are not
// included until then.
func (b *Builder) ErrorMask() ErrorMask {
	return b.errorMask
}

// NumElements returns the number of top-level fields written.
func (b *Builder) NumElements() int {
	return b.numElements
}

// Build finalizes the payload and returns the event. The builder must
// not be used afterwards; a second call returns ErrAlreadyBuilt.
func (b *Builder) Build() (*Event, error) {
	if b.built {
		return nil, ErrAlreadyBuilt
	}

	if b.timestampNs == 0 {
		b.errorMask |= ErrorNoTimestamp
	}
	if b.atomID == 0 {
		b.errorMask |= ErrorNoAtomID
	}
	if b.buf.HasOverflowed() {
		b.errorMask |= ErrorOverflow
	}
	if b.numElements > MaxNumElements {
		b.errorMask |= ErrorTooManyFields
	}

	size := b.pos
	numElements := b.numElements

	b.pos = posTimestampNs
	b.writeTypeID(TypeInt64)
	b.pos += b.buf.PutInt64(b.pos, b.timestampNs)
	b.writeTypeID(TypeInt32)
	b.pos += b.buf.PutInt32(b.pos, b.atomID)

	if b.errorMask == 0 {
		b.buf.PutByte(posNumElements, byte(numElements))
	} else {
		// The error record replaces the user fields: the payload is cut
		// back to the header plus one errors field.
		b.pos += b.buf.PutByte(b.pos, byte(TypeErrors))
		b.pos += b.buf.PutInt32(b.pos, int32(b.errorMask))
		b.buf.PutByte(posNumElements, errorRecordNumElements)
		size = b.pos
	}

	b.built = true
	ev := &Event{
		atomID:    b.atomID,
		buf:       b.buf,
		pool:      b.pool,
		numBytes:  size,
		errorMask: b.errorMask,
	}
	b.buf = nil
	return ev, nil
}

// writeTypeID writes a fresh tag byte for a field and makes it the
// target of subsequent annotations.
func (b *Builder) writeTypeID(typeID TypeID) {
	b.posLastField = b.pos
	b.lastType = typeID
	b.annotationCount = 0
	b.pos += b.buf.PutByte(b.pos, byte(typeID)&0x0F)
}

// patchLastFieldTag rewrites the last field's tag byte in place with the
// current annotation count in its high nibble.
func (b *Builder) patchLastFieldTag() {
	b.buf.PutByte(b.posLastField, b.annotationCount<<4|byte(b.lastType)&0x0F)
}

func (b *Builder) putString(s string) {
	s = validUTF8(s)
	b.pos += b.buf.PutInt32(b.pos, int32(len(s)))
	b.pos += b.buf.PutBytes(b.pos, []byte(s))
}

func validUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "\uFFFD")
}
