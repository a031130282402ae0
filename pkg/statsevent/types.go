package statsevent

import (
	"fmt"
	"strings"
)

// TypeID identifies the encoding of a field. Only the low 4 bits are
// used on the wire; the high 4 bits of a tag byte carry the field's
// annotation count.
type TypeID uint8

// Wire type ids. These values are protocol constants shared with the
// collector and must not change.
const (
	TypeInt32            TypeID = 0x00
	TypeInt64            TypeID = 0x01
	TypeString           TypeID = 0x02
	TypeList             TypeID = 0x03
	TypeFloat32          TypeID = 0x04
	TypeBool             TypeID = 0x05
	TypeByteArray        TypeID = 0x06
	TypeObject           TypeID = 0x07
	TypeKeyValuePairs    TypeID = 0x08
	TypeAttributionChain TypeID = 0x09
	TypeErrors           TypeID = 0x0F
)

// String returns the type name.
func (t TypeID) String() string {
	switch t {
	case TypeInt32:
		return "int"
	case TypeInt64:
		return "long"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeFloat32:
		return "float"
	case TypeBool:
		return "boolean"
	case TypeByteArray:
		return "byte_array"
	case TypeObject:
		return "object"
	case TypeKeyValuePairs:
		return "key_value_pairs"
	case TypeAttributionChain:
		return "attribution_chain"
	case TypeErrors:
		return "errors"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ErrorMask is the set of encoding problems observed while building an
// event. Bits are independent and accumulate; the mask is carried in
// the payload instead of being returned as a Go error.
type ErrorMask uint32

// Error flags.
const (
	ErrorNoTimestamp                      ErrorMask = 0x1
	ErrorNoAtomID                         ErrorMask = 0x2
	ErrorOverflow                         ErrorMask = 0x4
	ErrorAttributionChainTooLong          ErrorMask = 0x8
	ErrorTooManyKeyValuePairs             ErrorMask = 0x10
	ErrorAnnotationDoesNotFollowField     ErrorMask = 0x20
	ErrorInvalidAnnotationID              ErrorMask = 0x40
	ErrorAnnotationIDTooLarge             ErrorMask = 0x80
	ErrorTooManyAnnotations               ErrorMask = 0x100
	ErrorTooManyFields                    ErrorMask = 0x200
	ErrorAttributionUIDsTagsSizesNotEqual ErrorMask = 0x1000
)

var errorMaskNames = []struct {
	flag ErrorMask
	name string
}{
	{ErrorNoTimestamp, "no_timestamp"},
	{ErrorNoAtomID, "no_atom_id"},
	{ErrorOverflow, "overflow"},
	{ErrorAttributionChainTooLong, "attribution_chain_too_long"},
	{ErrorTooManyKeyValuePairs, "too_many_key_value_pairs"},
	{ErrorAnnotationDoesNotFollowField, "annotation_does_not_follow_field"},
	{ErrorInvalidAnnotationID, "invalid_annotation_id"},
	{ErrorAnnotationIDTooLarge, "annotation_id_too_large"},
	{ErrorTooManyAnnotations, "too_many_annotations"},
	{ErrorTooManyFields, "too_many_fields"},
	{ErrorAttributionUIDsTagsSizesNotEqual, "attribution_uids_tags_sizes_not_equal"},
}

// Has reports whether every bit of flag is set in m.
func (m ErrorMask) Has(flag ErrorMask) bool {
	return flag != 0 && m&flag == flag
}

// String lists the names of the set flags joined by "|", or "none".
func (m ErrorMask) String() string {
	if m == 0 {
		return "none"
	}
	var names []string
	rest := m
	for _, n := range errorMaskNames {
		if m&n.flag != 0 {
			names = append(names, n.name)
			rest &^= n.flag
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(names, "|")
}

// Size limits.
const (
	// MaxAnnotationCount is the most annotations one field can carry;
	// the count has to fit the high nibble of the field's tag byte.
	MaxAnnotationCount = 15

	// MaxAnnotationID is the largest annotation id accepted.
	MaxAnnotationID = 127

	MaxAttributionNodes = 127
	MaxNumElements      = 127
	MaxKeyValuePairs    = 127
)

// LoggerEntryMaxPayload is the largest datagram the collector accepts.
const LoggerEntryMaxPayload = 4068

// FrameHeaderSize is the number of bytes the transport prepends to a
// payload (the little-endian event tag).
const FrameHeaderSize = 4

// MaxPayloadSize is the capacity of a scratch buffer.
const MaxPayloadSize = LoggerEntryMaxPayload - FrameHeaderSize

// Fixed header layout.
const (
	posNumElements = 1
	posTimestampNs = posNumElements + 1
	posAtomID      = posTimestampNs + 1 + 8

	// HeaderSize is the size of the fixed header every payload starts
	// with: object tag, element count, timestamp field and atom id field.
	HeaderSize = posAtomID + 1 + 4

	// errorRecordNumElements is written to the count byte when an error
	// field was appended: timestamp, atom id and errors.
	errorRecordNumElements = 3
)
