package arenajson

// Type is the discriminant of a Node. It is a small enumeration rather than
// a class hierarchy: every operation on a Node is a switch on Type.
type Type uint8

const (
	Null Type = iota
	True
	False
	IntNumber
	FloatNumber
	String
	Array
	Object
)

var typeNames = [...]string{
	Null:        "null",
	True:        "true",
	False:       "false",
	IntNumber:   "int",
	FloatNumber: "float",
	String:      "string",
	Array:       "array",
	Object:      "object",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "(invalid)"
}

// IsContainer reports whether t is Array or Object.
func (t Type) IsContainer() bool {
	return t == Array || t == Object
}

// noStrVal marks a Node that has no owned textual form: it is either a
// scalar/string that references the source buffer by Offset/Len, or a
// container, which never owns a strval.
const noStrVal = int32(-1)

// hashMask truncates the DJB2 running hash to the 28 bits the spec reserves
// for it on string-key nodes.
const hashMask = 0x0fffffff

// Node is the fixed-size record written into the arena. Its layout keeps all
// four counters as uint32 so the struct stays 24 bytes on a 64-bit build:
// a tagged pointer (as the reference C source uses) would be cheaper to read
// but would smuggle a live reference to builder-owned memory into a record
// that is otherwise a plain value type; an index into the parser's owned
// string slice keeps Node comparable and GC-pointer-free instead.
type Node struct {
	Type Type
	_    [3]byte

	// Offset is the absolute byte position in the logical source stream
	// where this value's raw bytes begin. For strings it is the first byte
	// after the opening quote. For containers it is the opening bracket.
	Offset uint32

	// Len is, for scalars, the raw token length; for strings, the length of
	// the bytes between the quotes; for containers it is set only after
	// close, to the total span from Offset through the closing bracket.
	Len uint32

	// Children is the number of direct children: 0 for scalars, element
	// count for arrays, key+value pair count for objects.
	Children uint32

	// Hash has two lives. For a string node that is an object key, it is
	// the DJB2 hash of the raw key bytes. For a non-key value that follows
	// a key in an object, it is a copy of that key's hash. For a container,
	// it is repurposed after close to hold the total descendant count,
	// which is what makes NextSibling an O(1) skip instead of a walk.
	Hash uint32

	// StrVal indexes into the owning Parser's strVals slice when this node
	// was produced by the builder API rather than the parse engine.
	// noStrVal means "look at Offset/Len in the source buffer instead".
	StrVal int32
}

// HasOwnedString reports whether n was created through the builder API and
// therefore owns its textual form rather than referencing the source buffer.
func (n *Node) HasOwnedString() bool {
	return n.StrVal != noStrVal
}
