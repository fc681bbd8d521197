package arenajson

import "fmt"

// ErrorKind classifies why a Parser stopped accepting input. It mirrors the
// three-way taxonomy from the reference design: a structural mismatch, an
// input that stopped too early, or a preallocated bound that was exceeded.
type ErrorKind uint8

const (
	ErrNone ErrorKind = iota
	ErrUnexpected
	ErrIncomplete
	ErrCapacity
)

func (k ErrorKind) String() string {
	switch k {
	case ErrNone:
		return "none"
	case ErrUnexpected:
		return "unexpected byte"
	case ErrIncomplete:
		return "incomplete input"
	case ErrCapacity:
		return "capacity exceeded"
	}
	return "unknown error"
}

// state is the engine's top-level state. Normal and AfterValue are the only
// states in which whitespace is consumed.
type state uint8

const (
	stateNormal state = iota
	stateAfterValue
	stateExpectColon
	stateInString
	stateInNumber
	stateInLiteral
)

// frame is one entry of the container stack: which node opened the scope,
// and (for objects) whether a key is due next.
type frame struct {
	nodeIndex    int32
	expectingKey bool
}

// Parser drives the byte-level state machine described in the design: it
// owns a fixed-capacity node arena and container stack, accepts input one
// chunk at a time via Feed, and is finalized with Finish. It allocates
// nothing on the hot Feed/Finish path; all storage is provisioned up front
// by New or Init.
type Parser struct {
	nodes []Node
	stack []frame

	// strVals backs builder-created node text. Only the builder appends to
	// it; Feed and Finish never do.
	strVals []string

	state state
	err   ErrorKind
	errPos uint64
	line   uint64
	consumed uint64

	// In-progress string.
	pendingOffset uint64
	pendingLen    uint64
	pendingHash   uint32
	isKey         bool
	inEscape      bool
	inUnicodeEscape bool
	uniDigits     int

	// Key/value bookkeeping, shared by strings, numbers and literals.
	pendingValue bool
	lastKeyHash  uint32

	// In-progress number.
	hasDot, hasExp                       bool
	hasDigit                             bool
	hasDigitAfterDot, hasDigitAfterExp   bool
	endsWithDot, endsWithE, endsWithESign bool
	isNegative                           bool

	// Leading-zero tracking for the integer part only (RFC 8259 strictness,
	// see hasLeadingZero).
	seenFirstIntDigit bool
	firstIntDigitZero bool
	secondIntDigit    bool

	// In-progress literal.
	pendingLiteral Type
	literalMatched int
}

// ParserOption configures a Parser built through New.
type ParserOption func(*Parser)

// WithKeyFlagsCapacity exists for parity with the reference
// init(..., key_flags) signature. Go's container stack already carries the
// expecting-key flag per frame (see frame), so there is no separate key-flag
// slice: when n exceeds the stack capacity given to New, this replaces the
// stack with one of capacity n, which also raises the nesting depth Feed
// accepts before reporting ErrCapacity.
func WithKeyFlagsCapacity(n int) ParserOption {
	return func(p *Parser) {
		if n > cap(p.stack) {
			p.growStackCapacity(n)
		}
	}
}

func (p *Parser) growStackCapacity(n int) {
	ns := make([]frame, 0, n)
	p.stack = ns
}

// New allocates a Parser with the given node and stack capacities. This is
// the one-time, caller-directed provisioning step; nothing under Feed/Finish
// ever grows these slices further.
func New(nodeCap, stackCap int, opts ...ParserOption) *Parser {
	p := &Parser{
		nodes: make([]Node, 0, nodeCap),
		stack: make([]frame, 0, stackCap),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.reset()
	return p
}

// Init resets the parser to an empty document, reusing its existing arena
// and stack capacity. Behavior is identical regardless of the parser's
// prior contents (re-init idempotence).
func (p *Parser) Init() {
	p.nodes = p.nodes[:0]
	p.stack = p.stack[:0]
	p.strVals = p.strVals[:0]
	p.reset()
}

func (p *Parser) reset() {
	p.state = stateNormal
	p.err = ErrNone
	p.errPos = 0
	p.line = 0
	p.consumed = 0
	p.pendingOffset = 0
	p.pendingLen = 0
	p.pendingHash = 0
	p.isKey = false
	p.inEscape = false
	p.inUnicodeEscape = false
	p.uniDigits = 0
	p.pendingValue = false
	p.lastKeyHash = 0
	p.resetNumberFlags()
	p.pendingLiteral = Null
	p.literalMatched = 0
}

func (p *Parser) resetNumberFlags() {
	p.hasDot = false
	p.hasExp = false
	p.hasDigit = false
	p.hasDigitAfterDot = false
	p.hasDigitAfterExp = false
	p.endsWithDot = false
	p.endsWithE = false
	p.endsWithESign = false
	p.isNegative = false
	p.seenFirstIntDigit = false
	p.firstIntDigitZero = false
	p.secondIntDigit = false
}

// ErrorKind returns the sticky error recorded for this parse attempt, if any.
func (p *Parser) ErrorKind() ErrorKind { return p.err }

// ErrorPos returns the absolute byte offset (into the logical, concatenated
// stream across all Feed calls) at which the recorded error was observed.
func (p *Parser) ErrorPos() uint64 { return p.errPos }

// Line returns the 0-based count of newline bytes consumed so far.
func (p *Parser) Line() uint64 { return p.line }

// Len returns the number of nodes written to the arena so far.
func (p *Parser) Len() int { return len(p.nodes) }

// Node returns the node at index i. Panics if i is out of range, matching
// the arena's "stable indices, no bounds-checked accessor" contract.
func (p *Parser) Node(i int32) *Node { return &p.nodes[i] }

// RawString resolves node i's raw (still-escaped) byte payload, whether it
// was parsed from source or owned by the builder. It is the exported form
// of the same lookup the accessors and serializer use internally.
func (p *Parser) RawString(i int32, source []byte) ([]byte, error) {
	return p.stringBytes(&p.nodes[i], source)
}

// Restore rebuilds a Parser directly from a previously captured node arena
// and owned-string table, bypassing Feed/Finish entirely. It is meant for
// loading a persisted arena back in: the caller must keep the original
// source buffer the node Offsets reference alongside the restored Parser,
// since Restore has no way to recover it on its own.
func Restore(nodes []Node, strVals []string) *Parser {
	p := &Parser{nodes: nodes, strVals: strVals}
	p.reset()
	p.state = stateAfterValue
	return p
}

func (p *Parser) setError(kind ErrorKind, pos uint64) {
	if p.err == ErrNone {
		p.err = kind
		p.errPos = pos
	}
}

// Feed ingests one chunk of the logical byte stream. It returns false if a
// parse error or a capacity overflow was recorded, by this call or an
// earlier one. On success, Feed advances the parser's consumed-byte counter
// by len(data); a zero-length chunk is a no-op returning true as long as no
// prior error exists.
func (p *Parser) Feed(data []byte) bool {
	if p.err != ErrNone {
		return false
	}
	if len(data) == 0 {
		return true
	}
	pos := 0
	for pos < len(data) {
		c := data[pos]
		advance, ok := p.step(c, p.consumed+uint64(pos))
		if !ok {
			return false
		}
		if advance {
			pos++
		}
	}
	p.consumed += uint64(len(data))
	return true
}

// Finish checks that the parser has reached an acceptable terminal state and
// finalizes any number still pending (numbers have no closing delimiter, so
// they can only be known complete once input stops). It returns false if the
// input was incomplete, malformed, or empty (whitespace-only input is not an
// error; it simply never produces a document).
func (p *Parser) Finish() bool {
	if p.err != ErrNone {
		return false
	}
	if p.state == stateInNumber {
		if !p.finalizeNumber(p.consumed) {
			return false
		}
		p.state = stateAfterValue
	}
	if p.state == stateInString || p.state == stateInLiteral || p.state == stateExpectColon {
		p.setError(ErrIncomplete, p.consumed)
		return false
	}
	if len(p.stack) != 0 {
		p.setError(ErrIncomplete, p.consumed)
		return false
	}
	if len(p.nodes) == 0 {
		return false
	}
	return true
}

// step processes one input byte under the current state, looping internally
// (without consuming the caller's position) when a number is terminated by a
// byte that must be re-examined under the state it transitions into.
func (p *Parser) step(c byte, absPos uint64) (advance, ok bool) {
	for {
		switch p.state {
		case stateNormal:
			return p.stepNormal(c, absPos)
		case stateAfterValue:
			return p.stepAfterValue(c, absPos)
		case stateExpectColon:
			return p.stepExpectColon(c, absPos)
		case stateInString:
			return p.stepInString(c, absPos)
		case stateInLiteral:
			return p.stepInLiteral(c, absPos)
		case stateInNumber:
			if p.numberContinuation(c) {
				p.applyNumberByte(c)
				return true, true
			}
			if !p.finalizeNumber(absPos) {
				return false, false
			}
			p.state = stateAfterValue
			continue
		}
		panic(fmt.Sprintf("arenajson: unreachable state %d", p.state))
	}
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (p *Parser) countLine(c byte) {
	if c == '\n' || c == '\r' {
		p.line++
	}
}

func (p *Parser) stepNormal(c byte, absPos uint64) (advance, ok bool) {
	switch {
	case isWhitespace(c):
		p.countLine(c)
		return true, true
	case c == '"':
		p.beginString(absPos)
		return true, true
	case c == '{':
		return p.openContainer(Object, absPos)
	case c == '[':
		return p.openContainer(Array, absPos)
	case c == '-' || isDigit(c):
		p.beginNumber(c, absPos)
		return true, true
	case c == 't':
		p.beginLiteral(True, absPos)
		return true, true
	case c == 'f':
		p.beginLiteral(False, absPos)
		return true, true
	case c == 'n':
		p.beginLiteral(Null, absPos)
		return true, true
	case c == '}' || c == ']':
		// In Normal a close can only end an empty container: one that
		// already has children got here through a trailing ','.
		if len(p.stack) > 0 && p.nodes[p.stack[len(p.stack)-1].nodeIndex].Children == 0 {
			if ok := p.tryCloseMatching(c, absPos); ok {
				return true, true
			}
		}
		p.setError(ErrUnexpected, absPos)
		return false, false
	default:
		p.setError(ErrUnexpected, absPos)
		return false, false
	}
}

func (p *Parser) stepAfterValue(c byte, absPos uint64) (advance, ok bool) {
	switch {
	case isWhitespace(c):
		p.countLine(c)
		return true, true
	case c == ',':
		if len(p.stack) == 0 {
			p.setError(ErrUnexpected, absPos)
			return false, false
		}
		top := &p.stack[len(p.stack)-1]
		if p.nodes[top.nodeIndex].Type == Object {
			top.expectingKey = true
		}
		p.state = stateNormal
		return true, true
	case c == '}' || c == ']':
		if p.tryCloseMatching(c, absPos) {
			return true, true
		}
		p.setError(ErrUnexpected, absPos)
		return false, false
	default:
		p.setError(ErrUnexpected, absPos)
		return false, false
	}
}

func (p *Parser) stepExpectColon(c byte, absPos uint64) (advance, ok bool) {
	if c != ':' {
		p.setError(ErrUnexpected, absPos)
		return false, false
	}
	top := &p.stack[len(p.stack)-1]
	top.expectingKey = false
	p.state = stateNormal
	return true, true
}

// tryCloseMatching closes the innermost container if c matches its closing
// bracket. It reports false (without setting an error) when the stack is
// empty or the container type doesn't match, leaving the caller to decide
// that the byte is simply unexpected.
func (p *Parser) tryCloseMatching(c byte, absPos uint64) bool {
	if len(p.stack) == 0 {
		return false
	}
	top := p.stack[len(p.stack)-1]
	containerType := p.nodes[top.nodeIndex].Type
	if (c == '}' && containerType != Object) || (c == ']' && containerType != Array) {
		return false
	}
	return p.closeContainer(absPos)
}

func (p *Parser) closeContainer(absPos uint64) bool {
	if p.pendingValue {
		p.setError(ErrUnexpected, absPos)
		return false
	}
	top := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	node := &p.nodes[top.nodeIndex]
	node.Len = uint32(absPos-uint64(node.Offset)) + 1
	node.Hash = uint32(len(p.nodes)) - uint32(top.nodeIndex) - 1
	p.state = stateAfterValue
	return true
}

// consumePendingKey returns the key hash to copy onto the value that is
// about to be appended, clearing the "key seen, value due" flag either way.
func (p *Parser) consumePendingKey() uint32 {
	if p.pendingValue {
		p.pendingValue = false
		return p.lastKeyHash
	}
	return 0
}

func (p *Parser) bumpEnclosingChildren() {
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		p.nodes[top.nodeIndex].Children++
	}
}

func (p *Parser) openContainer(t Type, absPos uint64) (advance, ok bool) {
	p.consumePendingKey()
	p.bumpEnclosingChildren()
	idx, ok := p.appendNode(t, absPos, 0, 0, absPos)
	if !ok {
		return false, false
	}
	if !p.pushFrame(idx, t == Object, absPos) {
		return false, false
	}
	return true, true
}

func (p *Parser) appendNode(t Type, offset, length uint64, hash uint32, absPos uint64) (int32, bool) {
	if len(p.nodes) == cap(p.nodes) {
		p.setError(ErrCapacity, absPos)
		return 0, false
	}
	p.nodes = append(p.nodes, Node{
		Type:   t,
		Offset: uint32(offset),
		Len:    uint32(length),
		Hash:   hash,
		StrVal: noStrVal,
	})
	return int32(len(p.nodes) - 1), true
}

func (p *Parser) pushFrame(nodeIndex int32, expectingKey bool, absPos uint64) bool {
	if len(p.stack) == cap(p.stack) {
		p.setError(ErrCapacity, absPos)
		return false
	}
	p.stack = append(p.stack, frame{nodeIndex: nodeIndex, expectingKey: expectingKey})
	return true
}

// --- strings ---

func (p *Parser) beginString(absPos uint64) {
	p.pendingOffset = absPos + 1
	p.pendingLen = 0
	p.pendingHash = 0
	p.inEscape = false
	p.inUnicodeEscape = false
	p.uniDigits = 0
	p.isKey = false
	if len(p.stack) > 0 {
		top := p.stack[len(p.stack)-1]
		if p.nodes[top.nodeIndex].Type == Object && top.expectingKey {
			p.isKey = true
		}
	}
	p.state = stateInString
}

func (p *Parser) accumulateStringByte(c byte) {
	p.pendingLen++
	if p.isKey {
		p.pendingHash = p.pendingHash*33 ^ uint32(c)
	}
}

func (p *Parser) stepInString(c byte, absPos uint64) (advance, ok bool) {
	if p.inUnicodeEscape {
		if !isHexDigit(c) {
			p.setError(ErrUnexpected, absPos)
			return false, false
		}
		p.accumulateStringByte(c)
		p.uniDigits++
		if p.uniDigits == 4 {
			p.inUnicodeEscape = false
		}
		return true, true
	}
	if p.inEscape {
		switch c {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
			p.accumulateStringByte(c)
			p.inEscape = false
		case 'u':
			p.accumulateStringByte(c)
			p.inEscape = false
			p.inUnicodeEscape = true
			p.uniDigits = 0
		default:
			p.setError(ErrUnexpected, absPos)
			return false, false
		}
		return true, true
	}
	switch c {
	case '\\':
		p.accumulateStringByte(c)
		p.inEscape = true
		return true, true
	case '"':
		ok := p.closeString(absPos)
		return ok, ok
	default:
		p.accumulateStringByte(c)
		return true, true
	}
}

func (p *Parser) closeString(absPos uint64) bool {
	if p.isKey {
		hash := p.pendingHash & hashMask
		_, ok := p.appendNode(String, p.pendingOffset, p.pendingLen, hash, absPos)
		if !ok {
			return false
		}
		p.lastKeyHash = hash
		p.pendingValue = true
		p.state = stateExpectColon
		return true
	}
	hash := p.consumePendingKey()
	_, ok := p.appendNode(String, p.pendingOffset, p.pendingLen, hash, absPos)
	if !ok {
		return false
	}
	p.bumpEnclosingChildren()
	p.state = stateAfterValue
	return true
}

// --- numbers ---

func (p *Parser) beginNumber(c byte, absPos uint64) {
	p.pendingOffset = absPos
	p.pendingLen = 1
	p.resetNumberFlags()
	p.hasDigit = isDigit(c)
	p.isNegative = c == '-'
	p.seenFirstIntDigit = isDigit(c)
	p.firstIntDigitZero = c == '0'
	p.secondIntDigit = false
	p.state = stateInNumber
}

func (p *Parser) numberContinuation(c byte) bool {
	switch {
	case isDigit(c):
		return true
	case c == '.':
		return !p.hasDot && !p.hasExp
	case c == 'e' || c == 'E':
		return !p.hasExp && p.hasDigit
	case c == '+' || c == '-':
		return p.endsWithE
	default:
		return false
	}
}

func (p *Parser) applyNumberByte(c byte) {
	p.pendingLen++
	switch {
	case isDigit(c):
		p.hasDigit = true
		if p.hasExp {
			p.hasDigitAfterExp = true
		} else if p.hasDot {
			p.hasDigitAfterDot = true
		} else {
			// Still within the integer part.
			if !p.seenFirstIntDigit {
				p.seenFirstIntDigit = true
				p.firstIntDigitZero = c == '0'
			} else {
				p.secondIntDigit = true
			}
		}
		p.endsWithDot = false
		p.endsWithE = false
		p.endsWithESign = false
	case c == '.':
		p.hasDot = true
		p.endsWithDot = true
	case c == 'e' || c == 'E':
		p.hasExp = true
		p.endsWithE = true
	case c == '+' || c == '-':
		p.endsWithESign = true
		p.endsWithE = false
	}
}

// numberWellFormed validates the just-scanned number against the grammar in
// one pass: a digit must have been seen, a lone sign is rejected, a dot or
// exponent marker must be followed by at least one digit, and the token may
// not end on a dot, "e"/"E", or an exponent sign. It also enforces RFC 8259's
// no-leading-zero rule for the integer part — an Open Question the reference
// C source left unenforced; this implementation enforces it as recommended
// (see SPEC_FULL.md) rather than leaving it configurable.
func (p *Parser) numberWellFormed() bool {
	if !p.hasDigit {
		return false
	}
	if p.isNegative && p.pendingLen == 1 {
		return false
	}
	if p.hasDot && !p.hasDigitAfterDot {
		return false
	}
	if p.hasExp && !p.hasDigitAfterExp {
		return false
	}
	if p.endsWithDot || p.endsWithE || p.endsWithESign {
		return false
	}
	if p.firstIntDigitZero && p.secondIntDigit {
		return false
	}
	return true
}

func (p *Parser) finalizeNumber(absPos uint64) bool {
	if !p.numberWellFormed() {
		p.setError(ErrUnexpected, absPos)
		return false
	}
	t := IntNumber
	if p.hasDot || p.hasExp {
		t = FloatNumber
	}
	hash := p.consumePendingKey()
	_, ok := p.appendNode(t, p.pendingOffset, p.pendingLen, hash, absPos)
	if !ok {
		return false
	}
	p.bumpEnclosingChildren()
	return true
}

// --- literals ---

var literalBytes = [...][]byte{
	True:  []byte("true"),
	False: []byte("false"),
	Null:  []byte("null"),
}

func (p *Parser) beginLiteral(t Type, absPos uint64) {
	p.pendingLiteral = t
	p.pendingOffset = absPos
	p.literalMatched = 1 // the byte that triggered this state already matched index 0.
	p.state = stateInLiteral
}

func (p *Parser) stepInLiteral(c byte, absPos uint64) (advance, ok bool) {
	lit := literalBytes[p.pendingLiteral]
	if c != lit[p.literalMatched] {
		p.setError(ErrUnexpected, absPos)
		return false, false
	}
	p.literalMatched++
	if p.literalMatched == len(lit) {
		hash := p.consumePendingKey()
		_, ok := p.appendNode(p.pendingLiteral, p.pendingOffset, uint64(len(lit)), hash, absPos)
		if !ok {
			return false, false
		}
		p.bumpEnclosingChildren()
		p.state = stateAfterValue
	}
	return true, true
}
