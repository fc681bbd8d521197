package arenajson

import (
	"errors"
	"strconv"
)

// ErrOutOfRange is returned when a node's Offset/Len reach past the end of
// the source buffer handed to an accessor — a sign the caller passed a
// buffer that no longer matches what was fed to the parser.
var ErrOutOfRange = errors.New("arenajson: node span outside source buffer")

// stringBytes resolves a node's raw payload, whether it came from the parse
// engine (an offset/len into source) or the builder (an owned strVal).
// A parsed node's payload is a subslice of source, with no allocation; a
// builder node's payload is returned as a fresh []byte copy of its owned
// strVal.
func (p *Parser) stringBytes(n *Node, source []byte) ([]byte, error) {
	if n.HasOwnedString() {
		return []byte(p.strVals[n.StrVal]), nil
	}
	end := uint64(n.Offset) + uint64(n.Len)
	if end > uint64(len(source)) {
		return nil, ErrOutOfRange
	}
	return source[n.Offset:end], nil
}

// AsInt returns the integer value of an IntNumber node. ok is false if the
// node isn't an IntNumber, or if the decimal parse didn't consume the whole
// token (which should never happen for a node the parse engine produced,
// since it already validated the grammar; it matters for builder nodes
// constructed with a malformed strval).
func (p *Parser) AsInt(n int32, source []byte) (int64, bool) {
	node := &p.nodes[n]
	if node.Type != IntNumber {
		return 0, false
	}
	raw, err := p.stringBytes(node, source)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseInt(string(raw), 10, 64)
	return v, err == nil
}

// AsFloat returns the floating value of a FloatNumber (or, for convenience,
// an IntNumber) node.
func (p *Parser) AsFloat(n int32, source []byte) (float64, bool) {
	node := &p.nodes[n]
	if node.Type != FloatNumber && node.Type != IntNumber {
		return 0, false
	}
	raw, err := p.stringBytes(node, source)
	if err != nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(string(raw), 64)
	return v, err == nil
}

// AsBool reports whether node n is the True literal.
func (p *Parser) AsBool(n int32) bool {
	return p.nodes[n].Type == True
}

// StrInto copies the raw (still-escaped) payload of a string node into buf,
// truncating to len(buf) if necessary, and returns the written prefix of
// buf. Non-string nodes yield an empty slice.
func (p *Parser) StrInto(n int32, source []byte, buf []byte) []byte {
	node := &p.nodes[n]
	if node.Type != String {
		return buf[:0]
	}
	raw, err := p.stringBytes(node, source)
	if err != nil {
		return buf[:0]
	}
	k := copy(buf, raw)
	return buf[:k]
}

// Interface converts the subtree rooted at n into plain Go values: objects
// become map[string]interface{}, arrays become []interface{}, numbers
// become int64 or float64, strings become string (with escapes left
// un-decoded, consistent with the rest of this package's byte-transparent
// string handling), and true/false/null become the matching Go value.
func (p *Parser) Interface(n int32, source []byte) (interface{}, error) {
	node := &p.nodes[n]
	switch node.Type {
	case Null:
		return nil, nil
	case True:
		return true, nil
	case False:
		return false, nil
	case IntNumber:
		v, ok := p.AsInt(n, source)
		if !ok {
			return nil, errors.New("arenajson: malformed integer literal")
		}
		return v, nil
	case FloatNumber:
		v, ok := p.AsFloat(n, source)
		if !ok {
			return nil, errors.New("arenajson: malformed float literal")
		}
		return v, nil
	case String:
		raw, err := p.stringBytes(node, source)
		if err != nil {
			return nil, err
		}
		return string(raw), nil
	case Array:
		out := make([]interface{}, 0, node.Children)
		cur := p.FirstChild(n)
		for i := uint32(0); i < node.Children && cur != NoIndex; i, cur = i+1, p.NextSibling(cur) {
			v, err := p.Interface(cur, source)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case Object:
		out := make(map[string]interface{}, node.Children)
		cur := p.FirstChild(n)
		for i := uint32(0); i < node.Children && cur != NoIndex; i++ {
			keyNode := &p.nodes[cur]
			keyBytes, err := p.stringBytes(keyNode, source)
			if err != nil {
				return nil, err
			}
			valIdx := p.NextSibling(cur)
			v, err := p.Interface(valIdx, source)
			if err != nil {
				return nil, err
			}
			out[string(keyBytes)] = v
			cur = p.NextSibling(valIdx)
		}
		return out, nil
	}
	return nil, errors.New("arenajson: unknown node type")
}
