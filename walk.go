package arenajson

import "fmt"

// ErrPathNotFound is returned by FindPath when any segment of the path is
// missing from the document.
var ErrPathNotFound = fmt.Errorf("arenajson: path not found")

// ForEach calls fn once for every key/value pair of the object node n, in
// document order, stopping early if fn returns false. It reports whether n
// was actually an object.
func (p *Parser) ForEach(n int32, source []byte, fn func(key []byte, value int32) bool) bool {
	node := &p.nodes[n]
	if node.Type != Object {
		return false
	}
	cur := p.FirstChild(n)
	for i := uint32(0); i < node.Children && cur != NoIndex; i++ {
		keyNode := &p.nodes[cur]
		keyBytes, err := p.stringBytes(keyNode, source)
		valIdx := p.NextSibling(cur)
		if err == nil {
			if !fn(keyBytes, valIdx) {
				return true
			}
		}
		cur = p.NextSibling(valIdx)
	}
	return true
}

// FindKey is ObjectValue with source bound in, for callers who only ever
// resolve keys against one already-known buffer (e.g. after Init+Feed on a
// single in-memory document).
func (p *Parser) FindKey(n int32, key string, source []byte) int32 {
	return p.ObjectValue(n, []byte(key), source)
}

// FindPath walks a sequence of object keys and array indices, descending
// from n, and returns the index of the node at the end of the path, or
// ErrPathNotFound if any segment is missing or type-mismatched. A path
// segment is either a string (object key) or an int (array index).
func (p *Parser) FindPath(n int32, source []byte, path ...interface{}) (int32, error) {
	cur := n
	for _, seg := range path {
		node := &p.nodes[cur]
		switch s := seg.(type) {
		case string:
			if node.Type != Object {
				return NoIndex, ErrPathNotFound
			}
			next := p.ObjectValue(cur, []byte(s), source)
			if next == NoIndex {
				return NoIndex, ErrPathNotFound
			}
			cur = next
		case int:
			if node.Type != Array {
				return NoIndex, ErrPathNotFound
			}
			next := p.ArrayElement(cur, s)
			if next == NoIndex {
				return NoIndex, ErrPathNotFound
			}
			cur = next
		default:
			return NoIndex, fmt.Errorf("arenajson: unsupported path segment type %T", seg)
		}
	}
	return cur, nil
}
