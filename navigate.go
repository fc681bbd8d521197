package arenajson

// NoIndex is returned by navigation operations to mean "no such node",
// mirroring the reference design's None.
const NoIndex int32 = -1

// Root returns the index of the first node in the arena, or NoIndex when
// the arena is empty.
func (p *Parser) Root() int32 {
	if len(p.nodes) == 0 {
		return NoIndex
	}
	return 0
}

// FirstChild returns the index of the node immediately following a
// container with at least one child, or NoIndex for scalars and empty
// containers.
func (p *Parser) FirstChild(n int32) int32 {
	node := &p.nodes[n]
	if !node.Type.IsContainer() || node.Children == 0 {
		return NoIndex
	}
	return n + 1
}

// NextSibling returns the index of the node that follows n's entire
// subtree. For a container this is an O(1) skip using the descendant count
// stashed in Hash after close; for a scalar or string it is simply n+1. It
// returns NoIndex when the result would run past the end of the arena.
func (p *Parser) NextSibling(n int32) int32 {
	node := &p.nodes[n]
	var next int32
	if node.Type.IsContainer() {
		next = n + 1 + int32(node.Hash)
	} else {
		next = n + 1
	}
	if next >= int32(len(p.nodes)) {
		return NoIndex
	}
	return next
}

// ArrayElement returns the index of the i-th direct element of the array
// node n, or NoIndex if i is out of range. It walks siblings from the first
// child, since the arena carries no random-access index into an array's
// elements.
func (p *Parser) ArrayElement(n int32, i int) int32 {
	node := &p.nodes[n]
	if node.Type != Array || i < 0 || uint32(i) >= node.Children {
		return NoIndex
	}
	cur := p.FirstChild(n)
	for ; i > 0; i-- {
		cur = p.NextSibling(cur)
		if cur == NoIndex {
			return NoIndex
		}
	}
	return cur
}

// ObjectValue looks up key in the object node n and returns the index of the
// matching value, or NoIndex on a miss. The DJB2 hash stored on each key
// node only accelerates the search: every candidate is still compared
// byte-for-byte against the query key, since the hash is truncated to 28
// bits and collisions are expected, never assumed absent (see
// SPEC_FULL.md's "key-hash collisions" decision).
func (p *Parser) ObjectValue(n int32, key []byte, source []byte) int32 {
	node := &p.nodes[n]
	if node.Type != Object {
		return NoIndex
	}
	wantHash := djb2(key)
	cur := p.FirstChild(n)
	for i := uint32(0); i < node.Children && cur != NoIndex; i++ {
		keyNode := &p.nodes[cur]
		valueIdx := p.NextSibling(cur)
		if keyNode.Type == String && keyNode.Hash == wantHash && uint64(keyNode.Len) == uint64(len(key)) {
			raw, err := p.stringBytes(keyNode, source)
			if err == nil && bytesEqual(raw, key) {
				return valueIdx
			}
		}
		cur = p.NextSibling(valueIdx)
	}
	return NoIndex
}

// djb2 computes the same 28-bit-truncated DJB2 hash the parse engine
// accumulates incrementally over raw (still-escaped) string bytes.
func djb2(b []byte) uint32 {
	h := uint32(0)
	for _, c := range b {
		h = h*33 ^ uint32(c)
	}
	return h & hashMask
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
