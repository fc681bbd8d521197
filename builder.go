package arenajson

import "strconv"

// Builder is the secondary, programmatic counterpart to Feed/Finish: each
// Create call appends one node to the same arena a Parser would have
// produced by parsing. Unlike the parse engine, it keeps no container
// stack — it relies on the caller to append a container's children
// immediately after the container itself, in the same left-to-right order
// they should appear, before appending anything else. Interleaving Builder
// calls with Feed on the same Parser is not supported.
type Builder struct {
	p *Parser
}

// NewBuilder returns a Builder that appends to p's arena.
func (p *Parser) NewBuilder() *Builder {
	return &Builder{p: p}
}

func (b *Builder) append(n Node) int32 {
	p := b.p
	if len(p.nodes) == cap(p.nodes) {
		return NoIndex
	}
	p.nodes = append(p.nodes, n)
	return int32(len(p.nodes) - 1)
}

func (b *Builder) appendOwned(t Type, s string) int32 {
	b.p.strVals = append(b.p.strVals, s)
	strIdx := int32(len(b.p.strVals) - 1)
	return b.append(Node{Type: t, Len: uint32(len(s)), StrVal: strIdx})
}

// CreateNull appends a null node.
func (b *Builder) CreateNull() int32 { return b.append(Node{Type: Null, StrVal: noStrVal}) }

// CreateBool appends a true or false node.
func (b *Builder) CreateBool(v bool) int32 {
	t := False
	if v {
		t = True
	}
	return b.append(Node{Type: t, StrVal: noStrVal})
}

// CreateInt appends an IntNumber node owning the decimal text of v.
func (b *Builder) CreateInt(v int64) int32 {
	return b.appendOwned(IntNumber, strconv.FormatInt(v, 10))
}

// CreateFloat appends a FloatNumber node owning the shortest round-tripping
// decimal text of v.
func (b *Builder) CreateFloat(v float64) int32 {
	return b.appendOwned(FloatNumber, strconv.FormatFloat(v, 'g', -1, 64))
}

// CreateString appends a String node whose payload is the raw, unescaped
// text the caller wants to appear as a JSON string. Unlike a parsed string
// (whose Offset/Len reference already-escaped source bytes written verbatim
// by Serialize), a builder string may contain literal control bytes, quotes,
// or backslashes: Serialize runs it through the escape-aware writer on the
// way out, mirroring the reference design's separate escape_write path for
// builder-created strings.
func (b *Builder) CreateString(raw string) int32 {
	return b.appendOwned(String, raw)
}

// CreateArray appends an empty array node. Its elements must be appended
// immediately afterward, each followed by an ArrayAppend call.
func (b *Builder) CreateArray() int32 {
	return b.append(Node{Type: Array, StrVal: noStrVal})
}

// CreateObject appends an empty object node. Its key/value pairs must be
// appended immediately afterward (CreateString for the key, then the value),
// each pair followed by an ObjectSet call.
func (b *Builder) CreateObject() int32 {
	return b.append(Node{Type: Object, StrVal: noStrVal})
}

// ArrayAppend records that elem (already appended directly after arr's
// current last descendant) is arr's next element, incrementing arr.Children.
func (b *Builder) ArrayAppend(arr, elem int32) {
	b.p.nodes[arr].Children++
	_ = elem
}

// ObjectSet records that key/val (already appended directly after obj's
// current last descendant, key immediately before val) form obj's next
// pair: it increments obj.Children once per pair, computes key's DJB2 hash
// from its owned text (a parsed key gets this from the parse engine as it
// scans the bytes; a builder key never passes through that scan, so
// ObjectSet is where it happens instead), and copies that hash onto val,
// exactly as the parse engine does for a key immediately followed by its
// value.
func (b *Builder) ObjectSet(obj, key, val int32) {
	p := b.p
	p.nodes[obj].Children++
	keyNode := &p.nodes[key]
	if keyNode.Type == String && keyNode.HasOwnedString() {
		keyNode.Hash = djb2([]byte(p.strVals[keyNode.StrVal]))
	}
	p.nodes[val].Hash = keyNode.Hash
}

// FreeTree detaches owned strVals from the nodes of a tree built through this
// Builder: each node it reaches gets StrVal = noStrVal, so it no longer
// reports HasOwnedString. The strings themselves stay in the parser's strVals
// slice. It covers [root, root+1+root.Children), walking by Children rather
// than the post-close descendant count the parse engine stores in Hash, since
// Builder never performs a parser-style "close". That span is the whole tree
// only when the root's Children equals its descendant count, as for a flat
// array; for a flat object (two nodes per pair) it reaches only the first
// Children nodes after root, and for nested containers it stops short as well.
func (p *Parser) FreeTree(root int32) {
	node := &p.nodes[root]
	end := root + 1 + int32(node.Children)
	if end > int32(len(p.nodes)) {
		end = int32(len(p.nodes))
	}
	for i := root; i < end; i++ {
		p.nodes[i].StrVal = noStrVal
	}
}
