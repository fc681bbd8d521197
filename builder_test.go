package arenajson

import "testing"

// buildFlatObject constructs {"a":1,"b":true,"c":"hi"} through the Builder,
// the way a caller assembling a small tree programmatically would, rather
// than by parsing.
func buildFlatObject(p *Parser) int32 {
	b := p.NewBuilder()
	obj := b.CreateObject()

	ka := b.CreateString("a")
	va := b.CreateInt(1)
	b.ObjectSet(obj, ka, va)

	kb := b.CreateString("b")
	vb := b.CreateBool(true)
	b.ObjectSet(obj, kb, vb)

	kc := b.CreateString("c")
	vc := b.CreateString("hi")
	b.ObjectSet(obj, kc, vc)

	return obj
}

func TestBuilderObjectValueLookup(t *testing.T) {
	p := New(16, 4)
	obj := buildFlatObject(p)

	if got := p.Node(obj).Children; got != 3 {
		t.Fatalf("obj.Children = %d, want 3", got)
	}

	// ObjectValue must find builder-built keys by hash, exactly as it does
	// for parsed ones: ObjectSet is responsible for giving each key node
	// the DJB2 hash a parsed key would have picked up byte-by-byte.
	val := p.ObjectValue(obj, []byte("b"), nil)
	if val == NoIndex {
		t.Fatal("ObjectValue(obj, \"b\") = NoIndex, want the bool node")
	}
	if !p.AsBool(val) {
		t.Errorf("ObjectValue(obj, \"b\") did not resolve to true")
	}

	if idx := p.ObjectValue(obj, []byte("missing"), nil); idx != NoIndex {
		t.Errorf("ObjectValue(obj, \"missing\") = %d, want NoIndex", idx)
	}
}

func TestBuilderObjectSetCopiesKeyHashToValue(t *testing.T) {
	p := New(16, 4)
	obj := buildFlatObject(p)

	cur := p.FirstChild(obj)
	for cur != NoIndex {
		keyNode := p.Node(cur)
		valIdx := p.NextSibling(cur)
		if p.Node(valIdx).Hash != keyNode.Hash {
			t.Errorf("value hash = %d, want key hash %d", p.Node(valIdx).Hash, keyNode.Hash)
		}
		if keyNode.Hash != djb2([]byte(p.strVals[keyNode.StrVal])) {
			t.Errorf("key hash = %d, want djb2 of its own text", keyNode.Hash)
		}
		cur = p.NextSibling(valIdx)
	}
}

func TestBuilderArrayAppendAndSerialize(t *testing.T) {
	p := New(16, 4)
	b := p.NewBuilder()
	arr := b.CreateArray()
	e0 := b.CreateInt(10)
	b.ArrayAppend(arr, e0)
	e1 := b.CreateBool(false)
	b.ArrayAppend(arr, e1)
	e2 := b.CreateString(`say "hi"` + "\n")
	b.ArrayAppend(arr, e2)

	if got := p.Node(arr).Children; got != 3 {
		t.Fatalf("arr.Children = %d, want 3", got)
	}
	if p.ArrayElement(arr, 2) != e2 {
		t.Errorf("ArrayElement(2) = %d, want %d", p.ArrayElement(arr, 2), e2)
	}

	sink := NewByteSink(64)
	if err := p.Serialize(arr, Compact, sink, nil); err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := `[10,false,"say \"hi\"\n"]`
	if string(sink.Data()) != want {
		t.Errorf("Serialize = %q, want %q", sink.Data(), want)
	}
}

func TestFreeTreeReleasesOwnedStringsInFlatArray(t *testing.T) {
	p := New(8, 4)
	b := p.NewBuilder()
	arr := b.CreateArray()
	e0 := b.CreateString("one")
	b.ArrayAppend(arr, e0)
	e1 := b.CreateString("two")
	b.ArrayAppend(arr, e1)

	p.FreeTree(arr)
	for _, idx := range []int32{arr, e0, e1} {
		if p.Node(idx).HasOwnedString() {
			t.Errorf("node %d still reports HasOwnedString() after FreeTree", idx)
		}
	}
}
