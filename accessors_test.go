package arenajson

import "testing"

func TestAsIntAndAsFloat(t *testing.T) {
	doc := `[42, -7, 3.5, -0.25, 1e3]`
	p := mustParse(t, doc, 8, 4)
	source := []byte(doc)
	root := p.Root()

	if v, ok := p.AsInt(p.ArrayElement(root, 0), source); !ok || v != 42 {
		t.Errorf("AsInt(42) = (%d, %v)", v, ok)
	}
	if v, ok := p.AsInt(p.ArrayElement(root, 1), source); !ok || v != -7 {
		t.Errorf("AsInt(-7) = (%d, %v)", v, ok)
	}
	if _, ok := p.AsInt(p.ArrayElement(root, 2), source); ok {
		t.Error("AsInt on a FloatNumber node unexpectedly succeeded")
	}
	if v, ok := p.AsFloat(p.ArrayElement(root, 2), source); !ok || v != 3.5 {
		t.Errorf("AsFloat(3.5) = (%v, %v)", v, ok)
	}
	if v, ok := p.AsFloat(p.ArrayElement(root, 3), source); !ok || v != -0.25 {
		t.Errorf("AsFloat(-0.25) = (%v, %v)", v, ok)
	}
	if v, ok := p.AsFloat(p.ArrayElement(root, 0), source); !ok || v != 42 {
		t.Errorf("AsFloat on an IntNumber node = (%v, %v), want (42, true)", v, ok)
	}
}

func TestAsBool(t *testing.T) {
	doc := `[true, false, null, 1]`
	p := mustParse(t, doc, 8, 4)
	root := p.Root()
	if !p.AsBool(p.ArrayElement(root, 0)) {
		t.Error("AsBool(true node) = false")
	}
	for i := 1; i < 4; i++ {
		if p.AsBool(p.ArrayElement(root, i)) {
			t.Errorf("AsBool(element %d) = true, want false", i)
		}
	}
}

func TestStrInto(t *testing.T) {
	doc := `["hello world", 5]`
	p := mustParse(t, doc, 8, 4)
	source := []byte(doc)
	root := p.Root()

	buf := make([]byte, 32)
	got := p.StrInto(p.ArrayElement(root, 0), source, buf)
	if string(got) != "hello world" {
		t.Errorf("StrInto = %q, want %q", got, "hello world")
	}

	small := make([]byte, 5)
	got = p.StrInto(p.ArrayElement(root, 0), source, small)
	if string(got) != "hello" {
		t.Errorf("StrInto (truncated) = %q, want %q", got, "hello")
	}

	got = p.StrInto(p.ArrayElement(root, 1), source, buf)
	if len(got) != 0 {
		t.Errorf("StrInto on a non-string node = %q, want empty", got)
	}
}

func TestInterfaceConversion(t *testing.T) {
	doc := `{"a":1,"b":[true,false,null,"x"],"c":2.5}`
	p := mustParse(t, doc, 16, 4)
	source := []byte(doc)

	v, err := p.Interface(p.Root(), source)
	if err != nil {
		t.Fatalf("Interface: %v", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("Interface() root type = %T, want map[string]interface{}", v)
	}
	if m["a"] != int64(1) {
		t.Errorf(`m["a"] = %v (%T), want int64(1)`, m["a"], m["a"])
	}
	if m["c"] != 2.5 {
		t.Errorf(`m["c"] = %v, want 2.5`, m["c"])
	}
	arr, ok := m["b"].([]interface{})
	if !ok || len(arr) != 4 {
		t.Fatalf(`m["b"] = %v (%T), want a 4-element slice`, m["b"], m["b"])
	}
	if arr[0] != true || arr[1] != false || arr[2] != nil || arr[3] != "x" {
		t.Errorf("m[\"b\"] = %v, want [true false <nil> x]", arr)
	}
}

func TestStringBytesOutOfRange(t *testing.T) {
	p := mustParse(t, `"abc"`, 4, 4)
	_, err := p.stringBytes(p.Node(p.Root()), []byte("a"))
	if err != ErrOutOfRange {
		t.Errorf("stringBytes with truncated source = %v, want ErrOutOfRange", err)
	}
}
