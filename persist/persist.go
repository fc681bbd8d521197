// Package persist saves a parsed arena to a binary form and loads it back,
// adapted from the teacher's tape serializer: a short header, the node
// records, the owned-string table, and the source buffer, with the source
// buffer optionally compressed. It deliberately drops the teacher's
// per-field stream splitting and string deduplication table — those earn
// their complexity back only at the scale of a shared multi-document tape
// cache, which this package doesn't have.
package persist

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/arenajson/arenajson"
)

const (
	magic   = uint32(0x41524a31) // "ARJ1"
	version = uint8(1)
)

// CompressMode controls how the source buffer is stored.
type CompressMode uint8

const (
	// CompressNone stores the source buffer verbatim.
	CompressNone CompressMode = iota
	// CompressFast applies s2, favoring encode/decode speed.
	CompressFast
	// CompressBest applies zstd, favoring output size.
	CompressBest
)

// Save writes p's entire node arena, owned-string table, and source buffer
// to dst. p must have finished successfully (Finish returned true) before
// being saved.
func Save(dst io.Writer, p *arenajson.Parser, source []byte, mode CompressMode) error {
	bw := bufio.NewWriter(dst)

	if err := binary.Write(bw, binary.LittleEndian, magic); err != nil {
		return err
	}
	if err := bw.WriteByte(version); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(mode)); err != nil {
		return err
	}

	n := p.Len()
	if err := binary.Write(bw, binary.LittleEndian, uint64(n)); err != nil {
		return err
	}
	for i := int32(0); i < int32(n); i++ {
		node := p.Node(i)
		if err := writeNode(bw, node); err != nil {
			return err
		}
	}

	owned := make([][]byte, 0)
	for i := int32(0); i < int32(n); i++ {
		node := p.Node(i)
		if node.HasOwnedString() {
			raw, err := p.RawString(i, source)
			if err != nil {
				return fmt.Errorf("persist: reading owned string for node %d: %w", i, err)
			}
			owned = append(owned, raw)
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(owned))); err != nil {
		return err
	}
	for _, s := range owned {
		if err := writeBlob(bw, s); err != nil {
			return err
		}
	}

	encoded, err := compress(source, mode)
	if err != nil {
		return err
	}
	if err := binary.Write(bw, binary.LittleEndian, uint64(len(source))); err != nil {
		return err
	}
	if err := writeBlob(bw, encoded); err != nil {
		return err
	}

	return bw.Flush()
}

// Load reads an arena previously written by Save and returns a restored
// Parser together with the reconstructed source buffer. The returned
// Parser has no capacity headroom for further Feed calls — it is meant for
// read-only navigation and serialization, mirroring the teacher's
// "Deserialize produces a read-only ParsedJson" convention.
func Load(src io.Reader) (*arenajson.Parser, []byte, error) {
	br := bufio.NewReader(src)

	var gotMagic uint32
	if err := binary.Read(br, binary.LittleEndian, &gotMagic); err != nil {
		return nil, nil, err
	}
	if gotMagic != magic {
		return nil, nil, fmt.Errorf("persist: bad magic %#x", gotMagic)
	}
	gotVersion, err := br.ReadByte()
	if err != nil {
		return nil, nil, err
	}
	if gotVersion != version {
		return nil, nil, fmt.Errorf("persist: unsupported version %d", gotVersion)
	}
	modeByte, err := br.ReadByte()
	if err != nil {
		return nil, nil, err
	}
	mode := CompressMode(modeByte)

	var n uint64
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, nil, err
	}
	nodes := make([]arenajson.Node, n)
	for i := range nodes {
		if err := readNode(br, &nodes[i]); err != nil {
			return nil, nil, err
		}
	}

	var ownedCount uint64
	if err := binary.Read(br, binary.LittleEndian, &ownedCount); err != nil {
		return nil, nil, err
	}
	strVals := make([]string, 0, ownedCount)
	for i := uint64(0); i < ownedCount; i++ {
		b, err := readBlob(br)
		if err != nil {
			return nil, nil, err
		}
		strVals = append(strVals, string(b))
	}

	var sourceLen uint64
	if err := binary.Read(br, binary.LittleEndian, &sourceLen); err != nil {
		return nil, nil, err
	}
	encoded, err := readBlob(br)
	if err != nil {
		return nil, nil, err
	}
	source, err := decompress(encoded, mode, int(sourceLen))
	if err != nil {
		return nil, nil, err
	}

	return arenajson.Restore(nodes, strVals), source, nil
}

func writeNode(w io.Writer, n *arenajson.Node) error {
	fields := []uint32{uint32(n.Type), n.Offset, n.Len, n.Children, n.Hash}
	for _, f := range fields {
		if err := binary.Write(w, binary.LittleEndian, f); err != nil {
			return err
		}
	}
	return binary.Write(w, binary.LittleEndian, n.StrVal)
}

func readNode(r io.Reader, n *arenajson.Node) error {
	var typ, offset, length, children, hash uint32
	for _, dst := range []*uint32{&typ, &offset, &length, &children, &hash} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return err
		}
	}
	var strVal int32
	if err := binary.Read(r, binary.LittleEndian, &strVal); err != nil {
		return err
	}
	n.Type = arenajson.Type(typ)
	n.Offset = offset
	n.Len = length
	n.Children = children
	n.Hash = hash
	n.StrVal = strVal
	return nil
}

func writeBlob(w io.Writer, b []byte) error {
	if err := binary.Write(w, binary.LittleEndian, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBlob(r io.Reader) ([]byte, error) {
	var n uint64
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

func compress(source []byte, mode CompressMode) ([]byte, error) {
	switch mode {
	case CompressNone:
		return source, nil
	case CompressFast:
		return s2.Encode(nil, source), nil
	case CompressBest:
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return nil, err
		}
		defer enc.Close()
		return enc.EncodeAll(source, nil), nil
	default:
		return nil, fmt.Errorf("persist: unknown compress mode %d", mode)
	}
}

func decompress(encoded []byte, mode CompressMode, originalLen int) ([]byte, error) {
	switch mode {
	case CompressNone:
		return encoded, nil
	case CompressFast:
		return s2.Decode(make([]byte, 0, originalLen), encoded)
	case CompressBest:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return dec.DecodeAll(encoded, make([]byte, 0, originalLen))
	default:
		return nil, fmt.Errorf("persist: unknown compress mode %d", mode)
	}
}
