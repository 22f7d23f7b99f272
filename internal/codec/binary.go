package codec

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"graphio/internal/domain"
	"graphio/internal/progress"

	"google.golang.org/protobuf/encoding/protowire"
)

// Binary stream layout:
//
//	magic   "GIO" + version byte
//	header  varint node count, varint edge count
//	records protobuf fields, one per node (field 1) or edge (field 2),
//	        each a length-delimited message
//
// Records are self-delimiting so the stream decodes without seeking. A
// stream ending before the declared counts is reported as ErrTruncated.
const (
	binaryVersion = 1

	recordNode protowire.Number = 1
	recordEdge protowire.Number = 2

	nodeID    protowire.Number = 1
	nodeLabel protowire.Number = 2
	nodeType  protowire.Number = 3
	nodeAttr  protowire.Number = 4

	edgeID     protowire.Number = 1
	edgeFrom   protowire.Number = 2
	edgeTo     protowire.Number = 3
	edgeType   protowire.Number = 4
	edgeWeight protowire.Number = 5
	edgeAttr   protowire.Number = 6

	attrKey   protowire.Number = 1
	attrValue protowire.Number = 2

	// maxRecordSize bounds a single record to reject corrupt length prefixes
	maxRecordSize = 64 << 20
)

var binaryMagic = []byte("GIO")

// BinaryCodec handles a compact protobuf-wire binary format
type BinaryCodec struct{}

// NewBinaryCodec creates a new binary codec
func NewBinaryCodec() *BinaryCodec {
	return &BinaryCodec{}
}

// Format returns the codec format identifier
func (c *BinaryCodec) Format() string {
	return "binary"
}

// Write exports graph data as binary records
func (c *BinaryCodec) Write(g domain.View, w io.Writer, n progress.Notifier) error {
	nodes, edges := g.Nodes(), g.Edges()

	header := append([]byte(nil), binaryMagic...)
	header = append(header, binaryVersion)
	header = protowire.AppendVarint(header, uint64(len(nodes)))
	header = protowire.AppendVarint(header, uint64(len(edges)))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	steps := progress.NewSteps(n, len(nodes)+len(edges))
	var rec, msg []byte
	for _, node := range nodes {
		msg = appendNode(msg[:0], node)
		rec = protowire.AppendTag(rec[:0], recordNode, protowire.BytesType)
		rec = protowire.AppendBytes(rec, msg)
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write node %q: %w", node.ID, err)
		}
		steps.Tick()
	}
	for _, edge := range edges {
		msg = appendEdge(msg[:0], edge)
		rec = protowire.AppendTag(rec[:0], recordEdge, protowire.BytesType)
		rec = protowire.AppendBytes(rec, msg)
		if _, err := w.Write(rec); err != nil {
			return fmt.Errorf("failed to write edge %q: %w", edge.ID, err)
		}
		steps.Tick()
	}

	return nil
}

// Read imports graph data from binary records
func (c *BinaryCodec) Read(r io.Reader, g domain.Builder, n progress.Notifier) error {
	br, ok := r.(io.ByteReader)
	if !ok {
		buffered := bufio.NewReader(r)
		r, br = buffered, buffered
	}

	magic := make([]byte, len(binaryMagic)+1)
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	if !bytes.Equal(magic[:len(binaryMagic)], binaryMagic) {
		return fmt.Errorf("bad magic %q", magic[:len(binaryMagic)])
	}
	if magic[len(binaryMagic)] != binaryVersion {
		return fmt.Errorf("%w: %d", ErrVersion, magic[len(binaryMagic)])
	}

	nodeCount, err := binary.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("failed to read node count: %w", err)
	}
	edgeCount, err := binary.ReadUvarint(br)
	if err != nil {
		return fmt.Errorf("failed to read edge count: %w", err)
	}

	steps := progress.NewSteps(n, int(nodeCount+edgeCount))
	var nodesSeen, edgesSeen uint64
	for {
		tag, err := binary.ReadUvarint(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: record tag: %v", ErrTruncated, err)
		}
		num, typ := protowire.DecodeTag(tag)
		if typ != protowire.BytesType {
			return fmt.Errorf("record %d: unexpected wire type %d", num, typ)
		}

		size, err := binary.ReadUvarint(br)
		if err != nil {
			return fmt.Errorf("%w: record size: %v", ErrTruncated, err)
		}
		if size > maxRecordSize {
			return fmt.Errorf("record size %d exceeds limit", size)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(r, buf); err != nil {
			return fmt.Errorf("%w: %v", ErrTruncated, err)
		}

		switch num {
		case recordNode:
			if nodesSeen == nodeCount || edgesSeen > 0 {
				return fmt.Errorf("unexpected node record")
			}
			node, err := consumeNode(buf)
			if err != nil {
				return fmt.Errorf("node record %d: %w", nodesSeen, err)
			}
			if err := g.AddNode(node); err != nil {
				return fmt.Errorf("add node %q: %w", node.ID, err)
			}
			nodesSeen++
		case recordEdge:
			if edgesSeen == edgeCount {
				return fmt.Errorf("unexpected edge record")
			}
			edge, err := consumeEdge(buf)
			if err != nil {
				return fmt.Errorf("edge record %d: %w", edgesSeen, err)
			}
			if err := g.AddEdge(edge); err != nil {
				return fmt.Errorf("add edge %q: %w", edge.ID, err)
			}
			edgesSeen++
		default:
			return fmt.Errorf("unknown record type %d", num)
		}
		steps.Tick()
	}

	if nodesSeen != nodeCount || edgesSeen != edgeCount {
		return fmt.Errorf("%w: got %d/%d nodes and %d/%d edges",
			ErrTruncated, nodesSeen, nodeCount, edgesSeen, edgeCount)
	}
	return nil
}

func appendNode(b []byte, node domain.Node) []byte {
	b = appendString(b, nodeID, node.ID)
	b = appendString(b, nodeLabel, node.Label)
	b = appendString(b, nodeType, string(node.Type))
	return appendAttributes(b, nodeAttr, node.Attributes)
}

func appendEdge(b []byte, edge domain.Edge) []byte {
	b = appendString(b, edgeID, edge.ID)
	b = appendString(b, edgeFrom, edge.From)
	b = appendString(b, edgeTo, edge.To)
	b = appendString(b, edgeType, string(edge.Type))
	if edge.Weight != 0 {
		b = protowire.AppendTag(b, edgeWeight, protowire.Fixed64Type)
		b = protowire.AppendFixed64(b, math.Float64bits(edge.Weight))
	}
	return appendAttributes(b, edgeAttr, edge.Attributes)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

// appendAttributes writes attributes the way protobuf encodes a map<string,string>
func appendAttributes(b []byte, num protowire.Number, attrs map[string]string) []byte {
	var entry []byte
	for _, k := range sortedKeys(attrs) {
		entry = appendString(entry[:0], attrKey, k)
		entry = appendString(entry, attrValue, attrs[k])
		b = protowire.AppendTag(b, num, protowire.BytesType)
		b = protowire.AppendBytes(b, entry)
	}
	return b
}

func consumeNode(b []byte) (domain.Node, error) {
	var node domain.Node
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case nodeID:
			node.ID = string(v)
		case nodeLabel:
			node.Label = string(v)
		case nodeType:
			node.Type = domain.NodeType(v)
		case nodeAttr:
			k, val, err := consumeAttribute(v)
			if err != nil {
				return err
			}
			node.SetAttribute(k, val)
		}
		return nil
	})
	return node, err
}

func consumeEdge(b []byte) (domain.Edge, error) {
	var edge domain.Edge
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if num == edgeWeight && typ == protowire.Fixed64Type {
			bits, n := protowire.ConsumeFixed64(v)
			if n < 0 {
				return protowire.ParseError(n)
			}
			edge.Weight = math.Float64frombits(bits)
			return nil
		}
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case edgeID:
			edge.ID = string(v)
		case edgeFrom:
			edge.From = string(v)
		case edgeTo:
			edge.To = string(v)
		case edgeType:
			edge.Type = domain.EdgeType(v)
		case edgeAttr:
			k, val, err := consumeAttribute(v)
			if err != nil {
				return err
			}
			edge.SetAttribute(k, val)
		}
		return nil
	})
	return edge, err
}

func consumeAttribute(b []byte) (string, string, error) {
	var key, value string
	err := consumeFields(b, func(num protowire.Number, typ protowire.Type, v []byte) error {
		if typ != protowire.BytesType {
			return nil
		}
		switch num {
		case attrKey:
			key = string(v)
		case attrValue:
			value = string(v)
		}
		return nil
	})
	return key, value, err
}

// consumeFields walks a protobuf message. For length-delimited fields v is
// the payload; for other wire types v is the raw field value. Unknown
// fields are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		var v []byte
		if typ == protowire.BytesType {
			payload, m := protowire.ConsumeBytes(b)
			if m < 0 {
				return protowire.ParseError(m)
			}
			v, n = payload, m
		} else {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			v = b[:n]
		}
		if err := fn(num, typ, v); err != nil {
			return err
		}
		b = b[n:]
	}
	return nil
}
