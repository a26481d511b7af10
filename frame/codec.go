package frame

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// Codec converts between a Frame and its wire representation.
type Codec interface {
	Encode(f Frame) ([]byte, error)
	Decode(b []byte) (Frame, error)
}

// BinaryCodec is a compact, length-prefixed binary encoding: one marker
// byte for Kind, an 8-byte big-endian Seq, a 4-byte big-endian payload
// length, then the payload itself. The layout mirrors a packstream
// message's marker-byte-plus-structured-fields shape, sized down to
// Nagare's own frame envelope.
type BinaryCodec struct{}

const binaryHeaderSize = 1 + 8 + 4

func (BinaryCodec) Encode(f Frame) ([]byte, error) {
	buf := make([]byte, binaryHeaderSize+len(f.Payload))
	buf[0] = byte(f.Kind)
	binary.BigEndian.PutUint64(buf[1:9], f.Seq)
	binary.BigEndian.PutUint32(buf[9:13], uint32(len(f.Payload)))
	copy(buf[13:], f.Payload)
	return buf, nil
}

func (BinaryCodec) Decode(b []byte) (Frame, error) {
	if len(b) < binaryHeaderSize {
		return Frame{}, fmt.Errorf("nagare/frame: short frame header: %d bytes", len(b))
	}
	kind := Kind(b[0])
	seq := binary.BigEndian.Uint64(b[1:9])
	n := binary.BigEndian.Uint32(b[9:13])
	if uint32(len(b)-binaryHeaderSize) < n {
		return Frame{}, fmt.Errorf("nagare/frame: payload length mismatch: want %d, have %d", n, len(b)-binaryHeaderSize)
	}
	payload := make([]byte, n)
	copy(payload, b[binaryHeaderSize:uint32(binaryHeaderSize)+n])
	return Frame{Seq: seq, Kind: kind, Payload: payload}, nil
}

// JSONCodec is a human-readable fallback encoding, mainly useful for tests
// and debugging transports that don't need BinaryCodec's density.
type JSONCodec struct{}

type jsonFrame struct {
	Seq     uint64 `json:"seq"`
	Kind    byte   `json:"kind"`
	Payload []byte `json:"payload"`
}

func (JSONCodec) Encode(f Frame) ([]byte, error) {
	return json.Marshal(jsonFrame{Seq: f.Seq, Kind: byte(f.Kind), Payload: f.Payload})
}

func (JSONCodec) Decode(b []byte) (Frame, error) {
	var jf jsonFrame
	if err := json.Unmarshal(b, &jf); err != nil {
		return Frame{}, err
	}
	return Frame{Seq: jf.Seq, Kind: Kind(jf.Kind), Payload: jf.Payload}, nil
}
