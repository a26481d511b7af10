package frame

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBinaryCodecRoundTrip(t *testing.T) {
	f := Frame{Seq: 42, Kind: KindData, Payload: []byte("hello")}
	buf, err := BinaryCodec{}.Encode(f)
	require.NoError(t, err)

	got, err := BinaryCodec{}.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestBinaryCodecRoundTripEmptyPayload(t *testing.T) {
	f := Frame{Seq: 1, Kind: KindEnd}
	buf, err := BinaryCodec{}.Encode(f)
	require.NoError(t, err)

	got, err := BinaryCodec{}.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, KindEnd, got.Kind)
	require.Empty(t, got.Payload)
}

func TestBinaryCodecDecodeShortHeader(t *testing.T) {
	_, err := BinaryCodec{}.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestBinaryCodecDecodePayloadLengthMismatch(t *testing.T) {
	f := Frame{Seq: 1, Kind: KindData, Payload: []byte("abcdef")}
	buf, err := BinaryCodec{}.Encode(f)
	require.NoError(t, err)

	truncated := buf[:len(buf)-3]
	_, err = BinaryCodec{}.Decode(truncated)
	require.Error(t, err)
}

func TestJSONCodecRoundTrip(t *testing.T) {
	f := Frame{Seq: 7, Kind: KindError, Payload: []byte("boom")}
	buf, err := JSONCodec{}.Encode(f)
	require.NoError(t, err)

	got, err := JSONCodec{}.Decode(buf)
	require.NoError(t, err)
	require.Equal(t, f, got)
}

func TestJSONCodecDecodeInvalidJSON(t *testing.T) {
	_, err := JSONCodec{}.Decode([]byte("not json"))
	require.Error(t, err)
}
