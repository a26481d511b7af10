package frame

import (
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"github.com/Aid-On/nagare"
	"github.com/yudhasubki/netpool"
)

// netpoolStream reads BinaryCodec-framed messages off a single connection
// borrowed from a netpool.Netpool, returning it to the pool (tagged dead on
// any read error, per the pool's own Put(conn, err) contract) once closed.
type netpoolStream struct {
	pool   *netpool.Netpool
	conn   net.Conn
	err    error
	closed bool
}

// FromNetPool borrows a connection from pool and returns a Stream[Frame]
// reading BinaryCodec-framed messages off it until the connection errors,
// the peer sends a KindEnd frame, or the stream is closed.
func FromNetPool(pool *netpool.Netpool) (nagare.Stream[Frame], error) {
	conn, err := pool.Get()
	if err != nil {
		return nil, nagare.NewError(nagare.SourceFault, err)
	}
	return &netpoolStream{pool: pool, conn: conn}, nil
}

func (s *netpoolStream) Next(ctx context.Context) (Frame, error) {
	var zero Frame
	if dl, ok := ctx.Deadline(); ok {
		_ = s.conn.SetReadDeadline(dl)
	} else {
		_ = s.conn.SetReadDeadline(time.Time{})
	}

	header := make([]byte, binaryHeaderSize)
	if _, err := io.ReadFull(s.conn, header); err != nil {
		s.err = err
		if errors.Is(err, io.EOF) {
			return zero, nagare.End
		}
		return zero, nagare.NewError(nagare.SourceFault, err)
	}
	n := binary.BigEndian.Uint32(header[9:13])
	payload := make([]byte, n)
	if n > 0 {
		if _, err := io.ReadFull(s.conn, payload); err != nil {
			s.err = err
			return zero, nagare.NewError(nagare.SourceFault, err)
		}
	}
	f := Frame{Seq: binary.BigEndian.Uint64(header[1:9]), Kind: Kind(header[0]), Payload: payload}
	switch f.Kind {
	case KindEnd:
		return zero, nagare.End
	case KindError:
		return zero, nagare.NewError(nagare.ProtocolFault, errors.New(string(f.Payload)))
	default:
		return f, nil
	}
}

func (s *netpoolStream) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.pool.Put(s.conn, s.err)
}
