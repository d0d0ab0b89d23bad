package workers

import (
	"chatapp/domain/event"
	apperrors "chatapp/errors"
	"chatapp/mocks"
	"chatapp/wire"
	"context"
	"errors"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const pollInterval = 10 * time.Millisecond

type loopback struct {
	conn     *net.UDPConn
	peer     net.PacketConn
	channels event.Channels
	codec    wire.Codec
	worker   *TransportWorker
}

// newLoopback binds a transport and a fake peer on 127.0.0.1.
func newLoopback(t *testing.T, bufferSize int) *loopback {
	t.Helper()
	req := require.New(t)

	conn, err := Bind("127.0.0.1:0")
	req.NoError(err)
	peer, err := net.ListenPacket("udp", "127.0.0.1:0")
	req.NoError(err)
	t.Cleanup(func() { _ = peer.Close() })

	codec, err := wire.CBOR()
	req.NoError(err)
	channels := event.NewChannels(bufferSize)
	return &loopback{
		conn:     conn,
		peer:     peer,
		channels: channels,
		codec:    codec,
		worker:   NewTransportWorker(testLogger(), conn, peer.LocalAddr(), codec, channels, pollInterval, pollInterval),
	}
}

func (l *loopback) readPeer(t *testing.T) wire.Message {
	t.Helper()
	req := require.New(t)
	buf := make([]byte, readBufferSize)
	req.NoError(l.peer.SetReadDeadline(time.Now().Add(waitTimeout)))
	n, _, err := l.peer.ReadFrom(buf)
	req.NoError(err)
	message, err := l.codec.Decode(buf[:n])
	req.NoError(err)
	return message
}

func (l *loopback) writePeer(t *testing.T, payload []byte) {
	t.Helper()
	_, err := l.peer.WriteTo(payload, l.conn.LocalAddr())
	require.NoError(t, err)
}

func (l *loopback) encode(t *testing.T, sender, body string) []byte {
	t.Helper()
	payload, err := l.codec.Encode(wire.Message{Sender: sender, Body: body})
	require.NoError(t, err)
	return payload
}

func TestTransport_Send(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)
	done := runAsync(func() error { return l.worker.Run(context.Background()) })

	// When the coordinator asks to send a message
	l.channels.ToTransport <- event.Send{Sender: "me", Body: "hi"}

	// Then the peer gets the datagram
	req.Equal(wire.Message{Sender: "me", Body: "hi"}, l.readPeer(t))

	l.channels.ToTransport <- event.Close{}
	req.NoError(receive(t, done))
}

func TestTransport_Receive(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)
	done := runAsync(func() error { return l.worker.Run(context.Background()) })

	// When the peer sends a valid packet
	l.writePeer(t, l.encode(t, "Alex", "yo"))

	// Then the coordinator gets it
	req.Equal(event.Received{Sender: "Alex", Body: "yo"}, receive(t, l.channels.FromTransport))

	l.channels.ToTransport <- event.Close{}
	req.NoError(receive(t, done))
}

func TestTransport_MalformedPacketsAreDropped(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)
	done := runAsync(func() error { return l.worker.Run(context.Background()) })

	// Given foreign or broken datagrams
	l.writePeer(t, []byte{0xde, 0xad, 0xbe, 0xef})
	l.writePeer(t, []byte(`{"sender":"Alex","body":"yo"}`))
	l.writePeer(t, []byte{})
	// And a valid one afterwards
	l.writePeer(t, l.encode(t, "Alex", "still here"))

	// Then only the valid packet reaches the coordinator
	req.Equal(event.Received{Sender: "Alex", Body: "still here"}, receive(t, l.channels.FromTransport))
	requireEmpty(t, l.channels.FromTransport)

	// And the transport is still alive
	l.channels.ToTransport <- event.Send{Sender: "me", Body: "ping"}
	req.Equal(wire.Message{Sender: "me", Body: "ping"}, l.readPeer(t))

	l.channels.ToTransport <- event.Close{}
	req.NoError(receive(t, done))
}

func TestTransport_AcceptsAnySource(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)
	done := runAsync(func() error { return l.worker.Run(context.Background()) })

	// Given a stranger that is not the configured peer
	stranger, err := net.ListenPacket("udp", "127.0.0.1:0")
	req.NoError(err)
	defer stranger.Close()

	_, err = stranger.WriteTo(l.encode(t, "Mallory", "trust me"), l.conn.LocalAddr())
	req.NoError(err)

	// Then the self-reported sender is taken as is
	req.Equal(event.Received{Sender: "Mallory", Body: "trust me"}, receive(t, l.channels.FromTransport))

	l.channels.ToTransport <- event.Close{}
	req.NoError(receive(t, done))
}

func TestTransport_Close_IsPromptAndReleasesSocket(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)
	done := runAsync(func() error { return l.worker.Run(context.Background()) })

	// When the transport is closed with no traffic at all
	start := time.Now()
	l.channels.ToTransport <- event.Close{}

	// Then it stops within a few polling intervals
	req.NoError(receive(t, done))
	req.Less(time.Since(start), 20*pollInterval)

	// And the socket is released
	_, err := l.conn.WriteTo([]byte("x"), l.peer.LocalAddr())
	req.ErrorIs(err, net.ErrClosed)
}

func TestTransport_ContextCanceled_ReleasesSocket(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(func() error { return l.worker.Run(ctx) })
	cancel()

	req.ErrorIs(receive(t, done), context.Canceled)
	_, err := l.conn.WriteTo([]byte("x"), l.peer.LocalAddr())
	req.ErrorIs(err, net.ErrClosed)
}

func TestTransport_ServesCommandsWhileDelivering(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 0)
	done := runAsync(func() error { return l.worker.Run(context.Background()) })

	// Given a received message the coordinator does not pick up yet
	l.writePeer(t, l.encode(t, "Alex", "yo"))
	time.Sleep(5 * pollInterval)

	// When the coordinator sends meanwhile, the transport still serves it
	l.channels.ToTransport <- event.Send{Sender: "me", Body: "hi"}
	req.Equal(wire.Message{Sender: "me", Body: "hi"}, l.readPeer(t))

	// And the pending message is delivered afterwards
	req.Equal(event.Received{Sender: "Alex", Body: "yo"}, receive(t, l.channels.FromTransport))

	// When another message is never picked up, Close still gets through
	l.writePeer(t, l.encode(t, "Alex", "ignored"))
	time.Sleep(5 * pollInterval)
	l.channels.ToTransport <- event.Close{}
	req.NoError(receive(t, done))
}

func TestTransport_SendFailuresAreDropped(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	remote := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7878}
	conn := mocks.NewMockPacketConn(ctrl)
	conn.EXPECT().LocalAddr().Return(&net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 7879}).AnyTimes()
	conn.EXPECT().SetReadDeadline(gomock.Any()).Return(nil).AnyTimes()
	// Given a socket with no traffic and a refused destination
	conn.EXPECT().ReadFrom(gomock.Any()).Return(0, nil, os.ErrDeadlineExceeded).AnyTimes()
	conn.EXPECT().WriteTo(gomock.Any(), remote).Return(0, errors.New("connection refused")).Times(1)
	conn.EXPECT().Close().Return(nil).Times(1)

	codec, err := wire.CBOR()
	req.NoError(err)
	channels := event.NewChannels(8)
	worker := NewTransportWorker(testLogger(), conn, remote, codec, channels, pollInterval, pollInterval)
	done := runAsync(func() error { return worker.Run(context.Background()) })

	// When a message too large for a datagram is sent, it never reaches the socket
	channels.ToTransport <- event.Send{Sender: "me", Body: strings.Repeat("x", wire.MaxDatagramSize)}
	// And a write failure does not stop the transport
	channels.ToTransport <- event.Send{Sender: "me", Body: "hi"}
	channels.ToTransport <- event.Close{}

	req.NoError(receive(t, done))
	requireEmpty(t, channels.FromTransport)
}

func TestTransport_ReadErrorsAreTransient(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	codec, err := wire.CBOR()
	req.NoError(err)
	payload, err := codec.Encode(wire.Message{Sender: "Alex", Body: "yo"})
	req.NoError(err)

	conn := mocks.NewMockPacketConn(ctrl)
	conn.EXPECT().LocalAddr().Return(&net.UDPAddr{}).AnyTimes()
	conn.EXPECT().SetReadDeadline(gomock.Any()).Return(nil).AnyTimes()
	// Given a read error followed by a valid datagram
	gomock.InOrder(
		conn.EXPECT().ReadFrom(gomock.Any()).Return(0, nil, errors.New("connection reset by peer")),
		conn.EXPECT().ReadFrom(gomock.Any()).DoAndReturn(func(p []byte) (int, net.Addr, error) {
			return copy(p, payload), &net.UDPAddr{}, nil
		}),
		conn.EXPECT().ReadFrom(gomock.Any()).Return(0, nil, os.ErrDeadlineExceeded).AnyTimes(),
	)
	conn.EXPECT().Close().Return(nil).Times(1)

	channels := event.NewChannels(8)
	worker := NewTransportWorker(testLogger(), conn, &net.UDPAddr{}, codec, channels, pollInterval, pollInterval)
	done := runAsync(func() error { return worker.Run(context.Background()) })

	// Then the error is skipped and the datagram delivered
	req.Equal(event.Received{Sender: "Alex", Body: "yo"}, receive(t, channels.FromTransport))

	channels.ToTransport <- event.Close{}
	req.NoError(receive(t, done))
}

func TestTransport_ClosedSocket_IsFatal(t *testing.T) {
	req := require.New(t)
	l := newLoopback(t, 8)

	// Given a socket closed behind the transport's back
	req.NoError(l.conn.Close())

	req.ErrorIs(l.worker.Run(context.Background()), net.ErrClosed)
}

func TestBind_InvalidAddress(t *testing.T) {
	req := require.New(t)

	_, err := Bind("not an address")
	req.ErrorIs(err, apperrors.ErrBind)

	_, err = Resolve("nowhere:notaport")
	req.ErrorIs(err, apperrors.ErrResolve)
}
