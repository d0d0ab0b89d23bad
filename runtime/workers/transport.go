package workers

import (
	"chatapp/contract"
	"chatapp/domain/event"
	apperrors "chatapp/errors"
	"chatapp/wire"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"
)

// readBufferSize covers the largest datagram UDP can carry.
const readBufferSize = 64 * 1024

// TransportWorker bridges the coordinator and the network.
// It owns the socket: nobody else reads, writes or closes it.
//
// The loop alternates between waiting at most commandTimeout for one command
// and one socket read bounded by readTimeout, so it never blocks for longer
// than one polling interval on either side.
type TransportWorker struct {
	log            *slog.Logger
	conn           contract.PacketConn
	remote         net.Addr
	codec          wire.Codec
	commands       <-chan event.TransportIn
	received       chan<- event.TransportOut
	commandTimeout time.Duration
	readTimeout    time.Duration
	buf            []byte
	closeOnce      sync.Once
}

func NewTransportWorker(
	log *slog.Logger,
	conn contract.PacketConn,
	remote net.Addr,
	codec wire.Codec,
	channels event.Channels,
	commandTimeout, readTimeout time.Duration,
) *TransportWorker {
	return &TransportWorker{
		log:            log,
		conn:           conn,
		remote:         remote,
		codec:          codec,
		commands:       channels.ToTransport,
		received:       channels.FromTransport,
		commandTimeout: commandTimeout,
		readTimeout:    readTimeout,
		buf:            make([]byte, readBufferSize),
	}
}

// Bind opens the local UDP socket. Called before any worker starts so a bind
// failure stops the process early.
func Bind(address string) (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", apperrors.ErrBind, address, err)
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", apperrors.ErrBind, address, err)
	}
	return conn, nil
}

// Resolve turns the configured peer address into a UDP address.
func Resolve(address string) (*net.UDPAddr, error) {
	raddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", apperrors.ErrResolve, address, err)
	}
	return raddr, nil
}

// Run polls commands and datagrams until a Close command or the end of ctx.
// The socket is released on every exit path.
func (w *TransportWorker) Run(ctx context.Context) error {
	defer w.closeConn()
	w.log.Info("Transport started", "local", w.conn.LocalAddr(), "remote", w.remote, "codec", w.codec.Name())

	timer := time.NewTimer(w.commandTimeout)
	defer timer.Stop()

	for {
		done, err := w.pollCommand(ctx, timer)
		if err != nil || done {
			return err
		}
		done, err = w.pollSocket(ctx)
		if err != nil || done {
			return err
		}
	}
}

// pollCommand handles at most one command. It reports true once the worker
// must stop.
func (w *TransportWorker) pollCommand(ctx context.Context, timer *time.Timer) (bool, error) {
	timer.Reset(w.commandTimeout)
	select {
	case <-ctx.Done():
		return true, ctx.Err()
	case <-timer.C:
		return false, nil
	case cmd, ok := <-w.commands:
		return w.handle(cmd, ok)
	}
}

func (w *TransportWorker) handle(cmd event.TransportIn, ok bool) (bool, error) {
	if !ok {
		return true, fmt.Errorf("%w: transport commands", apperrors.ErrChannelClosed)
	}
	switch c := cmd.(type) {
	case event.Send:
		w.send(c)
		return false, nil
	case event.Close:
		w.log.Info("Transport closing")
		return true, nil
	default:
		return true, fmt.Errorf("unexpected transport command %T", cmd)
	}
}

// send is best effort: an encoding or write failure drops the datagram.
func (w *TransportWorker) send(cmd event.Send) {
	payload, err := w.codec.Encode(wire.Message{Sender: cmd.Sender, Body: cmd.Body})
	if err != nil {
		w.log.Warn("Outbound message dropped", "error", err)
		return
	}
	if _, err := w.conn.WriteTo(payload, w.remote); err != nil {
		w.log.Warn("Datagram send failed", "remote", w.remote, "error", err)
	}
}

// pollSocket performs one bounded read. Timeouts, read errors and malformed
// packets are dropped; only a closed socket stops the worker.
func (w *TransportWorker) pollSocket(ctx context.Context) (bool, error) {
	if err := w.conn.SetReadDeadline(time.Now().Add(w.readTimeout)); err != nil {
		return true, fmt.Errorf("set read deadline: %w", err)
	}
	n, from, err := w.conn.ReadFrom(w.buf)
	if err != nil {
		var netErr net.Error
		switch {
		case errors.As(err, &netErr) && netErr.Timeout():
		case errors.Is(err, net.ErrClosed):
			return true, fmt.Errorf("read: %w", err)
		default:
			w.log.Debug("Datagram read failed", "error", err)
		}
		return false, nil
	}

	// The source address is not checked: any datagram that decodes is accepted.
	message, err := w.codec.Decode(w.buf[:n])
	if err != nil {
		w.log.Debug("Malformed datagram dropped", "from", from, "size", n, "error", err)
		return false, nil
	}
	return w.deliver(ctx, event.Received{Sender: message.Sender, Body: message.Body})
}

// deliver hands a received message to the coordinator. Commands keep being
// served meanwhile: the coordinator may itself be waiting on the transport,
// and a Close must get through even if the message never will.
func (w *TransportWorker) deliver(ctx context.Context, received event.Received) (bool, error) {
	for {
		select {
		case w.received <- received:
			return false, nil
		case <-ctx.Done():
			return true, ctx.Err()
		case cmd, ok := <-w.commands:
			if done, err := w.handle(cmd, ok); done || err != nil {
				if err == nil {
					w.log.Debug("Inbound message abandoned on close", "sender", received.Sender)
				}
				return true, err
			}
		}
	}
}

func (w *TransportWorker) closeConn() {
	w.closeOnce.Do(func() {
		if err := w.conn.Close(); err != nil {
			w.log.Warn("Socket close failed", "error", err)
		}
	})
}
