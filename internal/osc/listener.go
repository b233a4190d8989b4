package osc

import (
	"errors"
	"net"

	gosc "github.com/hypebeast/go-osc/osc"
	"go.uber.org/zap"

	"github.com/DoyleJ11/kat-overlay/internal/charset"
)

// Handler receives what the avatar reports back.
type Handler interface {
	SlotEcho(index int)
	AvatarChanged(avatarID string)
}

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

type Listener struct {
	conn    net.PacketConn
	addrs   Addresses
	handler Handler
	logger  *zap.Logger
}

// Listen binds addr right away so a bind failure surfaces before serving.
func Listen(addr string, addrs Addresses, logger *zap.Logger) (*Listener, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, err
	}
	l := &Listener{
		conn:   conn,
		addrs:  addrs,
		logger: logger,
	}
	return l, nil
}

func (l *Listener) Addr() net.Addr { return l.conn.LocalAddr() }

// Serve hands inbound messages to h and blocks until Close. Datagrams that
// do not parse as OSC are logged and skipped.
func (l *Listener) Serve(h Handler) error {
	l.handler = h
	buf := make([]byte, maxDatagram)
	for {
		n, from, err := l.conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		packet, err := gosc.ParsePacket(string(buf[:n]))
		if err != nil {
			l.logger.Debug("dropping malformed osc packet", zap.Stringer("from", from), zap.Int("bytes", n), zap.Error(err))
			continue
		}
		l.Dispatch(packet)
	}
}

func (l *Listener) Close() error {
	return l.conn.Close()
}

// Dispatch implements gosc.Dispatcher.
func (l *Listener) Dispatch(packet gosc.Packet) {
	switch p := packet.(type) {
	case *gosc.Message:
		l.handle(p)
	case *gosc.Bundle:
		for _, m := range p.Messages {
			l.handle(m)
		}
		for _, b := range p.Bundles {
			l.Dispatch(b)
		}
	}
}

func (l *Listener) handle(msg *gosc.Message) {
	if i, ok := l.addrs.SlotIndex(msg.Address); ok {
		if len(msg.Arguments) > 0 {
			if v, ok := msg.Arguments[0].(float32); ok {
				l.logger.Debug("slot echo", zap.Int("slot", i), zap.Uint8("code", charset.Code(v)))
			}
		}
		l.handler.SlotEcho(i)
		return
	}

	if l.addrs.IsAvatarChange(msg.Address) {
		var id string
		if len(msg.Arguments) > 0 {
			id, _ = msg.Arguments[0].(string)
		}
		l.logger.Info("avatar changed", zap.String("avatar", id))
		l.handler.AvatarChanged(id)
	}
}
