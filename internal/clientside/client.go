package clientside

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"catch/internal/playerinput"
	"catch/internal/tickstate"
	"catch/internal/transport"
	"catch/internal/wiremsg"
)

// Client is the connect handshake plus the thin transport wrapper the rest
// of the reference client drives: Service surfaces control messages,
// PopNextTick surfaces buffered snapshots.
type Client struct {
	transport  transport.Transport
	peer       transport.PeerID
	yourID     uint32
	gameInfo   wiremsg.GameInfo
	disconnected bool

	ticks []bufferedTick
}

type bufferedTick struct {
	recvTime time.Time
	tick     tickOrError
}

// Connect opens a transport connection to host:port and completes the
// WishConnect/AcceptConnect handshake within timeout.
func Connect(ctx context.Context, timeout time.Duration, host string, port int, name string) (*Client, error) {
	d, err := transport.Dial(ctx, fmt.Sprintf("ws://%s:%d/ws", host, port), timeout)
	if err != nil {
		return nil, err
	}
	c := &Client{transport: d, peer: transport.ServerPeerID}

	var buf bytes.Buffer
	msg := wiremsg.ClientMessage{Kind: wiremsg.ClientWishConnect, Name: name}
	msg.Encode(&buf)
	if err := c.transport.Send(c.peer, transport.ChannelMessages, buf.Bytes()); err != nil {
		return nil, err
	}

	if err := c.FinishConnecting(timeout); err != nil {
		return nil, err
	}
	return c, nil
}

// FinishConnecting blocks until AcceptConnect arrives on the Messages
// channel, or timeout elapses. Any other event before acceptance is an
// error — the handshake allows nothing else.
func (c *Client) FinishConnecting(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return transport.ErrConnectTimeout
		}
		ev, err := c.transport.Service(remaining)
		if err != nil {
			return err
		}
		switch ev.Kind {
		case transport.EventNone:
			continue
		case transport.EventDisconnect:
			return fmt.Errorf("clientside: disconnected during connect handshake")
		case transport.EventReceive:
			if ev.Channel != transport.ChannelMessages {
				return fmt.Errorf("clientside: unexpected tick data before AcceptConnect")
			}
			m, err := wiremsg.DecodeServerMessage(bytes.NewReader(ev.Data))
			if err != nil {
				return err
			}
			if m.Kind != wiremsg.ServerAcceptConnect {
				return fmt.Errorf("clientside: expected AcceptConnect, got %d", m.Kind)
			}
			c.yourID = m.YourID
			c.gameInfo = m.GameInfo
			return nil
		}
	}
}

// YourID returns the player_id the server assigned during Connect.
func (c *Client) YourID() uint32 { return c.yourID }

// GameInfo returns the map/tick-rate/entity-registry info sent at accept.
func (c *Client) GameInfo() wiremsg.GameInfo { return c.gameInfo }

type tickOrError struct {
	data []byte
}

// Service drains one transport event non-blocking: Messages-channel frames
// decode to a ServerMessage and are returned to the caller; Ticks-channel
// frames are appended to the tick buffer and Service recurses to consume
// the next event rather than surfacing them directly.
func (c *Client) Service() (wiremsg.ServerMessage, error) {
	for {
		ev, err := c.transport.Service(0)
		if err != nil {
			return wiremsg.ServerMessage{}, err
		}
		switch ev.Kind {
		case transport.EventNone:
			return wiremsg.ServerMessage{}, nil
		case transport.EventDisconnect:
			c.disconnected = true
			return wiremsg.ServerMessage{}, fmt.Errorf("clientside: disconnected")
		case transport.EventReceive:
			switch ev.Channel {
			case transport.ChannelMessages:
				return wiremsg.DecodeServerMessage(bytes.NewReader(ev.Data))
			case transport.ChannelTicks:
				c.ticks = append(c.ticks, bufferedTick{recvTime: time.Now(), tick: tickOrError{data: ev.Data}})
				continue
			}
		}
	}
}

// NumTicks reports how many ticks are waiting in the buffer.
func (c *Client) NumTicks() int { return len(c.ticks) }

// PopNextTick dequeues and decodes the oldest buffered tick, FIFO.
func (c *Client) PopNextTick() (time.Time, tickstate.Tick, bool) {
	if len(c.ticks) == 0 {
		return time.Time{}, tickstate.Tick{}, false
	}
	bt := c.ticks[0]
	c.ticks = c.ticks[1:]
	t, err := tickstate.DecodeTick(bytes.NewReader(bt.tick.data))
	if err != nil {
		return bt.recvTime, tickstate.Tick{}, false
	}
	return bt.recvTime, t, true
}

// SendInput sends one TimedPlayerInput sample on the Messages channel.
func (c *Client) SendInput(input playerinput.TimedPlayerInput) error {
	var buf bytes.Buffer
	msg := wiremsg.ClientMessage{Kind: wiremsg.ClientPlayerInput, Input: input}
	msg.Encode(&buf)
	return c.transport.Send(c.peer, transport.ChannelMessages, buf.Bytes())
}

// AckTick tells the server which tick the client has applied, via
// StartingTick, so the server can track client-side progress.
func (c *Client) AckTick(tickNumber uint32) error {
	var buf bytes.Buffer
	msg := wiremsg.ClientMessage{Kind: wiremsg.ClientStartingTick, Tick: tickNumber}
	msg.Encode(&buf)
	return c.transport.Send(c.peer, transport.ChannelMessages, buf.Bytes())
}

// Disconnected reports whether the transport has reported a disconnect.
func (c *Client) Disconnected() bool { return c.disconnected }

// Close shuts down the underlying transport.
func (c *Client) Close() error { return c.transport.Close() }
