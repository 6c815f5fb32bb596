package transport

import (
	"context"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

func listenTCP(addr string) (net.Listener, error) { return net.Listen("tcp", addr) }

// wsPeer wraps one gorilla/websocket connection. gorilla requires a single
// writer per connection, so Send serializes through writeMu; userData holds
// the opaque per-peer slot (a PlayerId, once the server accepts the peer).
type wsPeer struct {
	id       PeerID
	conn     *websocket.Conn
	ip       string
	writeMu  sync.Mutex
	userData atomic.Value
}

func (p *wsPeer) send(channel ChannelID, data []byte) error {
	frame := make([]byte, 1+len(data))
	frame[0] = byte(channel)
	copy(frame[1:], data)

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return p.conn.WriteMessage(websocket.BinaryMessage, frame)
}

// hub is the shared peer registry and event queue both Listener and Dialer
// build on: register/unregister channels plus an event queue, adapted from
// JSON broadcast to framed binary per-peer delivery.
type hub struct {
	mu     sync.RWMutex
	peers  map[PeerID]*wsPeer
	nextID uint64

	events     chan Event
	register   chan *wsPeer
	unregister chan *wsPeer
}

func newHub(eventBuffer int) *hub {
	h := &hub{
		peers:      make(map[PeerID]*wsPeer),
		events:     make(chan Event, eventBuffer),
		register:   make(chan *wsPeer, 16),
		unregister: make(chan *wsPeer, 16),
	}
	go h.run()
	return h
}

func (h *hub) run() {
	for {
		select {
		case p, ok := <-h.register:
			if !ok {
				return
			}
			h.mu.Lock()
			h.peers[p.id] = p
			h.mu.Unlock()
			h.events <- Event{Kind: EventConnect, Peer: p.id, IP: p.ip}

		case p, ok := <-h.unregister:
			if !ok {
				return
			}
			h.mu.Lock()
			delete(h.peers, p.id)
			h.mu.Unlock()
			h.events <- Event{Kind: EventDisconnect, Peer: p.id, IP: p.ip}
		}
	}
}

func (h *hub) addPeer(conn *websocket.Conn, ip string) *wsPeer {
	id := PeerID(atomic.AddUint64(&h.nextID, 1))
	p := &wsPeer{id: id, conn: conn, ip: ip}
	h.register <- p
	h.readLoop(p)
	return p
}

// readLoop parses the one-byte channel prefix off each binary frame and
// pushes a Receive event; any read error (including a clean close) ends the
// peer's session.
func (h *hub) readLoop(p *wsPeer) {
	go func() {
		defer func() { h.unregister <- p }()
		for {
			msgType, data, err := p.conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.BinaryMessage || len(data) < 1 {
				continue
			}
			h.events <- Event{Kind: EventReceive, Peer: p.id, Channel: ChannelID(data[0]), Data: data[1:]}
		}
	}()
}

func (h *hub) service(timeout time.Duration) (Event, error) {
	if timeout <= 0 {
		select {
		case e := <-h.events:
			return e, nil
		default:
			return Event{Kind: EventNone}, nil
		}
	}
	select {
	case e := <-h.events:
		return e, nil
	case <-time.After(timeout):
		return Event{Kind: EventNone}, nil
	}
}

func (h *hub) send(peer PeerID, channel ChannelID, data []byte) error {
	h.mu.RLock()
	p, ok := h.peers[peer]
	h.mu.RUnlock()
	if !ok {
		return ErrUnknownPeer
	}
	return p.send(channel, data)
}

func (h *hub) userData(peer PeerID) (any, bool) {
	h.mu.RLock()
	p, ok := h.peers[peer]
	h.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return p.userData.Load(), true
}

func (h *hub) setUserData(peer PeerID, value any) bool {
	h.mu.RLock()
	p, ok := h.peers[peer]
	h.mu.RUnlock()
	if !ok {
		return false
	}
	p.userData.Store(value)
	return true
}

func (h *hub) closeAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, p := range h.peers {
		p.conn.Close()
		delete(h.peers, id)
	}
	return nil
}

// Listener is the server-side Transport: an HTTP server upgrading incoming
// connections to WebSocket, one peer per connection.
type Listener struct {
	hub          *hub
	httpServer   *http.Server
	upgrader     websocket.Upgrader
	peerLimit    int
	ln           net.Listener
	checkConnCap CheckConnCap
}

// Addr returns the address the Listener is bound to, useful when Listen was
// called with a ":0" port and the caller needs to discover which port the
// OS assigned.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// CheckOrigin reports whether an Origin header is acceptable for a new
// connection. Replaced at construction to match the deployment's CORS
// policy; defaults to accepting any origin (suitable for same-host testing
// only).
type CheckOrigin func(origin string) bool

// CheckConnCap reports whether a new connection from ip should be admitted,
// ahead of the upgrade handshake. Used for per-IP connection caps distinct
// from the overall peerLimit.
type CheckConnCap func(ip string) bool

// Listen starts a Listener on addr (host:port), upgrading every request to
// path "/ws" and rejecting connections past peerLimit.
func Listen(addr string, peerLimit int, checkOrigin CheckOrigin) (*Listener, error) {
	return ListenWithConnCap(addr, peerLimit, checkOrigin, nil)
}

// ListenWithConnCap is Listen plus a per-IP admission hook, checked before
// the WebSocket upgrade and released on disconnect by the caller.
func ListenWithConnCap(addr string, peerLimit int, checkOrigin CheckOrigin, checkConnCap CheckConnCap) (*Listener, error) {
	if checkOrigin == nil {
		checkOrigin = func(string) bool { return true }
	}

	l := &Listener{
		hub:          newHub(1024),
		peerLimit:    peerLimit,
		checkConnCap: checkConnCap,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return checkOrigin(r.Header.Get("Origin")) },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", l.handleUpgrade)
	l.httpServer = &http.Server{Addr: addr, Handler: mux}

	ln, err := listenTCP(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: listen %s", addr)
	}
	l.ln = ln
	go func() {
		if err := l.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("⚠️ transport: server loop exited: %v", err)
		}
	}()

	return l, nil
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	l.hub.mu.RLock()
	count := len(l.hub.peers)
	l.hub.mu.RUnlock()
	if l.peerLimit > 0 && count >= l.peerLimit {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if l.checkConnCap != nil && !l.checkConnCap(ip) {
		http.Error(w, "too many connections from your address", http.StatusTooManyRequests)
		return
	}

	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️ transport: upgrade failed: %v", err)
		return
	}
	l.hub.addPeer(conn, ip)
}

// Service implements Transport.
func (l *Listener) Service(timeout time.Duration) (Event, error) { return l.hub.service(timeout) }

// Send implements Transport.
func (l *Listener) Send(peer PeerID, channel ChannelID, data []byte) error {
	return l.hub.send(peer, channel, data)
}

// UserData implements Transport.
func (l *Listener) UserData(peer PeerID) (any, bool) { return l.hub.userData(peer) }

// SetUserData implements Transport.
func (l *Listener) SetUserData(peer PeerID, value any) bool { return l.hub.setUserData(peer, value) }

// Close implements Transport.
func (l *Listener) Close() error {
	err := l.hub.closeAll()
	if l.httpServer != nil {
		l.httpServer.Close()
	}
	return err
}

// Dialer is the client-side Transport: exactly one peer, representing the
// server, identified by ServerPeerID.
type Dialer struct {
	hub *hub
}

// ServerPeerID is the fixed PeerID a Dialer uses to address the server.
const ServerPeerID PeerID = 1

// Dial opens a WebSocket connection to url (e.g. "ws://host:port/ws") within
// timeout.
func Dial(ctx context.Context, url string, timeout time.Duration) (*Dialer, error) {
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "transport: dial %s", url)
	}

	d := &Dialer{hub: newHub(256)}
	d.hub.nextID = uint64(ServerPeerID) - 1
	d.hub.addPeer(conn, "server")
	return d, nil
}

// Service implements Transport.
func (d *Dialer) Service(timeout time.Duration) (Event, error) { return d.hub.service(timeout) }

// Send implements Transport.
func (d *Dialer) Send(peer PeerID, channel ChannelID, data []byte) error {
	return d.hub.send(peer, channel, data)
}

// UserData implements Transport.
func (d *Dialer) UserData(peer PeerID) (any, bool) { return d.hub.userData(peer) }

// SetUserData implements Transport.
func (d *Dialer) SetUserData(peer PeerID, value any) bool { return d.hub.setUserData(peer, value) }

// Close implements Transport.
func (d *Dialer) Close() error { return d.hub.closeAll() }
