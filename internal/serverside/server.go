package serverside

import (
	"bytes"
	"log"
	"math/rand"
	"sync/atomic"
	"time"

	"catch/internal/api"
	"catch/internal/config"
	"catch/internal/ecs"
	"catch/internal/entitytype"
	"catch/internal/event"
	"catch/internal/mapmodel"
	"catch/internal/mathutil"
	"catch/internal/movement"
	"catch/internal/netcomp"
	"catch/internal/playerinput"
	"catch/internal/spatial"
	"catch/internal/tickstate"
	"catch/internal/transport"
	"catch/internal/wiremsg"
)

const bouncyEnemyCount = 6

// keyframeIntervalTicks bounds how long a client can go on delta ticks
// before a full resync, so a dropped or corrupted delta (or a client that
// joined mid-stream) can't desync forever.
const keyframeIntervalTicks = 120

// Server is the authoritative game server: world storage, the connect
// handshake, and the fixed-tick-rate simulation loop. A single struct owning
// all mutable state, advanced by one tick() call per frame from a single
// goroutine.
type Server struct {
	transport transport.Transport
	world     *World
	gameMap   *mapmodel.Map
	walls     []movement.Wall
	gameInfo  wiremsg.GameInfo
	cfg       config.AppConfig

	spatialGrid *spatial.Grid

	connLimiter *api.WebSocketRateLimiter

	players      map[uint32]*Player
	peerToPlayer map[transport.PeerID]uint32
	nextPlayerID uint32

	tickNumber uint32
	dt         float32
	accum      float64

	motion map[uint32]*movement.PlayerMotion
	pendingInput map[uint32]playerinput.TimedPlayerInput

	eventBuckets map[uint32][]event.GameEvent

	lastSent map[uint32]tickstate.TickState

	startTime time.Time
	stats     atomic.Value // api.Stats
}

// Stats implements api.StatsProvider via a lock-free snapshot refreshed once
// per tick, avoiding lock contention between the simulation goroutine and
// HTTP poll requests.
func (s *Server) Stats() api.Stats {
	if v := s.stats.Load(); v != nil {
		return v.(api.Stats)
	}
	return api.Stats{}
}

func (s *Server) refreshStats() {
	players := 0
	for _, p := range s.players {
		if p.State == Normal {
			players++
		}
	}
	entities := 0
	s.world.Each(func(ecs.Handle) { entities++ })
	s.stats.Store(api.Stats{
		TickNumber:  s.tickNumber,
		PlayerCount: players,
		EntityCount: entities,
		UptimeS:     time.Since(s.startTime).Seconds(),
	})
}

// NewServer builds a Server bound to the given map, ready to Start.
func NewServer(cfg config.AppConfig, gameMap *mapmodel.Map) *Server {
	s := &Server{
		gameMap:      gameMap,
		cfg:          cfg,
		world:        NewWorld(cfg.Limits.MaxPlayers + cfg.Limits.MaxProjectiles + cfg.Limits.MaxEnemies + cfg.Limits.MaxItems),
		gameInfo:     wiremsg.NewGameInfo(gameMap.Name(), uint32(cfg.Sim.TicksPerSecond)),
		connLimiter:  api.NewWebSocketRateLimiter(10),
		players:      make(map[uint32]*Player),
		peerToPlayer: make(map[transport.PeerID]uint32),
		nextPlayerID: 1,
		dt:           1.0 / float32(cfg.Sim.TicksPerSecond),
		motion:       make(map[uint32]*movement.PlayerMotion),
		pendingInput: make(map[uint32]playerinput.TimedPlayerInput),
		eventBuckets: make(map[uint32][]event.GameEvent),
		lastSent:     make(map[uint32]tickstate.TickState),
	}

	for _, seg := range gameMap.BlockingSegments() {
		s.walls = append(s.walls, movement.Wall{A: seg.A, B: seg.B})
	}
	s.spatialGrid = spatial.NewGrid(
		float32(gameMap.Width()*gameMap.TileWidth()),
		float32(gameMap.Height()*gameMap.TileHeight()),
		cfg.Spatial.GridCellSize,
		cfg.Limits.MaxPlayers+cfg.Limits.MaxProjectiles+cfg.Limits.MaxEnemies+cfg.Limits.MaxItems,
	)
	return s
}

// Start opens the transport listener and begins serving. run() blocks the
// calling goroutine; callers that need to do other work should invoke this
// in its own goroutine.
func (s *Server) Start(addr string, peerLimit int) error {
	l, err := transport.ListenWithConnCap(addr, peerLimit, api.IsAllowedOrigin, s.connLimiter.Allow)
	if err != nil {
		return err
	}
	s.transport = l
	s.startTime = time.Now()
	log.Printf("🎮 server listening on %s", addr)
	s.run()
	return nil
}

// run is the server's single cooperative event loop: drain transport events
// non-blockingly, tick on schedule, sleep briefly.
func (s *Server) run() {
	last := time.Now()
	for {
		for {
			ev, err := s.transport.Service(0)
			if err != nil {
				log.Printf("⚠️ transport service error: %v", err)
				break
			}
			if ev.Kind == transport.EventNone {
				break
			}
			s.handleTransportEvent(ev)
		}

		now := time.Now()
		elapsed := now.Sub(last).Seconds()
		last = now
		s.accum += elapsed

		interval := 1.0 / float64(s.cfg.Sim.TicksPerSecond)
		for s.accum >= interval {
			start := time.Now()
			s.tick()
			api.RecordTick(time.Since(start))
			s.accum -= interval
		}

		time.Sleep(time.Millisecond)
	}
}

func (s *Server) handleTransportEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnect:
		id := s.nextPlayerID
		s.nextPlayerID++
		s.peerToPlayer[ev.Peer] = id
		s.transport.SetUserData(ev.Peer, id)
		s.players[id] = &Player{ID: id, Peer: ev.Peer, State: Connecting}

	case transport.EventDisconnect:
		s.connLimiter.Release(ev.IP)
		id, ok := s.peerToPlayer[ev.Peer]
		if !ok {
			return
		}
		delete(s.peerToPlayer, ev.Peer)
		p := s.players[id]
		if p == nil {
			return
		}
		if p.State == Normal {
			s.broadcastServerMessage(wiremsg.ServerMessage{Kind: wiremsg.ServerPlayerDisconnect, ID: id})
			var owned []ecs.Handle
			s.world.Each(func(h ecs.Handle) {
				if s.world.OwnerOf(h) == id {
					owned = append(owned, h)
				}
			})
			for _, h := range owned {
				for otherID := range s.players {
					s.eventBuckets[otherID] = append(s.eventBuckets[otherID], event.NewRemoveEntity(s.world.NetID(h)))
				}
				s.world.Despawn(h)
			}
		}
		delete(s.motion, id)
		delete(s.pendingInput, id)
		delete(s.players, id)
		delete(s.lastSent, id)

	case transport.EventReceive:
		s.handleReceive(ev)
	}
}

func (s *Server) handleReceive(ev transport.Event) {
	id, ok := s.peerToPlayer[ev.Peer]
	if !ok {
		return
	}
	p := s.players[id]
	if p == nil {
		return
	}

	if ev.Channel != transport.ChannelMessages {
		return
	}
	msg, err := wiremsg.DecodeClientMessage(bytes.NewReader(ev.Data))
	if err != nil {
		log.Printf("⚠️ malformed client message from player %d: %v", id, err)
		return
	}

	if p.State == Connecting {
		if msg.Kind != wiremsg.ClientWishConnect {
			log.Printf("⚠️ dropping non-WishConnect message from connecting player %d", id)
			return
		}
		s.acceptPlayer(p, msg.Name)
		return
	}

	switch msg.Kind {
	case wiremsg.ClientPlayerInput:
		s.pendingInput[id] = msg.Input.Clamp()
	case wiremsg.ClientStartingTick:
		// Acknowledged for client-progress tracking; no server-side action needed.
	case wiremsg.ClientPong:
	}
}

func (s *Server) acceptPlayer(p *Player, name string) {
	p.Name = name
	p.IsNew = true
	p.RespawnTime = 0
	s.motion[p.ID] = &movement.PlayerMotion{}

	// Broadcast PlayerConnect while p is still Connecting, so
	// broadcastServerMessage's Normal-only fan-out excludes the new peer
	// itself; only after that does p become eligible to receive it, and only
	// then does AcceptConnect go out as its guaranteed-first message.
	s.broadcastServerMessage(wiremsg.ServerMessage{Kind: wiremsg.ServerPlayerConnect, ID: p.ID, Name: name})
	p.State = Normal

	var buf bytes.Buffer
	reply := wiremsg.ServerMessage{Kind: wiremsg.ServerAcceptConnect, YourID: p.ID, GameInfo: s.gameInfo}
	reply.Encode(&buf)
	s.transport.Send(p.Peer, transport.ChannelMessages, buf.Bytes())
}

func (s *Server) broadcastServerMessage(msg wiremsg.ServerMessage) {
	var buf bytes.Buffer
	msg.Encode(&buf)
	data := buf.Bytes()
	for _, p := range s.players {
		if p.State != Normal {
			continue
		}
		s.transport.Send(p.Peer, transport.ChannelMessages, data)
	}
}

// spawnPlayerEntity creates a controlled entity for p at a random spawn
// rectangle with a 2.5s invulnerability window.
func (s *Server) spawnPlayerEntity(p *Player) {
	rects := s.gameMap.SpawnRects()
	var center mathutil.Vec2
	if len(rects) > 0 {
		center = rects[rand.Intn(len(rects))].Center()
	}
	h := s.world.Spawn(entitytype.Player, p.ID)
	s.world.Position.Insert(h, netcomp.Position{P: center})
	s.world.Orientation.Insert(h, netcomp.Orientation{Angle: 0})
	s.world.LinearVelocity.Insert(h, netcomp.LinearVelocity{V: mathutil.Vec2{}})
	s.world.Shape.Insert(h, netcomp.Shape{Kind: netcomp.ShapeCircle, Radius: 20})
	s.world.PlayerState.Insert(h, netcomp.PlayerState{})
	s.world.FullPlayerState.Insert(h, netcomp.FullPlayerState{})
	p.ControlledEntity = h
	p.Invulnerable = 2.5
}

func (s *Server) emitCreateEntityCatchup(p *Player) {
	s.world.Each(func(h ecs.Handle) {
		s.eventBuckets[p.ID] = append(s.eventBuckets[p.ID], event.NewCreateEntity(s.world.NetID(h), uint16(s.world.TypeOf(h)), s.world.OwnerOf(h)))
	})
	p.IsNew = false
}
