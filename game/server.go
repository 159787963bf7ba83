// Connection handling and message dispatch
//
// Copyright (c) 2021, 2022  The stratepig-server authors
//
// This file is part of stratepig-server.
//
// stratepig-server is free software: you can redistribute it and/or
// modify it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// stratepig-server is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with stratepig-server. If not, see
// <http://www.gnu.org/licenses/>

package game

import (
	"io"
	"log"
	"sync"
	"time"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/conf"
	"github.com/miapolis/stratepig-server/proto"
)

// message is anything that can be framed for the wire.
type message interface {
	Marshal() *proto.Packet
}

type handlerFunc func(s *Server, c *Client, body []byte) error

// guard is the state a message requires of its sender before the
// handler runs.
type guard uint8

const (
	guardNone guard = iota
	// sender must sit in a room
	guardRoom
	// sender must sit in a room and have a player object
	guardGame
	// like guardGame, and the game must be in the play phase and
	// not yet decided
	guardGameStrict
)

type handlerEntry struct {
	name  string
	guard guard
	fn    handlerFunc
}

// Server owns all connected clients and rooms and dispatches their
// messages.  It implements proto.Handler.
//
// A client's room, roomPlayer and player fields are written only by
// the connection's own goroutine, holding the room lock whenever the
// seat is visible to others; other goroutines reach seats through a
// room's seat list under the same lock.
type Server struct {
	conf  *conf.Conf
	rooms *Registry

	cmu     sync.Mutex
	clients map[int]*Client
	freeIDs []int
	nextID  int

	handlers map[byte]handlerEntry
}

func NewServer(c *conf.Conf) *Server {
	s := &Server{
		conf:    c,
		rooms:   NewRegistry(c.Room.Max),
		clients: make(map[int]*Client),
		nextID:  1,
	}
	s.handlers = map[byte]handlerEntry{
		proto.CliGameRequest:         {"GameRequestSent", guardNone, (*Server).handleGameRequest},
		proto.CliUpdateReadyState:    {"UpdateReadyState", guardRoom, (*Server).handleReadyState},
		proto.CliUpdatePigIcon:       {"UpdatePigIcon", guardRoom, (*Server).handleUpdateIcon},
		proto.CliUpdateSettingsValue: {"UpdateSettingsValue", guardRoom, (*Server).handleSettingsValue},
		proto.CliUpdatePigItemValue:  {"UpdatePigItemValue", guardRoom, (*Server).handlePigItemUpdate},
		proto.CliFinishedSceneLoad:   {"FinishedSceneLoad", guardRoom, (*Server).handleSceneLoad},
		proto.CliGamePlayerReady:     {"GamePlayerReadyData", guardGame, (*Server).handleGamePlayerReady},
		proto.CliMove:                {"Move", guardGameStrict, (*Server).handleMove},
		proto.CliSurrender:           {"Surrender", guardGame, (*Server).handleSurrender},
		proto.CliLeaveGame:           {"LeaveGame", guardGame, (*Server).handleClientLeave},
		proto.CliPlayAgain:           {"PlayAgain", guardGame, (*Server).handlePlayAgain},
	}
	go s.pruneCycle()
	return s
}

// Connect adopts a fresh network connection: it assigns an id, greets
// the client and spawns its read loop.  Ids of departed clients are
// reissued first.
func (s *Server) Connect(rwc io.ReadWriteCloser) {
	s.cmu.Lock()
	var id int
	if len(s.freeIDs) > 0 {
		id = s.freeIDs[0]
		s.freeIDs = s.freeIDs[1:]
	} else {
		id = s.nextID
		s.nextID++
	}
	pcli := proto.MakeClient(id, rwc)
	cli := newClient(pcli)
	s.clients[id] = cli
	s.cmu.Unlock()

	s.messageOne(cli, &proto.Welcome{
		Version: stratepig.Version,
		MyID:    cli.tag(),
	})
	go pcli.Handle(s)
}

func (s *Server) client(id int) *Client {
	s.cmu.Lock()
	defer s.cmu.Unlock()
	return s.clients[id]
}

// Packet dispatches one decoded frame.  It runs on the sending
// connection's goroutine, so one client's messages never race each
// other.
func (s *Server) Packet(pc *proto.Client, pkt *proto.Packet) {
	c := s.client(pc.ID())
	if c == nil {
		return
	}
	ent, ok := s.handlers[pkt.ID]
	if !ok {
		stratepig.Debug.Printf("client %d sent unknown message %d", c.id, pkt.ID)
		return
	}

	if err := s.checkGuard(ent.guard, c, pkt.Body); err != nil {
		log.Printf("Guard failed for client %d (%s): %s", c.id, ent.name, err)
		return
	}

	err := ent.fn(s, c, pkt.Body)
	if s.conf.LogOutput {
		log.Printf("Client %d: %s ==> %v", c.id, ent.name, err)
	} else if err != nil {
		stratepig.Debug.Printf("client %d: %s: %s", c.id, ent.name, err)
	}
}

// checkGuard enforces the per-message preconditions.  Messages with a
// body must echo the sender's own id.
func (s *Server) checkGuard(g guard, c *Client, body []byte) error {
	if g == guardNone {
		return nil
	}
	if id, ok := proto.EmbeddedID(body); ok && id != c.tag() {
		return errWrongID
	}

	room := c.room
	if room == nil || s.rooms.Get(room.ID()) != room {
		return errMissingContext
	}
	if g == guardRoom {
		return nil
	}

	room.mu.RLock()
	defer room.mu.RUnlock()
	if c.player == nil {
		return errMissingContext
	}
	if g == guardGameStrict && (room.phase != PhasePlay || room.ended) {
		return errMissingContext
	}
	return nil
}

// Disconnected cleans up after a dead connection and recycles its id.
func (s *Server) Disconnected(pc *proto.Client) {
	c := s.client(pc.ID())
	if c == nil {
		return
	}
	s.leaveRoom(c)

	s.cmu.Lock()
	delete(s.clients, c.id)
	s.freeIDs = append(s.freeIDs, c.id)
	s.cmu.Unlock()
}

// leaveRoom unseats a client.  The remaining player keeps the room,
// inherits the host role if needed, and is told about the departure.
// Emptied rooms linger until the reaper collects them.
func (s *Server) leaveRoom(c *Client) {
	room := c.room
	if room == nil {
		return
	}
	c.room = nil

	room.mu.Lock()
	for i, seat := range room.clients {
		if seat == c {
			room.clients = append(room.clients[:i], room.clients[i+1:]...)
			break
		}
	}
	room.inGame = false
	room.abortTimersLocked()
	room.lastSeen = time.Now().Unix()

	remaining := len(room.clients)
	if c.player != nil && c.player.Role == stratepig.RoleOne && remaining == 1 {
		if stay := room.clients[0].player; stay != nil {
			stay.Role = stratepig.RoleOne
		}
	}
	c.roomPlayer = nil
	c.player = nil
	room.mu.Unlock()

	if remaining >= 1 {
		s.messageRoom(room, &proto.ClientDisconnect{ID: c.tag(), Timestamp: 0})
	}
}

// messageOne sends to a single client.
func (s *Server) messageOne(c *Client, m message) {
	pkt := m.Marshal()
	if s.conf.LogOutput {
		log.Printf("OUTBOUND(%d) => message %d", c.id, pkt.ID)
	}
	c.conn.Send(pkt)
}

// messageRoom sends to every seat of a room.  It takes the room lock
// itself; callers must not hold it.
func (s *Server) messageRoom(r *Room, m message) {
	pkt := m.Marshal()
	for _, seat := range r.seats() {
		if s.conf.LogOutput {
			log.Printf("OUTBOUND(%d) => message %d", seat.id, pkt.ID)
		}
		seat.conn.Send(pkt)
	}
}

// pruneCycle periodically collects rooms that sat idle outside a
// running game for too long.
func (s *Server) pruneCycle() {
	interval := time.Duration(s.conf.Room.PruneInterval) * time.Second
	for {
		time.Sleep(interval)
		s.pruneOnce(time.Now().Unix())
	}
}

// pruneOnce sweeps the registry once, taking the current time as an
// argument.
func (s *Server) pruneOnce(now int64) {
	age := int64(s.conf.Room.PruneAge)

	var prune []*Room
	for _, room := range s.rooms.All() {
		room.mu.RLock()
		idle := (!room.inGame || room.ended) && now > room.lastSeen+age
		room.mu.RUnlock()
		if idle {
			prune = append(prune, room)
		}
	}

	for _, room := range prune {
		s.rooms.Remove(room.ID())
		s.messageRoom(room, &proto.Kicked{Msg: msgRoomPruned})
	}
	log.Printf("Pruned %d room(s) | (%d)", len(prune), s.rooms.Len())
}

// Stats reports the number of connected clients and live rooms.
func (s *Server) Stats() (clients, rooms int) {
	s.cmu.Lock()
	clients = len(s.clients)
	s.cmu.Unlock()
	return clients, s.rooms.Len()
}
