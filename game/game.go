// Room state and timers
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

// Package game holds the authoritative session engine: rooms, seats,
// the lobby negotiation and the in-game rule enforcement.
package game

import (
	"context"
	"sync"
	"time"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"
)

// Game phases within a started room.
const (
	PhasePlacement uint8 = 1
	PhasePlay      uint8 = 2
)

// Room is a single game room.  All mutable fields are guarded by mu;
// the seats (per-client lobby and game state) share the same lock, so
// cross-client reads within a room are safe.
type Room struct {
	mu sync.RWMutex

	id   int
	code string
	// seats in join order, at most two
	clients []*Client

	inGame bool
	phase  uint8
	ended  bool

	settings  Settings
	fakeEnemy *Player
	lastSeen  int64 // unix seconds

	currentTurn stratepig.Role
	roomTimer   context.CancelFunc
	gameTimer   context.CancelFunc
	lastBuffer  int64 // unix millis, zero when no buffer is running
	gameStart   int64 // unix millis
}

func newRoom(id int, code string, settings Settings) *Room {
	return &Room{
		id:          id,
		code:        code,
		phase:       PhasePlacement,
		settings:    settings,
		lastSeen:    time.Now().Unix(),
		currentTurn: stratepig.RoleOne,
	}
}

func (r *Room) ID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.id
}

func (r *Room) Code() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.code
}

// seats returns a snapshot of the current seats.
func (r *Room) seats() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Client(nil), r.clients...)
}

func (r *Room) storeSeen() {
	r.mu.Lock()
	r.lastSeen = time.Now().Unix()
	r.mu.Unlock()
}

// otherLocked returns the seat opposing C, or nil.  Callers hold mu.
func (r *Room) otherLocked(c *Client) *Client {
	for _, seat := range r.clients {
		if seat != c {
			return seat
		}
	}
	return nil
}

// activeLocked returns the seat holding the current turn.  Callers
// hold mu.
func (r *Room) activeLocked() *Client {
	for _, seat := range r.clients {
		if seat.player != nil && seat.player.Role == r.currentTurn {
			return seat
		}
	}
	return nil
}

// abortTimersLocked cancels the lobby countdown and the turn ticker.
// Callers hold mu.
func (r *Room) abortTimersLocked() {
	if r.roomTimer != nil {
		r.roomTimer()
		r.roomTimer = nil
	}
	if r.gameTimer != nil {
		r.gameTimer()
		r.gameTimer = nil
	}
}

// reset returns a finished room to its lobby state.  Seats keep
// their usernames and roles.
func (r *Room) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.currentTurn = stratepig.RoleOne
	r.phase = PhasePlacement
	r.inGame = false
	r.ended = false
	r.fakeEnemy = nil

	r.lastBuffer = 0
	r.gameStart = 0

	r.abortTimersLocked()
}

// startCountdown announces a lobby countdown and flips the room into
// the game once it runs out.  A running countdown is replaced.
func (r *Room) startCountdown(s *Server, seconds int) {
	dur := time.Duration(seconds) * time.Second
	now := time.Now()
	s.messageRoom(r, &proto.RoomTimerUpdate{
		Timestamp: now.Add(dur).UnixMilli(),
		ServerNow: uint64(now.UnixMilli()),
	})

	ctx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	if r.roomTimer != nil {
		r.roomTimer()
	}
	r.roomTimer = cancel
	r.mu.Unlock()

	go func() {
		if !pause(ctx, dur) {
			return
		}
		r.mu.Lock()
		r.inGame = true
		r.roomTimer = nil
		r.mu.Unlock()
	}()
}

// cancelCountdown stops a pending lobby countdown and reports
// whether one was running.
func (r *Room) cancelCountdown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.roomTimer == nil {
		return false
	}
	r.roomTimer()
	r.roomTimer = nil
	return true
}

// startPlayerTurnLocked spawns the turn ticker for the seat holding
// the current turn.  Callers hold mu and have cancelled the previous
// ticker; BUFFER is the active player's remaining buffer in seconds.
func (r *Room) startPlayerTurnLocked(s *Server, delay bool, buffer int64) {
	role := r.currentTurn
	turnSecs := int64(r.settings.TurnTime)

	ctx, cancel := context.WithCancel(context.Background())
	r.gameTimer = cancel

	go func() {
		if delay {
			// Give the clients time to play out the attack.
			if !pause(ctx, 4*time.Second) {
				return
			}
			if r.tickerCancelled(ctx) {
				return
			}
		}

		s.messageRoom(r, &proto.TurnInit{Role: uint32(role)})

		turnDur := time.Duration(turnSecs) * time.Second
		now := time.Now()
		s.messageRoom(r, &proto.TurnSecondUpdate{
			Role:      uint32(role),
			Timestamp: uint64(now.Add(turnDur).UnixMilli()),
			ServerNow: uint64(now.UnixMilli()),
			IsBuffer:  false,
		})
		if !pause(ctx, turnDur) {
			return
		}

		// A move landing right at expiry may have replaced this
		// ticker already; only enter buffer time if it still holds
		// the turn.
		now = time.Now()
		r.mu.Lock()
		if ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		r.lastBuffer = now.UnixMilli()
		r.mu.Unlock()

		bufferDur := time.Duration(buffer) * time.Second
		s.messageRoom(r, &proto.TurnSecondUpdate{
			Role:      uint32(role),
			Timestamp: uint64(now.Add(bufferDur).UnixMilli()),
			ServerNow: uint64(now.UnixMilli()),
			IsBuffer:  true,
		})
		if !pause(ctx, bufferDur) {
			return
		}

		r.mu.Lock()
		if ctx.Err() != nil {
			r.mu.Unlock()
			return
		}
		r.ended = true
		r.mu.Unlock()
		s.broadcastWin(r, role.Opponent(), stratepig.WinOutOfTime)
	}()
}

// tickerCancelled reports whether a ticker context has been
// cancelled, serialized against the canceller through mu.
func (r *Room) tickerCancelled(ctx context.Context) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return ctx.Err() != nil
}

// pause sleeps for DUR unless the context is cancelled first.
func pause(ctx context.Context, dur time.Duration) bool {
	timer := time.NewTimer(dur)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
