// Placement and movement handlers
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
	"errors"
	"time"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"
)

// handleSceneLoad tracks which scene a client has loaded and fires
// the synchronization points: both back in the lobby scene, or both
// in the game scene.
func (s *Server) handleSceneLoad(c *Client, body []byte) error {
	var req proto.FinishedSceneLoad
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	room := c.room

	room.mu.Lock()
	if c.player != nil && req.SceneIndex <= 2 {
		c.player.SceneIndex = req.SceneIndex
	}
	room.lastSeen = time.Now().Unix()
	var otherAt uint32
	hasOther := false
	if other := room.otherLocked(c); other != nil && other.player != nil {
		hasOther = true
		otherAt = other.player.SceneIndex
	}
	room.mu.Unlock()

	switch req.SceneIndex {
	case 2:
		if hasOther && otherAt == 2 || !hasOther && s.conf.OnePlayer {
			s.messageRoom(room, &proto.BothClientsLoadedGame{})
		}
	case 1:
		if hasOther && otherAt == 1 || !hasOther && s.conf.OnePlayer {
			s.roomPlayerAdd(room)
			s.sendGameInfo(room, nil)
		}
	}
	return nil
}

// handleGamePlayerReady accepts or retracts a placement.  Once both
// sides are ready (or the lone player in one-player mode), the boards
// are exchanged and the play phase begins.
func (s *Server) handleGamePlayerReady(c *Client, body []byte) error {
	var req proto.GamePlayerReady
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	room := c.room

	// Placements are only negotiable between the lobby countdown
	// running out and the boards being exchanged.
	room.mu.RLock()
	placing := room.inGame && room.phase == PhasePlacement
	room.mu.RUnlock()
	if !placing {
		return errors.New("game not in correct state to accept placement")
	}

	if !req.Ready {
		room.mu.Lock()
		c.player.Ready = false
		room.mu.Unlock()
		s.messageRoom(room, &proto.GamePlayerReadyState{ID: c.tag(), Ready: false})
		return nil
	}

	room.mu.RLock()
	cfg := room.settings.PigConfig
	room.mu.RUnlock()

	board, err := validatePlacement(req.Board, cfg)
	if err != nil {
		return err
	}

	room.mu.Lock()
	c.player.Ready = true
	c.player.InitializeSetup(board)
	var otherReady, hasOther bool
	if other := room.otherLocked(c); other != nil && other.player != nil {
		hasOther = true
		otherReady = other.player.Ready
	}
	if !hasOther && s.conf.OnePlayer {
		fake := NewPlayer(stratepig.RoleTwo)
		fake.Ready = true
		fake.InitializeSetup(board)
		room.fakeEnemy = fake
	}
	room.mu.Unlock()

	s.messageRoom(room, &proto.GamePlayerReadyState{ID: c.tag(), Ready: true})

	if hasOther && otherReady || !hasOther && s.conf.OnePlayer {
		s.registerBoardData(room)
	}
	return nil
}

// validatePlacement checks a submitted placement against the board
// rules and the room's piece roster.
func validatePlacement(placed []proto.PlacedPig, cfg [13]uint8) (stratepig.Board, error) {
	var board stratepig.Board
	var provided [13]int

	for _, pp := range placed {
		pig := stratepig.PigFrom(int32(pp.Pig))
		if pig == stratepig.Empty {
			return nil, errors.New("invalid pig")
		}
		if pp.Tile > stratepig.StartingTerritory ||
			!stratepig.InStartingBounds(int16(pp.Tile)) {
			return nil, errors.New("location out of bounds")
		}
		if _, taken := board.PieceAt(uint8(pp.Tile)); taken {
			return nil, errors.New("duplicate location placement")
		}
		board = append(board, stratepig.NewPiece(pig, uint8(pp.Tile)))
		provided[pig]++
	}

	for pig, amount := range cfg {
		if provided[pig] != int(amount) {
			return nil, errors.New("board config does not agree with settings")
		}
	}
	return board, nil
}

// registerBoardData exchanges the two placements, checks for an
// immediate stalemate and opens the play phase.
func (s *Server) registerBoardData(room *Room) {
	type placement struct {
		seat *Client
		locs []uint8
	}
	var sends []placement

	room.mu.Lock()
	for _, seat := range room.clients {
		var opp stratepig.Board
		if s.conf.OnePlayer {
			if room.fakeEnemy == nil {
				continue
			}
			opp = room.fakeEnemy.Board
		} else {
			other := room.otherLocked(seat)
			if other == nil || other.player == nil {
				continue
			}
			opp = other.player.Board
		}
		locs := make([]uint8, 0, len(opp))
		for _, piece := range opp {
			locs = append(locs, piece.Location)
		}
		sends = append(sends, placement{seat, locs})
	}
	room.mu.Unlock()

	for _, p := range sends {
		s.messageOne(p.seat, &proto.OpponentPigPlacement{Locations: p.locs})
	}

	s.runOperations(room, true)

	room.mu.Lock()
	room.phase = PhasePlay
	room.gameStart = time.Now().UnixMilli()
	buffer := int64(room.settings.BufferTime)
	for _, seat := range room.clients {
		if seat.player != nil {
			seat.player.Buffer = buffer
		}
	}
	ended := room.ended
	room.mu.Unlock()

	if !ended && !(s.conf.OnePlayer || s.conf.IgnoreTurns) {
		s.turnStart(room, false)
	}
}

// handleMove validates and applies one move, resolving combat when
// the target tile is held by the opponent.
func (s *Server) handleMove(c *Client, body []byte) error {
	var req proto.MoveRequest
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	room := c.room
	from, to := req.From, req.To

	room.mu.Lock()
	if room.phase != PhasePlay || room.ended {
		room.mu.Unlock()
		return errors.New("game not in correct state to allow move")
	}
	turn := room.currentTurn
	role := c.player.Role
	if !s.conf.IgnoreTurns && role != turn {
		room.mu.Unlock()
		return errors.New("not at correct turn to allow move")
	}
	if from == to || !stratepig.InBounds(int16(from)) || !stratepig.InBounds(int16(to)) {
		room.mu.Unlock()
		return errors.New("move data not in bounds")
	}

	// Both boards in the mover's coordinates.
	local := append(stratepig.Board(nil), c.player.Board...)
	var opp *Client
	var oppBoard stratepig.Board
	if s.conf.OnePlayer {
		if room.fakeEnemy == nil {
			room.mu.Unlock()
			return errMissingContext
		}
		oppBoard = room.fakeEnemy.Board.Flip()
	} else {
		opp = room.otherLocked(c)
		if opp == nil || opp.player == nil {
			room.mu.Unlock()
			return errMissingContext
		}
		oppBoard = opp.player.Board.Flip()
	}
	total := stratepig.Merge(local, oppBoard)

	initiator, ok := local.PieceAt(from)
	if !ok {
		room.mu.Unlock()
		return errors.New("no piece at from location")
	}
	if _, friend := local.PieceAt(to); friend {
		room.mu.Unlock()
		return errors.New("attempting attack on friend piece")
	}
	if !initiator.Pig.CanMove(from, to) {
		room.mu.Unlock()
		return errors.New("pig prevents moving in the desired way")
	}
	if stratepig.PigInPath(total, from, to) {
		room.mu.Unlock()
		return errors.New("pig found in between to and from locations")
	}

	target, attack := oppBoard.PieceAt(to)
	if !attack {
		local.Relocate(from, to)
		c.player.Board = local
		room.mu.Unlock()

		s.messageRoom(room, &proto.MoveData{Role: uint32(role), From: from, To: to})
	} else {
		result := initiator.Pig.Attack(target.Pig)
		flagCapture := target.Pig == stratepig.Flag
		if flagCapture {
			room.ended = true
		}

		switch result {
		case stratepig.BattleTie:
			local = local.Remove(from)
			oppBoard = oppBoard.Remove(to)
		case stratepig.BattleWin:
			oppBoard = oppBoard.Remove(to)
			local.Relocate(from, to)
		default:
			local = local.Remove(from)
		}
		c.player.Board = local
		if s.conf.OnePlayer {
			room.fakeEnemy.Board = oppBoard.Flip()
		} else {
			opp.player.Board = oppBoard.Flip()
		}
		room.mu.Unlock()

		if flagCapture {
			s.broadcastWin(room, role, stratepig.WinFlagCapture)
		}
		s.messageRoom(room, &proto.MoveDataAttack{
			Role:       uint32(role),
			From:       from,
			To:         to,
			Result:     int32(result),
			InitType:   uint32(initiator.Pig),
			TargetType: uint32(target.Pig),
		})
	}

	room.mu.Lock()
	ended := room.ended
	if !ended {
		room.currentTurn = turn.Opponent()
	}
	room.mu.Unlock()
	if ended {
		return nil
	}

	s.runOperations(room, false)

	room.mu.RLock()
	ended = room.ended
	room.mu.RUnlock()
	if !ended && !(s.conf.OnePlayer || s.conf.IgnoreTurns) {
		s.turnStart(room, attack)
	}
	return nil
}

// turnStart hands the turn to the seat holding it and settles the
// previous player's buffer spending.
func (s *Server) turnStart(room *Room, delay bool) {
	room.mu.Lock()
	defer room.mu.Unlock()

	if room.gameTimer != nil {
		room.gameTimer()
		room.gameTimer = nil
	}
	active := room.activeLocked()
	if active == nil || active.player == nil {
		return
	}
	room.startPlayerTurnLocked(s, delay, active.player.Buffer)

	// The start of a turn marks the end of the previous one; charge
	// any buffer time the previous player ran into.
	if room.lastBuffer != 0 {
		elapsed := time.Now().UnixMilli() - room.lastBuffer
		room.lastBuffer = 0
		if prev := room.otherLocked(active); prev != nil && prev.player != nil {
			prev.player.Buffer -= (elapsed + 999) / 1000
			if prev.player.Buffer < 0 {
				prev.player.Buffer = 0
			}
		}
	}
}

// handleSurrender concedes the game to the opponent.
func (s *Server) handleSurrender(c *Client, body []byte) error {
	room := c.room

	room.mu.Lock()
	if !room.inGame || room.ended {
		room.mu.Unlock()
		return errors.New("game not in correct state to allow surrender")
	}
	room.ended = true
	winner := c.player.Role.Opponent()
	room.mu.Unlock()

	s.broadcastWin(room, winner, stratepig.WinSurrender)
	return nil
}

// handlePlayAgain votes for a rematch; when both seats agree the
// room returns to the placement phase.
func (s *Server) handlePlayAgain(c *Client, body []byte) error {
	room := c.room

	room.mu.Lock()
	if !room.ended {
		room.mu.Unlock()
		return errors.New("game not in correct state to allow play again")
	}
	if c.player.PlayAgain {
		room.mu.Unlock()
		return errors.New("client already set to play again")
	}
	c.player.PlayAgain = true
	var otherAgain bool
	if other := room.otherLocked(c); other != nil && other.player != nil {
		otherAgain = other.player.PlayAgain
	}
	room.mu.Unlock()

	s.messageRoom(room, &proto.ClientPlayAgain{ID: c.tag()})

	if otherAgain {
		room.reset()
		room.storeSeen()
		room.mu.Lock()
		for _, seat := range room.clients {
			if seat.roomPlayer != nil {
				seat.roomPlayer.Ready = false
			}
			if seat.player != nil {
				seat.player.Reset()
			}
		}
		room.mu.Unlock()
	}
	return nil
}
