// Stalemate detection
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
	stratepig "github.com/miapolis/stratepig-server"
)

// runOperations checks both sides for remaining legal moves and ends
// the game when someone is out of them.  At placement time the loss
// is announced as immediate.  Turn-free games skip the check.
func (s *Server) runOperations(room *Room, isPlacement bool) {
	if s.conf.IgnoreTurns {
		return
	}

	room.mu.RLock()
	var one, two *Player
	for _, seat := range room.clients {
		if seat.player == nil {
			continue
		}
		switch seat.player.Role {
		case stratepig.RoleOne:
			one = seat.player
		case stratepig.RoleTwo:
			two = seat.player
		}
	}
	if one == nil || two == nil {
		room.mu.RUnlock()
		return
	}
	local := append(stratepig.Board(nil), one.Board...)
	enemy := two.Board.Flip()
	room.mu.RUnlock()

	total := stratepig.Merge(local, enemy)
	localOK := hasMove(local, enemy, total)
	enemyOK := hasMove(enemy, local, total)
	if localOK && enemyOK {
		return
	}

	room.mu.Lock()
	room.ended = true
	room.mu.Unlock()

	winner := stratepig.RoleTie
	switch {
	case !localOK && enemyOK:
		winner = stratepig.RoleTwo
	case !enemyOK && localOK:
		winner = stratepig.RoleOne
	}
	s.broadcastWinImmediate(room, winner, stratepig.WinOutOfMoves, isPlacement)
}

// hasMove reports whether any piece on BOARD can still move: some
// orthogonal neighbor is either empty or held by the enemy.
func hasMove(board, enemy, total stratepig.Board) bool {
	for _, piece := range board {
		if !piece.Pig.Movable() {
			continue
		}
		for _, tile := range stratepig.Adjacent(piece.Location) {
			if _, occupied := total.PieceAt(tile); occupied {
				_, hostile := enemy.PieceAt(tile)
				_, friendly := board.PieceAt(tile)
				if hostile && !friendly {
					return true
				}
				continue
			}
			return true
		}
	}
	return false
}
