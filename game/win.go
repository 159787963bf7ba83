// Game over broadcasting
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
	"time"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"
)

// broadcastWin announces the outcome and reveals each side's hidden
// pieces to the other.  Callers have already marked the room ended.
func (s *Server) broadcastWin(room *Room, role stratepig.Role, winType stratepig.WinType) {
	s.broadcastWinImmediate(room, role, winType, winType.Immediate())
}

func (s *Server) broadcastWinImmediate(room *Room, role stratepig.Role, winType stratepig.WinType, immediate bool) {
	type reveal struct {
		seat *Client
		data []proto.EnemyPiece
	}
	var reveals []reveal

	room.mu.Lock()
	// A decided game stops the clocks.
	room.abortTimersLocked()
	room.lastSeen = time.Now().Unix()

	start := room.gameStart
	if start == 0 {
		start = time.Now().UnixMilli()
	}
	elapsed := uint64(time.Now().UnixMilli() - start)

	for _, seat := range room.clients {
		var opp *Player
		if len(room.clients) == 1 && s.conf.OnePlayer {
			opp = room.fakeEnemy
		} else if len(room.clients) == 2 {
			if other := room.otherLocked(seat); other != nil {
				opp = other.player
			}
		}
		if opp == nil {
			continue
		}
		data := make([]proto.EnemyPiece, 0, len(opp.InitBoard))
		for _, piece := range opp.InitBoard {
			data = append(data, proto.EnemyPiece{
				ID:  piece.ID,
				Pig: uint8(piece.Pig),
			})
		}
		reveals = append(reveals, reveal{seat, data})
	}
	room.mu.Unlock()

	s.messageRoom(room, &proto.Win{
		Role:      uint32(role),
		WinType:   uint32(winType),
		Elapsed:   elapsed,
		Immediate: immediate,
	})
	for _, r := range reveals {
		s.messageOne(r.seat, &proto.EnemyPieceData{Data: r.data})
	}
}
