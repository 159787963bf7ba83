// Seat state
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
	"strconv"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"
)

// Conn is what the engine needs from a network connection.  The real
// implementation is proto.Client; tests substitute a recorder.
type Conn interface {
	ID() int
	Send(pkt *proto.Packet) error
	Kill()
}

// Client is a connected player as the engine sees it: the connection
// plus lobby and game state once seated.  The latter two are guarded
// by the room's lock.
type Client struct {
	conn Conn
	id   int

	room       *Room
	roomPlayer *RoomPlayer
	player     *Player
}

func newClient(conn Conn) *Client {
	return &Client{conn: conn, id: conn.ID()}
}

func (c *Client) ID() int { return c.id }

// tag is the client id as it appears on the wire.
func (c *Client) tag() string { return strconv.Itoa(c.id) }

// RoomPlayer is a seat's lobby state.
type RoomPlayer struct {
	Username string
	Ready    bool
	Icon     int32
}

// Player is a seat's in-game state.
type Player struct {
	Role       stratepig.Role
	SceneIndex uint32
	Ready      bool
	PlayAgain  bool

	// Buffer is the remaining reserve time in seconds.
	Buffer int64

	// Board is the live position; InitBoard the placement as first
	// registered, kept for the post-game reveal.
	Board     stratepig.Board
	InitBoard stratepig.Board
}

func NewPlayer(role stratepig.Role) *Player {
	return &Player{Role: role, SceneIndex: 1}
}

// InitializeSetup records the accepted placement.
func (p *Player) InitializeSetup(board stratepig.Board) {
	p.Board = append(stratepig.Board(nil), board...)
	p.InitBoard = append(stratepig.Board(nil), board...)
}

// Reset readies the seat for a rematch.  Role and scene survive; the
// players stay in the game scene between rounds.
func (p *Player) Reset() {
	p.Ready = false
	p.PlayAgain = false
	p.Buffer = 0
	p.Board = nil
	p.InitBoard = nil
}
