// Message catalog
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

package proto

// Server to client message ids.
const (
	SrvWelcome byte = iota + 1
	SrvKicked
	SrvClientDisconnect
	SrvRoomPlayerAdd
	SrvRoomPlayerReadyState
	SrvFailCreateGame
	SrvErrJoinGame
	SrvClientInfo
	SrvGameInfo
	SrvUpdatedPigIcon
	SrvSettingsValueChanged
	SrvPigItemValueChanged
	SrvPigConfigValueChanged
	SrvRoomTimerUpdate
	SrvBothClientsLoadedGame
	srvGameTimerUpdate // unused, id reserved by the client
	SrvGamePlayerReadyState
	SrvOpponentPigPlacement
	SrvMoveData
	SrvTurnInit
	SrvTurnSecondUpdate
	SrvWin
	SrvEnemyPieceData
	SrvClientPlayAgain
)

// Client to server message ids.
const (
	CliGameRequest byte = iota + 1
	CliUpdateReadyState
	CliUpdatePigIcon
	CliUpdateSettingsValue
	CliUpdatePigItemValue
	CliFinishedSceneLoad
	CliGamePlayerReady
	CliMove
	CliSurrender
	CliLeaveGame
	CliPlayAgain
)

// PigCount pairs a piece kind with how many of it each player
// fields.
type PigCount struct {
	Pig   uint32
	Count uint32
}

type Welcome struct {
	Version string
	MyID    string
}

func (m *Welcome) Marshal() *Packet {
	return NewWriter(SrvWelcome).
		String(m.Version).
		String(m.MyID).
		Packet()
}

type Kicked struct {
	Msg string
}

func (m *Kicked) Marshal() *Packet {
	return NewWriter(SrvKicked).String(m.Msg).Packet()
}

type ClientDisconnect struct {
	ID        string
	Timestamp uint64
}

func (m *ClientDisconnect) Marshal() *Packet {
	return NewWriter(SrvClientDisconnect).
		String(m.ID).
		U64(m.Timestamp).
		Packet()
}

type RoomPlayerAdd struct {
	ID          string
	ClientCount int32
	Username    string
	Ready       bool
	Icon        int32
}

func (m *RoomPlayerAdd) Marshal() *Packet {
	return NewWriter(SrvRoomPlayerAdd).
		String(m.ID).
		I32(m.ClientCount).
		String(m.Username).
		Bool(m.Ready).
		I32(m.Icon).
		Packet()
}

type RoomPlayerReadyState struct {
	ID    string
	Ready bool
}

func (m *RoomPlayerReadyState) Marshal() *Packet {
	return NewWriter(SrvRoomPlayerReadyState).
		String(m.ID).
		Bool(m.Ready).
		Packet()
}

type FailCreateGame struct{}

func (m *FailCreateGame) Marshal() *Packet {
	return NewWriter(SrvFailCreateGame).Packet()
}

type ErrJoinGame struct {
	Msg string
}

func (m *ErrJoinGame) Marshal() *Packet {
	return NewWriter(SrvErrJoinGame).String(m.Msg).Packet()
}

type ClientInfo struct {
	Role uint32
}

func (m *ClientInfo) Marshal() *Packet {
	return NewWriter(SrvClientInfo).U32(m.Role).Packet()
}

type GameInfo struct {
	Code          string
	GameMode      int32
	PlacementTime uint32
	TurnTime      uint32
	BufferTime    uint32
	PigConfig     []PigCount
}

func (m *GameInfo) Marshal() *Packet {
	w := NewWriter(SrvGameInfo).
		String(m.Code).
		I32(m.GameMode).
		U32(m.PlacementTime).
		U32(m.TurnTime).
		U32(m.BufferTime).
		Count(len(m.PigConfig))
	for _, pc := range m.PigConfig {
		w.U32(pc.Pig).U32(pc.Count)
	}
	return w.Packet()
}

type UpdatedPigIcon struct {
	ID   string
	Icon int32
}

func (m *UpdatedPigIcon) Marshal() *Packet {
	return NewWriter(SrvUpdatedPigIcon).
		String(m.ID).
		I32(m.Icon).
		Packet()
}

type SettingsValueChanged struct {
	ID    uint32
	Value uint32
}

func (m *SettingsValueChanged) Marshal() *Packet {
	return NewWriter(SrvSettingsValueChanged).
		U32(m.ID).
		U32(m.Value).
		Packet()
}

type PigItemValueChanged struct {
	Pig    uint32
	Amount uint32
}

func (m *PigItemValueChanged) Marshal() *Packet {
	return NewWriter(SrvPigItemValueChanged).
		U32(m.Pig).
		U32(m.Amount).
		Packet()
}

type PigConfigValueChanged struct {
	TurnTime   uint32
	BufferTime uint32
	PigConfig  []PigCount
}

func (m *PigConfigValueChanged) Marshal() *Packet {
	w := NewWriter(SrvPigConfigValueChanged).
		U32(m.TurnTime).
		U32(m.BufferTime).
		Count(len(m.PigConfig))
	for _, pc := range m.PigConfig {
		w.U32(pc.Pig).U32(pc.Count)
	}
	return w.Packet()
}

// RoomTimerUpdate announces the lobby countdown deadline.  A
// negative timestamp cancels a previously announced countdown.
type RoomTimerUpdate struct {
	Timestamp int64
	ServerNow uint64
}

func (m *RoomTimerUpdate) Marshal() *Packet {
	return NewWriter(SrvRoomTimerUpdate).
		I128(m.Timestamp).
		U128(m.ServerNow).
		Packet()
}

type BothClientsLoadedGame struct{}

func (m *BothClientsLoadedGame) Marshal() *Packet {
	return NewWriter(SrvBothClientsLoadedGame).Packet()
}

type GamePlayerReadyState struct {
	ID    string
	Ready bool
}

func (m *GamePlayerReadyState) Marshal() *Packet {
	return NewWriter(SrvGamePlayerReadyState).
		String(m.ID).
		Bool(m.Ready).
		Packet()
}

type OpponentPigPlacement struct {
	Locations []uint8
}

func (m *OpponentPigPlacement) Marshal() *Packet {
	w := NewWriter(SrvOpponentPigPlacement).Count(len(m.Locations))
	for _, loc := range m.Locations {
		w.U8(loc)
	}
	return w.Packet()
}

// MoveData reports a plain move.  The bundle flag tells the client
// whether attack data follows; plain moves always set it.
type MoveData struct {
	Role uint32
	From uint8
	To   uint8
}

func (m *MoveData) Marshal() *Packet {
	return NewWriter(SrvMoveData).
		U32(m.Role).
		U8(m.From).
		U8(m.To).
		Bool(true).
		Packet()
}

// MoveDataAttack shares its id with MoveData and appends the combat
// resolution.
type MoveDataAttack struct {
	Role       uint32
	From       uint8
	To         uint8
	Result     int32
	InitType   uint32
	TargetType uint32
}

func (m *MoveDataAttack) Marshal() *Packet {
	return NewWriter(SrvMoveData).
		U32(m.Role).
		U8(m.From).
		U8(m.To).
		Bool(false).
		I32(m.Result).
		U32(m.InitType).
		U32(m.TargetType).
		Packet()
}

type TurnInit struct {
	Role uint32
}

func (m *TurnInit) Marshal() *Packet {
	return NewWriter(SrvTurnInit).U32(m.Role).Packet()
}

type TurnSecondUpdate struct {
	Role      uint32
	Timestamp uint64
	ServerNow uint64
	IsBuffer  bool
}

func (m *TurnSecondUpdate) Marshal() *Packet {
	return NewWriter(SrvTurnSecondUpdate).
		U32(m.Role).
		U128(m.Timestamp).
		U128(m.ServerNow).
		Bool(m.IsBuffer).
		Packet()
}

type Win struct {
	Role      uint32
	WinType   uint32
	Elapsed   uint64
	Immediate bool
}

func (m *Win) Marshal() *Packet {
	return NewWriter(SrvWin).
		U32(m.Role).
		U32(m.WinType).
		U64(m.Elapsed).
		Bool(m.Immediate).
		Packet()
}

// EnemyPiece reveals one opposing piece after a game ends: the tile
// it was first placed on and its kind.
type EnemyPiece struct {
	ID  uint8
	Pig uint8
}

type EnemyPieceData struct {
	Data []EnemyPiece
}

func (m *EnemyPieceData) Marshal() *Packet {
	w := NewWriter(SrvEnemyPieceData).Count(len(m.Data))
	for _, p := range m.Data {
		w.U8(p.ID).U8(p.Pig)
	}
	return w.Packet()
}

type ClientPlayAgain struct {
	ID string
}

func (m *ClientPlayAgain) Marshal() *Packet {
	return NewWriter(SrvClientPlayAgain).String(m.ID).Packet()
}

// PigCountRequest is a signed piece-count pair as the client sends
// it; counts are validated before use.
type PigCountRequest struct {
	Pig   int32
	Count int32
}

// GameRequest asks to host or join a room.  Hosts may append their
// lobby settings; IncludeFull marks their presence.
type GameRequest struct {
	MyID          string
	IsHosting     bool
	Username      string
	Icon          int32
	Code          string
	IncludeFull   bool
	GameMode      int32
	PlacementSecs int32
	TurnSecs      int32
	BufferSecs    int32
	PigConfig     []PigCountRequest
}

func (m *GameRequest) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.IsHosting = r.Bool()
	m.Username = r.String()
	m.Icon = r.I32()
	// Hosting requests carry no join code.
	m.Code = r.StringOpt()
	m.IncludeFull = r.Bool()
	if m.IncludeFull {
		m.GameMode = r.I32()
		m.PlacementSecs = r.I32()
		m.TurnSecs = r.I32()
		m.BufferSecs = r.I32()
		n := r.Count()
		for i := 0; i < n && r.Err() == nil; i++ {
			m.PigConfig = append(m.PigConfig, PigCountRequest{
				Pig:   r.I32(),
				Count: r.I32(),
			})
		}
	}
	return r.Close()
}

type UpdateReadyState struct {
	MyID  string
	Ready bool
}

func (m *UpdateReadyState) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.Ready = r.Bool()
	return r.Close()
}

type UpdatePigIcon struct {
	MyID string
	Icon uint32
}

func (m *UpdatePigIcon) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.Icon = r.U32()
	return r.Close()
}

type UpdateSettingsValue struct {
	MyID       string
	SettingsID uint32
	Increased  bool
}

func (m *UpdateSettingsValue) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.SettingsID = r.U32()
	m.Increased = r.Bool()
	return r.Close()
}

type UpdatePigItemValue struct {
	MyID      string
	Pig       uint32
	Increased bool
}

func (m *UpdatePigItemValue) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.Pig = r.U32()
	m.Increased = r.Bool()
	return r.Close()
}

type FinishedSceneLoad struct {
	MyID       string
	SceneIndex uint32
}

func (m *FinishedSceneLoad) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.SceneIndex = r.U32()
	return r.Close()
}

// PlacedPig is one entry of a submitted placement: the piece kind
// and the tile it stands on, both in the sender's coordinates.
type PlacedPig struct {
	Pig  uint32
	Tile uint32
}

// GamePlayerReady toggles placement readiness.  The board only
// accompanies the ready transition.
type GamePlayerReady struct {
	MyID  string
	Ready bool
	Board []PlacedPig
}

func (m *GamePlayerReady) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.Ready = r.Bool()
	if r.Err() == nil && r.pos < len(r.buf) {
		n := r.Count()
		for i := 0; i < n && r.Err() == nil; i++ {
			m.Board = append(m.Board, PlacedPig{
				Pig:  r.U32(),
				Tile: r.U32(),
			})
		}
	}
	return r.Close()
}

type MoveRequest struct {
	MyID string
	From uint8
	To   uint8
}

func (m *MoveRequest) Unmarshal(body []byte) error {
	r := NewReader(body)
	m.MyID = r.String()
	m.From = r.U8()
	m.To = r.U8()
	return r.Close()
}

// EmbeddedID extracts the leading client id most client messages
// start with; messages with empty bodies have none.
func EmbeddedID(body []byte) (string, bool) {
	if len(body) == 0 {
		return "", false
	}
	r := NewReader(body)
	id := r.String()
	if r.Err() != nil {
		return "", false
	}
	return id, true
}
