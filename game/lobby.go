// Lobby handlers
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
	"fmt"
	"strings"
	"time"

	stratepig "github.com/miapolis/stratepig-server"
	"github.com/miapolis/stratepig-server/proto"
)

const maxUsernameLength = 16

// handleGameRequest seats a client, creating a room when hosting and
// joining by code otherwise.
func (s *Server) handleGameRequest(c *Client, body []byte) error {
	var req proto.GameRequest
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	if req.MyID != c.tag() {
		return errWrongID
	}
	if strings.TrimSpace(req.Username) == "" || len(req.Username) > maxUsernameLength {
		s.messageOne(c, &proto.FailCreateGame{})
		return errors.New("bad username")
	}
	if req.Icon < 0 || req.Icon >= 13 {
		s.messageOne(c, &proto.FailCreateGame{})
		return errors.New("icon out-of-bounds")
	}

	if req.IsHosting {
		return s.hostRoom(c, &req)
	}
	return s.joinRoom(c, &req)
}

func (s *Server) hostRoom(c *Client, req *proto.GameRequest) error {
	settings, err := settingsFromRequest(req)
	if err != nil {
		s.messageOne(c, &proto.ErrJoinGame{Msg: err.Error()})
		return err
	}

	room, err := s.rooms.Create(settings)
	if err != nil {
		s.messageOne(c, &proto.ErrJoinGame{Msg: msgTooManyRooms})
		return err
	}

	s.seat(c, room, stratepig.RoleOne, req.Username, req.Icon)
	if s.conf.SwiftEnter {
		room.startCountdown(s, 1)
	}
	return nil
}

func (s *Server) joinRoom(c *Client, req *proto.GameRequest) error {
	room := s.rooms.FindByCode(req.Code)
	if room == nil {
		s.messageOne(c, &proto.ErrJoinGame{Msg: msgRoomNotFound})
		return nil
	}

	// The started and full checks have to hold while we take the
	// seat, so re-derive the role under the room lock in seat.
	room.mu.RLock()
	started := room.inGame
	full := len(room.clients) >= 2
	room.mu.RUnlock()
	if started {
		s.messageOne(c, &proto.ErrJoinGame{Msg: msgRoomStarted})
		return nil
	}
	if full {
		s.messageOne(c, &proto.ErrJoinGame{Msg: msgRoomFull})
		return nil
	}

	if !s.seat(c, room, stratepig.RoleNone, req.Username, req.Icon) {
		s.messageOne(c, &proto.ErrJoinGame{Msg: msgRoomFull})
		return nil
	}
	return nil
}

// settingsFromRequest builds the room settings a host asked for.
// Requests without the full payload fall back to the defaults.
func settingsFromRequest(req *proto.GameRequest) (Settings, error) {
	if !req.IncludeFull {
		return DefaultSettings(), nil
	}

	mode := stratepig.GameModeFrom(req.GameMode)
	settings := Settings{
		Mode:          mode,
		PlacementTime: sanitizeSetting(settingPlacementTime, uint32(req.PlacementSecs)),
		TurnTime:      sanitizeSetting(settingTurnTime, uint32(req.TurnSecs)),
		BufferTime:    sanitizeSetting(settingBufferTime, uint32(req.BufferSecs)),
	}

	if mode != stratepig.ModeCustom {
		settings.PigConfig = PresetConfig(mode)
		return settings, nil
	}

	var cfg [13]uint8
	for _, pc := range req.PigConfig {
		pig := stratepig.PigFrom(pc.Pig)
		if pig == stratepig.Empty {
			return Settings{}, errors.New("invalid config")
		}
		count := pc.Count
		if count < 0 || count > 255 {
			count = 0
		}
		cfg[pig] = uint8(count)
	}
	if !validConfig(cfg) {
		return Settings{}, errors.New("invalid config")
	}
	settings.PigConfig = cfg
	return settings, nil
}

// seat adds a client to a room and announces the lobby state.  With
// RoleNone the role is derived from the occupancy; seating fails when
// the room filled up in the meantime.
func (s *Server) seat(c *Client, room *Room, role stratepig.Role, username string, icon int32) bool {
	room.mu.Lock()
	if role == stratepig.RoleNone {
		if len(room.clients) >= 2 {
			room.mu.Unlock()
			return false
		}
		if len(room.clients) == 0 {
			role = stratepig.RoleOne
		} else {
			role = stratepig.RoleTwo
		}
		username = safeUsernameLocked(room, username)
	}
	room.clients = append(room.clients, c)
	c.room = room
	c.roomPlayer = &RoomPlayer{Username: username, Icon: icon}
	c.player = NewPlayer(role)
	room.lastSeen = time.Now().Unix()
	room.mu.Unlock()

	s.messageOne(c, &proto.ClientInfo{Role: uint32(role)})
	s.roomPlayerAdd(room)
	s.sendGameInfo(room, c)
	return true
}

// safeUsernameLocked disambiguates a name already taken in the room
// by suffixing a counter.  Callers hold the room lock.
func safeUsernameLocked(room *Room, username string) string {
	taken := func(name string) bool {
		for _, seat := range room.clients {
			if seat.roomPlayer != nil && seat.roomPlayer.Username == name {
				return true
			}
		}
		return false
	}

	final := username
	for i := 1; taken(final); i++ {
		final = fmt.Sprintf("%s %d", username, i)
	}
	return final
}

// roomPlayerAdd reintroduces every seat to the whole room, so both
// sides agree on the lobby roster.
func (s *Server) roomPlayerAdd(room *Room) {
	type entry struct {
		id       string
		count    int32
		username string
		ready    bool
		icon     int32
	}
	var entries []entry
	room.mu.RLock()
	count := int32(len(room.clients))
	for _, seat := range room.clients {
		if seat.roomPlayer == nil {
			continue
		}
		entries = append(entries, entry{
			id:       seat.tag(),
			count:    count,
			username: seat.roomPlayer.Username,
			ready:    seat.roomPlayer.Ready,
			icon:     seat.roomPlayer.Icon,
		})
	}
	room.mu.RUnlock()

	for _, e := range entries {
		s.messageRoom(room, &proto.RoomPlayerAdd{
			ID:          e.id,
			ClientCount: e.count,
			Username:    e.username,
			Ready:       e.ready,
			Icon:        e.icon,
		})
	}
}

// sendGameInfo describes the room to one client, or to everyone when
// TO is nil.
func (s *Server) sendGameInfo(room *Room, to *Client) {
	room.mu.RLock()
	info := &proto.GameInfo{
		Code:          room.code,
		GameMode:      int32(room.settings.Mode),
		PlacementTime: room.settings.PlacementTime,
		TurnTime:      room.settings.TurnTime,
		BufferTime:    room.settings.BufferTime,
		PigConfig:     wireConfig(room.settings.PigConfig),
	}
	room.mu.RUnlock()

	if to != nil {
		s.messageOne(to, info)
	} else {
		s.messageRoom(room, info)
	}
}

// handleReadyState toggles lobby readiness and drives the start
// countdown.
func (s *Server) handleReadyState(c *Client, body []byte) error {
	var req proto.UpdateReadyState
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	room := c.room

	room.mu.Lock()
	if room.inGame {
		room.mu.Unlock()
		return errors.New("cannot update ready state in game")
	}
	c.roomPlayer.Ready = req.Ready
	var otherReady bool
	if other := room.otherLocked(c); other != nil && other.roomPlayer != nil {
		otherReady = other.roomPlayer.Ready
	}
	room.mu.Unlock()

	s.messageRoom(room, &proto.RoomPlayerReadyState{ID: c.tag(), Ready: req.Ready})

	if req.Ready {
		if s.conf.OnePlayer {
			room.startCountdown(s, 1)
		} else if otherReady {
			room.startCountdown(s, 5)
		}
	} else {
		room.cancelCountdown()
		s.messageRoom(room, &proto.RoomTimerUpdate{
			Timestamp: -1,
			ServerNow: uint64(time.Now().UnixMilli()),
		})
	}
	return nil
}

// handleUpdateIcon changes a seat's lobby icon.
func (s *Server) handleUpdateIcon(c *Client, body []byte) error {
	var req proto.UpdatePigIcon
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	if req.Icon > 12 {
		return errors.New("icon out-of-bounds")
	}
	room := c.room

	room.mu.Lock()
	c.roomPlayer.Icon = int32(req.Icon)
	room.mu.Unlock()

	s.messageRoom(room, &proto.UpdatedPigIcon{ID: c.tag(), Icon: int32(req.Icon)})
	return nil
}

// handleSettingsValue adjusts one lobby setting.  Only the host may
// do so; id 0 cycles the game mode, ids 1 to 3 step the timers.
func (s *Server) handleSettingsValue(c *Client, body []byte) error {
	var req proto.UpdateSettingsValue
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	room := c.room

	room.mu.Lock()
	if c.player == nil || c.player.Role != stratepig.RoleOne {
		room.mu.Unlock()
		return errors.New("invalid authority")
	}

	if req.SettingsID == 0 {
		mode := room.settings.Mode.Next(req.Increased)
		room.settings.Mode = mode

		var bulk *proto.PigConfigValueChanged
		if mode != stratepig.ModeCustom {
			turn, buffer := presetVars(mode)
			room.settings.TurnTime = turn
			room.settings.BufferTime = buffer
			room.settings.PigConfig = PresetConfig(mode)
			bulk = &proto.PigConfigValueChanged{
				TurnTime:   turn,
				BufferTime: buffer,
				PigConfig:  wireConfig(room.settings.PigConfig),
			}
		}
		room.mu.Unlock()

		s.messageRoom(room, &proto.SettingsValueChanged{
			ID:    0,
			Value: uint32(mode),
		})
		if bulk != nil {
			s.messageRoom(room, bulk)
		}
		return nil
	}

	if req.SettingsID > 3 {
		room.mu.Unlock()
		return nil
	}

	var current uint32
	switch req.SettingsID {
	case settingPlacementTime:
		current = room.settings.PlacementTime
	case settingTurnTime:
		current = room.settings.TurnTime
	case settingBufferTime:
		current = room.settings.BufferTime
	}
	next, changed := stepSetting(req.SettingsID, current, req.Increased)
	if !changed {
		room.mu.Unlock()
		return nil
	}
	switch req.SettingsID {
	case settingPlacementTime:
		room.settings.PlacementTime = next
	case settingTurnTime:
		room.settings.TurnTime = next
	case settingBufferTime:
		room.settings.BufferTime = next
	}
	room.mu.Unlock()

	s.messageRoom(room, &proto.SettingsValueChanged{
		ID:    req.SettingsID,
		Value: next,
	})
	return nil
}

// handlePigItemUpdate adjusts one piece count, switching the room to
// the custom mode.
func (s *Server) handlePigItemUpdate(c *Client, body []byte) error {
	var req proto.UpdatePigItemValue
	if err := req.Unmarshal(body); err != nil {
		return err
	}
	pig := stratepig.PigFrom(int32(req.Pig))
	if pig == stratepig.Empty {
		return errors.New("invalid pig")
	}
	room := c.room

	room.mu.Lock()
	if c.player == nil || c.player.Role != stratepig.RoleOne {
		room.mu.Unlock()
		return errors.New("invalid authority")
	}

	cfg := room.settings.PigConfig
	total := totalPigs(cfg)
	if req.Increased {
		if total+1 > 40 {
			room.mu.Unlock()
			return nil
		}
		cfg[pig]++
	} else {
		if cfg[pig] == 0 {
			room.mu.Unlock()
			return nil
		}
		cfg[pig]--
	}
	room.settings.Mode = stratepig.ModeCustom
	room.settings.PigConfig = cfg
	updated := uint32(cfg[pig])
	room.mu.Unlock()

	s.messageRoom(room, &proto.SettingsValueChanged{
		ID:    0,
		Value: uint32(stratepig.ModeCustom),
	})
	s.messageRoom(room, &proto.PigItemValueChanged{
		Pig:    req.Pig,
		Amount: updated,
	})
	return nil
}

// handleClientLeave unseats a client on their own request.
func (s *Server) handleClientLeave(c *Client, body []byte) error {
	s.leaveRoom(c)
	return nil
}
