// Common constants and shared types
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

package stratepig

import "fmt"

// Version is reported to every client in the welcome message.  The
// client refuses to play when its own version string differs.
const Version = "1.0.3"

// Role identifies a seat within a room.  The zero value means the
// client has not been seated yet.
type Role int32

const (
	RoleNone Role = 0
	RoleOne  Role = 1
	RoleTwo  Role = 2
	// RoleTie is only meaningful in win broadcasts.
	RoleTie Role = -1
)

// Opponent returns the other seat.
func (r Role) Opponent() Role {
	switch r {
	case RoleOne:
		return RoleTwo
	case RoleTwo:
		return RoleOne
	default:
		return r
	}
}

func (r Role) String() string {
	switch r {
	case RoleNone:
		return "None"
	case RoleOne:
		return "One"
	case RoleTwo:
		return "Two"
	case RoleTie:
		return "Tie"
	default:
		return fmt.Sprintf("Role(%d)", int32(r))
	}
}

// WinType encodes how a game ended.
type WinType uint32

const (
	WinFlagCapture WinType = iota + 1
	WinDisconnect
	WinOutOfMoves
	WinOutOfTime
	WinSurrender
)

// Immediate reports whether the client should cut to the result
// screen without playing out the final move animation.
func (w WinType) Immediate() bool {
	switch w {
	case WinDisconnect, WinOutOfTime, WinSurrender:
		return true
	default:
		return false
	}
}

func (w WinType) String() string {
	switch w {
	case WinFlagCapture:
		return "FlagCapture"
	case WinDisconnect:
		return "Disconnect"
	case WinOutOfMoves:
		return "OutOfMoves"
	case WinOutOfTime:
		return "OutOfTime"
	case WinSurrender:
		return "Surrender"
	default:
		return fmt.Sprintf("WinType(%d)", uint32(w))
	}
}

// GameMode selects a piece-count preset.  Custom is entered
// implicitly as soon as a host edits individual piece counts.
type GameMode int32

const (
	ModeOriginal GameMode = iota + 1
	ModeInfiltrator
	ModeDuel
	ModeCustom
)

const modeCount = 4

// GameModeFrom coerces a wire value, falling back to Original.
func GameModeFrom(v int32) GameMode {
	if v >= int32(ModeOriginal) && v <= int32(ModeCustom) {
		return GameMode(v)
	}
	return ModeOriginal
}

// Next cycles through the modes, wrapping around in either direction.
func (m GameMode) Next(forward bool) GameMode {
	v := int32(m)
	if forward {
		v++
		if v > modeCount {
			v = 1
		}
	} else {
		v--
		if v < 1 {
			v = modeCount
		}
	}
	return GameMode(v)
}

func (m GameMode) String() string {
	switch m {
	case ModeOriginal:
		return "Original"
	case ModeInfiltrator:
		return "Infiltrator"
	case ModeDuel:
		return "Duel"
	case ModeCustom:
		return "Custom"
	default:
		return fmt.Sprintf("GameMode(%d)", int32(m))
	}
}

// BattleResult is the outcome of an attack from the attacker's point
// of view.
type BattleResult int32

const (
	BattleLose BattleResult = 0
	BattleWin  BattleResult = 1
	BattleTie  BattleResult = -1
)

func (b BattleResult) String() string {
	switch b {
	case BattleWin:
		return "Win"
	case BattleLose:
		return "Lose"
	case BattleTie:
		return "Tie"
	default:
		return fmt.Sprintf("BattleResult(%d)", int32(b))
	}
}
