// Lobby settings
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
	"github.com/miapolis/stratepig-server/proto"
)

// Settings are the host-controlled room parameters.  Times are in
// seconds; PigConfig counts each piece kind per player.
type Settings struct {
	Mode          stratepig.GameMode
	PlacementTime uint32
	TurnTime      uint32
	BufferTime    uint32
	PigConfig     [13]uint8
}

func DefaultSettings() Settings {
	return Settings{
		Mode:          stratepig.ModeOriginal,
		PlacementTime: 300,
		TurnTime:      15,
		BufferTime:    300,
		PigConfig:     PresetConfig(stratepig.ModeOriginal),
	}
}

// Adjustable settings ids as the client numbers them.  Id 0 cycles
// the game mode and is handled separately.
const (
	settingPlacementTime uint32 = 1
	settingTurnTime      uint32 = 2
	settingBufferTime    uint32 = 3
)

type settingGroup struct {
	loop     bool
	min, max uint32
	step     uint32
	def      uint32
}

var settingGroups = map[uint32]settingGroup{
	settingPlacementTime: {loop: false, min: 30, max: 600, step: 30, def: 300},
	settingTurnTime:      {loop: true, min: 0, max: 30, step: 1, def: 15},
	settingBufferTime:    {loop: false, min: 0, max: 900, step: 30, def: 300},
}

// sanitizeSetting coerces a client-supplied value into its group's
// domain, falling back to the default.
func sanitizeSetting(id uint32, value uint32) uint32 {
	g, ok := settingGroups[id]
	if !ok {
		return value
	}
	if value < g.min || value > g.max || value%g.step != 0 {
		return g.def
	}
	return value
}

// stepSetting moves a value one notch in its group.  Looping groups
// wrap around; the rest report no change at their bounds.
func stepSetting(id uint32, current uint32, increased bool) (uint32, bool) {
	g, ok := settingGroups[id]
	if !ok {
		return current, false
	}
	if increased {
		if current+g.step > g.max {
			if g.loop {
				return g.min, true
			}
			return current, false
		}
		return current + g.step, true
	}
	if current < g.min+g.step {
		if g.loop {
			return g.max, true
		}
		return current, false
	}
	return current - g.step, true
}

// PresetConfig is the piece roster a non-custom game mode plays with.
func PresetConfig(mode stratepig.GameMode) [13]uint8 {
	switch mode {
	case stratepig.ModeInfiltrator:
		return [13]uint8{
			stratepig.Bomb:        6,
			stratepig.Spy:         1,
			stratepig.Infiltrator: 1,
			stratepig.Flag:        1,
			stratepig.Scout:       7,
			stratepig.Miner:       5,
			stratepig.Sergeant:    4,
			stratepig.Lieutenant:  4,
			stratepig.Chemist:     4,
			stratepig.Major:       3,
			stratepig.Colonel:     2,
			stratepig.General:     1,
			stratepig.Kingo:       1,
		}
	case stratepig.ModeDuel:
		return [13]uint8{
			stratepig.Bomb:    2,
			stratepig.Spy:     1,
			stratepig.Flag:    1,
			stratepig.Scout:   2,
			stratepig.Miner:   2,
			stratepig.General: 1,
			stratepig.Kingo:   1,
		}
	default:
		return [13]uint8{
			stratepig.Bomb:       6,
			stratepig.Spy:        1,
			stratepig.Flag:       1,
			stratepig.Scout:      8,
			stratepig.Miner:      5,
			stratepig.Sergeant:   4,
			stratepig.Lieutenant: 4,
			stratepig.Chemist:    4,
			stratepig.Major:      3,
			stratepig.Colonel:    2,
			stratepig.General:    1,
			stratepig.Kingo:      1,
		}
	}
}

// presetVars are the timer values a game mode implies.
func presetVars(mode stratepig.GameMode) (turn, buffer uint32) {
	if mode == stratepig.ModeDuel {
		return 15, 180
	}
	return 15, 300
}

// totalPigs sums a roster.
func totalPigs(cfg [13]uint8) int {
	total := 0
	for _, n := range cfg {
		total += int(n)
	}
	return total
}

// validConfig reports whether a custom roster is playable: at least
// one piece, and no more than the starting territory holds.
func validConfig(cfg [13]uint8) bool {
	total := totalPigs(cfg)
	return total > 0 && total <= 40
}

// wireConfig lays the roster out for the wire, one entry per kind in
// enum order.
func wireConfig(cfg [13]uint8) []proto.PigCount {
	out := make([]proto.PigCount, 0, len(cfg))
	for pig, count := range cfg {
		out = append(out, proto.PigCount{
			Pig:   uint32(pig),
			Count: uint32(count),
		})
	}
	return out
}
