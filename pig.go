// Piece catalog and combat rules
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

// Pig is a piece kind.  The wire encodes kinds as unsigned bytes, so
// Empty never travels; it only marks vacant board data internally.
type Pig int8

const (
	Bomb Pig = iota
	Spy
	Infiltrator
	Flag
	Scout
	Miner
	Sergeant
	Lieutenant
	Chemist
	Major
	Colonel
	General
	Kingo

	Empty Pig = -1
)

// PigFrom coerces a wire value, mapping anything out of range to
// Empty.
func PigFrom(v int32) Pig {
	if v >= int32(Bomb) && v <= int32(Kingo) {
		return Pig(v)
	}
	return Empty
}

// Rank orders pieces for combat.  Bomb and Flag share the lowest rank
// since neither ever resolves a battle by rank alone.
func (p Pig) Rank() int {
	switch p {
	case Bomb, Flag:
		return 0
	case Spy, Infiltrator:
		return 1
	case Scout:
		return 2
	case Miner:
		return 3
	case Sergeant:
		return 4
	case Lieutenant:
		return 5
	case Chemist:
		return 6
	case Major:
		return 7
	case Colonel:
		return 8
	case General:
		return 9
	case Kingo:
		return 10
	default:
		return -1
	}
}

// Movable reports whether the piece may ever leave its tile.
func (p Pig) Movable() bool {
	switch p {
	case Bomb, Flag, Empty:
		return false
	default:
		return true
	}
}

// CanMove checks the piece's movement pattern between two tiles,
// ignoring occupancy.  Scouts slide any distance along a rank or
// file; everything else steps to an adjacent tile.
func (p Pig) CanMove(from, to uint8) bool {
	if !p.Movable() {
		return false
	}
	if p == Scout {
		for _, t := range ScoutReach(from) {
			if t == to {
				return true
			}
		}
		return false
	}
	for _, t := range Adjacent(from) {
		if t == to {
			return true
		}
	}
	return false
}

// Attack resolves combat from the attacker's point of view.  Defense
// overrides run first: a flag always falls, a bomb kills everything
// but a miner.  A spy or infiltrator assassinates the kingo.  All
// remaining battles compare ranks.
func (p Pig) Attack(def Pig) BattleResult {
	switch def {
	case Flag:
		return BattleWin
	case Bomb:
		if p == Miner {
			return BattleWin
		}
		return BattleLose
	}
	if (p == Spy || p == Infiltrator) && def == Kingo {
		return BattleWin
	}
	a, d := p.Rank(), def.Rank()
	switch {
	case a > d:
		return BattleWin
	case a < d:
		return BattleLose
	default:
		return BattleTie
	}
}

func (p Pig) String() string {
	switch p {
	case Bomb:
		return "Bomb"
	case Spy:
		return "Spy"
	case Infiltrator:
		return "Infiltrator"
	case Flag:
		return "Flag"
	case Scout:
		return "Scout"
	case Miner:
		return "Miner"
	case Sergeant:
		return "Sergeant"
	case Lieutenant:
		return "Lieutenant"
	case Chemist:
		return "Chemist"
	case Major:
		return "Major"
	case Colonel:
		return "Colonel"
	case General:
		return "General"
	case Kingo:
		return "Kingo"
	case Empty:
		return "Empty"
	default:
		return fmt.Sprintf("Pig(%d)", int8(p))
	}
}
