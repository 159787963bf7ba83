// Board geometry and movement kernel
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

// The board is a 10x10 grid numbered 1 (bottom left) to 100 (top
// right), row by row.  Each side sees itself at the bottom; the
// opponent's coordinates are flipped through the center.
const (
	BottomLeftTile    = 1
	TopRightTile      = 100
	StartingTerritory = 40
)

var waterTiles = [8]uint8{43, 44, 47, 48, 53, 54, 57, 58}

// Piece is a pig standing on a tile.  ID is the tile the piece was
// initially placed on, stable across moves so clients can track it.
type Piece struct {
	Pig      Pig
	Location uint8
	ID       uint8
}

func NewPiece(p Pig, loc uint8) Piece {
	return Piece{Pig: p, Location: loc, ID: loc}
}

// Board is one side's pieces in that side's own coordinates.
type Board []Piece

func InBounds(pos int16) bool {
	return pos >= BottomLeftTile && pos <= TopRightTile
}

func InStartingBounds(pos int16) bool {
	return pos >= BottomLeftTile && pos <= StartingTerritory
}

func IsWater(pos uint8) bool {
	for _, w := range waterTiles {
		if w == pos {
			return true
		}
	}
	return false
}

// Column returns the 1-based column of a tile.
func Column(pos uint8) uint8 {
	c := pos % 10
	if c == 0 {
		return 10
	}
	return c
}

// Adjacent lists the orthogonal neighbors of a tile, excluding water
// and never wrapping around board edges.
func Adjacent(pos uint8) []uint8 {
	p := int16(pos)
	var result []uint8
	for _, c := range [4]int16{p + 1, p - 1, p + 10, p - 10} {
		if !InBounds(c) || IsWater(uint8(c)) {
			continue
		}
		if c == p+1 && p%10 == 0 {
			continue
		}
		if c == p-1 && (p-1)%10 == 0 {
			continue
		}
		result = append(result, uint8(c))
	}
	return result
}

// ScoutReach lists every tile a scout could slide to from POS along
// its rank and file.  Water blocks the slide; other pieces do not,
// occupancy is checked separately with PigInPath.
func ScoutReach(pos uint8) []uint8 {
	row := (pos - 1) / 10
	column := Column(pos)
	var result []uint8

	for x := column; x <= 10; x++ {
		val := row*10 + x
		if IsWater(val) {
			break
		}
		if val != pos {
			result = append(result, val)
		}
	}
	for x := column - 1; x >= 1; x-- {
		val := row*10 + x
		if IsWater(val) {
			break
		}
		result = append(result, val)
	}
	for y := row + 1; y <= 9; y++ {
		val := y*10 + column
		if IsWater(val) {
			break
		}
		result = append(result, val)
	}
	for y := int16(row) - 1; y >= 0; y-- {
		val := uint8(y)*10 + column
		if IsWater(val) {
			break
		}
		result = append(result, val)
	}
	return result
}

// FlipTile converts a tile between the two sides' coordinates.  It is
// its own inverse.
func FlipTile(pos uint8) uint8 {
	return 100 - pos + 1
}

// Flip converts a whole board into the opposing side's coordinates.
// Piece IDs are kept as placed.
func (b Board) Flip() Board {
	result := make(Board, 0, len(b))
	for _, piece := range b {
		result = append(result, Piece{
			Pig:      piece.Pig,
			Location: FlipTile(piece.Location),
			ID:       piece.ID,
		})
	}
	return result
}

// Merge concatenates two boards already in the same coordinates.
func Merge(local, opp Board) Board {
	board := make(Board, 0, len(local)+len(opp))
	board = append(board, local...)
	board = append(board, opp...)
	return board
}

// PieceAt finds the piece standing on a tile.
func (b Board) PieceAt(pos uint8) (Piece, bool) {
	for _, piece := range b {
		if piece.Location == pos {
			return piece, true
		}
	}
	return Piece{}, false
}

// Remove drops the piece standing on a tile, if any.
func (b Board) Remove(pos uint8) Board {
	for i, piece := range b {
		if piece.Location == pos {
			return append(b[:i], b[i+1:]...)
		}
	}
	return b
}

// Relocate moves the piece on FROM to TO, keeping its identity.
func (b Board) Relocate(from, to uint8) {
	for i := range b {
		if b[i].Location == from {
			b[i].Location = to
			return
		}
	}
}

// PigInPath reports whether any piece of the merged board stands
// strictly between FROM and TO along a rank or file.
func PigInPath(total Board, from, to uint8) bool {
	occupied := func(pos uint8) bool {
		_, ok := total.PieceAt(pos)
		return ok
	}

	lo, hi := from, to
	if lo > hi {
		lo, hi = hi, lo
	}
	if (from-1)/10 == (to-1)/10 {
		for i := lo + 1; i < hi; i++ {
			if occupied(i) {
				return true
			}
		}
	} else {
		for i := lo + 10; i < hi; i += 10 {
			if occupied(i) {
				return true
			}
		}
	}
	return false
}
