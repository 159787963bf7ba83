package stratepig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttack(t *testing.T) {
	for _, test := range []struct {
		att, def Pig
		want     BattleResult
	}{
		// Defense overrides run before any rank comparison.
		{Spy, Flag, BattleWin},
		{Kingo, Flag, BattleWin},
		{Miner, Bomb, BattleWin},
		{Kingo, Bomb, BattleLose},
		{Scout, Bomb, BattleLose},
		// Assassins against the kingo.
		{Spy, Kingo, BattleWin},
		{Infiltrator, Kingo, BattleWin},
		{Scout, Kingo, BattleLose},
		// Plain rank comparisons.
		{General, Colonel, BattleWin},
		{Colonel, General, BattleLose},
		{Kingo, Spy, BattleWin},
		{Sergeant, Sergeant, BattleTie},
		{Spy, Infiltrator, BattleTie},
		{Scout, Miner, BattleLose},
	} {
		got := test.att.Attack(test.def)
		assert.Equal(t, test.want, got,
			"%s attacking %s", test.att, test.def)
	}
}

func TestAttackRankSymmetry(t *testing.T) {
	// Outside the override cases, swapping attacker and defender
	// inverts the result.
	movable := []Pig{Spy, Infiltrator, Scout, Miner, Sergeant,
		Lieutenant, Chemist, Major, Colonel, General, Kingo}
	for _, a := range movable {
		for _, d := range movable {
			if d == Kingo && (a == Spy || a == Infiltrator) {
				continue
			}
			if a == Kingo && (d == Spy || d == Infiltrator) {
				continue
			}
			x, y := a.Attack(d), d.Attack(a)
			switch x {
			case BattleTie:
				assert.Equal(t, BattleTie, y, "%s vs %s", a, d)
			case BattleWin:
				assert.Equal(t, BattleLose, y, "%s vs %s", a, d)
			case BattleLose:
				assert.Equal(t, BattleWin, y, "%s vs %s", a, d)
			}
		}
	}
}

func TestMovable(t *testing.T) {
	assert.False(t, Bomb.Movable())
	assert.False(t, Flag.Movable())
	assert.False(t, Empty.Movable())
	assert.True(t, Spy.Movable())
	assert.True(t, Kingo.Movable())
}

func TestCanMove(t *testing.T) {
	assert.True(t, Miner.CanMove(15, 16))
	assert.False(t, Miner.CanMove(15, 17))
	assert.False(t, Flag.CanMove(1, 2))
	assert.False(t, Bomb.CanMove(1, 2))
	// Scouts slide along ranks and files but never through water.
	assert.True(t, Scout.CanMove(40, 100))
	assert.True(t, Scout.CanMove(26, 96))
	assert.False(t, Scout.CanMove(63, 74)) // diagonal
	assert.False(t, Scout.CanMove(42, 45)) // water at 43/44
	// No wrapping along rows.
	assert.False(t, Miner.CanMove(10, 11))
	assert.False(t, Miner.CanMove(11, 10))
}

func TestPigFrom(t *testing.T) {
	assert.Equal(t, Bomb, PigFrom(0))
	assert.Equal(t, Kingo, PigFrom(12))
	assert.Equal(t, Empty, PigFrom(13))
	assert.Equal(t, Empty, PigFrom(-1))
}
