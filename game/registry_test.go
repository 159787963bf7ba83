package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreate(t *testing.T) {
	reg := NewRegistry(4)

	room, err := reg.Create(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, room.ID())
	assert.Regexp(t, "^[A-Z]{4}$", room.Code())

	assert.Same(t, room, reg.Get(room.ID()))
	assert.Same(t, room, reg.FindByCode(room.Code()))
	assert.Nil(t, reg.Get(99))
	assert.Nil(t, reg.FindByCode("????"))
	assert.Equal(t, 1, reg.Len())
}

func TestRegistryReissuesIDs(t *testing.T) {
	reg := NewRegistry(10)

	first, err := reg.Create(DefaultSettings())
	require.NoError(t, err)
	second, err := reg.Create(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID())
	assert.Equal(t, 2, second.ID())

	reg.Remove(first.ID())
	assert.Nil(t, reg.Get(first.ID()))
	assert.Nil(t, reg.FindByCode(first.Code()))
	assert.Equal(t, 1, reg.Len())

	// The freed id comes back before the counter grows.
	third, err := reg.Create(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, third.ID())
	fourth, err := reg.Create(DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 3, fourth.ID())
}

func TestRegistryCapacity(t *testing.T) {
	reg := NewRegistry(2)

	_, err := reg.Create(DefaultSettings())
	require.NoError(t, err)
	_, err = reg.Create(DefaultSettings())
	require.NoError(t, err)

	_, err = reg.Create(DefaultSettings())
	assert.ErrorIs(t, err, errRoomCapacity)

	// Removing a room frees a slot again.
	reg.Remove(1)
	_, err = reg.Create(DefaultSettings())
	assert.NoError(t, err)

	assert.Len(t, reg.All(), 2)
}
