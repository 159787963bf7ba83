// Room registry
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
	"math/rand"
	"sync"
)

// Registry tracks all live rooms, indexed by id and by join code.
// Ids of removed rooms are reissued before the counter grows.
type Registry struct {
	mu    sync.Mutex
	rooms map[int]*Room
	codes map[string]int
	free  []int
	next  int
	max   uint
}

func NewRegistry(max uint) *Registry {
	return &Registry{
		rooms: make(map[int]*Room),
		codes: make(map[string]int),
		max:   max,
	}
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

func randomCode() string {
	code := make([]byte, 4)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(code)
}

// Create allocates a new room with the given settings, or fails when
// the configured capacity is reached.
func (reg *Registry) Create(settings Settings) (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if uint(len(reg.rooms)) >= reg.max {
		return nil, errRoomCapacity
	}

	var id int
	if len(reg.free) > 0 {
		id = reg.free[0]
		reg.free = reg.free[1:]
	} else {
		reg.next++
		id = reg.next
	}

	code := randomCode()
	for {
		if _, taken := reg.codes[code]; !taken {
			break
		}
		code = randomCode()
	}

	room := newRoom(id, code, settings)
	reg.rooms[id] = room
	reg.codes[code] = id
	return room, nil
}

func (reg *Registry) Get(id int) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.rooms[id]
}

func (reg *Registry) FindByCode(code string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	id, ok := reg.codes[code]
	if !ok {
		return nil
	}
	return reg.rooms[id]
}

// Remove drops a room and recycles its id.
func (reg *Registry) Remove(id int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[id]
	if !ok {
		return
	}
	delete(reg.rooms, id)
	delete(reg.codes, room.code)
	reg.free = append(reg.free, id)
}

func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// All returns a snapshot of every live room.
func (reg *Registry) All() []*Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}
