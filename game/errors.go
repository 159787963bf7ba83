// Error catalog
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

import "errors"

var (
	// errWrongID means the id embedded in a message does not match
	// the connection that delivered it.
	errWrongID = errors.New("embedded id does not match sender")

	// errMissingContext means a guarded message arrived before the
	// client reached the state the message assumes.
	errMissingContext = errors.New("message not valid in current state")

	errRoomCapacity = errors.New("room capacity reached")
)

// Join failure texts shown verbatim by the client.
const (
	msgRoomNotFound = "Could not find the game you were looking for."
	msgRoomStarted  = "That game has already started."
	msgRoomFull     = "That game is full."
	msgTooManyRooms = "There are too many rooms at the moment. Try again later."
	msgRoomPruned   = "Room closed due to inactivity."
)
