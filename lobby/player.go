// Player slots
//
// Copyright (c) 2025, 2026  Filip Dolezal
//
// This file is part of pig-game-server.
//
// pig-game-server is free software: you can redistribute it and/or
// modify it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// pig-game-server is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with pig-game-server. If not, see
// <http://www.gnu.org/licenses/>

package lobby

import (
	"sync/atomic"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/proto"
)

// Player is one slot of the registry's player table.  The slot is free
// when it has neither a socket nor an in-game ghost to reconnect to.
// All fields except the activity stamp are guarded by the registry
// mutex.
type Player struct {
	Nick   string
	State  pig.PlayerState
	RoomId int // -1 outside a room

	// Conn and Reader are nil while the player is disconnected.  A
	// disconnected slot in state InGame is the reconnection target
	// for its nickname.
	Conn   proto.Conn
	Reader *proto.Reader

	// When the socket was lost, for the reconnect deadline.
	Gone time.Time

	// Set by the coordinator when the player must not return to the
	// lobby after the match (idle and reconnect timeouts).
	evicted bool

	last atomic.Int64 // unix nanoseconds of the last activity
}

// Touch records activity on the player's connection.  It is written by
// whichever goroutine currently reads the socket and read by the
// coordinator's idle check, hence the atomic.
func (p *Player) Touch() {
	p.last.Store(time.Now().UnixNano())
}

// LastActive returns the time of the last recorded activity.
func (p *Player) LastActive() time.Time {
	return time.Unix(0, p.last.Load())
}

func (p *Player) free() bool {
	return p.Conn == nil && p.State == pig.StateLobby
}

// reset returns the slot to its blank state.  Caller holds the
// registry mutex.
func (p *Player) reset() {
	p.Nick = ""
	p.State = pig.StateLobby
	p.RoomId = -1
	p.Conn = nil
	p.Reader = nil
	p.Gone = time.Time{}
	p.evicted = false
}
