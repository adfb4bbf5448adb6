// Room model and match signalling
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
	"sync"

	pig "github.com/FilipDolezal/pig-game-server"
)

type EventKind uint8

const (
	// A handler deposited its line reader; the coordinator may read
	// the player's socket from now on.
	EventJoined EventKind = iota

	// A spliced handler completed the RESUME exchange.
	EventReconnected

	// The resume failed; the match must end.
	EventAborted
)

func (k EventKind) String() string {
	switch k {
	case EventJoined:
		return "Joined"
	case EventReconnected:
		return "Reconnected"
	case EventAborted:
		return "Aborted"
	default:
		panic("Illegal event kind")
	}
}

// Event is a room state change delivered to the game coordinator.
type Event struct {
	Kind   EventKind
	Player *Player
}

// Room is a fixed game room.  Rooms are allocated at startup and never
// destroyed; they cycle through their states.  The mutex guards state,
// the slot array, the player count and the match channels.
type Room struct {
	Id int

	mu     sync.Mutex
	state  pig.RoomState
	slots  [pig.RoomSize]*Player
	count  int
	events chan Event
	done   chan struct{}
}

// State returns the current room state.
func (r *Room) State() pig.RoomState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// SetState transitions the room.  Pause and resume transitions cross
// the handler/coordinator boundary, which is why this takes the lock.
func (r *Room) SetState(st pig.RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state = st
}

// Info returns the occupancy and state for ROOM_INFO.  A reader racing
// a join may observe an intermediate count; that is allowed.
func (r *Room) Info() (count int, state pig.RoomState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count, r.state
}

// Players returns a snapshot of the seated players in join order.
func (r *Room) Players() ([pig.RoomSize]*Player, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots, r.count
}

// Match returns the signalling channels of the current match: the
// event channel into the coordinator and the channel closed at
// teardown.  Both are nil between matches.
func (r *Room) Match() (chan<- Event, <-chan struct{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events, r.done
}

// Notify delivers an event to the coordinator of the current match.
func (r *Room) Notify(ev Event) {
	r.mu.Lock()
	ch := r.events
	r.mu.Unlock()
	if ch != nil {
		ch <- ev
	}
}

// Events returns the receive side of the match event channel; only the
// coordinator reads it.
func (r *Room) Events() <-chan Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events
}

// Abort moves a paused match to Aborted.  Reports whether the
// transition applied; a room that already left the paused state is
// left alone.
func (r *Room) Abort() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != pig.RoomPaused {
		return false
	}
	r.state = pig.RoomAborted
	return true
}

// arm creates fresh signalling channels for one match.  Called with
// the room mutex held, by the join that filled the room.
func (r *Room) arm() {
	r.events = make(chan Event, 2*pig.RoomSize)
	r.done = make(chan struct{})
}
