// Player and room registry
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

// Package lobby holds the process-wide player and room tables.  The
// registry mutex guards slot allocation, nickname lookups and player
// lifecycle fields; each room's own mutex guards its state and slot
// array.  When both are needed the registry mutex is taken first,
// never the other way around.
package lobby

import (
	"errors"
	"sync"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/proto"
)

var (
	ErrServerFull = errors.New("no free player slot")
	ErrNoSuchRoom = errors.New("no such room")
	ErrRoomFull   = errors.New("room is full")
	ErrRoomBusy   = errors.New("room has a game in progress")
)

// Registry owns all player and room storage.  Handlers and
// coordinators hold references into it but never allocate slots
// themselves.
type Registry struct {
	mu      sync.Mutex
	players []*Player
	rooms   []*Room
	active  int
}

func New(maxPlayers, maxRooms int) *Registry {
	reg := &Registry{
		players: make([]*Player, maxPlayers),
		rooms:   make([]*Room, maxRooms),
	}
	for i := range reg.players {
		reg.players[i] = &Player{RoomId: -1}
	}
	for i := range reg.rooms {
		reg.rooms[i] = &Room{Id: i}
	}
	return reg
}

// AddPlayer reserves a free slot for a new connection.  Slots holding
// a disconnected in-game player are not free; they are reconnection
// targets.
func (reg *Registry) AddPlayer(c proto.Conn, rd *proto.Reader) (*Player, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, p := range reg.players {
		if !p.free() {
			continue
		}
		p.reset()
		p.Conn = c
		p.Reader = rd
		p.Touch()
		reg.active++
		return p, nil
	}
	return nil, ErrServerFull
}

// RemovePlayer frees a slot, removing the player from any waiting room
// first.  Safe to call twice.
func (reg *Registry) RemovePlayer(p *Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.removeLocked(p)
}

func (reg *Registry) removeLocked(p *Player) {
	if p.free() && p.Nick == "" {
		return
	}

	if p.RoomId >= 0 && p.RoomId < len(reg.rooms) {
		r := reg.rooms[p.RoomId]
		r.mu.Lock()
		if r.state != pig.RoomWaiting {
			// The seat belongs to a running match and only match
			// teardown may free it.  The slot becomes a
			// reconnection target instead; the caller closes the
			// socket.
			r.mu.Unlock()
			p.Conn = nil
			p.Reader = nil
			p.Gone = time.Now()
			return
		}
		r.unseat(p)
		r.mu.Unlock()
	}
	p.reset()
	reg.active--
}

// unseat removes P from the slot array, shifting later players down so
// join order is preserved.  Caller holds the room mutex.
func (r *Room) unseat(p *Player) {
	for i := 0; i < r.count; i++ {
		if r.slots[i] != p {
			continue
		}
		copy(r.slots[i:], r.slots[i+1:r.count])
		r.slots[r.count-1] = nil
		r.count--
		return
	}
}

// HandleDisconnect marks an in-game player's socket as lost.  The slot
// stays in the room so the nickname can reconnect; evicting it on
// timeout is the coordinator's job.
func (reg *Registry) HandleDisconnect(p *Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	p.Conn = nil
	p.Reader = nil
	p.Gone = time.Now()
}

// FindDisconnected returns the in-game slot waiting for NICK to
// reconnect, if any.
func (reg *Registry) FindDisconnected(nick string) *Player {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.findLocked(nick, false)
}

// FindActive returns the connected player using NICK, if any.
func (reg *Registry) FindActive(nick string) *Player {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.findLocked(nick, true)
}

func (reg *Registry) findLocked(nick string, connected bool) *Player {
	for _, p := range reg.players {
		if p.Nick != nick {
			continue
		}
		if connected && p.Conn != nil {
			return p
		}
		if !connected && p.Conn == nil && p.State == pig.StateInGame {
			return p
		}
	}
	return nil
}

// LoginResult classifies how a LOGIN resolved against the player
// table.
type LoginResult uint8

const (
	// The nickname was free; the provisional slot now carries it.
	LoginNew LoginResult = iota

	// A disconnected in-game slot matched; the connection was spliced
	// onto it and the provisional slot was discarded.
	LoginResumed

	// Another live session holds the nickname.  Its socket has been
	// closed; the caller must reject this connection.
	LoginInUse
)

// Login resolves the identity of a freshly connected provisional
// player.  On LoginResumed the returned player is the adopted in-game
// slot, carrying over the provisional connection, reader and any bytes
// it had buffered; the provisional slot is freed.
func (reg *Registry) Login(p *Player, nick string) (LoginResult, *Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if other := reg.findLocked(nick, true); other != nil && other != p {
		// Kill the existing session; its owner will observe the
		// closed socket and clean up.  The new connection is
		// rejected and must retry once that has happened.
		other.Conn.Close()
		return LoginInUse, nil
	}

	if ghost := reg.findLocked(nick, false); ghost != nil {
		ghost.Conn = p.Conn
		ghost.Reader = p.Reader
		ghost.Gone = time.Time{}
		ghost.Touch()

		p.reset()
		reg.active--
		return LoginResumed, ghost
	}

	p.Nick = nick
	return LoginNew, p
}

// JoinRoom seats a player in a waiting room.  When the seat fills the
// room, the room transitions to InProgress and its match channels are
// armed; spawning the coordinator is the caller's job.
func (reg *Registry) JoinRoom(id int, p *Player) (*Room, bool, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if id < 0 || id >= len(reg.rooms) {
		return nil, false, ErrNoSuchRoom
	}
	r := reg.rooms[id]

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != pig.RoomWaiting {
		return nil, false, ErrRoomBusy
	}
	if r.count >= pig.RoomSize {
		return nil, false, ErrRoomFull
	}

	r.slots[r.count] = p
	r.count++
	p.State = pig.StateInGame
	p.RoomId = id

	full := r.count == pig.RoomSize
	if full {
		r.state = pig.RoomInProgress
		r.arm()
	}
	return r, full, nil
}

// LeaveRoom removes a player from a room that has not started playing.
func (reg *Registry) LeaveRoom(p *Player) error {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if p.State != pig.StateInGame || p.RoomId < 0 {
		return ErrRoomBusy
	}
	r := reg.rooms[p.RoomId]

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != pig.RoomWaiting {
		return ErrRoomBusy
	}
	r.unseat(p)
	p.State = pig.StateLobby
	p.RoomId = -1
	return nil
}

// Room returns a room by id.
func (reg *Registry) Room(id int) *Room {
	if id < 0 || id >= len(reg.rooms) {
		return nil
	}
	return reg.rooms[id]
}

// Rooms returns the room table in stable id order.
func (reg *Registry) Rooms() []*Room {
	return reg.rooms
}

// Active returns the number of occupied player slots.
func (reg *Registry) Active() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.active
}

// Status reports a player's lifecycle state and room assignment.
func (reg *Registry) Status(p *Player) (pig.PlayerState, int) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return p.State, p.RoomId
}

// Endpoint returns the player's current connection and reader.  The
// coordinator refreshes its shadow through this after a reconnect.
func (reg *Registry) Endpoint(p *Player) (proto.Conn, *proto.Reader) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return p.Conn, p.Reader
}

// Owns reports whether C is still the connection attached to P.  A
// parked handler uses this after a match to find out whether its slot
// survived.
func (reg *Registry) Owns(p *Player, c proto.Conn) bool {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return p.Conn == c
}

// Evict marks a player to be dropped at teardown instead of returning
// to the lobby.
func (reg *Registry) Evict(p *Player) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	p.evicted = true
}

// EndMatch resets a room after a match.  Connected survivors return to
// the lobby; disconnected or evicted slots are freed.  Closing the
// done channel releases every parked handler.
func (reg *Registry) EndMatch(r *Room) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	r.mu.Lock()
	slots, count := r.slots, r.count
	r.slots = [pig.RoomSize]*Player{}
	r.count = 0
	r.state = pig.RoomWaiting
	done := r.done
	r.events = nil
	r.done = nil
	r.mu.Unlock()

	for i := 0; i < count; i++ {
		p := slots[i]
		if p == nil {
			continue
		}
		p.RoomId = -1
		if p.Conn == nil || p.evicted {
			if c := p.Conn; c != nil {
				c.Close()
			}
			p.reset()
			reg.active--
		} else {
			p.State = pig.StateLobby
		}
	}

	if done != nil {
		close(done)
	}
}
