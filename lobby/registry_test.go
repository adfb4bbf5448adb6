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
	"errors"
	"net"
	"testing"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/proto"
)

// conn returns one end of a pipe to stand in for a client socket.
func conn(t *testing.T) proto.Conn {
	t.Helper()
	a, b := net.Pipe()
	t.Cleanup(func() {
		a.Close()
		b.Close()
	})
	return a
}

func addPlayer(t *testing.T, reg *Registry, nick string) *Player {
	t.Helper()
	c := conn(t)
	p, err := reg.AddPlayer(c, proto.NewReader(c))
	if err != nil {
		t.Fatal(err)
	}
	if res, owner := reg.Login(p, nick); res != LoginNew || owner != p {
		t.Fatalf("login %q resolved to %v", nick, res)
	}
	return p
}

func TestAddPlayerCap(t *testing.T) {
	reg := New(2, 1)
	addPlayer(t, reg, "alice")
	addPlayer(t, reg, "bob")

	c := conn(t)
	if _, err := reg.AddPlayer(c, proto.NewReader(c)); !errors.Is(err, ErrServerFull) {
		t.Fatalf("expected ErrServerFull, got %v", err)
	}
	if reg.Active() != 2 {
		t.Fatalf("active = %d, want 2", reg.Active())
	}
}

func TestLoginInUse(t *testing.T) {
	reg := New(4, 1)
	addPlayer(t, reg, "alice")

	c := conn(t)
	p, err := reg.AddPlayer(c, proto.NewReader(c))
	if err != nil {
		t.Fatal(err)
	}
	if res, _ := reg.Login(p, "alice"); res != LoginInUse {
		t.Fatalf("duplicate login resolved to %v", res)
	}
}

func TestLoginSplice(t *testing.T) {
	reg := New(4, 1)
	alice := addPlayer(t, reg, "alice")
	bob := addPlayer(t, reg, "bob")
	if _, _, err := reg.JoinRoom(0, alice); err != nil {
		t.Fatal(err)
	}
	if _, _, err := reg.JoinRoom(0, bob); err != nil {
		t.Fatal(err)
	}

	reg.HandleDisconnect(alice)
	if got := reg.FindDisconnected("alice"); got != alice {
		t.Fatal("disconnected slot not found")
	}
	if got := reg.FindActive("alice"); got != nil {
		t.Fatal("disconnected player counted as active")
	}

	c := conn(t)
	rd := proto.NewReader(c)
	p, err := reg.AddPlayer(c, rd)
	if err != nil {
		t.Fatal(err)
	}
	res, owner := reg.Login(p, "alice")
	if res != LoginResumed {
		t.Fatalf("reconnect resolved to %v", res)
	}
	if owner != alice {
		t.Fatal("splice did not adopt the in-game slot")
	}
	if got, _ := reg.Endpoint(alice); got != c {
		t.Fatal("splice did not transfer the connection")
	}
	if st, room := reg.Status(alice); st != pig.StateInGame || room != 0 {
		t.Fatalf("spliced slot is %v in room %d", st, room)
	}
	if reg.FindDisconnected("alice") != nil {
		t.Fatal("spliced slot still counts as disconnected")
	}

	// The provisional slot must have been freed.
	c2 := conn(t)
	if _, err := reg.AddPlayer(c2, proto.NewReader(c2)); err != nil {
		t.Fatal("provisional slot leaked:", err)
	}
}

func TestJoinRoom(t *testing.T) {
	reg := New(4, 2)
	alice := addPlayer(t, reg, "alice")
	bob := addPlayer(t, reg, "bob")
	eve := addPlayer(t, reg, "eve")

	r, full, err := reg.JoinRoom(0, alice)
	if err != nil || full {
		t.Fatalf("first join: full=%v, err=%v", full, err)
	}
	if count, state := r.Info(); count != 1 || state != pig.RoomWaiting {
		t.Fatalf("room has %d players in %v", count, state)
	}

	if _, full, err := reg.JoinRoom(0, bob); err != nil {
		t.Fatal(err)
	} else if !full {
		t.Fatal("second join did not fill the room")
	}
	if count, state := r.Info(); count != 2 || state != pig.RoomInProgress {
		t.Fatalf("full room has %d players in %v", count, state)
	}
	if ev, done := r.Match(); ev == nil || done == nil {
		t.Fatal("filling the room did not arm the match channels")
	}

	if _, _, err := reg.JoinRoom(0, eve); !errors.Is(err, ErrRoomBusy) {
		t.Fatalf("third join: %v", err)
	}
	if _, _, err := reg.JoinRoom(7, eve); !errors.Is(err, ErrNoSuchRoom) {
		t.Fatalf("out of range join: %v", err)
	}

	// Join order is stable: the first to join is index 0.
	slots, count := r.Players()
	if count != 2 || slots[0] != alice || slots[1] != bob {
		t.Fatal("slot order does not follow join order")
	}
}

func TestLeaveRoom(t *testing.T) {
	reg := New(4, 1)
	alice := addPlayer(t, reg, "alice")

	if err := reg.LeaveRoom(alice); err == nil {
		t.Fatal("left a room without being in one")
	}

	if _, _, err := reg.JoinRoom(0, alice); err != nil {
		t.Fatal(err)
	}
	if err := reg.LeaveRoom(alice); err != nil {
		t.Fatal(err)
	}
	if st, room := reg.Status(alice); st != pig.StateLobby || room != -1 {
		t.Fatalf("after leave: %v in room %d", st, room)
	}
	if count, _ := reg.Room(0).Info(); count != 0 {
		t.Fatalf("room still holds %d players", count)
	}
}

// Any lobby-only session must leave the registry the way it found it.
func TestNoSlotLeak(t *testing.T) {
	reg := New(3, 1)

	for round := 0; round < 5; round++ {
		p := addPlayer(t, reg, "alice")
		if _, _, err := reg.JoinRoom(0, p); err != nil {
			t.Fatal(err)
		}
		if err := reg.LeaveRoom(p); err != nil {
			t.Fatal(err)
		}
		reg.RemovePlayer(p)
		reg.RemovePlayer(p) // must be safe to repeat
		if reg.Active() != 0 {
			t.Fatalf("round %d leaked a slot: active = %d", round, reg.Active())
		}
	}
}

// Removing a player seated in a running match must not break the
// room; the seat turns into a reconnection target and teardown frees
// it.
func TestRemovePlayerDuringMatch(t *testing.T) {
	reg := New(4, 1)
	alice := addPlayer(t, reg, "alice")
	bob := addPlayer(t, reg, "bob")
	reg.JoinRoom(0, alice)
	r, full, err := reg.JoinRoom(0, bob)
	if err != nil || !full {
		t.Fatalf("fill: full=%v, err=%v", full, err)
	}

	reg.RemovePlayer(alice)

	if count, state := r.Info(); count != 2 || state != pig.RoomInProgress {
		t.Fatalf("room degraded to %d players in %v", count, state)
	}
	if reg.FindDisconnected("alice") != alice {
		t.Fatal("seat did not become a reconnection target")
	}
	if reg.Active() != 2 {
		t.Fatalf("active = %d, want 2", reg.Active())
	}

	reg.EndMatch(r)
	if reg.Active() != 1 {
		t.Fatalf("after teardown: active = %d, want 1", reg.Active())
	}
	if count, state := r.Info(); count != 0 || state != pig.RoomWaiting {
		t.Fatalf("after teardown: %d players in %v", count, state)
	}
}

func TestEndMatch(t *testing.T) {
	reg := New(4, 1)
	alice := addPlayer(t, reg, "alice")
	bob := addPlayer(t, reg, "bob")
	reg.JoinRoom(0, alice)
	r, _, err := reg.JoinRoom(0, bob)
	if err != nil {
		t.Fatal(err)
	}
	_, done := r.Match()

	reg.HandleDisconnect(alice)
	reg.EndMatch(r)

	select {
	case <-done:
	default:
		t.Fatal("teardown did not release parked handlers")
	}
	if count, state := r.Info(); count != 0 || state != pig.RoomWaiting {
		t.Fatalf("after teardown: %d players in %v", count, state)
	}
	if st, room := reg.Status(bob); st != pig.StateLobby || room != -1 {
		t.Fatalf("survivor is %v in room %d", st, room)
	}
	// The disconnected slot is gone; its nickname is free again.
	if reg.FindDisconnected("alice") != nil {
		t.Fatal("teardown kept the disconnected slot")
	}
	if reg.Active() != 1 {
		t.Fatalf("active = %d, want 1", reg.Active())
	}
}
