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

package proto

import (
	"errors"
	"strings"
	"testing"

	pig "github.com/FilipDolezal/pig-game-server"
)

func TestEncode(t *testing.T) {
	for i, test := range []struct {
		verb string
		args []Arg
		want string
		err  error
	}{
		{verb: "PING", want: "PING\n"},
		{verb: "OK", args: []Arg{KV("cmd", "LOGIN"), KV("nick", "alice")},
			want: "OK|cmd:LOGIN|nick:alice\n"},
		{verb: "ROOM_INFO",
			args: []Arg{KV("room", "0"), KV("count", "1"), KV("state", "WAITING")},
			want: "ROOM_INFO|room:0|count:1|state:WAITING\n"},

		{verb: "ERROR", args: []Arg{KV("msg", "a|b")}, err: ErrBadToken},
		{verb: "ERROR", args: []Arg{KV("m:g", "x")}, err: ErrBadToken},
		{verb: "ERROR", args: []Arg{KV("msg", "a\nb")}, err: ErrBadToken},
		{verb: "MSG", args: []Arg{KV("pad", strings.Repeat("x", pig.MsgMax))},
			err: ErrTooLong},
	} {
		b, err := Encode(test.verb, test.args...)
		if test.err != nil {
			if !errors.Is(err, test.err) {
				t.Errorf("(%d) error = %v, want %v", i, err, test.err)
			}
			continue
		}
		if err != nil {
			t.Errorf("(%d) %s", i, err)
			continue
		}
		if string(b) != test.want {
			t.Errorf("(%d) encoded %q, want %q", i, b, test.want)
		}
	}
}

func TestEncodeLimit(t *testing.T) {
	// The largest frame that still fits: verb plus one argument
	// adding up to exactly MsgMax bytes with the terminator.
	pad := strings.Repeat("x", pig.MsgMax-len("MSG|p:\n"))
	b, err := Encode("MSG", KV("p", pad))
	if err != nil {
		t.Fatal(err)
	}
	if len(b) != pig.MsgMax {
		t.Fatalf("frame is %d bytes, want %d", len(b), pig.MsgMax)
	}

	if _, err := Encode("MSG", KV("p", pad+"x")); !errors.Is(err, ErrTooLong) {
		t.Fatalf("oversized frame was not refused: %v", err)
	}
}
