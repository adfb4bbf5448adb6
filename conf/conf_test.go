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

package conf

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoadPartial(t *testing.T) {
	c, err := load(strings.NewReader(`
[server]
port = 4321
max-rooms = 3

[timeout]
idle = 5
`))
	if err != nil {
		t.Fatal(err)
	}

	if c.Port != 4321 {
		t.Errorf("port = %d, want 4321", c.Port)
	}
	if c.MaxRooms != 3 {
		t.Errorf("max-rooms = %d, want 3", c.MaxRooms)
	}
	if c.IdleTimeout != 5*time.Second {
		t.Errorf("idle timeout = %s, want 5s", c.IdleTimeout)
	}

	// Everything else keeps its default
	if c.MaxPlayers != defaultConfig.MaxPlayers {
		t.Errorf("max-players = %d, want default %d",
			c.MaxPlayers, defaultConfig.MaxPlayers)
	}
	if c.ReconnectTimeout != defaultConfig.ReconnectTimeout {
		t.Errorf("reconnect timeout = %s, want default %s",
			c.ReconnectTimeout, defaultConfig.ReconnectTimeout)
	}
	if c.Database != defaultConfig.Database {
		t.Errorf("database = %q, want default %q",
			c.Database, defaultConfig.Database)
	}
}

func TestLoadMalformed(t *testing.T) {
	if _, err := load(strings.NewReader(`[server`)); err == nil {
		t.Fatal("malformed TOML was accepted")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	orig := Default()
	orig.Addr = "127.0.0.1"
	orig.Port = 9999
	orig.MaxPlayers = 4
	orig.IdleTimeout = 7 * time.Second
	orig.WebInterface = false

	var buf bytes.Buffer
	if err := orig.Dump(&buf); err != nil {
		t.Fatal(err)
	}

	c, err := load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if c.Addr != orig.Addr || c.Port != orig.Port ||
		c.MaxPlayers != orig.MaxPlayers ||
		c.IdleTimeout != orig.IdleTimeout ||
		c.WebInterface != orig.WebInterface {
		t.Fatalf("round trip changed the configuration:\n%+v\n%+v", orig, c)
	}
}

func TestDefaultIsCopy(t *testing.T) {
	a := Default()
	a.Port = 1
	if b := Default(); b.Port == 1 {
		t.Fatal("Default returns a shared configuration")
	}
}
