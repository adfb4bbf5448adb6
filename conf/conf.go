// Configuration Specification
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

package conf

import (
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
)

// On-disk representation
type conf struct {
	Server struct {
		Addr       string `toml:"addr"`
		Port       uint   `toml:"port"`
		MaxPlayers int    `toml:"max-players"`
		MaxRooms   int    `toml:"max-rooms"`
		LogDir     string `toml:"log-dir"`
	} `toml:"server"`
	Timeout struct {
		Idle      uint `toml:"idle"`      // seconds
		Reconnect uint `toml:"reconnect"` // seconds
		Read      uint `toml:"read"`      // seconds
	} `toml:"timeout"`
	Database struct {
		File string `toml:"file"`
	} `toml:"database"`
	Web struct {
		Enabled   bool `toml:"enabled"`
		Port      uint `toml:"port"`
		Websocket bool `toml:"websocket"`
	} `toml:"web"`
}

// Public configuration
type Conf struct {
	// Server configuration
	Addr       string // Address the TCP listener binds to
	Port       uint16 // Port for accepting connections
	MaxPlayers int    // Player slot cap
	MaxRooms   int    // Number of rooms allocated at startup
	LogDir     string // Directory for the log sink

	// Timeouts
	IdleTimeout      time.Duration // Inactivity before a soft disconnect
	ReconnectTimeout time.Duration // Pause budget before the opponent wins
	ReadTimeout      time.Duration // Blocking read wait outside a game
	PollInterval     time.Duration // Coordinator multiplexing granularity

	// Database configuration
	Database string // File the match archive is stored in
	DB       DatabaseManager

	// Website configuration
	WebInterface bool   // Has the web interface been enabled?
	WebPort      uint16 // Port that the web server listens on
	WebSocket    bool   // Is the live WebSocket feed enabled?

	// Internal state
	man []Manager // List of system managers
	run bool      // Running flag
}

// Configuration object used by default
var defaultConfig = Conf{
	Addr:       "0.0.0.0",
	Port:       pig.DefaultPort,
	MaxPlayers: pig.DefaultMaxPlayers,
	MaxRooms:   pig.DefaultMaxRooms,
	LogDir:     "logs",

	IdleTimeout:      20 * time.Second,
	ReconnectTimeout: 20 * time.Second,
	ReadTimeout:      5 * time.Second,
	PollInterval:     time.Second,

	Database: "pig.db",

	WebInterface: true,
	WebPort:      8080,
	WebSocket:    true,
}
