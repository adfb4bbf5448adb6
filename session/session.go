// Session server
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

// Package session drives the two goroutine kinds of the server: one
// connection handler per accepted socket and one game coordinator per
// room with a running match.  A socket has exactly one reading
// goroutine at any time; the handler hands its line reader to the
// coordinator when a match starts and takes it back when the match
// ends.
package session

import (
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/conf"
	"github.com/FilipDolezal/pig-game-server/lobby"
)

// Server ties the registry, the configuration and the log sink
// together.  One instance serves the whole process.
type Server struct {
	conf *conf.Conf
	reg  *lobby.Registry
	sink *pig.Sink

	// SeedFn overrides the per-match seed derivation.  Nil outside
	// tests.
	SeedFn func(room int) int64
}

func MakeServer(c *conf.Conf, sink *pig.Sink) *Server {
	return &Server{
		conf: c,
		reg:  lobby.New(c.MaxPlayers, c.MaxRooms),
		sink: sink,
	}
}

// Registry exposes the player and room tables to read-only consumers
// like the web interface.
func (s *Server) Registry() *lobby.Registry {
	return s.reg
}

func (s *Server) seed(room int) int64 {
	if s.SeedFn != nil {
		return s.SeedFn(room)
	}
	return time.Now().UnixNano() ^ int64(room)
}
