// Manager lifecycle
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
	"context"
	"fmt"
	"os"
	"os/signal"

	pig "github.com/FilipDolezal/pig-game-server"
)

type Manager interface {
	fmt.Stringer
	Start()
	Shutdown()
}

type DatabaseManager interface {
	Manager

	// Store interface
	SaveMatch(context.Context, *pig.Match)

	// Access interface
	QueryMatches(context.Context, chan<- *pig.Match, int)
}

func (c *Conf) Register(m Manager) {
	if c.run {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	if db, ok := m.(DatabaseManager); ok {
		c.DB = db
	}
	c.man = append(c.man, m)
}

// Start launches every registered manager and blocks until an
// interrupt arrives, then shuts them down in reverse order.
func (c *Conf) Start() {
	for _, m := range c.man {
		pig.Debug.Printf("Starting %s", m)
		go m.Start()
	}
	c.run = true

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	<-intr

	pig.Debug.Println("Waiting for managers to shutdown...")
	for i := len(c.man) - 1; i >= 0; i-- {
		m := c.man[i]
		pig.Debug.Printf("Shutting %s down", m)
		m.Shutdown()
	}
}
