// Configuration loading and dumping
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
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Parse a configuration from R
func load(r io.Reader) (*Conf, error) {
	data := dump(&defaultConfig)
	_, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, err
	}

	c := defaultConfig
	c.Addr = data.Server.Addr
	c.Port = uint16(data.Server.Port)
	c.MaxPlayers = data.Server.MaxPlayers
	c.MaxRooms = data.Server.MaxRooms
	c.LogDir = data.Server.LogDir
	c.IdleTimeout = time.Duration(data.Timeout.Idle) * time.Second
	c.ReconnectTimeout = time.Duration(data.Timeout.Reconnect) * time.Second
	c.ReadTimeout = time.Duration(data.Timeout.Read) * time.Second
	c.Database = data.Database.File
	c.WebInterface = data.Web.Enabled
	c.WebPort = uint16(data.Web.Port)
	c.WebSocket = data.Web.Websocket

	return &c, nil
}

// Open a configuration file and return it
func Open(name string) (*Conf, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return load(file)
}

// Return a copy of the default configuration
func Default() *Conf {
	c := defaultConfig
	return &c
}

func dump(c *Conf) conf {
	var data conf
	data.Server.Addr = c.Addr
	data.Server.Port = uint(c.Port)
	data.Server.MaxPlayers = c.MaxPlayers
	data.Server.MaxRooms = c.MaxRooms
	data.Server.LogDir = c.LogDir
	data.Timeout.Idle = uint(c.IdleTimeout / time.Second)
	data.Timeout.Reconnect = uint(c.ReconnectTimeout / time.Second)
	data.Timeout.Read = uint(c.ReadTimeout / time.Second)
	data.Database.File = c.Database
	data.Web.Enabled = c.WebInterface
	data.Web.Port = uint(c.WebPort)
	data.Web.Websocket = c.WebSocket
	return data
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	data := dump(c)
	return toml.NewEncoder(wr).Encode(data)
}
