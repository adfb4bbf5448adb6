// TCP interface
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

package proto

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	pig "github.com/FilipDolezal/pig-game-server"
)

// Listener accepts TCP connections and passes each one to the session
// handler.
type Listener struct {
	conn    net.Listener
	port    uint16
	handler func(Conn)
}

func (*Listener) String() string {
	return "TCP Handler"
}

// MakeListener binds the listening socket.  Binding eagerly lets the
// entry point fail with a usable error before any manager starts.
func MakeListener(addr string, port uint16, handler func(Conn)) (*Listener, error) {
	l := &Listener{port: port, handler: handler}

	var err error
	l.conn, err = net.Listen("tcp", fmt.Sprintf("%s:%d", addr, port))
	if err != nil {
		return nil, err
	}
	if l.port == 0 {
		// Extract the port the operating system picked, since port 0
		// is redirected to a "random" open port.
		bound := l.conn.Addr().String()
		i := strings.LastIndexByte(bound, ':')
		if i == -1 {
			l.conn.Close()
			return nil, fmt.Errorf("invalid listen address %q", bound)
		}
		p, err := strconv.ParseUint(bound[i+1:], 10, 16)
		if err != nil {
			l.conn.Close()
			return nil, err
		}
		l.port = uint16(p)
	}

	return l, nil
}

func (l *Listener) Port() uint16 {
	return l.port
}

func (l *Listener) Start() {
	pig.Debug.Printf("Accepting connections on :%d", l.port)
	for {
		conn, err := l.conn.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go l.handler(conn.(*net.TCPConn))
	}
}

func (l *Listener) Shutdown() {
	if err := l.conn.Close(); err != nil {
		pig.Debug.Print(err)
	}
}
