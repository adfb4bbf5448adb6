// Websocket room feed
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

package web

import (
	"net/http"
	"strconv"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/proto"

	"github.com/gorilla/websocket"
)

// adapted from https://github.com/gorilla/websocket/issues/282

// wsw turns each write into one websocket text message, so a browser
// client receives the same ROOM_INFO frames a TCP client would.
type wsw struct {
	*websocket.Conn
}

func (c *wsw) Write(p []byte) (int, error) {
	err := c.WriteMessage(websocket.TextMessage, p)
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

// feed upgrades an HTTP connection and streams the room table over it
// until the peer goes away.  The feed is one-directional; incoming
// messages are discarded.
func (s *web) feed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := (&websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		}).Upgrade(w, r, nil)
		if err != nil {
			pig.Debug.Printf("Unable to upgrade connection: %s", err)
			w.WriteHeader(400)
			return
		}
		pig.Debug.Printf("Feed connection from %s", conn.RemoteAddr())

		// Drain the read side so control frames keep being handled.
		gone := make(chan struct{})
		go func() {
			defer close(gone)
			for {
				if _, _, err := conn.NextReader(); err != nil {
					return
				}
			}
		}()

		go func() {
			defer conn.Close()
			out := &wsw{conn}
			tick := time.NewTicker(s.conf.PollInterval)
			defer tick.Stop()
			for {
				for _, room := range s.srv.Registry().Rooms() {
					count, state := room.Info()
					err := proto.Send(out, proto.MsgRoomInfo,
						proto.KV("room", strconv.Itoa(room.Id)),
						proto.KV("count", strconv.Itoa(count)),
						proto.KV("state", state.String()))
					if err != nil {
						return
					}
				}
				select {
				case <-gone:
					return
				case <-tick.C:
				}
			}
		}()
	}
}
