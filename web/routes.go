// Web request handlers
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
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
)

const DB_TIMEOUT = 20 * time.Second // arbitrary choice

// roomRow is one row of the index page's room table.
type roomRow struct {
	Id    int
	Count int
	State pig.RoomState
}

// Generate the index page
func (s *web) index(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	var rooms []roomRow
	for _, room := range s.srv.Registry().Rooms() {
		count, state := room.Info()
		rooms = append(rooms, roomRow{room.Id, count, state})
	}

	bg := context.Background()
	ctx, cancel := context.WithTimeout(bg, DB_TIMEOUT)
	defer cancel()

	c := make(chan *pig.Match)
	if s.conf.DB != nil {
		go s.conf.DB.QueryMatches(ctx, c, page-1)
	} else {
		close(c)
	}

	w.Header().Add("Content-Type", "text/html")
	w.Header().Add("Cache-Control", "max-age=10")
	err = tmpl.ExecuteTemplate(w, "index.tmpl", struct {
		Active  int
		Rooms   []roomRow
		Matches chan *pig.Match
		Page    int
	}{s.srv.Registry().Active(), rooms, c, page})
	if err != nil {
		log.Print(err)
	}
}
