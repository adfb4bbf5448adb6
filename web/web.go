// Web interface manager
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
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/conf"
	"github.com/FilipDolezal/pig-game-server/session"
)

//go:embed *.tmpl
var html embed.FS

var (
	// Template manager
	tmpl *template.Template

	// Custom template functions
	funcs = template.FuncMap{
		"inc": func(i int) int {
			return i + 1
		},
		"dec": func(i int) int {
			return i - 1
		},
		"timefmt": func(t time.Time) string {
			s := time.Since(t).Round(time.Second)
			switch {
			case s < 5*time.Second:
				return "now"
			case s < time.Minute:
				return fmt.Sprintf("%.0fs ago", s.Seconds())
			case s < time.Hour:
				return fmt.Sprintf("%.0fm ago", s.Minutes())
			default:
				return t.Format(time.Stamp)
			}
		},
		"describe": func(m *pig.Match) string {
			switch m.Outcome {
			case pig.OutcomeQuit:
				return fmt.Sprintf("%s won, opponent quit", m.Winner)
			case pig.OutcomeTimeout:
				return fmt.Sprintf("%s won, opponent timed out", m.Winner)
			case pig.OutcomeAborted:
				return "Aborted"
			default:
				return fmt.Sprintf("%s won", m.Winner)
			}
		},
	}
)

type web struct {
	conf *conf.Conf
	srv  *session.Server
	mux  *http.ServeMux
}

func (s *web) listen() {
	addr := fmt.Sprintf(":%d", s.conf.WebPort)
	log.Printf("Listening via HTTP on %s", addr)

	err := http.ListenAndServe(addr, s.mux)
	if err != nil {
		log.Print(err)
	}
}

func (s *web) Start() {
	// Prepare HTTP Multiplexer
	s.mux = http.NewServeMux()
	s.mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	s.mux.HandleFunc("/", s.index)

	// Install the WebSocket room feed
	if s.conf.WebSocket {
		log.Print("Accepting websocket connections on /socket")
		s.mux.HandleFunc("/socket", s.feed())
	}

	// Parse templates
	tmpl = template.Must(template.New("").Funcs(funcs).ParseFS(html, "*.tmpl"))

	s.listen()
}

// The web server can shut down immediately
func (*web) Shutdown() {}

func (*web) String() string { return "Web Server" }

func Prepare(c *conf.Conf, srv *session.Server) {
	if !c.WebInterface {
		return
	}

	c.Register(&web{conf: c, srv: srv})
}
