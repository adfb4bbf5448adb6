// Shared logging
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

package pig

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var Debug = log.New(io.Discard, "[debug] ", log.Ltime|log.Lshortfile|log.Lmicroseconds)

// Sink appends operational messages to the four log files in the
// configured directory.  Every message also lands in all.log.  A nil
// Sink discards everything, which keeps tests quiet.
type Sink struct {
	mu     sync.Mutex
	server *os.File
	lobby  *os.File
	game   *os.File
	all    *os.File
}

// OpenSink creates the log directory if necessary and opens the four
// append-only log files.
func OpenSink(dir string) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &Sink{}
	for _, f := range []struct {
		name string
		dst  **os.File
	}{
		{"server.log", &s.server},
		{"lobby.log", &s.lobby},
		{"game.log", &s.game},
		{"all.log", &s.all},
	} {
		file, err := os.OpenFile(
			filepath.Join(dir, f.name),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0o644)
		if err != nil {
			s.Close()
			return nil, err
		}
		*f.dst = file
	}
	return s, nil
}

func (s *Sink) Server(format string, args ...interface{}) {
	if s != nil {
		s.write(s.server, format, args...)
	}
}

func (s *Sink) Lobby(format string, args ...interface{}) {
	if s != nil {
		s.write(s.lobby, format, args...)
	}
}

func (s *Sink) Game(format string, args ...interface{}) {
	if s != nil {
		s.write(s.game, format, args...)
	}
}

func (s *Sink) write(file *os.File, format string, args ...interface{}) {
	line := fmt.Sprintf("[%s]: %s\n",
		time.Now().Format("2006-01-02 15:04:05"),
		fmt.Sprintf(format, args...))

	s.mu.Lock()
	defer s.mu.Unlock()
	if file != nil {
		file.WriteString(line)
	}
	if s.all != nil {
		s.all.WriteString(line)
	}
}

func (s *Sink) Close() error {
	if s == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var err error
	for _, f := range []*os.File{s.server, s.lobby, s.game, s.all} {
		if f == nil {
			continue
		}
		if e := f.Close(); e != nil {
			err = e
		}
	}
	return err
}
