// Game coordinator
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

package session

import (
	"context"
	"errors"
	"strconv"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/game"
	"github.com/FilipDolezal/pig-game-server/lobby"
	"github.com/FilipDolezal/pig-game-server/proto"
)

// match is the coordinator's working state for one game.  The conns
// and readers arrays shadow the room slots; they go stale across a
// pause and are refreshed from the registry on reconnect.
type match struct {
	r       *lobby.Room
	g       *game.State
	players [pig.RoomSize]*lobby.Player
	conns   [pig.RoomSize]proto.Conn
	readers [pig.RoomSize]*proto.Reader
	outcome pig.Outcome
	started time.Time

	// Pause bookkeeping: who is away, and whether their socket is
	// still open (idle pause) or gone (hard disconnect).
	absent int
	idle   bool
}

func (m *match) send(i int, verb string, args ...proto.Arg) {
	if c := m.conns[i]; c != nil {
		proto.Send(c, verb, args...)
	}
}

func (m *match) sendError(i int, kind pig.ErrorKind, args ...proto.Arg) {
	if c := m.conns[i]; c != nil {
		proto.SendError(c, kind, args...)
	}
}

// sendState renders the game from player I's perspective.
func (m *match) sendState(i int) {
	m.send(i, proto.MsgGameState,
		proto.KV("my_score", strconv.Itoa(m.g.Scores[i])),
		proto.KV("opp_score", strconv.Itoa(m.g.Scores[1-i])),
		proto.KV("turn_score", strconv.Itoa(m.g.Turn)),
		proto.KV("roll", strconv.Itoa(m.g.LastRoll)),
		proto.KV("your_turn", turnFlag(m.g.Current == i)))
}

func (m *match) broadcastState() {
	for i := range m.players {
		m.sendState(i)
	}
}

func (m *match) index(p *lobby.Player) int {
	for i, q := range m.players {
		if q == p {
			return i
		}
	}
	return -1
}

func (m *match) connected() int {
	n := 0
	for _, c := range m.conns {
		if c != nil {
			n++
		}
	}
	return n
}

func turnFlag(mine bool) string {
	if mine {
		return "1"
	}
	return "0"
}

// coordinate runs one match from room fill to teardown.  It owns the
// game state and, after both handlers have deposited their readers,
// both sockets.
func (s *Server) coordinate(r *lobby.Room) {
	events := r.Events()
	for n := 0; n < pig.RoomSize; {
		if ev := <-events; ev.Kind == lobby.EventJoined {
			n++
		}
	}

	m := &match{r: r, started: time.Now(), absent: -1}
	m.players, _ = r.Players()
	for i, p := range m.players {
		m.conns[i], m.readers[i] = s.reg.Endpoint(p)
	}

	m.g = game.New(s.seed(r.Id))
	s.sink.Game("Room %d: match started, %s vs %s",
		r.Id, m.players[0].Nick, m.players[1].Nick)

	for i := range m.players {
		m.send(i, proto.MsgGameStart,
			proto.KV("opp_nick", m.players[1-i].Nick),
			proto.KV("your_turn", turnFlag(m.g.Current == i)))
	}

	for !m.g.Over {
		switch r.State() {
		case pig.RoomAborted:
			s.finishAborted(m)
		case pig.RoomPaused:
			s.pause(m)
		default:
			s.poll(m)
		}
	}

	ended := time.Now()
	s.sink.Game("Room %d: match over (%s)", r.Id, m.outcome)
	s.archive(m, ended)
	s.reg.EndMatch(r)
}

// poll gives each connected player one bounded read and dispatches
// whatever arrived.  A sweep with no traffic at all triggers the idle
// check.
func (s *Server) poll(m *match) {
	quiet := true
	for i := range m.players {
		if m.conns[i] == nil {
			continue
		}

		line, err := m.readers[i].ReadLine(s.conf.PollInterval / 2)
		switch {
		case err == nil:
			quiet = false
			m.players[i].Touch()
			s.dispatch(m, i, line)
		case errors.Is(err, proto.ErrTimeout):
		case errors.Is(err, proto.ErrOverflow):
			quiet = false
			s.sink.Game("Room %d: oversized line from %s dropped",
				m.r.Id, m.players[i].Nick)
		default:
			s.disconnect(m, i)
		}

		if m.g.Over || m.r.State() != pig.RoomInProgress {
			return
		}
	}
	if quiet {
		s.idleCheck(m)
	}
}

// disconnect handles a lost socket during play: the registry keeps the
// slot as a reconnection target and the match pauses.
func (s *Server) disconnect(m *match, i int) {
	s.sink.Game("Room %d: %s disconnected, pausing", m.r.Id, m.players[i].Nick)
	m.conns[i].Close()
	m.conns[i], m.readers[i] = nil, nil
	s.reg.HandleDisconnect(m.players[i])

	m.absent, m.idle = i, false
	m.r.SetState(pig.RoomPaused)
	m.send(1-i, proto.MsgOpponentDisconnected)
}

// idleCheck pauses the match when a player with an open socket has
// been silent past the idle budget.
func (s *Server) idleCheck(m *match) {
	for i := range m.players {
		if m.conns[i] == nil {
			continue
		}
		if time.Since(m.players[i].LastActive()) < s.conf.IdleTimeout {
			continue
		}
		s.sink.Game("Room %d: %s idle, pausing", m.r.Id, m.players[i].Nick)
		m.absent, m.idle = i, true
		m.r.SetState(pig.RoomPaused)
		m.send(1-i, proto.MsgOpponentDisconnected)
		return
	}
}

// dispatch handles one in-game line from player I.  Malformed lines
// are dropped rather than closing the socket, which would end the
// opponent's game over a misbehaving client.
func (s *Server) dispatch(m *match, i int, line string) {
	cmd, err := proto.Parse(line)
	if err != nil {
		s.sink.Game("Room %d: malformed line from %s dropped",
			m.r.Id, m.players[i].Nick)
		return
	}

	switch cmd.Verb {
	case proto.CmdPing:
		m.send(i, proto.MsgOk, proto.KV("cmd", proto.CmdPing))
	case proto.CmdGameStateRequest:
		m.sendState(i)
	case proto.CmdLeaveRoom:
		m.sendError(i, pig.ErrGameInProgress, proto.KV("cmd", proto.CmdLeaveRoom))
	case proto.CmdQuit:
		s.quit(m, i)
	case proto.CmdRoll:
		if i != m.g.Current {
			m.sendError(i, pig.ErrInvalidCommand)
			return
		}
		m.g.Roll()
		m.broadcastState()
		if m.g.Over {
			s.win(m)
		}
	case proto.CmdHold:
		if i != m.g.Current {
			m.sendError(i, pig.ErrInvalidCommand)
			return
		}
		m.g.Hold()
		m.broadcastState()
		if m.g.Over {
			s.win(m)
		}
	default:
		m.sendError(i, pig.ErrInvalidCommand)
	}
}

func (s *Server) quit(m *match, i int) {
	s.sink.Game("Room %d: %s quit", m.r.Id, m.players[i].Nick)
	m.g.Over = true
	m.g.Winner = 1 - i
	m.outcome = pig.OutcomeQuit
	m.send(1-i, proto.MsgGameWin, proto.KV("msg", "Your opponent quit."))
	m.send(i, proto.MsgGameLose)
}

// win closes out a match decided by the dice.
func (s *Server) win(m *match) {
	s.sink.Game("Room %d: %s wins %d:%d", m.r.Id,
		m.players[m.g.Winner].Nick,
		m.g.Scores[m.g.Winner], m.g.Scores[1-m.g.Winner])
	m.outcome = pig.OutcomeWin
	m.send(m.g.Winner, proto.MsgGameWin)
	m.send(1-m.g.Winner, proto.MsgGameLose)
}

// pause waits out a disconnect or an idle player.  A reconnect event
// or, for an idle pause, any line from the silent player resumes the
// game; hitting the reconnect deadline ends it in the opponent's
// favour.
func (s *Server) pause(m *match) {
	deadline := time.Now().Add(s.conf.ReconnectTimeout)
	events := m.r.Events()

	for m.r.State() == pig.RoomPaused {
		select {
		case ev := <-events:
			switch ev.Kind {
			case lobby.EventReconnected:
				s.rejoin(m, ev.Player)
				return
			case lobby.EventAborted:
				s.finishAborted(m)
				return
			}
			continue
		default:
		}

		if time.Now().After(deadline) {
			s.expire(m)
			return
		}

		for i := range m.players {
			if m.conns[i] == nil {
				continue
			}

			line, err := m.readers[i].ReadLine(s.conf.PollInterval)
			switch {
			case err == nil:
				m.players[i].Touch()
				if m.idle && i == m.absent {
					s.sink.Game("Room %d: %s is back, resuming",
						m.r.Id, m.players[i].Nick)
					m.absent, m.idle = -1, false
					m.r.SetState(pig.RoomInProgress)
					m.send(1-i, proto.MsgOpponentReconnected)
				}
				s.pausedLine(m, i, line)
				if m.g.Over || m.r.State() != pig.RoomPaused {
					return
				}
			case errors.Is(err, proto.ErrTimeout):
			case errors.Is(err, proto.ErrOverflow):
				s.sink.Game("Room %d: oversized line from %s dropped",
					m.r.Id, m.players[i].Nick)
			default:
				s.sink.Game("Room %d: %s disconnected during pause",
					m.r.Id, m.players[i].Nick)
				m.conns[i].Close()
				m.conns[i], m.readers[i] = nil, nil
				s.reg.HandleDisconnect(m.players[i])
				if m.connected() == 0 {
					s.finishAborted(m)
					return
				}
				m.absent, m.idle = i, false
			}
		}
	}
}

// pausedLine services the few verbs that remain meaningful while the
// match is paused.  Game actions do not apply and are dropped.
func (s *Server) pausedLine(m *match, i int, line string) {
	cmd, err := proto.Parse(line)
	if err != nil {
		return
	}
	switch cmd.Verb {
	case proto.CmdPing:
		m.send(i, proto.MsgOk, proto.KV("cmd", proto.CmdPing))
	case proto.CmdGameStateRequest:
		m.sendState(i)
	case proto.CmdQuit:
		s.quit(m, i)
	}
}

// rejoin refreshes the coordinator's shadow after a spliced handler
// signalled its RESUME.  The reconnected player gets the current state
// so it can re-render.
func (s *Server) rejoin(m *match, p *lobby.Player) {
	i := m.index(p)
	if i < 0 {
		return
	}
	m.conns[i], m.readers[i] = s.reg.Endpoint(p)
	m.absent, m.idle = -1, false
	m.r.SetState(pig.RoomInProgress)

	s.sink.Game("Room %d: %s reconnected, resuming", m.r.Id, p.Nick)
	m.send(1-i, proto.MsgOpponentReconnected)
	m.sendState(i)
}

// expire ends a match whose absent player missed the reconnect
// deadline.  An idle player with an open socket is told why and
// evicted at teardown.
func (s *Server) expire(m *match) {
	i := m.absent
	m.g.Over = true
	m.g.Winner = 1 - i
	m.outcome = pig.OutcomeTimeout

	s.sink.Game("Room %d: %s timed out, %s wins",
		m.r.Id, m.players[i].Nick, m.players[1-i].Nick)
	m.send(1-i, proto.MsgGameWin, proto.KV("msg", "Your opponent timed out."))
	if m.idle {
		m.send(i, proto.MsgDisconnected)
		m.send(i, proto.MsgGameLose)
		s.reg.Evict(m.players[i])
	}
}

// finishAborted ends a match that cannot continue: a failed resume or
// both players gone.
func (s *Server) finishAborted(m *match) {
	m.g.Over = true
	m.g.Winner = -1
	m.outcome = pig.OutcomeAborted
	s.sink.Game("Room %d: match aborted", m.r.Id)
	for i := range m.players {
		m.sendError(i, pig.ErrOpponentQuit)
	}
}

// archive hands the finished match to the database manager, when one
// is configured.
func (s *Server) archive(m *match, ended time.Time) {
	if s.conf.DB == nil {
		return
	}

	rec := &pig.Match{
		Room:    m.r.Id,
		Nicks:   [2]string{m.players[0].Nick, m.players[1].Nick},
		Scores:  m.g.Scores,
		Outcome: m.outcome,
		Started: m.started,
		Ended:   ended,
	}
	if m.g.Winner >= 0 {
		rec.Winner = m.players[m.g.Winner].Nick
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.conf.DB.SaveMatch(ctx, rec)
}
