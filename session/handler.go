// Connection handler
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
	"errors"
	"strconv"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/lobby"
	"github.com/FilipDolezal/pig-game-server/proto"
)

// Handle runs the life cycle of one connection: welcome, identity
// resolution, then either a resume handshake into a paused match or
// the lobby command loop.  It returns when the connection is gone or
// its slot has been taken over.
func (s *Server) Handle(c proto.Conn) {
	rd := proto.NewReader(c)

	p, err := s.reg.AddPlayer(c, rd)
	if err != nil {
		s.sink.Server("Connection rejected: server full")
		proto.SendError(c, pig.ErrServerFull)
		c.Close()
		return
	}
	s.sink.Server("Connection accepted (%d/%d slots)",
		s.reg.Active(), s.conf.MaxPlayers)

	proto.Send(c, proto.MsgWelcome,
		proto.KV("players", strconv.Itoa(s.conf.MaxPlayers)),
		proto.KV("rooms", strconv.Itoa(s.conf.MaxRooms)))

	p, resumed := s.login(p, c, rd)
	if p == nil {
		return
	}
	if resumed && !s.resume(p, c, rd) {
		return
	}
	s.lobby(p, c, rd)
}

// drop frees the slot and closes the socket.  The single exit path for
// a handler that still owns its connection.
func (s *Server) drop(p *lobby.Player, c proto.Conn) {
	s.reg.RemovePlayer(p)
	c.Close()
}

// login reads the LOGIN line and resolves the nickname against the
// player table.  Read timeouts are retried; anything else ends the
// connection.  The returned player is the adopted in-game slot when
// the login spliced onto a disconnected session.
func (s *Server) login(p *lobby.Player, c proto.Conn, rd *proto.Reader) (*lobby.Player, bool) {
	for {
		line, err := rd.ReadLine(s.conf.ReadTimeout)
		if errors.Is(err, proto.ErrTimeout) {
			continue
		}
		if err != nil {
			s.drop(p, c)
			return nil, false
		}
		p.Touch()

		cmd, err := proto.Parse(line)
		if err != nil || cmd.Verb != proto.CmdLogin {
			proto.SendError(c, pig.ErrInvalidCommand, proto.KV("cmd", proto.CmdLogin))
			s.drop(p, c)
			return nil, false
		}
		nick, ok := cmd.Arg("nick")
		if !ok || len(nick) >= pig.NicknameLen {
			proto.SendError(c, pig.ErrInvalidNickname, proto.KV("cmd", proto.CmdLogin))
			s.drop(p, c)
			return nil, false
		}

		res, owner := s.reg.Login(p, nick)
		switch res {
		case lobby.LoginInUse:
			s.sink.Lobby("Rejected login %q: nickname in use", nick)
			proto.SendError(c, pig.ErrNicknameInUse, proto.KV("cmd", proto.CmdLogin))
			s.drop(p, c)
			return nil, false
		case lobby.LoginResumed:
			s.sink.Lobby("Player %s reconnected", nick)
			proto.Send(c, proto.MsgGamePaused)
			return owner, true
		default:
			s.sink.Lobby("Player %s logged in", nick)
			proto.Send(c, proto.MsgOk,
				proto.KV("cmd", proto.CmdLogin), proto.KV("nick", nick))
			return owner, false
		}
	}
}

// resume completes the reconnect handshake for a spliced player.  Only
// a RESUME line brings the match back; anything else aborts it.  The
// handler then parks until the coordinator tears the match down.
func (s *Server) resume(p *lobby.Player, c proto.Conn, rd *proto.Reader) bool {
	_, room := s.reg.Status(p)
	r := s.reg.Room(room)
	if r == nil {
		return true
	}

	for {
		line, err := rd.ReadLine(s.conf.ReadTimeout)
		if errors.Is(err, proto.ErrTimeout) {
			if st, _ := s.reg.Status(p); st == pig.StateLobby {
				// The match expired while we waited for RESUME.
				return true
			}
			continue
		}
		if err != nil {
			s.abortResume(p, c, r)
			return false
		}
		p.Touch()

		cmd, perr := proto.Parse(line)
		if perr != nil || cmd.Verb != proto.CmdResume {
			proto.SendError(c, pig.ErrInvalidCommand, proto.KV("cmd", proto.CmdResume))
			s.abortResume(p, c, r)
			return false
		}

		proto.Send(c, proto.MsgOk, proto.KV("cmd", proto.CmdResume))
		r.Notify(lobby.Event{Kind: lobby.EventReconnected, Player: p})
		return s.park(p, c, r)
	}
}

func (s *Server) abortResume(p *lobby.Player, c proto.Conn, r *lobby.Room) {
	if r.Abort() {
		s.sink.Game("Room %d: resume by %s failed, aborting match", r.Id, p.Nick)
		r.Notify(lobby.Event{Kind: lobby.EventAborted, Player: p})
	}
	s.drop(p, c)
}

// lobby is the command loop of a logged-in player outside a game.
func (s *Server) lobby(p *lobby.Player, c proto.Conn, rd *proto.Reader) {
	for {
		line, err := rd.ReadLine(s.conf.IdleTimeout / 2)
		if errors.Is(err, proto.ErrTimeout) {
			if time.Since(p.LastActive()) >= s.conf.IdleTimeout {
				s.sink.Lobby("Player %s idled out", p.Nick)
				proto.Send(c, proto.MsgDisconnected)
				s.drop(p, c)
				return
			}
			continue
		}
		if err != nil {
			s.sink.Lobby("Player %s disconnected", p.Nick)
			s.drop(p, c)
			return
		}
		p.Touch()

		cmd, perr := proto.Parse(line)
		if perr != nil {
			proto.SendError(c, pig.ErrInvalidCommand)
			s.drop(p, c)
			return
		}

		switch cmd.Verb {
		case proto.CmdPing:
			proto.Send(c, proto.MsgOk, proto.KV("cmd", proto.CmdPing))
		case proto.CmdListRooms:
			s.listRooms(c)
		case proto.CmdLeaveRoom:
			if err := s.reg.LeaveRoom(p); err != nil {
				proto.SendError(c, pig.ErrGameInProgress,
					proto.KV("cmd", proto.CmdLeaveRoom))
			} else {
				proto.Send(c, proto.MsgOk, proto.KV("cmd", proto.CmdLeaveRoom))
			}
		case proto.CmdJoinRoom:
			if !s.joinRoom(p, c, rd, cmd) {
				return
			}
		case proto.CmdExit:
			s.sink.Lobby("Player %s left", p.Nick)
			s.drop(p, c)
			return
		default:
			proto.SendError(c, pig.ErrInvalidCommand)
			s.drop(p, c)
			return
		}
	}
}

func (s *Server) listRooms(c proto.Conn) {
	for _, r := range s.reg.Rooms() {
		count, state := r.Info()
		proto.Send(c, proto.MsgRoomInfo,
			proto.KV("room", strconv.Itoa(r.Id)),
			proto.KV("count", strconv.Itoa(count)),
			proto.KV("state", state.String()))
	}
}

// joinRoom seats the player.  Filling the room spawns the coordinator;
// joining a room with a free seat enters the waiting phase.  The
// return value reports whether the handler should stay in the lobby
// loop.
func (s *Server) joinRoom(p *lobby.Player, c proto.Conn, rd *proto.Reader, cmd *proto.Command) bool {
	id, ok := cmd.Int("room")
	if !ok {
		proto.SendError(c, pig.ErrInvalidCommand, proto.KV("cmd", proto.CmdJoinRoom))
		s.drop(p, c)
		return false
	}

	r, full, err := s.reg.JoinRoom(id, p)
	if err != nil {
		kind := pig.ErrCannotJoin
		switch {
		case errors.Is(err, lobby.ErrRoomFull):
			kind = pig.ErrRoomFull
		case errors.Is(err, lobby.ErrRoomBusy):
			kind = pig.ErrGameInProgress
		}
		proto.SendError(c, kind, proto.KV("cmd", proto.CmdJoinRoom))
		return true
	}

	s.sink.Lobby("Player %s joined room %d", p.Nick, r.Id)
	proto.Send(c, proto.MsgOk,
		proto.KV("cmd", proto.CmdJoinRoom),
		proto.KV("room", strconv.Itoa(r.Id)))

	if full {
		go s.coordinate(r)
		r.Notify(lobby.Event{Kind: lobby.EventJoined, Player: p})
		return s.park(p, c, r)
	}
	return s.wait(p, c, rd, r)
}

// wait is the holding pattern of the first player in a room.  The
// handler keeps servicing its own socket until the room fills, then
// hands the reader to the coordinator and parks.
func (s *Server) wait(p *lobby.Player, c proto.Conn, rd *proto.Reader, r *lobby.Room) bool {
	for {
		if r.State() != pig.RoomWaiting {
			r.Notify(lobby.Event{Kind: lobby.EventJoined, Player: p})
			return s.park(p, c, r)
		}

		line, err := rd.ReadLine(s.conf.PollInterval)
		if errors.Is(err, proto.ErrTimeout) {
			if time.Since(p.LastActive()) >= s.conf.IdleTimeout {
				if r.State() != pig.RoomWaiting {
					// The room filled; idle policy is the
					// coordinator's from here on.
					r.Notify(lobby.Event{Kind: lobby.EventJoined, Player: p})
					return s.park(p, c, r)
				}
				s.sink.Lobby("Player %s idled out while waiting", p.Nick)
				proto.Send(c, proto.MsgDisconnected)
				s.drop(p, c)
				return false
			}
			continue
		}
		if err != nil {
			if r.State() != pig.RoomWaiting {
				// The room filled under us.  Hand over anyway; the
				// coordinator will observe the dead socket itself.
				r.Notify(lobby.Event{Kind: lobby.EventJoined, Player: p})
				return s.park(p, c, r)
			}
			s.sink.Lobby("Player %s disconnected while waiting", p.Nick)
			s.drop(p, c)
			return false
		}
		p.Touch()

		cmd, perr := proto.Parse(line)
		if perr != nil {
			if r.State() != pig.RoomWaiting {
				// The line races the hand-off; the coordinator
				// drops malformed input without closing.
				r.Notify(lobby.Event{Kind: lobby.EventJoined, Player: p})
				return s.park(p, c, r)
			}
			proto.SendError(c, pig.ErrInvalidCommand)
			s.drop(p, c)
			return false
		}

		switch cmd.Verb {
		case proto.CmdPing:
			proto.Send(c, proto.MsgOk, proto.KV("cmd", proto.CmdPing))
		case proto.CmdListRooms:
			s.listRooms(c)
		case proto.CmdLeaveRoom:
			if err := s.reg.LeaveRoom(p); err != nil {
				proto.SendError(c, pig.ErrGameInProgress,
					proto.KV("cmd", proto.CmdLeaveRoom))
			} else {
				proto.Send(c, proto.MsgOk, proto.KV("cmd", proto.CmdLeaveRoom))
				return true
			}
		default:
			if r.State() != pig.RoomWaiting {
				r.Notify(lobby.Event{Kind: lobby.EventJoined, Player: p})
				return s.park(p, c, r)
			}
			proto.SendError(c, pig.ErrInvalidCommand)
			s.drop(p, c)
			return false
		}
	}
}

// park blocks until the current match tears down, then reports whether
// the handler still owns its connection.  Ownership is lost when the
// slot was dropped at teardown or adopted by a reconnecting session;
// the socket is not ours to close then.
func (s *Server) park(p *lobby.Player, c proto.Conn, r *lobby.Room) bool {
	if _, done := r.Match(); done != nil {
		<-done
	}
	return s.reg.Owns(p, c)
}
