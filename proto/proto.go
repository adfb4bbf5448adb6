// Wire format encoding
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
	"bytes"
	"errors"
	"io"
	"strings"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
)

// Client verbs
const (
	CmdLogin            = "LOGIN"
	CmdResume           = "RESUME"
	CmdListRooms        = "LIST_ROOMS"
	CmdJoinRoom         = "JOIN_ROOM"
	CmdLeaveRoom        = "LEAVE_ROOM"
	CmdRoll             = "ROLL"
	CmdHold             = "HOLD"
	CmdQuit             = "QUIT"
	CmdPing             = "PING"
	CmdExit             = "EXIT"
	CmdGameStateRequest = "GAME_STATE_REQUEST"
)

// Server verbs
const (
	MsgOk                   = "OK"
	MsgError                = "ERROR"
	MsgWelcome              = "WELCOME"
	MsgGamePaused           = "GAME_PAUSED"
	MsgRoomInfo             = "ROOM_INFO"
	MsgJoinOk               = "JOIN_OK"
	MsgGameStart            = "GAME_START"
	MsgGameState            = "GAME_STATE"
	MsgGameWin              = "GAME_WIN"
	MsgGameLose             = "GAME_LOSE"
	MsgOpponentDisconnected = "OPPONENT_DISCONNECTED"
	MsgOpponentReconnected  = "OPPONENT_RECONNECTED"
	MsgDisconnected         = "DISCONNECTED"
)

// Conn is the transport the codec operates on.  *net.TCPConn and the
// WebSocket adapter in the web package both satisfy it.
type Conn interface {
	io.ReadWriteCloser
	SetReadDeadline(t time.Time) error
}

// Arg is one key:value pair of a framed message.
type Arg struct {
	Key   string
	Value string
}

func KV(key, value string) Arg {
	return Arg{Key: key, Value: value}
}

var (
	// A message that would not fit into one frame.
	ErrTooLong = errors.New("message exceeds maximum frame length")

	// A key or value containing a delimiter byte.
	ErrBadToken = errors.New("illegal byte in message token")
)

// Keys and values must not contain the frame delimiters; there is no
// escaping in this protocol.
func legalToken(s string) bool {
	return !strings.ContainsAny(s, "|:\r\n")
}

// Encode frames a message as VERB|key:value|...\n.  The result is at
// most pig.MsgMax bytes; longer messages are refused rather than
// truncated.
func Encode(verb string, args ...Arg) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(verb)
	for _, a := range args {
		if !legalToken(a.Key) || !legalToken(a.Value) {
			return nil, ErrBadToken
		}
		buf.WriteByte('|')
		buf.WriteString(a.Key)
		buf.WriteByte(':')
		buf.WriteString(a.Value)
	}
	buf.WriteByte('\n')

	if buf.Len() > pig.MsgMax {
		return nil, ErrTooLong
	}
	return buf.Bytes(), nil
}

// Send frames and writes one message.  Writes are best-effort; the
// caller decides whether a failure tears the session down.
func Send(w io.Writer, verb string, args ...Arg) error {
	b, err := Encode(verb, args...)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// SendError is a shorthand for the ERROR|msg:<kind> reply.
func SendError(w io.Writer, kind pig.ErrorKind, args ...Arg) error {
	return Send(w, MsgError, append([]Arg{KV("msg", string(kind))}, args...)...)
}
