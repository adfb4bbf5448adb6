// Common constants and shared types
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
	"time"
)

const (
	// First player to bank this many points wins.
	WinningScore = 30

	// A room seats exactly two players.
	RoomSize = 2

	// Nicknames are 1 to NicknameLen-1 visible characters.
	NicknameLen = 32

	// Maximum length of one framed protocol line, terminator included.
	MsgMax = 256

	DefaultPort       = 12345
	DefaultMaxPlayers = 10
	DefaultMaxRooms   = 5
)

type (
	PlayerState uint8
	RoomState   uint8
	Outcome     uint8
)

const (
	// Possible player lifecycle states
	StateLobby PlayerState = iota
	StateInGame
)

const (
	// Possible room states
	RoomWaiting RoomState = iota
	RoomInProgress
	RoomPaused
	RoomAborted
)

const (
	// Possible match outcomes
	OutcomeWin Outcome = iota
	OutcomeQuit
	OutcomeTimeout
	OutcomeAborted
)

func (s PlayerState) String() string {
	switch s {
	case StateLobby:
		return "Lobby"
	case StateInGame:
		return "InGame"
	default:
		panic(fmt.Sprintf("Illegal player state: %d", s))
	}
}

// String returns the wire representation used by ROOM_INFO.
func (s RoomState) String() string {
	switch s {
	case RoomWaiting:
		return "WAITING"
	case RoomInProgress:
		return "IN_PROGRESS"
	case RoomPaused:
		return "PAUSED"
	case RoomAborted:
		return "ABORTED"
	default:
		panic(fmt.Sprintf("Illegal room state: %d", s))
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "Win"
	case OutcomeQuit:
		return "Quit"
	case OutcomeTimeout:
		return "Timeout"
	case OutcomeAborted:
		return "Aborted"
	default:
		panic(fmt.Sprintf("Illegal outcome: %d", o))
	}
}

// ErrorKind is the wire value carried in the msg key of an ERROR line.
type ErrorKind string

const (
	ErrInvalidCommand  ErrorKind = "INVALID_COMMAND"
	ErrInvalidNickname ErrorKind = "INVALID_NICKNAME"
	ErrNicknameInUse   ErrorKind = "NICKNAME_IN_USE"
	ErrServerFull      ErrorKind = "SERVER_FULL"
	ErrRoomFull        ErrorKind = "ROOM_FULL"
	ErrGameInProgress  ErrorKind = "GAME_IN_PROGRESS"
	ErrCannotJoin      ErrorKind = "CANNOT_JOIN"
	ErrOpponentQuit    ErrorKind = "OPPONENT_QUIT"
	ErrOpponentTimeout ErrorKind = "OPPONENT_TIMEOUT"
)

// Match is the archived record of one finished game.
type Match struct {
	Id      int64
	Room    int
	Nicks   [2]string
	Scores  [2]int
	Winner  string // empty when the match was aborted
	Outcome Outcome
	Started time.Time
	Ended   time.Time
}
