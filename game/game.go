// Pig rules
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

// Package game implements the rules of Pig with no I/O.  A State is
// owned by a single game coordinator; randomness is per-State, never
// shared.
package game

import (
	"math/rand"

	pig "github.com/FilipDolezal/pig-game-server"
)

// State is everything about one ongoing match.
type State struct {
	Scores   [2]int
	Current  int // whose turn it is, 0 or 1
	Turn     int // points accumulated this turn, lost on a 1
	LastRoll int // last die roll, 0 after a hold
	Over     bool
	Winner   int // -1 until decided

	rng *rand.Rand
}

// New initializes a match.  The seed decides both the die and which
// player opens.
func New(seed int64) *State {
	rng := rand.New(rand.NewSource(seed))
	return &State{
		Winner:  -1,
		Current: rng.Intn(2),
		rng:     rng,
	}
}

// Roll draws the die for the current player.  A 1 forfeits the turn
// score and passes the turn; any other roll accumulates, winning
// outright once banked and turn points together reach the target.
func (s *State) Roll() {
	if s.Over {
		return
	}

	r := s.rng.Intn(6) + 1
	s.LastRoll = r
	if r == 1 {
		s.Turn = 0
		s.Switch()
		return
	}

	s.Turn += r
	if s.Scores[s.Current]+s.Turn >= pig.WinningScore {
		s.Over = true
		s.Winner = s.Current
	}
}

// Hold banks the turn score.  Unless that decides the match, the turn
// passes.
func (s *State) Hold() {
	if s.Over {
		return
	}

	s.Scores[s.Current] += s.Turn
	s.Turn = 0
	s.LastRoll = 0
	if s.Scores[s.Current] >= pig.WinningScore {
		s.Over = true
		s.Winner = s.Current
		return
	}
	s.Switch()
}

// Switch passes the turn to the other player.
func (s *State) Switch() {
	s.Current = 1 - s.Current
}
