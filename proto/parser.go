// Command parsing
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
	"strconv"
	"strings"
)

// A command carries at most this many key:value pairs.
const MaxArgs = 5

var ErrMalformed = errors.New("malformed command")

// Command is one parsed client line.  Verb is kept verbatim; verbs the
// server does not recognize are handled by the dispatching switch.
type Command struct {
	Verb string
	Args []Arg
}

// Parse splits a framed line into a verb and its key:value arguments.
// A pair without a colon, an empty key or value, or more than MaxArgs
// pairs is a parse error.
func Parse(line string) (*Command, error) {
	fields := strings.Split(line, "|")
	if fields[0] == "" {
		return nil, ErrMalformed
	}
	if len(fields)-1 > MaxArgs {
		return nil, ErrMalformed
	}

	cmd := &Command{Verb: fields[0]}
	for _, field := range fields[1:] {
		key, value, ok := strings.Cut(field, ":")
		if !ok || key == "" || value == "" {
			return nil, ErrMalformed
		}
		cmd.Args = append(cmd.Args, Arg{Key: key, Value: value})
	}
	return cmd, nil
}

// Arg looks up an argument by key.  Duplicate keys resolve to the last
// occurrence.
func (c *Command) Arg(key string) (string, bool) {
	for i := len(c.Args) - 1; i >= 0; i-- {
		if c.Args[i].Key == key {
			return c.Args[i].Value, true
		}
	}
	return "", false
}

// Int looks up an argument and converts it to an integer.
func (c *Command) Int(key string) (int, bool) {
	v, ok := c.Arg(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
