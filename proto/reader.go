// Buffered line reading
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
	"net"
	"os"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
)

// The read buffer holds two maximum-size frames, so a complete line is
// always extractable before the buffer can fill up.
const readBufferSize = 2 * pig.MsgMax

var (
	// The peer sent readBufferSize bytes without a line terminator.
	ErrOverflow = errors.New("unterminated line overflowed the read buffer")

	// No complete line arrived within the wait; nothing was consumed.
	ErrTimeout = errors.New("read timed out")
)

// Reader joins partial reads from a connection into LF-terminated
// lines.  It is owned by exactly one goroutine at a time: the
// connection handler outside a game, the game coordinator inside one.
// Ownership moves with the Reader value itself.
type Reader struct {
	conn Conn
	buf  [readBufferSize]byte
	n    int
}

func NewReader(c Conn) *Reader {
	return &Reader{conn: c}
}

// Conn returns the underlying connection.
func (r *Reader) Conn() Conn {
	return r.conn
}

// ReadLine returns the next complete line without its terminator,
// stripping one trailing CR.  It waits at most WAIT for new bytes.
// Peer close surfaces as io.EOF, an expired wait as ErrTimeout (with
// all buffered bytes retained), and an unterminated over-long line as
// ErrOverflow (with the buffer cleared).
func (r *Reader) ReadLine(wait time.Duration) (string, error) {
	for {
		if i := bytes.IndexByte(r.buf[:r.n], '\n'); i >= 0 {
			line := r.buf[:i]
			if len(line) > 0 && line[len(line)-1] == '\r' {
				line = line[:len(line)-1]
			}
			s := string(line)

			// Shift the remainder to the front of the buffer.
			copy(r.buf[:], r.buf[i+1:r.n])
			r.n -= i + 1
			return s, nil
		}

		if r.n >= readBufferSize {
			r.n = 0
			return "", ErrOverflow
		}

		r.conn.SetReadDeadline(time.Now().Add(wait))
		n, err := r.conn.Read(r.buf[r.n:])
		r.n += n
		if n > 0 {
			// Scan what we have before reporting any error; the
			// error will resurface on the next read.
			continue
		}
		if err == nil {
			return "", io.EOF
		}
		if isTimeout(err) {
			return "", ErrTimeout
		}
		if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
			return "", io.EOF
		}
		return "", err
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
