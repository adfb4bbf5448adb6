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
	"io"
	"math/rand"
	"net"
	"strings"
	"testing"
	"time"
)

func pipe(t *testing.T) (*Reader, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewReader(server), client
}

func TestReadLine(t *testing.T) {
	rd, client := pipe(t)
	go func() {
		io.WriteString(client, "PING\nLOGIN|nick:alice\n")
	}()

	for _, want := range []string{"PING", "LOGIN|nick:alice"} {
		line, err := rd.ReadLine(time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if line != want {
			t.Fatalf("read %q, want %q", line, want)
		}
	}
}

func TestReadLineJoinsPartialReads(t *testing.T) {
	rd, client := pipe(t)
	go func() {
		for _, chunk := range []string{"LO", "GIN|ni", "ck:al", "ice\nPI", "NG\n"} {
			io.WriteString(client, chunk)
			time.Sleep(5 * time.Millisecond)
		}
	}()

	for _, want := range []string{"LOGIN|nick:alice", "PING"} {
		line, err := rd.ReadLine(time.Second)
		if err != nil {
			t.Fatal(err)
		}
		if line != want {
			t.Fatalf("read %q, want %q", line, want)
		}
	}
}

// Splitting a stream of valid lines at arbitrary boundaries must yield
// exactly the same lines in order.
func TestFramingIdempotence(t *testing.T) {
	lines := []string{
		"LOGIN|nick:alice", "LIST_ROOMS", "JOIN_ROOM|room:0",
		"ROLL", "ROLL", "HOLD", "PING", "QUIT", "EXIT",
	}
	stream := strings.Join(lines, "\n") + "\n"

	rng := rand.New(rand.NewSource(1))
	for round := 0; round < 8; round++ {
		var chunks []string
		rest := stream
		for len(rest) > 0 {
			n := 1 + rng.Intn(len(rest))
			chunks = append(chunks, rest[:n])
			rest = rest[n:]
		}

		rd, client := pipe(t)
		go func() {
			for _, chunk := range chunks {
				io.WriteString(client, chunk)
			}
		}()

		for i, want := range lines {
			line, err := rd.ReadLine(time.Second)
			if err != nil {
				t.Fatalf("(%d) line %d: %s", round, i, err)
			}
			if line != want {
				t.Fatalf("(%d) line %d is %q, want %q", round, i, line, want)
			}
		}
	}
}

func TestReadLineStripsCR(t *testing.T) {
	rd, client := pipe(t)
	go io.WriteString(client, "PING\r\n")

	line, err := rd.ReadLine(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if line != "PING" {
		t.Fatalf("read %q, want %q", line, "PING")
	}
}

func TestReadLineTimeout(t *testing.T) {
	rd, client := pipe(t)

	// A partial line must survive the timeout.
	go io.WriteString(client, "PAR")
	time.Sleep(20 * time.Millisecond)
	if _, err := rd.ReadLine(50 * time.Millisecond); !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}

	go io.WriteString(client, "TIAL\n")
	line, err := rd.ReadLine(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if line != "PARTIAL" {
		t.Fatalf("read %q, want %q", line, "PARTIAL")
	}
}

func TestReadLineOverflow(t *testing.T) {
	rd, client := pipe(t)
	go io.WriteString(client, strings.Repeat("x", readBufferSize))

	if _, err := rd.ReadLine(time.Second); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}

	// The buffer was cleared; the reader recovers on the next line.
	go io.WriteString(client, "PING\n")
	line, err := rd.ReadLine(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if line != "PING" {
		t.Fatalf("read %q, want %q", line, "PING")
	}
}

func TestReadLineEOF(t *testing.T) {
	rd, client := pipe(t)
	go func() {
		io.WriteString(client, "LAST\n")
		client.Close()
	}()

	line, err := rd.ReadLine(time.Second)
	if err != nil || line != "LAST" {
		t.Fatalf("read %q, %v", line, err)
	}
	if _, err := rd.ReadLine(time.Second); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}
