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

package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/conf"
)

func testDB(t *testing.T) conf.DatabaseManager {
	t.Helper()
	c := conf.Default()
	c.Database = filepath.Join(t.TempDir(), "pig.db")
	Register(c)
	if c.DB == nil {
		t.Fatal("no database manager registered")
	}
	t.Cleanup(c.DB.Shutdown)
	return c.DB
}

func TestSaveAndQuery(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()

	now := time.Now()
	matches := []*pig.Match{
		{
			Room:    0,
			Nicks:   [2]string{"alice", "bob"},
			Scores:  [2]int{30, 12},
			Winner:  "alice",
			Outcome: pig.OutcomeWin,
			Started: now.Add(-time.Minute),
			Ended:   now,
		}, {
			Room:    1,
			Nicks:   [2]string{"eve", "mallory"},
			Scores:  [2]int{4, 9},
			Outcome: pig.OutcomeAborted,
			Started: now.Add(-time.Hour),
			Ended:   now.Add(-59 * time.Minute),
		},
	}
	for _, m := range matches {
		db.SaveMatch(ctx, m)
		if m.Id == 0 {
			t.Fatal("saved match was not assigned an id")
		}
	}

	c := make(chan *pig.Match)
	go db.QueryMatches(ctx, c, 0)

	// Newest first
	var got []*pig.Match
	for m := range c {
		got = append(got, m)
	}
	if len(got) != 2 {
		t.Fatalf("query returned %d matches, want 2", len(got))
	}
	for i, m := range []*pig.Match{matches[1], matches[0]} {
		q := got[i]
		if q.Room != m.Room || q.Nicks != m.Nicks || q.Scores != m.Scores {
			t.Errorf("match %d came back as %+v", i, q)
		}
		if q.Winner != m.Winner || q.Outcome != m.Outcome {
			t.Errorf("match %d outcome came back as %q/%v", i, q.Winner, q.Outcome)
		}
		if q.Ended.Unix() != m.Ended.Unix() {
			t.Errorf("match %d end time came back as %s", i, q.Ended)
		}
	}
}

func TestQueryEmpty(t *testing.T) {
	db := testDB(t)

	c := make(chan *pig.Match)
	go db.QueryMatches(context.Background(), c, 0)
	if m, ok := <-c; ok {
		t.Fatalf("empty archive returned %+v", m)
	}
}
