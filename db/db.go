// Database management
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

package db

import (
	"context"
	"database/sql"
	"embed"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path"
	"strings"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/conf"
)

//go:embed *.sql
var sql_dir embed.FS

type db struct {
	// The database connections
	read  *sql.DB
	write *sql.DB

	// The SQL statements are stored in .sql files next to this one
	// and loaded at registration.  QUERIES are handled by READ,
	// COMMANDS by WRITE.
	queries  map[string]*sql.Stmt
	commands map[string]*sql.Stmt
}

func (db *db) SaveMatch(ctx context.Context, m *pig.Match) {
	winner := sql.NullString{String: m.Winner, Valid: m.Winner != ""}
	res, err := db.commands["insert-match"].ExecContext(ctx,
		m.Room,
		m.Nicks[0], m.Nicks[1],
		m.Scores[0], m.Scores[1],
		winner,
		m.Outcome.String(),
		m.Started, m.Ended)
	if err != nil {
		log.Print(err)
		return
	}

	m.Id, err = res.LastInsertId()
	if err != nil {
		log.Print(err)
	}
}

func (db *db) QueryMatches(ctx context.Context, c chan<- *pig.Match, page int) {
	defer close(c)

	rows, err := db.queries["select-matches"].QueryContext(ctx, page)
	if err != nil {
		log.Print(err)
		return
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m       pig.Match
			winner  sql.NullString
			outcome string
		)
		err = rows.Scan(
			&m.Id, &m.Room,
			&m.Nicks[0], &m.Nicks[1],
			&m.Scores[0], &m.Scores[1],
			&winner, &outcome,
			&m.Started, &m.Ended)
		if err != nil {
			log.Print(err)
			return
		}
		if winner.Valid {
			m.Winner = winner.String
		}
		m.Outcome = parseOutcome(outcome)

		select {
		case c <- &m:
		case <-ctx.Done():
			return
		}
	}
	if err = rows.Err(); err != nil {
		log.Print(err)
	}
}

func parseOutcome(s string) pig.Outcome {
	switch s {
	case "Quit":
		return pig.OutcomeQuit
	case "Timeout":
		return pig.OutcomeTimeout
	case "Aborted":
		return pig.OutcomeAborted
	default:
		return pig.OutcomeWin
	}
}

func (db *db) Start() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGUSR1)
	tick := time.NewTicker(24 * time.Hour)
	for {
		var err error
		select {
		case <-c:
			// https://www.sqlite.org/lang_vacuum.html
			_, err = db.write.Exec("VACUUM;")
		case <-tick.C:
			// https://www.sqlite.org/pragma.html#pragma_optimize
			_, err = db.write.Exec("PRAGMA optimize;")
		}
		if err != nil {
			log.Print(err)
		}
	}
}

func (db *db) Shutdown() {
	var err error

	// https://www.sqlite.org/pragma.html#pragma_optimize
	_, err = db.write.Exec("PRAGMA optimize;")
	if err != nil {
		log.Print(err)
	}

	err = db.write.Close()
	if err != nil {
		log.Print(err)
	}

	err = db.read.Close()
	if err != nil {
		log.Print(err)
	}
}

func (*db) String() string { return "Database Manager" }

// Initialise the database and register the database manager
func Register(c *conf.Conf) {
	read, err := sql.Open("sqlite3", c.Database)
	if err != nil {
		log.Fatal(err, ": ", c.Database)
	}
	read.SetConnMaxLifetime(0)
	read.SetMaxIdleConns(1)

	write, err := sql.Open("sqlite3", c.Database)
	if err != nil {
		log.Fatal(err, ": ", c.Database)
	}
	write.SetConnMaxLifetime(0)
	write.SetMaxIdleConns(1)
	write.SetMaxOpenConns(1)

	db := &db{
		queries:  make(map[string]*sql.Stmt),
		commands: make(map[string]*sql.Stmt),
		write:    write,
		read:     read,
	}

	for _, pragma := range []string{
		// https://www.sqlite.org/pragma.html#pragma_journal_mode
		"journal_mode = WAL",
		// https://www.sqlite.org/pragma.html#pragma_synchronous
		"synchronous = normal",
		// https://www.sqlite.org/pragma.html#pragma_temp_store
		"temp_store = memory",
	} {
		pig.Debug.Printf("Run PRAGMA %v", pragma)
		_, err = db.write.Exec("PRAGMA " + pragma + ";")
		if err != nil {
			log.Fatal(err)
		}
	}

	entries, err := sql_dir.ReadDir(".")
	if err != nil {
		log.Fatal(err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		base := path.Base(entry.Name())
		data, err := fs.ReadFile(sql_dir, entry.Name())
		if err != nil {
			log.Fatal(err)
		}

		if strings.HasPrefix(base, "create-") {
			_, err = db.write.Exec(string(data))
			pig.Debug.Printf("Executed query %v", base)
		} else {
			query := strings.TrimSuffix(base, ".sql")
			if strings.HasPrefix(query, "select-") {
				db.queries[query], err = db.read.Prepare(string(data))
				pig.Debug.Printf("Registered query %v", query)
			} else {
				db.commands[query], err = db.write.Prepare(string(data))
				pig.Debug.Printf("Registered command %v", query)
			}
		}
		if err != nil {
			log.Fatal(entry.Name(), ": ", err)
		}
	}

	if len(db.queries) == 0 {
		panic("No queries loaded")
	}

	c.Register(conf.DatabaseManager(db))
}
