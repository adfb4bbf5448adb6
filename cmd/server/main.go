// Entry point
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

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	pig "github.com/FilipDolezal/pig-game-server"
	"github.com/FilipDolezal/pig-game-server/conf"
	"github.com/FilipDolezal/pig-game-server/db"
	"github.com/FilipDolezal/pig-game-server/proto"
	"github.com/FilipDolezal/pig-game-server/session"
	"github.com/FilipDolezal/pig-game-server/web"
)

// Default file name for the configuration file
const defconf = "server.toml"

func main() {
	var (
		confFile = flag.String("conf", defconf, "Name of configuration file")
		dumpConf = flag.Bool("dump-config", false, "Dump default configuration")
		debug    = flag.Bool("debug", false, "Enable debug logging")
		addr     = flag.String("a", "", "Address to bind to")
		players  = flag.Int("p", 0, "Maximal number of players")
		rooms    = flag.Int("r", 0, "Number of rooms")
		logDir   = flag.String("l", "", "Log directory")
	)

	flag.Parse()
	if flag.NArg() > 1 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load the configuration from disk (if available)
	config, err := conf.Open(*confFile)
	if err != nil {
		if !os.IsNotExist(err) || *confFile != defconf {
			log.Fatal(err)
		}
		config = conf.Default()
	}

	if *debug {
		pig.Debug.SetOutput(os.Stderr)
		pig.Debug.Println("Debug logging has been enabled")
	}

	// Command line flags take precedence over the file
	if *addr != "" {
		config.Addr = *addr
	}
	if *players > 0 {
		config.MaxPlayers = *players
	}
	if *rooms > 0 {
		config.MaxRooms = *rooms
	}
	if *logDir != "" {
		config.LogDir = *logDir
	}
	if flag.NArg() == 1 {
		port, err := strconv.ParseUint(flag.Arg(0), 10, 16)
		if err != nil || port == 0 {
			log.Fatalf("Invalid port %q", flag.Arg(0))
		}
		config.Port = uint16(port)
	}

	// Dump the configuration onto the disk if requested
	if *dumpConf {
		err = config.Dump(os.Stdout)
		if err != nil {
			log.Fatalln("Failed to dump default configuration:", err)
		}
		os.Exit(0)
	}

	sink, err := pig.OpenSink(config.LogDir)
	if err != nil {
		log.Fatalln("Failed to open log sink:", err)
	}
	defer sink.Close()

	srv := session.MakeServer(config, sink)

	// Enable the database
	db.Register(config)

	// Enable the web interface
	web.Prepare(config, srv)

	// Allow TCP connections
	lst, err := proto.MakeListener(config.Addr, config.Port, srv.Handle)
	if err != nil {
		log.Fatalln("Failed to bind:", err)
	}
	config.Register(lst)
	sink.Server("Listening on %s:%d", config.Addr, config.Port)

	// Launch the server
	config.Start()
}
