// Entry point
//
// Copyright (c) 2021, 2022  The stratepig-server authors
//
// This file is part of stratepig-server.
//
// stratepig-server is free software: you can redistribute it and/or
// modify it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// stratepig-server is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with stratepig-server. If not, see
// <http://www.gnu.org/licenses/>

package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/miapolis/stratepig-server/conf"
	"github.com/miapolis/stratepig-server/game"
	"github.com/miapolis/stratepig-server/proto"
	"github.com/miapolis/stratepig-server/web"
)

func main() {
	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	log.Println("Starting Stratepig Server...")
	config := conf.Load()
	config.Log()

	server := game.NewServer(config)

	// Allow TCP connections
	tcp := proto.MakeListener(config.Proto.Host, uint16(config.Proto.Port), server.Connect)
	go tcp.Start()

	// Enable the websocket interface
	var ws *web.Listener
	if config.Web.Enabled {
		ws = web.MakeListener(config.Web.Port, server.Connect)
		go ws.Start()
	}

	// Operator commands on standard input
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			switch scanner.Text() {
			case "ss stats":
				clients, rooms := server.Stats()
				fmt.Println("--- SERVER STATS ---")
				fmt.Println("Number of clients:", clients)
				fmt.Println("Number of rooms:", rooms)
			}
		}
	}()

	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt, syscall.SIGTERM)
	<-intr
	log.Println("Received exit signal")

	tcp.Shutdown()
	if ws != nil {
		ws.Shutdown()
	}
}
