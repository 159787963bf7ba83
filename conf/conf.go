// Configuration Specification and Management
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

package conf

import (
	"flag"
	"io"
	"log"
	"os"

	stratepig "github.com/miapolis/stratepig-server"

	"github.com/BurntSushi/toml"
)

const defconf = "stratepig.toml"

type ProtoConf struct {
	Host string `toml:"host"`
	Port uint   `toml:"port"`
}

type WebConf struct {
	Enabled bool `toml:"enabled"`
	Port    uint `toml:"port"`
}

type RoomConf struct {
	// Max bounds how many rooms may exist at once.
	Max uint `toml:"max"`
	// PruneInterval is how often the reaper wakes up, PruneAge how
	// long an idle room survives it, both in seconds.
	PruneInterval uint `toml:"prune-interval"`
	PruneAge      uint `toml:"prune-age"`
}

// Internal representation
type Conf struct {
	Proto ProtoConf `toml:"proto"`
	Web   WebConf   `toml:"web"`
	Room  RoomConf  `toml:"room"`

	// Development switches, flags only
	OnePlayer   bool `toml:"-"`
	SwiftEnter  bool `toml:"-"`
	IgnoreTurns bool `toml:"-"`
	LogOutput   bool `toml:"-"`
}

// Configuration object used by default
var defaultConfig = Conf{
	Proto: ProtoConf{
		Host: "0.0.0.0",
		Port: 32500,
	},
	Web: WebConf{
		Enabled: false,
		Port:    8080,
	},
	Room: RoomConf{
		Max:           1000,
		PruneInterval: 180,
		PruneAge:      300,
	},
}

var (
	debug  = false
	silent = false
	dump   = false
	cfile  = defconf
)

func init() {
	def := &defaultConfig

	flag.StringVar(&def.Proto.Host, "host", def.Proto.Host,
		"Host address to bind the TCP listener to")
	flag.UintVar(&def.Proto.Port, "port", def.Proto.Port,
		"Port to use for TCP connections")
	flag.BoolVar(&def.Web.Enabled, "websocket", def.Web.Enabled,
		"Enable the websocket listener")
	flag.UintVar(&def.Web.Port, "wwwport", def.Web.Port,
		"Port to use for websocket connections")
	flag.UintVar(&def.Room.Max, "max-rooms", def.Room.Max,
		"Number of concurrent rooms the server allows")

	flag.BoolVar(&def.OnePlayer, "p", def.OnePlayer,
		"Require only one player in lobby and in game, implies -t")
	flag.BoolVar(&def.SwiftEnter, "s", def.SwiftEnter,
		"Send the host into a game immediately")
	flag.BoolVar(&def.IgnoreTurns, "t", def.IgnoreTurns,
		"Do not enforce turns in game")
	flag.BoolVar(&def.LogOutput, "o", def.LogOutput,
		"Log received packets")

	flag.BoolVar(&debug, "debug", debug, "Enable debug output")
	flag.BoolVar(&silent, "silent", silent, "Disable logging output")
	flag.BoolVar(&dump, "dump-config", dump, "Dump configuration to standard output")
	flag.StringVar(&cfile, "conf", cfile, "Path to configuration file")
}

// Load opens the configuration file, if any, and finalises the
// command line overrides.
func Load() *Conf {
	c := &defaultConfig
	file, err := os.Open(cfile)
	if err != nil {
		if !os.IsNotExist(err) || cfile != defconf {
			log.Fatal(err)
		}
	} else {
		defer file.Close()
		if _, err := toml.NewDecoder(file).Decode(c); err != nil {
			log.Print(err)
		}
	}

	if c.OnePlayer {
		c.IgnoreTurns = true
	}

	switch {
	case debug:
		stratepig.Debug.SetOutput(os.Stderr)
		log.Default().SetFlags(log.LstdFlags | log.Lshortfile)
		stratepig.Debug.Println("Debug logging has been enabled")
	case silent:
		log.Default().SetOutput(io.Discard)
	}

	// Dump the configuration onto the disk if requested
	if dump {
		if err := c.Dump(os.Stdout); err != nil {
			log.Fatalln("Failed to dump configuration:", err)
		}
		os.Exit(0)
	}

	return c
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	return toml.NewEncoder(wr).Encode(c)
}

// Log prints the development switches on startup.
func (c *Conf) Log() {
	log.Println("[Config]")
	log.Println("| ONE_PLAYER:", c.OnePlayer)
	log.Println("| SWIFT_GAME_ENTER:", c.SwiftEnter)
	log.Println("| IGNORE_TURNS:", c.IgnoreTurns)
	log.Println("| LOG_PACKET_OUTPUT:", c.LogOutput)
}
