// TCP interface
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

package proto

import (
	"io"
	"log"
	"net"
	"strconv"
	"strings"

	stratepig "github.com/miapolis/stratepig-server"
)

// Listener accepts TCP connections and hands them to a connect
// callback as plain byte streams.
type Listener struct {
	addr    string
	conn    net.Listener
	port    uint16
	connect func(io.ReadWriteCloser)
}

func (*Listener) String() string {
	return "TCP Handler"
}

func MakeListener(host string, port uint16, connect func(io.ReadWriteCloser)) *Listener {
	return &Listener{
		addr:    net.JoinHostPort(host, strconv.Itoa(int(port))),
		port:    port,
		connect: connect,
	}
}

// Initialise the listener, unless it has already been initialised
func (t *Listener) init() {
	if t.conn != nil {
		return
	}

	var err error
	t.conn, err = net.Listen("tcp", t.addr)
	if err != nil {
		log.Fatal(err)
	}
	if t.port == 0 {
		// Extract the port the operating system bound the
		// listener to, since port 0 picks a random open port
		addr := t.conn.Addr().String()
		i := strings.LastIndexByte(addr, ':')
		if i == -1 {
			log.Fatal("Invalid address ", addr)
		}
		port, err := strconv.ParseUint(addr[i+1:], 10, 16)
		if err != nil {
			log.Fatal("Unexpected error ", err)
		}
		t.port = uint16(port)
	}
}

func (t *Listener) Start() {
	t.init()

	log.Printf("Accepting connections on %s", t.addr)
	for {
		conn, err := t.conn.Accept()
		if err != nil {
			stratepig.Debug.Print(err)
			return
		}
		t.connect(conn)
	}
}

func (t *Listener) Port() uint16 {
	t.init()
	return t.port
}

func (t *Listener) Shutdown() {
	if err := t.conn.Close(); err != nil {
		log.Print(err)
	}
}
