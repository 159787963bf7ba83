// Websocket listener manager
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

package web

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
)

type Listener struct {
	srv     *http.Server
	connect func(io.ReadWriteCloser)
}

func MakeListener(port uint, connect func(io.ReadWriteCloser)) *Listener {
	return &Listener{
		srv:     &http.Server{Addr: fmt.Sprintf(":%d", port)},
		connect: connect,
	}
}

func (*Listener) String() string { return "Websocket Handler" }

func (l *Listener) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "User-agent: *\nDisallow: /")
	})
	mux.HandleFunc("/socket", upgrader(l.connect))
	l.srv.Handler = mux

	log.Printf("Accepting websocket connections on %s/socket", l.srv.Addr)
	err := l.srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		log.Print(err)
	}
}

func (l *Listener) Shutdown() {
	if err := l.srv.Shutdown(context.Background()); err != nil {
		log.Print(err)
	}
}
