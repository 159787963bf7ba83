// Client Communication Management
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
	"context"
	"errors"
	"io"
	"sync"

	stratepig "github.com/miapolis/stratepig-server"
)

// Handler consumes the decoded frames of a connection.  Packet is
// called from the connection's own goroutine, one frame at a time,
// so a client's messages are always handled in order.
type Handler interface {
	Packet(cli *Client, pkt *Packet)
	Disconnected(cli *Client)
}

// Client wraps a network connection into a frame stream.
type Client struct {
	id     int
	rwc    io.ReadWriteCloser
	iolock sync.Mutex // write lock
	kill   context.CancelFunc
	once   sync.Once
}

func MakeClient(id int, rwc io.ReadWriteCloser) *Client {
	return &Client{id: id, rwc: rwc}
}

func (cli *Client) ID() int { return cli.id }

// Send writes one frame, serialized against concurrent senders.
func (cli *Client) Send(pkt *Packet) error {
	defer cli.iolock.Unlock()
	cli.iolock.Lock()

	stratepig.Debug.Printf("client %d > message %d (%d bytes)",
		cli.id, pkt.ID, len(pkt.Body))
	_, err := cli.rwc.Write(pkt.Bytes())
	if err != nil {
		stratepig.Debug.Print(err)
		cli.Kill()
	}
	return err
}

// Kill tears the connection down.  Safe to call more than once and
// from any goroutine; the read loop will wind down and notify the
// handler.
func (cli *Client) Kill() {
	cli.once.Do(func() {
		if cli.kill != nil {
			cli.kill()
		} else {
			cli.rwc.Close()
		}
	})
}

// Handle reads frames until the connection dies, dispatching each to
// the handler.  It must be called exactly once, usually in its own
// goroutine, and invokes Disconnected before returning.
func (cli *Client) Handle(h Handler) {
	var ctx context.Context
	ctx, cli.kill = context.WithCancel(context.Background())
	go func() {
		// Closing the connection is the only reliable way to
		// unblock a pending Read.
		<-ctx.Done()
		cli.rwc.Close()
	}()
	defer h.Disconnected(cli)
	defer cli.kill()

	buf := make([]byte, BufferSize)
	used := 0
	for {
		for {
			pkt, n, err := Extract(buf[:used])
			if err != nil {
				stratepig.Debug.Printf("client %d: %s", cli.id, err)
				return
			}
			if pkt == nil {
				break
			}
			copy(buf, buf[n:used])
			used -= n
			stratepig.Debug.Printf("client %d < message %d (%d bytes)",
				cli.id, pkt.ID, len(pkt.Body))
			h.Packet(cli, pkt)
		}

		if used == len(buf) {
			stratepig.Debug.Printf("client %d filled the receive buffer", cli.id)
			return
		}
		n, err := cli.rwc.Read(buf[used:])
		if err != nil {
			if !errors.Is(err, io.EOF) {
				stratepig.Debug.Printf("client %d: %s", cli.id, err)
			}
			return
		}
		used += n
	}
}
