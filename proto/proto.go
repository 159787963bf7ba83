// Wire format primitives
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

// Package proto implements the framed binary protocol spoken between
// the server and its clients.  Every frame starts with a three byte
// header, a little-endian uint16 body size followed by the message
// id, and carries a positionally encoded body.  All integers are
// little-endian; strings are prefixed with an int32 byte length;
// lists are prefixed with a uint32 element count.
package proto

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

const (
	// HeaderSize is the fixed frame header length.
	HeaderSize = 3
	// MaxBodySize is the largest accepted frame body.
	MaxBodySize = 8192
	// BufferSize is the per-connection receive buffer.  A peer
	// that fills it without completing a frame is dropped.
	BufferSize = 16 * 1024
)

var (
	ErrOversize  = errors.New("frame body exceeds limit")
	ErrTruncated = errors.New("frame body too short")
	ErrBadString = errors.New("malformed string field")
	ErrTrailing  = errors.New("trailing bytes after body")
)

// Packet is a single decoded frame.
type Packet struct {
	ID   byte
	Body []byte
}

// Bytes encodes the frame with its header.
func (p *Packet) Bytes() []byte {
	buf := make([]byte, HeaderSize+len(p.Body))
	binary.LittleEndian.PutUint16(buf, uint16(len(p.Body)))
	buf[2] = p.ID
	copy(buf[HeaderSize:], p.Body)
	return buf
}

// Extract parses the first complete frame in BUF.  It returns the
// number of bytes consumed, zero if no complete frame has arrived
// yet, or an error if the peer violates the framing rules.
func Extract(buf []byte) (*Packet, int, error) {
	if len(buf) < HeaderSize {
		return nil, 0, nil
	}
	size := int(binary.LittleEndian.Uint16(buf))
	if size > MaxBodySize {
		return nil, 0, ErrOversize
	}
	total := HeaderSize + size
	if len(buf) < total {
		return nil, 0, nil
	}
	body := make([]byte, size)
	copy(body, buf[HeaderSize:total])
	return &Packet{ID: buf[2], Body: body}, total, nil
}

// Reader decodes positional fields from a frame body.  The first
// failure sticks; callers check Err once after reading every field.
type Reader struct {
	buf []byte
	pos int
	err error
}

func NewReader(body []byte) *Reader {
	return &Reader{buf: body}
}

func (r *Reader) Err() error { return r.err }

// Close returns the sticky error, or ErrTrailing if decoded fields
// did not consume the whole body.
func (r *Reader) Close() error {
	if r.err != nil {
		return r.err
	}
	if r.pos != len(r.buf) {
		return ErrTrailing
	}
	return nil
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos+n > len(r.buf) {
		r.err = ErrTruncated
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) U8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Bool() bool {
	return r.U8() != 0
}

func (r *Reader) U16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) U32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) I32() int32 {
	return int32(r.U32())
}

func (r *Reader) U64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) I64() int64 {
	return int64(r.U64())
}

// U128 reads a 16 byte little-endian integer, returning its low
// word.  No field the client sends legitimately exceeds 64 bits.
func (r *Reader) U128() uint64 {
	b := r.take(16)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// String reads an int32 byte length followed by UTF-8 data.
func (r *Reader) String() string {
	n := r.I32()
	if r.err != nil {
		return ""
	}
	if n <= 0 || int(n) > len(r.buf)-r.pos {
		r.err = ErrBadString
		return ""
	}
	b := r.take(int(n))
	if !utf8.Valid(b) {
		r.err = ErrBadString
		return ""
	}
	return string(b)
}

// StringOpt reads a string field the sender may leave empty, such as
// the join code on a hosting request.  A zero length decodes as "";
// negative lengths are still malformed.
func (r *Reader) StringOpt() string {
	n := r.I32()
	if r.err != nil {
		return ""
	}
	if n == 0 {
		return ""
	}
	if n < 0 || int(n) > len(r.buf)-r.pos {
		r.err = ErrBadString
		return ""
	}
	b := r.take(int(n))
	if !utf8.Valid(b) {
		r.err = ErrBadString
		return ""
	}
	return string(b)
}

// Count reads a list length prefix.
func (r *Reader) Count() int {
	n := r.U32()
	if r.err != nil {
		return 0
	}
	// Even one-byte elements could not fill a body this short.
	if int(n) > len(r.buf)-r.pos {
		r.err = ErrTruncated
		return 0
	}
	return int(n)
}

// Writer builds a frame body field by field.
type Writer struct {
	id  byte
	buf []byte
}

func NewWriter(id byte) *Writer {
	return &Writer{id: id}
}

func (w *Writer) U8(v uint8) *Writer {
	w.buf = append(w.buf, v)
	return w
}

func (w *Writer) Bool(v bool) *Writer {
	if v {
		return w.U8(1)
	}
	return w.U8(0)
}

func (w *Writer) U16(v uint16) *Writer {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
	return w
}

func (w *Writer) U32(v uint32) *Writer {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
	return w
}

func (w *Writer) I32(v int32) *Writer {
	return w.U32(uint32(v))
}

func (w *Writer) U64(v uint64) *Writer {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	return w
}

func (w *Writer) I64(v int64) *Writer {
	return w.U64(uint64(v))
}

// U128 writes V zero-extended to 16 bytes.
func (w *Writer) U128(v uint64) *Writer {
	return w.U64(v).U64(0)
}

// I128 writes V sign-extended to 16 bytes.
func (w *Writer) I128(v int64) *Writer {
	w.U64(uint64(v))
	if v < 0 {
		return w.U64(^uint64(0))
	}
	return w.U64(0)
}

func (w *Writer) String(s string) *Writer {
	w.I32(int32(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *Writer) Count(n int) *Writer {
	return w.U32(uint32(n))
}

func (w *Writer) Packet() *Packet {
	return &Packet{ID: w.id, Body: w.buf}
}
