// Copyright 2023 Jesus Ruiz. All rights reserved.
// Use of this source code is governed by an Apache-2.0
// license that can be found in the LICENSE file.

// Package sliceedit queues edits to a byte slice on top of rsc.io/edit and
// applies all of them at once, with a single allocation for the result.
//
// Offsets of queued edits always refer to the original data, so many
// replacements can be queued without recomputing positions.
package sliceedit

import (
	"bytes"

	"rsc.io/edit"
)

// A Buffer is a queue of edits to apply to a given byte slice.
type Buffer struct {
	ed  *edit.Buffer
	buf []byte
}

// NewBuffer returns a new buffer to accumulate changes to an initial data slice.
// The caller must not modify data until the Buffer is done being used.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{
		ed:  edit.NewBuffer(data),
		buf: data,
	}
}

// NewBufferString is like NewBuffer for a string
func NewBufferString(s string) *Buffer {
	return NewBuffer([]byte(s))
}

// FindAll returns the offsets of all non-overlapping instances of item in buf.
func FindAll(buf []byte, item string) []int {
	found := []int{}
	if len(item) == 0 {
		return found
	}

	offset := 0
	for {
		i := bytes.Index(buf[offset:], []byte(item))
		if i == -1 {
			return found
		}
		found = append(found, offset+i)
		offset += i + len(item)
	}
}

// Replace queues the replacement of every instance of old by new.
// It returns the number of instances found.
func (b *Buffer) Replace(old string, new string) int {
	hits := FindAll(b.buf, old)
	for _, hit := range hits {
		b.ed.Replace(hit, hit+len(old), new)
	}
	return len(hits)
}

// ReplaceBytes queues the replacement of every byte found in table by its value,
// scanning the data only once. It returns the number of bytes replaced.
func (b *Buffer) ReplaceBytes(table map[byte]string) int {
	n := 0
	for i, c := range b.buf {
		if r, ok := table[c]; ok {
			b.ed.Replace(i, i+1, r)
			n++
		}
	}
	return n
}

// Bytes returns a new byte slice containing the original data
// with the queued edits applied.
func (b *Buffer) Bytes() []byte {
	return b.ed.Bytes()
}

// String returns a string containing the original data
// with the queued edits applied.
func (b *Buffer) String() string {
	return string(b.ed.Bytes())
}
