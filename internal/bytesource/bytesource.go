/*
 * Copyright 2026 National Library of Norway.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *       http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package bytesource concatenates a list of inputs into one decompressed byte stream.
package bytesource

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/nlnwa/warcparquet"
	"github.com/nlnwa/warcparquet/internal/countingreader"
	log "github.com/sirupsen/logrus"
)

// Compression decides how inputs are decoded.
type Compression uint8

const (
	Auto Compression = iota // gzip if the input starts with the gzip magic bytes
	Gzip                    // always gzip
	None                    // never decompress
)

func (c Compression) String() string {
	switch c {
	case Auto:
		return "auto"
	case Gzip:
		return "gzip"
	case None:
		return "none"
	default:
		return fmt.Sprintf("compression(%d)", c)
	}
}

// StdinName is the input name used for standard input.
const StdinName = "stdin"

// Input is a named byte stream which is opened when the Source reaches it.
type Input struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// FromPath returns an Input reading the file at path. The path '-' means standard input.
func FromPath(path string) Input {
	if path == "-" {
		return Input{
			Name: StdinName,
			Open: func() (io.ReadCloser, error) {
				return io.NopCloser(os.Stdin), nil
			},
		}
	}
	return Input{
		Name: path,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}
}

// FromPaths returns one Input per path.
func FromPaths(paths []string) []Input {
	inputs := make([]Input, len(paths))
	for i, p := range paths {
		inputs[i] = FromPath(p)
	}
	return inputs
}

// FromReader returns an Input reading from r. The Source does not close r.
func FromReader(name string, r io.Reader) Input {
	return Input{
		Name: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	}
}

// InputStats holds byte counts for one input.
type InputStats struct {
	Name            string
	Compressed      bool
	RawBytes        int64 // bytes read from the input
	DecodedBytes    int64 // bytes after decompression
	LogicalStartPos int64 // offset of the first decoded byte in the concatenated stream
}

type options struct {
	compression Compression
	bufferSize  int
}

// Option configures a Source.
type Option interface {
	apply(*options)
}

type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(o *options) {
	fo.f(o)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithCompression sets how inputs are decoded.
//
// defaults to Auto
func WithCompression(c Compression) Option {
	return newFuncOption(func(o *options) {
		o.compression = c
	})
}

// WithBufferSize sets the size of the read buffer wrapping each input.
//
// defaults to 64 KiB
func WithBufferSize(size int) Option {
	return newFuncOption(func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	})
}

// Source is an io.Reader returning the decoded content of all inputs in order.
//
// Inputs are opened lazily and each input is closed before the next one is opened.
// Errors are returned as *warcparquet.IOError and are sticky.
type Source struct {
	opts   options
	inputs []Input
	next   int

	current *openInput
	offset  int64
	stats   []InputStats
	err     error
}

type openInput struct {
	name    string
	closer  io.Closer
	gz      *gzip.Reader
	raw     *countingreader.Reader
	decoded *countingreader.Reader
}

// New creates a Source reading inputs in order.
func New(inputs []Input, opts ...Option) *Source {
	o := options{
		compression: Auto,
		bufferSize:  64 * 1024,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &Source{
		opts:   o,
		inputs: inputs,
	}
}

func (s *Source) Read(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	for {
		if s.current == nil {
			if s.next >= len(s.inputs) {
				return 0, io.EOF
			}
			if err := s.open(); err != nil {
				s.err = err
				return 0, err
			}
		}

		n, err := s.current.decoded.Read(p)
		s.offset += int64(n)
		if errors.Is(err, io.EOF) {
			if cerr := s.closeCurrent(); cerr != nil {
				s.err = cerr
				return n, cerr
			}
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil {
			s.err = &warcparquet.IOError{Input: s.current.name, Offset: s.current.decoded.N(), Err: err}
			_ = s.closeCurrent()
			return n, s.err
		}
		return n, nil
	}
}

func (s *Source) open() error {
	in := s.inputs[s.next]
	s.next++

	rc, err := in.Open()
	if err != nil {
		return &warcparquet.IOError{Input: in.Name, Err: err}
	}
	raw := countingreader.New(rc)
	br := bufio.NewReaderSize(raw, s.opts.bufferSize)

	compressed := false
	switch s.opts.compression {
	case Gzip:
		compressed = true
	case Auto:
		magic, err := br.Peek(2)
		if err != nil && !errors.Is(err, io.EOF) {
			_ = rc.Close()
			return &warcparquet.IOError{Input: in.Name, Err: err}
		}
		compressed = len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b
	}

	oi := &openInput{name: in.Name, closer: rc, raw: raw}
	var r io.Reader = br
	if compressed {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return &warcparquet.IOError{Input: in.Name, Err: fmt.Errorf("not a gzip stream: %w", err)}
		}
		gz.Multistream(true)
		oi.gz = gz
		r = gz
	}
	oi.decoded = countingreader.New(r)

	s.stats = append(s.stats, InputStats{Name: in.Name, Compressed: compressed, LogicalStartPos: s.offset})
	s.current = oi

	log.WithFields(log.Fields{
		"input":      in.Name,
		"compressed": compressed,
		"offset":     s.offset,
	}).Debug("Opened input")
	return nil
}

func (s *Source) closeCurrent() error {
	oi := s.current
	if oi == nil {
		return nil
	}
	s.current = nil

	st := &s.stats[len(s.stats)-1]
	st.RawBytes = oi.raw.N()
	st.DecodedBytes = oi.decoded.N()

	var err error
	if oi.gz != nil {
		err = oi.gz.Close()
	}
	if cerr := oi.closer.Close(); err == nil {
		err = cerr
	}
	log.WithFields(log.Fields{
		"input":        oi.name,
		"rawBytes":     st.RawBytes,
		"decodedBytes": st.DecodedBytes,
	}).Debug("Closed input")
	if err != nil {
		return &warcparquet.IOError{Input: oi.name, Offset: st.DecodedBytes, Err: err}
	}
	return nil
}

// Locate returns the input containing the logical offset and the offset within the decoded input.
// An empty name is returned if no input has been opened.
func (s *Source) Locate(offset int64) (string, int64) {
	for i := len(s.stats) - 1; i >= 0; i-- {
		if s.stats[i].LogicalStartPos <= offset {
			return s.stats[i].Name, offset - s.stats[i].LogicalStartPos
		}
	}
	return "", offset
}

// Offset returns the number of decoded bytes returned so far.
func (s *Source) Offset() int64 {
	return s.offset
}

// Stats returns byte counts for the inputs opened so far. Counts for the current input are updated when it is closed.
func (s *Source) Stats() []InputStats {
	return append([]InputStats(nil), s.stats...)
}

// Close closes the current input. Inputs not yet opened are never opened.
func (s *Source) Close() error {
	s.next = len(s.inputs)
	if s.err == nil {
		s.err = io.EOF
	}
	return s.closeCurrent()
}
