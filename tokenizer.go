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

package warcparquet

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type tokenizerState uint8

const (
	stateBlockHeader tokenizerState = iota // expecting a version line
	stateHeaderLines                       // reading 'Name: Value' lines until an empty line
	stateBody                              // reading Content-Length bytes
	stateSeparator                         // consuming the line breaks after the block
	stateEOF
)

func (s tokenizerState) String() string {
	switch s {
	case stateBlockHeader:
		return "block header"
	case stateHeaderLines:
		return "header lines"
	case stateBody:
		return "body"
	case stateSeparator:
		return "separator"
	default:
		return "end of stream"
	}
}

// Body buffers are grown on demand above this size, so a bogus Content-Length can not force a huge allocation.
const maxBodyPrealloc = 4 * 1024 * 1024

var requiredFields = []string{WarcRecordID, WarcDate, WarcType}

// Tokenizer splits a byte stream into WARC records.
//
// The stream is read forward only. Records may span any number of reads from the underlying reader.
// A Tokenizer is not safe for concurrent use.
type Tokenizer struct {
	opts   *options
	r      *bufio.Reader
	state  tokenizerState
	offset int64
	err    error

	// Working state for the record being parsed
	record        *WarcRecord
	validation    *Validation
	pos           *position
	headerSize    int
	contentLength int64
}

// NewTokenizer creates a Tokenizer reading from r.
func NewTokenizer(r io.Reader, opts ...Option) *Tokenizer {
	o := newOptions(opts...)
	return &Tokenizer{
		opts:  o,
		r:     bufio.NewReaderSize(r, o.bufferSize),
		state: stateBlockHeader,
	}
}

// Offset returns the number of bytes consumed from the underlying stream.
func (t *Tokenizer) Offset() int64 {
	return t.offset
}

// Next returns the next record from the stream together with the recoverable problems found while parsing it.
//
// io.EOF is returned when the stream is exhausted. Any other error is either an *IOError or a *FramingError.
// After an error is returned, every later call returns the same error.
func (t *Tokenizer) Next() (*WarcRecord, *Validation, error) {
	if t.err != nil {
		return nil, nil, t.err
	}
	for {
		emit, err := t.step()
		if err != nil {
			t.err = err
			t.state = stateEOF
			t.record, t.validation = nil, nil
			return nil, nil, err
		}
		if emit {
			record, validation := t.record, t.validation
			t.record, t.validation = nil, nil
			return record, validation, nil
		}
	}
}

// step performs one state transition. It returns true when a complete record is ready.
func (t *Tokenizer) step() (bool, error) {
	switch t.state {
	case stateBlockHeader:
		return false, t.readVersion()
	case stateHeaderLines:
		return false, t.readHeaderLine()
	case stateBody:
		return false, t.readBody()
	case stateSeparator:
		if err := t.readSeparator(); err != nil {
			return false, err
		}
		return true, nil
	default:
		return false, io.EOF
	}
}

// readLine reads the next line including the line ending.
// A last line without line ending is returned together with io.EOF.
func (t *Tokenizer) readLine() ([]byte, error) {
	var line []byte
	for {
		frag, err := t.r.ReadSlice(lf)
		t.offset += int64(len(frag))
		t.headerSize += len(frag)
		if t.headerSize > t.opts.maxHeaderSize {
			start := t.offset - int64(t.headerSize)
			return nil, newFramingErrorf(start, "unterminated header block, more than %d bytes without empty line", t.opts.maxHeaderSize)
		}
		line = append(line, frag...)
		switch {
		case err == bufio.ErrBufferFull:
			continue
		case err == nil || err == io.EOF:
			return line, err
		default:
			return line, t.ioError(err)
		}
	}
}

func (t *Tokenizer) readVersion() error {
	for {
		t.headerSize = 0
		start := t.offset
		line, err := t.readLine()
		if err != nil && err != io.EOF {
			return err
		}
		trimmed := bytes.Trim(line, sphtcrlf)
		if len(trimmed) == 0 {
			if err == io.EOF {
				t.state = stateEOF
				return io.EOF
			}
			continue
		}

		version := resolveVersion(string(trimmed))
		if version == nil {
			return newFramingErrorf(start, "expected WARC version line, found '%s'", cropString(string(trimmed), 40))
		}
		if err == io.EOF {
			return newFramingError("unterminated header block", start)
		}

		t.record = &WarcRecord{Version: version, Offset: start}
		t.validation = &Validation{}
		t.pos = &position{}
		t.pos.incrLineNumber()
		t.checkLineEnding(line)
		t.state = stateHeaderLines
		return nil
	}
}

func (t *Tokenizer) readHeaderLine() error {
	line, err := t.readLine()
	if err == io.EOF {
		return newFramingError("unterminated header block", t.record.Offset)
	}
	if err != nil {
		return err
	}
	t.pos.incrLineNumber()
	t.checkLineEnding(line)

	content := bytes.TrimRight(line, crlf)
	if len(content) == 0 {
		return t.endOfHeader()
	}

	// Continuation of previous field value
	if content[0] == sp || content[0] == ht {
		n := len(t.record.Header)
		if n == 0 {
			t.validation.AddError(newSyntaxError("continuation line without preceding field", t.pos))
			return nil
		}
		last := t.record.Header[n-1]
		last.Value = strings.TrimSpace(last.Value + " " + string(bytes.Trim(content, sphtcrlf)))
		return nil
	}

	name, value, found := bytes.Cut(content, []byte{':'})
	name = bytes.Trim(name, sphtcrlf)
	if !found || len(name) == 0 {
		t.validation.AddError(newSyntaxError(fmt.Sprintf("could not parse header line '%s'", cropString(string(content), 40)), t.pos))
		return nil
	}
	fieldName, _ := normalizeName(string(name))
	t.record.Header.Add(fieldName, string(bytes.Trim(value, sphtcrlf)))
	return nil
}

func (t *Tokenizer) endOfHeader() error {
	record := t.record
	if !record.Header.Has(ContentLength) {
		return newFramingError("missing required field Content-Length", record.Offset)
	}
	v := record.Header.Get(ContentLength)
	// Same syntax as the content_length column. Bit size 63 keeps the value within int64.
	cl, err := strconv.ParseUint(v, 10, 63)
	if err != nil {
		return newFramingErrorf(record.Offset, "invalid Content-Length '%s'", cropString(v, 40))
	}
	t.contentLength = int64(cl)

	record.Type = stringToRecordType(record.Header.Get(WarcType))
	for _, f := range requiredFields {
		if !record.Header.Has(f) {
			t.validation.AddError(newFieldErrorf(f, "missing required field"))
		}
	}
	for _, f := range repeatedFields(record.Header) {
		t.validation.AddError(newFieldErrorf(f, "field occurs more than once"))
	}

	t.state = stateBody
	return nil
}

func (t *Tokenizer) readBody() error {
	start := t.offset
	buf := &bytes.Buffer{}
	if t.contentLength <= maxBodyPrealloc {
		buf.Grow(int(t.contentLength))
	} else {
		buf.Grow(maxBodyPrealloc)
	}

	n, err := io.CopyN(buf, t.r, t.contentLength)
	t.offset += n
	if err == io.EOF {
		return newFramingErrorf(start, "content length mismatch: Content-Length is %d, but only %d bytes remain", t.contentLength, n)
	}
	if err != nil {
		return t.ioError(err)
	}

	t.record.Body = buf.Bytes()
	if t.record.Body == nil {
		t.record.Body = []byte{}
	}
	// The block starts on the line after the empty line and ends on the line holding its last byte
	t.pos.lineNumber += 1 + bytes.Count(t.record.Body, []byte{lf})
	if t.opts.validateDigest {
		t.validateBlockDigest()
	}
	t.state = stateSeparator
	return nil
}

func (t *Tokenizer) validateBlockDigest() {
	v := t.record.Header.Get(WarcBlockDigest)
	if v == "" {
		return
	}
	d, err := parseDigest(v)
	if err != nil {
		// Malformed digests are reported when the record is mapped
		return
	}
	if err := d.validate(t.record.Body); err != nil {
		t.validation.AddError(newFieldError(WarcBlockDigest, "block digest mismatch", err))
	}
}

// readSeparator consumes the line breaks ending a record. At least one is required.
func (t *Tokenizer) readSeparator() error {
	start := t.offset
	breaks := 0
loop:
	for {
		b, err := t.r.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			return t.ioError(err)
		}
		switch b[0] {
		case lf:
			t.discard(1)
			breaks++
		case cr:
			b, err = t.r.Peek(2)
			if len(b) < 2 || b[1] != lf {
				if err != nil && err != io.EOF {
					return t.ioError(err)
				}
				break loop
			}
			t.discard(2)
			breaks++
		default:
			break loop
		}
	}

	if breaks == 0 {
		return newFramingError("missing end of record marker", start)
	}
	if breaks < 2 {
		t.validation.AddError(newSyntaxError("end of record marker is a single line break", t.pos))
	}
	t.state = stateBlockHeader
	return nil
}

func (t *Tokenizer) discard(n int) {
	d, _ := t.r.Discard(n)
	t.offset += int64(d)
}

func (t *Tokenizer) checkLineEnding(line []byte) {
	if !t.opts.lineEndingWarnings {
		return
	}
	if len(line) < 2 || line[len(line)-2] != cr {
		t.validation.AddError(newSyntaxError("missing carriage return", t.pos))
	}
}

func (t *Tokenizer) ioError(err error) error {
	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}
	return &IOError{Offset: t.offset, Err: err}
}

func cropString(s string, length int) string {
	if len(s) > length {
		return s[:length-3] + "..."
	}
	return s
}
