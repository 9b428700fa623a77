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

type options struct {
	bufferSize         int
	maxHeaderSize      int
	lineEndingWarnings bool
	validateDigest     bool
	warcVersion        *WarcVersion
	addMissingRecordID bool
	addMissingDigest   bool
}

// Option configures parsing of WARC records.
type Option interface {
	apply(*options)
}

// funcOption wraps a function that modifies options into an
// implementation of the Option interface.
type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(po *options) {
	fo.f(po)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

func defaultOptions() options {
	return options{
		bufferSize:         64 * 1024,
		maxHeaderSize:      1024 * 1024, // 1 MiB
		lineEndingWarnings: false,
		validateDigest:     false,
		warcVersion:        V1_1,
		addMissingRecordID: true,
		addMissingDigest:   true,
	}
}

func newOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &o
}

// WithBufferSize sets the size of the read buffer used by the tokenizer.
// defaults to 64 KiB
func WithBufferSize(size int) Option {
	return newFuncOption(func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	})
}

// WithMaxHeaderSize sets the maximum size of a record's header block, version line included.
// A larger header is treated as unterminated and stops the conversion.
// defaults to 1 MiB
func WithMaxHeaderSize(size int) Option {
	return newFuncOption(func(o *options) {
		if size > 0 {
			o.maxHeaderSize = size
		}
	})
}

// WithLineEndingWarnings decides if header lines ending with a bare newline should be reported.
// defaults to false
func WithLineEndingWarnings(warn bool) Option {
	return newFuncOption(func(o *options) {
		o.lineEndingWarnings = warn
	})
}

// WithDigestValidation decides if the WARC-Block-Digest should be checked against the record block.
// A mismatch is reported as a warning.
// defaults to false
func WithDigestValidation(validate bool) Option {
	return newFuncOption(func(o *options) {
		o.validateDigest = validate
	})
}

// WithVersion sets the WARC version used by the RecordBuilder.
// defaults to WARC/1.1
func WithVersion(version *WarcVersion) Option {
	return newFuncOption(func(o *options) {
		if version != nil {
			o.warcVersion = version
		}
	})
}

// WithAddMissingRecordID sets if the RecordBuilder should generate a WARC-Record-ID when none is given.
// defaults to true
func WithAddMissingRecordID(add bool) Option {
	return newFuncOption(func(o *options) {
		o.addMissingRecordID = add
	})
}

// WithAddMissingDigest sets if the RecordBuilder should compute a WARC-Block-Digest when none is given.
// defaults to true
func WithAddMissingDigest(add bool) Option {
	return newFuncOption(func(o *options) {
		o.addMissingDigest = add
	})
}
