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
	"bytes"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nlnwa/warcparquet/internal/timestamp"
)

// RecordBuilder creates a WarcRecord from header fields and content.
//
// Unless disabled by options, Build generates WARC-Record-ID and computes WARC-Block-Digest.
// WARC-Date is set to the current time and Content-Length to the content size if they are missing.
type RecordBuilder struct {
	opts       *options
	recordType RecordType
	header     WarcFields
	content    bytes.Buffer
}

// NewRecordBuilder creates a RecordBuilder for a record of the given type.
func NewRecordBuilder(recordType RecordType, opts ...Option) *RecordBuilder {
	rb := &RecordBuilder{
		opts:       newOptions(opts...),
		recordType: recordType,
	}
	rb.header.Set(WarcType, recordType.String())
	return rb
}

func (rb *RecordBuilder) Write(p []byte) (n int, err error) {
	return rb.content.Write(p)
}

func (rb *RecordBuilder) WriteString(s string) (n int, err error) {
	return rb.content.WriteString(s)
}

func (rb *RecordBuilder) ReadFrom(r io.Reader) (n int64, err error) {
	return rb.content.ReadFrom(r)
}

// AddWarcHeader adds a header field. Known field names are normalized.
func (rb *RecordBuilder) AddWarcHeader(name string, value string) {
	name, _ = normalizeName(name)
	rb.header.Add(name, value)
}

// AddWarcHeaderTime adds a header field with a date value.
func (rb *RecordBuilder) AddWarcHeaderTime(name string, value time.Time) {
	rb.AddWarcHeader(name, timestamp.UTCW3cIso8601(value))
}

// Build returns the record. An error is returned if a given Content-Length or WARC-Block-Digest
// does not match the content.
func (rb *RecordBuilder) Build() (*WarcRecord, error) {
	header := make(WarcFields, 0, len(rb.header)+4)
	for _, nv := range rb.header {
		header = append(header, &NameValue{Name: nv.Name, Value: nv.Value})
	}
	body := bytes.Clone(rb.content.Bytes())
	if body == nil {
		body = []byte{}
	}

	if !header.Has(WarcRecordID) && rb.opts.addMissingRecordID {
		header.Set(WarcRecordID, "<urn:uuid:"+uuid.NewString()+">")
	}
	if !header.Has(WarcDate) {
		header.Set(WarcDate, timestamp.UTCW3cIso8601(time.Now()))
	}

	size := strconv.Itoa(len(body))
	if header.Has(ContentLength) {
		if header.Get(ContentLength) != size {
			return nil, fmt.Errorf("content length mismatch: header says %s, content is %s bytes", header.Get(ContentLength), size)
		}
	} else {
		header.Set(ContentLength, size)
	}

	if header.Has(WarcBlockDigest) {
		d, err := parseDigest(header.Get(WarcBlockDigest))
		if err != nil {
			return nil, err
		}
		if err := d.validate(body); err != nil {
			return nil, err
		}
	} else if rb.opts.addMissingDigest {
		d, err := computeDigest("sha1", Base32, body)
		if err != nil {
			return nil, err
		}
		header.Set(WarcBlockDigest, d)
	}

	return &WarcRecord{
		Version: rb.opts.warcVersion,
		Type:    rb.recordType,
		Header:  header,
		Body:    body,
	}, nil
}
