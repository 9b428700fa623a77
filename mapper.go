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
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/nlnwa/warcparquet/internal/timestamp"
)

// MapRecord converts a record to a Row.
//
// Values which can not be converted to the column type are set to null and reported in the returned Validation.
// Values of the right type with questionable syntax, like a malformed URI, are kept and reported.
// MapRecord has no side effects.
func MapRecord(record *WarcRecord) (Row, Validation) {
	m := &mapper{header: record.Header}
	row := Row{
		ID:                    m.checkedString(WarcRecordID),
		ContentLength:         m.unsigned64(ContentLength),
		Date:                  m.date(WarcDate),
		Type:                  m.recordType(),
		ContentType:           m.text(ContentType),
		ConcurrentTo:          m.concurrentTo(),
		BlockDigest:           m.digest(WarcBlockDigest),
		PayloadDigest:         m.digest(WarcPayloadDigest),
		IPAddress:             m.checkedString(WarcIPAddress),
		RefersTo:              m.checkedString(WarcRefersTo),
		RefersToTargetURI:     m.checkedString(WarcRefersToTargetURI),
		RefersToDate:          m.date(WarcRefersToDate),
		TargetURI:             m.checkedString(WarcTargetURI),
		Truncated:             m.text(WarcTruncated),
		WarcinfoID:            m.checkedString(WarcWarcinfoID),
		Filename:              m.text(WarcFilename),
		Profile:               m.checkedString(WarcProfile),
		IdentifiedPayloadType: m.text(WarcIdentifiedPayloadType),
		SegmentNumber:         m.unsigned32(WarcSegmentNumber),
		SegmentOriginID:       m.checkedString(WarcSegmentOriginID),
		SegmentTotalLength:    m.unsigned64(WarcSegmentTotalLength),
		Body:                  record.Body,
	}
	return row, m.validation
}

type mapper struct {
	header     WarcFields
	validation Validation
}

// value returns the first value of the named field, or false if the field is missing, empty or not valid UTF-8.
func (m *mapper) value(name string) (string, bool) {
	v := strings.TrimSpace(m.header.Get(name))
	return v, v != "" && m.validUTF8(name, v)
}

func (m *mapper) validUTF8(name, v string) bool {
	if utf8.ValidString(v) {
		return true
	}
	m.validation.AddError(newFieldErrorf(name, "value is not valid UTF-8"))
	return false
}

func (m *mapper) text(name string) *string {
	if v, ok := m.value(name); ok {
		return &v
	}
	return nil
}

// checkedString runs the syntax check registered for the field. The value is kept even if the check fails.
func (m *mapper) checkedString(name string) *string {
	v, ok := m.value(name)
	if !ok {
		return nil
	}
	m.check(name, v)
	return &v
}

func (m *mapper) check(name, v string) {
	def, ok := lcHdrNameToDef[strings.ToLower(name)]
	if !ok || def.check == nil {
		return
	}
	if err := def.check(v); err != nil {
		m.validation.AddError(newFieldError(name, "illegal value", err))
	}
}

func (m *mapper) recordType() *string {
	v, ok := m.value(WarcType)
	if !ok {
		return nil
	}
	v = strings.ToLower(v)
	return &v
}

func (m *mapper) concurrentTo() *string {
	var ids []string
	for _, v := range m.header.GetAll(WarcConcurrentTo) {
		v = strings.TrimSpace(v)
		if v == "" || !m.validUTF8(WarcConcurrentTo, v) {
			continue
		}
		m.check(WarcConcurrentTo, v)
		ids = append(ids, v)
	}
	if len(ids) == 0 {
		return nil
	}
	joined := strings.Join(ids, ConcurrentToSeparator)
	return &joined
}

func (m *mapper) digest(name string) *string {
	v, ok := m.value(name)
	if !ok {
		return nil
	}
	if err := checkDigest(v); err != nil {
		m.validation.AddError(newFieldError(name, "illegal digest", err))
		return nil
	}
	return &v
}

func (m *mapper) date(name string) *time.Time {
	v, ok := m.value(name)
	if !ok {
		return nil
	}
	t, err := timestamp.Parse(v)
	if err != nil {
		m.validation.AddError(newFieldError(name, "illegal date", err))
		return nil
	}
	return &t
}

func (m *mapper) unsigned64(name string) *uint64 {
	v, ok := m.value(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		m.validation.AddError(newFieldError(name, "not a non-negative integer", err))
		return nil
	}
	return &n
}

func (m *mapper) unsigned32(name string) *uint32 {
	v, ok := m.value(name)
	if !ok {
		return nil
	}
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		m.validation.AddError(newFieldError(name, "not an unsigned 32 bit integer", err))
		return nil
	}
	n32 := uint32(n)
	return &n32
}
