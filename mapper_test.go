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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecord(body string, fields ...string) *WarcRecord {
	r := &WarcRecord{Version: V1_1, Body: []byte(body)}
	for i := 0; i+1 < len(fields); i += 2 {
		r.Header.Add(fields[i], fields[i+1])
	}
	r.Type = stringToRecordType(r.Header.Get(WarcType))
	return r
}

func TestMapRecord_AllFields(t *testing.T) {
	record := newRecord("HTTP/1.1 200 OK\r\n\r\n",
		WarcType, "Response",
		WarcRecordID, "<urn:uuid:e9a0cecc-0221-11e7-adb1-0242ac120008>",
		WarcDate, "2017-03-06T04:03:53Z",
		ContentLength, "19",
		ContentType, "application/http;msgtype=response",
		WarcConcurrentTo, "<urn:uuid:1>",
		WarcBlockDigest, "sha1:T4NG5T3U5H43DLSS5DVVQHKCBZR6QRJ2",
		WarcPayloadDigest, "sha1:3I42H3S6NNFQ2MSVX7XZKYAYSCX5QBYJ",
		WarcIPAddress, "10.0.0.1",
		WarcRefersTo, "<urn:uuid:2>",
		WarcRefersToTargetURI, "http://www.example.com/old",
		WarcRefersToDate, "2016-01-02T03:04:05.123Z",
		WarcTargetURI, "http://www.example.com/",
		WarcTruncated, "length",
		WarcWarcinfoID, "<urn:uuid:3>",
		WarcFilename, "example.warc.gz",
		WarcProfile, "http://netpreserve.org/warc/1.1/revisit/identical-payload-digest",
		WarcIdentifiedPayloadType, "text/html",
		WarcSegmentNumber, "1",
		WarcSegmentOriginID, "<urn:uuid:4>",
		WarcSegmentTotalLength, "12345678901",
	)

	row, validation := MapRecord(record)
	assert.True(t, validation.Valid(), validation.String())

	want := []any{
		ColID:                    "<urn:uuid:e9a0cecc-0221-11e7-adb1-0242ac120008>",
		ColContentLength:         uint64(19),
		ColDate:                  time.Date(2017, 3, 6, 4, 3, 53, 0, time.UTC),
		ColType:                  "response",
		ColContentType:           "application/http;msgtype=response",
		ColConcurrentTo:          "<urn:uuid:1>",
		ColBlockDigest:           "sha1:T4NG5T3U5H43DLSS5DVVQHKCBZR6QRJ2",
		ColPayloadDigest:         "sha1:3I42H3S6NNFQ2MSVX7XZKYAYSCX5QBYJ",
		ColIPAddress:             "10.0.0.1",
		ColRefersTo:              "<urn:uuid:2>",
		ColRefersToTargetURI:     "http://www.example.com/old",
		ColRefersToDate:          time.Date(2016, 1, 2, 3, 4, 5, 123000000, time.UTC),
		ColTargetURI:             "http://www.example.com/",
		ColTruncated:             "length",
		ColWarcinfoID:            "<urn:uuid:3>",
		ColFilename:              "example.warc.gz",
		ColProfile:               "http://netpreserve.org/warc/1.1/revisit/identical-payload-digest",
		ColIdentifiedPayloadType: "text/html",
		ColSegmentNumber:         uint32(1),
		ColSegmentOriginID:       "<urn:uuid:4>",
		ColSegmentTotalLength:    uint64(12345678901),
		ColBody:                  []byte("HTTP/1.1 200 OK\r\n\r\n"),
	}
	require.Len(t, want, len(Columns))
	for col, w := range want {
		assert.Equal(t, w, row.Value(col), Columns[col].Name)
	}
}

func TestMapRecord_MinimalRecord(t *testing.T) {
	record := newRecord("abcd", WarcType, "warcinfo", ContentLength, "4")

	row, validation := MapRecord(record)
	assert.True(t, validation.Valid(), validation.String())

	for col := range Columns {
		switch col {
		case ColType:
			assert.Equal(t, "warcinfo", row.Value(col))
		case ColContentLength:
			assert.Equal(t, uint64(4), row.Value(col))
		case ColBody:
			assert.Equal(t, []byte("abcd"), row.Value(col))
		default:
			assert.Nil(t, row.Value(col), Columns[col].Name)
		}
	}
}

func TestMapRecord_ConcurrentTo(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   any
	}{
		{"none", nil, nil},
		{"one", []string{"<urn:uuid:a>"}, "<urn:uuid:a>"},
		{"two, order kept", []string{"<urn:uuid:b>", "<urn:uuid:a>"}, "<urn:uuid:b> <urn:uuid:a>"},
		{"empty values skipped", []string{"", "<urn:uuid:a>", " "}, "<urn:uuid:a>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := newRecord("", WarcType, "response")
			for _, v := range tt.values {
				record.Header.Add(WarcConcurrentTo, v)
			}
			row, _ := MapRecord(record)
			assert.Equal(t, tt.want, row.Value(ColConcurrentTo))
		})
	}
}

func TestMapRecord_Warnings(t *testing.T) {
	tests := []struct {
		name      string
		field     string
		value     string
		col       int
		wantValue any
	}{
		{"bad date", WarcDate, "2017-13-06T04:03:53Z", ColDate, nil},
		{"date without zone", WarcDate, "2017-03-06T04:03:53", ColDate, nil},
		{"bad refers to date", WarcRefersToDate, "yesterday", ColRefersToDate, nil},
		{"negative segment number", WarcSegmentNumber, "-1", ColSegmentNumber, nil},
		{"segment number overflow", WarcSegmentNumber, "4294967296", ColSegmentNumber, nil},
		{"bad segment total length", WarcSegmentTotalLength, "1e6", ColSegmentTotalLength, nil},
		{"bad content length", ContentLength, "ten", ColContentLength, nil},
		{"malformed digest", WarcBlockDigest, "sha1:123", ColBlockDigest, nil},
		{"digest without label", WarcPayloadDigest, "T4NG5T3U5H43DLSS5DVVQHKCBZR6QRJ2", ColPayloadDigest, nil},
		{"record id without brackets is kept", WarcRecordID, "urn:uuid:1", ColID, "urn:uuid:1"},
		{"bad ip is kept", WarcIPAddress, "10.0.0.256", ColIPAddress, "10.0.0.256"},
		{"bad concurrent to is kept", WarcConcurrentTo, "urn:uuid:1", ColConcurrentTo, "urn:uuid:1"},
		{"filename not utf-8", WarcFilename, "caf\xe9.warc", ColFilename, nil},
		{"content type not utf-8", ContentType, "text/\xff", ColContentType, nil},
		{"target uri not utf-8", WarcTargetURI, "http://example.com/\xe9", ColTargetURI, nil},
		{"date not utf-8", WarcDate, "2017-03-06T04:03:53Z\xe9", ColDate, nil},
		{"concurrent to not utf-8", WarcConcurrentTo, "<urn:uuid:\xe9>", ColConcurrentTo, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := newRecord("", WarcType, "resource", tt.field, tt.value)

			row, validation := MapRecord(record)
			assert.Equal(t, tt.wantValue, row.Value(tt.col))
			require.Len(t, validation, 1)

			var fieldErr *FieldError
			require.ErrorAs(t, validation[0], &fieldErr)
			assert.Equal(t, tt.field, fieldErr.Field())
			assert.False(t, IsFatal(fieldErr))
		})
	}
}

func TestMapRecord_UnknownType(t *testing.T) {
	record := newRecord("", WarcType, "X-Special")
	row, validation := MapRecord(record)
	assert.True(t, validation.Valid())
	assert.Equal(t, Unknown, record.Type)
	assert.Equal(t, "x-special", row.Value(ColType))
}

func TestMapRecord_DoesNotModifyRecord(t *testing.T) {
	record := newRecord("body", WarcType, "resource", WarcDate, "bad date", WarcConcurrentTo, "<a>", WarcConcurrentTo, "<b>")
	before := record.Header.String()

	_, _ = MapRecord(record)
	assert.Equal(t, before, record.Header.String())
	assert.Equal(t, "body", string(record.Body))
}
