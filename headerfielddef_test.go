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

	"github.com/stretchr/testify/assert"
)

func Test_normalizeName(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		want      string
		wantKnown bool
	}{
		{"known, canonical", "WARC-Record-ID", "WARC-Record-ID", true},
		{"known, lower case", "warc-record-id", "WARC-Record-ID", true},
		{"known, upper case", "WARC-IP-ADDRESS", "WARC-IP-Address", true},
		{"known, non warc", "content-length", "Content-Length", true},
		{"unknown", "x-crawler-note", "X-Crawler-Note", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := normalizeName(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func Test_fieldChecks(t *testing.T) {
	tests := []struct {
		name    string
		check   checkFunc
		value   string
		wantErr bool
	}{
		{"record id", checkWarcID, "<urn:uuid:e9a0cecc-0221-11e7-adb1-0242ac120008>", false},
		{"record id without brackets", checkWarcID, "urn:uuid:e9a0cecc-0221-11e7-adb1-0242ac120008", true},
		{"record id with only opening bracket", checkWarcID, "<urn:uuid:e9a0cecc-0221-11e7-adb1-0242ac120008", true},
		{"uri", checkURI, "http://www.example.com/path?q=1", false},
		{"ipv4", checkIP, "192.168.0.1", false},
		{"ipv6", checkIP, "2001:db8::1", false},
		{"bad ip", checkIP, "192.168.0.256", true},
		{"digest", checkDigest, "sha1:T4NG5T3U5H43DLSS5DVVQHKCBZR6QRJ2", false},
		{"bad digest", checkDigest, "sha1", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_repeatedFields(t *testing.T) {
	header := WarcFields{
		&NameValue{Name: WarcRecordID, Value: "<urn:a>"},
		&NameValue{Name: WarcConcurrentTo, Value: "<urn:b>"},
		&NameValue{Name: WarcConcurrentTo, Value: "<urn:c>"},
		&NameValue{Name: WarcDate, Value: "2017-03-06T04:03:53Z"},
		&NameValue{Name: "warc-date", Value: "2017-03-06T04:03:54Z"},
		&NameValue{Name: WarcDate, Value: "2017-03-06T04:03:55Z"},
		&NameValue{Name: "X-Custom", Value: "1"},
		&NameValue{Name: "X-Custom", Value: "2"},
	}
	assert.Equal(t, []string{WarcDate}, repeatedFields(header))
}
