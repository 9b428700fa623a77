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
	"fmt"
	"strings"
)

const (
	sphtcrlf = " \t\r\n"  // Space, Tab, Carriage return, Newline
	cr       = '\r'       // Carriage return
	lf       = '\n'       // Newline
	sp       = ' '        // Space
	ht       = '\t'       // Tab
	crlf     = "\r\n"     // Carriage return, Newline
	crlfcrlf = "\r\n\r\n" // Carriage return, Newline, Carriage return, Newline
)

type WarcVersion struct {
	txt   string
	major uint8
	minor uint8
}

func (v *WarcVersion) String() string {
	return "WARC/" + v.txt
}

func (v *WarcVersion) Major() uint8 {
	return v.major
}

func (v *WarcVersion) Minor() uint8 {
	return v.minor
}

var (
	// WARC versions
	V1_0 = &WarcVersion{txt: "1.0", major: 1, minor: 0} // WARC 1.0
	V1_1 = &WarcVersion{txt: "1.1", major: 1, minor: 1} // WARC 1.1
)

func resolveVersion(line string) *WarcVersion {
	switch line {
	case V1_0.String():
		return V1_0
	case V1_1.String():
		return V1_1
	default:
		return nil
	}
}

type RecordType uint16

const (
	// WARC record types
	Unknown      RecordType = 0
	Warcinfo     RecordType = 1
	Response     RecordType = 2
	Resource     RecordType = 4
	Request      RecordType = 8
	Metadata     RecordType = 16
	Revisit      RecordType = 32
	Conversion   RecordType = 64
	Continuation RecordType = 128
)

func (rt RecordType) String() string {
	switch rt {
	case Warcinfo:
		return "warcinfo"
	case Response:
		return "response"
	case Resource:
		return "resource"
	case Request:
		return "request"
	case Metadata:
		return "metadata"
	case Revisit:
		return "revisit"
	case Conversion:
		return "conversion"
	case Continuation:
		return "continuation"
	default:
		return "unknown"
	}
}

func stringToRecordType(rt string) RecordType {
	switch strings.ToLower(rt) {
	case "warcinfo":
		return Warcinfo
	case "response":
		return Response
	case "resource":
		return Resource
	case "request":
		return Request
	case "metadata":
		return Metadata
	case "revisit":
		return Revisit
	case "conversion":
		return Conversion
	case "continuation":
		return Continuation
	default:
		return Unknown
	}
}

// WarcRecord is one parsed record.
//
// Every header line is kept in Header, whether the field is defined by the WARC standard or not.
// No check is made that a field is legal for the record type.
type WarcRecord struct {
	Version *WarcVersion
	Type    RecordType
	Header  WarcFields
	Body    []byte

	// Offset of the version line in the logical input stream.
	Offset int64
}

// TypeToken returns the value of WARC-Type as written in the record, lower cased.
// Unrecognized types are returned unchanged. Use Type for the parsed value.
func (wr *WarcRecord) TypeToken() string {
	return strings.ToLower(wr.Header.Get(WarcType))
}

func (wr *WarcRecord) RecordID() string { return wr.Header.Get(WarcRecordID) }

// ConcurrentTo returns all WARC-Concurrent-To values in the order they appeared.
func (wr *WarcRecord) ConcurrentTo() []string { return wr.Header.GetAll(WarcConcurrentTo) }

func (wr *WarcRecord) String() string {
	return fmt.Sprintf("WARC record: version: %s, type: %s, id: %s", wr.Version, wr.Type, wr.RecordID())
}
