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
	"net"
	"net/http"
	"strings"

	"github.com/nlnwa/whatwg-url/url"
)

const (
	// WARC header field name constants
	ContentLength             = "Content-Length"
	ContentType               = "Content-Type"
	WarcBlockDigest           = "WARC-Block-Digest"
	WarcConcurrentTo          = "WARC-Concurrent-To"
	WarcDate                  = "WARC-Date"
	WarcFilename              = "WARC-Filename"
	WarcIPAddress             = "WARC-IP-Address"
	WarcIdentifiedPayloadType = "WARC-Identified-Payload-Type"
	WarcPayloadDigest         = "WARC-Payload-Digest"
	WarcProfile               = "WARC-Profile"
	WarcRecordID              = "WARC-Record-ID"
	WarcRefersTo              = "WARC-Refers-To"
	WarcRefersToDate          = "WARC-Refers-To-Date"
	WarcRefersToTargetURI     = "WARC-Refers-To-Target-URI"
	WarcSegmentNumber         = "WARC-Segment-Number"
	WarcSegmentOriginID       = "WARC-Segment-Origin-ID"
	WarcSegmentTotalLength    = "WARC-Segment-Total-Length"
	WarcTargetURI             = "WARC-Target-URI"
	WarcTruncated             = "WARC-Truncated"
	WarcType                  = "WARC-Type"
	WarcWarcinfoID            = "WARC-Warcinfo-ID"
)

// checkFunc validates the syntax of a trimmed, non-empty header value.
type checkFunc func(value string) error

type fieldDef struct {
	name       string
	check      checkFunc
	repeatable bool
}

var fieldDefs = []fieldDef{
	{ContentLength, nil, false},
	{ContentType, nil, false},
	{WarcBlockDigest, checkDigest, false},
	{WarcConcurrentTo, checkWarcID, true},
	{WarcDate, nil, false},
	{WarcFilename, nil, false},
	{WarcIPAddress, checkIP, false},
	{WarcIdentifiedPayloadType, nil, false},
	{WarcPayloadDigest, checkDigest, false},
	{WarcProfile, checkURI, false},
	{WarcRecordID, checkWarcID, false},
	{WarcRefersTo, checkWarcID, false},
	{WarcRefersToDate, nil, false},
	{WarcRefersToTargetURI, checkURI, false},
	{WarcSegmentNumber, nil, false},
	{WarcSegmentOriginID, checkWarcID, false},
	{WarcSegmentTotalLength, nil, false},
	{WarcTargetURI, checkURI, false},
	{WarcTruncated, nil, false},
	{WarcType, nil, false},
	{WarcWarcinfoID, checkWarcID, false},
}

// Map lower case header name to field definition
var lcHdrNameToDef = make(map[string]fieldDef)

func init() {
	for _, fd := range fieldDefs {
		lcHdrNameToDef[strings.ToLower(fd.name)] = fd
	}
}

// normalizeName returns the canonical spelling of a header name.
// Names not defined by the WARC standard are canonicalized like HTTP header names.
func normalizeName(name string) (string, bool) {
	if f, ok := lcHdrNameToDef[strings.ToLower(name)]; ok {
		return f.name, true
	}
	return http.CanonicalHeaderKey(name), false
}

func checkURI(value string) error {
	_, err := url.Parse(value)
	return err
}

func checkWarcID(value string) error {
	v := strings.TrimSuffix(strings.TrimPrefix(value, "<"), ">")
	if len(value) != len(v)+2 {
		return fmt.Errorf("WARC id should be encapsulated by <>")
	}
	return checkURI(v)
}

func checkIP(value string) error {
	if ip := net.ParseIP(value); ip == nil {
		return fmt.Errorf("illegal ip address: %s", value)
	}
	return nil
}

// repeatedFields reports fields which occur more than once although the WARC standard allows only one.
// Only the first occurrence is used when mapping.
func repeatedFields(wf WarcFields) []string {
	seen := make(map[string]int)
	var names []string
	for _, nv := range wf {
		def, ok := lcHdrNameToDef[strings.ToLower(nv.Name)]
		if !ok || def.repeatable {
			continue
		}
		seen[def.name]++
		if seen[def.name] == 2 {
			names = append(names, def.name)
		}
	}
	return names
}
