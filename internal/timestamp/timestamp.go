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

// Package timestamp converts between time.Time and the date formats used in WARC headers.
package timestamp

import (
	"time"
)

const w3cIso8601 = "2006-01-02T15:04:05Z"

// Parse parses a WARC-Date value.
//
// WARC/1.0 requires second precision (2006-01-02T15:04:05Z). WARC/1.1 also allows fractional seconds.
// The result is always in UTC.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// UTCW3cIso8601 formats t as a WARC/1.0 date.
func UTCW3cIso8601(t time.Time) string {
	return t.UTC().Format(w3cIso8601)
}
