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
	"io"
)

// Marshal writes record in WARC format and returns the number of bytes written.
//
// The header is written as is. Marshal does not check that Content-Length matches the length of the body.
func Marshal(w io.Writer, record *WarcRecord) (int64, error) {
	// Write WARC record version
	n, err := fmt.Fprintf(w, "%v\r\n", record.Version)
	bytesWritten := int64(n)
	if err != nil {
		return bytesWritten, err
	}

	// Write WARC header
	bw, err := record.Header.Write(w)
	bytesWritten += bw
	if err != nil {
		return bytesWritten, err
	}

	// Write separator
	n, err = w.Write([]byte(crlf))
	bytesWritten += int64(n)
	if err != nil {
		return bytesWritten, err
	}

	// Write WARC content
	n, err = w.Write(record.Body)
	bytesWritten += int64(n)
	if err != nil {
		return bytesWritten, err
	}

	// Write end of record separator
	n, err = w.Write([]byte(crlfcrlf))
	bytesWritten += int64(n)
	return bytesWritten, err
}
