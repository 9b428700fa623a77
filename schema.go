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

// ColumnType is the logical type of a column in the output table.
type ColumnType uint8

const (
	StringColumn    ColumnType = iota // UTF-8 string
	Uint32Column                      // unsigned 32 bit integer
	Uint64Column                      // unsigned 64 bit integer
	TimestampColumn                   // milliseconds since epoch, UTC
	BinaryColumn                      // opaque bytes
)

func (t ColumnType) String() string {
	switch t {
	case StringColumn:
		return "string"
	case Uint32Column:
		return "uint32"
	case Uint64Column:
		return "uint64"
	case TimestampColumn:
		return "timestamp[ms]"
	case BinaryColumn:
		return "binary"
	default:
		return "unknown"
	}
}

// Column describes one column of the output table. All columns are nullable.
type Column struct {
	Name string
	Type ColumnType
}

// Column indexes. The order is the order of the columns in the output table.
const (
	ColID = iota
	ColContentLength
	ColDate
	ColType
	ColContentType
	ColConcurrentTo
	ColBlockDigest
	ColPayloadDigest
	ColIPAddress
	ColRefersTo
	ColRefersToTargetURI
	ColRefersToDate
	ColTargetURI
	ColTruncated
	ColWarcinfoID
	ColFilename
	ColProfile
	ColIdentifiedPayloadType
	ColSegmentNumber
	ColSegmentOriginID
	ColSegmentTotalLength
	ColBody
)

// Columns is the fixed schema of the output table, indexed by the Col constants.
var Columns = []Column{
	ColID:                    {"id", StringColumn},
	ColContentLength:         {"content_length", Uint64Column},
	ColDate:                  {"date", TimestampColumn},
	ColType:                  {"type", StringColumn},
	ColContentType:           {"content_type", StringColumn},
	ColConcurrentTo:          {"concurrent_to", StringColumn},
	ColBlockDigest:           {"block_digest", StringColumn},
	ColPayloadDigest:         {"payload_digest", StringColumn},
	ColIPAddress:             {"ip_address", StringColumn},
	ColRefersTo:              {"refers_to", StringColumn},
	ColRefersToTargetURI:     {"refers_to_target_uri", StringColumn},
	ColRefersToDate:          {"refers_to_date", TimestampColumn},
	ColTargetURI:             {"target_uri", StringColumn},
	ColTruncated:             {"truncated", StringColumn},
	ColWarcinfoID:            {"warc_info_id", StringColumn},
	ColFilename:              {"filename", StringColumn},
	ColProfile:               {"profile", StringColumn},
	ColIdentifiedPayloadType: {"identified_payload_type", StringColumn},
	ColSegmentNumber:         {"segment_number", Uint32Column},
	ColSegmentOriginID:       {"segment_origin_id", StringColumn},
	ColSegmentTotalLength:    {"segment_total_length", Uint64Column},
	ColBody:                  {"body", BinaryColumn},
}

// ConcurrentToSeparator joins multiple WARC-Concurrent-To values in the concurrent_to column.
const ConcurrentToSeparator = " "
