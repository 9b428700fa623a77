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
	"time"
)

// Fixed per row cost added to the payload size when estimating the size of a batch.
const rowOverhead = 64

// Row is one record mapped to the output columns. A nil field is a null value.
//
// A Row owns its data and is never modified after MapRecord returns it.
type Row struct {
	ID                    *string
	ContentLength         *uint64
	Date                  *time.Time
	Type                  *string
	ContentType           *string
	ConcurrentTo          *string
	BlockDigest           *string
	PayloadDigest         *string
	IPAddress             *string
	RefersTo              *string
	RefersToTargetURI     *string
	RefersToDate          *time.Time
	TargetURI             *string
	Truncated             *string
	WarcinfoID            *string
	Filename              *string
	Profile               *string
	IdentifiedPayloadType *string
	SegmentNumber         *uint32
	SegmentOriginID       *string
	SegmentTotalLength    *uint64
	Body                  []byte
}

// Value returns the value of column col, or nil if it is null.
//
// The dynamic type is string, uint32, uint64, time.Time or []byte according to Columns[col].Type.
func (r *Row) Value(col int) any {
	switch col {
	case ColID:
		return str(r.ID)
	case ColContentLength:
		if r.ContentLength == nil {
			return nil
		}
		return *r.ContentLength
	case ColDate:
		return ts(r.Date)
	case ColType:
		return str(r.Type)
	case ColContentType:
		return str(r.ContentType)
	case ColConcurrentTo:
		return str(r.ConcurrentTo)
	case ColBlockDigest:
		return str(r.BlockDigest)
	case ColPayloadDigest:
		return str(r.PayloadDigest)
	case ColIPAddress:
		return str(r.IPAddress)
	case ColRefersTo:
		return str(r.RefersTo)
	case ColRefersToTargetURI:
		return str(r.RefersToTargetURI)
	case ColRefersToDate:
		return ts(r.RefersToDate)
	case ColTargetURI:
		return str(r.TargetURI)
	case ColTruncated:
		return str(r.Truncated)
	case ColWarcinfoID:
		return str(r.WarcinfoID)
	case ColFilename:
		return str(r.Filename)
	case ColProfile:
		return str(r.Profile)
	case ColIdentifiedPayloadType:
		return str(r.IdentifiedPayloadType)
	case ColSegmentNumber:
		if r.SegmentNumber == nil {
			return nil
		}
		return *r.SegmentNumber
	case ColSegmentOriginID:
		return str(r.SegmentOriginID)
	case ColSegmentTotalLength:
		if r.SegmentTotalLength == nil {
			return nil
		}
		return *r.SegmentTotalLength
	case ColBody:
		if r.Body == nil {
			return nil
		}
		return r.Body
	default:
		return nil
	}
}

// Size is an estimate of the memory used by the row.
func (r *Row) Size() int64 {
	size := int64(rowOverhead + len(r.Body))
	for col, c := range Columns {
		if c.Type == StringColumn {
			if s, ok := r.Value(col).(string); ok {
				size += int64(len(s))
			}
		}
	}
	return size
}

func str(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func ts(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
