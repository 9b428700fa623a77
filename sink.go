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

import "context"

// Sink receives batches of rows.
//
// WriteBatch is called with non-empty batches in input order. The sink takes ownership of the batch.
// Close finishes the output, for example by writing a file footer. Abort releases resources without producing
// a complete output. After Close or Abort no other method is called.
type Sink interface {
	WriteBatch(ctx context.Context, batch *Batch) error
	Close() error
	Abort() error
}

// Batch is an ordered group of rows written together.
type Batch struct {
	Rows []Row
	size int64
}

// Len returns the number of rows in the batch.
func (b *Batch) Len() int {
	return len(b.Rows)
}

// Size returns the estimated size in bytes of the rows in the batch.
func (b *Batch) Size() int64 {
	return b.size
}

func (b *Batch) add(row Row) {
	b.Rows = append(b.Rows, row)
	b.size += row.Size()
}
