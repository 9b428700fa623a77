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
	"context"
	"fmt"
)

type batcherOptions struct {
	maxRows  int
	maxBytes int64
}

// BatcherOption configures a Batcher.
type BatcherOption interface {
	apply(*batcherOptions)
}

type funcBatcherOption struct {
	f func(*batcherOptions)
}

func (fo *funcBatcherOption) apply(o *batcherOptions) {
	fo.f(o)
}

func newFuncBatcherOption(f func(*batcherOptions)) *funcBatcherOption {
	return &funcBatcherOption{
		f: f,
	}
}

func defaultBatcherOptions() batcherOptions {
	return batcherOptions{
		maxRows:  8192,
		maxBytes: 0,
	}
}

// WithMaxRows sets the maximum number of rows in a batch.
// Values less than one are ignored.
//
// defaults to 8192
func WithMaxRows(n int) BatcherOption {
	return newFuncBatcherOption(func(o *batcherOptions) {
		if n > 0 {
			o.maxRows = n
		}
	})
}

// WithMaxBytes sets the maximum estimated size of a batch. A single row larger than the limit
// is still written, alone in its batch. Zero means no limit.
//
// defaults to 0
func WithMaxBytes(n int64) BatcherOption {
	return newFuncBatcherOption(func(o *batcherOptions) {
		if n >= 0 {
			o.maxBytes = n
		}
	})
}

// Batcher groups rows into batches and hands them to a Sink.
type Batcher struct {
	opts     batcherOptions
	sink     Sink
	batch    *Batch
	batches  int
	finished bool
	err      error
}

// NewBatcher creates a Batcher writing to sink.
func NewBatcher(sink Sink, opts ...BatcherOption) *Batcher {
	o := defaultBatcherOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}
	return &Batcher{
		opts:  o,
		sink:  sink,
		batch: &Batch{},
	}
}

// Append adds row to the open batch. If the row would make the open batch exceed a limit, the open batch is
// flushed first.
func (b *Batcher) Append(ctx context.Context, row Row) error {
	if b.finished {
		return fmt.Errorf("warcparquet: append to finished batcher")
	}
	if b.err != nil {
		return b.err
	}
	if b.batch.Len() > 0 && b.exceeds(row) {
		if err := b.Flush(ctx); err != nil {
			return err
		}
	}
	b.batch.add(row)
	return nil
}

func (b *Batcher) exceeds(row Row) bool {
	if b.batch.Len()+1 > b.opts.maxRows {
		return true
	}
	return b.opts.maxBytes > 0 && b.batch.Size()+row.Size() > b.opts.maxBytes
}

// Flush writes the open batch to the sink. It does nothing if the open batch is empty.
// After the sink has returned an error, every call returns that error.
func (b *Batcher) Flush(ctx context.Context) error {
	if b.err != nil {
		return b.err
	}
	if b.batch.Len() == 0 {
		return nil
	}
	batch := b.batch
	b.batch = &Batch{}
	if err := b.sink.WriteBatch(ctx, batch); err != nil {
		b.err = err
		return err
	}
	b.batches++
	return nil
}

// Finish flushes the open batch and closes the sink. Calling Finish more than once has no effect.
func (b *Batcher) Finish(ctx context.Context) error {
	if b.finished {
		return nil
	}
	b.finished = true
	if err := b.Flush(ctx); err != nil {
		_ = b.sink.Abort()
		return err
	}
	return b.sink.Close()
}

// Abort drops the open batch and aborts the sink.
func (b *Batcher) Abort() error {
	if b.finished {
		return nil
	}
	b.finished = true
	b.batch = &Batch{}
	return b.sink.Abort()
}

// Batches returns the number of batches written to the sink.
func (b *Batcher) Batches() int {
	return b.batches
}
