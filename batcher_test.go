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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memorySink keeps written batches in memory.
type memorySink struct {
	batches  []*Batch
	closed   int
	aborted  int
	writeErr error
}

func (s *memorySink) WriteBatch(_ context.Context, batch *Batch) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	s.batches = append(s.batches, batch)
	return nil
}

func (s *memorySink) Close() error {
	s.closed++
	return nil
}

func (s *memorySink) Abort() error {
	s.aborted++
	return nil
}

func (s *memorySink) batchSizes() []int {
	var sizes []int
	for _, b := range s.batches {
		sizes = append(sizes, b.Len())
	}
	return sizes
}

func (s *memorySink) rows() []Row {
	var rows []Row
	for _, b := range s.batches {
		rows = append(rows, b.Rows...)
	}
	return rows
}

func rowWithBody(id string, bodySize int) Row {
	return Row{ID: &id, Body: make([]byte, bodySize)}
}

func TestBatcher_MaxRows(t *testing.T) {
	tests := []struct {
		name      string
		maxRows   int
		rows      int
		wantSizes []int
	}{
		{"no rows", 3, 0, nil},
		{"fewer rows than limit", 3, 2, []int{2}},
		{"exactly limit", 3, 3, []int{3}},
		{"one more than limit", 3, 4, []int{3, 1}},
		{"several batches", 3, 10, []int{3, 3, 3, 1}},
		{"one row per batch", 1, 3, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			sink := &memorySink{}
			b := NewBatcher(sink, WithMaxRows(tt.maxRows))
			for i := 0; i < tt.rows; i++ {
				require.NoError(t, b.Append(ctx, rowWithBody("r", 1)))
			}
			require.NoError(t, b.Finish(ctx))

			assert.Equal(t, tt.wantSizes, sink.batchSizes())
			assert.Equal(t, len(tt.wantSizes), b.Batches())
			assert.Equal(t, 1, sink.closed)
			assert.Equal(t, 0, sink.aborted)
		})
	}
}

func TestBatcher_MaxBytes(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	row := rowWithBody("r", 100)
	rowSize := row.Size()
	b := NewBatcher(sink, WithMaxRows(100), WithMaxBytes(3*rowSize))

	// A row larger than the limit is written alone
	require.NoError(t, b.Append(ctx, rowWithBody("r", 100)))
	require.NoError(t, b.Append(ctx, rowWithBody("big", int(10*rowSize))))
	for i := 0; i < 4; i++ {
		require.NoError(t, b.Append(ctx, rowWithBody("r", 100)))
	}
	require.NoError(t, b.Finish(ctx))

	assert.Equal(t, []int{1, 1, 3, 1}, sink.batchSizes())
	for _, batch := range sink.batches {
		if batch.Len() > 1 {
			assert.LessOrEqual(t, batch.Size(), 3*rowSize)
		}
	}
}

func TestBatcher_KeepsOrder(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	b := NewBatcher(sink, WithMaxRows(2))
	ids := []string{"a", "b", "c", "d", "e"}
	for _, id := range ids {
		require.NoError(t, b.Append(ctx, rowWithBody(id, 0)))
	}
	require.NoError(t, b.Finish(ctx))

	var got []string
	for _, r := range sink.rows() {
		got = append(got, *r.ID)
	}
	assert.Equal(t, ids, got)
}

func TestBatcher_Flush(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	b := NewBatcher(sink)

	require.NoError(t, b.Flush(ctx))
	assert.Empty(t, sink.batches, "flushing an empty batch should not write")

	require.NoError(t, b.Append(ctx, rowWithBody("a", 0)))
	require.NoError(t, b.Flush(ctx))
	require.NoError(t, b.Flush(ctx))
	assert.Equal(t, []int{1}, sink.batchSizes())
}

func TestBatcher_FinishIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	b := NewBatcher(sink)
	require.NoError(t, b.Append(ctx, rowWithBody("a", 0)))

	require.NoError(t, b.Finish(ctx))
	require.NoError(t, b.Finish(ctx))
	require.NoError(t, b.Abort())
	assert.Equal(t, 1, sink.closed)
	assert.Equal(t, 0, sink.aborted)
	assert.Equal(t, []int{1}, sink.batchSizes())

	assert.Error(t, b.Append(ctx, rowWithBody("b", 0)))
}

func TestBatcher_Abort(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{}
	b := NewBatcher(sink)
	require.NoError(t, b.Append(ctx, rowWithBody("a", 0)))

	require.NoError(t, b.Abort())
	assert.Empty(t, sink.batches)
	assert.Equal(t, 1, sink.aborted)
	assert.Equal(t, 0, sink.closed)
}

func TestBatcher_WriteError(t *testing.T) {
	ctx := context.Background()
	writeErr := errors.New("no space left")
	sink := &memorySink{writeErr: writeErr}
	b := NewBatcher(sink, WithMaxRows(1))

	require.NoError(t, b.Append(ctx, rowWithBody("a", 0)))
	assert.ErrorIs(t, b.Append(ctx, rowWithBody("b", 0)), writeErr)
	assert.ErrorIs(t, b.Finish(ctx), writeErr)
	assert.Equal(t, 1, sink.aborted)
	assert.Equal(t, 0, sink.closed)
}
