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

package parquetsink

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/file"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/nlnwa/warcparquet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func testRows() []warcparquet.Row {
	date := time.Date(2017, 3, 6, 4, 3, 53, 0, time.UTC)
	return []warcparquet.Row{
		{
			ID:            ptr("<urn:uuid:1>"),
			ContentLength: ptr(uint64(4)),
			Date:          &date,
			Type:          ptr("warcinfo"),
			SegmentNumber: ptr(uint32(2)),
			Body:          []byte("abcd"),
		},
		{
			Type: ptr("response"),
			Body: []byte{},
		},
		{
			ID:        ptr("<urn:uuid:3>"),
			Type:      ptr("request"),
			TargetURI: ptr("http://example.com/"),
			Body:      []byte("GET / HTTP/1.1\r\n\r\n"),
		},
	}
}

func readTable(t *testing.T, rdr *file.Reader) arrow.Table {
	t.Helper()
	fr, err := pqarrow.NewFileReader(rdr, pqarrow.ArrowReadProperties{}, memory.DefaultAllocator)
	require.NoError(t, err)
	tbl, err := fr.ReadTable(context.Background())
	require.NoError(t, err)
	t.Cleanup(tbl.Release)
	return tbl
}

// column returns the values of a column with nil for null. Binary values are returned as strings.
func column(t *testing.T, tbl arrow.Table, col int) []any {
	t.Helper()
	var values []any
	for _, chunk := range tbl.Column(col).Data().Chunks() {
		for i := 0; i < chunk.Len(); i++ {
			if chunk.IsNull(i) {
				values = append(values, nil)
				continue
			}
			switch a := chunk.(type) {
			case *array.String:
				values = append(values, a.Value(i))
			case *array.Uint32:
				values = append(values, a.Value(i))
			case *array.Uint64:
				values = append(values, a.Value(i))
			case *array.Timestamp:
				values = append(values, time.UnixMilli(int64(a.Value(i))).UTC())
			case *array.Binary:
				values = append(values, string(a.Value(i)))
			default:
				t.Fatalf("unexpected array type %T", chunk)
			}
		}
	}
	return values
}

func TestParseCodec(t *testing.T) {
	tests := []struct {
		name    string
		want    Codec
		wantErr bool
	}{
		{"snappy", Snappy, false},
		{"ZSTD", Zstd, false},
		{" gzip ", Gzip, false},
		{"brotli", Brotli, false},
		{"lz4", Lz4, false},
		{"none", None, false},
		{"uncompressed", None, false},
		{"lzo", None, true},
		{"", None, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCodec(tt.name)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchema(t *testing.T) {
	schema := Schema()
	require.Equal(t, len(warcparquet.Columns), schema.NumFields())
	for i, c := range warcparquet.Columns {
		f := schema.Field(i)
		assert.Equal(t, c.Name, f.Name)
		assert.True(t, f.Nullable, c.Name)
	}
	assert.Equal(t, arrow.BinaryTypes.String, schema.Field(warcparquet.ColID).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Uint64, schema.Field(warcparquet.ColContentLength).Type)
	assert.Equal(t, arrow.PrimitiveTypes.Uint32, schema.Field(warcparquet.ColSegmentNumber).Type)
	assert.Equal(t, arrow.FixedWidthTypes.Timestamp_ms, schema.Field(warcparquet.ColDate).Type)
	assert.Equal(t, arrow.BinaryTypes.Binary, schema.Field(warcparquet.ColBody).Type)
}

func TestSink_WriteBatch(t *testing.T) {
	for _, codec := range Codecs {
		t.Run(codec.String(), func(t *testing.T) {
			buf := &bytes.Buffer{}
			s, err := New(buf, WithCodec(codec))
			require.NoError(t, err)

			rows := testRows()
			ctx := context.Background()
			require.NoError(t, s.WriteBatch(ctx, &warcparquet.Batch{Rows: rows[:2]}))
			require.NoError(t, s.WriteBatch(ctx, &warcparquet.Batch{}))
			require.NoError(t, s.WriteBatch(ctx, &warcparquet.Batch{Rows: rows[2:]}))
			require.NoError(t, s.Close())
			require.NoError(t, s.Close())

			assert.Equal(t, int64(3), s.Rows())
			assert.Equal(t, 2, s.RowGroups())

			rdr, err := file.NewParquetReader(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			defer func() { _ = rdr.Close() }()

			assert.Equal(t, 2, rdr.NumRowGroups())
			assert.Equal(t, int64(2), rdr.MetaData().RowGroup(0).NumRows())
			assert.Equal(t, int64(1), rdr.MetaData().RowGroup(1).NumRows())
			cc, err := rdr.MetaData().RowGroup(0).ColumnChunk(0)
			require.NoError(t, err)
			assert.Equal(t, codec.compression(), cc.Compression())

			tbl := readTable(t, rdr)
			assert.Equal(t, int64(3), tbl.NumRows())

			assert.Equal(t, []any{"<urn:uuid:1>", nil, "<urn:uuid:3>"}, column(t, tbl, warcparquet.ColID))
			assert.Equal(t, []any{"warcinfo", "response", "request"}, column(t, tbl, warcparquet.ColType))
			assert.Equal(t, []any{uint64(4), nil, nil}, column(t, tbl, warcparquet.ColContentLength))
			assert.Equal(t, []any{uint32(2), nil, nil}, column(t, tbl, warcparquet.ColSegmentNumber))
			assert.Equal(t, []any{time.Date(2017, 3, 6, 4, 3, 53, 0, time.UTC), nil, nil}, column(t, tbl, warcparquet.ColDate))
			assert.Equal(t, []any{nil, nil, "http://example.com/"}, column(t, tbl, warcparquet.ColTargetURI))
			assert.Equal(t, []any{"abcd", "", "GET / HTTP/1.1\r\n\r\n"}, column(t, tbl, warcparquet.ColBody))
			assert.Equal(t, []any{nil, nil, nil}, column(t, tbl, warcparquet.ColConcurrentTo))
		})
	}
}

func TestSink_WriteAfterClose(t *testing.T) {
	s, err := New(&bytes.Buffer{})
	require.NoError(t, err)
	require.NoError(t, s.Close())
	assert.Error(t, s.WriteBatch(context.Background(), &warcparquet.Batch{Rows: testRows()}))
}

func TestSink_CancelledContext(t *testing.T) {
	s, err := New(&bytes.Buffer{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.WriteBatch(ctx, &warcparquet.Batch{Rows: testRows()}), context.Canceled)
	assert.Equal(t, 0, s.RowGroups())
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	s, err := OpenFile(path, WithCodec(Zstd))
	require.NoError(t, err)

	assert.FileExists(t, path+".open")
	assert.NoFileExists(t, path)

	require.NoError(t, s.WriteBatch(context.Background(), &warcparquet.Batch{Rows: testRows()}))
	require.NoError(t, s.Close())

	assert.NoFileExists(t, path+".open")
	assert.FileExists(t, path)

	rdr, err := file.OpenParquetFile(path, false)
	require.NoError(t, err)
	defer func() { _ = rdr.Close() }()
	assert.Equal(t, int64(3), rdr.NumRows())
	assert.Equal(t, 1, rdr.NumRowGroups())
}

func TestOpenFile_ReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.parquet")
	require.NoError(t, os.WriteFile(path, []byte("old content"), 0o644))

	s, err := OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(b[:4]))
	assert.Equal(t, "PAR1", string(b[len(b)-4:]))
}

func TestOpenFile_Abort(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.parquet")
	s, err := OpenFile(path)
	require.NoError(t, err)

	require.NoError(t, s.WriteBatch(context.Background(), &warcparquet.Batch{Rows: testRows()}))
	require.NoError(t, s.Abort())
	require.NoError(t, s.Abort())
	require.NoError(t, s.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
