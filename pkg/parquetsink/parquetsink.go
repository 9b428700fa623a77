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

// Package parquetsink writes batches of rows to a Parquet file.
//
// Each batch becomes one row group. The table schema is derived from warcparquet.Columns.
package parquetsink

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/hashicorp/go-multierror"
	"github.com/nlnwa/warcparquet"
	"github.com/prometheus/tsdb/fileutil"
	log "github.com/sirupsen/logrus"
)

// Codec is the compression used for column chunks.
type Codec uint8

const (
	None Codec = iota
	Snappy
	Gzip
	Zstd
	Brotli
	Lz4
)

// Codecs lists the supported codecs.
var Codecs = []Codec{None, Snappy, Gzip, Zstd, Brotli, Lz4}

func (c Codec) String() string {
	switch c {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case Brotli:
		return "brotli"
	case Lz4:
		return "lz4"
	default:
		return fmt.Sprintf("codec(%d)", c)
	}
}

func (c Codec) compression() compress.Compression {
	switch c {
	case Snappy:
		return compress.Codecs.Snappy
	case Gzip:
		return compress.Codecs.Gzip
	case Zstd:
		return compress.Codecs.Zstd
	case Brotli:
		return compress.Codecs.Brotli
	case Lz4:
		return compress.Codecs.Lz4Raw
	default:
		return compress.Codecs.Uncompressed
	}
}

// ParseCodec returns the codec with the given name. Case is ignored and 'uncompressed' is accepted for None.
func ParseCodec(name string) (Codec, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "uncompressed" {
		return None, nil
	}
	for _, c := range Codecs {
		if c.String() == n {
			return c, nil
		}
	}
	return None, fmt.Errorf("unknown compression codec '%s'", name)
}

// Schema returns the Arrow schema of the output table.
func Schema() *arrow.Schema {
	fields := make([]arrow.Field, len(warcparquet.Columns))
	for i, c := range warcparquet.Columns {
		fields[i] = arrow.Field{Name: c.Name, Type: dataType(c.Type), Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

func dataType(t warcparquet.ColumnType) arrow.DataType {
	switch t {
	case warcparquet.Uint32Column:
		return arrow.PrimitiveTypes.Uint32
	case warcparquet.Uint64Column:
		return arrow.PrimitiveTypes.Uint64
	case warcparquet.TimestampColumn:
		return arrow.FixedWidthTypes.Timestamp_ms
	case warcparquet.BinaryColumn:
		return arrow.BinaryTypes.Binary
	default:
		return arrow.BinaryTypes.String
	}
}

type options struct {
	codec     Codec
	allocator memory.Allocator
}

// Option configures a Sink.
type Option interface {
	apply(*options)
}

type funcOption struct {
	f func(*options)
}

func (fo *funcOption) apply(o *options) {
	fo.f(o)
}

func newFuncOption(f func(*options)) *funcOption {
	return &funcOption{
		f: f,
	}
}

// WithCodec sets the compression codec.
//
// defaults to Snappy
func WithCodec(c Codec) Option {
	return newFuncOption(func(o *options) {
		o.codec = c
	})
}

// WithAllocator sets the memory allocator used for Arrow arrays.
//
// defaults to memory.DefaultAllocator
func WithAllocator(mem memory.Allocator) Option {
	return newFuncOption(func(o *options) {
		if mem != nil {
			o.allocator = mem
		}
	})
}

// Sink implements warcparquet.Sink.
type Sink struct {
	opts      options
	schema    *arrow.Schema
	writer    *pqarrow.FileWriter
	done      bool
	rows      int64
	rowGroups int

	// Set when writing to a file through OpenFile
	file      *os.File
	finalPath string
}

// nopCloser hides Close from the parquet writer so closing the writer does not close the output.
type nopCloser struct {
	io.Writer
}

// New creates a Sink writing a Parquet file to w. The Sink does not close w.
func New(w io.Writer, opts ...Option) (*Sink, error) {
	o := options{
		codec:     Snappy,
		allocator: memory.DefaultAllocator,
	}
	for _, opt := range opts {
		opt.apply(&o)
	}

	schema := Schema()
	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(o.codec.compression()),
		parquet.WithDictionaryDefault(true),
		parquet.WithDictionaryFor(warcparquet.Columns[warcparquet.ColBody].Name, false),
		parquet.WithAllocator(o.allocator),
		parquet.WithCreatedBy("warcparquet"),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithStoreSchema(),
		pqarrow.WithAllocator(o.allocator),
	)

	writer, err := pqarrow.NewFileWriter(schema, nopCloser{w}, writerProps, arrowProps)
	if err != nil {
		return nil, fmt.Errorf("parquetsink: failed to create parquet writer: %w", err)
	}
	return &Sink{
		opts:   o,
		schema: schema,
		writer: writer,
	}, nil
}

// OpenFile creates a Sink writing to path. The path '-' means standard output.
//
// The file is written as path + ".open" and renamed to path when the Sink is closed, replacing any existing file.
// Abort removes the temporary file.
func OpenFile(path string, opts ...Option) (*Sink, error) {
	if path == "-" {
		return New(os.Stdout, opts...)
	}
	f, err := os.Create(path + ".open")
	if err != nil {
		return nil, fmt.Errorf("parquetsink: failed to create file: %w", err)
	}
	s, err := New(f, opts...)
	if err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return nil, err
	}
	s.file = f
	s.finalPath = path
	log.WithField("file", f.Name()).Debug("Created output file")
	return s, nil
}

// WriteBatch writes the rows of batch as one row group.
func (s *Sink) WriteBatch(ctx context.Context, batch *warcparquet.Batch) error {
	if s.done {
		return fmt.Errorf("parquetsink: write to closed sink")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if batch.Len() == 0 {
		return nil
	}

	record := s.buildRecord(batch)
	defer record.Release()

	if err := s.writer.Write(record); err != nil {
		return fmt.Errorf("parquetsink: failed to write row group: %w", err)
	}
	s.rows += int64(batch.Len())
	s.rowGroups++
	log.WithFields(log.Fields{
		"rows":     batch.Len(),
		"rowGroup": s.rowGroups,
	}).Debug("Wrote row group")
	return nil
}

func (s *Sink) buildRecord(batch *warcparquet.Batch) arrow.RecordBatch {
	fields := s.schema.Fields()
	arrays := make([]arrow.Array, len(fields))
	for col, field := range fields {
		builder := array.NewBuilder(s.opts.allocator, field.Type)
		builder.Reserve(batch.Len())
		for i := range batch.Rows {
			appendValue(builder, batch.Rows[i].Value(col))
		}
		arrays[col] = builder.NewArray()
		builder.Release()
	}

	record := array.NewRecordBatch(s.schema, arrays, int64(batch.Len()))
	for _, a := range arrays {
		a.Release()
	}
	return record
}

func appendValue(builder array.Builder, v any) {
	if v == nil {
		builder.AppendNull()
		return
	}
	switch b := builder.(type) {
	case *array.StringBuilder:
		b.Append(v.(string))
	case *array.Uint32Builder:
		b.Append(v.(uint32))
	case *array.Uint64Builder:
		b.Append(v.(uint64))
	case *array.TimestampBuilder:
		b.Append(arrow.Timestamp(v.(time.Time).UnixMilli()))
	case *array.BinaryBuilder:
		b.Append(v.([]byte))
	default:
		builder.AppendNull()
	}
}

// Close writes the file footer. If the Sink was created with OpenFile, the file is closed and renamed to its final path.
func (s *Sink) Close() error {
	if s.done {
		return nil
	}
	s.done = true

	var result error
	if err := s.writer.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("parquetsink: failed to write footer: %w", err))
	}
	if s.file == nil {
		return result
	}

	tmpName := s.file.Name()
	if err := s.file.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("parquetsink: failed to close file: %s: %w", tmpName, err))
	}
	if result != nil {
		_ = os.Remove(tmpName)
		return result
	}
	if err := fileutil.Rename(tmpName, s.finalPath); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("parquetsink: failed to rename file: %s: %w", tmpName, err)
	}
	log.WithFields(log.Fields{
		"file":      s.finalPath,
		"rows":      s.rows,
		"rowGroups": s.rowGroups,
	}).Debug("Closed output file")
	return nil
}

// Abort stops writing without a footer. If the Sink was created with OpenFile, the temporary file is removed.
func (s *Sink) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	if s.file == nil {
		return nil
	}
	tmpName := s.file.Name()
	var result error
	if err := s.file.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := os.Remove(tmpName); err != nil {
		result = multierror.Append(result, err)
	}
	log.WithField("file", tmpName).Debug("Removed aborted output file")
	return result
}

// Rows returns the number of rows written.
func (s *Sink) Rows() int64 {
	return s.rows
}

// RowGroups returns the number of row groups written.
func (s *Sink) RowGroups() int {
	return s.rowGroups
}
