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
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
)

// Locator maps an offset in the logical input stream to the input it came from and the offset within that input.
type Locator interface {
	Locate(offset int64) (input string, inputOffset int64)
}

// Stats summarizes a conversion.
type Stats struct {
	Records  int64 // Records read from the input
	Rows     int64 // Rows handed to the sink
	Batches  int   // Batches written
	Warnings int64 // Recoverable problems reported
	Bytes    int64 // Bytes consumed from the logical input stream
}

type convertOptions struct {
	tokenizerOpts []Option
	batcherOpts   []BatcherOption
	strict        bool
	logger        log.FieldLogger
	locator       Locator
}

// ConvertOption configures Convert.
type ConvertOption interface {
	apply(*convertOptions)
}

type funcConvertOption struct {
	f func(*convertOptions)
}

func (fo *funcConvertOption) apply(o *convertOptions) {
	fo.f(o)
}

func newFuncConvertOption(f func(*convertOptions)) *funcConvertOption {
	return &funcConvertOption{
		f: f,
	}
}

// WithTokenizerOptions passes options to the record tokenizer.
func WithTokenizerOptions(opts ...Option) ConvertOption {
	return newFuncConvertOption(func(o *convertOptions) {
		o.tokenizerOpts = append(o.tokenizerOpts, opts...)
	})
}

// WithBatcherOptions passes options to the row batcher.
func WithBatcherOptions(opts ...BatcherOption) ConvertOption {
	return newFuncConvertOption(func(o *convertOptions) {
		o.batcherOpts = append(o.batcherOpts, opts...)
	})
}

// WithStrict makes any recoverable problem stop the conversion.
//
// defaults to false
func WithStrict(strict bool) ConvertOption {
	return newFuncConvertOption(func(o *convertOptions) {
		o.strict = strict
	})
}

// WithLogger sets the logger used for warnings.
//
// defaults to the logrus standard logger
func WithLogger(logger log.FieldLogger) ConvertOption {
	return newFuncConvertOption(func(o *convertOptions) {
		o.logger = logger
	})
}

// WithLocator sets the Locator used to name the input in warnings and errors.
// If not set and the source implements Locator, the source is used.
func WithLocator(locator Locator) ConvertOption {
	return newFuncConvertOption(func(o *convertOptions) {
		o.locator = locator
	})
}

// Convert reads WARC records from src, maps them to rows and writes them to sink in batches.
//
// Recoverable problems are logged and counted. IO and framing errors stop the conversion and abort the sink.
// If ctx is cancelled, the rows read so far are written, the sink is closed and ctx.Err() is returned.
func Convert(ctx context.Context, src io.Reader, sink Sink, opts ...ConvertOption) (*Stats, error) {
	o := &convertOptions{logger: log.StandardLogger()}
	for _, opt := range opts {
		opt.apply(o)
	}
	if o.locator == nil {
		if l, ok := src.(Locator); ok {
			o.locator = l
		}
	}

	tokenizer := NewTokenizer(src, o.tokenizerOpts...)
	batcher := NewBatcher(sink, o.batcherOpts...)
	stats := &Stats{}

	done := func(err error) (*Stats, error) {
		stats.Bytes = tokenizer.Offset()
		stats.Batches = batcher.Batches()
		return stats, err
	}
	fail := func(err error) (*Stats, error) {
		if abortErr := batcher.Abort(); abortErr != nil {
			err = multierror.Append(err, abortErr)
		}
		return done(err)
	}

	for {
		if err := ctx.Err(); err != nil {
			o.logger.WithError(err).Warn("Conversion interrupted, writing rows read so far")
			if finishErr := batcher.Finish(context.WithoutCancel(ctx)); finishErr != nil {
				err = multierror.Append(err, finishErr)
			}
			return done(err)
		}

		record, validation, err := tokenizer.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fail(o.locate(err))
		}
		stats.Records++

		row, mapValidation := MapRecord(record)
		validation.AddError(mapValidation...)
		if !validation.Valid() {
			stats.Warnings += int64(len(*validation))
			o.logWarnings(record, validation)
			if o.strict {
				input, offset := o.position(record.Offset)
				return fail(fmt.Errorf("warcparquet: invalid record %s in %s at offset %d: %w",
					record.RecordID(), input, offset, validation.Err()))
			}
		}

		if err := batcher.Append(ctx, row); err != nil {
			return fail(err)
		}
		stats.Rows++
	}

	if err := batcher.Finish(ctx); err != nil {
		return done(err)
	}
	stats, _ = done(nil)
	o.logger.WithFields(log.Fields{
		"records":  stats.Records,
		"rows":     stats.Rows,
		"batches":  stats.Batches,
		"warnings": stats.Warnings,
		"bytes":    stats.Bytes,
	}).Debug("Conversion finished")
	return stats, nil
}

// position returns the input name and input offset for a logical offset.
func (o *convertOptions) position(offset int64) (string, int64) {
	if o.locator == nil {
		return "<stream>", offset
	}
	return o.locator.Locate(offset)
}

// locate adds the input name to fatal errors which only know the logical offset.
func (o *convertOptions) locate(err error) error {
	if o.locator == nil {
		return err
	}
	var framingErr *FramingError
	if errors.As(err, &framingErr) && framingErr.Input == "" {
		framingErr.Input, framingErr.InputOffset = o.locator.Locate(framingErr.Offset)
		return err
	}
	var ioErr *IOError
	if errors.As(err, &ioErr) && ioErr.Input == "" {
		ioErr.Input, ioErr.Offset = o.locator.Locate(ioErr.Offset)
	}
	return err
}

func (o *convertOptions) logWarnings(record *WarcRecord, validation *Validation) {
	input, offset := o.position(record.Offset)
	logger := o.logger.WithFields(log.Fields{
		"input":     input,
		"offset":    offset,
		"record_id": record.RecordID(),
	})
	for _, err := range *validation {
		logger.Warn(err.Error())
	}
}
