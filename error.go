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
	"errors"
	"fmt"
)

// IOError is returned when an input can not be read or decompressed. It is always fatal.
type IOError struct {
	Input  string // Name of the offending input, if known
	Offset int64  // Offset in the decompressed input where the error occurred
	Err    error
}

func (e *IOError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("warcparquet: read error in %s at offset %d: %v", e.Input, e.Offset, e.Err)
	}
	return fmt.Sprintf("warcparquet: read error at offset %d: %v", e.Offset, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// FramingError is returned when the record structure is broken in a way that makes it impossible
// to find the start of the next record. It is always fatal.
type FramingError struct {
	msg string

	// Offset is the position in the logical (concatenated and decompressed) stream.
	Offset int64

	// Input and InputOffset are filled in by Convert when the source is able to locate the offset.
	Input       string
	InputOffset int64
}

func newFramingError(msg string, offset int64) *FramingError {
	return &FramingError{msg: msg, Offset: offset, InputOffset: -1}
}

func newFramingErrorf(offset int64, msg string, param ...interface{}) *FramingError {
	return newFramingError(fmt.Sprintf(msg, param...), offset)
}

func (e *FramingError) Error() string {
	if e.Input != "" {
		return fmt.Sprintf("warcparquet: %s in %s at offset %d", e.msg, e.Input, e.InputOffset)
	}
	return fmt.Sprintf("warcparquet: %s at offset %d", e.msg, e.Offset)
}

// FieldError is used for header values which could not be converted. The affected column is left empty.
type FieldError struct {
	fieldName string
	msg       string
	wrapped   error
}

func newFieldError(fieldName string, msg string, wrapped error) *FieldError {
	return &FieldError{fieldName: fieldName, msg: msg, wrapped: wrapped}
}

func newFieldErrorf(fieldName string, msg string, param ...interface{}) *FieldError {
	return &FieldError{fieldName: fieldName, msg: fmt.Sprintf(msg, param...)}
}

// Field returns the name of the offending header field.
func (e *FieldError) Field() string {
	return e.fieldName
}

func (e *FieldError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("warcparquet: %s at header %s: %v", e.msg, e.fieldName, e.wrapped)
	}
	return fmt.Sprintf("warcparquet: %s at header %s", e.msg, e.fieldName)
}

func (e *FieldError) Unwrap() error {
	return e.wrapped
}

// SyntaxError is used for syntactical errors like wrong line endings
type SyntaxError struct {
	msg  string
	line int
}

func newSyntaxError(msg string, pos *position) *SyntaxError {
	return &SyntaxError{msg: msg, line: pos.lineNumber}
}

func (e *SyntaxError) Error() string {
	if e.line > 0 {
		return fmt.Sprintf("warcparquet: %s at line %d", e.msg, e.line)
	}
	return fmt.Sprintf("warcparquet: %s", e.msg)
}

// IsFatal reports whether err stops a conversion, that is if it is an IOError or a FramingError.
func IsFatal(err error) bool {
	var ioErr *IOError
	var framingErr *FramingError
	return errors.As(err, &ioErr) || errors.As(err, &framingErr)
}
