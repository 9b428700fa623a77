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

/*
Package warcparquet converts WARC files to Parquet tables.

# WARC

The WARC format offers a standard way to structure, manage and store billions of resources collected from the web and elsewhere.

To learn more about the WARC standard, read the specification at https://iipc.github.io/warc-specifications/specifications/warc-format/warc-1.1/

# Conversion

[Convert] reads a stream of WARC records, maps each record to a [Row] and writes the rows in batches to a [Sink].
The stream is read with a [Tokenizer], which splits it into records without interpreting the record block.
[MapRecord] converts header values to the column types in [Columns]. A [Batcher] groups rows and hands them to the sink.

Package github.com/nlnwa/warcparquet/pkg/parquetsink implements a Sink writing Parquet files.

# Errors

Problems that make it impossible to find the next record, like a truncated block or a missing Content-Length,
are returned as [*FramingError]. Read errors are returned as [*IOError]. Both stop the conversion.
Other problems, like an unparsable date, are collected in a [Validation] and logged. The affected column is left empty.

# Create WARC records

The [RecordBuilder] is used to create WARC records, and [Marshal] to write them. The RecordBuilder will by default
generate a record id and calculate the Content-Length and WARC-Block-Digest.
*/
package warcparquet
