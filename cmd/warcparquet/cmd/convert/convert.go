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

package convert

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nlnwa/warcparquet"
	"github.com/nlnwa/warcparquet/internal/bytesource"
	"github.com/nlnwa/warcparquet/pkg/parquetsink"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file>...",
		Short: "Convert WARC files to one Parquet file",
		Long: `Convert reads the WARC files in the order given and writes all records to one Parquet file.

Use '-' to read from standard input. Gzip compressed input, including files with one gzip member per record,
is detected automatically.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runE(cmd.Context(), args)
		},
	}

	cmd.Flags().Bool("gzip-input", false, "always decode input as gzip")
	cmd.Flags().StringP("compression", "c", "snappy", "parquet compression codec, one of none, snappy, gzip, zstd, brotli, lz4")
	cmd.Flags().IntP("batch-size", "b", 8192, "maximum number of rows in a row group")
	cmd.Flags().String("batch-bytes", "0", "maximum size of a row group before compression, e.g. 64mb. 0 means no limit")
	cmd.Flags().StringP("output", "o", "-", "output file, '-' for standard output. An existing file is replaced")
	cmd.Flags().Bool("strict", false, "stop on the first record with a validation problem")
	cmd.Flags().Bool("validate-digest", false, "check WARC-Block-Digest against the record block")
	cmd.Flags().Bool("line-ending-warnings", false, "warn about header lines ending with a bare newline")
	cmd.Flags().String("max-header-size", "1mb", "maximum size of a record header")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		log.Fatalf("Failed to bind convert flags: %v", err)
	}

	return cmd
}

func runE(ctx context.Context, inputs []string) error {
	codec, err := parquetsink.ParseCodec(viper.GetString("compression"))
	if err != nil {
		return err
	}
	compression := bytesource.Auto
	if viper.GetBool("gzip-input") {
		compression = bytesource.Gzip
	}

	src := bytesource.New(bytesource.FromPaths(inputs), bytesource.WithCompression(compression))
	defer func() { _ = src.Close() }()

	output := viper.GetString("output")
	sink, err := parquetsink.OpenFile(output, parquetsink.WithCodec(codec))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	stats, err := warcparquet.Convert(ctx, src, sink,
		warcparquet.WithTokenizerOptions(
			warcparquet.WithDigestValidation(viper.GetBool("validate-digest")),
			warcparquet.WithLineEndingWarnings(viper.GetBool("line-ending-warnings")),
			warcparquet.WithMaxHeaderSize(int(viper.GetSizeInBytes("max-header-size"))),
		),
		warcparquet.WithBatcherOptions(
			warcparquet.WithMaxRows(viper.GetInt("batch-size")),
			warcparquet.WithMaxBytes(int64(viper.GetSizeInBytes("batch-bytes"))),
		),
		warcparquet.WithStrict(viper.GetBool("strict")),
	)

	for _, s := range src.Stats() {
		log.WithFields(log.Fields{
			"input":        s.Name,
			"compressed":   s.Compressed,
			"rawBytes":     s.RawBytes,
			"decodedBytes": s.DecodedBytes,
		}).Debug("Input read")
	}
	if stats != nil {
		log.WithFields(log.Fields{
			"output":    output,
			"records":   stats.Records,
			"rows":      sink.Rows(),
			"rowGroups": sink.RowGroups(),
			"warnings":  stats.Warnings,
			"duration":  time.Since(start).Round(time.Millisecond),
		}).Info("Conversion finished")
	}
	return err
}
