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

package ls

import (
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/nlnwa/warcparquet"
	"github.com/nlnwa/warcparquet/internal/bytesource"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type conf struct {
	fileNames []string
	gzipInput bool
	header    bool
	id        []string
}

func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "ls <file>...",
		Short: "List the records of WARC files",
		Long: `Ls prints one line per record with input, offset, record id, type and target uri.

The records are read the same way as by convert, so ls can be used to find the record causing a conversion to fail.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.fileNames = args
			slices.Sort(c.id)
			return runE(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().BoolVar(&c.gzipInput, "gzip-input", false, "always decode input as gzip")
	cmd.Flags().BoolVar(&c.header, "header", false, "show all header fields")
	cmd.Flags().StringArrayVar(&c.id, "id", []string{}, "only show records with this id. May be repeated")

	return cmd
}

func runE(w io.Writer, c *conf) error {
	compression := bytesource.Auto
	if c.gzipInput {
		compression = bytesource.Gzip
	}
	src := bytesource.New(bytesource.FromPaths(c.fileNames), bytesource.WithCompression(compression))
	defer func() { _ = src.Close() }()

	tok := warcparquet.NewTokenizer(src)
	count := 0
	for {
		record, validation, err := tok.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("failed after %d records: %w", count, locate(src, err))
		}
		count++

		input, offset := src.Locate(record.Offset)
		if !validation.Valid() {
			log.WithFields(log.Fields{
				"input":     input,
				"offset":    offset,
				"record_id": record.RecordID(),
			}).Warn(validation.Err())
		}
		if len(c.id) > 0 {
			if _, found := slices.BinarySearch(c.id, record.RecordID()); !found {
				continue
			}
		}
		printRecord(w, input, offset, record, c.header)
	}
	log.Infof("Count: %d", count)
	return nil
}

func printRecord(w io.Writer, input string, offset int64, record *warcparquet.WarcRecord, header bool) {
	_, _ = fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", input, offset, record.RecordID(), record.TypeToken(), record.Header.Get(warcparquet.WarcTargetURI))
	if header {
		for _, nv := range record.Header {
			_, _ = fmt.Fprintf(w, "    %s: %s\n", nv.Name, nv.Value)
		}
	}
}

// locate names the input of a framing error.
func locate(src *bytesource.Source, err error) error {
	var framingErr *warcparquet.FramingError
	if errors.As(err, &framingErr) && framingErr.Input == "" {
		framingErr.Input, framingErr.InputOffset = src.Locate(framingErr.Offset)
	}
	return err
}
