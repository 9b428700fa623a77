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

package inspect

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/cobra"
)

type conf struct {
	fileName string
	head     int
}

func NewCommand() *cobra.Command {
	c := &conf{}
	cmd := &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show the layout of a Parquet file",
		Long:  `Inspect prints the columns and row groups of a Parquet file, and optionally the first rows.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.fileName = args[0]
			return runE(cmd.OutOrStdout(), c)
		},
	}

	cmd.Flags().IntVarP(&c.head, "head", "n", 0, "print id, type and target uri of the first n rows")

	return cmd
}

func runE(w io.Writer, c *conf) error {
	f, err := os.Open(c.fileName)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file %s: %w", c.fileName, err)
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return fmt.Errorf("failed to open parquet file: %w", err)
	}

	printLayout(w, c.fileName, pf)
	if c.head > 0 {
		return printRows(w, pf, c.head)
	}
	return nil
}

func printLayout(w io.Writer, name string, pf *parquet.File) {
	heading := color.New(color.FgCyan, color.Bold)
	metadata := pf.Metadata()

	_, _ = heading.Fprintln(w, name)
	_, _ = fmt.Fprintf(w, "rows: %d, row groups: %d\n", pf.NumRows(), len(metadata.RowGroups))

	_, _ = heading.Fprintln(w, "Columns")
	for _, field := range pf.Schema().Fields() {
		_, _ = fmt.Fprintf(w, "  %-24s %s\n", field.Name(), field.Type())
	}

	_, _ = heading.Fprintln(w, "Row groups")
	for i, rg := range metadata.RowGroups {
		codec := "-"
		if len(rg.Columns) > 0 {
			codec = rg.Columns[0].MetaData.Codec.String()
		}
		_, _ = fmt.Fprintf(w, "  %4d  rows: %-8d size: %-10d compressed: %-10d codec: %s\n",
			i, rg.NumRows, rg.TotalByteSize, rg.TotalCompressedSize, codec)
	}
}

func printRows(w io.Writer, pf *parquet.File, n int) error {
	if total := pf.NumRows(); int64(n) > total {
		n = int(total)
	}
	reader := parquet.NewGenericReader[map[string]any](pf, pf.Schema())
	defer func() { _ = reader.Close() }()

	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = make(map[string]any)
	}
	count, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error reading parquet rows: %w", err)
	}

	_, _ = color.New(color.FgCyan, color.Bold).Fprintln(w, "Rows")
	for _, row := range rows[:count] {
		_, _ = fmt.Fprintf(w, "  %v\t%v\t%v\n", value(row["id"]), value(row["type"]), value(row["target_uri"]))
	}
	return nil
}

func value(v any) any {
	switch v := v.(type) {
	case nil:
		return "-"
	case []byte:
		return string(v)
	default:
		return v
	}
}
