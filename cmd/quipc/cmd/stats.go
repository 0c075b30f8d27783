// Copyright © 2018 Wei Shen <shenwei356@gmail.com>
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"io"
	"os"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/stable"
	"github.com/spf13/cobra"

	"github.com/kdna-bio/quipcore/contigio"
)

// statsCmd reports per-file summary statistics for quipcore binary
// TwoBit/SeqSet dump files written by contigio.DumpWriter (e.g. the
// snapshots the assemble command can be pointed at for repeat runs).
var statsCmd = &cobra.Command{
	Use:     "stats",
	Aliases: []string{"info"},
	Short:   "summary statistics for a quipcore binary dump file",
	Run: func(cmd *cobra.Command, args []string) {
		files := getFileList(args)
		checkFiles(files...)

		type row struct {
			file        string
			entries     int
			bases       int
			mainV, minV uint8
			gzipped     bool
		}
		var rows []row

		for _, file := range files {
			f, err := os.Open(file)
			checkError(err)

			dr, err := contigio.NewDumpReader(f)
			if err != nil {
				f.Close()
				checkError(fmt.Errorf("%s: %w", file, err))
			}

			r := row{file: file, mainV: dr.MainVersion, minV: dr.MinorVersion, gzipped: dr.Gzipped}
			for {
				seq, _, err := dr.ReadEntry()
				if err != nil {
					if err == io.EOF {
						break
					}
					f.Close()
					checkError(fmt.Errorf("%s: %w", file, err))
				}
				r.entries++
				r.bases += seq.Len()
			}
			f.Close()
			rows = append(rows, r)
		}

		style := &stable.TableStyle{
			Name:      "plain",
			HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
			Padding:   "",
		}
		columns := []stable.Column{
			{Header: "file"},
			{Header: "version"},
			{Header: "gzipped", Align: stable.AlignLeft},
			{Header: "entries", Align: stable.AlignRight},
			{Header: "bases", Align: stable.AlignRight},
		}
		tbl := stable.New()
		tbl.HeaderWithFormat(columns)
		for _, r := range rows {
			tbl.AddRow([]interface{}{
				r.file,
				fmt.Sprintf("%d.%d", r.mainV, r.minV),
				r.gzipped,
				humanize.Comma(int64(r.entries)),
				humanize.Comma(int64(r.bases)),
			})
		}
		fmt.Print(string(tbl.Render(style)))
	},
}

func init() {
	RootCmd.AddCommand(statsCmd)
}
