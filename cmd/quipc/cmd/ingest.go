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
	"runtime"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/spf13/cobra"

	"github.com/kdna-bio/quipcore/contigio"
	"github.com/kdna-bio/quipcore/seqset"
	"github.com/kdna-bio/quipcore/twobit"
)

// ingestCmd dedups a pile of FASTA/Q reads into a seqset.SeqSet and
// snapshots it to a quipcore binary dump file, which the `stats` command
// summarizes. The `assemble` command reads FASTA/Q only and does not load
// these snapshots.
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "dedup FASTA/Q reads into a binary SeqSet snapshot",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)
		seq.ValidateSeq = false

		infileList := getFlagString(cmd, "infile-list")
		var files []string
		if infileList != "" {
			var err error
			files, err = getListFromFile(infileList)
			checkError(err)
		} else {
			files = getFileList(args)
		}
		checkFiles(files...)

		outFile := getFlagString(cmd, "out-file")
		gzipped := getFlagBool(cmd, "gzip")

		set := seqset.New()
		for _, file := range files {
			fastxReader, err := fastx.NewDefaultReader(file)
			checkError(err)
			for {
				record, err := fastxReader.Read()
				if err != nil {
					if err == io.EOF {
						break
					}
					checkError(err)
					break
				}
				set.Inc(twobit.New(record.Seq.Seq))
			}
		}

		f, err := os.Create(outFile)
		checkError(err)
		defer f.Close()

		dw := contigio.NewDumpWriter(f, gzipped)
		for _, e := range set.Dump() {
			checkError(dw.WriteEntry(e.Seq, e.Count))
		}
		checkError(dw.Flush())

		if opt.Verbose {
			log.Infof("wrote %s distinct reads to %s", humanize.Comma(int64(set.Size())), outFile)
		}
		fmt.Printf("%s distinct reads -> %s\n", humanize.Comma(int64(set.Size())), outFile)
	},
}

func init() {
	RootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringP("out-file", "o", "reads.qdump", "binary SeqSet dump output path")
	ingestCmd.Flags().Bool("gzip", true, "gzip-compress the dump body")
	ingestCmd.Flags().String("infile-list", "", "file listing one input path per line (overrides positional args)")
}
