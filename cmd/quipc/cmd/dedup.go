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
	"runtime"

	humanize "github.com/dustin/go-humanize"
	"github.com/shenwei356/bio/seq"
	"github.com/shenwei356/bio/seqio/fastx"
	"github.com/shenwei356/xopen"
	"github.com/spf13/cobra"
	boom "github.com/tylertreat/BoomFilters"
)

// dedupCmd gives a fast, approximate preview of how much a read pile
// will dedup before committing to a full assemble run: it streams every
// record through a scalable (non-counting) Bloom filter instead of
// building the exact seqset.SeqSet, and optionally writes one copy of
// each first-seen read to -o.
//
// This is deliberately not the assembler's counting Bloom filter: that
// one needs a saturating per-key delta and a hard per-key delete,
// neither of which BoomFilters' scalable filter exposes.
var dedupCmd = &cobra.Command{
	Use:   "dedup",
	Short: "preview approximate read deduplication without a full assemble run",
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)
		seq.ValidateSeq = false

		files := getFileList(args)
		checkFiles(files...)

		hint := getFlagPositiveInt(cmd, "esti-read-num")
		outFile := getFlagString(cmd, "out-file")

		var outfh *xopen.Writer
		if outFile != "" {
			var err error
			outfh, err = xopen.Wopen(outFile)
			checkError(err)
			defer outfh.Close()
		}

		sbf := boom.NewScalableBloomFilter(uint(hint), 0.01, 0.8)

		var total, unique int
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
				total++
				if sbf.Test(record.Seq.Seq) {
					continue
				}
				sbf.Add(record.Seq.Seq)
				unique++
				if outfh != nil {
					fmt.Fprintf(outfh, ">%s\n%s\n", record.ID, record.Seq.Seq)
				}
			}
		}

		fmt.Printf("%s reads, ~%s estimated-unique (%.1f%%)\n",
			humanize.Comma(int64(total)), humanize.Comma(int64(unique)),
			100*float64(unique)/float64(maxInt(total, 1)))
	},
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func init() {
	RootCmd.AddCommand(dedupCmd)

	dedupCmd.Flags().IntP("esti-read-num", "n", 1000000, "estimated read count, used to size the scalable Bloom filter")
	dedupCmd.Flags().StringP("out-file", "o", "", "write first-seen reads here as FASTA (empty: don't write)")
}
