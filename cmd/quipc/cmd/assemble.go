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
	"github.com/shenwei356/stable"
	"github.com/spf13/cobra"

	"github.com/kdna-bio/quipcore/assembler"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble",
	Short: "assemble FASTA/Q reads into contigs and align reads back against them",
	Long: `assemble FASTA/Q reads into contigs and align reads back against them

Reads every record from the given FASTA/FASTQ files, deduplicates them,
greedily extends the most abundant reads into contigs through a counting
Bloom filter, writes the contigs to disk, then seeds and aligns every
unique read back against the contigs it produced.
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := getOptions(cmd)
		runtime.GOMAXPROCS(opt.NumCPUs)
		seq.ValidateSeq = false

		files := getFileList(args)
		checkFiles(files...)

		assembleK := getFlagPositiveInt(cmd, "assemble-k")
		alignK := getFlagPositiveInt(cmd, "align-k")
		if alignK > assembleK {
			checkError(fmt.Errorf("align-k (%d) must not exceed assemble-k (%d)", alignK, assembleK))
		}
		minCount := getFlagUint32(cmd, "min-count")
		contigOut := getFlagString(cmd, "contig-out")
		quick := getFlagBool(cmd, "quick")
		autoSize := getFlagBool(cmd, "auto-bloom-size")
		bloomCells := getFlagUint64(cmd, "bloom-cells")
		bloomHashes := getFlagPositiveInt(cmd, "bloom-hashes")

		opts := assembler.DefaultOptions()
		opts.AssembleK = assembleK
		opts.AlignK = alignK
		opts.CountCutoff = minCount
		opts.ContigPath = contigOut
		opts.Quick = quick
		opts.Verbose = opt.Verbose
		opts.BloomHashes = bloomHashes
		if bloomCells > 0 {
			opts.BloomCells = bloomCells
		}

		asm := assembler.New(opts)

		var forSizing [][]byte
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
				s := append([]byte(nil), record.Seq.Seq...)
				asm.AddSeq(s)
				if autoSize && len(forSizing) < 20000 {
					forSizing = append(forSizing, s)
				}
			}
		}

		if opt.Verbose {
			log.Infof("%s distinct reads recorded", humanize.Comma(int64(asm.NumReads())))
		}

		if autoSize && bloomCells == 0 {
			est := estimateDistinctKmers(forSizing, assembleK)
			sized := nextPowerOfTwo(uint64(est) * 4)
			opts.BloomCells = sized
			asm = assembler.New(opts)
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
					asm.AddSeq(record.Seq.Seq)
				}
			}
			if opt.Verbose {
				log.Infof("ntHash-estimated %s distinct assemble-k-mers; sized Bloom filter to %s cells",
					humanize.Comma(int64(est)), humanize.Comma(int64(sized)))
			}
		}

		result, err := asm.Assemble()
		checkError(err)

		printAssembleSummary(result, contigOut)
	},
}

func printAssembleSummary(result *assembler.Result, contigOut string) {
	style := &stable.TableStyle{
		Name:      "plain",
		HeaderRow: stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		DataRow:   stable.RowStyle{Begin: "", Sep: "  ", End: ""},
		Padding:   "",
	}
	columns := []stable.Column{
		{Header: "metric"},
		{Header: "value", Align: stable.AlignRight},
	}
	tbl := stable.New()
	tbl.HeaderWithFormat(columns)

	var totalBases int
	for _, c := range result.Contigs {
		totalBases += c.Len()
	}

	tbl.AddRow([]interface{}{"contig file", contigOut})
	tbl.AddRow([]interface{}{"contigs", humanize.Comma(int64(len(result.Contigs)))})
	tbl.AddRow([]interface{}{"contig bases", humanize.Comma(int64(totalBases))})
	if result.Index != nil {
		tbl.AddRow([]interface{}{"indexed k-mers", humanize.Comma(int64(result.Index.NumKeys()))})
	}
	tbl.AddRow([]interface{}{"read/contig alignments", humanize.Comma(int64(len(result.Alignments)))})

	fmt.Print(string(tbl.Render(style)))
}

func init() {
	RootCmd.AddCommand(assembleCmd)

	assembleCmd.Flags().IntP("assemble-k", "k", 25, "k-mer size for Bloom filter / contig extension")
	assembleCmd.Flags().IntP("align-k", "K", 12, "k-mer size for seeding read/contig alignment")
	assembleCmd.Flags().Uint32P("min-count", "c", 2, "minimum read multiplicity to start a new contig")
	assembleCmd.Flags().StringP("contig-out", "o", "contig.fa", "contig FASTA output path")
	assembleCmd.Flags().Bool("quick", false, "skip indexing and aligning reads, just assemble contigs")
	assembleCmd.Flags().Bool("auto-bloom-size", true, "estimate distinct k-mer count via ntHash to size the Bloom filter")
	assembleCmd.Flags().Uint64("bloom-cells", 0, "fixed Bloom filter cell count (0: auto-size if --auto-bloom-size, else the default size)")
	assembleCmd.Flags().IntP("bloom-hashes", "H", 8, "number of Bloom filter hash functions")
}
