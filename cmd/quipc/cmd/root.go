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
	"os"
	"runtime"

	"github.com/shenwei356/go-logging"
	"github.com/spf13/cobra"
)

// VERSION is the CLI's release version.
const VERSION = "0.1.0"

var log = logging.MustGetLogger("quipc")

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "quipc",
	Short: "reference-free read compressor core",
	Long: fmt.Sprintf(`quipc - reference-free read compressor core

Assembles a pile of reads into contigs with a greedy, abundance-ordered
de Bruijn walk, then aligns the reads back against what it built so a
downstream entropy coder can encode each read as a reference plus a
small residual instead of raw bases.

Version: %s
`, VERSION),
}

// Execute adds all child commands to RootCmd and runs it. Called once
// from main.main.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	defaultThreads := runtime.NumCPU()
	if defaultThreads > 2 {
		defaultThreads = 2
	}
	RootCmd.PersistentFlags().IntP("threads", "j", defaultThreads, "number of CPUs to use")
	RootCmd.PersistentFlags().BoolP("verbose", "", false, "print verbose progress information")
}

// checkError prints a fatal error and exits. It's the CLI's last line of
// defense: anything reaching here is unrecoverable for the current run.
func checkError(err error) {
	if err == nil {
		return
	}
	log.Errorf("%s", err)
	os.Exit(1)
}

func getFlagBool(cmd *cobra.Command, flag string) bool {
	v, err := cmd.Flags().GetBool(flag)
	checkError(err)
	return v
}

func getFlagInt(cmd *cobra.Command, flag string) int {
	v, err := cmd.Flags().GetInt(flag)
	checkError(err)
	return v
}

func getFlagPositiveInt(cmd *cobra.Command, flag string) int {
	v := getFlagInt(cmd, flag)
	if v <= 0 {
		checkError(fmt.Errorf("value of flag --%s should be positive: %d", flag, v))
	}
	return v
}

func getFlagString(cmd *cobra.Command, flag string) string {
	v, err := cmd.Flags().GetString(flag)
	checkError(err)
	return v
}

func getFlagUint32(cmd *cobra.Command, flag string) uint32 {
	v, err := cmd.Flags().GetUint32(flag)
	checkError(err)
	return v
}

func getFlagUint64(cmd *cobra.Command, flag string) uint64 {
	v, err := cmd.Flags().GetUint64(flag)
	checkError(err)
	return v
}
