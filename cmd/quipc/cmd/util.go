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

	homedir "github.com/mitchellh/go-homedir"
	"github.com/shenwei356/breader"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"
)

// Options holds the global flags shared by every subcommand.
type Options struct {
	NumCPUs int
	Verbose bool
}

func getOptions(cmd *cobra.Command) *Options {
	return &Options{
		NumCPUs: getFlagPositiveInt(cmd, "threads"),
		Verbose: getFlagBool(cmd, "verbose"),
	}
}

// getFileList resolves the positional file arguments, expanding a
// leading "~" via go-homedir and treating a lone "-" as stdin. It exits
// the process (via checkError) if args is empty.
func getFileList(args []string) []string {
	if len(args) == 0 {
		checkError(fmt.Errorf("no input files given"))
	}
	files := make([]string, len(args))
	for i, f := range args {
		if f == "-" {
			files[i] = f
			continue
		}
		expanded, err := homedir.Expand(f)
		checkError(err)
		files[i] = expanded
	}
	return files
}

// checkFiles verifies every file (other than "-") exists on disk,
// following symlinks, before the caller opens any of them.
func checkFiles(files ...string) {
	for _, file := range files {
		if file == "-" {
			continue
		}
		ok, err := pathutil.Exists(file)
		if err != nil {
			checkError(fmt.Errorf("checking file %q: %w", file, err))
		}
		if !ok {
			checkError(fmt.Errorf("file does not exist: %s", file))
		}
	}
}

// getListFromFile reads one path per line from a file-of-files listing
// using breader's buffered, chunked line reader, skipping blank lines.
func getListFromFile(path string) ([]string, error) {
	reader, err := breader.NewDefaultBufferedReader(path)
	if err != nil {
		return nil, err
	}
	var files []string
	for chunk := range reader.Ch {
		if chunk.Err != nil {
			return nil, chunk.Err
		}
		for _, data := range chunk.Data {
			line := data.(string)
			if line == "" {
				continue
			}
			files = append(files, line)
		}
	}
	return files, nil
}
