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

package contigio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	pgzip "github.com/klauspost/pgzip"

	"github.com/kdna-bio/quipcore/twobit"
	"github.com/kdna-bio/quipcore/vbyte"
)

// MainVersion is the dump format's main version.
const MainVersion uint8 = 1

// MinorVersion is the dump format's minor version.
const MinorVersion uint8 = 0

// Magic identifies a quipcore binary TwoBit/SeqSet dump file.
var Magic = [8]byte{'.', 'q', 'u', 'i', 'p', 'd', 'u', 'm'}

// ErrInvalidFileFormat means the magic number didn't match.
var ErrInvalidFileFormat = errors.New("contigio: invalid dump file format")

// ErrVersionMismatch means the file's main version isn't supported by
// this reader.
var ErrVersionMismatch = errors.New("contigio: dump format version mismatch")

var be = binary.BigEndian

// DumpHeader carries the metadata written at the front of a dump file.
type DumpHeader struct {
	MainVersion  uint8
	MinorVersion uint8
	Gzipped      bool
}

func (h DumpHeader) String() string {
	return fmt.Sprintf("quipcore binary dump v%d.%d (gzip=%v)", h.MainVersion, h.MinorVersion, h.Gzipped)
}

// DumpWriter serializes (TwoBit, count) pairs -- e.g. a SeqSet.Dump() or
// a contig list with a synthetic count of 1 -- to a binary stream, with
// each entry's (sequence length, count) pair vbyte-encoded ahead of the
// sequence itself, written as one ASCII nucleotide byte per base. The body is optionally gzip-compressed with
// pgzip, which parallelizes compression across blocks; snapshot files
// are large and written once. Reading back goes through the plain
// (non-parallel) klauspost gzip reader, which decodes the same stream.
type DumpWriter struct {
	DumpHeader
	w           io.Writer
	gz          *pgzip.Writer
	body        io.Writer
	wroteHeader bool
	err         error
	scratch     []byte
}

// NewDumpWriter creates a DumpWriter. If gzipped, the body (not the
// header) is gzip-compressed.
func NewDumpWriter(w io.Writer, gzipped bool) *DumpWriter {
	return &DumpWriter{
		DumpHeader: DumpHeader{MainVersion: MainVersion, MinorVersion: MinorVersion, Gzipped: gzipped},
		w:          w,
		scratch:    make([]byte, 16),
	}
}

func (dw *DumpWriter) writeHeader() error {
	if dw.err = binary.Write(dw.w, be, Magic); dw.err != nil {
		return dw.err
	}
	flag := uint8(0)
	if dw.Gzipped {
		flag = 1
	}
	if dw.err = binary.Write(dw.w, be, [3]uint8{dw.MainVersion, dw.MinorVersion, flag}); dw.err != nil {
		return dw.err
	}
	if dw.Gzipped {
		dw.gz = pgzip.NewWriter(dw.w)
		dw.body = dw.gz
	} else {
		dw.body = dw.w
	}
	return nil
}

// WriteEntry appends one (seq, count) pair.
func (dw *DumpWriter) WriteEntry(seq *twobit.TwoBit, count uint32) error {
	if dw.err != nil {
		return dw.err
	}
	if !dw.wroteHeader {
		if dw.err = dw.writeHeader(); dw.err != nil {
			return dw.err
		}
		dw.wroteHeader = true
	}

	ctrl, n := vbyte.PutPair(dw.scratch, uint64(seq.Len()), uint64(count))
	if _, dw.err = dw.body.Write([]byte{ctrl}); dw.err != nil {
		return dw.err
	}
	if _, dw.err = dw.body.Write(dw.scratch[:n]); dw.err != nil {
		return dw.err
	}
	if _, dw.err = dw.body.Write(seq.Bytes()); dw.err != nil {
		return dw.err
	}
	return nil
}

// Flush completes the stream: if gzipped, closes the gzip writer so its
// trailer is emitted, which the reader's gzip decoder checks at end of
// stream. An uncompressed body has no trailer and Flush writes nothing
// for it, so a reader cannot tell a stream cut at an entry boundary from
// a complete one.
func (dw *DumpWriter) Flush() error {
	if dw.err != nil {
		return dw.err
	}
	if dw.gz != nil {
		return dw.gz.Close()
	}
	return nil
}

// DumpReader deserializes a stream written by DumpWriter.
type DumpReader struct {
	DumpHeader
	r    io.Reader
	gz   *gzip.Reader
	body io.Reader
	err  error
}

// NewDumpReader opens r and reads the header, auto-detecting gzip body
// compression from the header's flag byte.
func NewDumpReader(r io.Reader) (*DumpReader, error) {
	dr := &DumpReader{r: r}
	if dr.err = dr.readHeader(); dr.err != nil {
		return nil, dr.err
	}
	return dr, nil
}

func (dr *DumpReader) readHeader() error {
	var m [8]byte
	if err := binary.Read(dr.r, be, &m); err != nil {
		return err
	}
	if m != Magic {
		return ErrInvalidFileFormat
	}

	var meta [3]uint8
	if err := binary.Read(dr.r, be, &meta); err != nil {
		return err
	}
	if meta[0] != MainVersion {
		return ErrVersionMismatch
	}
	dr.MainVersion, dr.MinorVersion = meta[0], meta[1]
	dr.Gzipped = meta[2] != 0

	if dr.Gzipped {
		gz, err := gzip.NewReader(dr.r)
		if err != nil {
			return err
		}
		dr.gz = gz
		dr.body = gz
	} else {
		dr.body = dr.r
	}
	return nil
}

// ReadEntry reads the next (seq, count) pair, returning io.EOF when the
// stream is exhausted.
func (dr *DumpReader) ReadEntry() (*twobit.TwoBit, uint32, error) {
	if dr.err != nil {
		return nil, 0, dr.err
	}

	var ctrlBuf [1]byte
	if _, err := io.ReadFull(dr.body, ctrlBuf[:]); err != nil {
		return nil, 0, err
	}
	n1, n2 := vbyte.PairByteLengths(ctrlBuf[0])
	pairBuf := make([]byte, n1+n2)
	if _, err := io.ReadFull(dr.body, pairBuf); err != nil {
		dr.err = err
		return nil, 0, err
	}
	length, count64, n := vbyte.Pair(ctrlBuf[0], pairBuf)
	if n == 0 {
		dr.err = errors.New("contigio: corrupt entry length/count pair")
		return nil, 0, dr.err
	}
	count := uint32(count64)

	buf := make([]byte, length)
	if _, dr.err = io.ReadFull(dr.body, buf); dr.err != nil {
		return nil, 0, dr.err
	}

	return twobit.New(buf), count, nil
}
