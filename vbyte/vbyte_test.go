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

package vbyte

import (
	"math/rand"
	"testing"
)

func TestCountOneTakesNoPayload(t *testing.T) {
	buf := make([]byte, 16)
	ctrl, n := PutPair(buf, 150, 1)
	if n != 1 {
		t.Fatalf("count==1 wrote %d payload bytes, want 1 (length only)", n)
	}
	n1, n2 := PairByteLengths(ctrl)
	if n1 != 1 || n2 != 0 {
		t.Fatalf("PairByteLengths = (%d, %d), want (1, 0)", n1, n2)
	}
	length, count, n := Pair(ctrl, buf[:1])
	if n != 1 || length != 150 || count != 1 {
		t.Fatalf("Pair = (%d, %d, %d), want (150, 1, 1)", length, count, n)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := [][2]uint64{
		{0, 0},
		{0, 1},
		{36, 1}, // the common case: one short read seen once
		{255, 255},
		{256, 2},
		{65535, 1},
		{65536, 4294967295},
		{1 << 40, 1 << 40},
		{^uint64(0), ^uint64(0)},
	}

	for _, c := range cases {
		buf := make([]byte, 16)
		ctrl, n := PutPair(buf, c[0], c[1])

		length, count, n2 := Pair(ctrl, buf[:n])
		if n2 != n {
			t.Errorf("(%d, %d): consumed %d bytes, wrote %d", c[0], c[1], n2, n)
		}
		if length != c[0] || count != c[1] {
			t.Errorf("(%d, %d): decoded (%d, %d)", c[0], c[1], length, count)
		}
	}
}

func TestRoundTripRandom(t *testing.T) {
	ntests := 10000
	for i := 0; i < ntests; i++ {
		var length, count uint64
		switch i % 4 {
		case 0:
			length, count = rand.Uint64(), rand.Uint64()
		case 1:
			length, count = uint64(rand.Uint32()), uint64(rand.Uint32())
		case 2:
			length, count = uint64(rand.Intn(65536)), uint64(rand.Intn(256))
		default:
			length, count = uint64(rand.Intn(512)), 1
		}

		buf := make([]byte, 16)
		ctrl, n := PutPair(buf, length, count)

		got1, got2, n2 := Pair(ctrl, buf[:n])
		if n2 != n || got1 != length || got2 != count {
			t.Fatalf("#%d: (%d, %d) -> (%d, %d), consumed %d of %d bytes",
				i, length, count, got1, got2, n2, n)
		}
	}
}

func TestPairRejectsShortBuffer(t *testing.T) {
	buf := make([]byte, 16)
	ctrl, n := PutPair(buf, 65536, 9)
	if _, _, got := Pair(ctrl, buf[:n-1]); got != 0 {
		t.Fatalf("Pair on a truncated buffer consumed %d bytes, want 0", got)
	}
}
