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

package dist

import "testing"

// fixtureCoder is Subbotin's carryless byte-oriented range coder, used
// only to validate Dist/CondDist round-trips in these tests. Both the
// encoding and decoding instance track low/range in lock-step (Go's
// uint32 arithmetic wraps exactly like unsigned overflow in C), which is
// what lets the renormalization condition agree on both sides without
// ever propagating a carry into already emitted bytes.
type fixtureCoder struct {
	low, rng uint32
	decoding bool

	out []byte

	in   []byte
	pos  int
	code uint32
}

const (
	coderTop = uint32(1) << 24
	coderBot = uint32(1) << 16
)

func newEncodeCoder() *fixtureCoder {
	return &fixtureCoder{rng: 0xffffffff}
}

func newDecodeCoder(data []byte) *fixtureCoder {
	c := &fixtureCoder{rng: 0xffffffff, in: data, decoding: true}
	for i := 0; i < 4; i++ {
		c.code = (c.code << 8) | uint32(c.nextByte())
	}
	return c
}

func (c *fixtureCoder) nextByte() byte {
	if c.pos < len(c.in) {
		b := c.in[c.pos]
		c.pos++
		return b
	}
	return 0
}

// Encode narrows [low, low+range) to the sub-interval for [lowFreq,
// highFreq) out of total, exactly as the real coder's narrow step would
// for either an encode or a just-resolved decode.
func (c *fixtureCoder) Encode(lowFreq, highFreq, total uint32) {
	r := c.rng / total
	c.low += lowFreq * r
	if c.decoding {
		c.code -= lowFreq * r
	}
	c.rng = r * (highFreq - lowFreq)
	c.renormalize()
}

func (c *fixtureCoder) renormalize() {
	for (c.low^(c.low+c.rng)) < coderTop || (c.rng < coderBot && func() bool {
		c.rng = -c.low & (coderBot - 1)
		return true
	}()) {
		if c.decoding {
			c.code = (c.code << 8) | uint32(c.nextByte())
		} else {
			c.out = append(c.out, byte(c.low>>24))
		}
		c.rng <<= 8
		c.low <<= 8
	}
}

func (c *fixtureCoder) finish() []byte {
	for i := 0; i < 4; i++ {
		c.out = append(c.out, byte(c.low>>24))
		c.low <<= 8
	}
	return c.out
}

// DecodeTarget reports the coder-range index the caller should resolve to
// a symbol; it does not mutate state (the resolving Encode call does).
func (c *fixtureCoder) DecodeTarget(total uint32) uint32 {
	r := c.rng / total
	t := c.code / r
	if t >= total {
		t = total - 1
	}
	return t
}

func TestDistFreqsSumAndFloor(t *testing.T) {
	d := New(4, false)
	for i := 0; i < 5000; i++ {
		d.Encode(discardCoder{}, i%4)
	}
	if got, want := d.FreqSum(), uint32(1<<distLengthShift); got != want {
		t.Fatalf("FreqSum() = %d, want %d", got, want)
	}
	for s := 0; s < d.N(); s++ {
		if d.Freq(s) < 1 {
			t.Fatalf("Freq(%d) = %d, want >= 1", s, d.Freq(s))
		}
	}
}

// discardCoder narrows nothing; it only exercises Dist's own bookkeeping
// (counts/freqs/update), not a real bitstream.
type discardCoder struct{}

func (discardCoder) Encode(lowFreq, highFreq, total uint32) {}
func (discardCoder) DecodeTarget(total uint32) uint32       { return 0 }

func TestDistEncodeDecodeRoundTrip(t *testing.T) {
	enc := New(4, false)
	symbols := make([]int, 0, 10000)
	for i := 0; i < 10000; i++ {
		symbols = append(symbols, i%4)
	}

	ec := newEncodeCoder()
	for _, s := range symbols {
		enc.Encode(ec, s)
	}
	stream := ec.finish()

	dec := New(4, true)
	dc := newDecodeCoder(stream)
	for i, want := range symbols {
		got := dec.Decode(dc)
		if got != want {
			t.Fatalf("symbol %d: decoded %d, want %d", i, got, want)
		}
	}
}

func TestCondDistReorderIsObservationallyIdempotent(t *testing.T) {
	cd := NewCondDist(4, 4, false)
	for i := 0; i < 100; i++ {
		cd.Encode(discardCoder{}, uint32(i%4), i%4)
	}

	before := make([]uint32, cd.N())
	for y := range before {
		before[y] = cd.distFor(uint32(y)).FreqSum()
	}

	cd.Reorder()

	for y := range before {
		if got := cd.distFor(uint32(y)).FreqSum(); got != before[y] {
			t.Fatalf("context %d: FreqSum after Reorder = %d, want %d", y, got, before[y])
		}
	}

	// index and ord must remain mutual inverses.
	for y := 0; y < cd.N(); y++ {
		if cd.ord[cd.index[y]] != uint32(y) {
			t.Fatalf("index/ord not mutually inverse at context %d", y)
		}
	}
}
