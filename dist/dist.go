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

// Package dist implements the adaptive probability models that feed an
// arithmetic coder's bitstream: a fixed-alphabet Dist and its
// context-indexed family, CondDist.
//
// A C implementation typically expands one template at several fixed
// alphabet sizes by textual substitution. Go has no const-generic array
// lengths, so this is ported as a runtime field N on Dist instead -- see
// DESIGN.md's Open Question entry.
package dist

// Coder is the narrow interface this package needs from an arithmetic
// coder's bitstream: narrowing the current range to [lowFreq, highFreq)
// out of total, and reading the target value to decode against.
type Coder interface {
	Encode(lowFreq, highFreq, total uint32)
	DecodeTarget(total uint32) uint32
}

const (
	// distLengthShift fixes Sigma(freq) == 2^distLengthShift exactly.
	distLengthShift = 15
	// maxCount halves every count once their sum reaches this ceiling.
	maxCount = 1 << 15
	// updateDelayFactor scales the observation count between rescales.
	updateDelayFactor = 1
)

type symbol struct {
	count uint16
	freq  uint16
}

// Dist is a discrete probability distribution over the alphabet [0, n).
type Dist struct {
	n           int
	xs          []symbol
	useCount    uint32
	updateDelay uint32

	// dec is the decoder lookup table mapping a coder target, shifted
	// right by decShift, to a symbol known not to exceed the match --
	// nil unless the Dist was built with decode=true.
	dec      []uint16
	decShift uint32
}

// decParams computes dec_bits/dec_size/dec_shift as a deterministic
// function of n: dec_bits = max(3, ceil(log2(n)) - 2).
func decParams(n int) (decBits, decSize int) {
	bits := 3
	for n > (1 << uint(bits+2)) {
		bits++
	}
	return bits, (1 << uint(bits)) + 4
}

// New allocates a Dist over alphabet size n. If decode is true, a decoder
// lookup table is built alongside the counts.
func New(n int, decode bool) *Dist {
	d := &Dist{n: n, xs: make([]symbol, n)}
	d.reset()
	if decode {
		decBits, decSize := decParams(n)
		d.dec = make([]uint16, decSize)
		d.decShift = uint32(distLengthShift - decBits)
		d.rebuildDecodeTable()
	}
	return d
}

func (d *Dist) reset() {
	initFreq := uint16((1 << distLengthShift) / d.n)
	for i := range d.xs {
		d.xs[i] = symbol{count: initFreq, freq: initFreq}
	}
	// Make counts and freqs sum exactly to 2^distLengthShift: give the
	// remainder to the last symbol.
	rem := uint16((1 << distLengthShift) - int(initFreq)*d.n)
	d.xs[d.n-1].count += rem
	d.xs[d.n-1].freq += rem
	d.useCount = 0
	d.updateDelay = uint32(d.n * updateDelayFactor)
}

// N returns the alphabet size.
func (d *Dist) N() int { return d.n }

func (d *Dist) cumFreq(s int) uint32 {
	var c uint32
	for i := 0; i < s; i++ {
		c += uint32(d.xs[i].freq)
	}
	return c
}

// Encode narrows coder's range to symbol s's cumulative interval and
// records the observation.
func (d *Dist) Encode(coder Coder, s int) {
	low := d.cumFreq(s)
	high := low + uint32(d.xs[s].freq)
	coder.Encode(low, high, 1<<distLengthShift)
	d.observe(s)
}

// Decode reads coder's target and resolves it to a symbol, using the
// decode lookup table (if built) to skip the linear scan's common case.
func (d *Dist) Decode(coder Coder) int {
	target := coder.DecodeTarget(1 << distLengthShift)

	s := 0
	var low uint32
	if d.dec != nil {
		s = int(d.dec[target>>d.decShift])
		low = d.cumFreq(s)
	}
	for low+uint32(d.xs[s].freq) <= target {
		low += uint32(d.xs[s].freq)
		s++
	}

	high := low + uint32(d.xs[s].freq)
	coder.Encode(low, high, 1<<distLengthShift)
	d.observe(s)
	return s
}

func (d *Dist) observe(s int) {
	if d.xs[s].count < 0xffff {
		d.xs[s].count++
	}
	d.useCount++
	if d.updateDelay > 0 {
		d.updateDelay--
	}
	if d.updateDelay == 0 {
		d.update()
	}
}

// update rescales freqs from the accumulated counts: every
// freq is floor(count * 2^shift / total), floored at 1, with the
// remainder folded into the last symbol so the freqs sum exactly to
// 2^distLengthShift. Counts are halved (floor, minimum 1) once their sum
// reaches maxCount, and the update delay grows with use_count so updates
// get rarer as more observations accumulate.
func (d *Dist) update() {
	var total uint32
	for _, x := range d.xs {
		total += uint32(x.count)
	}

	if total == 0 {
		d.updateDelay = uint32(d.n*updateDelayFactor) * (1 + d.useCount)
		return
	}

	var sum uint32
	for i := range d.xs {
		f := uint32(d.xs[i].count) << distLengthShift / total
		if f < 1 {
			f = 1
		}
		d.xs[i].freq = uint16(f)
		sum += f
	}
	// Final adjustment: fold the rounding remainder into the last
	// symbol so Sigma(freq) == 2^distLengthShift exactly.
	last := d.n - 1
	adj := int64(1<<distLengthShift) - int64(sum)
	newLast := int64(d.xs[last].freq) + adj
	if newLast < 1 {
		newLast = 1
	}
	d.xs[last].freq = uint16(newLast)

	if total >= maxCount {
		for i := range d.xs {
			c := d.xs[i].count / 2
			if c < 1 {
				c = 1
			}
			d.xs[i].count = c
		}
	}

	if d.dec != nil {
		d.rebuildDecodeTable()
	}

	d.updateDelay = uint32(d.n*updateDelayFactor) * (1 + d.useCount)
}

// rebuildDecodeTable fills dec[] so that dec[t] is a symbol whose
// cumulative range starts at or before t<<decShift -- a safe starting
// point for Decode's linear scan.
func (d *Dist) rebuildDecodeTable() {
	var cum uint32
	s := 0
	for t := range d.dec {
		target := uint32(t) << d.decShift
		for s < d.n-1 && cum+uint32(d.xs[s].freq) <= target {
			cum += uint32(d.xs[s].freq)
			s++
		}
		d.dec[t] = uint16(s)
	}
}

// FreqSum returns the current sum of freqs -- exposed for invariant
// tests; it must always equal 2^distLengthShift.
func (d *Dist) FreqSum() uint32 {
	var sum uint32
	for _, x := range d.xs {
		sum += uint32(x.freq)
	}
	return sum
}

// Freq returns the current freq of symbol s.
func (d *Dist) Freq(s int) uint32 { return uint32(d.xs[s].freq) }
