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

package bloom

import "testing"

func TestAddThenGet(t *testing.T) {
	f := New(1024, 4)
	f.Add(12345, 3)
	if got := f.Get(12345); got < 3 {
		t.Fatalf("Get() = %d, want >= 3 (collisions may only inflate)", got)
	}
}

func TestGetUnseenIsZero(t *testing.T) {
	f := New(1 << 16, 4)
	if got := f.Get(999); got != 0 {
		t.Fatalf("Get() on unseen key = %d, want 0", got)
	}
}

func TestDelClearsToZero(t *testing.T) {
	f := New(1024, 3)
	f.Add(42, 10)
	f.Del(42)
	if got := f.Get(42); got != 0 {
		t.Fatalf("Get() after Del = %d, want 0", got)
	}
}

func TestDelOnAbsentKeyIsNoop(t *testing.T) {
	f := New(1024, 3)
	f.Del(7) // must not panic on a key that was never added
	if got := f.Get(7); got != 0 {
		t.Fatalf("Get() = %d, want 0", got)
	}
}

func TestAddSaturates(t *testing.T) {
	f := New(64, 2)
	for i := 0; i < 100; i++ {
		f.Add(5, 1)
	}
	if got := f.Get(5); got != cellMax {
		t.Fatalf("Get() after repeated adds = %d, want saturating ceiling %d", got, cellMax)
	}
}

func TestRoundsUpToPowerOfTwo(t *testing.T) {
	f := New(100, 1)
	if f.m&(f.m-1) != 0 {
		t.Fatalf("m = %d, want a power of two", f.m)
	}
	if f.m < 100 {
		t.Fatalf("m = %d, want >= 100", f.m)
	}
}
