package bitstream

import "fmt"

// Selector is the 2-bit through-edge code stored after the split bit of a
// tetrahedron. Edge0..Edge2 name one of the three pairs of opposite edges,
// Undefined means every edge is split.
type Selector uint8

const (
	Edge0 Selector = iota
	Edge1
	Edge2
	Undefined
)

// SelectorBits is the encoded width of a Selector
const SelectorBits = 2

func (s Selector) String() string {
	switch s {
	case Edge0, Edge1, Edge2:
		return fmt.Sprintf("edge%d", int(s))
	case Undefined:
		return "all"
	}
	return fmt.Sprintf("Selector(%d)", int(s))
}

const wordBits = 64

// Stream is an append-only sequence of bits packed into 64 bit words.
// Bit i lives in words[i/64] at position i%64 (least significant first).
type Stream struct {
	words []uint64
	n     int // number of valid bits
}

// NewStream returns an empty stream with room for capacity bits
func NewStream(capacity int) *Stream {
	return &Stream{words: make([]uint64, 0, (capacity+wordBits-1)/wordBits)}
}

// Len returns the number of encoded bits
func (s *Stream) Len() int { return s.n }

// Cap returns the number of bits the stream can hold without reallocating
func (s *Stream) Cap() int { return cap(s.words) * wordBits }

// AppendBit writes one bit at the end of the stream
func (s *Stream) AppendBit(b bool) {
	w := s.n / wordBits
	if w == len(s.words) {
		s.words = append(s.words, 0)
	}
	if b {
		s.words[w] |= 1 << uint(s.n%wordBits)
	}
	s.n++
}

// AppendSelector writes the two bits of sel, high bit first
func (s *Stream) AppendSelector(sel Selector) {
	s.AppendBit(sel&2 != 0)
	s.AppendBit(sel&1 != 0)
}

// Truncate drops every bit at position n and beyond
func (s *Stream) Truncate(n int) {
	if n < 0 || n > s.n {
		panic(fmt.Sprintf("bitstream: truncate to %d outside [0,%d]", n, s.n))
	}
	s.n = n
	nw := (n + wordBits - 1) / wordBits
	s.words = s.words[:nw]
	if r := n % wordBits; r != 0 {
		s.words[nw-1] &= (1 << uint(r)) - 1
	}
}

// Compact reallocates the backing storage to the exact encoded length
func (s *Stream) Compact() {
	nw := (s.n + wordBits - 1) / wordBits
	if cap(s.words) == nw {
		return
	}
	words := make([]uint64, nw)
	copy(words, s.words)
	s.words = words
}

// Bit returns the bit stored at position i
func (s *Stream) Bit(i int) bool {
	return s.words[i/wordBits]&(1<<uint(i%wordBits)) != 0
}

// Clone returns an independent copy of the stream
func (s *Stream) Clone() *Stream {
	words := make([]uint64, len(s.words))
	copy(words, s.words)
	return &Stream{words: words, n: s.n}
}

// Reader decodes a Stream front to back
type Reader struct {
	s   *Stream
	pos int
}

// NewReader returns a reader positioned on the first bit of s
func NewReader(s *Stream) *Reader {
	return &Reader{s: s}
}

// Reset moves the reader back to the first bit
func (r *Reader) Reset() { r.pos = 0 }

// Pos returns the position of the next bit to read
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bits
func (r *Reader) Remaining() int { return r.s.n - r.pos }

// ReadBit consumes one bit
func (r *Reader) ReadBit() bool {
	if r.pos >= r.s.n {
		panic(fmt.Sprintf("bitstream: read past end of %d bit stream", r.s.n))
	}
	b := r.s.Bit(r.pos)
	r.pos++
	return b
}

// ReadSelector consumes a 2-bit Selector
func (r *Reader) ReadSelector() Selector {
	var sel Selector
	if r.ReadBit() {
		sel |= 2
	}
	if r.ReadBit() {
		sel |= 1
	}
	return sel
}

// ZerosAhead reports whether the next n unread bits are all zero without
// consuming them. Fewer than n remaining bits reports false.
func (r *Reader) ZerosAhead(n int) bool {
	if r.pos+n > r.s.n {
		return false
	}
	for i := r.pos; i < r.pos+n; {
		w, off := i/wordBits, i%wordBits
		span := wordBits - off
		if rem := r.pos + n - i; rem < span {
			span = rem
		}
		mask := ^uint64(0)
		if span < wordBits {
			mask = (1 << uint(span)) - 1
		}
		if (r.s.words[w]>>uint(off))&mask != 0 {
			return false
		}
		i += span
	}
	return true
}
