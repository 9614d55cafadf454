package bitm

import "fmt"

// SelectPolicy selects between the two select acceleration strategies a
// BitArray can be built with. Both answer the same queries; they differ
// only in the space/time tradeoff of their auxiliary structures.
type SelectPolicy int

const (
	// SelectPolicyBinarySearch uses no extra memory beyond the rank
	// directory: select bisects the L2 array directly.
	SelectPolicyBinarySearch SelectPolicy = iota
	// SelectPolicyCombinedSampling adds a small hint table (one entry per
	// selectSampleRate occurrences) that narrows the bisection range.
	SelectPolicyCombinedSampling
)

// Rank answers prefix-counting queries over some index domain. BitArray
// implements it over bit positions; cseq.EFSequence implements it over the
// value domain of a monotone sequence.
type Rank interface {
	TryRank(i int) (int, bool)
	Rank(i int) int
	RankUnchecked(i int) int
}

// Select answers "position of the k-th occurrence" queries, the inverse of
// Rank.
type Select interface {
	TrySelect(k int) (int, bool)
	Select(k int) int
	SelectUnchecked(k int) int
}

// BitArray is a succinct bit vector supporting O(1) rank and O(log n) (or
// better, with CombinedSampling) select over both ones and zeros. It is
// built once from a caller-supplied slice of words and a bit length, and is
// immutable and safe for concurrent reads for its entire lifetime.
type BitArray struct {
	words []uint64
	n     int

	l1   []uint64
	l2   []uint64
	ones int

	selOne  selector
	selZero selector
}

// NewBitArray builds a BitArray over the first n bits of words (len(words)
// must be at least WordsForBits(n)) using the given select policy.
func NewBitArray(words []uint64, n int, policy SelectPolicy) *BitArray {
	l1, l2, ones := buildRankDirectory(words)
	ba := &BitArray{words: words, n: n, l1: l1, l2: l2, ones: ones}
	switch policy {
	case SelectPolicyCombinedSampling:
		ba.selOne = newSampledSelect(ba, false)
		ba.selZero = newSampledSelect(ba, true)
	default:
		ba.selOne = newBinarySelect(ba, false)
		ba.selZero = newBinarySelect(ba, true)
	}
	return ba
}

// Len returns the number of bits in the array.
func (b *BitArray) Len() int { return b.n }

// IsEmpty reports whether the array has zero bits.
func (b *BitArray) IsEmpty() bool { return b.n == 0 }

// Ones returns the total number of set bits.
func (b *BitArray) Ones() int { return b.ones }

// Zeros returns the total number of clear bits.
func (b *BitArray) Zeros() int { return b.n - b.ones }

// Words exposes the backing storage for consumers (cseq's Elias-Fano hi
// array and wavelet matrix levels) that need word-level access beyond
// Rank/Select, such as FindBitOne/RFindBitOne-based cursor walks.
func (b *BitArray) Words() []uint64 { return b.words }

// Get returns the i-th bit.
func (b *BitArray) Get(i int) bool {
	if i < 0 || i >= b.n {
		panic(fmt.Sprintf("bitm: Get: index %d out of range [0,%d)", i, b.n))
	}
	return GetBit(b.words, i)
}

// SizeBytes returns the approximate memory footprint of the array,
// including its rank directory and whichever select samples it holds.
func (b *BitArray) SizeBytes() int {
	size := len(b.words)*8 + len(b.l1)*8 + len(b.l2)*8
	if s, ok := b.selOne.(*sampledSelect); ok {
		size += len(s.samples) * 4
	}
	if s, ok := b.selZero.(*sampledSelect); ok {
		size += len(s.samples) * 4
	}
	return size
}

// TryRank returns the number of one-bits in [0,i), or (0,false) if i is out
// of [0,n). Note the upper bound is exclusive: rank addresses a bit
// position, and n itself names no bit. Callers that want the grand total
// use Ones()/Zeros() instead of rank at the array's length.
func (b *BitArray) TryRank(i int) (int, bool) {
	if i < 0 || i >= b.n {
		return 0, false
	}
	return b.rankAtBounded(i), true
}

// Rank is TryRank but panics on an out-of-range index.
func (b *BitArray) Rank(i int) int {
	r, ok := b.TryRank(i)
	if !ok {
		panic(fmt.Sprintf("bitm: Rank: index %d out of range [0,%d)", i, b.n))
	}
	return r
}

// RankUnchecked skips the bounds check entirely; the caller must guarantee
// 0 <= i <= n.
func (b *BitArray) RankUnchecked(i int) int {
	return b.rankAtBounded(i)
}

// TryRank0 is TryRank for zero-bits.
func (b *BitArray) TryRank0(i int) (int, bool) {
	r, ok := b.TryRank(i)
	if !ok {
		return 0, false
	}
	return i - r, true
}

// Rank0 is Rank for zero-bits.
func (b *BitArray) Rank0(i int) int {
	return i - b.Rank(i)
}

// Rank0Unchecked is RankUnchecked for zero-bits.
func (b *BitArray) Rank0Unchecked(i int) int {
	return i - b.RankUnchecked(i)
}

// rankAtBounded handles the i==n edge case (which would otherwise read one
// word past the end whenever n is word-aligned) before delegating to the
// branch-free directory walk.
func (b *BitArray) rankAtBounded(i int) int {
	if i == b.n {
		return b.ones
	}
	return rankAt(b.words, b.l1, b.l2, i)
}

// TrySelect returns the position of the k-th one-bit (0-indexed), or
// (0,false) if there is no such bit.
func (b *BitArray) TrySelect(k int) (int, bool) {
	return b.selOne.selectKth(k)
}

// Select is TrySelect but panics if k is out of range.
func (b *BitArray) Select(k int) int {
	p, ok := b.TrySelect(k)
	if !ok {
		panic(fmt.Sprintf("bitm: Select: no %d-th one bit (array has %d)", k, b.ones))
	}
	return p
}

// SelectUnchecked skips the range check; the caller must guarantee
// 0 <= k < Ones().
func (b *BitArray) SelectUnchecked(k int) int {
	p, _ := b.selOne.selectKth(k)
	return p
}

// TrySelect0 is TrySelect for zero-bits.
func (b *BitArray) TrySelect0(k int) (int, bool) {
	return b.selZero.selectKth(k)
}

// Select0 is Select for zero-bits.
func (b *BitArray) Select0(k int) int {
	p, ok := b.TrySelect0(k)
	if !ok {
		panic(fmt.Sprintf("bitm: Select0: no %d-th zero bit (array has %d)", k, b.n-b.ones))
	}
	return p
}

// Select0Unchecked is SelectUnchecked for zero-bits.
func (b *BitArray) Select0Unchecked(k int) int {
	p, _ := b.selZero.selectKth(k)
	return p
}
