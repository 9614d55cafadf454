package cseq

import (
	"fmt"

	"github.com/xflash-panda/succinct/pkg/bitm"
)

// levelBuilder accumulates one level of a WaveletMatrix build: it stages
// the level's own bit (upperBit) in input order, and stable-partitions the
// remaining, lower bits of each value into lowerBits — zeros first, then
// ones — for the next level to consume.
type levelBuilder struct {
	upperBit     []uint64
	upperIdx     int
	lowerBits    *bitm.PackedArray
	lowerZeroIdx int
	lowerOneIdx  int
	bitMask      uint64
}

func newLevelBuilder(numberOfZeros, totalLen int, bitIndex uint) *levelBuilder {
	return &levelBuilder{
		upperBit:    make([]uint64, bitm.WordsForBits(totalLen)),
		lowerBits:   bitm.NewPackedArray(totalLen, bitIndex),
		lowerOneIdx: numberOfZeros,
		bitMask:     uint64(1) << bitIndex,
	}
}

func (lb *levelBuilder) push(value uint64) {
	isOne := value&lb.bitMask != 0
	bitm.InitSuccessiveBit(lb.upperBit, &lb.upperIdx, isOne)
	lower := value & (lb.bitMask - 1)
	if isOne {
		lb.lowerBits.InitSuccessive(&lb.lowerOneIdx, lower)
	} else {
		lb.lowerBits.InitSuccessive(&lb.lowerZeroIdx, lower)
	}
}

type waveletLevel struct {
	bits  *bitm.BitArray
	zeros int
}

// WaveletMatrix stores a sequence of fixed-width symbols as a cascade of
// rank/select bit arrays, one per bit of symbol width, each a stable
// partition of the previous level by that level's bit. It supports
// constant-expected-time access, rank, and select over an arbitrary
// alphabet of b-bit symbols.
type WaveletMatrix struct {
	levels []waveletLevel
	len    int
}

func countZeroBits(get func(int) uint64, n, width int) []int {
	zeros := make([]int, width)
	for i := 0; i < n; i++ {
		v := ^get(i)
		for b := 0; b < width; b++ {
			if v&1 != 0 {
				zeros[b]++
			}
			v >>= 1
		}
	}
	return zeros
}

func newWaveletMatrix(get func(int) uint64, n, width int, policy bitm.SelectPolicy) *WaveletMatrix {
	if width <= 0 || width > 64 {
		panic(fmt.Sprintf("cseq: NewWaveletMatrix: width %d out of range [1,64]", width))
	}

	if width == 1 {
		words := make([]uint64, bitm.WordsForBits(n))
		for i := 0; i < n; i++ {
			bitm.InitBit(words, i, get(i) != 0)
		}
		ba := bitm.NewBitArray(words, n, policy)
		return &WaveletMatrix{levels: []waveletLevel{{bits: ba, zeros: ba.Zeros()}}, len: n}
	}

	zeros := countZeroBits(get, n, width)
	levels := make([]waveletLevel, 0, width)

	currentBit := width - 1
	lb := newLevelBuilder(zeros[currentBit], n, uint(currentBit))
	for i := 0; i < n; i++ {
		lb.push(get(i))
	}
	levels = append(levels, waveletLevel{bits: bitm.NewBitArray(lb.upperBit, n, policy), zeros: zeros[currentBit]})
	rest := lb.lowerBits

	for currentBit >= 2 {
		currentBit--
		nb := newLevelBuilder(zeros[currentBit], n, uint(currentBit))
		for i := 0; i < n; i++ {
			nb.push(rest.Get(i))
		}
		levels = append(levels, waveletLevel{bits: bitm.NewBitArray(nb.upperBit, n, policy), zeros: zeros[currentBit]})
		rest = nb.lowerBits
	}

	// rest now holds exactly 1 bit per value (the level-0 bit), already
	// stable-partitioned by every preceding level: it is itself a valid
	// bit array, with no further LevelBuilder pass required.
	levels = append(levels, waveletLevel{bits: bitm.NewBitArray(rest.Words(), n, policy), zeros: zeros[0]})
	return &WaveletMatrix{levels: levels, len: n}
}

// NewWaveletMatrixFromSymbols builds a WaveletMatrix from a materialized
// slice of symbols, each width bits wide, using CombinedSampling select
// acceleration.
func NewWaveletMatrixFromSymbols(symbols []uint64, width int) *WaveletMatrix {
	return NewWaveletMatrixFromSymbolsWithPolicy(symbols, width, bitm.SelectPolicyCombinedSampling)
}

// NewWaveletMatrixFromSymbolsWithPolicy is NewWaveletMatrixFromSymbols with
// an explicit select policy.
func NewWaveletMatrixFromSymbolsWithPolicy(symbols []uint64, width int, policy bitm.SelectPolicy) *WaveletMatrix {
	return newWaveletMatrix(func(i int) uint64 { return symbols[i] }, len(symbols), width, policy)
}

// NewWaveletMatrixFromPacked builds a WaveletMatrix from an already
// bit-packed buffer of fixed-width symbols.
func NewWaveletMatrixFromPacked(packed *bitm.PackedArray, policy bitm.SelectPolicy) *WaveletMatrix {
	return newWaveletMatrix(packed.Get, packed.Len(), int(packed.Width()), policy)
}

// Len returns the number of stored symbols.
func (w *WaveletMatrix) Len() int { return w.len }

// IsEmpty reports whether the matrix holds zero symbols.
func (w *WaveletMatrix) IsEmpty() bool { return w.len == 0 }

// Width returns the number of bits per symbol.
func (w *WaveletMatrix) Width() int { return len(w.levels) }

// SizeBytes returns the approximate memory footprint of the matrix.
func (w *WaveletMatrix) SizeBytes() int {
	size := 0
	for _, lvl := range w.levels {
		size += lvl.bits.SizeBytes()
	}
	return size
}

func (w *WaveletMatrix) bitOf(v uint64, level int) uint64 {
	return (v >> uint(len(w.levels)-1-level)) & 1
}

// levelRank/levelRank0 compute a level's rank at i via the unchecked
// directory walk: descend already validates its own [a,b] range once at the
// WaveletMatrix level (including i == the level's length, a valid endpoint
// for RankUnchecked/Rank0Unchecked though not for the bounds-checked
// Rank/Rank0), so each level's read skips re-checking bounds it already
// knows are good.
func levelRank(lvl waveletLevel, i int) int {
	return lvl.bits.RankUnchecked(i)
}

func levelRank0(lvl waveletLevel, i int) int {
	return lvl.bits.Rank0Unchecked(i)
}

// Get returns the symbol at index i, or (0,false) if i is out of range.
func (w *WaveletMatrix) Get(i int) (uint64, bool) {
	if i < 0 || i >= w.len {
		return 0, false
	}
	return w.GetUnchecked(i), true
}

// GetUnchecked is Get without a bounds check.
func (w *WaveletMatrix) GetUnchecked(i int) uint64 {
	var result uint64
	idx := i
	for _, lvl := range w.levels {
		result <<= 1
		if lvl.bits.Get(idx) {
			result |= 1
			idx = lvl.bits.RankUnchecked(idx) + lvl.zeros
		} else {
			idx = lvl.bits.Rank0Unchecked(idx)
		}
	}
	return result
}

// GetOrPanic is Get but panics if i is out of range.
func (w *WaveletMatrix) GetOrPanic(i int) uint64 {
	v, ok := w.Get(i)
	if !ok {
		panic(fmt.Sprintf("cseq: WaveletMatrix.GetOrPanic: index %d out of range [0,%d)", i, w.len))
	}
	return v
}

// descend walks the range [a,b) down through every level, following the
// branch indicated by v's bit at that level and returns the resulting
// range.
func (w *WaveletMatrix) descend(a, b int, v uint64) (int, int) {
	for t, lvl := range w.levels {
		if w.bitOf(v, t) == 1 {
			a = levelRank(lvl, a) + lvl.zeros
			b = levelRank(lvl, b) + lvl.zeros
		} else {
			a = levelRank0(lvl, a)
			b = levelRank0(lvl, b)
		}
	}
	return a, b
}

// RankUnchecked is TryRank without a bounds check; the caller must guarantee
// 0 <= i <= Len().
func (w *WaveletMatrix) RankUnchecked(i int, v uint64) int {
	a, b := w.descend(0, i, v)
	return b - a
}

// TryRank returns the number of occurrences of symbol v among the first i
// symbols, or (0,false) if i is out of [0,Len()].
func (w *WaveletMatrix) TryRank(i int, v uint64) (int, bool) {
	if i < 0 || i > w.len {
		return 0, false
	}
	return w.RankUnchecked(i, v), true
}

// Rank is TryRank but panics if i is out of range.
func (w *WaveletMatrix) Rank(i int, v uint64) int {
	r, ok := w.TryRank(i, v)
	if !ok {
		panic(fmt.Sprintf("cseq: WaveletMatrix.Rank: index %d out of range [0,%d]", i, w.len))
	}
	return r
}

// CountInRangeUnchecked is TryCountInRange without a range check; the
// caller must guarantee 0 <= from <= to <= Len().
func (w *WaveletMatrix) CountInRangeUnchecked(from, to int, v uint64) int {
	a, b := w.descend(from, to, v)
	return b - a
}

// TryCountInRange returns the number of occurrences of symbol v within
// [from,to), or (0,false) if the range is invalid.
func (w *WaveletMatrix) TryCountInRange(from, to int, v uint64) (int, bool) {
	if from < 0 || to > w.len || from > to {
		return 0, false
	}
	return w.CountInRangeUnchecked(from, to, v), true
}

// CountInRange is TryCountInRange but panics if the range is invalid.
func (w *WaveletMatrix) CountInRange(from, to int, v uint64) int {
	c, ok := w.TryCountInRange(from, to, v)
	if !ok {
		panic(fmt.Sprintf("cseq: WaveletMatrix.CountInRange: invalid range [%d,%d) of [0,%d]", from, to, w.len))
	}
	return c
}

// SelectUnchecked is TrySelect without a bounds check; the caller must
// guarantee 0 <= k < count(v). It starts at the k-th position of v's range
// in the deepest level and walks the levels back to the shallowest, at each
// one inverting that level's rank-based descent with a select query.
func (w *WaveletMatrix) SelectUnchecked(k int, v uint64) int {
	start, _ := w.descend(0, 0, v)
	idx := start + k
	for t := len(w.levels) - 1; t >= 0; t-- {
		lvl := w.levels[t]
		if w.bitOf(v, t) == 1 {
			idx = lvl.bits.SelectUnchecked(idx - lvl.zeros)
		} else {
			idx = lvl.bits.Select0Unchecked(idx)
		}
	}
	return idx
}

// TrySelect returns the index of the k-th (0-indexed) occurrence of symbol
// v, or (0,false) if there is no such occurrence.
func (w *WaveletMatrix) TrySelect(k int, v uint64) (int, bool) {
	if k < 0 || k >= w.RankUnchecked(w.len, v) {
		return 0, false
	}
	return w.SelectUnchecked(k, v), true
}

// Select is TrySelect but panics if there is no k-th occurrence.
func (w *WaveletMatrix) Select(k int, v uint64) int {
	p, ok := w.TrySelect(k, v)
	if !ok {
		panic(fmt.Sprintf("cseq: WaveletMatrix.Select: no %d-th occurrence of %d", k, v))
	}
	return p
}
