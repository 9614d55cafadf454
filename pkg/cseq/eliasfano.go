// Package cseq provides compressed sequence structures built on top of
// pkg/bitm: a monotone Elias-Fano integer sequence and a fixed-width
// wavelet matrix.
package cseq

import (
	"fmt"
	"math/bits"

	"github.com/xflash-panda/succinct/pkg/bitm"
)

// EFBuilder accumulates values, in non-decreasing order, for an
// Elias-Fano Sequence. Construct one with NewEFBuilder, push every value
// with Push (or PushDiff to push a delta from the previous value), then
// call Finish.
type EFBuilder struct {
	hiWords []uint64
	hiLen   int
	lo      *bitm.PackedArray

	bitsPerLo  uint
	currentLen int
	targetLen  int
	lastAdded  uint64
	universe   uint64
}

// NewEFBuilder constructs a builder for a Sequence of finalLen values, each
// in [0, universe). After pushing finalLen values in non-decreasing order,
// call Finish.
func NewEFBuilder(finalLen int, universe uint64) *EFBuilder {
	if finalLen <= 0 || universe == 0 {
		return &EFBuilder{universe: universe}
	}

	var bitsPerLo uint
	if q := universe / uint64(finalLen); q > 0 {
		bitsPerLo = uint(bits.Len64(q)) - 1
	}

	// Pushing the final item with value universe-1 sets hi bit
	// (finalLen-1) + ((universe-1) >> bitsPerLo); size hi to fit that.
	hiLen := finalLen + int((universe-1)>>bitsPerLo)
	return &EFBuilder{
		hiWords:   make([]uint64, bitm.WordsForBits(hiLen)),
		hiLen:     hiLen,
		lo:        bitm.NewPackedArray(finalLen, bitsPerLo),
		bitsPerLo: bitsPerLo,
		targetLen: finalLen,
		universe:  universe,
	}
}

// Universe returns the declared exclusive upper bound on pushed values.
func (b *EFBuilder) Universe() uint64 { return b.universe }

// CurrentLen returns the number of values already pushed.
func (b *EFBuilder) CurrentLen() int { return b.currentLen }

// TargetLen returns the total number of values this builder expects.
func (b *EFBuilder) TargetLen() int { return b.targetLen }

// LastAdded returns the most recently pushed value.
func (b *EFBuilder) LastAdded() uint64 { return b.lastAdded }

func (b *EFBuilder) pushUnchecked(value uint64) {
	bitm.SetBit(b.hiWords, int(value>>b.bitsPerLo)+b.currentLen)
	b.lo.Set(b.currentLen, value)
	b.currentLen++
	b.lastAdded = value
}

// PushUnchecked pushes value without validating monotonicity, universe
// membership, or remaining capacity.
func (b *EFBuilder) PushUnchecked(value uint64) {
	b.pushUnchecked(value)
}

// PushDiffUnchecked pushes LastAdded()+diff without any checks.
func (b *EFBuilder) PushDiffUnchecked(diff uint64) {
	b.pushUnchecked(b.lastAdded + diff)
}

// Push pushes value, which must be >= LastAdded(), < Universe(), and must
// not exceed the builder's declared length; panics otherwise.
func (b *EFBuilder) Push(value uint64) {
	if value >= b.universe {
		panic(fmt.Sprintf("cseq: EFBuilder.Push: value %d outside universe [0,%d)", value, b.universe))
	}
	if b.currentLen >= b.targetLen {
		panic(fmt.Sprintf("cseq: EFBuilder.Push: exceeds declared length %d", b.targetLen))
	}
	if value < b.lastAdded {
		panic(fmt.Sprintf("cseq: EFBuilder.Push: values must be non-decreasing, got %d after %d", value, b.lastAdded))
	}
	b.pushUnchecked(value)
}

// PushDiff pushes LastAdded()+diff, subject to the same checks as Push.
func (b *EFBuilder) PushDiff(diff uint64) {
	b.Push(b.lastAdded + diff)
}

// PushAll pushes every value in values via Push.
func (b *EFBuilder) PushAll(values []uint64) {
	for _, v := range values {
		b.Push(v)
	}
}

// PushDiffs pushes every value in diffs via PushDiff.
func (b *EFBuilder) PushDiffs(diffs []uint64) {
	for _, d := range diffs {
		b.PushDiff(d)
	}
}

// FinishUnchecked builds the Sequence without checking that every declared
// value has been pushed. The result is only valid if it has.
func (b *EFBuilder) FinishUnchecked(policy bitm.SelectPolicy) *EFSequence {
	return &EFSequence{
		hi:        bitm.NewBitArray(b.hiWords, b.hiLen, policy),
		lo:        b.lo,
		bitsPerLo: b.bitsPerLo,
		len:       b.currentLen,
	}
}

// Finish builds the Sequence, using CombinedSampling select acceleration.
// Panics if fewer than TargetLen() values were pushed.
func (b *EFBuilder) Finish() *EFSequence {
	return b.FinishWithPolicy(bitm.SelectPolicyCombinedSampling)
}

// FinishWithPolicy is Finish with an explicit select policy.
func (b *EFBuilder) FinishWithPolicy(policy bitm.SelectPolicy) *EFSequence {
	if b.currentLen != b.targetLen {
		panic(fmt.Sprintf("cseq: EFBuilder.Finish: pushed %d values, declared length was %d", b.currentLen, b.targetLen))
	}
	return b.FinishUnchecked(policy)
}

// EFSequence is an Elias-Fano representation of a non-decreasing sequence
// of integers: the high bits of each value are unary-coded into a
// rank/select bit array, the low bits are packed densely, giving roughly
// 2 + log2(universe/len) bits per value with O(1) access and O(log len)
// (or faster, with CombinedSampling) successor queries.
//
// Construct one by pushing values into an EFBuilder and calling Finish.
type EFSequence struct {
	hi        *bitm.BitArray
	lo        *bitm.PackedArray
	bitsPerLo uint
	len       int
}

// Len returns the number of stored values.
func (s *EFSequence) Len() int { return s.len }

// IsEmpty reports whether the sequence holds zero values.
func (s *EFSequence) IsEmpty() bool { return s.len == 0 }

// SizeBytes returns the approximate memory footprint of the sequence.
func (s *EFSequence) SizeBytes() int {
	return s.hi.SizeBytes() + s.lo.SizeBytes()
}

// efPosition locates an item by its index into lo (lo) and its
// corresponding bit position in hi (hi). The two are tied together: the
// item's high bits are (hi - lo).
type efPosition struct {
	hi, lo int
}

func (p efPosition) hiBits() uint64 { return uint64(p.hi - p.lo) }

func (s *EFSequence) valueAtPositionUnchecked(pos efPosition) uint64 {
	return (pos.hiBits() << s.bitsPerLo) | s.lo.Get(pos.lo)
}

func (s *EFSequence) valueAtPosition(pos efPosition) (uint64, bool) {
	if pos.lo >= s.len {
		return 0, false
	}
	return s.valueAtPositionUnchecked(pos), true
}

func (s *EFSequence) advancePositionUnchecked(pos *efPosition) {
	pos.lo++
	if pos.lo != s.len {
		h, _ := bitm.FindBitOne(s.hi.Words(), pos.hi+1)
		pos.hi = h
	} else {
		pos.hi = s.len * 64
	}
}

func (s *EFSequence) advancePositionBackUnchecked(pos *efPosition) {
	pos.lo--
	h, _ := bitm.RFindBitOne(s.hi.Words(), pos.hi-1)
	pos.hi = h
}

func (s *EFSequence) positionNextUnchecked(pos *efPosition) uint64 {
	result := s.valueAtPositionUnchecked(*pos)
	s.advancePositionUnchecked(pos)
	return result
}

func (s *EFSequence) positionNext(pos *efPosition) (uint64, bool) {
	if pos.lo == s.len {
		return 0, false
	}
	return s.positionNextUnchecked(pos), true
}

func (s *EFSequence) diffAtPositionUnchecked(pos efPosition) uint64 {
	current := s.valueAtPositionUnchecked(pos)
	if pos.lo == 0 {
		return current
	}
	s.advancePositionBackUnchecked(&pos)
	return current - s.valueAtPositionUnchecked(pos)
}

func (s *EFSequence) diffAtPosition(pos efPosition) (uint64, bool) {
	if pos.lo >= s.len {
		return 0, false
	}
	return s.diffAtPositionUnchecked(pos), true
}

func (s *EFSequence) beginPosition() efPosition {
	hi, ok := bitm.FindBitOne(s.hi.Words(), 0)
	if !ok {
		hi = s.hi.Len()
	}
	return efPosition{hi: hi, lo: 0}
}

func (s *EFSequence) endPosition() efPosition {
	return efPosition{hi: len(s.hi.Words()) * 64, lo: s.len}
}

func (s *EFSequence) positionAtUnchecked(index int) efPosition {
	return efPosition{hi: s.hi.SelectUnchecked(index), lo: index}
}

// Get returns the value at index, or (0,false) if index is out of range.
func (s *EFSequence) Get(index int) (uint64, bool) {
	if index < 0 || index >= s.len {
		return 0, false
	}
	return s.GetUnchecked(index), true
}

// GetUnchecked returns the value at index without a bounds check.
func (s *EFSequence) GetUnchecked(index int) uint64 {
	return (uint64(s.hi.SelectUnchecked(index)-index) << s.bitsPerLo) | s.lo.Get(index)
}

// GetOrPanic is Get but panics if index is out of range.
func (s *EFSequence) GetOrPanic(index int) uint64 {
	v, ok := s.Get(index)
	if !ok {
		panic(fmt.Sprintf("cseq: EFSequence.GetOrPanic: index %d out of range [0,%d)", index, s.len))
	}
	return v
}

// Diff returns the difference between the value at index and the value
// that precedes it (or the value itself, if index is 0).
func (s *EFSequence) Diff(index int) (uint64, bool) {
	if index < 0 || index >= s.len {
		return 0, false
	}
	return s.DiffUnchecked(index), true
}

// DiffUnchecked is Diff without a bounds check.
func (s *EFSequence) DiffUnchecked(index int) uint64 {
	return s.diffAtPositionUnchecked(s.positionAtUnchecked(index))
}

// DiffOrPanic is Diff but panics if index is out of range.
func (s *EFSequence) DiffOrPanic(index int) uint64 {
	v, ok := s.Diff(index)
	if !ok {
		panic(fmt.Sprintf("cseq: EFSequence.DiffOrPanic: index %d out of range [0,%d)", index, s.len))
	}
	return v
}

// geqPositionUncorrected returns a position whose lo field is already the
// correct index of the first item >= value, but whose hi field may not
// point at a real one-bit (see geqPosition).
func (s *EFSequence) geqPositionUncorrected(value uint64) efPosition {
	valueHi := int(value >> s.bitsPerLo)
	hiIndex, ok := s.hi.TrySelect0(valueHi)
	if !ok {
		hiIndex = s.hi.Len()
	}
	loIndex := hiIndex - valueHi

	valueLo := value & fieldMask(s.bitsPerLo)
	for loIndex > 0 && bitm.GetBit(s.hi.Words(), hiIndex-1) && valueLo <= s.lo.Get(loIndex-1) {
		loIndex--
		hiIndex--
	}
	return efPosition{hi: hiIndex, lo: loIndex}
}

func (s *EFSequence) geqPosition(value uint64) efPosition {
	pos := s.geqPositionUncorrected(value)
	if h, ok := bitm.FindBitOne(s.hi.Words(), pos.hi); ok {
		pos.hi = h
	} else {
		pos.hi = s.len * 64
	}
	return pos
}

func (s *EFSequence) positionOf(value uint64) (efPosition, bool) {
	pos := s.geqPosition(value)
	v, ok := s.valueAtPosition(pos)
	if !ok || v != value {
		return efPosition{}, false
	}
	return pos, true
}

// GeqCursor returns a cursor over the first item with value >= value.
func (s *EFSequence) GeqCursor(value uint64) *EFCursor {
	return &EFCursor{seq: s, pos: s.geqPosition(value)}
}

// GeqIndex returns the index of the first item with value >= value. If
// every stored value is smaller, the result equals Len().
func (s *EFSequence) GeqIndex(value uint64) int {
	return s.geqPositionUncorrected(value).lo
}

// CursorOf returns a cursor over the first occurrence of value, or
// (nil,false) if value is not present.
func (s *EFSequence) CursorOf(value uint64) (*EFCursor, bool) {
	pos, ok := s.positionOf(value)
	if !ok {
		return nil, false
	}
	return &EFCursor{seq: s, pos: pos}, true
}

// IndexOf returns the index of the first occurrence of value, or
// (0,false) if value is not present.
func (s *EFSequence) IndexOf(value uint64) (int, bool) {
	pos, ok := s.positionOf(value)
	if !ok {
		return 0, false
	}
	return pos.lo, true
}

// TryRank returns the number of stored values strictly less than value.
// Implements bitm.Rank over the value domain (value is truncated to int,
// matching the assumption that universe fits an int on this platform).
func (s *EFSequence) TryRank(value int) (int, bool) {
	return s.GeqIndex(uint64(value)), true
}

// Rank is TryRank; it never fails, since every value has a well-defined
// rank (possibly Len()).
func (s *EFSequence) Rank(value int) int {
	r, _ := s.TryRank(value)
	return r
}

// RankUnchecked is Rank.
func (s *EFSequence) RankUnchecked(value int) int { return s.Rank(value) }

// TrySelect returns the value at rank (i.e. Get(rank)), truncated to int.
func (s *EFSequence) TrySelect(rank int) (int, bool) {
	v, ok := s.Get(rank)
	if !ok {
		return 0, false
	}
	return int(v), true
}

// Select is TrySelect but panics if rank is out of range.
func (s *EFSequence) Select(rank int) int {
	v, ok := s.TrySelect(rank)
	if !ok {
		panic(fmt.Sprintf("cseq: EFSequence.Select: rank %d out of range [0,%d)", rank, s.len))
	}
	return v
}

// SelectUnchecked is Select without a bounds check.
func (s *EFSequence) SelectUnchecked(rank int) int {
	return int(s.GetUnchecked(rank))
}

// Begin returns a cursor positioned at the first item.
func (s *EFSequence) Begin() *EFCursor {
	return &EFCursor{seq: s, pos: s.beginPosition()}
}

// End returns a cursor positioned past the last item.
func (s *EFSequence) End() *EFCursor {
	return &EFCursor{seq: s, pos: s.endPosition()}
}

// Iter returns a forward/backward iterator over every stored value.
func (s *EFSequence) Iter() *EFIterator {
	return &EFIterator{seq: s, begin: s.beginPosition(), end: s.endPosition()}
}

// Diffs returns an iterator yielding the first value followed by the
// difference between each subsequent value and its predecessor.
func (s *EFSequence) Diffs() *EFDiffIterator {
	return &EFDiffIterator{seq: s, pos: s.beginPosition()}
}

func fieldMask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// EFCursor points either at an item of an EFSequence or past its end.
type EFCursor struct {
	seq *EFSequence
	pos efPosition
}

// IsEnd reports whether the cursor points past the last item.
func (c *EFCursor) IsEnd() bool { return c.pos.lo == c.seq.len }

// IsValid reports whether the cursor points at a real item; it is the
// complement of IsEnd.
func (c *EFCursor) IsValid() bool { return !c.IsEnd() }

// Index returns the index the cursor points at (possibly Len(), if IsEnd).
func (c *EFCursor) Index() int { return c.pos.lo }

// Value returns the value the cursor points at, or (0,false) if IsEnd.
func (c *EFCursor) Value() (uint64, bool) {
	return c.seq.valueAtPosition(c.pos)
}

// ValueUnchecked returns the value the cursor points at; undefined if
// IsEnd.
func (c *EFCursor) ValueUnchecked() uint64 {
	return c.seq.valueAtPositionUnchecked(c.pos)
}

// Advance moves the cursor one item forward and reports whether it moved.
func (c *EFCursor) Advance() bool {
	if c.IsEnd() {
		return false
	}
	c.seq.advancePositionUnchecked(&c.pos)
	return true
}

// AdvanceBack moves the cursor one item backward and reports whether it
// moved.
func (c *EFCursor) AdvanceBack() bool {
	if c.pos.lo == 0 {
		return false
	}
	c.seq.advancePositionBackUnchecked(&c.pos)
	return true
}

// NextBack moves the cursor one item backward and returns the value it now
// points at, or (0,false) if it was already at the first item.
func (c *EFCursor) NextBack() (uint64, bool) {
	if c.pos.lo == 0 {
		return 0, false
	}
	c.seq.advancePositionBackUnchecked(&c.pos)
	return c.seq.valueAtPositionUnchecked(c.pos), true
}

// Next returns the value the cursor points at and advances it one item
// forward, or (0,false) if IsEnd.
func (c *EFCursor) Next() (uint64, bool) {
	return c.seq.positionNext(&c.pos)
}

// Diff returns the difference between the cursor's value and the
// preceding value, or (0,false) if IsEnd.
func (c *EFCursor) Diff() (uint64, bool) {
	return c.seq.diffAtPosition(c.pos)
}

// DiffUnchecked is Diff; undefined if IsEnd.
func (c *EFCursor) DiffUnchecked() uint64 {
	return c.seq.diffAtPositionUnchecked(c.pos)
}

// Diffs returns an iterator over the differences between successive
// values, starting from this cursor's position.
func (c *EFCursor) Diffs() *EFDiffIterator {
	if c.pos.lo == 0 {
		return c.seq.Diffs()
	}
	prev := c.pos
	c.seq.advancePositionBackUnchecked(&prev)
	return &EFDiffIterator{seq: c.seq, pos: c.pos, prev: c.seq.valueAtPositionUnchecked(prev)}
}

// EFIterator is a forward/backward iterator over every value of an
// EFSequence.
type EFIterator struct {
	seq        *EFSequence
	begin, end efPosition
}

// Next returns the next value in forward order, or (0,false) when
// exhausted.
func (it *EFIterator) Next() (uint64, bool) {
	if it.begin.lo == it.end.lo {
		return 0, false
	}
	return it.seq.positionNextUnchecked(&it.begin), true
}

// NextBack returns the next value in backward order, or (0,false) when
// exhausted.
func (it *EFIterator) NextBack() (uint64, bool) {
	if it.begin.lo == it.end.lo {
		return 0, false
	}
	it.seq.advancePositionBackUnchecked(&it.end)
	return it.seq.valueAtPositionUnchecked(it.end), true
}

// EFDiffIterator yields the value of the first item followed by the
// differences between the values of subsequent items.
type EFDiffIterator struct {
	seq  *EFSequence
	pos  efPosition
	prev uint64
}

// Next returns the next diff, or (0,false) when exhausted.
func (it *EFDiffIterator) Next() (uint64, bool) {
	current, ok := it.seq.positionNext(&it.pos)
	if !ok {
		return 0, false
	}
	result := current - it.prev
	it.prev = current
	return result, true
}
