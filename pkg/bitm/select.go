package bitm

import "sort"

// selectSampleRate controls sampledSelect's space/time tradeoff: one
// int32 sample is stored per selectSampleRate occurrences. At this rate the
// sample table costs 4 bytes per 8192 occurrences, i.e. at most ~0.39% of
// the payload even in the worst case of a fully-set (or fully-clear) array —
// matching the overhead bound spec.md §4.6 asks for.
const selectSampleRate = 8192

// selector is the tagged-variant abstraction behind the two interchangeable
// select policies (spec.md §9's design note explicitly sanctions an
// interface here instead of a generic type parameter). Each BitArray holds
// one selector for ones and one for zeros.
type selector interface {
	selectKth(k int) (int, bool)
}

// locateOne finds, among L2 blocks at index >= lowerBound, the block
// containing the k-th one (0-indexed), and which sub-block and residual
// offset within that block it falls at.
func locateOne(l1, l2 []uint64, k, lowerBound int) (l2Idx, sub, residual int) {
	n := len(l2) - lowerBound
	off := sort.Search(n, func(i int) bool {
		return onesAtL2Start(l1, l2, lowerBound+i) > k
	})
	l2Idx = lowerBound + off - 1

	r0 := onesAtL2Start(l1, l2, l2Idx)
	d1, d2, d3 := l2Deltas(l2[l2Idx])
	r1, r2, r3 := r0+d1, r0+d2, r0+d3

	switch {
	case k >= r3:
		return l2Idx, 3, k - r3
	case k >= r2:
		return l2Idx, 2, k - r2
	case k >= r1:
		return l2Idx, 1, k - r1
	default:
		return l2Idx, 0, k - r0
	}
}

// locateZero is locateOne's mirror image for the k-th zero.
func locateZero(l1, l2 []uint64, k, lowerBound int) (l2Idx, sub, residual int) {
	n := len(l2) - lowerBound
	off := sort.Search(n, func(i int) bool {
		return zerosAtL2Start(l1, l2, lowerBound+i) > k
	})
	l2Idx = lowerBound + off - 1

	r0 := onesAtL2Start(l1, l2, l2Idx)
	d1, d2, d3 := l2Deltas(l2[l2Idx])
	base := l2Idx * 2048
	z0 := base - r0
	z1 := base + 512 - (r0 + d1)
	z2 := base + 1024 - (r0 + d2)
	z3 := base + 1536 - (r0 + d3)

	// An all-ones delta field marks a sub-block past the end of the array
	// (see buildRankDirectory); such a sub-block holds no zero to select.
	switch {
	case d3 != int(fieldMask(11)) && k >= z3:
		return l2Idx, 3, k - z3
	case d2 != int(fieldMask(11)) && k >= z2:
		return l2Idx, 2, k - z2
	case k >= z1:
		return l2Idx, 1, k - z1
	default:
		return l2Idx, 0, k - z0
	}
}

// walkSelectOne scans forward word by word from startWord, consuming
// residual ones, and returns the bit position of the next one.
func walkSelectOne(words []uint64, startWord, residual int) int {
	wordIdx := startWord
	for {
		c := PopCount(words[wordIdx])
		if c > residual {
			pos, _ := SelectInWord(words[wordIdx], residual)
			return wordIdx*wordBits + pos
		}
		residual -= c
		wordIdx++
	}
}

// walkSelectZero mirrors walkSelectOne for zeros, by selecting among the
// ones of the bitwise complement of each word.
func walkSelectZero(words []uint64, startWord, residual int) int {
	wordIdx := startWord
	for {
		w := ^words[wordIdx]
		c := PopCount(w)
		if c > residual {
			pos, _ := SelectInWord(w, residual)
			return wordIdx*wordBits + pos
		}
		residual -= c
		wordIdx++
	}
}

// binarySelect implements SelectPolicyBinarySearch: every query bisects the
// full L2 directory, giving O(log(n/2048)) time with no extra memory.
type binarySelect struct {
	ba   *BitArray
	zero bool
}

func newBinarySelect(ba *BitArray, zero bool) *binarySelect {
	return &binarySelect{ba: ba, zero: zero}
}

func (s *binarySelect) selectKth(k int) (int, bool) {
	if len(s.ba.l2) == 0 {
		return 0, false
	}
	if s.zero {
		total := s.ba.n - s.ba.ones
		if k < 0 || k >= total {
			return 0, false
		}
		l2Idx, sub, residual := locateZero(s.ba.l1, s.ba.l2, k, 0)
		return walkSelectZero(s.ba.words, l2Idx*l2BlockWords+sub*subBlockWords, residual), true
	}
	if k < 0 || k >= s.ba.ones {
		return 0, false
	}
	l2Idx, sub, residual := locateOne(s.ba.l1, s.ba.l2, k, 0)
	return walkSelectOne(s.ba.words, l2Idx*l2BlockWords+sub*subBlockWords, residual), true
}

// sampledSelect implements SelectPolicyCombinedSampling: a small table of
// L2-block hints, one per selectSampleRate occurrences, narrows the
// directory bisection down to a short suffix of the L2 array instead of
// scanning it in full.
type sampledSelect struct {
	ba      *BitArray
	zero    bool
	samples []int32
}

func newSampledSelect(ba *BitArray, zero bool) *sampledSelect {
	s := &sampledSelect{ba: ba, zero: zero}
	if len(ba.l2) == 0 {
		return s
	}
	total := ba.ones
	if zero {
		total = ba.n - ba.ones
	}
	if total == 0 {
		return s
	}

	count := (total + selectSampleRate - 1) / selectSampleRate
	s.samples = make([]int32, count)
	for i := range s.samples {
		target := i * selectSampleRate
		var l2Idx int
		if zero {
			l2Idx = sort.Search(len(ba.l2), func(j int) bool {
				return zerosAtL2Start(ba.l1, ba.l2, j) > target
			}) - 1
		} else {
			l2Idx = sort.Search(len(ba.l2), func(j int) bool {
				return onesAtL2Start(ba.l1, ba.l2, j) > target
			}) - 1
		}
		if l2Idx < 0 {
			l2Idx = 0
		}
		s.samples[i] = int32(l2Idx)
	}
	return s
}

func (s *sampledSelect) selectKth(k int) (int, bool) {
	if len(s.ba.l2) == 0 || len(s.samples) == 0 {
		return 0, false
	}
	total := s.ba.ones
	if s.zero {
		total = s.ba.n - s.ba.ones
	}
	if k < 0 || k >= total {
		return 0, false
	}

	hint := int(s.samples[k/selectSampleRate])
	if s.zero {
		l2Idx, sub, residual := locateZero(s.ba.l1, s.ba.l2, k, hint)
		return walkSelectZero(s.ba.words, l2Idx*l2BlockWords+sub*subBlockWords, residual), true
	}
	l2Idx, sub, residual := locateOne(s.ba.l1, s.ba.l2, k, hint)
	return walkSelectOne(s.ba.words, l2Idx*l2BlockWords+sub*subBlockWords, residual), true
}
