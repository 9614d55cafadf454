package bitm

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func wordsFromBits(bits []int, n int) []uint64 {
	words := make([]uint64, WordsForBits(n))
	for _, b := range bits {
		SetBit(words, b)
	}
	return words
}

func TestBitArray_Empty(t *testing.T) {
	for _, policy := range []SelectPolicy{SelectPolicyBinarySearch, SelectPolicyCombinedSampling} {
		ba := NewBitArray(nil, 0, policy)
		require.True(t, ba.IsEmpty())

		_, ok := ba.TrySelect(0)
		require.False(t, ok)
		_, ok = ba.TrySelect0(0)
		require.False(t, ok)

		// rank(0) on an empty array: 0 is not a valid bit position (there
		// are none), so this is NotFound, not a vacuous zero.
		_, ok = ba.TryRank(0)
		require.False(t, ok)
	}
}

func TestBitArray_Scenario2(t *testing.T) {
	// bits 0,2,3 set in word 0; bits 65,66 set in word 1.
	words := []uint64{0b1101, 0b110}
	for _, policy := range []SelectPolicy{SelectPolicyBinarySearch, SelectPolicyCombinedSampling} {
		ba := NewBitArray(words, 128, policy)

		wantRank := []int{0, 1, 1, 2, 3}
		for i, want := range wantRank {
			require.Equal(t, want, ba.Rank(i), "rank(%d)", i)
		}
		require.Equal(t, 3, ba.Rank(65))
		require.Equal(t, 4, ba.Rank(66))
		require.Equal(t, 5, ba.Rank(67))

		wantSelect := []int{0, 2, 3, 65, 66}
		for k, want := range wantSelect {
			require.Equal(t, want, ba.Select(k), "select(%d)", k)
		}
		_, ok := ba.TrySelect(5)
		require.False(t, ok)
	}
}

func TestBitArray_Scenario3_DenseBlock(t *testing.T) {
	// 60 words, each holding the pattern 0b1101 in its low nibble.
	n := 60 * 64
	words := make([]uint64, WordsForBits(n))
	for block := 0; block < 60; block++ {
		base := block * 64
		SetBit(words, base+0)
		SetBit(words, base+2)
		SetBit(words, base+3)
	}
	for _, policy := range []SelectPolicy{SelectPolicyBinarySearch, SelectPolicyCombinedSampling} {
		ba := NewBitArray(words, n, policy)
		require.Equal(t, 64, ba.Select(3))
		require.Equal(t, 2048, ba.Select(2*6*8))
		require.Equal(t, 2*6*8, ba.Rank(2048))
		_, ok := ba.TrySelect(60 * 64)
		require.False(t, ok)

		// rank(N) addresses no bit position (N is one past the last).
		_, ok = ba.TryRank(n)
		require.False(t, ok)
	}
}

func naiveRank(words []uint64, i int) int {
	r := 0
	for j := 0; j < i; j++ {
		if GetBit(words, j) {
			r++
		}
	}
	return r
}

func naiveSelect(words []uint64, n, k int) (int, bool) {
	count := 0
	for j := 0; j < n; j++ {
		if GetBit(words, j) {
			if count == k {
				return j, true
			}
			count++
		}
	}
	return 0, false
}

func naiveSelect0(words []uint64, n, k int) (int, bool) {
	count := 0
	for j := 0; j < n; j++ {
		if !GetBit(words, j) {
			if count == k {
				return j, true
			}
			count++
		}
	}
	return 0, false
}

func TestBitArray_Properties_Random(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 20; trial++ {
		n := 1 + rng.Intn(1<<15)
		words := make([]uint64, WordsForBits(n))
		for j := 0; j < n; j++ {
			if rng.Intn(3) == 0 {
				SetBit(words, j)
			}
		}

		baBin := NewBitArray(append([]uint64(nil), words...), n, SelectPolicyBinarySearch)
		baSamp := NewBitArray(append([]uint64(nil), words...), n, SelectPolicyCombinedSampling)

		for i := 0; i < n; i++ {
			r := naiveRank(words, i)
			require.Equal(t, r, baBin.Rank(i))
			require.Equal(t, r, baSamp.Rank(i))
			require.Equal(t, i-r, baBin.Rank0(i))

			// Rank totality.
			require.Equal(t, i, baBin.Rank(i)+baBin.Rank0(i))
		}

		// rank(n) addresses no bit position: n names no bit, only a range
		// endpoint. Both arrays reject it identically.
		_, ok := baBin.TryRank(n)
		require.False(t, ok)
		_, ok = baSamp.TryRank(n)
		require.False(t, ok)

		ones := baBin.Ones()
		zeros := baBin.Zeros()
		require.Equal(t, n, ones+zeros)

		for k := 0; k < ones; k++ {
			want, ok := naiveSelect(words, n, k)
			require.True(t, ok)
			gotBin := baBin.Select(k)
			gotSamp := baSamp.Select(k)
			require.Equal(t, want, gotBin)
			require.Equal(t, want, gotSamp, "policy equivalence at k=%d", k)

			// Rank/select inversion.
			require.Equal(t, k, baBin.Rank(gotBin))
			require.True(t, GetBit(words, gotBin))
		}
		_, ok = baBin.TrySelect(ones)
		require.False(t, ok)

		for k := 0; k < zeros; k++ {
			want, ok := naiveSelect0(words, n, k)
			require.True(t, ok)
			require.Equal(t, want, baBin.Select0(k))
			require.Equal(t, want, baSamp.Select0(k))
		}
	}
}

func TestBitArray_SlowL1Crossover(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping L1 crossover test in short mode")
	}

	n := (1 << 33) + 1000
	words := make([]uint64, WordsForBits(n))
	// Sparse: one bit every 4096 bits, plus a handful crossing the L1 boundary.
	for j := 0; j < n; j += 4096 {
		SetBit(words, j)
	}
	crossover := 1 << 32
	for _, b := range []int{crossover - 64, crossover - 1, crossover, crossover + 1, crossover + 64} {
		SetBit(words, b)
	}

	ba := NewBitArray(words, n, SelectPolicyCombinedSampling)
	require.Equal(t, naiveRank(words, crossover+65), ba.Rank(crossover+65))
	require.Equal(t, naiveRank(words, n), ba.RankUnchecked(n))

	k := ba.Rank(crossover) - 1
	want, ok := naiveSelect(words, n, k)
	require.True(t, ok)
	require.Equal(t, want, ba.Select(k))
}
