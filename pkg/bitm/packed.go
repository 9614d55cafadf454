package bitm

// PackedArray is a fixed-width bit-packed vector: n fields of width bits
// each, stored densely in a backing []uint64 with no per-field padding.
type PackedArray struct {
	words []uint64
	width uint
	n     int
}

// NewPackedArray allocates a PackedArray of n fields, each width bits wide
// (0 <= width <= 64), all initialized to zero.
func NewPackedArray(n int, width uint) *PackedArray {
	return &PackedArray{
		words: make([]uint64, WordsForBits(n*int(width))),
		width: width,
		n:     n,
	}
}

// Len returns the number of fields.
func (p *PackedArray) Len() int { return p.n }

// Width returns the field width in bits.
func (p *PackedArray) Width() uint { return p.width }

// Get returns the value of the i-th field.
func (p *PackedArray) Get(i int) uint64 {
	if p.width == 0 {
		return 0
	}
	return GetFragment(p.words, i*int(p.width), p.width)
}

// Set writes value into the i-th field. The field must currently be zero.
func (p *PackedArray) Set(i int, value uint64) {
	if p.width == 0 {
		return
	}
	SetFragment(p.words, i*int(p.width), value, p.width)
}

// InitSuccessive writes value at the field cursor *idxRef (a caller-owned
// running field index, not a bit offset) and advances *idxRef by one field.
func (p *PackedArray) InitSuccessive(idxRef *int, value uint64) {
	p.Set(*idxRef, value)
	*idxRef++
}

// InitBit sets the i-th field's bit to one if b is true; the field is
// assumed to be zero beforehand, and b == false leaves it unchanged. Valid
// only when Width()==1, where field i occupies exactly bit i of the backing
// words.
func (p *PackedArray) InitBit(i int, b bool) {
	InitBit(p.words, i, b)
}

// SetBit1 sets the i-th field's bit to one. Valid only when Width()==1.
func (p *PackedArray) SetBit1(i int) {
	SetBit(p.words, i)
}

// InitSuccessiveBit1 writes bit b at the bit cursor *idxRef, then advances
// *idxRef by one. Valid only when Width()==1.
func (p *PackedArray) InitSuccessiveBit1(idxRef *int, b bool) {
	InitSuccessiveBit(p.words, idxRef, b)
}

// SizeBytes returns the memory footprint of the backing storage.
func (p *PackedArray) SizeBytes() int {
	return len(p.words) * 8
}

// Words exposes the backing storage. When Width()==1 this is bit-identical
// to a raw bit array (field i occupies exactly bit i), which the wavelet
// matrix builder relies on to reuse a width-1 PackedArray as a BitArray's
// backing words with no repacking.
func (p *PackedArray) Words() []uint64 { return p.words }
