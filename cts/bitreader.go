package cts

import (
	"io"
)

// bitReader unpacks the bit-packed genotype blocks: one bit per sample at a
// biallelic site, most significant bit first.
type bitReader struct {
	reader io.ByteReader
	byte   byte
	offset byte

	errCache    error
	lastBit     bool
	resultCache uint64
}

func newBitReader(r io.ByteReader) *bitReader {
	return &bitReader{r, 0, 0, nil, false, 0}
}

func (r *bitReader) ReadBit() (bool, error) {
	if r.offset == 8 {
		r.offset = 0
	}
	if r.offset == 0 {
		if r.byte, r.errCache = r.reader.ReadByte(); r.errCache != nil {
			return false, r.errCache
		}
	}
	r.lastBit = (r.byte & (0x80 >> r.offset)) != 0
	r.offset++
	return r.lastBit, nil
}

// ReadUint collects nbits into an unsigned value, high bit first. Reserved
// for multi-bit dosage encodings; biallelic records read single bits.
func (r *bitReader) ReadUint(nbits int) (uint64, error) {
	r.resultCache = 0
	for i := nbits - 1; i >= 0; i-- {
		r.lastBit, r.errCache = r.ReadBit()
		if r.errCache != nil {
			return 0, r.errCache
		}
		if r.lastBit {
			r.resultCache |= 1 << uint(i)
		}
	}
	return r.resultCache, nil
}
