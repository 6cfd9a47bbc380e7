package cts

// bitWriter is the encoding counterpart of bitReader: bits are packed most
// significant first, and the final partial byte is zero-padded.
type bitWriter struct {
	buf     []byte
	current byte
	offset  byte
}

func newBitWriter() *bitWriter {
	return &bitWriter{}
}

func (w *bitWriter) WriteBit(bit bool) {
	if bit {
		w.current |= 0x80 >> w.offset
	}
	w.offset++
	if w.offset == 8 {
		w.buf = append(w.buf, w.current)
		w.current = 0
		w.offset = 0
	}
}

// WriteUint emits the low nbits of v, high bit first.
func (w *bitWriter) WriteUint(v uint64, nbits int) {
	for i := nbits - 1; i >= 0; i-- {
		w.WriteBit(v&(1<<uint(i)) != 0)
	}
}

// Bytes flushes any partial byte and returns the packed buffer.
func (w *bitWriter) Bytes() []byte {
	if w.offset > 0 {
		w.buf = append(w.buf, w.current)
		w.current = 0
		w.offset = 0
	}
	return w.buf
}
