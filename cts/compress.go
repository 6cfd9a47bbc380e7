package cts

import (
	"bytes"
	"fmt"
	"io"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Stateless zstd codecs are safe for concurrent use; EncodeAll/DecodeAll
// avoid a per-record allocation of the machinery.
var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// compressBlock encodes src according to the chosen Compression.
func compressBlock(src []byte, compression Compression) ([]byte, error) {
	switch compression {
	case CompressionDisabled:
		return src, nil
	case CompressionZStandard:
		return zstdEncoder.EncodeAll(src, nil), nil
	case CompressionZLIB:
		var buf bytes.Buffer
		w := zlib.NewWriter(&buf)
		if _, err := w.Write(src); err != nil {
			return nil, pfx.Err(err)
		}
		if err := w.Close(); err != nil {
			return nil, pfx.Err(err)
		}
		return buf.Bytes(), nil
	}

	return nil, pfx.Err(fmt.Errorf("compression choice %d is not recognized", compression))
}

// decompressBlock reverses compressBlock. decompressedSize is the expected
// output length, used to pre-size the destination.
func decompressBlock(src []byte, compression Compression, decompressedSize int) ([]byte, error) {
	switch compression {
	case CompressionDisabled:
		return src, nil
	case CompressionZStandard:
		return zstdDecoder.DecodeAll(src, make([]byte, 0, decompressedSize))
	case CompressionZLIB:
		r, err := zlib.NewReader(bytes.NewReader(src))
		if err != nil {
			return nil, pfx.Err(err)
		}
		defer r.Close()
		out := make([]byte, 0, decompressedSize)
		buf := bytes.NewBuffer(out)
		if _, err := io.Copy(buf, r); err != nil {
			return nil, pfx.Err(err)
		}
		return buf.Bytes(), nil
	}

	return nil, pfx.Err(fmt.Errorf("compression choice %d is not recognized", compression))
}
