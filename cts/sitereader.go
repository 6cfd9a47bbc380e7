package cts

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/carbocation/pfx"
)

// SiteRecord is one parsed site: its position, allele states, derived-allele
// count, and the per-sample derived indicators in column order.
type SiteRecord struct {
	Position       float64
	AncestralState string
	DerivedState   string
	DerivedCount   uint32
	Genotypes      []uint8

	// FileStartPosition and SizeInBytes locate the record within the file,
	// for index construction and random access.
	FileStartPosition int64
	SizeInBytes       int64
}

type SiteReader struct {
	SitesSeen     uint32
	c             *CTS
	currentOffset int64
	err           error

	// Cached values
	buffer []byte
}

func (c *CTS) NewSiteReader() *SiteReader {
	return &SiteReader{
		currentOffset: int64(c.SitesStart),
		c:             c,
	}
}

func (sr *SiteReader) Error() error {
	return sr.err
}

// Read parses the next site record, returning nil at end of file or on
// error; check Error after a nil result.
func (sr *SiteReader) Read() *SiteRecord {
	if sr.SitesSeen >= sr.c.NSites {
		return nil
	}

	rec, newOffset, err := sr.parseSiteAtOffset(sr.currentOffset)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		sr.err = pfx.Err(err)
		return nil
	}

	sr.SitesSeen++
	sr.currentOffset = newOffset

	return rec
}

// ReadAt parses the site record that starts at the given file offset,
// without disturbing the sequential read position.
func (sr *SiteReader) ReadAt(offset int64) *SiteRecord {
	rec, _, err := sr.parseSiteAtOffset(offset)
	if err != nil {
		sr.err = pfx.Err(err)
		return nil
	}

	return rec
}

// parseSiteAtOffset does not advance the SiteReader.
func (sr *SiteReader) parseSiteAtOffset(offset int64) (*SiteRecord, int64, error) {
	rec := &SiteRecord{FileStartPosition: offset}
	var err error

SiteLoop:
	for {
		// Position
		if err = sr.readNBytesAtOffset(8, offset); err != nil {
			break
		}
		rec.Position = math.Float64frombits(binary.LittleEndian.Uint64(sr.buffer[:8]))
		offset += 8

		if Layout(sr.c.FlagLayout) == Layout2 {
			// Ancestral state
			if err = sr.readNBytesAtOffset(2, offset); err != nil {
				break
			}
			offset += 2
			stringSize := int(binary.LittleEndian.Uint16(sr.buffer[:2]))
			if err = sr.readNBytesAtOffset(stringSize, offset); err != nil {
				break
			}
			rec.AncestralState = string(sr.buffer[:stringSize])
			offset += int64(stringSize)

			// Derived state
			if err = sr.readNBytesAtOffset(2, offset); err != nil {
				break
			}
			offset += 2
			stringSize = int(binary.LittleEndian.Uint16(sr.buffer[:2]))
			if err = sr.readNBytesAtOffset(stringSize, offset); err != nil {
				break
			}
			rec.DerivedState = string(sr.buffer[:stringSize])
			offset += int64(stringSize)
		} else if Layout(sr.c.FlagLayout) == Layout1 {
			// States are implied 0/1 indicators in Layout1
			rec.AncestralState = "0"
			rec.DerivedState = "1"
		} else {
			err = fmt.Errorf("layout %d is not recognized", sr.c.FlagLayout)
			break
		}

		// Derived-allele count
		if err = sr.readNBytesAtOffset(4, offset); err != nil {
			break
		}
		offset += 4
		rec.DerivedCount = binary.LittleEndian.Uint32(sr.buffer[:4])

		// Genotype block. The leading 4 byte chunk indicates how much data
		// is left for this record (skipping ahead by this much will bring
		// you to the next record).
		if err = sr.readNBytesAtOffset(4, offset); err != nil {
			break
		}
		offset += 4
		nextDataOffset := binary.LittleEndian.Uint32(sr.buffer[:4])

		rawSize := (int(sr.c.NSamples) + 7) / 8
		var raw []byte

		if comp := Compression(sr.c.FlagCompression); comp == CompressionDisabled {
			// If compression is disabled, there is no second 4 byte chunk
			// indicating the decompressed size.
			if err = sr.readNBytesAtOffset(int(nextDataOffset), offset); err != nil {
				break
			}
			offset += int64(nextDataOffset)
			raw = append([]byte(nil), sr.buffer[:nextDataOffset]...)
		} else {
			// If compression is enabled, the second 4 byte chunk indicates
			// how large the data chunk is after decompression.
			if err = sr.readNBytesAtOffset(4, offset); err != nil {
				break
			}
			offset += 4
			decompressedDataLength := binary.LittleEndian.Uint32(sr.buffer[:4])

			// The compressed payload is nextDataOffset-4 bytes, which
			// decompress to decompressedDataLength bytes.
			blockSizeToDecompress := nextDataOffset - 4
			if err = sr.readNBytesAtOffset(int(blockSizeToDecompress), offset); err != nil {
				break
			}
			offset += int64(blockSizeToDecompress)

			raw, err = decompressBlock(sr.buffer[:blockSizeToDecompress], comp, int(decompressedDataLength))
			if err != nil {
				break
			}
		}

		if len(raw) < rawSize {
			err = fmt.Errorf("genotype block is %d bytes; expected at least %d for %d samples", len(raw), rawSize, sr.c.NSamples)
			break
		}

		br := newBitReader(bytes.NewReader(raw))
		rec.Genotypes = make([]uint8, sr.c.NSamples)
		var observed uint32
		for i := range rec.Genotypes {
			bit, bitErr := br.ReadBit()
			if bitErr != nil {
				err = bitErr
				break SiteLoop
			}
			if bit {
				rec.Genotypes[i] = 1
				observed++
			}
		}

		if observed != rec.DerivedCount {
			err = fmt.Errorf("site at position %f claims %d derived alleles but its genotype block carries %d", rec.Position, rec.DerivedCount, observed)
			break
		}

		break
	}

	rec.SizeInBytes = offset - rec.FileStartPosition

	return rec, offset, err
}

func (sr *SiteReader) readNBytesAtOffset(n int, offset int64) error {
	if sr.buffer == nil || len(sr.buffer) < n {
		sr.buffer = make([]byte, n)
	}

	_, err := sr.c.File.ReadAt(sr.buffer[:n], offset)
	return err
}
