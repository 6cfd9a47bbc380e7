package cts

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/carbocation/pfx"

	"github.com/genostats/coalesce"
)

// Create writes the segregating sites of a tree sequence to a .cts file at
// path, one Layout2 record per site with the chosen per-record compression.
func Create(path string, ts *coalesce.TreeSequence, compression Compression) error {
	switch compression {
	case CompressionDisabled, CompressionZLIB, CompressionZStandard:
	default:
		return pfx.Err(fmt.Errorf("compression choice %d is not recognized", compression))
	}

	matrix, err := ts.GenotypeMatrix()
	if err != nil {
		return pfx.Err(err)
	}

	nSamples := ts.NumSamples()
	nSites := ts.NumSites()

	var sampleBlock []byte
	if len(ts.SampleIDs) > 0 {
		var entries bytes.Buffer
		for _, id := range ts.SampleIDs {
			if len(id) > math.MaxUint16 {
				return pfx.Err(fmt.Errorf("sample ID %q exceeds %d bytes", id, math.MaxUint16))
			}
			var l [2]byte
			binary.LittleEndian.PutUint16(l[:], uint16(len(id)))
			entries.Write(l[:])
			entries.WriteString(id)
		}

		block := new(bytes.Buffer)
		var u [4]byte
		binary.LittleEndian.PutUint32(u[:], uint32(8+entries.Len()))
		block.Write(u[:])
		binary.LittleEndian.PutUint32(u[:], uint32(len(ts.SampleIDs)))
		block.Write(u[:])
		block.Write(entries.Bytes())
		sampleBlock = block.Bytes()
	}

	f, err := os.Create(path)
	if err != nil {
		return pfx.Err(err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	// Header: the word at offset 0 points 4 bytes shy of the first site
	// record, matching SitesStart = site_offset + 4 on the read side. The
	// fixed header runs through the flags word at [headerLength, headerLength+4).
	sitesStart := uint32(headerLength+4) + uint32(len(sampleBlock))

	flags := uint32(compression) | uint32(Layout2)<<2
	if len(sampleBlock) > 0 {
		flags |= 1 << 31
	}

	var u32 [4]byte
	var u64 [8]byte

	binary.LittleEndian.PutUint32(u32[:], sitesStart-4)
	w.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], headerLength)
	w.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(nSites))
	w.Write(u32[:])
	binary.LittleEndian.PutUint32(u32[:], uint32(nSamples))
	w.Write(u32[:])
	w.WriteString(MagicNumber)
	binary.LittleEndian.PutUint64(u64[:], math.Float64bits(ts.SequenceLength))
	w.Write(u64[:])
	binary.LittleEndian.PutUint32(u32[:], flags)
	w.Write(u32[:])

	w.Write(sampleBlock)

	for i := 0; i < nSites; i++ {
		site := ts.Sites[i]
		mut := ts.Mutations[i]
		row := matrix[i]

		binary.LittleEndian.PutUint64(u64[:], math.Float64bits(site.Position))
		w.Write(u64[:])

		for _, state := range []string{site.AncestralState, mut.DerivedState} {
			var l [2]byte
			binary.LittleEndian.PutUint16(l[:], uint16(len(state)))
			w.Write(l[:])
			w.WriteString(state)
		}

		bw := newBitWriter()
		var count uint32
		for _, g := range row {
			bw.WriteBit(g != 0)
			if g != 0 {
				count++
			}
		}
		raw := bw.Bytes()

		binary.LittleEndian.PutUint32(u32[:], count)
		w.Write(u32[:])

		if compression == CompressionDisabled {
			binary.LittleEndian.PutUint32(u32[:], uint32(len(raw)))
			w.Write(u32[:])
			w.Write(raw)
		} else {
			block, err := compressBlock(raw, compression)
			if err != nil {
				return err
			}
			binary.LittleEndian.PutUint32(u32[:], uint32(len(block)+4))
			w.Write(u32[:])
			binary.LittleEndian.PutUint32(u32[:], uint32(len(raw)))
			w.Write(u32[:])
			w.Write(block)
		}
	}

	if err := w.Flush(); err != nil {
		return pfx.Err(err)
	}

	if err := f.Close(); err != nil {
		return pfx.Err(err)
	}

	return nil
}
