package cts

import (
	"encoding/binary"
	"fmt"

	"github.com/carbocation/pfx"
)

type Sample struct {
	SampleID string
}

// ReadSamples parses the optional sample-identifier block, which names the
// sampled haplotypes in column order.
func ReadSamples(c *CTS) ([]Sample, error) {
	if c.File == nil {
		return nil, pfx.Err(fmt.Errorf("c.File is nil"))
	}

	if c.FlagHasSampleIDs == 0 {
		return nil, pfx.Err(fmt.Errorf("this file indicates that it does not have sample IDs"))
	}

	samples := make([]Sample, 0, c.NSamples)

	bufferLength := make([]byte, 2)
	bufferID := make([]byte, 2)
	// SamplesStart is at sample_block_length, and SamplesStart+4 is at
	// number_samples
	offset := int64(c.SamplesStart + 8)

	nSamples := int(c.NSamples)
	var sampleTextSize uint16
	for i := 0; i < nSamples; i++ {
		if err := c.parseAtOffsetWithBuffer(offset, bufferLength); err != nil {
			return nil, pfx.Err(err)
		}
		offset += 2

		sampleTextSize = binary.LittleEndian.Uint16(bufferLength)

		// resize the sample buffer to the size dictated by the result of
		// bufferLength
		if int(sampleTextSize) > cap(bufferID) {
			bufferID = make([]byte, sampleTextSize)
		}
		bufferID = bufferID[:sampleTextSize]
		if err := c.parseAtOffsetWithBuffer(offset, bufferID); err != nil {
			return nil, pfx.Err(err)
		}

		// Copy the buffer into a string so that the buffer can be reused
		samples = append(samples, Sample{SampleID: string(bufferID)})
		offset += int64(sampleTextSize)
	}

	return samples, nil
}
