// Package cts reads and writes the coalescent tree sample (.cts) site
// container: the binary file a simulation's segregating sites are saved to,
// one genotype record per site, with an optional sqlite site index (.csi)
// alongside.
package cts

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/carbocation/pfx"
)

// MagicNumber contains the value required to confirm that a file is
// CTS-conformant
const MagicNumber = "cts1"

const (
	offsetSite           = 0
	offsetHeaderLength   = 4
	offsetNumberSites    = 8
	offsetNumberSamples  = 12
	offsetMagicNumber    = 16
	offsetSequenceLength = 20
)

// headerLength is the fixed distance from offsetHeaderLength to the flags
// word; the flags word itself occupies the following 4 bytes.
const headerLength = 28

// CTSVersion is the supported version of the CTS file format
const CTSVersion = "1.0"

// CTS is the main object used for parsing CTS files
type CTS struct {
	FilePath         string
	File             io.ReaderAt
	NSites           uint32
	NSamples         uint32
	SequenceLength   float64
	FlagCompression  uint32
	FlagLayout       uint32
	FlagHasSampleIDs uint32
	SamplesStart     uint32
	SitesStart       uint32

	closer io.Closer
}

// Open attempts to read a cts file located at path, which may be a local
// file or a gs:// object. If successful, this returns a new CTS object.
// Otherwise, it returns an error.
func Open(path string) (*CTS, error) {
	c := &CTS{
		FilePath: path,
	}

	if strings.HasPrefix(path, "gs://") {
		r, err := openGS(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		c.File = r
		c.closer = r
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, pfx.Err(err)
		}
		c.File = file
		c.closer = file
	}

	if err := populateCTSHeader(c); err != nil {
		return nil, pfx.Err(err)
	}

	return c, nil
}

// OpenReaderAt wraps an existing ReaderAt, for callers that manage their own
// storage handles.
func OpenReaderAt(r io.ReaderAt) (*CTS, error) {
	c := &CTS{File: r}

	if err := populateCTSHeader(c); err != nil {
		return nil, pfx.Err(err)
	}

	return c, nil
}

func (c *CTS) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer.Close()
}

func populateCTSHeader(c *CTS) error {
	buffer := make([]byte, 4)

	if err := c.parseAtOffsetWithBuffer(offsetSite, buffer); err != nil {
		return pfx.Err(err)
	}
	// First site record is at site_offset + 4. Note that
	// (c.SitesStart = site_offset + 4)
	c.SitesStart = binary.LittleEndian.Uint32(buffer) + 4

	if err := c.parseAtOffsetWithBuffer(offsetHeaderLength, buffer); err != nil {
		return pfx.Err(err)
	}
	hl := int64(binary.LittleEndian.Uint32(buffer))

	c.SamplesStart = uint32(hl + 4)

	if err := c.parseAtOffsetWithBuffer(offsetNumberSites, buffer); err != nil {
		return pfx.Err(err)
	}
	c.NSites = binary.LittleEndian.Uint32(buffer)

	if err := c.parseAtOffsetWithBuffer(offsetNumberSamples, buffer); err != nil {
		return pfx.Err(err)
	}
	c.NSamples = binary.LittleEndian.Uint32(buffer)

	if err := c.parseAtOffsetWithBuffer(offsetMagicNumber, buffer); err != nil {
		return pfx.Err(err)
	}
	if MagicNumber != string(buffer) {
		return pfx.Err(fmt.Errorf("the CTS header value at offset %d is expected to resolve to the magic number %s (%v when printed as a byte slice), but instead resolved to byte slice %v", offsetMagicNumber, MagicNumber, []byte(MagicNumber), buffer))
	}

	seqBuffer := make([]byte, 8)
	if err := c.parseAtOffsetWithBuffer(offsetSequenceLength, seqBuffer); err != nil {
		return pfx.Err(err)
	}
	c.SequenceLength = math.Float64frombits(binary.LittleEndian.Uint64(seqBuffer))

	if err := c.parseAtOffsetWithBuffer(hl, buffer); err != nil {
		return pfx.Err(err)
	}
	flags := binary.LittleEndian.Uint32(buffer)
	c.FlagCompression = flags & 3
	c.FlagLayout = (flags & (15 << 2)) >> 2
	c.FlagHasSampleIDs = (flags & (1 << 31)) >> 31

	return nil
}

func (c *CTS) parseAtOffsetWithBuffer(offset int64, buffer []byte) error {
	_, err := c.File.ReadAt(buffer, offset)
	if err != nil {
		return pfx.Err(err)
	}

	return nil
}
