package cts

// Compression indicates how (and whether) the per-site genotype block is
// compressed
type Compression uint32

const (
	CompressionDisabled Compression = iota
	CompressionZLIB
	CompressionZStandard
)

func (c Compression) String() string {
	switch c {
	case CompressionDisabled:
		return "None"
	case CompressionZLIB:
		return "ZLIB"
	case CompressionZStandard:
		return "ZStandard"

	default:
		return "Illegal selection"
	}
}
