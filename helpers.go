package zstream

// Preset parameter sets for common use cases.

// FastestParams returns parameters optimized for speed.
func FastestParams() *Params {
	p := DefaultParams()
	p.Level = BestSpeed
	return p
}

// BestCompressionParams returns parameters optimized for compression
// ratio. Use for static content or write-once/read-many data.
func BestCompressionParams() *Params {
	p := DefaultParams()
	p.Level = BestCompression
	return p
}

// HuffmanOnlyParams returns parameters that skip string matching and
// only Huffman-encode the input. Useful for data with skewed byte
// frequencies but little repetition.
func HuffmanOnlyParams() *Params {
	p := DefaultParams()
	p.Strategy = StrategyHuffmanOnly
	return p
}

// GetCompressionRatio calculates the compression ratio for the given
// original and compressed sizes. Lower is better; 0.5 means the
// compressed form is half the original size.
func GetCompressionRatio(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return float64(compressedSize) / float64(originalSize)
}

// GetCompressionPercentage calculates the percentage of space saved,
// 0 to 100.
func GetCompressionPercentage(originalSize, compressedSize int64) float64 {
	if originalSize == 0 {
		return 0
	}
	return (1 - float64(compressedSize)/float64(originalSize)) * 100
}
