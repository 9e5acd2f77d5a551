package curve

// Options holds the tunables for curve extraction.
type Options struct {
	BlurSize int // Gaussian kernel size in pixels, odd; 0 disables blurring

	// Adaptive threshold parameters
	BlockSize int     // Neighbourhood size in pixels, odd
	C         float32 // Constant subtracted from the weighted mean

	CleanupIterations int // Close and open passes with a 3x3 kernel

	// ApproxFraction is the polyline approximation tolerance as a fraction
	// of the contour arc length.
	ApproxFraction float64

	Debug bool // Log extraction details
}

// DefaultOptions returns default curve extraction parameters.
func DefaultOptions() Options {
	return Options{
		BlurSize:          5,
		BlockSize:         11,
		C:                 2,
		CleanupIterations: 1,
		ApproxFraction:    0.001,
	}
}

// WithThreshold returns a copy of opts with custom adaptive threshold parameters.
func (o Options) WithThreshold(blockSize int, c float32) Options {
	o.BlockSize = blockSize
	o.C = c
	return o
}
