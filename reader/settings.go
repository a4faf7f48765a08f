package reader

// Probe defaults.
const (
	DefaultChunkSize = 64 * 1024
	minChunkSize     = 16 // Fits any box header.
)

// Options controls a probe.
type Options struct {
	ChunkSize int   `yaml:"chunk_size"` // Bytes requested from the source per read.
	MaxBytes  int64 `yaml:"max_bytes"`  // Upper bound on bytes read, zero for none.
}

func (o Options) chunkSize() int {
	switch {
	case o.ChunkSize <= 0:
		return DefaultChunkSize
	case o.ChunkSize < minChunkSize:
		return minChunkSize
	}
	return o.ChunkSize
}
