package buffer

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type normalizingChunkReader struct {
	base             ChunkReader
	minimumSizeBytes int
	maximumSizeBytes int

	pending []byte
	err     error
}

// newNormalizingChunkReader creates a decorator for ChunkReader that
// normalizes the sizes of the chunks returned by Read(). Empty chunks
// are omitted. Small chunks are merged until the minimum size of the
// ChunkPolicy is reached, while chunks exceeding the maximum size are
// decomposed into smaller ones.
//
// Policies that permit no data to be returned, such as
// ChunkSizeExactly(0) or the zero ChunkPolicy, cause Read() to fail
// without calling into the underlying ChunkReader.
func newNormalizingChunkReader(base ChunkReader, chunkPolicy ChunkPolicy) ChunkReader {
	r := &normalizingChunkReader{
		base:             base,
		minimumSizeBytes: chunkPolicy.minimumSizeBytes,
		maximumSizeBytes: chunkPolicy.maximumSizeBytes,
	}
	if chunkPolicy.defaultSizeBytes <= 0 || chunkPolicy.maximumSizeBytes <= 0 {
		r.err = status.Errorf(codes.InvalidArgument, "Invalid chunk size: %d bytes", chunkPolicy.maximumSizeBytes)
	}
	return r
}

// fill reads chunks from the underlying ChunkReader until the minimum
// chunk size is reached or the underlying ChunkReader fails. Once
// failed, the underlying ChunkReader is not called into again.
func (r *normalizingChunkReader) fill() {
	for r.err == nil && (len(r.pending) == 0 || len(r.pending) < r.minimumSizeBytes) {
		chunk, err := r.base.Read()
		if err != nil {
			r.err = err
			return
		}
		if len(r.pending) == 0 {
			r.pending = chunk
		} else {
			// Never append to a chunk owned by the
			// underlying ChunkReader.
			r.pending = append(r.pending[:len(r.pending):len(r.pending)], chunk...)
		}
	}
}

func (r *normalizingChunkReader) Read() ([]byte, error) {
	r.fill()
	if len(r.pending) == 0 {
		return nil, r.err
	}
	chunk := r.pending
	if len(chunk) > r.maximumSizeBytes {
		chunk = chunk[:r.maximumSizeBytes:r.maximumSizeBytes]
		r.pending = r.pending[r.maximumSizeBytes:]
	} else {
		r.pending = nil
	}
	return chunk, nil
}

func (r *normalizingChunkReader) Close() {
	r.base.Close()
	r.pending = nil
}
