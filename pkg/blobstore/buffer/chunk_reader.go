package buffer

import (
	"io"

	"github.com/buildbarn/bb-blake3/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChunkReader is similar to io.Reader, except that chunks of data are
// returned by the reader, instead of being copied into a caller
// provided slice. This permits data to be hashed or forwarded without
// additional copying.
//
// Read() returns io.EOF once all data has been returned. Other errors
// are returned as gRPC status errors.
type ChunkReader interface {
	Read() ([]byte, error)
	Close()
}

type errorChunkReader struct {
	err error
}

// newErrorChunkReader returns a ChunkReader that returns a fixed error
// response. It is used by ChunkReaders that need to be initialized in
// a failed or exhausted state.
func newErrorChunkReader(err error) ChunkReader {
	return errorChunkReader{
		err: err,
	}
}

func (r errorChunkReader) Read() ([]byte, error) {
	return nil, r.err
}

func (r errorChunkReader) Close() {}

type byteSliceChunkReader struct {
	data []byte
}

// NewChunkReaderFromByteSlice creates a ChunkReader that returns the
// contents of a byte slice, split up according to a ChunkPolicy.
func NewChunkReaderFromByteSlice(data []byte, chunkPolicy ChunkPolicy) ChunkReader {
	return newNormalizingChunkReader(&byteSliceChunkReader{data: data}, chunkPolicy)
}

func (r *byteSliceChunkReader) Read() ([]byte, error) {
	if r.data == nil {
		return nil, io.EOF
	}
	data := r.data
	r.data = nil
	return data, nil
}

func (r *byteSliceChunkReader) Close() {
	r.data = nil
}

type readerChunkReader struct {
	r                io.ReadCloser
	defaultSizeBytes int
	err              error
}

// NewChunkReaderFromReader creates a ChunkReader that obtains its data
// from an io.ReadCloser, such as a file. Chunks are read into freshly
// allocated buffers, meaning that returned chunks remain valid after
// subsequent calls to Read().
func NewChunkReaderFromReader(r io.ReadCloser, chunkPolicy ChunkPolicy) ChunkReader {
	return newNormalizingChunkReader(
		&readerChunkReader{
			r:                r,
			defaultSizeBytes: chunkPolicy.defaultSizeBytes,
		},
		chunkPolicy)
}

func (r *readerChunkReader) Read() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	if r.defaultSizeBytes <= 0 {
		// Reading zero bytes at a time never makes progress.
		r.err = status.Errorf(codes.InvalidArgument, "Invalid chunk size: %d bytes", r.defaultSizeBytes)
		return nil, r.err
	}
	chunk := make([]byte, r.defaultSizeBytes)
	n, err := io.ReadFull(r.r, chunk)
	if err == io.ErrUnexpectedEOF {
		// Trailing data. Return the partial chunk now, and EOF
		// on the next call.
		r.err = io.EOF
		return chunk[:n], nil
	} else if err != nil {
		if err != io.EOF {
			err = util.StatusWrap(err, "Failed to read data")
		}
		r.err = err
		return nil, err
	}
	return chunk, nil
}

func (r *readerChunkReader) Close() {
	r.r.Close()
}
