package buffer

import (
	"bytes"
	"hash"
	"io"
	"sync"

	"github.com/buildbarn/bb-blake3/pkg/digest"
	"github.com/prometheus/client_golang/prometheus"
	fasthex "github.com/tmthrgd/go-hex"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	casValidatingChunkReaderPrometheusMetrics sync.Once

	casValidatingChunkReaderBytesRead = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "blobstore",
			Name:      "cas_validating_chunk_reader_bytes_read_total",
			Help:      "Number of bytes read through CAS validating chunk readers.",
		})
	casValidatingChunkReaderValidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "buildbarn",
			Subsystem: "blobstore",
			Name:      "cas_validating_chunk_reader_validations_total",
			Help:      "Number of objects whose contents were validated against their digest, by outcome.",
		},
		[]string{"outcome"})
	casValidatingChunkReaderValidationsSuccess      = casValidatingChunkReaderValidations.WithLabelValues("Success")
	casValidatingChunkReaderValidationsSizeMismatch = casValidatingChunkReaderValidations.WithLabelValues("SizeMismatch")
	casValidatingChunkReaderValidationsHashMismatch = casValidatingChunkReaderValidations.WithLabelValues("HashMismatch")
)

type casValidatingChunkReader struct {
	r         ChunkReader
	digest    digest.Digest
	hasher    hash.Hash
	sizeBytes int64
	err       error
}

// NewCASValidatingChunkReader creates a decorator for ChunkReader that
// validates that the data returned by the underlying ChunkReader
// corresponds with a digest. Chunks are passed on as soon as they are
// read. Upon reaching the end of the stream, the size and checksum are
// compared. Mismatches are reported as errors with code INTERNAL,
// instead of io.EOF.
func NewCASValidatingChunkReader(r ChunkReader, blobDigest digest.Digest) ChunkReader {
	casValidatingChunkReaderPrometheusMetrics.Do(func() {
		prometheus.MustRegister(casValidatingChunkReaderBytesRead)
		prometheus.MustRegister(casValidatingChunkReaderValidations)
	})

	return &casValidatingChunkReader{
		r:      r,
		digest: blobDigest,
		hasher: blobDigest.NewHasher(),
	}
}

func (r *casValidatingChunkReader) validate() error {
	expectedSizeBytes := r.digest.GetSizeBytes()
	if r.sizeBytes != expectedSizeBytes {
		casValidatingChunkReaderValidationsSizeMismatch.Inc()
		return status.Errorf(codes.Internal, "Buffer is %d bytes in size, while %d bytes were expected", r.sizeBytes, expectedSizeBytes)
	}
	expectedChecksum := r.digest.GetHashBytes()
	if actualChecksum := r.hasher.Sum(nil); !bytes.Equal(actualChecksum, expectedChecksum) {
		casValidatingChunkReaderValidationsHashMismatch.Inc()
		return status.Errorf(codes.Internal, "Buffer has checksum %s, while %s was expected", fasthex.EncodeToString(actualChecksum), fasthex.EncodeToString(expectedChecksum))
	}
	casValidatingChunkReaderValidationsSuccess.Inc()
	return io.EOF
}

func (r *casValidatingChunkReader) Read() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}
	chunk, err := r.r.Read()
	if err == io.EOF {
		r.err = r.validate()
		return nil, r.err
	} else if err != nil {
		r.err = err
		return nil, err
	}

	r.sizeBytes += int64(len(chunk))
	casValidatingChunkReaderBytesRead.Add(float64(len(chunk)))
	if r.sizeBytes > r.digest.GetSizeBytes() {
		// Fail early, as data past the end of the object can
		// never match.
		casValidatingChunkReaderValidationsSizeMismatch.Inc()
		r.err = status.Errorf(codes.Internal, "Buffer is at least %d bytes in size, while %d bytes were expected", r.sizeBytes, r.digest.GetSizeBytes())
		return nil, r.err
	}
	r.hasher.Write(chunk)
	return chunk, nil
}

func (r *casValidatingChunkReader) Close() {
	r.r.Close()
}
