package buffer

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ChunkPolicy is provided as an argument to the constructors of
// ChunkReader. It specifies the desired size of chunks returned by
// ChunkReader.Read().
type ChunkPolicy struct {
	minimumSizeBytes int
	defaultSizeBytes int
	maximumSizeBytes int
}

// ChunkSizeExactly can be used if the ChunkReader should return chunks
// of an exact size. Only the final chunk that is returned may be
// smaller than the specified size. This policy may introduce overhead
// of copying data into contiguous buffers.
func ChunkSizeExactly(sizeBytes int) ChunkPolicy {
	return ChunkPolicy{
		minimumSizeBytes: sizeBytes,
		defaultSizeBytes: sizeBytes,
		maximumSizeBytes: sizeBytes,
	}
}

// ChunkSizeAtMost can be used if the ChunkReader is permitted to return
// chunks that are smaller than the specified size. This policy performs
// the least amount of copying of data.
func ChunkSizeAtMost(sizeBytes int) ChunkPolicy {
	return ChunkPolicy{
		minimumSizeBytes: 1,
		defaultSizeBytes: sizeBytes,
		maximumSizeBytes: sizeBytes,
	}
}

// NewChunkPolicyFromSize is used by configuration code to obtain a
// ChunkPolicy for a user provided chunk size. Chunks are aligned to
// the requested size to make the data passed to the hasher predictable.
func NewChunkPolicyFromSize(sizeBytes int) (ChunkPolicy, error) {
	if sizeBytes <= 0 {
		return ChunkPolicy{}, status.Errorf(codes.InvalidArgument, "Invalid chunk size: %d bytes", sizeBytes)
	}
	return ChunkSizeExactly(sizeBytes), nil
}
