package mock

//go:generate mockgen -destination blobstore_buffer.go -package mock github.com/buildbarn/bb-blake3/pkg/blobstore/buffer ChunkReader
//go:generate mockgen -destination hash.go -package mock hash Hash
