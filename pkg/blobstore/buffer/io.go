package buffer

import (
	"io"

	"github.com/buildbarn/bb-blake3/pkg/util"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToByteSlice reads all data from a ChunkReader and returns it as a
// single contiguous byte slice. An error is returned if the data
// exceeds a provided maximum size. The ChunkReader is closed
// afterwards.
func ToByteSlice(r ChunkReader, maximumSizeBytes int) ([]byte, error) {
	defer r.Close()

	var data []byte
	for {
		chunk, err := r.Read()
		if err == io.EOF {
			if data == nil {
				data = []byte{}
			}
			return data, nil
		} else if err != nil {
			return nil, err
		}
		if len(data)+len(chunk) > maximumSizeBytes {
			return nil, status.Errorf(codes.InvalidArgument, "Buffer is %d bytes in size, while a maximum of %d bytes is permitted", len(data)+len(chunk), maximumSizeBytes)
		}
		data = append(data, chunk...)
	}
}

// IntoWriter copies all data from a ChunkReader into an io.Writer,
// such as a hash.Hash. The ChunkReader is closed afterwards.
func IntoWriter(r ChunkReader, w io.Writer) error {
	defer r.Close()

	for {
		chunk, err := r.Read()
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if _, err := w.Write(chunk); err != nil {
			return util.StatusWrap(err, "Failed to write data")
		}
	}
}
