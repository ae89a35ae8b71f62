// Package b3sum implements the computation and formatting of BLAKE3
// checksums of files, as done by bb_b3sum.
package b3sum

import (
	"hash"
	"io"
	"io/ioutil"
	"os"

	"github.com/buildbarn/bb-blake3/pkg/blobstore/buffer"
	"github.com/buildbarn/bb-blake3/pkg/digest"
	"github.com/buildbarn/bb-blake3/pkg/util"
	fasthex "github.com/tmthrgd/go-hex"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Summer computes BLAKE3 checksums of streams of data, in the mode
// indicated by its configuration.
type Summer struct {
	newHasher   func() hash.Hash
	instance    string
	chunkPolicy buffer.ChunkPolicy
	printDigest bool
	stdin       io.Reader
}

// NewSummer creates a Summer based on a configuration. The
// configuration is validated, meaning that any errors related to keys
// or sizes are reported before any data is hashed.
func NewSummer(configuration *Configuration) (*Summer, error) {
	outputSizeBytes := configuration.OutputSizeBytes
	if outputSizeBytes <= 0 {
		return nil, status.Errorf(codes.InvalidArgument, "Invalid output length: %d bytes", outputSizeBytes)
	}
	if configuration.PrintDigest && (outputSizeBytes < digest.BLAKE3MinimumSizeBytes || outputSizeBytes > digest.BLAKE3MaximumSizeBytes) {
		return nil, status.Errorf(
			codes.InvalidArgument,
			"Digests require an output length between %d and %d bytes, while %d bytes were requested",
			digest.BLAKE3MinimumSizeBytes,
			digest.BLAKE3MaximumSizeBytes,
			outputSizeBytes)
	}
	chunkPolicy, err := buffer.NewChunkPolicyFromSize(configuration.ChunkSizeBytes)
	if err != nil {
		return nil, err
	}

	s := &Summer{
		instance:    configuration.InstanceName,
		chunkPolicy: chunkPolicy,
		printDigest: configuration.PrintDigest,
		stdin:       os.Stdin,
	}
	switch {
	case configuration.Key != "" && configuration.DeriveKeyContext != "":
		return nil, status.Error(codes.InvalidArgument, "Keyed hashing and key derivation cannot be used at the same time")
	case configuration.Key != "":
		key, err := fasthex.DecodeString(configuration.Key)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "Invalid key: %s", err)
		}
		// Validate the key once, so that creating hashers
		// afterwards cannot fail.
		if _, err := digest.NewKeyedBLAKE3Hasher(key, outputSizeBytes); err != nil {
			return nil, err
		}
		s.newHasher = func() hash.Hash {
			h, _ := digest.NewKeyedBLAKE3Hasher(key, outputSizeBytes)
			return h
		}
	case configuration.DeriveKeyContext != "":
		context := configuration.DeriveKeyContext
		s.newHasher = func() hash.Hash {
			return digest.NewDeriveKeyBLAKE3Hasher(context, outputSizeBytes)
		}
	default:
		s.newHasher = func() hash.Hash {
			return digest.NewBLAKE3Hasher(outputSizeBytes)
		}
	}
	return s, nil
}

// SumReader computes the checksum of all data contained in a reader.
// The checksum is returned as a hexadecimal string, or as a digest
// string if configured. The reader is closed afterwards.
func (s *Summer) SumReader(r io.ReadCloser) (string, error) {
	chunkReader := buffer.NewChunkReaderFromReader(r, s.chunkPolicy)
	if s.printDigest {
		generator := digest.NewBLAKE3Generator(s.instance, s.newHasher())
		if err := buffer.IntoWriter(chunkReader, generator); err != nil {
			return "", err
		}
		return generator.Sum().String(), nil
	}

	hasher := s.newHasher()
	if err := buffer.IntoWriter(chunkReader, hasher); err != nil {
		return "", err
	}
	return fasthex.EncodeToString(hasher.Sum(nil)), nil
}

// SumFile computes the checksum of a file. The path "-" refers to
// standard input.
func (s *Summer) SumFile(path string) (string, error) {
	if path == "-" {
		return s.SumReader(ioutil.NopCloser(s.stdin))
	}
	f, err := os.Open(path)
	if err != nil {
		return "", util.StatusWrapf(err, "Failed to open %#v", path)
	}
	checksum, err := s.SumReader(f)
	if err != nil {
		return "", util.StatusWrapf(err, "Failed to hash %#v", path)
	}
	return checksum, nil
}

// FormatLine formats the checksum of a file in the same way as other
// checksum utilities, such as sha256sum.
func FormatLine(checksum string, name string) string {
	return checksum + "  " + name
}
