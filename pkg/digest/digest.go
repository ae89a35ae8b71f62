package digest

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strconv"
	"strings"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	fasthex "github.com/tmthrgd/go-hex"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	// BLAKE3HashPrefix is prepended to the hexadecimal
	// representation of BLAKE3 hashes, as their lengths may collide
	// with those of other hashing algorithms.
	BLAKE3HashPrefix = "B3:"

	// BLAKE3MinimumSizeBytes is the smallest BLAKE3 hash size that
	// may be used as part of a digest.
	BLAKE3MinimumSizeBytes = 16
	// BLAKE3MaximumSizeBytes is the largest BLAKE3 hash size that
	// may be used as part of a digest. BLAKE3 can produce more
	// output, but there is no use for it in digests.
	BLAKE3MaximumSizeBytes = 128
)

// Digest holds the identification of an object stored in the Content
// Addressable Storage (CAS) or Action Cache (AC). The use of this
// object is preferred over remoteexecution.Digest for a couple of
// reasons.
//
// - Instances of these objects are guaranteed not to contain any
//   degenerate values. The hash has already been validated to be
//   hexadecimal. The size is non-negative.
// - They keep track of the instance as part of the digest, which allows
//   us to keep function signatures across the codebase simple.
// - They provide utility functions for deriving new digests from them.
//   This ensures that outputs of build actions automatically use the
//   same instance name and hashing algorithm.
//
// Because Digest objects are frequently used as keys (as part of
// caching data structures or to construct sets without duplicate
// values), this implementation immediately constructs a key
// representation upon creation. All functions that extract individual
// components (e.g., GetInstance(), GetHash*() and GetSizeBytes())
// operate directly on the key format.
type Digest struct {
	value string
}

var (
	// BadDigest is a default instance of Digest. It can, for
	// example, be used as a function return value for error cases.
	BadDigest Digest
)

// Unpack the individual hash, size and instance name fields from the
// string representation stored inside the Digest object.
func (d Digest) unpack() (int, int64, int) {
	// Extract the leading hash. The shortest hash that is
	// accepted is 32 hexadecimal characters in size.
	hashEnd := md5.Size * 2
	for d.value[hashEnd] != '-' {
		hashEnd++
	}

	// Extract the size stored in the middle.
	sizeBytes := int64(0)
	sizeBytesEnd := hashEnd + 1
	for d.value[sizeBytesEnd] != '-' {
		sizeBytes = sizeBytes*10 + int64(d.value[sizeBytesEnd]-'0')
		sizeBytesEnd++
	}

	return hashEnd, sizeBytes, sizeBytesEnd
}

// NewDigest constructs a Digest object from an instance name, hash and
// object size. The instance returned by this function is guaranteed to
// be non-degenerate.
func NewDigest(instance string, hash string, sizeBytes int64) (Digest, error) {
	// Validate the size.
	if sizeBytes < 0 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "Invalid digest size: %d bytes", sizeBytes)
	}

	// Validate the hash.
	hexHash := hash
	if strings.HasPrefix(hash, BLAKE3HashPrefix) {
		hexHash = hash[len(BLAKE3HashPrefix):]
		if l := len(hexHash); l%2 != 0 || l < BLAKE3MinimumSizeBytes*2 || l > BLAKE3MaximumSizeBytes*2 {
			return BadDigest, status.Errorf(codes.InvalidArgument, "Invalid BLAKE3 digest hash length: %d characters", l)
		}
	} else if l := len(hash); l != md5.Size*2 && l != sha1.Size*2 &&
		l != sha256.Size*2 && l != sha512.Size384*2 && l != sha512.Size*2 {
		return BadDigest, status.Errorf(codes.InvalidArgument, "Unknown digest hash length: %d characters", l)
	}
	for _, c := range hexHash {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return BadDigest, status.Errorf(codes.InvalidArgument, "Non-hexadecimal character in digest hash: %#U", c)
		}
	}
	return newDigestUnchecked(instance, hash, sizeBytes), nil
}

func newDigestUnchecked(instance string, hash string, sizeBytes int64) Digest {
	return Digest{
		value: fmt.Sprintf("%s-%d-%s", hash, sizeBytes, instance),
	}
}

// MustNewDigest constructs a Digest similar to NewDigest, but never
// returns an error. Instead, execution will abort if the resulting
// instance would be degenerate. Useful for unit testing.
func MustNewDigest(instance string, hash string, sizeBytes int64) Digest {
	d, err := NewDigest(instance, hash, sizeBytes)
	if err != nil {
		panic(err)
	}
	return d
}

// NewDigestFromPartialDigest constructs a Digest object from an
// instance name and a protocol-level digest object. The instance
// returned by this function is guaranteed to be non-degenerate.
func NewDigestFromPartialDigest(instance string, partialDigest *remoteexecution.Digest) (Digest, error) {
	if partialDigest == nil {
		return BadDigest, status.Error(codes.InvalidArgument, "No digest provided")
	}
	return NewDigest(instance, partialDigest.Hash, partialDigest.SizeBytes)
}

// NewDigestFromBytestreamPath creates a Digest from a string having one
// of the following two formats:
//
// - blobs/${hash}/${size}
// - ${instance}/blobs/${hash}/${size}
//
// This notation is used by Bazel to refer to files accessible through a
// gRPC Bytestream service.
func NewDigestFromBytestreamPath(path string) (Digest, error) {
	fields := strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
	l := len(fields)
	if (l != 3 && l != 4) || fields[l-3] != "blobs" {
		return BadDigest, status.Error(codes.InvalidArgument, "Invalid resource naming scheme")
	}
	size, err := strconv.ParseInt(fields[l-1], 10, 64)
	if err != nil {
		return BadDigest, status.Error(codes.InvalidArgument, "Invalid resource naming scheme")
	}
	instance := ""
	if l == 4 {
		instance = fields[0]
	}
	return NewDigest(instance, fields[l-2], size)
}

// NewDerivedDigest creates a Digest object that uses the same instance
// name as the one from which it is derived. This can be used to refer
// to inputs (command, directories, files) of an action.
func (d Digest) NewDerivedDigest(partialDigest *remoteexecution.Digest) (Digest, error) {
	return NewDigestFromPartialDigest(d.GetInstance(), partialDigest)
}

// GetPartialDigest encodes the digest into the format used by the remote
// execution protocol, so that it may be stored in messages returned to
// the client.
func (d Digest) GetPartialDigest() *remoteexecution.Digest {
	hashEnd, sizeBytes, _ := d.unpack()
	return &remoteexecution.Digest{
		Hash:      d.value[:hashEnd],
		SizeBytes: sizeBytes,
	}
}

// GetInstance returns the instance name of the object.
func (d Digest) GetInstance() string {
	_, _, sizeBytesEnd := d.unpack()
	return d.value[sizeBytesEnd+1:]
}

// GetHashBytes returns the hash of the object as a slice of bytes.
func (d Digest) GetHashBytes() []byte {
	hashString := strings.TrimPrefix(d.GetHashString(), BLAKE3HashPrefix)
	hashBytes, err := fasthex.DecodeString(hashString)
	if err != nil {
		panic("Failed to decode digest hash, even though its contents have already been validated")
	}
	return hashBytes
}

// GetHashString returns the hash of the object as a string.
func (d Digest) GetHashString() string {
	hashEnd, _, _ := d.unpack()
	return d.value[:hashEnd]
}

// GetSizeBytes returns the size of the object, in bytes.
func (d Digest) GetSizeBytes() int64 {
	_, sizeBytes, _ := d.unpack()
	return sizeBytes
}

// KeyFormat is an enumeration type that determines the format of object
// keys returned by Digest.GetKey().
type KeyFormat int

const (
	// KeyWithoutInstance lets Digest.GetKey() return a key that
	// does not include the name of the instance; only the hash and
	// the size.
	KeyWithoutInstance KeyFormat = iota
	// KeyWithInstance lets Digest.GetKey() return a key that
	// includes the hash, size and instance name.
	KeyWithInstance
)

// GetKey generates a string representation of the digest object that
// may be used as keys in hash tables.
func (d Digest) GetKey(format KeyFormat) string {
	switch format {
	case KeyWithoutInstance:
		_, _, sizeBytesEnd := d.unpack()
		return d.value[:sizeBytesEnd]
	case KeyWithInstance:
		return d.value
	default:
		panic("Invalid digest key format")
	}
}

func (d Digest) String() string {
	return d.GetKey(KeyWithInstance)
}

// NewHasher creates a standard hash.Hash object that may be used to
// compute a checksum of data. The hash.Hash object uses the same
// algorithm as the one that was used to create the digest, making it
// possible to validate data against a digest.
func (d Digest) NewHasher() hash.Hash {
	hash := d.GetHashString()
	if strings.HasPrefix(hash, BLAKE3HashPrefix) {
		return NewBLAKE3Hasher(len(hash[len(BLAKE3HashPrefix):]) / 2)
	}
	switch len(hash) {
	case md5.Size * 2:
		return md5.New()
	case sha1.Size * 2:
		return sha1.New()
	case sha256.Size * 2:
		return sha256.New()
	case sha512.Size384 * 2:
		return sha512.New384()
	case sha512.Size * 2:
		return sha512.New()
	default:
		panic("Digest hash is of unknown type")
	}
}

// NewGenerator creates a writer that may be used to compute digests of
// newly created files.
func (d Digest) NewGenerator() *Generator {
	hash := d.GetHashString()
	prefix := ""
	if strings.HasPrefix(hash, BLAKE3HashPrefix) {
		prefix = BLAKE3HashPrefix
	}
	return &Generator{
		instance:    d.GetInstance(),
		prefix:      prefix,
		partialHash: d.NewHasher(),
	}
}

// NewBLAKE3Generator creates a writer that computes BLAKE3 digests
// using a provided hasher. This may be used to compute digests using
// keyed hashing or key derivation, which cannot be inferred from an
// existing digest.
func NewBLAKE3Generator(instance string, hasher hash.Hash) *Generator {
	return &Generator{
		instance:    instance,
		prefix:      BLAKE3HashPrefix,
		partialHash: hasher,
	}
}

// Generator is a writer that may be used to compute digests of newly
// created files.
type Generator struct {
	instance    string
	prefix      string
	partialHash hash.Hash
	sizeBytes   int64
}

// Write a chunk of data from a newly created file into the state of the
// Generator.
func (dg *Generator) Write(p []byte) (int, error) {
	n, err := dg.partialHash.Write(p)
	dg.sizeBytes += int64(n)
	return n, err
}

// Sum creates a new digest based on the data written into the
// Generator.
func (dg *Generator) Sum() Digest {
	return newDigestUnchecked(
		dg.instance,
		dg.prefix+fasthex.EncodeToString(dg.partialHash.Sum(nil)),
		dg.sizeBytes)
}
