package digest_test

import (
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-blake3/pkg/digest"
	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNewDigest(t *testing.T) {
	t.Run("BLAKE3", func(t *testing.T) {
		d, err := digest.NewDigest("fedora29", "B3:af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", 0)
		require.NoError(t, err)
		require.Equal(t, "fedora29", d.GetInstance())
		require.Equal(t, "B3:af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", d.GetHashString())
		require.Equal(t, int64(0), d.GetSizeBytes())
		require.Equal(t, []byte{
			0xaf, 0x13, 0x49, 0xb9, 0xf5, 0xf9, 0xa1, 0xa6, 0xa0, 0x40, 0x4d, 0xea, 0x36, 0xdc, 0xc9, 0x49,
			0x9b, 0xcb, 0x25, 0xc9, 0xad, 0xc1, 0x12, 0xb7, 0xcc, 0x9a, 0x93, 0xca, 0xe4, 0x1f, 0x32, 0x62,
		}, d.GetHashBytes())
		require.Equal(t, "B3:af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262-0", d.GetKey(digest.KeyWithoutInstance))
		require.Equal(t, "B3:af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262-0-fedora29", d.String())
	})

	t.Run("BLAKE3Truncated", func(t *testing.T) {
		d, err := digest.NewDigest("", "B3:73c932bec255516b229488d6af3d29fc", 8192)
		require.NoError(t, err)
		require.Equal(t, "", d.GetInstance())
		require.Equal(t, int64(8192), d.GetSizeBytes())
		require.Len(t, d.GetHashBytes(), 16)
	})

	t.Run("SHA256", func(t *testing.T) {
		d, err := digest.NewDigest("ubuntu1804", "1d1f71aecd9b2d8127e5a91fc871833fffe58c5c63aceed9f6fd0b71fe732504", 16)
		require.NoError(t, err)
		require.Equal(t, "1d1f71aecd9b2d8127e5a91fc871833fffe58c5c63aceed9f6fd0b71fe732504-16-ubuntu1804", d.String())
	})

	t.Run("NegativeSize", func(t *testing.T) {
		_, err := digest.NewDigest("", "8b1a9953c4611296a827abf8c47804d7", -1)
		require.Equal(t, status.Error(codes.InvalidArgument, "Invalid digest size: -1 bytes"), err)
	})

	t.Run("UnknownHashLength", func(t *testing.T) {
		_, err := digest.NewDigest("", "8b1a9953c4611296a827abf8c47804d", 5)
		require.Equal(t, status.Error(codes.InvalidArgument, "Unknown digest hash length: 31 characters"), err)
	})

	t.Run("BLAKE3TooShort", func(t *testing.T) {
		_, err := digest.NewDigest("", "B3:af1349b9f5f9a1a6a0404dea36dcc9", 0)
		require.Equal(t, status.Error(codes.InvalidArgument, "Invalid BLAKE3 digest hash length: 30 characters"), err)
	})

	t.Run("BLAKE3OddLength", func(t *testing.T) {
		_, err := digest.NewDigest("", "B3:af1349b9f5f9a1a6a0404dea36dcc9499", 0)
		require.Equal(t, status.Error(codes.InvalidArgument, "Invalid BLAKE3 digest hash length: 33 characters"), err)
	})

	t.Run("NonHexadecimal", func(t *testing.T) {
		_, err := digest.NewDigest("", "B3:Af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262", 0)
		require.Equal(t, status.Error(codes.InvalidArgument, "Non-hexadecimal character in digest hash: U+0041 'A'"), err)
	})
}

func TestNewDigestFromPartialDigest(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		partialDigest := &remoteexecution.Digest{
			Hash:      "B3:6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85",
			SizeBytes: 3,
		}
		d, err := digest.NewDigestFromPartialDigest("debian10", partialDigest)
		require.NoError(t, err)
		require.Equal(t, digest.MustNewDigest("debian10", "B3:6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85", 3), d)
		require.True(t, proto.Equal(partialDigest, d.GetPartialDigest()))

		derived, err := d.NewDerivedDigest(&remoteexecution.Digest{
			Hash:      "8b1a9953c4611296a827abf8c47804d7",
			SizeBytes: 5,
		})
		require.NoError(t, err)
		require.Equal(t, digest.MustNewDigest("debian10", "8b1a9953c4611296a827abf8c47804d7", 5), derived)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := digest.NewDigestFromPartialDigest("debian10", nil)
		require.Equal(t, status.Error(codes.InvalidArgument, "No digest provided"), err)
	})
}

func TestNewDigestFromBytestreamPath(t *testing.T) {
	t.Run("WithInstance", func(t *testing.T) {
		d, err := digest.NewDigestFromBytestreamPath("centos7/blobs/B3:6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85/3")
		require.NoError(t, err)
		require.Equal(t, digest.MustNewDigest("centos7", "B3:6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85", 3), d)
	})

	t.Run("WithoutInstance", func(t *testing.T) {
		d, err := digest.NewDigestFromBytestreamPath("/blobs/8b1a9953c4611296a827abf8c47804d7/5")
		require.NoError(t, err)
		require.Equal(t, digest.MustNewDigest("", "8b1a9953c4611296a827abf8c47804d7", 5), d)
	})

	t.Run("InvalidScheme", func(t *testing.T) {
		_, err := digest.NewDigestFromBytestreamPath("centos7/uploads/8b1a9953c4611296a827abf8c47804d7/5")
		require.Equal(t, status.Error(codes.InvalidArgument, "Invalid resource naming scheme"), err)
		_, err = digest.NewDigestFromBytestreamPath("blobs/8b1a9953c4611296a827abf8c47804d7/five")
		require.Equal(t, status.Error(codes.InvalidArgument, "Invalid resource naming scheme"), err)
	})
}

func TestDigestNewGenerator(t *testing.T) {
	for hash, body := range map[string]string{
		"8b1a9953c4611296a827abf8c47804d7":                                    "Hello",
		"a54d88e06612d820bc3be72877c74f257b561b19":                            "This is a test",
		"1d1f71aecd9b2d8127e5a91fc871833fffe58c5c63aceed9f6fd0b71fe732504":    "And another test",
		"B3:6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85": "abc",
		"B3:6437b3ac38465133ffb63b75273a8db5":                                 "abc",
		"B3:6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d851fb250ae7393f5d02813b65d521a0d492d9ba09cf7ce7f4cffd900f23374bf0bc08a1fb0b38ed276181ccbd9f7b7edbddf9f86404ad7929605f6ffa3fb1ac87983105f01": "abc",
	} {
		expected := digest.MustNewDigest("freebsd12", hash, int64(len(body)))
		g := expected.NewGenerator()
		for i := 0; i < len(body); i++ {
			n, err := g.Write([]byte(body[i : i+1]))
			require.NoError(t, err)
			require.Equal(t, 1, n)
		}
		require.Equal(t, expected, g.Sum())
	}
}
