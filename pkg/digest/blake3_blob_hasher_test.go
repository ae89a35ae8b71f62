package digest_test

import (
	"encoding/hex"
	"testing"

	"github.com/buildbarn/bb-blake3/pkg/digest"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestBLAKE3Hasher(t *testing.T) {
	t.Run("SumDoesNotFinalize", func(t *testing.T) {
		h := digest.NewBLAKE3Hasher(32)
		require.Equal(t, 32, h.Size())
		require.Equal(t, 64, h.BlockSize())

		h.Write([]byte("ab"))
		h.Sum(nil)
		h.Write([]byte("c"))
		require.Equal(
			t,
			"prefix6437b3ac38465133ffb63b75273a8db548c558465d79db03fd359c6cd5bd9d85",
			"prefix"+hex.EncodeToString(h.Sum(nil)))
		require.Equal(
			t,
			append([]byte("prefix"), h.Sum(nil)...),
			h.Sum([]byte("prefix")))
	})

	t.Run("Reset", func(t *testing.T) {
		h := digest.NewBLAKE3Hasher(16)
		h.Write([]byte("Hello"))
		h.Reset()
		h.Write([]byte("abc"))
		require.Equal(t, "6437b3ac38465133ffb63b75273a8db5", hex.EncodeToString(h.Sum(nil)))
	})

	t.Run("Keyed", func(t *testing.T) {
		_, err := digest.NewKeyedBLAKE3Hasher([]byte("short"), 32)
		require.Equal(t, status.Error(codes.InvalidArgument, "Key is 5 bytes in size, while 32 bytes were expected"), err)

		h, err := digest.NewKeyedBLAKE3Hasher([]byte("whats the Elvish word for friend"), 32)
		require.NoError(t, err)
		require.Equal(t, "92b2b75604ed3c761f9d6f62392c8a9227ad0ea3f09573e783f1498a4ed60d26", hex.EncodeToString(h.Sum(nil)))

		h.Write([]byte{0})
		h.Reset()
		require.Equal(t, "92b2b75604ed3c761f9d6f62392c8a9227ad0ea3f09573e783f1498a4ed60d26", hex.EncodeToString(h.Sum(nil)))
	})

	t.Run("DeriveKey", func(t *testing.T) {
		h := digest.NewDeriveKeyBLAKE3Hasher("BLAKE3 2019-12-27 16:29:52 test vectors context", 32)
		h.Write([]byte{0})
		require.Equal(t, "b3e2e340a117a499c6cf2398a19ee0d29cca2bb7404c73063382693bf66cb06c", hex.EncodeToString(h.Sum(nil)))
	})

	t.Run("Generator", func(t *testing.T) {
		h, err := digest.NewKeyedBLAKE3Hasher([]byte("whats the Elvish word for friend"), 32)
		require.NoError(t, err)
		g := digest.NewBLAKE3Generator("netbsd9", h)
		g.Write([]byte{0})
		require.Equal(
			t,
			digest.MustNewDigest("netbsd9", "B3:6d7878dfff2f485635d39013278ae14f1454b8c0a3a2d34bc1ab38228a80c95b", 1),
			g.Sum())
	})
}
