package util_test

import (
	"testing"

	"github.com/buildbarn/bb-blake3/pkg/util"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusWrap(t *testing.T) {
	require.Equal(
		t,
		status.Error(codes.InvalidArgument, "Failed to hash file: Key is 16 bytes in size, while 32 bytes were expected"),
		util.StatusWrap(
			status.Error(codes.InvalidArgument, "Key is 16 bytes in size, while 32 bytes were expected"),
			"Failed to hash file"))

	require.Equal(
		t,
		status.Error(codes.Internal, "File \"foo.txt\": Buffer is 5 bytes in size, while 6 bytes were expected"),
		util.StatusWrapf(
			status.Error(codes.Internal, "Buffer is 5 bytes in size, while 6 bytes were expected"),
			"File %#v", "foo.txt"))
}
