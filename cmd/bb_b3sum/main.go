// Command bb_b3sum prints BLAKE3 checksums of files, similar to
// sha256sum. Files may be hashed in keyed or key derivation mode.
// Output is printed either as a plain hash or as a digest that can be
// used by REv2 clients.
package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/buildbarn/bb-blake3/pkg/b3sum"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func main() {
	app := &cli.App{
		Name:      "bb_b3sum",
		Usage:     "Print BLAKE3 checksums of files",
		ArgsUsage: "[FILE...]",
		Flags:     b3sum.Flags,
		Action:    run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(l)
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

func run(c *cli.Context) error {
	configuration, err := b3sum.NewConfigurationFromFlags(c)
	if err != nil {
		return err
	}
	logger, err := newLogger(configuration.LogLevel)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Invalid log level %#v: %s", configuration.LogLevel, err)
	}
	defer logger.Sync()

	summer, err := b3sum.NewSummer(&configuration)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return cli.Exit("", 1)
	}

	paths := c.Args().Slice()
	if len(paths) == 0 {
		paths = []string{"-"}
	}
	logger.Debug("Hashing files", zap.Int("count", len(paths)), zap.Int("output_size_bytes", configuration.OutputSizeBytes))

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	failed := 0
	for _, path := range paths {
		checksum, err := summer.SumFile(path)
		if err != nil {
			logger.Error("Failed to compute checksum", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}
		fmt.Fprintln(w, b3sum.FormatLine(checksum, path))
	}
	if failed > 0 {
		w.Flush()
		return cli.Exit("", 1)
	}
	return nil
}
