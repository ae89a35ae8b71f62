package b3sum

import (
	"github.com/urfave/cli/v2"
)

// Flags that may be used to override fields of the configuration on
// the command line.
var Flags = []cli.Flag{
	&cli.StringFlag{
		Name:  "config",
		Usage: "Jsonnet configuration file",
	},
	&cli.StringFlag{
		Name:  "key",
		Usage: "Use keyed hashing, with a hexadecimal key of 32 bytes",
	},
	&cli.StringFlag{
		Name:  "derive-key",
		Usage: "Use key derivation mode, with the provided context string",
	},
	&cli.IntFlag{
		Name:  "length",
		Usage: "Number of bytes of output to compute",
	},
	&cli.IntFlag{
		Name:  "chunk-size",
		Usage: "Size of the chunks in which files are read, in bytes",
	},
	&cli.StringFlag{
		Name:  "instance",
		Usage: "Instance name to embed in digests",
	},
	&cli.BoolFlag{
		Name:  "digest",
		Usage: "Print digests in ${hash}-${size}-${instance} form",
	},
	&cli.StringFlag{
		Name:  "log-level",
		Usage: "Minimum severity of log messages",
	},
}

// NewConfigurationFromFlags loads the configuration file named by the
// "config" flag, and overrides its fields with the values of any
// other flags that are set explicitly.
func NewConfigurationFromFlags(c *cli.Context) (Configuration, error) {
	configuration, err := LoadConfiguration(c.String("config"))
	if err != nil {
		return Configuration{}, err
	}
	if c.IsSet("key") {
		configuration.Key = c.String("key")
	}
	if c.IsSet("derive-key") {
		configuration.DeriveKeyContext = c.String("derive-key")
	}
	if c.IsSet("length") {
		configuration.OutputSizeBytes = c.Int("length")
	}
	if c.IsSet("chunk-size") {
		configuration.ChunkSizeBytes = c.Int("chunk-size")
	}
	if c.IsSet("instance") {
		configuration.InstanceName = c.String("instance")
	}
	if c.IsSet("digest") {
		configuration.PrintDigest = c.Bool("digest")
	}
	if c.IsSet("log-level") {
		configuration.LogLevel = c.String("log-level")
	}
	return configuration, nil
}
