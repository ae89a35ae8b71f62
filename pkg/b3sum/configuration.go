package b3sum

import (
	"github.com/buildbarn/bb-blake3/pkg/util"
)

// Configuration of bb_b3sum. It may be loaded from a Jsonnet file,
// after which individual fields may be overridden through command line
// flags.
type Configuration struct {
	// Hexadecimal key of 32 bytes. When set, keyed hashing is used.
	Key string `json:"key"`
	// Context string. When set, BLAKE3's key derivation mode is
	// used, treating the input as key material.
	DeriveKeyContext string `json:"deriveKeyContext"`
	// Number of bytes of output to compute.
	OutputSizeBytes int `json:"outputSizeBytes"`
	// Size of the chunks in which input files are read.
	ChunkSizeBytes int `json:"chunkSizeBytes"`
	// Instance name that is embedded in printed digests.
	InstanceName string `json:"instanceName"`
	// Print digests in "${hash}-${size}-${instance}" form, instead
	// of plain hexadecimal hashes.
	PrintDigest bool `json:"printDigest"`
	// Minimum severity of log messages, e.g. "info" or "debug".
	LogLevel string `json:"logLevel"`
}

// DefaultConfiguration returns the configuration that is used when no
// configuration file is provided.
func DefaultConfiguration() Configuration {
	return Configuration{
		OutputSizeBytes: 32,
		ChunkSizeBytes:  64 * 1024,
		LogLevel:        "info",
	}
}

// LoadConfiguration loads a configuration file on top of the default
// configuration. An empty path yields the default configuration.
func LoadConfiguration(path string) (Configuration, error) {
	configuration := DefaultConfiguration()
	if path != "" {
		if err := util.UnmarshalConfigurationFromFile(path, &configuration); err != nil {
			return Configuration{}, util.StatusWrapf(err, "Failed to read configuration from %#v", path)
		}
	}
	return configuration, nil
}
