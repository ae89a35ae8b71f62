package util

import (
	"bytes"
	"io/ioutil"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/go-jsonnet"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// UnmarshalConfigurationFromFile reads a Jsonnet file, evaluates it
// and unmarshals the output into a configuration structure. Environment
// variables are made available to the Jsonnet code through
// std.extVar(). Fields that are not part of the configuration
// structure are rejected.
func UnmarshalConfigurationFromFile(path string, configuration interface{}) error {
	jsonnetInput, err := ioutil.ReadFile(path)
	if err != nil {
		return StatusWrap(err, "Failed to read file contents")
	}
	return UnmarshalConfigurationFromSnippet(path, string(jsonnetInput), os.Environ(), configuration)
}

// UnmarshalConfigurationFromSnippet is identical to
// UnmarshalConfigurationFromFile, except that it operates on Jsonnet
// code that has already been loaded. Environment variables are
// provided in "key=value" form.
func UnmarshalConfigurationFromSnippet(filename string, snippet string, environment []string, configuration interface{}) error {
	vm := jsonnet.MakeVM()
	for _, env := range environment {
		if parts := strings.SplitN(env, "=", 2); len(parts) == 2 {
			vm.ExtVar(parts[0], parts[1])
		}
	}
	jsonnetOutput, err := vm.EvaluateSnippet(filename, snippet)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to evaluate configuration: %s", err)
	}

	decoder := json.NewDecoder(bytes.NewBufferString(jsonnetOutput))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(configuration); err != nil {
		return status.Errorf(codes.InvalidArgument, "Failed to unmarshal configuration: %s", err)
	}
	return nil
}
