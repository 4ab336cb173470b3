package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess       = 0 // Analysis completed within limits
	ExitBiasOverLimit = 1 // An equality difference exceeded --fail-above
	ExitError         = 2 // Configuration or runtime error
)

// BiasThresholdError indicates that the analysis ran successfully, but at
// least one model family's equality difference exceeded the limit.
type BiasThresholdError struct {
	Message string
}

func (e *BiasThresholdError) Error() string {
	return e.Message
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var biasErr *BiasThresholdError
		if errors.As(err, &biasErr) {
			os.Exit(ExitBiasOverLimit)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
