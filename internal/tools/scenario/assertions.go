package scenario

import (
	"fmt"
	"log"
)

// AssertionMode controls how failed expectations are reported.
type AssertionMode int

const (
	// AssertionStrict fails the scenario on the first unmet expectation.
	AssertionStrict AssertionMode = iota
	// AssertionLogOnly logs unmet expectations and keeps running.
	AssertionLogOnly
)

// Assertions reports scenario expectations according to Mode.
type Assertions struct {
	Mode   AssertionMode
	Logger *log.Logger
}

// Failf always returns an error; it is used for malformed steps.
func (a Assertions) Failf(format string, args ...any) error {
	return fmt.Errorf(format, args...)
}

// Assertf returns an error in strict mode and logs otherwise.
func (a Assertions) Assertf(format string, args ...any) error {
	if a.Mode == AssertionStrict {
		return fmt.Errorf(format, args...)
	}
	if a.Logger != nil {
		a.Logger.Printf("assertion: "+format, args...)
	}
	return nil
}
