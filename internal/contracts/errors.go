package contracts

import (
	"errors"
	"fmt"
)

// ErrPartialData is returned by an adapter together with a non-empty
// payload when it recovered some but not all of its data. The policy
// wrapper treats it as a terminal partial result and does not retry,
// since retrying would throw away the data already in hand.
var ErrPartialData = errors.New("partial data")

// ConfigError reports a date that cannot be resolved because its year has
// no holiday table. Fatal to the run; there is no silent "no holidays"
// fallback.
type ConfigError struct {
	Year int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("no holiday table configured for year %d", e.Year)
}

// DomainError reports invalid numeric input to the basis analyzer. Not
// retried; the offending contract is excluded from the output.
type DomainError struct {
	Contract string
	Reason   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("contract %s: %s", e.Contract, e.Reason)
}

// TransientFetchError reports a network or timeout failure from one
// adapter attempt. Absorbed entirely by the retry policy: it surfaces past
// the policy only as a failed CollectionResult, never as an error value.
type TransientFetchError struct {
	Source string
	Err    error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("fetch from %s: %v", e.Source, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

// OrchestratorError reports that the run date itself could not be
// established. Fatal: no snapshot is produced.
type OrchestratorError struct {
	Date string
	Err  error
}

func (e *OrchestratorError) Error() string {
	return fmt.Sprintf("cannot establish run date %s: %v", e.Date, e.Err)
}

func (e *OrchestratorError) Unwrap() error {
	return e.Err
}
