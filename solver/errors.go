package solver

import "github.com/pkg/errors"

// ContractError signals kind-3 failures: programmer contract violations
// such as an out-of-range variable, an oversized clause, or an unrecognized
// strategy token. These are never returned as ordinary errors - the caller
// misused the API, so the orchestrator aborts with a diagnostic instead of
// asking callers to check yet another error return on every hot-path call.
type ContractError struct {
	Code string
	err  error
}

func (e *ContractError) Error() string { return e.err.Error() }

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *ContractError) Unwrap() error { return e.err }

func newContractError(code, format string, args ...interface{}) *ContractError {
	return &ContractError{Code: code, err: errors.Errorf(format, args...)}
}

// raiseContract panics with a *ContractError; the only sanctioned way for
// the orchestrator to signal a kind-3 failure (§7).
func raiseContract(code, format string, args ...interface{}) {
	panic(newContractError(code, format, args...))
}

const (
	codeClauseTooLong    = "clause-too-long"
	codeVarOutOfRange    = "var-out-of-range"
	codeAddAfterBlocking = "add-after-elimination-blocking"
	codeUnknownToken     = "unknown-strategy-token"
	codeMissingSQL       = "missing-sql-support"
	codeBadAssumption    = "bad-assumption-literal"
)

// MaxLits is the hard per-clause literal limit from §4.1 step 1.
const MaxLits = 1 << 28

// recoverContract converts a *ContractError panic raised inside fn into a
// normal error return, for call sites inside this package that need to
// report rather than crash; it currently has no callers. Anything else
// re-panics: only contract violations are caught this way.
func recoverContract(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if ce, ok := r.(*ContractError); ok {
				err = ce
				return
			}
			panic(r)
		}
	}()
	fn()
	return nil
}
