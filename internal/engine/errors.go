package engine

import "fmt"

// ContractViolation is a malformed candidate emitted by a strategy.
// The run aborts before the ledger is touched.
type ContractViolation struct {
	Strategy string
	Side     string // entry, exit
	Ticker   string
	Reason   string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("strategy %s emitted invalid %s candidate %q: %s", e.Strategy, e.Side, e.Ticker, e.Reason)
}

// PersistenceError is a failed report or ledger write.
// The previous ledger file is left intact.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
