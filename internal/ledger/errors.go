package ledger

import "fmt"

// CorruptError is returned when a ledger file exists but cannot be read or parsed
type CorruptError struct {
	Path   string
	Backup string // set when the bad file was preserved under a new name
	Err    error
}

func (e *CorruptError) Error() string {
	if e.Backup != "" {
		return fmt.Sprintf("ledger %s is corrupt (preserved as %s): %v", e.Path, e.Backup, e.Err)
	}
	return fmt.Sprintf("ledger %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}
