package ledger

import "errors"

// ErrPersistence wraps every store failure. The command that hit it left
// no state behind; hosts should answer with a transport-level error.
var ErrPersistence = errors.New("ledger store unavailable")
