package ingest

import "errors"

// ErrAlreadyEnded is returned by EndSession when the session has already
// transitioned to ended (§4.11: "End is idempotent-rejected if already ended").
var ErrAlreadyEnded = errors.New("session already ended")
