package messages

import (
	"time"

	"github.com/fragmede/ingest/internal/source"
)

// View transition messages.
type (
	SwitchSourceMsg struct{ Index int }
	RefreshMsg      struct{}
)

// Data messages.
type (
	RecordLoadedMsg struct {
		Source string
		Record *source.Record
		Err    error
		Took   time.Duration
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
