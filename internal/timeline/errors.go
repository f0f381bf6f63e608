package timeline

import (
	"fmt"
	"time"
)

// DataIntegrityError reports a span whose end precedes its start, which
// happens when the tracker's timestamps are not monotonic.
type DataIntegrityError struct {
	Status string
	Start  time.Time
	End    time.Time
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("timeline: negative duration in status %q (%s -> %s)",
		e.Status, e.Start.Format(time.RFC3339), e.End.Format(time.RFC3339))
}
