package attendance

import (
	"errors"
	"fmt"
)

// ErrInputFormat indicates the raw input could not be interpreted as a
// tabular attendance sheet at all. Construction aborts and no partial
// record set is retained.
var ErrInputFormat = errors.New("input is not a tabular attendance sheet")

// UnknownMetricError is returned when a caller asks for a ranking over a
// metric column that is absent from the record set. It is local to the
// failing call; other views remain computable.
type UnknownMetricError struct {
	Metric string
}

func (e *UnknownMetricError) Error() string {
	return fmt.Sprintf("unknown metric column: %q", e.Metric)
}
