// Package trace records when each LGL function call starts and stops.
//
// A Recorder is created per run when tracing is requested and handed to
// the evaluator as its Tracer. After a successful run the recorded Log is
// written to a CSV file (optionally compressed) or saved to a database.
package trace

import (
	"fmt"
	"time"
)

// Phase is either Start or Stop.
type Phase string

const (
	Start Phase = "start"
	Stop  Phase = "stop"
)

// ParsePhase accepts exactly "start" or "stop".
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case Start, Stop:
		return Phase(s), nil
	}
	return "", fmt.Errorf("unknown phase %q", s)
}

// Header is the first line of every trace file.
const Header = "id,timestamp,function_name,event"

// TimestampLayout is the layout of the timestamp column.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// Event is one start or stop record. Start and stop of the same call share an ID.
type Event struct {
	ID       int
	Time     time.Time
	Function string
	Phase    Phase
}

// Fields returns the event as the four columns of a trace file row.
func (e Event) Fields() []string {
	return []string{
		fmt.Sprintf("%d", e.ID),
		e.Time.Format(TimestampLayout),
		e.Function,
		string(e.Phase),
	}
}

// Log is an append-only, ordered list of events.
type Log []Event
