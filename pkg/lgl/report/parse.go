// Package report turns a trace log into per-function call statistics.
package report

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	lerrors "github.com/sambeau/lgl/pkg/lgl/errors"
	"github.com/sambeau/lgl/pkg/lgl/trace"
)

// timestamp layouts tried before falling back to dateparse.
// The second is what a writer produces when the fraction is zero and omitted.
var layouts = []string{
	trace.TimestampLayout,
	"2006-01-02 15:04:05",
}

// Parse reads a trace log: a header line, then rows of
// id,timestamp,function_name,phase. The first line is always the header.
func Parse(r io.Reader) (trace.Log, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var events trace.Log
	header := true
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			var perr *csv.ParseError
			if stderrors.As(err, &perr) {
				line = perr.Line
			}
			return nil, malformed(line, err.Error())
		}
		line, _ := cr.FieldPos(0)
		if header {
			header = false
			continue
		}

		e, err := parseRecord(record)
		if err != nil {
			return nil, malformed(line, err.Error())
		}
		events = append(events, e)
	}
	return events, nil
}

// ParseFile reads a trace file, decompressing .gz and .zst files.
func ParseFile(path string) (trace.Log, error) {
	rc, err := trace.Open(path)
	if err != nil {
		return nil, lerrors.New("IO-0001", map[string]any{"Path": path, "GoError": err.Error()})
	}
	defer rc.Close()

	events, err := Parse(rc)
	if err != nil {
		var lerr *lerrors.LGLError
		if stderrors.As(err, &lerr) {
			return nil, lerr.WithFile(path)
		}
		return nil, err
	}
	return events, nil
}

func parseRecord(record []string) (trace.Event, error) {
	if len(record) != 4 {
		return trace.Event{}, fmt.Errorf("%d fields, want 4", len(record))
	}
	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	id, err := strconv.Atoi(record[0])
	if err != nil {
		return trace.Event{}, fmt.Errorf("id %q is not a number", record[0])
	}
	ts, err := parseTimestamp(record[1])
	if err != nil {
		return trace.Event{}, err
	}
	if record[2] == "" {
		return trace.Event{}, fmt.Errorf("empty function name")
	}
	phase, err := trace.ParsePhase(record[3])
	if err != nil {
		return trace.Event{}, err
	}

	return trace.Event{ID: id, Time: ts, Function: record[2], Phase: phase}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := dateparse.ParseIn(s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %v", s, err)
	}
	return t, nil
}

func malformed(line int, reason string) error {
	return lerrors.NewWithLine(lerrors.CodeMalformedTrace, line, map[string]any{"Reason": reason})
}
