package notify

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/oszuidwest/zwfm-demorecorder/internal/types"
	"github.com/oszuidwest/zwfm-demorecorder/internal/util"
)

// LogEntry is one line of the JSON-lines run log.
type LogEntry struct {
	Timestamp   string  `json:"timestamp"`
	Event       string  `json:"event"`
	RunID       string  `json:"run_id"`
	Name        string  `json:"name"`
	OutputFile  string  `json:"output_file,omitempty"`
	ExitCode    int     `json:"exit_code"`
	Frames      int     `json:"frames"`
	DurationSec float64 `json:"duration_sec"`
	Error       string  `json:"error,omitempty"`
}

// LogRun appends the run result to the log file at logPath.
func LogRun(logPath string, res types.RunResult) error {
	return appendLogEntry(logPath, LogEntry{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Event:       eventName(res),
		RunID:       res.RunID,
		Name:        res.Name,
		OutputFile:  res.OutputFile,
		ExitCode:    res.ExitCode,
		Frames:      res.Frames,
		DurationSec: res.Elapsed().Seconds(),
		Error:       res.Error,
	})
}

// appendLogEntry appends a JSON log entry to the file.
func appendLogEntry(logPath string, entry LogEntry) error {
	if !util.IsConfigured(logPath) {
		return nil
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return util.WrapError("marshal log entry", err)
	}

	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return util.WrapError("open log file", err)
	}
	defer util.SafeCloseFunc(f, "log file")()

	if _, err := f.Write(append(jsonData, '\n')); err != nil {
		return util.WrapError("write log entry", err)
	}

	return nil
}

// WriteTestLog writes a test entry to verify log file configuration.
func WriteTestLog(logPath string) error {
	if logPath == "" {
		return fmt.Errorf("log file path not configured")
	}

	return appendLogEntry(logPath, LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Event:     "test",
	})
}
