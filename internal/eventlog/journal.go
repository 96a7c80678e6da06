package eventlog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ktiyab/babel-tool-sub001/internal/event"
	"github.com/ktiyab/babel-tool-sub001/internal/lockfile"
)

// readJournal streams a journal file in append order. A missing file is
// an empty journal, not an error (a project whose local/shared journal
// was never written yet). A torn trailing line — present but fails to
// parse and is the last line in the file — is dropped silently per spec
// §4.1; anything else unparseable returns ErrJournalCorruption wrapping
// the line number and decode error.
func readJournal(path string) ([]event.Event, int, error) {
	f, err := os.Open(path) // #nosec G304 -- path is computed from the project layout, not user input
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var lines [][]byte
	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: scan %s: %v", ErrJournalCorruption, path, err)
	}

	events := make([]event.Event, 0, len(lines))
	for i, line := range lines {
		if len(line) == 0 {
			continue
		}
		e, err := event.Unmarshal(line)
		if err != nil {
			if i == len(lines)-1 {
				// Torn trailing record: treat as EOF, not an error.
				break
			}
			return nil, 0, fmt.Errorf("%w: %s line %d: %v", ErrJournalCorruption, path, i+1, err)
		}
		e.AppendIndex = i
		events = append(events, e)
	}
	return events, len(lines), nil
}

// appendLine opens the journal for append (creating it and its parent
// directory if needed) and writes one self-delimiting JSON line.
func appendLine(path string, e event.Event) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) // #nosec G304
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := event.Marshal(e)
	if err != nil {
		return err
	}
	line = append(line, '\n')
	_, err = f.Write(line)
	return err
}

// lockExclusive acquires a blocking exclusive advisory lock on a
// sidecar ".lock" file next to the journal, returning a release func.
// Locking a sidecar rather than the journal itself lets readers stream
// without ever taking the lock (spec §4.1: "reads ... do not require
// the lock").
func lockExclusive(journalPath string) (func(), error) {
	lockPath := journalPath + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644) // #nosec G304
	if err != nil {
		return nil, err
	}
	if err := lockfile.FlockExclusiveBlocking(f); err != nil {
		f.Close()
		return nil, err
	}
	return func() {
		_ = lockfile.FlockUnlock(f)
		_ = f.Close()
	}, nil
}
