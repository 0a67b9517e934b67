package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
)

// ModificationType classifies how a watched file's size moved relative to
// the last metadata snapshot.
type ModificationType int

const (
	NoChange ModificationType = iota
	Added
	Removed
)

func (m ModificationType) String() string {
	switch m {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "nochange"
	}
}

// StatefulFile binds a watched path to a live buffered handle, a persisted
// read cursor, and the file size observed at the most recent metadata check.
// The cursor is the absolute offset at which the next forward read begins.
type StatefulFile struct {
	path   string
	file   *os.File
	reader *bufio.Reader
	size   int64
	cursor int64
	prev   ModificationType
}

func NewStatefulFile(path string) (*StatefulFile, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to retrieve metadata for %s: %w", path, err)
	}
	return &StatefulFile{
		path:   path,
		file:   file,
		reader: bufio.NewReader(file),
		size:   info.Size(),
	}, nil
}

func (sf *StatefulFile) Path() string {
	return sf.path
}

func (sf *StatefulFile) Close() error {
	return sf.file.Close()
}

// UpdateMetadata re-reads the current file size into the snapshot.
func (sf *StatefulFile) UpdateMetadata() error {
	info, err := sf.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to retrieve metadata for %s: %w", sf.path, err)
	}
	sf.size = info.Size()
	return nil
}

// Modification compares the current on-disk size against the snapshot. A
// replacement with identical-size content is indistinguishable from an
// untouched file; size is the only signal used.
func (sf *StatefulFile) Modification() (ModificationType, error) {
	info, err := sf.file.Stat()
	if err != nil {
		return NoChange, fmt.Errorf("failed to retrieve metadata for %s: %w", sf.path, err)
	}
	switch {
	case info.Size() > sf.size:
		return Added, nil
	case info.Size() < sf.size:
		return Removed, nil
	default:
		return NoChange, nil
	}
}

// SeekToCursor positions the handle at the persisted cursor for a read.
func (sf *StatefulFile) SeekToCursor() error {
	if _, err := sf.file.Seek(sf.cursor, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek %s to cursor %d: %w", sf.path, sf.cursor, err)
	}
	sf.reader.Reset(sf.file)
	return nil
}

// UpdateCursor snapshots the handle's current read position back into the
// cursor, accounting for bytes the buffered reader has pulled ahead.
func (sf *StatefulFile) UpdateCursor() error {
	pos, err := sf.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("failed to query position of %s: %w", sf.path, err)
	}
	sf.cursor = pos - int64(sf.reader.Buffered())
	return nil
}

// ResetCursor forces the cursor back to the start of the file, used when the
// file is known to have been truncated or replaced.
func (sf *StatefulFile) ResetCursor() {
	sf.cursor = 0
}

// Reopen closes the current handle and opens the path fresh, resetting the
// cursor and snapshot. Used when rotation replaces the file behind the path.
func (sf *StatefulFile) Reopen() error {
	file, err := os.Open(sf.path)
	if err != nil {
		return fmt.Errorf("failed to reopen file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return fmt.Errorf("failed to retrieve metadata for %s: %w", sf.path, err)
	}
	sf.file.Close()
	sf.file = file
	sf.reader.Reset(file)
	sf.size = info.Size()
	sf.cursor = 0
	sf.prev = NoChange
	return nil
}

// CopyNewLines writes every complete line between the cursor and the current
// end of readable data to w, then persists the new cursor. A trailing
// fragment that has not received its delimiter yet is pushed back so a later
// pass rereads it whole.
func (sf *StatefulFile) CopyNewLines(w io.Writer) (int64, error) {
	return sf.copyLines(w, 0)
}

// CopyLinesSkipping is CopyNewLines minus the first skip lines; it backs the
// +NUM form of the line count argument.
func (sf *StatefulFile) CopyLinesSkipping(w io.Writer, skip int) (int64, error) {
	return sf.copyLines(w, skip)
}

func (sf *StatefulFile) copyLines(w io.Writer, skip int) (int64, error) {
	if err := sf.SeekToCursor(); err != nil {
		return 0, err
	}
	var written int64
	for {
		line, err := sf.reader.ReadBytes(delimiter)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return written, fmt.Errorf("failed to read %s: %w", sf.path, err)
			}
			if len(line) > 0 {
				if _, serr := sf.file.Seek(-int64(len(line)), io.SeekCurrent); serr != nil {
					return written, fmt.Errorf("failed to unread partial line of %s: %w", sf.path, serr)
				}
				sf.reader.Reset(sf.file)
			}
			break
		}
		if skip > 0 {
			skip--
			continue
		}
		n, werr := w.Write(line)
		written += int64(n)
		if werr != nil {
			return written, fmt.Errorf("failed to write line: %w", werr)
		}
	}
	if err := sf.UpdateCursor(); err != nil {
		return written, err
	}
	return written, nil
}
