package main

import (
	"bytes"
	"fmt"
	"io"
)

const (
	delimiter = byte('\n')
	blockSize = 4096
)

// BackwardsReader finds the last N lines of a seekable source without
// reading the whole file. It reads fixed-size blocks from the end toward the
// start, splits each block on the line delimiter, and stitches fragments
// back together across block boundaries when emitting.
type BackwardsReader struct {
	src      io.ReadSeeker
	numLines int

	// pieces holds one fragment slice per block, earliest file position
	// first. Blocks are prepended as the scan walks backward, so reading
	// the queue front to back reconstructs the file in forward byte order.
	pieces        [][][]byte
	totalNewlines int
	firstRead     bool
	lastOffset    int64
	endOffset     int64
}

// NewBackwardsReader seeks src to its end and records that offset as the
// boundary of the scan. src must therefore be a real seekable source with a
// known length.
func NewBackwardsReader(numLines int, src io.ReadSeeker) (*BackwardsReader, error) {
	end, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to seek to end of file: %w", err)
	}
	return &BackwardsReader{
		src:        src,
		numLines:   numLines,
		firstRead:  true,
		lastOffset: end,
		endOffset:  end,
	}, nil
}

// EndOffset returns the end-of-file offset observed at construction time.
func (r *BackwardsReader) EndOffset() int64 {
	return r.endOffset
}

// read pulls one more block from in front of the current offset and reports
// whether the scan still needs more of the file.
func (r *BackwardsReader) read() (bool, error) {
	if r.lastOffset < blockSize {
		// Start of file reached before a full block is available. Consume
		// the remaining prefix and stop; running out of file before the
		// target is a normal exit, not an error.
		if r.lastOffset > 0 {
			if _, err := r.src.Seek(0, io.SeekStart); err != nil {
				return false, fmt.Errorf("failed to seek to start of file: %w", err)
			}
			buf := make([]byte, r.lastOffset)
			if _, err := io.ReadFull(r.src, buf); err != nil {
				return false, fmt.Errorf("failed to read %d byte prefix: %w", r.lastOffset, err)
			}
			r.lastOffset = 0
			r.prepend(buf)
		}
		return false, nil
	}
	newOffset, err := r.src.Seek(r.lastOffset-blockSize, io.SeekStart)
	if err != nil {
		return false, fmt.Errorf("failed to seek to offset %d: %w", r.lastOffset-blockSize, err)
	}
	r.lastOffset = newOffset
	buf := make([]byte, blockSize)
	if _, err := io.ReadFull(r.src, buf); err != nil {
		// A short read here means the file shrank or became unreadable
		// mid-scan; the reader does not reconcile that race.
		return false, fmt.Errorf("failed to read block at offset %d: %w", newOffset, err)
	}
	r.prepend(buf)
	// Scanning one delimiter past the target guarantees the front of the
	// window lands on a line boundary; the overshoot is trimmed later.
	return r.totalNewlines <= r.numLines, nil
}

// prepend splits one block into line fragments and queues it in front of
// everything read so far.
func (r *BackwardsReader) prepend(buf []byte) {
	if r.firstRead {
		r.firstRead = false
		// A file that does not end in the delimiter still closes with one
		// final logical line. Append a synthetic delimiter so the split
		// counts it exactly once and joining stays uniform.
		if len(buf) > 0 && buf[len(buf)-1] != delimiter {
			buf = append(buf, delimiter)
		}
	}
	fragments := bytes.Split(buf, []byte{delimiter})
	r.totalNewlines += len(fragments) - 1
	r.pieces = append([][][]byte{fragments}, r.pieces...)
}

// WriteTo runs the backward scan to completion and writes the final numLines
// lines to w in forward order, each delimiter-terminated.
func (r *BackwardsReader) WriteTo(w io.Writer) (int64, error) {
	for {
		more, err := r.read()
		if err != nil {
			return 0, err
		}
		if !more {
			break
		}
	}

	// The scan can only stop at block boundaries, so the oldest block
	// usually carries lines from before the requested window, plus a
	// partial fragment of the line cut by the block boundary. Discard
	// whole fragments from the front until the count matches. A block
	// drained down to its final fragment stays queued; that fragment is
	// the head of the window's first line.
	if r.totalNewlines > r.numLines {
		excess := r.totalNewlines - r.numLines
		r.pieces[0] = r.pieces[0][excess:]
		r.totalNewlines -= excess
	}

	var written int64
	var line []byte
	for _, fragments := range r.pieces {
		if len(fragments) == 1 {
			// No delimiter inside this block: pure continuation of the
			// line in progress.
			line = append(line, fragments[0]...)
			continue
		}
		for _, fragment := range fragments[:len(fragments)-1] {
			line = append(line, fragment...)
			line = append(line, delimiter)
			n, err := w.Write(line)
			written += int64(n)
			if err != nil {
				return written, fmt.Errorf("failed to write line: %w", err)
			}
			line = line[:0]
		}
		line = append(line, fragments[len(fragments)-1]...)
	}
	if len(line) > 0 {
		line = append(line, delimiter)
		n, err := w.Write(line)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write line: %w", err)
		}
	}
	return written, nil
}
