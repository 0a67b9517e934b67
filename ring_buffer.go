package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// RingBuffer is a fixed-capacity circular store. Once full, every insertion
// evicts the oldest element; the buffer never grows beyond the capacity it
// was constructed with.
type RingBuffer[T any] struct {
	slots []T
	head  int
	tail  int
	count int
}

func NewRingBuffer[T any](capacity int) *RingBuffer[T] {
	return &RingBuffer[T]{slots: make([]T, capacity)}
}

func (rb *RingBuffer[T]) Len() int {
	return rb.count
}

func (rb *RingBuffer[T]) Cap() int {
	return len(rb.slots)
}

// PushFront inserts v as the newest element, evicting the oldest first if
// the buffer is already full. A zero-capacity buffer holds nothing.
func (rb *RingBuffer[T]) PushFront(v T) {
	if len(rb.slots) == 0 {
		return
	}
	if rb.count == len(rb.slots) {
		rb.head = (rb.head + 1) % len(rb.slots)
		rb.count--
	}
	rb.slots[rb.tail] = v
	rb.tail = (rb.tail + 1) % len(rb.slots)
	rb.count++
}

// PopBack removes and returns the oldest live element. The vacated slot is
// cleared so the buffer holds no reference to evicted values.
func (rb *RingBuffer[T]) PopBack() (T, bool) {
	var zero T
	if rb.count == 0 {
		return zero, false
	}
	v := rb.slots[rb.head]
	rb.slots[rb.head] = zero
	rb.head = (rb.head + 1) % len(rb.slots)
	rb.count--
	return v, true
}

// PopFront removes and returns the newest live element.
func (rb *RingBuffer[T]) PopFront() (T, bool) {
	var zero T
	if rb.count == 0 {
		return zero, false
	}
	rb.tail = (rb.tail - 1 + len(rb.slots)) % len(rb.slots)
	v := rb.slots[rb.tail]
	rb.slots[rb.tail] = zero
	rb.count--
	return v, true
}

// ForwardTail scans r once from the front, keeping the last n lines in a
// ring buffer, then writes them to w in original order. It suits input that
// cannot seek backward, such as standard input. Lines of any length are
// accepted, same as the backward scan over seekable sources.
func ForwardTail(r io.Reader, n int, w io.Writer) error {
	if n <= 0 {
		return nil
	}
	rb := NewRingBuffer[[]byte](n)
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadBytes(delimiter)
		if len(line) > 0 {
			if line[len(line)-1] != delimiter {
				line = append(line, delimiter)
			}
			rb.PushFront(line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
	for {
		line, ok := rb.PopBack()
		if !ok {
			return nil
		}
		if _, err := w.Write(line); err != nil {
			return fmt.Errorf("failed to write line: %w", err)
		}
	}
}

// SkipHead copies every line after the first k lines of r to w.
func SkipHead(r io.Reader, k int, w io.Writer) error {
	reader := bufio.NewReader(r)
	for i := 0; ; i++ {
		line, err := reader.ReadBytes(delimiter)
		if len(line) > 0 && i >= k {
			if line[len(line)-1] != delimiter {
				line = append(line, delimiter)
			}
			if _, werr := w.Write(line); werr != nil {
				return fmt.Errorf("failed to write line: %w", werr)
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}
	}
}
