// Package dedup removes duplicate lines from text files.
package dedup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
)

// Stats reports line counts before and after deduplication.
type Stats struct {
	Before int
	After  int
}

// RemoveDuplicates rewrites filename so that each distinct line appears once.
//
// Lines are compared including their trailing newline, so a last line without
// one is distinct from the same text with one. The order of the rewritten
// lines is unspecified. The file is truncated and rewritten in place; a
// failure during the write can leave it partially written.
func RemoveDuplicates(filename string) (Stats, error) {
	lines, err := readLines(filename)
	if err != nil {
		return Stats{}, err
	}

	unique := make(map[string]struct{}, len(lines))
	for _, line := range lines {
		unique[line] = struct{}{}
	}
	stats := Stats{Before: len(lines), After: len(unique)}

	if err := writeLines(filename, unique); err != nil {
		return stats, err
	}
	if stats.Before != stats.After {
		log.Printf("dedup: %s: removed %d duplicate lines (%d -> %d)",
			filename, stats.Before-stats.After, stats.Before, stats.After)
	}
	return stats, nil
}

// readLines returns every line of the file with its trailing newline kept.
func readLines(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("dedup: open: %w", err)
	}
	defer f.Close()

	var lines []string
	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if line != "" {
			lines = append(lines, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return nil, fmt.Errorf("dedup: read: %w", err)
		}
	}
}

func writeLines(filename string, lines map[string]struct{}) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("dedup: create: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for line := range lines {
		if _, err := w.WriteString(line); err != nil {
			return fmt.Errorf("dedup: write: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("dedup: flush: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dedup: close: %w", err)
	}
	return nil
}
