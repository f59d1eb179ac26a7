package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
)

// configureRuntimeLogger points the standard logger at logFile, or stderr when
// it is empty or cannot be opened. Quiet mode discards warnings entirely.
func configureRuntimeLogger(logFile string, quiet bool) func() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if logFile == "" {
		if quiet {
			log.SetOutput(io.Discard)
		} else {
			log.SetOutput(os.Stderr)
		}
		return func() {}
	}

	if err := os.MkdirAll(filepath.Dir(logFile), 0755); err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("Warning: cannot create log directory: %v", err)
		return func() {}
	}

	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Printf("Warning: cannot open log file: %v", err)
		return func() {}
	}

	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		_ = f.Close()
	}
}
