package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/tinytelemetry/respfilter/internal/respfilter"
)

// readFilename reads one filename from the first line of r. Only the line
// terminator is removed; surrounding spaces are part of the name.
func readFilename(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading filename: %w", err)
		}
		return "", errors.New("no filename given on stdin")
	}
	name := strings.TrimRight(scanner.Text(), "\r\n")
	if name == "" {
		return "", errors.New("empty filename on stdin")
	}
	return name, nil
}

// resolveInputs returns the files to process: the positional arguments, or a
// single filename read from stdin when there are none.
//
// Paths naming the same file (relative and absolute spellings, symlinks) are
// collapsed so that no two pipelines touch the same file, and an input that is
// another input's output file is rejected.
func resolveInputs(args []string, stdin io.Reader, outputPrefix string) ([]string, error) {
	if len(args) == 0 {
		name, err := readFilename(stdin)
		if err != nil {
			return nil, err
		}
		args = []string{name}
	}

	seen := make(map[string]struct{}, len(args))
	outputs := make(map[string]string, len(args))
	files := make([]string, 0, len(args))
	for _, arg := range args {
		if strings.TrimSpace(arg) == "" {
			continue
		}
		key, err := canonicalPath(arg)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[key]; ok {
			continue
		}
		out, err := canonicalPath(respfilter.OutputPath(arg, outputPrefix))
		if err != nil {
			return nil, err
		}
		seen[key] = struct{}{}
		outputs[out] = arg
		files = append(files, arg)
	}
	if len(files) == 0 {
		return nil, errors.New("no input files")
	}

	for _, file := range files {
		key, _ := canonicalPath(file)
		if owner, ok := outputs[key]; ok {
			return nil, fmt.Errorf("input %s is the output file of input %s", file, owner)
		}
	}
	return files, nil
}

// canonicalPath makes path absolute and resolves symlinks. When the file does
// not exist yet, its directory is resolved instead.
func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs)), nil
	}
	return abs, nil
}
