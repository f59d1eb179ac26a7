package logparse

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedLine is returned when a line does not follow the common log format
// closely enough to extract the request path or the status code.
var ErrMalformedLine = errors.New("malformed access log line")

// ExtractLastPathElement returns the final "/"-delimited segment of the request path
// found in the quoted request field, e.g. "liftoff.html" for
// `"GET /shuttle/countdown/liftoff.html HTTP/1.0"`.
func ExtractLastPathElement(line string) (string, error) {
	quoted := strings.Split(line, `"`)
	if len(quoted) < 2 {
		return "", fmt.Errorf("%w: no quoted request field", ErrMalformedLine)
	}

	request := strings.Fields(quoted[1])
	if len(request) < 2 {
		return "", fmt.Errorf("%w: request field %q has no path", ErrMalformedLine, quoted[1])
	}

	path := request[1]
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:], nil
	}
	return path, nil
}

// ExtractResponseCode returns the second-to-last whitespace-separated token of the line.
func ExtractResponseCode(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("%w: missing status code", ErrMalformedLine)
	}
	return fields[len(fields)-2], nil
}
