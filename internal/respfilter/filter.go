package respfilter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/tinytelemetry/respfilter/internal/logparse"
	"github.com/tinytelemetry/respfilter/internal/model"
)

// ctxCheckInterval is how many lines are processed between context checks.
const ctxCheckInterval = 1024

// Config holds the source file and the filter parameters for one run.
type Config struct {
	Filename     string
	Extension    string // case-insensitive suffix, e.g. ".gif"
	ResponseCode string // exact match, e.g. "200"
	OutputPrefix string
	Malformed    string // model.MalformedAbort or model.MalformedSkip
	MaxLineSize  int

	// Sink receives every accepted match. Optional.
	Sink model.MatchSink
}

// Result reports what a Run did.
type Result struct {
	Output  string
	Lines   int
	Matched int
	Skipped int
}

// ResponseFilter extracts path segments of requests that pass the extension
// and response code filters and writes them to an output file.
type ResponseFilter struct {
	cfg       Config
	extension string
}

// New creates a ResponseFilter, applying defaults for unset parameters.
func New(cfg Config) (*ResponseFilter, error) {
	if strings.TrimSpace(cfg.Filename) == "" {
		return nil, errors.New("respfilter: filename is empty")
	}
	if cfg.Extension == "" {
		cfg.Extension = model.DefaultExtension
	}
	if cfg.ResponseCode == "" {
		cfg.ResponseCode = model.DefaultResponseCode
	}
	if cfg.OutputPrefix == "" {
		cfg.OutputPrefix = model.DefaultOutputPrefix
	}
	switch cfg.Malformed {
	case "":
		cfg.Malformed = model.MalformedAbort
	case model.MalformedAbort, model.MalformedSkip:
	default:
		return nil, fmt.Errorf("respfilter: unknown malformed-line policy %q", cfg.Malformed)
	}
	if cfg.MaxLineSize <= 0 {
		cfg.MaxLineSize = model.DefaultMaxLineSize
	}

	return &ResponseFilter{
		cfg:       cfg,
		extension: strings.ToLower(cfg.Extension),
	}, nil
}

// Config returns the effective configuration after defaults.
func (f *ResponseFilter) Config() Config {
	return f.cfg
}

// OutputFilename is the source file name with the output prefix prepended,
// kept in the source file's directory.
func (f *ResponseFilter) OutputFilename() string {
	return OutputPath(f.cfg.Filename, f.cfg.OutputPrefix)
}

// OutputPath prefixes the base name of filename and keeps its directory.
// For a bare name this equals prefix+filename; for "logs/a.txt" it yields
// "logs/gifs_a.txt" rather than "gifs_logs/a.txt".
func OutputPath(filename, prefix string) string {
	dir, base := filepath.Split(filename)
	return dir + prefix + base
}

// PassesExtensionFilter reports whether the path element ends with the
// configured extension, ignoring case on both sides.
func (f *ResponseFilter) PassesExtensionFilter(pathElement string) bool {
	return strings.HasSuffix(strings.ToLower(pathElement), f.extension)
}

// PassesCodeFilter reports whether code equals the configured response code exactly.
func (f *ResponseFilter) PassesCodeFilter(code string) bool {
	return code == f.cfg.ResponseCode
}

// Run streams the source file and writes every matching path segment, one per
// line and in input order, to OutputFilename. Duplicates are kept.
func (f *ResponseFilter) Run(ctx context.Context) (Result, error) {
	res := Result{Output: f.OutputFilename()}

	in, err := os.Open(f.cfg.Filename)
	if err != nil {
		return res, fmt.Errorf("respfilter: open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(res.Output)
	if err != nil {
		return res, fmt.Errorf("respfilter: create output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), f.cfg.MaxLineSize)

	for scanner.Scan() {
		res.Lines++
		if res.Lines%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}

		m, ok, err := f.matchLine(scanner.Text())
		if err != nil {
			if f.cfg.Malformed == model.MalformedSkip && errors.Is(err, logparse.ErrMalformedLine) {
				res.Skipped++
				log.Printf("respfilter: %s:%d: skipping: %v", f.cfg.Filename, res.Lines, err)
				continue
			}
			return res, fmt.Errorf("respfilter: %s:%d: %w", f.cfg.Filename, res.Lines, err)
		}
		if !ok {
			continue
		}

		if _, err := w.WriteString(m.Segment + "\n"); err != nil {
			return res, fmt.Errorf("respfilter: write output: %w", err)
		}
		res.Matched++
		if f.cfg.Sink != nil {
			m.LineNo = res.Lines
			f.cfg.Sink.Add(m)
		}
	}
	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return res, fmt.Errorf("respfilter: %s:%d: line exceeds max size (%d bytes): %w",
				f.cfg.Filename, res.Lines+1, f.cfg.MaxLineSize, err)
		}
		return res, fmt.Errorf("respfilter: read source: %w", err)
	}

	if err := w.Flush(); err != nil {
		return res, fmt.Errorf("respfilter: flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return res, fmt.Errorf("respfilter: close output: %w", err)
	}
	return res, nil
}

// matchLine applies both filters to one line. The response code is only
// extracted once the extension filter has passed.
func (f *ResponseFilter) matchLine(line string) (model.Match, bool, error) {
	element, err := logparse.ExtractLastPathElement(line)
	if err != nil {
		return model.Match{}, false, err
	}
	if !f.PassesExtensionFilter(element) {
		return model.Match{}, false, nil
	}

	code, err := logparse.ExtractResponseCode(line)
	if err != nil {
		return model.Match{}, false, err
	}
	if !f.PassesCodeFilter(code) {
		return model.Match{}, false, nil
	}
	return model.Match{Segment: element, Code: code}, true, nil
}
