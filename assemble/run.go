package assemble

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/ifile"
	"github.com/xyproto/bas/ofile"
)

// Options configures one Run invocation: the case-sensitivity and
// max-errors knobs spec.md §5/§6 exposes as assembler-wide settings,
// plus the logger Run's diag.Sink reports through.
type Options struct {
	CaseSensitive bool
	MaxErrors     int
	Log           *logrus.Logger
}

// Result is everything a successful Run produced: the finished object
// stream plus the sink's final error count. Run returns an error instead
// of a Result whenever any error was reported, so Errors is always 0.
type Result struct {
	Obj    *ofile.Writer
	Errors int
}

// Run reads path, then chains the source pass, pass 1, the resize pass
// and the encoding pass into one object stream, per spec.md §4. Every
// stage after the source pass can panic: a diag.Sink reaching
// MaxErrors panics with diag.FatalLimit, and an internal inconsistency
// (an encoded instruction whose length does not match its sized
// length) panics via diag.Fatal. Run recovers both at this single top
// level and turns them into a returned error, the error-handling
// design SPEC_FULL.md §7 describes.
func Run(path string, opts Options) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fatalToError(r)
		}
	}()

	src, readErr := readSource(path)
	if readErr != nil {
		return nil, readErr
	}

	f := ifile.New(src, opts.CaseSensitive)
	ifile.SourcePass(f)

	log := opts.Log
	if log == nil {
		log = logrus.New()
	}
	sink := diag.NewSink(log, opts.MaxErrors)

	ifile.Pass1(f, sink)
	ifile.Resize(f, sink)
	if sink.Errors() > 0 {
		return nil, fmt.Errorf("%s: %d error(s)", path, sink.Errors())
	}

	w := Encode(f, sink, opts.CaseSensitive)
	if sink.Errors() > 0 {
		return nil, fmt.Errorf("%s: %d error(s)", path, sink.Errors())
	}

	return &Result{Obj: w, Errors: sink.Errors()}, nil
}

func fatalToError(r interface{}) error {
	switch v := r.(type) {
	case diag.FatalLimit:
		return v
	case error:
		return v
	default:
		return fmt.Errorf("%v", v)
	}
}

// readSource loads path line by line into a fresh ifile.Source, per
// sourcepass.c's expectation of a pre-split line buffer.
func readSource(path string) (*ifile.Source, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	src := ifile.NewSource(path)
	r := bufio.NewReader(fh)
	for {
		line, readErr := r.ReadString('\n')
		if len(line) > 0 {
			line = trimNewline(line)
			src.Add(line)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return nil, readErr
		}
	}
	return src, nil
}

func trimNewline(s string) string {
	n := len(s)
	if n > 0 && s[n-1] == '\n' {
		n--
	}
	if n > 0 && s[n-1] == '\r' {
		n--
	}
	return s[:n]
}
