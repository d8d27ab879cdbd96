// Command bas is the assembler core's CLI driver: bas [options]
// file.asm, per spec.md §6. It is intentionally thin (no basl/blink
// integration, per spec.md §1): it drives ifile.SourcePass/Pass1/
// Resize/assemble.Encode against one file and writes the resulting
// logical object-directive stream to -o.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	xenv "github.com/xyproto/env/v2"

	"github.com/xyproto/bas/assemble"
	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/ifile"
	"github.com/xyproto/bas/ofile"
	"github.com/xyproto/bas/segment"
	"github.com/xyproto/bas/symtab"
)

// ofileResult wraps the finished object stream, keeping *ofile.Writer
// itself out of main's exported surface.
type ofileResult struct {
	w *ofile.Writer
}

func main() {
	var (
		printIntermediate = flag.Bool("I", false, "print the intermediate record stream")
		printSource       = flag.Bool("S", false, "print the source listing")
		memReport         = flag.Bool("m", false, "print a segment/symbol memory report")
		maxErrors         = flag.Int("me", xenv.Int("BAS_MAX_ERRORS", 20), "maximum number of errors before aborting")
		output            = flag.String("o", "", "output file (default <base>.obj)")
		quiet             = flag.Bool("q", false, "suppress informational output")
		help              = flag.Bool("h", false, "show usage")
		helpAlt           = flag.Bool("?", false, "show usage")
	)
	flag.Parse()

	if *help || *helpAlt {
		usage()
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		usage()
		os.Exit(1)
	}
	path := args[0]

	caseSensitive := xenv.Bool("BAS_CASE_SENSITIVE")

	log := logrus.New()
	if *quiet {
		log.SetLevel(logrus.ErrorLevel)
	}

	if *printSource {
		printSourceListing(path)
	}

	src, err := readSource(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bas: %v\n", err)
		os.Exit(1)
	}
	f := ifile.New(src, caseSensitive)
	ifile.SourcePass(f)

	sink := diag.NewSink(log, *maxErrors)

	obj, runErr := assembleFile(f, sink, caseSensitive)

	if *printIntermediate {
		printIntermediateListing(f)
	}
	if *memReport {
		printMemoryReport(f)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "bas: %v\n", runErr)
		os.Exit(1)
	}
	if sink.Errors() > 0 {
		os.Exit(1)
	}

	outPath := *output
	if outPath == "" {
		outPath = defaultOutputName(path)
	}
	if err := writeObj(outPath, obj); err != nil {
		fmt.Fprintf(os.Stderr, "bas: %v\n", err)
		os.Exit(1)
	}
}

// assembleFile runs pass 1, the resize pass and the encoding pass over
// an already source-passed IFILE, recovering the diag.Fatal/FatalLimit
// panic the later passes may raise, matching assemble.Run's top-level
// recovery without re-reading the file a second time (main.go already
// needs f itself for -I/-m).
func assembleFile(f *ifile.IFILE, sink *diag.Sink, caseSensitive bool) (obj *ofileResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			obj = nil
			err = recoverErr(r)
		}
	}()

	ifile.Pass1(f, sink)
	ifile.Resize(f, sink)
	if sink.Errors() > 0 {
		return nil, nil
	}
	w := assemble.Encode(f, sink, caseSensitive)
	return &ofileResult{w}, nil
}

func recoverErr(r interface{}) error {
	if e, ok := r.(error); ok {
		return e
	}
	return fmt.Errorf("%v", r)
}

func defaultOutputName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return base + ".obj"
}

func printSourceListing(path string) {
	src, err := readSource(path)
	if err != nil {
		return
	}
	for i := 0; i < src.LineCount(); i++ {
		fmt.Printf("%5d  %s\n", i+1, src.Text(i))
	}
}

func printIntermediateListing(f *ifile.IFILE) {
	for i, irec := range f.Recs {
		fmt.Printf("%4d: [%3d] %s\n", i, irec.Size, f.Text(irec))
	}
}

func printMemoryReport(f *ifile.IFILE) {
	fmt.Println("segments:")
	for s := 0; s < f.Segs.SegmentCount(); s++ {
		seg := f.Segs.Segment(segNoOf(s))
		fmt.Printf("  %-16s %5d bytes\n", seg.Name, f.Segs.PC(segNoOf(s)))
	}
	fmt.Println("symbols:")
	for _, sym := range f.Symtab.All() {
		if sym.Kind() != symtab.Unknown {
			fmt.Printf("  %-24s defined=%v\n", sym.Name(), sym.Defined())
		}
	}
}

func segNoOf(s int) segment.SegNo { return segment.SegNo(s) }

// readSource loads path line by line into a fresh ifile.Source,
// matching assemble.Run's loader (duplicated here rather than exported
// from assemble, since main.go builds the IFILE itself and keeps it
// for -I/-m; -S reads the file again through this function).
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
			src.Add(strings.TrimRight(line, "\r\n"))
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

func writeObj(path string, obj *ofileResult) error {
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	return obj.w.Dump(fh)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bas [-I] [-S] [-m] [-me=N] [-o name] [-q] file.asm")
	flag.PrintDefaults()
}

func init() {
	log.SetFlags(0)
}
