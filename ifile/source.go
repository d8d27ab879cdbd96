// Package ifile implements the assembler's intermediate file: the
// ordered sequence of IRECs produced by the source pass and refined by
// pass 1 and the resize pass. Grounded on
// _examples/original_source/Assembler/ifile.c/ifile.h/sourcepass.c/
// pass1.c/resize.c, reshaped so IFILE owns a slice of *IREC (append/
// splice) rather than a manually managed, realloc'd C array, and so
// SEGNO/GROUPNO live in the existing segment package rather than being
// re-declared here.
package ifile

// Source is a named, line-oriented text buffer: either the assembled
// file itself or the synthetic "(injections)" buffer the resize pass
// appends @@N-label and expanded-jump lines to (spec.md §4.7/§9's
// "injector for synthetic lines").
type Source struct {
	Name  string
	Lines []string
}

// NewSource creates an empty named source.
func NewSource(name string) *Source {
	return &Source{Name: name}
}

// Add appends one line and returns its zero-based index.
func (s *Source) Add(line string) int {
	s.Lines = append(s.Lines, line)
	return len(s.Lines) - 1
}

func (s *Source) LineCount() int { return len(s.Lines) }

func (s *Source) Text(i int) string { return s.Lines[i] }
