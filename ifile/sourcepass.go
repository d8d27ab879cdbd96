package ifile

// blank reports whether s consists only of spaces, tabs, newlines and
// carriage returns, matching sourcepass.c's blank().
func blank(s string) bool {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

// SourcePass is pass 0: one walk over the source lines allocating an
// IREC for every non-blank line, per spec.md §4.5.
func SourcePass(f *IFILE) {
	for i := 0; i < f.Source.LineCount(); i++ {
		if !blank(f.Source.Text(i)) {
			f.NewIrec(i)
		}
	}
}
