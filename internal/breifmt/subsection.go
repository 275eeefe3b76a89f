package breifmt

import "strings"

// splitSubsection splits a program file reference that may carry a
// trailing "[a.b.c]" suffix (spec.md §6: "a program file reference may
// carry a `[a.b.c]` suffix selecting a nested mapping within the file as
// the program root") into the bare file path and the dotted path of the
// nested table to use as the program root. An absent suffix returns an
// empty dotted path, meaning "use the whole file".
func splitSubsection(ref string) (path string, dotted string) {
	if !strings.HasSuffix(ref, "]") {
		return ref, ""
	}
	open := strings.LastIndexByte(ref, '[')
	if open < 0 {
		return ref, ""
	}
	inner := ref[open+1 : len(ref)-1]
	if inner == "" {
		return ref, ""
	}
	return ref[:open], inner
}
