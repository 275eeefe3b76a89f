package breifmt

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"brei/internal/brei"
)

// TOMLLoader implements brei.IncludeLoader for program files written in
// TOML, the pack's TOML dependency (`github.com/BurntSushi/toml`, carried
// from akatz-ai-meow — the only pack repo requiring a TOML library).
type TOMLLoader struct{}

func (TOMLLoader) Load(ref string) (brei.Program, error) {
	return LoadTOML(ref)
}

// LoadTOML reads and parses a TOML program file, honoring an optional
// "[a.b.c]" subsection suffix on ref (spec.md §6).
func LoadTOML(ref string) (brei.Program, error) {
	path, dotted := splitSubsection(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		return brei.Program{}, fmt.Errorf("%w: %s: %v", brei.ErrConfig, path, err)
	}
	raw, err := decodeTOML(data, dotted)
	if err != nil {
		return brei.Program{}, err
	}
	return ConvertProgram(raw)
}

// decodeTOML decodes data into a RawProgram. With no subsection, the
// whole document is decoded directly and strictly: BurntSushi/toml's
// MetaData.Undecoded() lists every source key that didn't map onto a
// RawProgram field, which becomes a brei.ErrConfig ("unknown field") per
// spec.md §9's schema-driven-over-reflection design note.
//
// With a subsection, the document is first decoded into nested
// toml.Primitive values (BurntSushi/toml's deferred-decode mechanism) and
// the dotted path is walked one segment at a time, re-decoding each
// intermediate primitive into a fresh map[string]toml.Primitive, until
// the final segment is decoded strictly into RawProgram (any undecoded
// key below the selected table is a brei.ErrConfig; keys elsewhere in the
// document are ignored). This is the same
// "decode loosely, then decode the selected part strictly" two-step shape
// the teacher uses in dslyaml.go via yaml.Node, adapted to BurntSushi's
// own primitive-decode idiom.
func decodeTOML(data []byte, dotted string) (RawProgram, error) {
	if dotted == "" {
		var raw RawProgram
		meta, err := toml.Decode(string(data), &raw)
		if err != nil {
			return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return RawProgram{}, fmt.Errorf("%w: unknown field(s): %v", brei.ErrConfig, undecoded)
		}
		return raw, nil
	}

	var table map[string]toml.Primitive
	meta, err := toml.Decode(string(data), &table)
	if err != nil {
		return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
	}

	segs := strings.Split(dotted, ".")
	prim, ok := table[segs[0]]
	if !ok {
		return RawProgram{}, fmt.Errorf("%w: subsection %q not found (missing %q)", brei.ErrConfig, dotted, segs[0])
	}

	for _, seg := range segs[1:] {
		var nested map[string]toml.Primitive
		if err := meta.PrimitiveDecode(prim, &nested); err != nil {
			return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
		}
		next, ok := nested[seg]
		if !ok {
			return RawProgram{}, fmt.Errorf("%w: subsection %q not found (missing %q)", brei.ErrConfig, dotted, seg)
		}
		prim = next
	}

	var raw RawProgram
	if err := meta.PrimitiveDecode(prim, &raw); err != nil {
		return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
	}
	var unknown []string
	for _, key := range meta.Undecoded() {
		if k := key.String(); strings.HasPrefix(k, dotted+".") {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		return RawProgram{}, fmt.Errorf("%w: unknown field(s): %v", brei.ErrConfig, unknown)
	}
	return raw, nil
}
