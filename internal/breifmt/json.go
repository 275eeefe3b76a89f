package breifmt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"brei/internal/brei"
)

// JSONLoader implements brei.IncludeLoader for program files written in
// JSON via stdlib encoding/json — no ecosystem JSON library appears
// anywhere in the pack's non-manifest repos, so stdlib is the grounded
// choice here, not a fallback (SPEC_FULL.md §6).
type JSONLoader struct{}

func (JSONLoader) Load(ref string) (brei.Program, error) {
	return LoadJSON(ref)
}

// LoadJSON reads and parses a JSON program file, honoring an optional
// "[a.b.c]" subsection suffix on ref (spec.md §6). This is also the path
// exercised by spec §8 scenario 5's generated-include case: a task
// produces a JSON file mid-resolution, and the resolver hands it to this
// loader once the file exists on disk.
func LoadJSON(ref string) (brei.Program, error) {
	path, dotted := splitSubsection(ref)
	data, err := os.ReadFile(path)
	if err != nil {
		return brei.Program{}, fmt.Errorf("%w: %s: %v", brei.ErrConfig, path, err)
	}
	raw, err := decodeJSON(data, dotted)
	if err != nil {
		return brei.Program{}, err
	}
	return ConvertProgram(raw)
}

// decodeJSON selects the named subsection (if any) and decodes it
// strictly into a RawProgram. Navigation uses json.RawMessage as the
// deferred-decode value — the JSON analog of the teacher's yaml.Node
// "decode loosely, then decode the selected part strictly" two-step
// shape (dslyaml.go), and of toml.go's toml.Primitive walk.
func decodeJSON(data []byte, dotted string) (RawProgram, error) {
	selected := data
	if dotted != "" {
		var tree map[string]json.RawMessage
		if err := json.Unmarshal(data, &tree); err != nil {
			return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
		}
		segs := strings.Split(dotted, ".")
		raw, ok := tree[segs[0]]
		if !ok {
			return RawProgram{}, fmt.Errorf("%w: subsection %q not found (missing %q)", brei.ErrConfig, dotted, segs[0])
		}
		for _, seg := range segs[1:] {
			var nested map[string]json.RawMessage
			if err := json.Unmarshal(raw, &nested); err != nil {
				return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
			}
			next, ok := nested[seg]
			if !ok {
				return RawProgram{}, fmt.Errorf("%w: subsection %q not found (missing %q)", brei.ErrConfig, dotted, seg)
			}
			raw = next
		}
		selected = raw
	}

	var out RawProgram
	dec := json.NewDecoder(bytes.NewReader(selected))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return RawProgram{}, fmt.Errorf("%w: %v", brei.ErrConfig, err)
	}
	return out, nil
}
