package breifmt

import (
	"errors"
	"testing"

	"brei/internal/brei"
)

func TestConvertProgramMapsAllSections(t *testing.T) {
	raw := RawProgram{
		Environment: map[string]string{"greeting": "hi"},
		Task: []RawTaskDecl{
			{Name: "a", Script: "echo a"},
		},
		Template: map[string]RawTaskDecl{
			"t": {Creates: []string{"out/$n"}, Script: "touch out/$n"},
		},
		Call: []RawTemplateCall{
			{Template: "t", Args: map[string]any{"n": []any{"x", "y"}}, Join: "OUTER", Collect: "all"},
		},
		Include: []string{"other.toml"},
		Runner: map[string]RawRunner{
			"custom": {Command: "bash", Args: []string{"-c", "${script}"}},
		},
	}

	prog, err := ConvertProgram(raw)
	if err != nil {
		t.Fatal(err)
	}
	if prog.Environment["greeting"] != "hi" {
		t.Fatalf("environment not carried through: %v", prog.Environment)
	}
	if len(prog.Tasks) != 1 || prog.Tasks[0].Name != "a" {
		t.Fatalf("tasks = %+v", prog.Tasks)
	}
	if _, ok := prog.Templates["t"]; !ok {
		t.Fatalf("templates = %+v", prog.Templates)
	}
	if len(prog.Calls) != 1 || prog.Calls[0].Join != brei.JoinOuter || prog.Calls[0].Collect != "all" {
		t.Fatalf("calls = %+v", prog.Calls)
	}
	if !prog.Calls[0].Args["n"].IsList || len(prog.Calls[0].Args["n"].List) != 2 {
		t.Fatalf("call args = %+v", prog.Calls[0].Args)
	}
	if len(prog.Includes) != 1 || prog.Includes[0] != "other.toml" {
		t.Fatalf("includes = %v", prog.Includes)
	}
	if prog.Runners["custom"].Command != "bash" {
		t.Fatalf("runners = %+v", prog.Runners)
	}
}

func TestConvertJoinCaseFolded(t *testing.T) {
	for _, s := range []string{"inner", "Inner", "INNER", ""} {
		j, err := convertJoin(s)
		if err != nil {
			t.Fatalf("join %q: %v", s, err)
		}
		if j != brei.JoinInner {
			t.Fatalf("join %q = %v, want JoinInner", s, j)
		}
	}
	for _, s := range []string{"outer", "Outer", "OUTER"} {
		j, err := convertJoin(s)
		if err != nil {
			t.Fatalf("join %q: %v", s, err)
		}
		if j != brei.JoinOuter {
			t.Fatalf("join %q = %v, want JoinOuter", s, j)
		}
	}
}

func TestConvertJoinRejectsUnknownValue(t *testing.T) {
	_, err := convertJoin("sideways")
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestConvertArgValueScalarAndList(t *testing.T) {
	av, err := convertArgValue("x")
	if err != nil || av.IsList || av.Scalar != "x" {
		t.Fatalf("scalar: av=%+v err=%v", av, err)
	}

	av, err = convertArgValue([]any{"a", "b"})
	if err != nil || !av.IsList || len(av.List) != 2 {
		t.Fatalf("list of any: av=%+v err=%v", av, err)
	}

	av, err = convertArgValue([]string{"a", "b"})
	if err != nil || !av.IsList || len(av.List) != 2 {
		t.Fatalf("list of string: av=%+v err=%v", av, err)
	}
}

func TestConvertArgValueRejectsMixedTypeList(t *testing.T) {
	_, err := convertArgValue([]any{"a", 1})
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestConvertArgValueRejectsUnsupportedShape(t *testing.T) {
	_, err := convertArgValue(42)
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}

func TestConvertCallErrorIsWrappedWithContext(t *testing.T) {
	raw := RawProgram{
		Call: []RawTemplateCall{
			{Template: "t", Join: "bogus"},
		},
	}
	_, err := ConvertProgram(raw)
	if !errors.Is(err, brei.ErrConfig) {
		t.Fatalf("err = %v, want ErrConfig", err)
	}
}
