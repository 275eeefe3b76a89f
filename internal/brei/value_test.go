package brei

import (
	"reflect"
	"testing"
)

func TestGatherString(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"none", "plain text", nil},
		{"dollar-name", "hello $name", []string{"name"}},
		{"braced", "hello ${name}", []string{"name"}},
		{"literal-dollar", "cost is $$5", nil},
		{"repeat-dedup", "$a $a ${a}", []string{"a"}},
		{"mixed", "$a-${b}-c", []string{"a", "b"}},
		{"malformed-brace", "${123}", nil},
		{"trailing-dollar", "abc$", nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := GatherString(c.in)
			if len(got) != len(c.want) {
				t.Fatalf("GatherString(%q) = %v, want %v", c.in, got, c.want)
			}
			for _, w := range c.want {
				if _, ok := got[w]; !ok {
					t.Fatalf("GatherString(%q) missing %q, got %v", c.in, w, got)
				}
			}
		})
	}
}

func TestSubstituteString(t *testing.T) {
	env := map[string]string{"name": "world", "n": "3"}

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"dollar-name", "hello $name!", "hello world!"},
		{"braced", "hello ${name}!", "hello world!"},
		{"unknown-left-literal", "hello $stranger", "hello $stranger"},
		{"unknown-braced-literal", "hello ${stranger}", "hello ${stranger}"},
		{"literal-dollar", "cost is $$5", "cost is $5"},
		{"adjacent", "$name-$n", "world-3"},
		{"no-placeholders", "plain text", "plain text"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SubstituteString(c.in, env); got != c.want {
				t.Fatalf("SubstituteString(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestGatherRecursesThroughSequenceAndRecord(t *testing.T) {
	v := Record{
		"a": Scalar("$x"),
		"b": Sequence{Scalar("$y"), Scalar("plain")},
		"c": Absent{},
	}
	got := Gather(v)
	want := map[string]struct{}{"x": {}, "y": {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Gather = %v, want %v", got, want)
	}
}

func TestSubstituteIsSafeOnUnknownPlaceholders(t *testing.T) {
	v := Scalar("$known $unknown")
	got := Substitute(v, map[string]string{"known": "ok"})
	want := Scalar("ok $unknown")
	if got != want {
		t.Fatalf("Substitute = %v, want %v", got, want)
	}
}

func TestSubstituteSequenceAndRecord(t *testing.T) {
	env := map[string]string{"x": "1"}
	v := Sequence{Scalar("$x"), Record{"f": Scalar("$x-y")}}
	got := Substitute(v, env)

	seq, ok := got.(Sequence)
	if !ok || len(seq) != 2 {
		t.Fatalf("Substitute did not preserve Sequence shape: %#v", got)
	}
	if seq[0] != Scalar("1") {
		t.Fatalf("seq[0] = %v, want Scalar(1)", seq[0])
	}
	rec, ok := seq[1].(Record)
	if !ok || rec["f"] != Scalar("1-y") {
		t.Fatalf("seq[1] = %#v, want Record{f: 1-y}", seq[1])
	}
}
