package brei

import "testing"

func TestParseTarget(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Target
	}{
		{"phony", "#build", PhonyTarget{Name: "build"}},
		{"variable", "var(version)", VariableTarget{Name: "version"}},
		{"file-plain", "out/bin", FileTarget{Path: "out/bin"}},
		{"file-dotslash", "./out/bin", FileTarget{Path: "out/bin"}},
		{"file-looks-like-fn-but-invalid-ident", "var(1bad)", FileTarget{Path: "var(1bad)"}},
		{"file-unclosed-var", "var(x", FileTarget{Path: "var(x"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseTarget(c.in)
			if !TargetEqual(got, c.want) {
				t.Fatalf("ParseTarget(%q) = %#v, want %#v", c.in, got, c.want)
			}
		})
	}
}

func TestTargetString(t *testing.T) {
	if got := (PhonyTarget{Name: "all"}).String(); got != "#all" {
		t.Fatalf("PhonyTarget.String() = %q", got)
	}
	if got := (VariableTarget{Name: "x"}).String(); got != "var(x)" {
		t.Fatalf("VariableTarget.String() = %q", got)
	}
	if got := (FileTarget{Path: "a/b"}).String(); got != "a/b" {
		t.Fatalf("FileTarget.String() = %q", got)
	}
}

func TestTargetEqualCrossType(t *testing.T) {
	if TargetEqual(FileTarget{Path: "a"}, PhonyTarget{Name: "a"}) {
		t.Fatal("FileTarget and PhonyTarget with the same string must not compare equal")
	}
}

func TestTargetAsMapKey(t *testing.T) {
	m := map[Target]int{}
	m[FileTarget{Path: "a"}] = 1
	m[PhonyTarget{Name: "a"}] = 2
	m[VariableTarget{Name: "a"}] = 3
	if len(m) != 3 {
		t.Fatalf("expected 3 distinct map keys, got %d", len(m))
	}
	if m[ParseTarget("a")] != 1 {
		t.Fatal("ParseTarget(\"a\") did not round-trip to the same map key")
	}
}
