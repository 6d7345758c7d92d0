package treepath

import "testing"

func TestValid(t *testing.T) {
	cases := map[string]bool{
		"/":        true,
		"/a/":      true,
		"/a/b/":    true,
		"/a-b_2/":  true,
		"":         false,
		"a/":       false,
		"/a":       false,
		"//":       false,
		"/a//b/":   false,
		"/a/ /":    false,
		"/a/*/":    false,
	}
	for path, want := range cases {
		if got := Valid(path); got != want {
			t.Errorf("Valid(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestValidNameLength(t *testing.T) {
	long := make([]byte, MaxNameLength+1)
	for i := range long {
		long[i] = 'a'
	}
	path := "/" + string(long) + "/"
	if Valid(path) {
		t.Errorf("Valid accepted a name longer than MaxNameLength")
	}

	ok := "/" + string(long[:MaxNameLength]) + "/"
	if !Valid(ok) {
		t.Errorf("Valid rejected a name exactly MaxNameLength long")
	}
}

func TestSplit(t *testing.T) {
	name, rest, ok := Split("/a/b/")
	if !ok || name != "a" || rest != "/b/" {
		t.Fatalf("Split(/a/b/) = %q, %q, %v", name, rest, ok)
	}

	name, rest, ok = Split(rest)
	if !ok || name != "b" || rest != "/" {
		t.Fatalf("Split(/b/) = %q, %q, %v", name, rest, ok)
	}

	_, _, ok = Split(Root)
	if ok {
		t.Fatalf("Split(Root) should report ok=false")
	}
}

func TestToParent(t *testing.T) {
	cases := []struct{ path, parent, leaf string }{
		{"/a/", "/", "a"},
		{"/a/b/", "/a/", "b"},
		{"/a/b/c/", "/a/b/", "c"},
	}
	for _, c := range cases {
		parent, leaf := ToParent(c.path)
		if parent != c.parent || leaf != c.leaf {
			t.Errorf("ToParent(%q) = %q, %q, want %q, %q", c.path, parent, leaf, c.parent, c.leaf)
		}
	}
}

func TestLCA(t *testing.T) {
	cases := []struct{ p1, p2, want string }{
		{"/a/", "/a/", "/a/"},
		{"/a/b/", "/a/c/", "/a/"},
		{"/a/b/", "/x/y/", "/"},
		{"/a/b/c/", "/a/b/", "/a/b/"},
	}
	for _, c := range cases {
		if got := LCA(c.p1, c.p2); got != c.want {
			t.Errorf("LCA(%q, %q) = %q, want %q", c.p1, c.p2, got, c.want)
		}
	}
}

func TestHasStrictPrefix(t *testing.T) {
	if !HasStrictPrefix("/a/b/", "/a/") {
		t.Error("expected /a/b/ to strictly descend from /a/")
	}
	if HasStrictPrefix("/a/", "/a/") {
		t.Error("a path must not strictly descend from itself")
	}
	if HasStrictPrefix("/a/", "/a/b/") {
		t.Error("a shorter path cannot descend from a longer one")
	}
}

func TestRelative(t *testing.T) {
	if got := Relative("/a/b/", "/a/"); got != "/b/" {
		t.Errorf("Relative(/a/b/, /a/) = %q, want /b/", got)
	}
	if got := Relative("/a/", "/"); got != "/a/" {
		t.Errorf("Relative(/a/, /) = %q, want /a/", got)
	}
}
