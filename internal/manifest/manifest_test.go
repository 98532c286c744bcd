package manifest

import (
	"strings"
	"testing"
)

func TestDecodePreservesOrder(t *testing.T) {
	doc := `[{"url":"/images/animations/ctipe/CTIPe-MUF_B.png"},{"url":"/images/animations/ctipe/CTIPe-MUF_A.png"}]`
	m, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatal(err)
	}

	names := m.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	if names[0] != "CTIPe-MUF_B.png" || names[1] != "CTIPe-MUF_A.png" {
		t.Fatalf("order not preserved: %v", names)
	}
}

func TestDecodeEmptyManifest(t *testing.T) {
	m, err := Decode(strings.NewReader("[]"))
	if err != nil {
		t.Fatal(err)
	}
	if len(m) != 0 {
		t.Fatalf("expected empty manifest, got %d entries", len(m))
	}
	if len(m.NameSet()) != 0 {
		t.Fatal("expected empty name set")
	}
}

func TestDecodeRejectsInvalidJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader("<html>error</html>")); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestEntryNameIsPathIndependent(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"/img/CTIPe-MUF_20240101T000000.png", "CTIPe-MUF_20240101T000000.png"},
		{"CTIPe-MUF_20240101T000000.png", "CTIPe-MUF_20240101T000000.png"},
		{"/a/b/c/file.png", "file.png"},
		{"/", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := (Entry{URL: tc.url}).Name(); got != tc.want {
			t.Errorf("Name(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}
