package assets

import (
	"sort"
	"strings"
	"testing"
)

func TestIconNamesSorted(t *testing.T) {
	names := IconNames()
	if len(names) == 0 {
		t.Fatal("no icons embedded")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("names not sorted: %v", names)
	}
	want := map[string]bool{"arrow": true, "cancel": true, "heart": true, "star": true}
	for _, name := range names {
		delete(want, name)
	}
	if len(want) != 0 {
		t.Fatalf("missing icons: %v (have %v)", want, names)
	}
}

func TestIconPathData(t *testing.T) {
	for _, name := range IconNames() {
		data, err := IconPath(name)
		if err != nil {
			t.Fatalf("IconPath(%s): %v", name, err)
		}
		if !strings.HasPrefix(data, "M ") {
			t.Fatalf("icon %s does not start with a move: %q", name, data)
		}
	}
}

func TestIconPathUnknown(t *testing.T) {
	_, err := IconPath("ghost")
	if err == nil || !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("expected error naming the icon, got %v", err)
	}
}
