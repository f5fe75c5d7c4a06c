package main

import "testing"

func stubBuildInfo(t *testing.T, v, c, d string) {
	t.Helper()
	prevVersion, prevCommit, prevDate := version, commit, date
	version, commit, date = v, c, d
	t.Cleanup(func() {
		version, commit, date = prevVersion, prevCommit, prevDate
	})
}

func TestWindowTitleBare(t *testing.T) {
	stubBuildInfo(t, "", "", "")
	if got := windowTitle(titleOptions{}); got != "Easel" {
		t.Fatalf("title = %q", got)
	}
}

func TestWindowTitleFileAndTool(t *testing.T) {
	stubBuildInfo(t, "", "", "")
	got := windowTitle(titleOptions{File: "shot.png", Tool: "preview"})
	if got != "Easel - shot.png - preview" {
		t.Fatalf("title = %q", got)
	}
}

func TestWindowTitleDirtyMarker(t *testing.T) {
	stubBuildInfo(t, "", "", "")
	if got := windowTitle(titleOptions{File: "shot.png", Dirty: true}); got != "Easel - *shot.png" {
		t.Fatalf("title = %q", got)
	}
	if got := windowTitle(titleOptions{Dirty: true}); got != "Easel - *unsaved" {
		t.Fatalf("unsaved title = %q", got)
	}
}

func TestWindowTitleUndoDepthAndBuildInfo(t *testing.T) {
	stubBuildInfo(t, "1.2.3", "abc123", "2024-05-01")
	got := windowTitle(titleOptions{File: "shot.png", UndoDepth: 4})
	want := "Easel - shot.png - 4 undo - v1.2.3 - commit abc123 - 2024-05-01"
	if got != want {
		t.Fatalf("title = %q, want %q", got, want)
	}
}

func TestWindowTitleExtrasTrail(t *testing.T) {
	stubBuildInfo(t, "", "", "")
	got := windowTitle(titleOptions{File: "a.png", Extras: []string{"session 2"}})
	if got != "Easel - a.png - session 2" {
		t.Fatalf("title = %q", got)
	}
}
