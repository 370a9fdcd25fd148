package utils

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFindAudioFiles(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"b.mp3",
		"a/track.FLAC",
		"a/cover.jpg",
		"a/deep/c.m4a",
		".hidden/skip.mp3",
		"notes.txt",
	}
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := FindAudioFiles(dir)
	if err != nil {
		t.Fatalf("FindAudioFiles() error: %v", err)
	}

	want := []string{
		filepath.Join(dir, "a/deep/c.m4a"),
		filepath.Join(dir, "a/track.FLAC"),
		filepath.Join(dir, "b.mp3"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FindAudioFiles() = %v, want %v", got, want)
	}
}

func TestFindAudioFilesErrors(t *testing.T) {
	if _, err := FindAudioFiles(""); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := FindAudioFiles("/nonexistent/mblookup"); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := FindAudioFiles(file); err == nil {
		t.Error("expected error for a file path")
	}
}

func TestIsAudioFile(t *testing.T) {
	tests := map[string]bool{
		"song.mp3":      true,
		"SONG.OPUS":     true,
		"cover.png":     false,
		"no-extension":  false,
		"dir.mp3/x.txt": false,
	}
	for path, want := range tests {
		if got := IsAudioFile(path); got != want {
			t.Errorf("IsAudioFile(%q) = %v, want %v", path, got, want)
		}
	}
}
