package yaml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestAtomicWrite_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")

	in := sample{Name: "excavation", Count: 3}
	if err := AtomicWrite(path, in); err != nil {
		t.Fatalf("AtomicWrite returned error: %v", err)
	}

	var out sample
	if err := Load(path, &out); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out != in {
		t.Errorf("round trip = %+v, want %+v", out, in)
	}
}

func TestAtomicWrite_CreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")

	if err := AtomicWrite(path, sample{Name: "first"}); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); !os.IsNotExist(err) {
		t.Error("no backup expected before an overwrite")
	}

	if err := AtomicWrite(path, sample{Name: "second"}); err != nil {
		t.Fatalf("second write: %v", err)
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if !strings.Contains(string(bak), "first") {
		t.Errorf("backup should hold previous content, got:\n%s", bak)
	}

	var out sample
	if err := Load(path, &out); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if out.Name != "second" {
		t.Errorf("current file = %q, want second", out.Name)
	}
}

func TestAtomicWrite_NoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")

	if err := AtomicWrite(path, sample{Name: "x"}); err != nil {
		t.Fatalf("AtomicWrite returned error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".leveler-tmp-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWriteRaw_RejectsInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.yaml")

	if err := AtomicWriteRaw(path, []byte("key: [unclosed")); err == nil {
		t.Fatal("expected validation error for malformed YAML")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("target file should not exist after failed write")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var out sample
	if err := Load(filepath.Join(t.TempDir(), "absent.yaml"), &out); err == nil {
		t.Error("expected error for missing file")
	}
}
