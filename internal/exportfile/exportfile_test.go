package exportfile

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	got, err := Resolve("", false)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != DefaultPosixName {
		t.Errorf("default posix file = %q", got)
	}

	got, err = Resolve("", true)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(got) != DefaultWindowsName {
		t.Errorf("default windows file = %q", got)
	}
}

func TestResolveRelative(t *testing.T) {
	got, err := Resolve("env.sh", false)
	if err != nil {
		t.Fatal(err)
	}
	if !filepath.IsAbs(got) {
		t.Errorf("relative path not resolved: %q", got)
	}
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export-esp.sh")
	exports := []string{
		`export LIBCLANG_PATH="/opt/llvm/lib"`,
		`export PATH="/opt/gcc/bin:$PATH"`,
	}
	if err := Write(path, exports, false); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := exports[0] + "\n" + exports[1] + "\n"
	if string(data) != want {
		t.Errorf("export file content = %q, want %q", data, want)
	}
}

func TestWriteWindowsSeparators(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export-esp.ps1")
	if err := Write(path, []string{`$Env:IDF_PATH = "C:/esp/idf"`}, true); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := `$Env:IDF_PATH = "C:\esp\idf"` + "\n"
	if string(data) != want {
		t.Errorf("export file content = %q, want %q", data, want)
	}
}

func TestDeleteAbsent(t *testing.T) {
	if err := Delete(filepath.Join(t.TempDir(), "missing.sh")); err != nil {
		t.Errorf("deleting absent export file: %v", err)
	}
}
