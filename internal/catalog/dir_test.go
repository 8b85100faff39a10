package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleCatalog = `# ra dec dist sloan_g sloan_g_err sloan_r sloan_r_err
150.10 2.20 0.5 21.30 0.05 20.10 0.04
150.20 2.30 -99 -99 -99 20.50 0.10
# a trailing comment line
150.30 2.40 1.2 22.10 0.08 21.00 -99
`

func writeCatalog(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirReader_List(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "abell2218.cat", sampleCatalog)
	writeCatalog(t, dir, "abell1234.txt", sampleCatalog)
	writeCatalog(t, dir, "notes.md", "ignored")

	r := NewDirReader(dir, []string{".cat", ".txt"}, "dist")
	names, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"abell1234", "abell2218"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("expected %v, got %v", want, names)
	}
}

func TestDirReader_Read(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "abell2218.cat", sampleCatalog)

	r := NewDirReader(dir, []string{".cat"}, "dist")
	cat, err := r.Read("abell2218")
	if err != nil {
		t.Fatal(err)
	}
	if len(cat.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(cat.Sources))
	}

	s0 := cat.Sources[0]
	if s0.RA != 150.10 || s0.Dec != 2.20 {
		t.Errorf("source 0 position %g %g", s0.RA, s0.Dec)
	}
	if !s0.HasDist || s0.Dist != 0.5 {
		t.Errorf("source 0 dist %g (has=%v)", s0.Dist, s0.HasDist)
	}
	g := s0.Phot["sloan_g"]
	if g.Value != 21.30 || !g.HasError || g.Error != 0.05 {
		t.Errorf("source 0 sloan_g %+v", g)
	}

	// source 1: -99 sentinel drops the distance and the whole g measurement
	s1 := cat.Sources[1]
	if s1.HasDist {
		t.Error("source 1 should have no distance")
	}
	if _, ok := s1.Phot["sloan_g"]; ok {
		t.Error("source 1 sloan_g should be absent")
	}
	if p := s1.Phot["sloan_r"]; p.Value != 20.50 || !p.HasError {
		t.Errorf("source 1 sloan_r %+v", p)
	}

	// source 2: -99 error keeps the value but marks the error missing
	s2 := cat.Sources[2]
	if p := s2.Phot["sloan_r"]; p.Value != 21.00 || p.HasError {
		t.Errorf("source 2 sloan_r %+v", p)
	}
}

func TestDirReader_ReadErrors(t *testing.T) {
	dir := t.TempDir()
	writeCatalog(t, dir, "bad.cat", "# ra dec sloan_r\n150.0 2.0\n")
	writeCatalog(t, dir, "nonnumeric.cat", "# ra dec sloan_r\n150.0 2.0 abc\n")

	r := NewDirReader(dir, []string{".cat"}, "dist")
	if _, err := r.Read("bad"); err == nil {
		t.Error("expected column-count mismatch error")
	}
	if _, err := r.Read("nonnumeric"); err == nil {
		t.Error("expected parse error")
	}
	if _, err := r.Read("missing"); err == nil {
		t.Error("expected missing-file error")
	}
}

func TestBands(t *testing.T) {
	cols := []string{"id", "ra", "dec", "dist", "sloan_r", "sloan_r_err", "sloan_g", "sloan_g_err"}
	want := []string{"sloan_g", "sloan_r"}
	if got := Bands(cols, "dist"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}
