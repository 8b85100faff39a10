package catalog

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"rsz/internal/model"
)

// missingValue is the sentinel some survey catalogs write for an absent
// measurement.
const missingValue = -99

// DirReader reads whitespace-column catalog files from a directory. The
// first non-empty line names the columns (a leading '#' is allowed); every
// following line is one source. A column suffixed "_err" is the error of
// the matching photometric column.
type DirReader struct {
	Dir        string
	Extensions []string
	DistColumn string
}

// NewDirReader creates a DirReader over the given directory.
func NewDirReader(dir string, extensions []string, distColumn string) *DirReader {
	return &DirReader{Dir: dir, Extensions: extensions, DistColumn: distColumn}
}

func (r *DirReader) Name() string { return "dir:" + r.Dir }

// List returns the cluster names (file base names) found in the directory.
func (r *DirReader) List() ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if err != nil {
		return nil, fmt.Errorf("scan catalog dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		for _, want := range r.Extensions {
			if ext == want {
				names = append(names, strings.TrimSuffix(e.Name(), ext))
				break
			}
		}
	}
	sort.Strings(names)
	return names, nil
}

// Read parses one cluster's catalog file.
func (r *DirReader) Read(name string) (*model.RawCatalog, error) {
	path, err := r.findFile(name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %s: %w", name, err)
	}
	defer f.Close()

	cat := &model.RawCatalog{Name: name}
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lineNo++
		if lineNo == 1 {
			cat.Columns = strings.Fields(strings.TrimPrefix(line, "#"))
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		src, err := r.parseSource(cat.Columns, line)
		if err != nil {
			return nil, fmt.Errorf("catalog %s line %d: %w", name, lineNo, err)
		}
		cat.Sources = append(cat.Sources, src)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", name, err)
	}
	if len(cat.Columns) == 0 {
		return nil, fmt.Errorf("catalog %s has no header line", name)
	}
	return cat, nil
}

func (r *DirReader) findFile(name string) (string, error) {
	for _, ext := range r.Extensions {
		path := filepath.Join(r.Dir, name+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("no catalog file for cluster %s in %s", name, r.Dir)
}

func (r *DirReader) parseSource(columns []string, line string) (model.RawSource, error) {
	fields := strings.Fields(line)
	if len(fields) != len(columns) {
		return model.RawSource{}, fmt.Errorf("expected %d columns, got %d", len(columns), len(fields))
	}
	src := model.RawSource{Phot: make(map[string]model.RawPhot)}
	values := make(map[string]float64, len(columns))
	for i, col := range columns {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return model.RawSource{}, fmt.Errorf("column %s: %w", col, err)
		}
		values[col] = v
	}

	var ok bool
	if src.RA, ok = values["ra"]; !ok {
		return model.RawSource{}, fmt.Errorf("missing ra column")
	}
	if src.Dec, ok = values["dec"]; !ok {
		return model.RawSource{}, fmt.Errorf("missing dec column")
	}
	if d, ok := values[r.DistColumn]; ok && d != missingValue {
		src.Dist = d
		src.HasDist = true
	}

	for _, band := range Bands(columns, r.DistColumn) {
		v := values[band]
		if v == missingValue {
			continue
		}
		p := model.RawPhot{Value: v}
		if e, ok := values[band+"_err"]; ok && e != missingValue {
			p.Error = e
			p.HasError = true
		}
		src.Phot[band] = p
	}
	return src, nil
}

// Bands extracts the photometric band names from catalog columns by
// excluding positional keys and "_err"-suffixed columns. The result is
// sorted, so it does not depend on column order.
func Bands(columns []string, distColumn string) []string {
	var bands []string
	for _, col := range columns {
		switch col {
		case "ra", "dec", "id", distColumn:
			continue
		}
		if strings.HasSuffix(col, "_err") {
			continue
		}
		bands = append(bands, col)
	}
	sort.Strings(bands)
	return bands
}
