package catalog

import (
	"fmt"
	"sort"

	"rsz/internal/model"
)

// MockReader returns fixed catalogs for development and testing.
type MockReader struct {
	Catalogs map[string]*model.RawCatalog
}

func (m *MockReader) Name() string { return "mock" }

func (m *MockReader) List() ([]string, error) {
	names := make([]string, 0, len(m.Catalogs))
	for name := range m.Catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockReader) Read(name string) (*model.RawCatalog, error) {
	cat, ok := m.Catalogs[name]
	if !ok {
		return nil, fmt.Errorf("no mock catalog %s", name)
	}
	return cat, nil
}
