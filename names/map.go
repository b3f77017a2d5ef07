package names

import (
	"github.com/pkg/errors"
)

// Map is the name list of a single package. Serialized names refer to it by
// position, the numeric suffix travels next to the position.
type Map struct {
	table   *Table
	entries []Name
	index   map[uint32]int32
}

func NewMap(table *Table) *Map {
	if table == nil {
		table = Default
	}
	return &Map{
		table: table,
		index: make(map[uint32]int32),
	}
}

// Rebuilds a map from the list read out of a package. A listed string with a
// numeric suffix contributes only its base, same as when it was written.
func NewMapFromList(table *Table, list []string) *Map {
	m := NewMap(table)
	for _, s := range list {
		n := m.table.Intern(s)
		n.Number = NAME_NO_NUMBER
		if _, ok := m.index[n.Index]; !ok {
			m.index[n.Index] = int32(len(m.entries))
		}
		m.entries = append(m.entries, n)
	}
	return m
}

func (m *Map) Table() *Table {
	return m.table
}

// Add registers base string of n, returns its position
func (m *Map) Add(n Name) int32 {
	if idx, ok := m.index[n.Index]; ok {
		return idx
	}
	idx := int32(len(m.entries))
	m.index[n.Index] = idx
	m.entries = append(m.entries, Name{Index: n.Index})
	return idx
}

func (m *Map) IndexOf(n Name) (int32, error) {
	if idx, ok := m.index[n.Index]; ok {
		return idx, nil
	}
	return -1, errors.Errorf("name %q is not in package name map", m.table.String(n))
}

func (m *Map) Resolve(index int32, number int32) (Name, error) {
	if index < 0 || int(index) >= len(m.entries) {
		return None, errors.Errorf("name index %d out of range [0,%d)", index, len(m.entries))
	}
	if number < 0 {
		return None, errors.Errorf("negative name number %d", number)
	}
	n := m.entries[index]
	n.Number = number
	return n, nil
}

func (m *Map) Len() int {
	return len(m.entries)
}

// Entries returns base strings in serialization order
func (m *Map) Entries() []string {
	list := make([]string, len(m.entries))
	for i, n := range m.entries {
		list[i] = m.table.Base(n)
	}
	return list
}
