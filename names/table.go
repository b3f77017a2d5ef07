package names

import (
	"strings"
	"sync"

	"github.com/mogaika/upackage/utils"
)

// Table is a registry of unique base strings. Lookups fold case the way
// strings.EqualFold does; the first spelling wins.
type Table struct {
	m       sync.RWMutex
	entries []string
	buckets map[uint32][]uint32
}

var Default = NewTable()

func NewTable() *Table {
	t := &Table{buckets: make(map[uint32][]uint32)}
	t.add(NAME_NONE)
	return t
}

func (t *Table) add(base string) uint32 {
	idx := uint32(len(t.entries))
	t.entries = append(t.entries, base)
	h := utils.NameHash(base)
	t.buckets[h] = append(t.buckets[h], idx)
	return idx
}

func (t *Table) find(base string) (uint32, bool) {
	for _, idx := range t.buckets[utils.NameHash(base)] {
		if strings.EqualFold(t.entries[idx], base) {
			return idx, true
		}
	}
	return 0, false
}

func (t *Table) Intern(s string) Name {
	if s == "" {
		return None
	}
	base, number := splitNumber(s)

	t.m.RLock()
	idx, ok := t.find(base)
	t.m.RUnlock()
	if ok {
		return Name{Index: idx, Number: number}
	}

	t.m.Lock()
	defer t.m.Unlock()
	// someone could add it between locks
	if idx, ok = t.find(base); !ok {
		idx = t.add(base)
	}
	return Name{Index: idx, Number: number}
}

// FindExisting never grows the table
func (t *Table) FindExisting(s string) (Name, bool) {
	if s == "" {
		return None, true
	}
	base, number := splitNumber(s)
	t.m.RLock()
	defer t.m.RUnlock()
	idx, ok := t.find(base)
	if !ok {
		return None, false
	}
	return Name{Index: idx, Number: number}, true
}

func (t *Table) Base(n Name) string {
	t.m.RLock()
	defer t.m.RUnlock()
	if int(n.Index) >= len(t.entries) {
		return NAME_NONE
	}
	return t.entries[n.Index]
}

func (t *Table) String(n Name) string {
	return joinNumber(t.Base(n), n.Number)
}

func (t *Table) Len() int {
	t.m.RLock()
	defer t.m.RUnlock()
	return len(t.entries)
}
