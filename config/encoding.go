package config

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

var (
	encodingMu     sync.RWMutex
	currentCharMap *charmap.Charmap = charmap.Windows1252
)

// Single-byte charmap used for non-wide strings in package streams
func SetEncoding(name string) error {
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			if cm.String() == name {
				encodingMu.Lock()
				currentCharMap = cm
				encodingMu.Unlock()
				return nil
			}
		}
	}
	return errors.Errorf("Failed to find encoding %q", name)
}

func ListEncodings() []string {
	list := make([]string, 0)
	for _, enc := range charmap.All {
		if cm, ok := enc.(*charmap.Charmap); ok {
			list = append(list, cm.String())
		}
	}
	return list
}

func GetEncoding() *charmap.Charmap {
	encodingMu.RLock()
	defer encodingMu.RUnlock()
	return currentCharMap
}
