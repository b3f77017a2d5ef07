package resource

import (
	"fmt"

	"github.com/pkg/errors"
)

type ObjectFlags uint32

const (
	RF_NoFlags                      ObjectFlags = 0
	RF_Public                       ObjectFlags = 0x00000001
	RF_Standalone                   ObjectFlags = 0x00000002
	RF_Native                       ObjectFlags = 0x00000004
	RF_Transactional                ObjectFlags = 0x00000008
	RF_ClassDefaultObject           ObjectFlags = 0x00000010
	RF_ArchetypeObject              ObjectFlags = 0x00000020
	RF_Transient                    ObjectFlags = 0x00000040
	RF_RootSet                      ObjectFlags = 0x00000080
	RF_Unreachable                  ObjectFlags = 0x00000100
	RF_TagGarbageTemp               ObjectFlags = 0x00000200
	RF_NeedLoad                     ObjectFlags = 0x00000400
	RF_AsyncLoading                 ObjectFlags = 0x00000800
	RF_NeedPostLoad                 ObjectFlags = 0x00001000
	RF_NeedPostLoadSubobjects       ObjectFlags = 0x00002000
	RF_PendingKill                  ObjectFlags = 0x00004000
	RF_BeginDestroyed               ObjectFlags = 0x00008000
	RF_FinishDestroyed              ObjectFlags = 0x00010000
	RF_BeingRegenerated             ObjectFlags = 0x00020000
	RF_DefaultSubObject             ObjectFlags = 0x00040000
	RF_WasLoaded                    ObjectFlags = 0x00080000
	RF_TextExportTransient          ObjectFlags = 0x00100000
	RF_LoadCompleted                ObjectFlags = 0x00200000
	RF_InheritableComponentTemplate ObjectFlags = 0x00400000

	// Wire only: marks the primary asset of a package inside the saved flags
	// word. Never set on a live flag value.
	RF_AssetExport ObjectFlags = 0x00800000
)

// Flags that survive a save/load cycle
const RF_Load = RF_Public | RF_Standalone | RF_Native | RF_Transactional |
	RF_ClassDefaultObject | RF_ArchetypeObject | RF_DefaultSubObject |
	RF_TextExportTransient | RF_InheritableComponentTemplate

func init() {
	if RF_Load&RF_AssetExport != 0 {
		panic(fmt.Sprintf("asset export bit 0x%x overlaps loadable flags 0x%x", RF_AssetExport, RF_Load))
	}
}

func (f ObjectFlags) Persisted() ObjectFlags {
	return f & RF_Load
}

func (f ObjectFlags) Has(any ObjectFlags) bool {
	return f&any != 0
}

func packAssetFlag(flags ObjectFlags, isAsset bool) uint32 {
	saved := flags.Persisted()
	if isAsset {
		saved |= RF_AssetExport
	}
	return uint32(saved)
}

func unpackAssetFlag(saved uint32) (ObjectFlags, bool) {
	return ObjectFlags(saved).Persisted(), ObjectFlags(saved)&RF_AssetExport != 0
}

var flagNames = []struct {
	flag ObjectFlags
	name string
}{
	{RF_Public, "Public"},
	{RF_Standalone, "Standalone"},
	{RF_Native, "Native"},
	{RF_Transactional, "Transactional"},
	{RF_ClassDefaultObject, "ClassDefaultObject"},
	{RF_ArchetypeObject, "ArchetypeObject"},
	{RF_Transient, "Transient"},
	{RF_RootSet, "RootSet"},
	{RF_Unreachable, "Unreachable"},
	{RF_TagGarbageTemp, "TagGarbageTemp"},
	{RF_NeedLoad, "NeedLoad"},
	{RF_AsyncLoading, "AsyncLoading"},
	{RF_NeedPostLoad, "NeedPostLoad"},
	{RF_NeedPostLoadSubobjects, "NeedPostLoadSubobjects"},
	{RF_PendingKill, "PendingKill"},
	{RF_BeginDestroyed, "BeginDestroyed"},
	{RF_FinishDestroyed, "FinishDestroyed"},
	{RF_BeingRegenerated, "BeingRegenerated"},
	{RF_DefaultSubObject, "DefaultSubObject"},
	{RF_WasLoaded, "WasLoaded"},
	{RF_TextExportTransient, "TextExportTransient"},
	{RF_LoadCompleted, "LoadCompleted"},
	{RF_InheritableComponentTemplate, "InheritableComponentTemplate"},
	{RF_AssetExport, "AssetExport"},
}

// Names lists set flags, unknown bits come last as hex
func (f ObjectFlags) Names() []string {
	var list []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			list = append(list, fn.name)
			f &^= fn.flag
		}
	}
	if f != 0 {
		list = append(list, fmt.Sprintf("0x%x", uint32(f)))
	}
	return list
}

func ParseFlagNames(list []string) (ObjectFlags, error) {
	var f ObjectFlags
next:
	for _, s := range list {
		for _, fn := range flagNames {
			if fn.name == s {
				f |= fn.flag
				continue next
			}
		}
		var v uint32
		if _, err := fmt.Sscanf(s, "0x%x", &v); err != nil {
			return 0, errors.Errorf("unknown object flag %q", s)
		}
		f |= ObjectFlags(v)
	}
	return f, nil
}

type Mark uint32

const (
	OBJECTMARK_NotForClient Mark = 1 << iota
	OBJECTMARK_NotForServer
	OBJECTMARK_NotForEditorGame
)
