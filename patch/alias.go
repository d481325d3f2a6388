// Package patch merges partial, alias-bearing configuration patches into
// validated configuration values.
package patch

import (
	"maps"
	"slices"
	"strings"

	"github.com/palewire/datawrapper-mcp/schema"
)

// AliasTable maps external field names onto canonical ones. Every canonical
// name resolves to itself.
type AliasTable struct {
	canonical map[string]string
	aliases   map[string][]string
}

// NewAliasTable builds the table from a schema description. External names
// are the alias tags plus the last segment of each wire path, with dashes
// read as underscores too.
func NewAliasTable(desc *schema.Description) *AliasTable {
	t := &AliasTable{
		canonical: map[string]string{},
		aliases:   map[string][]string{},
	}
	for _, f := range desc.Fields {
		t.canonical[f.Name] = f.Name
	}
	for _, f := range desc.Fields {
		names := slices.Clone(f.Aliases)
		if f.Wire != "" {
			last := f.Wire[strings.LastIndex(f.Wire, ".")+1:]
			names = append(names, last, strings.ReplaceAll(last, "-", "_"))
		}
		for _, name := range names {
			if name == "" || name == f.Name {
				continue
			}
			if _, taken := t.canonical[name]; taken {
				continue
			}
			t.canonical[name] = f.Name
			t.aliases[f.Name] = append(t.aliases[f.Name], name)
		}
	}
	return t
}

// Resolve returns the canonical name for name.
func (t *AliasTable) Resolve(name string) (string, bool) {
	canonical, ok := t.canonical[name]
	return canonical, ok
}

// Aliases returns the external names accepted for a canonical field.
func (t *AliasTable) Aliases(canonical string) []string {
	return t.aliases[canonical]
}

// ResolveAll rewrites the keys of fields to canonical names. Unknown keys are
// kept as given. When a canonical key and one of its aliases are both present
// the canonical key wins.
func (t *AliasTable) ResolveAll(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	keys := slices.Sorted(maps.Keys(fields))
	for _, key := range keys {
		if canonical, ok := t.canonical[key]; !ok || canonical == key {
			out[key] = fields[key]
		}
	}
	for _, key := range keys {
		canonical, ok := t.canonical[key]
		if !ok || canonical == key {
			continue
		}
		if _, set := out[canonical]; !set {
			out[canonical] = fields[key]
		}
	}
	return out
}
