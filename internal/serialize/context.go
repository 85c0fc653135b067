package serialize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/dshills/componentsgen/internal/metadata"
)

// IRIs shared by every generated context
const (
	ComponentsJSContext = "https://linkedsoftwaredependencies.org/bundles/npm/componentsjs/^3.0.0/components/context.jsonld"
	NpmdIRI             = "https://linkedsoftwaredependencies.org/bundles/npm/"
)

// ContextConstructor builds the JSON-LD context of a package
type ContextConstructor struct {
	meta *metadata.PackageMetadata
}

// NewContextConstructor creates a ContextConstructor for the package described by meta
func NewContextConstructor(meta *metadata.PackageMetadata) *ContextConstructor {
	return &ContextConstructor{meta: meta}
}

// PackageNamePrefix abbreviates a package name to the first letter of each
// word: "@personal/my-package-stuff" becomes "pmps"
func PackageNamePrefix(name string) string {
	name = strings.TrimPrefix(name, "@")
	var b strings.Builder
	for _, word := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '/' }) {
		b.WriteByte(word[0])
	}
	return b.String()
}

// VersionRange returns the caret range of the package's major version, such as ^1.0.0
func VersionRange(version string) (string, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("invalid package version %q: %w", version, err)
	}
	return fmt.Sprintf("^%d.0.0", v.Major()), nil
}

// ConstructContext builds the package context: the Components.js context
// followed by the package prefixes and one shortcut per component
func (c *ContextConstructor) ConstructContext(defs ComponentDefinitions) (*Context, error) {
	versionRange, err := VersionRange(c.meta.Version)
	if err != nil {
		return nil, err
	}

	prefix := PackageNamePrefix(c.meta.Name)
	entries := orderedmap.New[string, string]()
	entries.Set("npmd", NpmdIRI)
	entries.Set(prefix, "npmd:"+c.meta.Name+"/")
	entries.Set("files-"+prefix, prefix+":"+versionRange+"/")

	shortcuts := c.ConstructComponentShortcuts(defs)
	for pair := shortcuts.Oldest(); pair != nil; pair = pair.Next() {
		entries.Set(pair.Key, pair.Value)
	}

	return &Context{Context: []interface{}{ComponentsJSContext, entries}}, nil
}

// ConstructComponentShortcuts maps each component's short name to its id,
// ordered by component id
func (c *ContextConstructor) ConstructComponentShortcuts(defs ComponentDefinitions) *orderedmap.OrderedMap[string, string] {
	var ids []string
	for _, file := range defs {
		for _, component := range file.Components {
			ids = append(ids, component.ID)
		}
	}
	sort.Strings(ids)

	shortcuts := orderedmap.New[string, string]()
	for _, id := range ids {
		if i := strings.LastIndex(id, "#"); i >= 0 && i < len(id)-1 {
			shortcuts.Set(id[i+1:], id)
		}
	}
	return shortcuts
}
