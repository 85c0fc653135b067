package serialize

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
)

// FileExtension is appended to component definition keys
const FileExtension = ".jsonld"

// Document is one rendered output file
type Document struct {
	Path    string
	Content []byte
}

// Render marshals the component files, the module index and the context into
// documents sorted by path. contextPath names the file the context is written to.
func Render(defs ComponentDefinitions, module *Module, modulePath string, context *Context, contextPath string) ([]Document, error) {
	docs := make([]Document, 0, len(defs)+2)
	for key, file := range defs {
		content, err := marshal(file)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		docs = append(docs, Document{Path: key + FileExtension, Content: content})
	}

	if module != nil {
		content, err := marshal(module)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", modulePath, err)
		}
		docs = append(docs, Document{Path: modulePath, Content: content})
	}

	if context != nil && contextPath != "" {
		content, err := marshal(context)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", contextPath, err)
		}
		docs = append(docs, Document{Path: contextPath, Content: content})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	return docs, nil
}

// Relocate moves documents from under packageRoot to under outputDir
func Relocate(docs []Document, packageRoot, outputDir string) []Document {
	if outputDir == "" {
		return docs
	}
	root := path.Clean(packageRoot)
	out := make([]Document, len(docs))
	for i, doc := range docs {
		rel := strings.TrimPrefix(strings.TrimPrefix(doc.Path, root), "/")
		out[i] = Document{Path: path.Join(outputDir, rel), Content: doc.Content}
	}
	return out
}

func marshal(v interface{}) ([]byte, error) {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(content, '\n'), nil
}
