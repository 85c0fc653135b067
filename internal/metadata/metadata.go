package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/buger/jsonparser"
)

// Metadata errors
var (
	ErrInvalidPackage = errors.New("invalid package")
	ErrInvalidContext = errors.New("invalid JSON-LD context")
)

// PackageJSON is the manifest file name inside a package root
const PackageJSON = "package.json"

// FileReader reads package files
type FileReader interface {
	GetFileContent(ctx context.Context, path string) (string, error)
}

// PackageMetadata is the linked-data metadata declared in a package.json
type PackageMetadata struct {
	Name           string
	Version        string
	ModuleIRI      string                     // lsd:module
	ComponentsPath string                     // lsd:components, joined to the package root
	Contexts       map[string]json.RawMessage // context IRI -> parsed context document
	ContextPaths   map[string]string          // context IRI -> file path
	ImportPaths    map[string]string          // lsd:importPaths, may be empty
}

// Loader reads package metadata
type Loader struct {
	reader FileReader
}

// NewLoader creates a Loader reading files through reader
func NewLoader(reader FileReader) *Loader {
	return &Loader{reader: reader}
}

// Load reads <root>/package.json and every context file it declares
func (l *Loader) Load(ctx context.Context, root string) (*PackageMetadata, error) {
	packageJSONPath := path.Join(root, PackageJSON)
	content, err := l.reader.GetFileContent(ctx, packageJSONPath)
	if err != nil {
		return nil, err
	}
	data := []byte(content)

	if err := validateObject(data); err != nil {
		return nil, fmt.Errorf("%w: syntax error in %s: %v", ErrInvalidPackage, packageJSONPath, err)
	}

	meta := &PackageMetadata{
		Contexts:     make(map[string]json.RawMessage),
		ContextPaths: make(map[string]string),
		ImportPaths:  make(map[string]string),
	}

	meta.Name, _ = optionalString(data, "name")
	meta.Version, _ = optionalString(data, "version")

	var found bool
	if meta.ModuleIRI, found = optionalString(data, "lsd:module"); !found {
		return nil, fmt.Errorf("%w: missing 'lsd:module' IRI in %s", ErrInvalidPackage, packageJSONPath)
	}

	components, found := optionalString(data, "lsd:components")
	if !found {
		return nil, fmt.Errorf("%w: missing 'lsd:components' in %s", ErrInvalidPackage, packageJSONPath)
	}
	meta.ComponentsPath = path.Join(root, components)

	if _, _, _, err := jsonparser.Get(data, "lsd:contexts"); err != nil {
		return nil, fmt.Errorf("%w: missing 'lsd:contexts' in %s", ErrInvalidPackage, packageJSONPath)
	}
	contexts, err := stringMap(data, "lsd:contexts")
	if err != nil {
		return nil, fmt.Errorf("%w: invalid 'lsd:contexts' in %s: %v", ErrInvalidPackage, packageJSONPath, err)
	}
	for iri, file := range contexts {
		contextPath := path.Join(root, file)
		document, err := l.loadContext(ctx, contextPath)
		if err != nil {
			return nil, err
		}
		meta.Contexts[iri] = document
		meta.ContextPaths[iri] = contextPath
	}

	if _, _, _, err := jsonparser.Get(data, "lsd:importPaths"); err == nil {
		if meta.ImportPaths, err = stringMap(data, "lsd:importPaths"); err != nil {
			return nil, fmt.Errorf("%w: invalid 'lsd:importPaths' in %s: %v", ErrInvalidPackage, packageJSONPath, err)
		}
	}

	return meta, nil
}

func (l *Loader) loadContext(ctx context.Context, contextPath string) (json.RawMessage, error) {
	content, err := l.reader.GetFileContent(ctx, contextPath)
	if err != nil {
		return nil, err
	}
	if err := validateObject([]byte(content)); err != nil {
		return nil, fmt.Errorf("%w: syntax error in %s: %v", ErrInvalidContext, contextPath, err)
	}
	return json.RawMessage(content), nil
}

// validateObject checks that data is a well-formed JSON object
func validateObject(data []byte) error {
	var object map[string]json.RawMessage
	return json.Unmarshal(data, &object)
}

// optionalString returns the string at key and whether it was present
func optionalString(data []byte, key string) (string, bool) {
	value, err := jsonparser.GetString(data, key)
	if err != nil {
		return "", false
	}
	return value, true
}

// stringMap reads a JSON object of string values
func stringMap(data []byte, key string) (map[string]string, error) {
	out := make(map[string]string)
	err := jsonparser.ObjectEach(data, func(k []byte, v []byte, dataType jsonparser.ValueType, _ int) error {
		if dataType != jsonparser.String {
			return fmt.Errorf("value of %q is not a string", k)
		}
		name, err := jsonparser.ParseString(k)
		if err != nil {
			return err
		}
		value, err := jsonparser.ParseString(v)
		if err != nil {
			return err
		}
		out[name] = value
		return nil
	}, key)
	if err != nil {
		return nil, err
	}
	return out, nil
}
