package serialize

// ComponentDefinitions maps output paths (without extension) to component files
type ComponentDefinitions map[string]*ComponentsFile

// ComponentsFile is one JSON-LD document of components
type ComponentsFile struct {
	Context    []string     `json:"@context"`
	ID         string       `json:"@id"`
	Components []*Component `json:"components"`
}

// Component describes one class
type Component struct {
	ID                   string                 `json:"@id"`
	Type                 string                 `json:"@type"`
	RequireElement       string                 `json:"requireElement"`
	Comment              string                 `json:"comment,omitempty"`
	Parameters           []*Parameter           `json:"parameters"`
	ConstructorArguments []*ConstructorArgument `json:"constructorArguments"`
}

// Parameter is a configurable value of a component
type Parameter struct {
	ID       string `json:"@id"`
	Range    string `json:"range,omitempty"`
	Comment  string `json:"comment,omitempty"`
	Unique   bool   `json:"unique,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// ConstructorArgument maps parameters onto a constructor argument. A plain
// argument only refers to a parameter; a nested one builds an object from fields.
type ConstructorArgument struct {
	ID     string              `json:"@id"`
	Fields []*ConstructorField `json:"fields,omitempty"`
}

// ConstructorField is one key of a nested constructor argument
type ConstructorField struct {
	KeyRaw string               `json:"keyRaw"`
	Value  *ConstructorArgument `json:"value"`
}

// Module is the components index document referenced by lsd:components
type Module struct {
	Context     []string `json:"@context"`
	ID          string   `json:"@id"`
	Type        string   `json:"@type"`
	RequireName string   `json:"requireName"`
	Import      []string `json:"import"`
}

// Context is a JSON-LD context document
type Context struct {
	Context []interface{} `json:"@context"`
}
