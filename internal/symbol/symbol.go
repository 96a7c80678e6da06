// Package symbol implements the language-agnostic code-symbol index
// (spec §4.4): per-language configuration, extraction, caching, and
// token-scored query, feeding symbol-level retrieval into ContextGather.
package symbol

// Type enumerates the symbol kinds spec §3 names.
type Type string

const (
	TypeClass      Type = "class"
	TypeFunction   Type = "function"
	TypeMethod     Type = "method"
	TypeInterface  Type = "interface"
	TypeTypeAlias  Type = "type"
	TypeEnum       Type = "enum"
	TypeDocument   Type = "document"
	TypeSection    Type = "section"
	TypeSubsection Type = "subsection"
	TypeID         Type = "id"
	TypeVariable   Type = "variable"
	TypeAnimation  Type = "animation"
)

// Visibility classifies a symbol's access level.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Symbol is one extracted code unit (spec §3), uniquely keyed by
// (FilePath, QualifiedName).
type Symbol struct {
	SymbolType    Type       `json:"symbol_type"`
	Name          string     `json:"name"`
	QualifiedName string     `json:"qualified_name"`
	FilePath      string     `json:"file_path"`
	LineStart     int        `json:"line_start"`
	LineEnd       int        `json:"line_end"`
	Signature     string     `json:"signature,omitempty"`
	Docstring     string     `json:"docstring,omitempty"`
	ParentSymbol  string     `json:"parent_symbol,omitempty"`
	Visibility    Visibility `json:"visibility,omitempty"`
	GitHash       string     `json:"git_hash"`
}

// Key returns the symbol's unique identity.
func (s Symbol) Key() (filePath, qualifiedName string) {
	return s.FilePath, s.QualifiedName
}
