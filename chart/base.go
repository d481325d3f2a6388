// Package chart defines the Datawrapper chart kinds the server can build,
// their configuration schemas and the mapping between canonical field names
// and the remote chart document.
package chart

// Field names with a fixed role in every kind.
const (
	FieldID   = "chart_id"
	FieldType = "chart_type"
	FieldData = "data"
)

// Base holds the fields every chart kind shares. The wire tag is the dotted
// path of the field in the Datawrapper chart document.
type Base struct {
	ChartID    string `json:"chart_id,omitempty" alias:"id" wire:"id" jsonschema:"description=Chart ID assigned by Datawrapper. Read only."`
	ChartType  string `json:"chart_type" alias:"type" jsonschema:"required,description=Chart kind. Fixed at creation."`
	Title      string `json:"title" wire:"title" jsonschema:"required,description=Chart headline"`
	Intro      string `json:"intro,omitempty" alias:"description" wire:"metadata.describe.intro" jsonschema:"description=Text shown below the title"`
	Byline     string `json:"byline,omitempty" wire:"metadata.describe.byline" jsonschema:"description=Author credit"`
	SourceName string `json:"source_name,omitempty" alias:"source" wire:"metadata.describe.source-name" jsonschema:"description=Name of the data source"`
	SourceURL  string `json:"source_url,omitempty" wire:"metadata.describe.source-url" jsonschema:"description=Link to the data source"`
	Notes      string `json:"notes,omitempty" wire:"metadata.annotate.notes" jsonschema:"description=Footnote below the chart"`
	AltText    string `json:"alt_text,omitempty" alias:"aria_description" wire:"metadata.describe.aria-description" jsonschema:"description=Screen reader description"`
	Language   string `json:"language,omitempty" alias:"lang" wire:"language" jsonschema:"description=Locale such as en-US"`
	Theme      string `json:"theme,omitempty" wire:"theme" jsonschema:"description=Datawrapper theme id"`
	FolderID   *int   `json:"folder_id,omitempty" wire:"folderId" jsonschema:"description=Folder to store the chart in"`
	Data       any    `json:"data,omitempty" jsonschema:"description=Chart data. Prefer the data argument of the tools."`
}

// Common returns the shared fields.
func (b *Base) Common() *Base { return b }

// Config is implemented by every chart kind.
type Config interface {
	Common() *Base
}
