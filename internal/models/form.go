package models

type FieldKind int

const (
	TextField FieldKind = iota
	FileField
)

// FormField is one multipart part, already classified by the transport.
// Value is set for text fields, File for file fields.
type FormField struct {
	Name  string
	Kind  FieldKind
	Value string
	File  *FilePart
}

type FilePart struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Form keeps parts in submission order.
type Form struct {
	Fields []FormField
}

func (f *Form) AddText(name, value string) {
	f.Fields = append(f.Fields, FormField{Name: name, Kind: TextField, Value: value})
}

func (f *Form) AddFile(name string, part *FilePart) {
	f.Fields = append(f.Fields, FormField{Name: name, Kind: FileField, File: part})
}

// Value returns the first text value for name.
func (f *Form) Value(name string) (string, bool) {
	for _, field := range f.Fields {
		if field.Kind == TextField && field.Name == name {
			return field.Value, true
		}
	}
	return "", false
}

func (f *Form) Files() []FormField {
	files := make([]FormField, 0, len(f.Fields))
	for _, field := range f.Fields {
		if field.Kind == FileField && field.File != nil {
			files = append(files, field)
		}
	}
	return files
}
