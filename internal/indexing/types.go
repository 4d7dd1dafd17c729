package indexing

// Entry is the index projection of one recipe.
type Entry struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	NameEn   string   `json:"name_en,omitempty"`
	Category string   `json:"category"`
	Tags     []string `json:"tags,omitempty"`
}

// SearchFields returns every field a query is matched against, in order:
// name, English name, category, then each tag.
func (e Entry) SearchFields() []string {
	fields := make([]string, 0, 3+len(e.Tags))
	fields = append(fields, e.Name, e.NameEn, e.Category)
	fields = append(fields, e.Tags...)
	return fields
}
