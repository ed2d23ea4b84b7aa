package schema

// LibraryTitleLanguageTable represents the 'library.titlelanguage' table
type LibraryTitleLanguageTable struct {
	Table      string
	Title      string
	Language   string
	Confidence string
	DetectedAt string
}

// LibraryTitleLanguage is the schema definition for library.titlelanguage
var LibraryTitleLanguage = LibraryTitleLanguageTable{
	Table:      "library.titlelanguage",
	Title:      "title",
	Language:   "language",
	Confidence: "confidence",
	DetectedAt: "detectedat",
}

func (t LibraryTitleLanguageTable) Columns() []string {
	return []string{t.Title, t.Language, t.Confidence, t.DetectedAt}
}
