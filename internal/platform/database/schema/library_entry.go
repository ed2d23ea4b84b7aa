package schema

// LibraryEntryTable represents the 'library.entry' table
type LibraryEntryTable struct {
	Table     string
	ID        string
	SeriesID  string
	Status    string
	Source    string
	CreatedAt string
	UpdatedAt string
}

// LibraryEntry is the schema definition for library.entry
var LibraryEntry = LibraryEntryTable{
	Table:     "library.entry",
	ID:        "id",
	SeriesID:  "seriesid",
	Status:    "status",
	Source:    "source",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t LibraryEntryTable) Columns() []string {
	return []string{t.ID, t.SeriesID, t.Status, t.Source, t.CreatedAt, t.UpdatedAt}
}
