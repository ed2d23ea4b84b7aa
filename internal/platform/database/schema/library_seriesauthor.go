package schema

// LibrarySeriesAuthorTable represents the 'library.seriesauthor' table
type LibrarySeriesAuthorTable struct {
	Table    string
	SeriesID string
	AuthorID string
	Role     string
}

// LibrarySeriesAuthor is the schema definition for library.seriesauthor
var LibrarySeriesAuthor = LibrarySeriesAuthorTable{
	Table:    "library.seriesauthor",
	SeriesID: "seriesid",
	AuthorID: "authorid",
	Role:     "role",
}

func (t LibrarySeriesAuthorTable) Columns() []string {
	return []string{t.SeriesID, t.AuthorID, t.Role}
}
