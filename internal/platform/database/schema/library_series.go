package schema

// LibrarySeriesTable represents the 'library.series' table
type LibrarySeriesTable struct {
	Table           string
	ID              string
	Slug            string
	Title           string
	AltTitles       string
	Type            string
	Description     string
	Genres          string
	IsOneShot       string
	Year            string
	ThumbnailURL    string
	Status          string
	PrimaryProvider string
	IDMu            string
	IDDex           string
	IDMal           string
	IDBato          string
	IDLine          string
	Timestamps      string
	CreatedAt       string
	UpdatedAt       string
}

// LibrarySeries is the schema definition for library.series
var LibrarySeries = LibrarySeriesTable{
	Table:           "library.series",
	ID:              "id",
	Slug:            "slug",
	Title:           "title",
	AltTitles:       "alttitles",
	Type:            "type",
	Description:     "description",
	Genres:          "genres",
	IsOneShot:       "isoneshot",
	Year:            "year",
	ThumbnailURL:    "thumbnailurl",
	Status:          "status",
	PrimaryProvider: "primaryprovider",
	IDMu:            "idmu",
	IDDex:           "iddex",
	IDMal:           "idmal",
	IDBato:          "idbato",
	IDLine:          "idline",
	Timestamps:      "timestamps",
	CreatedAt:       "createdat",
	UpdatedAt:       "updatedat",
}

func (t LibrarySeriesTable) Columns() []string {
	return []string{
		t.ID, t.Slug, t.Title, t.AltTitles, t.Type, t.Description, t.Genres, t.IsOneShot,
		t.Year, t.ThumbnailURL, t.Status, t.PrimaryProvider,
		t.IDMu, t.IDDex, t.IDMal, t.IDBato, t.IDLine,
		t.Timestamps, t.CreatedAt, t.UpdatedAt,
	}
}

// IDColumns maps each provider tag to the column holding its identifier.
func (t LibrarySeriesTable) IDColumns() map[string]string {
	return map[string]string{
		"mu":   t.IDMu,
		"dex":  t.IDDex,
		"mal":  t.IDMal,
		"bato": t.IDBato,
		"line": t.IDLine,
	}
}
