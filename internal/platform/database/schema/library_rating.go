package schema

// LibraryRatingTable represents the 'library.rating' table
type LibraryRatingTable struct {
	Table      string
	SeriesID   string
	Provider   string
	Rating     string
	Votes      string
	UserRating string
	UpdatedAt  string
}

// LibraryRating is the schema definition for library.rating
var LibraryRating = LibraryRatingTable{
	Table:      "library.rating",
	SeriesID:   "seriesid",
	Provider:   "provider",
	Rating:     "rating",
	Votes:      "votes",
	UserRating: "userrating",
	UpdatedAt:  "updatedat",
}

func (t LibraryRatingTable) Columns() []string {
	return []string{t.SeriesID, t.Provider, t.Rating, t.Votes, t.UserRating, t.UpdatedAt}
}
