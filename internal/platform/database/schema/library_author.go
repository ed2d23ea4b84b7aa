package schema

// LibraryAuthorTable represents the 'library.author' table
type LibraryAuthorTable struct {
	Table     string
	ID        string
	Name      string
	IDMu      string
	IDDex     string
	IDMal     string
	CreatedAt string
	UpdatedAt string
}

// LibraryAuthor is the schema definition for library.author
var LibraryAuthor = LibraryAuthorTable{
	Table:     "library.author",
	ID:        "id",
	Name:      "name",
	IDMu:      "idmu",
	IDDex:     "iddex",
	IDMal:     "idmal",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t LibraryAuthorTable) Columns() []string {
	return []string{t.ID, t.Name, t.IDMu, t.IDDex, t.IDMal, t.CreatedAt, t.UpdatedAt}
}

// IDColumns maps each author-capable provider tag to the column holding its identifier.
func (t LibraryAuthorTable) IDColumns() map[string]string {
	return map[string]string{
		"mu":  t.IDMu,
		"dex": t.IDDex,
		"mal": t.IDMal,
	}
}
