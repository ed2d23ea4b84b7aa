// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"log/slog"
	"slices"
)

// identityOrder is the precedence used to key a contribution by one identifier.
var identityOrder = []Provider{MangaUpdates, MangaDex, MyAnimeList}

// MergeAuthorTypes collapses contributions of the same person inside one provider
// record. Contributions are keyed by their first identifier (mu, then dex, then
// mal) and by name when they have none. When the same person is credited with two
// different roles the surviving contribution becomes [RoleBoth]. Input order is kept.
func MergeAuthorTypes(authors []Contribution) []Contribution {
	merged := make([]Contribution, 0, len(authors))
	index := make(map[string]int, len(authors))

	for _, author := range authors {
		key := contributionKey(author)
		if key == "" {
			merged = append(merged, author)
			continue
		}

		if at, found := index[key]; found {
			if merged[at].Role != author.Role {
				merged[at].Role = RoleBoth
			}
			if merged[at].Name == "" {
				merged[at].Name = author.Name
			}
			continue
		}

		index[key] = len(merged)
		merged = append(merged, Contribution{Name: author.Name, Role: author.Role, IDs: author.IDs.Clone()})
	}

	return merged
}

func contributionKey(author Contribution) string {
	for _, p := range identityOrder {
		if id := author.IDs.Get(p); id != "" {
			return string(p) + ":" + id
		}
	}
	if author.Name != "" {
		return "name:" + author.Name
	}
	return ""
}

// MergeAuthorIDs collapses the author lists of several providers describing the
// same series. Contributions are grouped by role (Both, Author, Artist). A group
// holding between 2 and count entries is assumed to be one person seen through
// count sources, and its identifiers are unioned. If two entries of a group
// disagree on a tag, the merge is abandoned: a warning is logged and the input
// list is returned unchanged.
func MergeAuthorIDs(authors []Contribution, count int, logger *slog.Logger) []Contribution {
	groups := map[Role][]Contribution{}
	for _, author := range authors {
		groups[author.Role] = append(groups[author.Role], author)
	}

	merged := make([]Contribution, 0, len(authors))
	for _, role := range []Role{RoleBoth, RoleAuthor, RoleArtist} {
		group := groups[role]
		if len(group) < 2 || len(group) > count {
			merged = append(merged, group...)
			continue
		}

		person := Contribution{Role: role, IDs: IDs{}}
		for _, author := range group {
			ids, err := person.IDs.Absorb(author.IDs)
			if err != nil {
				if logger != nil {
					logger.Warn("author_id_merge_conflict",
						slog.String("role", string(role)),
						slog.Int("sources", count),
						slog.Any("authors", authors),
					)
				}
				return slices.Clone(authors)
			}
			person.IDs = ids
			if person.Name == "" {
				person.Name = author.Name
			}
		}
		merged = append(merged, person)
	}

	return merged
}
