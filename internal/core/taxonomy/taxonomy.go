// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package taxonomy translates provider vocabularies into the internal genre set.

Every provider has its own labels for genres, demographics and publication
formats. The functions here are pure: they take the raw signals of one record
and return the internal genres, the publication type, the one-shot flag and the
languages accepted for alternate titles. Unknown labels are dropped silently so
new provider tags never break a fetch.

Architecture:

  - tables.go holds the literal mapping tables, one block per provider.
  - One function per provider applies them; [Normalize] dispatches by provider tag.
*/
package taxonomy

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/samber/lo"

	"github.com/taibuivan/shelfsync/internal/core/series"
	"github.com/taibuivan/shelfsync/internal/platform/apperr"
)

// Category is a MangaUpdates community category with its votes.
type Category struct {
	Name       string `json:"category"`
	VotesPlus  int    `json:"votes_plus"`
	VotesMinus int    `json:"votes_minus"`
}

// Input carries the raw signals of one provider record. Each provider reads
// only the fields it knows about.
type Input struct {
	// Tags are the raw genre labels (MangaDex: tag UUIDs; Webtoon: the represent genre).
	Tags             []string   `json:"tags"`
	OriginalLanguage string     `json:"original_language,omitempty"`
	Categories       []Category `json:"categories,omitempty"`
	Demographic      string     `json:"demographic,omitempty"`
	ContentRating    string     `json:"content_rating,omitempty"`
	// MediaType is the provider's own format label (MangaUpdates type, MyAnimeList media_type).
	MediaType string `json:"media_type,omitempty"`
}

// Result is the normalized taxonomy of one record.
type Result struct {
	Genres    []string    `json:"genres"`
	Type      series.Type `json:"type"`
	OneShot   bool        `json:"is_one_shot_or_anthology"`
	Languages []string    `json:"accepted_languages"`
}

// Normalize applies the vocabulary of provider to input.
func Normalize(provider series.Provider, input Input) (Result, error) {
	switch provider {
	case series.MangaUpdates:
		return MangaUpdates(input), nil
	case series.MangaDex:
		return MangaDex(input), nil
	case series.MyAnimeList:
		return MyAnimeList(input), nil
	case series.Bato:
		return Bato(input), nil
	case series.Webtoon:
		return Webtoon(input), nil
	}
	return Result{}, apperr.ValidationError("Unknown provider", apperr.FieldError{
		Field:   "provider",
		Message: "Must be one of: mu, dex, mal, bato, line",
	})
}

// # MangaUpdates

// MangaUpdates keeps the MangaUpdates genres as they are and adds the genres of
// the categories the community agrees with.
func MangaUpdates(input Input) Result {
	genres := slices.Clone(input.Tags)

	var categories []string
	for _, category := range input.Categories {
		if category.VotesMinus <= category.VotesPlus {
			categories = append(categories, category.Name)
		}
	}

	mappings := MangaUpdatesCategories
	if !lo.Contains(genres, MangaUpdatesSchoolLife.Genre) {
		mappings = append(slices.Clip(mappings), MangaUpdatesSchoolLife)
	}
	for _, mapping := range mappings {
		if lo.Some(categories, mapping.Sources) {
			genres = append(genres, mapping.Genre)
		}
	}

	// A real European setting wins over royalty tropes; an Asian setting
	// without one means the royalty is not European.
	switch {
	case lo.Contains(genres, europeanReal):
		genres = lo.Without(genres, europeanReal)
		if !lo.Contains(genres, "European") {
			genres = append(genres, "European")
		}
	case lo.Contains(genres, "Asian") && lo.Contains(genres, "European"):
		genres = lo.Without(genres, "European")
	}

	result := Result{Genres: genres, Type: series.TypeOther}
	switch languages, known := MangaUpdatesTypes[input.MediaType]; {
	case known:
		result.Type = series.Type(input.MediaType)
		result.Languages = slices.Clone(languages)
	case input.MediaType == "Doujinshi":
		result.Type = series.TypeManga
		result.Languages = slices.Clone(MangaUpdatesTypes["Manga"])
	}

	result.OneShot = lo.Contains(genres, "Os Coll.") || input.MediaType == "Doujinshi"
	return result
}

// # MangaDex

// MangaDex maps tag UUIDs, the demographic and the content rating. The type
// comes from the original language.
func MangaDex(input Input) Result {
	result := Result{Genres: []string{}, Type: series.TypeOther}

	if input.Demographic != "" {
		result.Genres = append(result.Genres, Capitalize(input.Demographic))
	}
	if input.ContentRating == "pornographic" {
		result.Genres = append(result.Genres, "Hentai")
	}

	for _, tag := range input.Tags {
		switch tag {
		case MangaDexOneshotTag:
			result.OneShot = true
			continue
		case MangaDexAnthologyTag, MangaDexDoujinshiTag:
			result.OneShot = true
		}

		if genre, found := MangaDexSynonymTags[tag]; found {
			if !lo.Contains(result.Genres, genre) {
				result.Genres = append(result.Genres, genre)
			}
		} else if genre, found := MangaDexTags[tag]; found {
			result.Genres = append(result.Genres, genre)
		}
	}

	language := input.OriginalLanguage
	if native, found := MangaDexNativeTypes[language]; found {
		result.Type = native
		result.Languages = slices.Clone(MangaDexNativeLanguages[native])
		return result
	}
	if other, found := MangaDexOtherTypes[language]; found {
		result.Type = other
	}
	if language != "" {
		result.Languages = []string{language}
	}
	return result
}

// # Bato.to

// Bato reads the type from the leading tags, maps the remaining labels and
// falls back to the declared original language for the type.
func Bato(input Input) Result {
	var types []string
	tags := make([]string, 0, len(input.Tags))

	for i, tag := range input.Tags {
		if i < batoTypeWindow {
			if _, isType := BatoTypes[tag]; isType {
				types = append(types, tag)
				continue
			}
			if tag == batoImageset {
				types = append(types, string(series.TypeArtbook))
				continue
			}
		}
		tags = append(tags, tag)
	}

	result := Result{Genres: []string{}, Type: series.TypeOther}
	for _, tag := range tags {
		switch {
		case lo.Contains(BatoGenres, tag):
			result.Genres = append(result.Genres, tag)
		case BatoRenames[tag] != "":
			result.Genres = append(result.Genres, BatoRenames[tag])
		case BatoSynonyms[tag] != "":
			if genre := BatoSynonyms[tag]; !lo.Contains(result.Genres, genre) {
				result.Genres = append(result.Genres, genre)
			}
		}
	}

	var languages []string
	if language, found := BatoLanguages[input.OriginalLanguage]; len(types) == 1 {
		result.Type = series.Type(types[0])
		languages = append(languages, BatoTypes[types[0]])
	} else if found {
		result.Type = language.Type
		languages = append(languages, language.Language)
	} else if lo.Contains(result.Genres, "Doujinshi") {
		result.Type = series.TypeManga
		languages = append(languages, "ja")
	}

	result.Languages = lo.Compact(languages)
	result.OneShot = lo.Contains(result.Genres, "One-shot") || lo.Contains(result.Genres, "Anthology")
	return result
}

// # MyAnimeList

// MyAnimeList maps media_type and genres. Erotica has no genre of its own: it
// becomes Smut for female demographics and Borderline H for male ones, unless
// the series is already BL or GL.
func MyAnimeList(input Input) Result {
	result := Result{Genres: []string{}, Type: series.TypeOther}

	switch input.MediaType {
	case "doujinshi":
		result.Type = series.TypeManga
		result.Genres = append(result.Genres, "Doujinshi")
	case "one_shot":
		result.Type = series.TypeManga
		result.OneShot = true
	default:
		if known, found := MyAnimeListTypes[input.MediaType]; found {
			result.Type = known
		}
	}

	erotica := false
	for _, tag := range input.Tags {
		switch {
		case lo.Contains(MyAnimeListGenres, tag):
			result.Genres = append(result.Genres, tag)
		case MyAnimeListRenames[tag] != "":
			result.Genres = append(result.Genres, MyAnimeListRenames[tag])
		case MyAnimeListSynonyms[tag] != "":
			if genre := MyAnimeListSynonyms[tag]; !lo.Contains(result.Genres, genre) {
				result.Genres = append(result.Genres, genre)
			}
		case tag == myAnimeListErotica:
			erotica = true
		}
	}

	if erotica && !lo.Contains(result.Genres, "BL") && !lo.Contains(result.Genres, "GL") {
		switch {
		case lo.Contains(result.Genres, "Josei") || lo.Contains(result.Genres, "Shoujo"):
			result.Genres = append(result.Genres, "Smut")
		case lo.Contains(result.Genres, "Seinen") || lo.Contains(result.Genres, "Shounen"):
			result.Genres = append(result.Genres, "Borderline H")
		}
	}

	return result
}

// # Line Webtoon

// Webtoon tags every series as Webtoon followed by its represent genre.
func Webtoon(input Input) Result {
	genres := []string{"Webtoon"}
	for _, tag := range input.Tags {
		if genre := Capitalize(tag); genre != "" && !lo.Contains(genres, genre) {
			genres = append(genres, genre)
		}
	}
	return Result{Genres: genres, Type: series.TypeOther}
}

// # Vocabulary

// Genres lists every internal genre any provider can produce, sorted.
func Genres() []string {
	var all []string
	for _, mapping := range MangaUpdatesCategories {
		all = append(all, mapping.Genre)
	}
	all = append(all, MangaUpdatesSchoolLife.Genre, "Hentai")
	all = append(all, lo.Values(MangaDexTags)...)
	all = append(all, lo.Values(MangaDexSynonymTags)...)
	all = append(all, BatoGenres...)
	all = append(all, lo.Values(BatoRenames)...)
	all = append(all, lo.Values(BatoSynonyms)...)
	all = append(all, MyAnimeListGenres...)
	all = append(all, lo.Values(MyAnimeListRenames)...)
	all = append(all, lo.Values(MyAnimeListSynonyms)...)
	all = append(all, "Doujinshi", "Smut", "Borderline H", "Webtoon")

	all = lo.Uniq(lo.Without(all, europeanReal))
	slices.Sort(all)
	return all
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(value string) string {
	first, size := utf8.DecodeRuneInString(value)
	if size == 0 {
		return ""
	}
	return string(unicode.ToUpper(first)) + strings.ToLower(value[size:])
}
