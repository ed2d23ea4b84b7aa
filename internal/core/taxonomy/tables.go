// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package taxonomy

import "github.com/taibuivan/shelfsync/internal/core/series"

// Mapping sends every raw label of Sources to Genre. Tables are ordered: the
// output keeps the order in which mappings are declared.
type Mapping struct {
	Genre   string
	Sources []string
}

// # MangaUpdates

// MangaUpdatesCategories maps community categories to internal genres. A category
// only counts when it has at least as many up-votes as down-votes.
var MangaUpdatesCategories = []Mapping{
	{"Os Coll.", []string{"Anthology", "Collection of Stories", "Oneshot", "Promotional Oneshot", "Short Story",
		"Promotional Short Series"}},
	{"Cancelled", []string{"Axed/Cancelled/Discontinued", "Incomplete Due to Author/Artist Death"}},
	{"Rushed", []string{"Rushed Ending / Not Axed"}},
	{"Webtoon", []string{"Full Color", "Manga with Webtoon Version", "Webtoon"}},
	{"Old-Style", []string{"Old-Style Drawings"}},
	{"Award", []string{"Award-Winning Work", "Award-Nominated Work"}},
	{"European", []string{
		"Commoner to Noble", "Corrupt Royal Member/s", "Crown Prince/s", "Former Royalty",
		"Hidden Noble Status", "King/s", "Kingdom/s", "Nobility/Aristocracy",
		"Noble Female Lead", "Noble Girl", "Noble Male Lead", "Noble Protagonist",
		"Noble to Commoner", "Noble-Commoner Relationship", "Politics Involving Royalty",
		"Prince Male Lead", "Prince-Commoner Relationship", "Prince/s",
		"Prince/ss-Commoner Relationship", "Princess Female Lead", "Princess/es",
		"Queen Female Lead", "Queen/s", "Royal Court", "Royal-Commoner Relationship",
		"Royal-Knight Relationship", "Royal-Noble Relationship", "Royalty",
	}},
	{europeanReal, []string{"European Ambience", "Medieval European Ambience"}},
	{"Asian", []string{
		"Ancient China", "Ancient Japan", "Ancient Korea", "Asian Theme", "Chinese Ambience",
		"East Asian Ambience", "Edo Period", "Feudal Japan", "Ieyasu Tokugawa or a Relative",
		"Heian Era", "Heisei Era", "Japanese Ambience", "Japanese Imperialism", "Jishou Era",
		"Joseon Era", "Kamakura Period", "Keio Era", "Korea Under Japanese Rule",
		"Korean Ambience", "Korean Folklore", "Meiji Era", "Muromachi Period",
		"Nobunaga or a Relative", "Oiran", "Reiwa Era", "Sengoku Era", "Showa Era",
		"Taisho Era", "Three Kingdoms Period", "Yoshiwara District",
	}},
	{"isekai", []string{
		"Author Transmigrated to Own Creation", "Isekai",
		"Multiple Persons From Another World", "Multiple Transmigrated Individuals",
		"Otome Isekai", "Reincarnation", "Reincarnated in a Book World",
		"Reincarnated in a Game World", "Reincarnated in Another World",
		"Summoned to Another World", "Time Transmigrating", "Transmigration",
		"Transmigrated as a Side/Mob Character", "Transmigrated as the Protagonist",
		"Transmigrated as the Villain/ess", "Transmigrated into a Book World",
		"Transmigrated into a Game", "Transmigrated into a Parallel World",
		"Transmigrated into an Otome Game", "Transmigrated into Ancient Era",
		"Transmigrated into Another World", "Transmigrated into Opposite Gender",
		"Transmigrated into Person with Death Fate", "Transmigrated into the Past",
		"Transported to Another World", "Transported to a Book World",
		"Transported to a Game World", "Transported to a Parallel World",
	}},
	{"Reverse Isekai", []string{"Reverse Isekai"}},
	{"Time Rewind", []string{"Time Rewind"}},
	{"Villainess", []string{
		"Reincarnated as the Villain/ess", "Transmigrated as the Villain/ess",
		"Villain Couple", "Villain Protagonist", "Villain/s", "Villainess/es",
	}},
	{"Revenge", []string{"Revenge"}},
	{"Modern", []string{"2000s", "2010s", "2020s", "21st Century", "Modern Era", "Modern City", "Modern Technology"}},
	{"Childhood F.", []string{"Childhood Friends Become Lovers"}},
	{"Con. Marr.", []string{"Contract Marriage", "Contractual Relationship"}},
	{"Arranged Marr.", []string{"Arranged Marriage", "Arranged Relationship"}},
	{"Sensei", []string{"Student-Teacher Relationship", "School Nurse-Student Relationship", "Student-School Doctor Relationship"}},
	{"Age Gap", []string{"Age Gap"}},
	{"Office", []string{"Office Life", "Office Romance", "Office Worker/s", "Workplace Intercourse", "Workplace Romance"}},
	{"Boss-Sub", []string{"Boss", "Boss-Subordinate Relationship", "CEO/s", "Company President"}},
	{"Showbiz", []string{"Showbiz", "Acting", "Actor/s", "TV Show/s", "Idol/s", "Entertainment Industry",
		"Celebrity/ies", "Actress/es", "Child Actor/Actress"}},
	{"inc.", []string{"Brother-Sister Incest", "False Incest", "Incest", "Incest-Like Relationship",
		"Stepbrother-Stepsister Intercourse", "Stepsibling Love"}},
	{"Borderline H", []string{"Borderline H"}},
	{"Yandere", []string{"Yandere", "Yandere Male Lead"}},
	{"Toxic Rel.", []string{"Toxic Male Lead", "Toxic Relationship", "Trashy Male Lead"}},
}

// MangaUpdatesSchoolLife only applies when the series is not already tagged School Life.
var MangaUpdatesSchoolLife = Mapping{"School Life", []string{
	"All-Boys School", "All-Girls School", "Boarding School", "Elite School",
	"High School", "Middle School", "Prestigious School", "Private School", "School",
	"School Club/s", "University/College",
}}

// europeanReal marks a real European setting; it is folded into European.
const europeanReal = "European_real"

// MangaUpdatesTypes lists the publication types MangaUpdates reports as-is, with
// the languages their alternate titles may use.
var MangaUpdatesTypes = map[string][]string{
	"Manga":      {"ja"},
	"Manhwa":     {"ko"},
	"Manhua":     {"zh-CN"},
	"OEL":        {},
	"Vietnamese": {"vi"},
	"Malaysian":  {"ms"},
	"Indonesian": {"id"},
	"Novel":      {"ja", "ko", "zh-CN"},
	"Artbook":    {"ja", "ko", "zh-CN"},
}

// # MangaDex

// MangaDexTags maps MangaDex tag UUIDs to internal genres.
var MangaDexTags = map[string]string{
	"0a39b5a1-b235-4886-a747-1d05d216532d": "Award",
	"256c8bd9-4904-4360-bf4f-508a76d67183": "Sci-fi",
	"292e862b-2d17-4062-90a2-0356caa4ae27": "Time Rewind",
	"2bd2e8d0-f146-434a-9b51-fc9ff2c5fe6a": "Gender Bender",
	"2d1f5d56-a1e5-4d0d-a961-2193588b08ec": "Lolicon",
	"33771934-028e-4cb3-8744-691e866a923e": "Historical",
	"391b0423-d847-456f-aff0-8b0cfc03066b": "Action",
	"3b60b75c-a2d7-4860-ab56-05f391bb889c": "Psychological",
	"3e2b8dae-350e-4ab8-a8ce-016e844b9f0d": "Webtoon",
	"423e2eae-a7a2-4a8b-ac03-a8351462d71d": "Romance",
	"4d32cc48-9f00-4cca-9b5a-a839f0764984": "Comedy",
	"50880a9d-5440-4732-9afb-8f457127e836": "Mecha",
	"51d83883-4103-437c-b4b1-731cb73d786c": "Anthology",
	"5920b825-4181-4a17-beeb-9918b0ff7a30": "BL",
	"5bd0e105-4481-44ca-b6e7-7544da56b1a3": "Incest",
	"65761a2a-415e-47f3-bef2-a9dababba7a6": "Reverse Harem",
	"799c202e-7daa-44eb-9cf7-8a3c0441531e": "Martial Arts",
	"87cc87cd-a395-47af-b27a-93258283bbc6": "Adventure",
	"92d6d951-ca5e-429c-ac78-451071cbf064": "Office",
	"a3c67850-4684-404e-9b7f-c69850ee5da6": "GL",
	"aafb99c1-7f60-43fa-b75f-fc9502ce29c7": "Harem",
	"b11fda93-8f1d-4bef-b2ed-8803d3733170": "4-Koma",
	"b13b2a48-c720-44a9-9c77-39c9979373fb": "Doujinshi",
	"b9af3a63-f058-46de-a9a0-e0c13906197a": "Drama",
	"caaa44eb-cd40-4177-b930-79d3ef2afe87": "School Life",
	"cdad7e68-1419-41dd-bdce-27753074a640": "Horror",
	"cdc58593-87dd-415e-bbc0-2ec27bf404cc": "Fantasy",
	"d14322ac-4d6f-4e9b-afd9-629d5f4d8a41": "Villainess",
	"ddefd648-5140-4e5f-ba18-4eca4071d19b": "Shotacon",
	"e5301a23-ebd9-49dd-a0cb-2add944c7fe9": "Slice of Life",
	"eabc5b4c-6aff-42f3-b657-3e90cbd00b75": "Supernatural",
	"ee968100-4191-4968-93d3-f82d72be7e46": "Mystery",
	"f8f62932-27da-4fe4-8ee1-6779a8c5edba": "Tragedy",
}

// MangaDexSynonymTags collapse into one genre without duplication.
var MangaDexSynonymTags = map[string]string{
	"ace04997-f6bd-436e-b261-779182193d3d": "isekai",
	"0bc90acb-ccc1-44ca-a34a-b9f3a73259d0": "isekai",
}

// MangaDex tags that mark a one-shot or an anthology.
const (
	MangaDexOneshotTag   = "0234a31e-a729-4e28-9d6a-3f87c4966b9e"
	MangaDexAnthologyTag = "51d83883-4103-437c-b4b1-731cb73d786c"
	MangaDexDoujinshiTag = "b13b2a48-c720-44a9-9c77-39c9979373fb"
)

// MangaDexNativeTypes derives the type of Asian originals from the original language.
var MangaDexNativeTypes = map[string]series.Type{
	"ja":    series.TypeManga,
	"ko":    series.TypeManhwa,
	"zh":    series.TypeManhua,
	"zh-hk": series.TypeManhua,
}

// MangaDexNativeLanguages are the alternate-title languages of each native type.
var MangaDexNativeLanguages = map[series.Type][]string{
	series.TypeManga:  {"ja-ro", "ja"},
	series.TypeManhwa: {"ko"},
	series.TypeManhua: {"zh", "zh-hk"},
}

// MangaDexOtherTypes covers the remaining original languages with a type of their own.
var MangaDexOtherTypes = map[string]series.Type{
	"en": series.TypeOEL,
	"vi": series.TypeVietnamese,
	"ms": series.TypeMalaysian,
	"id": series.TypeIndonesian,
}

// # Bato.to

// BatoTypes are the type tags Bato.to lists among the first genres, with their language.
var BatoTypes = map[string]string{
	"Manga":   "ja",
	"Manhwa":  "ko",
	"Manhua":  "zh-CN",
	"Artbook": "",
}

// batoImageset is the Bato.to label for an artbook.
const batoImageset = "Imageset"

// batoTypeWindow is how many leading tags are scanned for a type tag.
const batoTypeWindow = 4

// BatoLanguages resolves the type from the declared original language.
var BatoLanguages = map[string]struct {
	Type     series.Type
	Language string
}{
	"Japanese": {series.TypeManga, "ja"},
	"Korean":   {series.TypeManhwa, "ko"},
	"Chinese":  {series.TypeManhua, "zh-CN"},
	"English":  {series.TypeOEL, ""},
}

// BatoGenres are kept verbatim.
var BatoGenres = []string{
	"Hentai", "Smut", "Adult", "Mature", "Ecchi", "Doujinshi", "Action", "Adventure", "Comedy", "Drama",
	"Fantasy", "Harem", "Reverse Harem", "Historical", "Horror", "Martial Arts", "Mecha", "Mystery",
	"Psychological", "Romance", "Sci-fi", "Slice of Life", "Sports", "Supernatural", "Tragedy", "Anthology",
	"Villainess", "Revenge", "Age Gap", "Showbiz", "Incest", "Harlequin", "4-Koma",
}

// BatoRenames translate a Bato.to label one to one.
var BatoRenames = map[string]string{
	"Oneshot":           "One-shot",
	"Josei(W)":          "Josei",
	"Seinen(M)":         "Seinen",
	"Shoujo(G)":         "Shoujo",
	"Shounen(B)":        "Shounen",
	"Contest winning":   "Award",
	"Childhood Friends": "Childhood F.",
	"Office Workers":    "Office",
	"Regression":        "Time Rewind",
	"Reverse Isekai":    "Reverse isekai",
}

// BatoSynonyms collapse several Bato.to labels into one genre.
var BatoSynonyms = map[string]string{
	"Yuri(GL)":          "GL",
	"Shoujo ai":         "GL",
	"Yaoi(BL)":          "BL",
	"Shounen ai":        "BL",
	"Bara(ML)":          "BL",
	"Webtoon":           "Webtoon",
	"Full Color":        "Webtoon",
	"Genderswap":        "Gender Bender",
	"Gender Bender":     "Gender Bender",
	"School Life":       "School Life",
	"College life":      "School Life",
	"Isekai":            "isekai",
	"Reincarnation":     "isekai",
	"Transmigration":    "isekai",
	"Emperor's daughte": "European",
	"Royal Family":      "European",
	"Royalty":           "European",
}

// # MyAnimeList

// MyAnimeListGenres are kept verbatim.
var MyAnimeListGenres = []string{
	"Josei", "Seinen", "Shoujo", "Shounen", "Hentai", "Ecci", "Villainess", "Action", "Adventure",
	"Comedy", "Drama", "Fantasy", "Harem", "Reverse Harem", "Historical", "Horror", "Martial Arts",
	"Mecha", "Mystery", "Psychological", "Romance", "Sci-fi", "Slice of Life", "Sports", "Supernatural",
}

// MyAnimeListRenames translate a MyAnimeList genre one to one.
var MyAnimeListRenames = map[string]string{
	"Award Winning": "Award",
	"Boys Love":     "BL",
	"Girls Love":    "GL",
	"School":        "School Life",
	"Workplace":     "Office",
}

// MyAnimeListSynonyms collapse several MyAnimeList genres into one.
var MyAnimeListSynonyms = map[string]string{
	"Isekai":         "isekai",
	"Reincarnation":  "isekai",
	"Showbiz":        "Showbiz",
	"Idols (Female)": "Showbiz",
	"Idols (Male)":   "Showbiz",
}

// myAnimeListErotica does not map to a genre of its own; see [MyAnimeList].
const myAnimeListErotica = "Erotica"

// MyAnimeListTypes maps media_type values whose type needs no extra signal.
var MyAnimeListTypes = map[string]series.Type{
	"manga":       series.TypeManga,
	"manhwa":      series.TypeManhwa,
	"manhua":      series.TypeManhua,
	"novel":       series.TypeNovel,
	"light_novel": series.TypeNovel,
	"oel":         series.TypeOEL,
}
