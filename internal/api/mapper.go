package api

import (
	"time"

	"github.com/pmeridian/charta/internal/domain"
)

// commonFields maps each canonical media field to its known wire synonyms.
// Resolution also tries the camelCase/PascalCase forms of every entry, so
// only genuinely different spellings need listing here.
var commonFields = map[string][]string{
	"id":              nil,
	"title":           nil,
	"mediaType":       nil,
	"status":          nil,
	"rating":          nil,
	"ownershipStatus": nil,
	"link":            nil,
	"description":     nil,
	"notes":           nil,
	"thumbnail":       nil,
	"dateAdded":       nil,
	"dateCompleted":   nil,
	"topics":          {"topicNames"},
	"genres":          {"genreNames"},
}

var variantFields = map[domain.MediaType]map[string][]string{
	domain.MediaTypeBook: {
		"author":       nil,
		"isbn":         {"ISBN"},
		"asin":         {"ASIN"},
		"format":       nil,
		"partOfSeries": nil,
	},
	domain.MediaTypeMovie: {
		"director":         nil,
		"cast":             nil,
		"releaseYear":      nil,
		"runtimeMinutes":   nil,
		"mpaaRating":       nil,
		"imdbId":           nil,
		"tmdbId":           nil,
		"tmdbRating":       nil,
		"tagline":          nil,
		"homepage":         nil,
		"originalLanguage": nil,
		"originalTitle":    nil,
	},
	domain.MediaTypeTVShow: {
		"creator":          nil,
		"cast":             nil,
		"firstAirYear":     nil,
		"lastAirYear":      nil,
		"numberOfSeasons":  {"seasons"},
		"numberOfEpisodes": {"episodes"},
		"contentRating":    nil,
		"tmdbId":           nil,
		"tmdbRating":       nil,
		"tagline":          nil,
		"homepage":         nil,
		"originalLanguage": nil,
		"originalName":     nil,
	},
	domain.MediaTypePodcast: {
		"podcastType":       nil,
		"parentPodcastId":   nil,
		"audioLink":         nil,
		"releaseDate":       nil,
		"durationInSeconds": {"durationSeconds"},
		"externalId":        nil,
		"publisher":         nil,
	},
}

// BuildMediaItem maps a raw media record into the canonical view model.
// Key casing is resolved per field, the variant payload is dispatched on the
// resolved media type, and wire fields this client does not model are passed
// through in Extra. Building the canonical record of the result is a no-op.
func BuildMediaItem(rec Record) domain.MediaItem {
	item := domain.MediaItem{
		ID:            ResolveString(rec, "id"),
		Title:         ResolveString(rec, "title"),
		MediaType:     domain.ParseMediaType(ResolveString(rec, "mediaType")),
		Status:        domain.Status(ResolveString(rec, "status")),
		Rating:        domain.Rating(ResolveString(rec, "rating")),
		Ownership:     domain.OwnershipStatus(ResolveString(rec, "ownershipStatus")),
		Link:          ResolveString(rec, "link"),
		Description:   ResolveString(rec, "description"),
		Notes:         ResolveString(rec, "notes"),
		Thumbnail:     ResolveString(rec, "thumbnail"),
		DateCompleted: ResolveTime(rec, "dateCompleted"),
		Topics:        domain.NormalizeLabels(ResolveNames(rec, "topics", "topicNames")),
		Genres:        domain.NormalizeLabels(ResolveNames(rec, "genres", "genreNames")),
	}
	if t := ResolveTime(rec, "dateAdded"); t != nil {
		item.DateAdded = *t
	}

	consumed := consumedKeys(commonFields)
	if fields, ok := variantFields[item.MediaType]; ok {
		buildVariant(&item, rec)
		for key := range consumedKeys(fields) {
			consumed[key] = true
		}
	}

	for key, val := range rec {
		if !consumed[lowerFirst(key)] {
			if item.Extra == nil {
				item.Extra = make(map[string]any)
			}
			item.Extra[lowerFirst(key)] = val
		}
	}

	return item
}

func consumedKeys(fields map[string][]string) map[string]bool {
	keys := make(map[string]bool, len(fields))
	for field, synonyms := range fields {
		keys[lowerFirst(field)] = true
		for _, syn := range synonyms {
			keys[lowerFirst(syn)] = true
		}
	}
	return keys
}

func buildVariant(item *domain.MediaItem, rec Record) {
	switch item.MediaType {
	case domain.MediaTypeBook:
		item.Book = &domain.BookPayload{
			Author:       ResolveString(rec, "author"),
			ISBN:         ResolveString(rec, "isbn", "ISBN"),
			ASIN:         ResolveString(rec, "asin", "ASIN"),
			Format:       ResolveString(rec, "format"),
			PartOfSeries: ResolveBool(rec, "partOfSeries"),
		}
	case domain.MediaTypeMovie:
		item.Movie = &domain.MoviePayload{
			Director:         ResolveString(rec, "director"),
			Cast:             ResolveString(rec, "cast"),
			ReleaseYear:      ResolveInt(rec, "releaseYear"),
			RuntimeMinutes:   ResolveInt(rec, "runtimeMinutes"),
			MpaaRating:       ResolveString(rec, "mpaaRating"),
			ImdbID:           ResolveString(rec, "imdbId"),
			TmdbID:           ResolveString(rec, "tmdbId"),
			TmdbRating:       ResolveFloat(rec, "tmdbRating"),
			Tagline:          ResolveString(rec, "tagline"),
			Homepage:         ResolveString(rec, "homepage"),
			OriginalLanguage: ResolveString(rec, "originalLanguage"),
			OriginalTitle:    ResolveString(rec, "originalTitle"),
		}
	case domain.MediaTypeTVShow:
		item.TVShow = &domain.TVShowPayload{
			Creator:          ResolveString(rec, "creator"),
			Cast:             ResolveString(rec, "cast"),
			FirstAirYear:     ResolveInt(rec, "firstAirYear"),
			LastAirYear:      ResolveInt(rec, "lastAirYear"),
			Seasons:          ResolveInt(rec, "numberOfSeasons", "seasons"),
			Episodes:         ResolveInt(rec, "numberOfEpisodes", "episodes"),
			ContentRating:    ResolveString(rec, "contentRating"),
			TmdbID:           ResolveString(rec, "tmdbId"),
			TmdbRating:       ResolveFloat(rec, "tmdbRating"),
			Tagline:          ResolveString(rec, "tagline"),
			Homepage:         ResolveString(rec, "homepage"),
			OriginalLanguage: ResolveString(rec, "originalLanguage"),
			OriginalName:     ResolveString(rec, "originalName"),
		}
	case domain.MediaTypePodcast:
		item.Podcast = &domain.PodcastPayload{
			PodcastType:     domain.PodcastType(ResolveString(rec, "podcastType")),
			ParentPodcastID: ResolveString(rec, "parentPodcastId"),
			AudioLink:       ResolveString(rec, "audioLink"),
			ReleaseDate:     ResolveTime(rec, "releaseDate"),
			DurationSeconds: ResolveInt(rec, "durationInSeconds", "durationSeconds"),
			ExternalID:      ResolveString(rec, "externalId"),
			Publisher:       ResolveString(rec, "publisher"),
		}
	}
}

// BuildMediaItems maps a list response element-wise.
func BuildMediaItems(recs []Record) []*domain.MediaItem {
	items := make([]*domain.MediaItem, 0, len(recs))
	for _, rec := range recs {
		item := BuildMediaItem(rec)
		items = append(items, &item)
	}
	return items
}

// MediaItemRecord renders the canonical wire form of a media item: single
// camelCase keys, explicit nulls for absent optional fields, Extra passed
// through unchanged. Update payloads keep previously stored completion
// fields even when the status has moved away from Completed.
func MediaItemRecord(m domain.MediaItem) Record {
	rec := Record{
		"id":              m.ID,
		"title":           m.Title,
		"mediaType":       string(m.MediaType),
		"status":          string(m.Status),
		"rating":          nullableString(string(m.Rating)),
		"ownershipStatus": nullableString(string(m.Ownership)),
		"link":            nullableString(m.Link),
		"description":     nullableString(m.Description),
		"notes":           nullableString(m.Notes),
		"thumbnail":       nullableString(m.Thumbnail),
		"dateCompleted":   nullableTime(m.DateCompleted),
		"topics":          labelArray(m.Topics),
		"genres":          labelArray(m.Genres),
	}
	if !m.DateAdded.IsZero() {
		rec["dateAdded"] = m.DateAdded.Format(time.RFC3339)
	}

	switch {
	case m.Book != nil:
		rec["author"] = m.Book.Author
		rec["isbn"] = nullableString(m.Book.ISBN)
		rec["asin"] = nullableString(m.Book.ASIN)
		rec["format"] = nullableString(m.Book.Format)
		rec["partOfSeries"] = m.Book.PartOfSeries
	case m.Movie != nil:
		rec["director"] = nullableString(m.Movie.Director)
		rec["cast"] = nullableString(m.Movie.Cast)
		rec["releaseYear"] = nullableInt(m.Movie.ReleaseYear)
		rec["runtimeMinutes"] = nullableInt(m.Movie.RuntimeMinutes)
		rec["mpaaRating"] = nullableString(m.Movie.MpaaRating)
		rec["imdbId"] = nullableString(m.Movie.ImdbID)
		rec["tmdbId"] = nullableString(m.Movie.TmdbID)
		rec["tmdbRating"] = nullableFloat(m.Movie.TmdbRating)
		rec["tagline"] = nullableString(m.Movie.Tagline)
		rec["homepage"] = nullableString(m.Movie.Homepage)
		rec["originalLanguage"] = nullableString(m.Movie.OriginalLanguage)
		rec["originalTitle"] = nullableString(m.Movie.OriginalTitle)
	case m.TVShow != nil:
		rec["creator"] = nullableString(m.TVShow.Creator)
		rec["cast"] = nullableString(m.TVShow.Cast)
		rec["firstAirYear"] = nullableInt(m.TVShow.FirstAirYear)
		rec["lastAirYear"] = nullableInt(m.TVShow.LastAirYear)
		rec["numberOfSeasons"] = nullableInt(m.TVShow.Seasons)
		rec["numberOfEpisodes"] = nullableInt(m.TVShow.Episodes)
		rec["contentRating"] = nullableString(m.TVShow.ContentRating)
		rec["tmdbId"] = nullableString(m.TVShow.TmdbID)
		rec["tmdbRating"] = nullableFloat(m.TVShow.TmdbRating)
		rec["tagline"] = nullableString(m.TVShow.Tagline)
		rec["homepage"] = nullableString(m.TVShow.Homepage)
		rec["originalLanguage"] = nullableString(m.TVShow.OriginalLanguage)
		rec["originalName"] = nullableString(m.TVShow.OriginalName)
	case m.Podcast != nil:
		rec["podcastType"] = string(m.Podcast.PodcastType)
		rec["parentPodcastId"] = nullableString(m.Podcast.ParentPodcastID)
		rec["audioLink"] = nullableString(m.Podcast.AudioLink)
		rec["releaseDate"] = nullableTime(m.Podcast.ReleaseDate)
		rec["durationInSeconds"] = m.Podcast.DurationSeconds
		rec["externalId"] = nullableString(m.Podcast.ExternalID)
		rec["publisher"] = nullableString(m.Podcast.Publisher)
	}

	for key, val := range m.Extra {
		rec[key] = val
	}
	return rec
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullableFloat(f float64) any {
	if f == 0 {
		return nil
	}
	return f
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339)
}

func labelArray(labels []string) any {
	if len(labels) == 0 {
		return []string{}
	}
	return labels
}

// BuildTopic maps a raw topic record.
func BuildTopic(rec Record) domain.Topic {
	return domain.Topic{
		ID:             ResolveString(rec, "id"),
		Name:           domain.NormalizeLabel(ResolveString(rec, "name")),
		MediaItemCount: ResolveInt(rec, "mediaItemCount", "mediaCount"),
	}
}

// BuildGenre maps a raw genre record.
func BuildGenre(rec Record) domain.Genre {
	return domain.Genre{
		ID:             ResolveString(rec, "id"),
		Name:           domain.NormalizeLabel(ResolveString(rec, "name")),
		MediaItemCount: ResolveInt(rec, "mediaItemCount", "mediaCount"),
	}
}

// BuildMixlist maps a raw mixlist record, including its nested media items.
func BuildMixlist(rec Record) domain.Mixlist {
	list := domain.Mixlist{
		ID:   ResolveString(rec, "id"),
		Name: ResolveString(rec, "name", "title"),
	}
	for _, itemRec := range ResolveRecords(rec, "mediaItems", "items") {
		list.Items = append(list.Items, BuildMediaItem(itemRec))
	}
	return list
}

// BuildNote maps a raw note record, including its media links.
func BuildNote(rec Record) domain.Note {
	note := domain.Note{
		ID:           ResolveString(rec, "id"),
		Title:        ResolveString(rec, "title"),
		Description:  ResolveString(rec, "description"),
		VaultName:    ResolveString(rec, "vaultName"),
		Tags:         ResolveNames(rec, "tags"),
		NoteDate:     ResolveTime(rec, "noteDate"),
		LastSyncedAt: ResolveTime(rec, "lastSyncedAt"),
	}
	if t := ResolveTime(rec, "dateImported"); t != nil {
		note.DateImported = *t
	}
	for _, linkRec := range ResolveRecords(rec, "mediaItems", "mediaItemNotes", "linkedMedia") {
		note.Links = append(note.Links, domain.NoteLink{
			MediaItemID: ResolveString(linkRec, "mediaItemId", "id"),
			Title:       ResolveString(linkRec, "title"),
			Description: ResolveString(linkRec, "description", "linkDescription"),
		})
	}
	return note
}

// BuildPodcastSeries maps a raw series record.
func BuildPodcastSeries(rec Record) domain.PodcastSeries {
	return domain.PodcastSeries{
		ID:           ResolveString(rec, "id"),
		Title:        ResolveString(rec, "title"),
		Publisher:    ResolveString(rec, "publisher"),
		Description:  ResolveString(rec, "description"),
		Thumbnail:    ResolveString(rec, "thumbnail"),
		ExternalID:   ResolveString(rec, "externalId"),
		IsSubscribed: ResolveBool(rec, "isSubscribed"),
		LastSyncDate: ResolveTime(rec, "lastSyncDate"),
		EpisodeCount: ResolveInt(rec, "episodeCount", "totalEpisodes"),
	}
}

// BuildPodcastEpisode maps a raw episode record.
func BuildPodcastEpisode(rec Record) domain.PodcastEpisode {
	return domain.PodcastEpisode{
		ID:              ResolveString(rec, "id"),
		SeriesID:        ResolveString(rec, "seriesId", "parentPodcastId"),
		Title:           ResolveString(rec, "title"),
		AudioLink:       ResolveString(rec, "audioLink"),
		ReleaseDate:     ResolveTime(rec, "releaseDate"),
		DurationSeconds: ResolveInt(rec, "durationInSeconds", "durationSeconds"),
		EpisodeNumber:   ResolveInt(rec, "episodeNumber"),
		SeasonNumber:    ResolveInt(rec, "seasonNumber"),
		ExternalID:      ResolveString(rec, "externalId"),
		Thumbnail:       ResolveString(rec, "thumbnail", "image"),
	}
}
