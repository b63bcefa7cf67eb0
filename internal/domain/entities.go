package domain

import (
	"fmt"
	"strings"
	"time"
)

// MediaType distinguishes catalog content types. Values match the server's
// string enum and are write-once: no update may change an item's type.
type MediaType string

const (
	MediaTypeArticle   MediaType = "Article"
	MediaTypeBook      MediaType = "Book"
	MediaTypeDocument  MediaType = "Document"
	MediaTypeMovie     MediaType = "Movie"
	MediaTypeMusic     MediaType = "Music"
	MediaTypeOther     MediaType = "Other"
	MediaTypePodcast   MediaType = "Podcast"
	MediaTypeTVShow    MediaType = "TVShow"
	MediaTypeVideo     MediaType = "Video"
	MediaTypeVideoGame MediaType = "VideoGame"
	MediaTypeWebsite   MediaType = "Website"
)

// ParseMediaType maps a wire value to a known media type.
// Unknown or empty values fall back to Other.
func ParseMediaType(s string) MediaType {
	switch MediaType(s) {
	case MediaTypeArticle, MediaTypeBook, MediaTypeDocument, MediaTypeMovie,
		MediaTypeMusic, MediaTypeOther, MediaTypePodcast, MediaTypeTVShow,
		MediaTypeVideo, MediaTypeVideoGame, MediaTypeWebsite:
		return MediaType(s)
	default:
		return MediaTypeOther
	}
}

// Status represents where an item sits in the user's exploration lifecycle.
type Status string

const (
	StatusUncharted         Status = "Uncharted"
	StatusActivelyExploring Status = "ActivelyExploring"
	StatusCompleted         Status = "Completed"
	StatusAbandoned         Status = "Abandoned"
)

// Rating is the user's verdict on a completed item.
type Rating string

const (
	RatingSuperLike Rating = "SuperLike"
	RatingLike      Rating = "Like"
	RatingNeutral   Rating = "Neutral"
	RatingDislike   Rating = "Dislike"
)

// OwnershipStatus records how the user has access to an item.
type OwnershipStatus string

const (
	OwnershipOwn      OwnershipStatus = "Own"
	OwnershipRented   OwnershipStatus = "Rented"
	OwnershipStreamed OwnershipStatus = "Streamed"
)

// PodcastType distinguishes a series from an episode.
type PodcastType string

const (
	PodcastSeriesType  PodcastType = "Series"
	PodcastEpisodeType PodcastType = "Episode"
)

// MediaItem is the canonical view model for a catalog entry, independent of
// the wire casing the server happened to use. At most one of the variant
// payload pointers is non-nil, matching MediaType.
type MediaItem struct {
	ID          string
	Title       string
	MediaType   MediaType
	Status      Status
	Rating      Rating          // meaningful only when Status == Completed
	Ownership   OwnershipStatus // optional
	Link        string
	Description string
	Notes       string
	Thumbnail   string
	DateAdded   time.Time
	// DateCompleted is only set when Status == Completed. A later status
	// change away from Completed does not erase a stored value.
	DateCompleted *time.Time

	Topics []string // lowercase
	Genres []string // lowercase

	Book    *BookPayload
	Movie   *MoviePayload
	TVShow  *TVShowPayload
	Podcast *PodcastPayload

	// Extra carries wire fields this client does not model, so detail views
	// and round-trip updates keep them intact.
	Extra map[string]any
}

// BookPayload holds book-specific fields.
type BookPayload struct {
	Author       string
	ISBN         string
	ASIN         string
	Format       string
	PartOfSeries bool
}

// MoviePayload holds movie-specific fields.
type MoviePayload struct {
	Director         string
	Cast             string // comma-separated main cast
	ReleaseYear      int
	RuntimeMinutes   int
	MpaaRating       string
	ImdbID           string
	TmdbID           string
	TmdbRating       float64
	Tagline          string
	Homepage         string
	OriginalLanguage string
	OriginalTitle    string
}

// TVShowPayload holds TV-show-specific fields.
type TVShowPayload struct {
	Creator          string
	Cast             string
	FirstAirYear     int
	LastAirYear      int
	Seasons          int
	Episodes         int
	ContentRating    string
	TmdbID           string
	TmdbRating       float64
	Tagline          string
	Homepage         string
	OriginalLanguage string
	OriginalName     string
}

// PodcastPayload holds podcast-specific fields. Episodes point at their
// parent series through ParentPodcastID.
type PodcastPayload struct {
	PodcastType     PodcastType
	ParentPodcastID string
	AudioLink       string
	ReleaseDate     *time.Time
	DurationSeconds int
	ExternalID      string
	Publisher       string
}

// PromptForCompletion reports whether edit views should offer the
// completion-only fields (rating, date completed).
func (m MediaItem) PromptForCompletion() bool {
	return m.Status == StatusCompleted
}

// FormattedRuntime renders a movie or episode runtime for display.
func (m MediaItem) FormattedRuntime() string {
	switch {
	case m.Movie != nil && m.Movie.RuntimeMinutes > 0:
		return formatMinutes(m.Movie.RuntimeMinutes)
	case m.Podcast != nil && m.Podcast.DurationSeconds > 0:
		return formatMinutes((m.Podcast.DurationSeconds + 59) / 60)
	default:
		return ""
	}
}

func formatMinutes(mins int) string {
	if mins >= 60 {
		return fmt.Sprintf("%dh %dm", mins/60, mins%60)
	}
	return fmt.Sprintf("%dm", mins)
}

// ListItem interface implementation for MediaItem

func (m MediaItem) GetID() string    { return m.ID }
func (m MediaItem) GetTitle() string { return m.Title }
func (m MediaItem) GetItemType() string {
	return strings.ToLower(string(m.MediaType))
}

func (m MediaItem) GetDescription() string {
	switch {
	case m.Book != nil && m.Book.Author != "":
		return m.Book.Author
	case m.Movie != nil && m.Movie.ReleaseYear > 0:
		return fmt.Sprintf("%d", m.Movie.ReleaseYear)
	case m.TVShow != nil && m.TVShow.FirstAirYear > 0:
		return airYears(m.TVShow)
	case m.Podcast != nil && m.Podcast.Publisher != "":
		return m.Podcast.Publisher
	default:
		return string(m.Status)
	}
}

func airYears(tv *TVShowPayload) string {
	switch {
	case tv.LastAirYear > 0 && tv.LastAirYear != tv.FirstAirYear:
		return fmt.Sprintf("%d-%d", tv.FirstAirYear, tv.LastAirYear)
	default:
		return fmt.Sprintf("%d", tv.FirstAirYear)
	}
}

// Topic is a free-text subject label. Names are lowercased at create/edit
// time; the server is not assumed to enforce uniqueness.
type Topic struct {
	ID             string
	Name           string
	MediaItemCount int // read-only, shown before delete
}

func (t Topic) GetID() string    { return t.ID }
func (t Topic) GetTitle() string { return t.Name }
func (t Topic) GetItemType() string {
	return "topic"
}
func (t Topic) GetDescription() string {
	if t.MediaItemCount == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", t.MediaItemCount)
}

// Genre mirrors Topic with a separate namespace.
type Genre struct {
	ID             string
	Name           string
	MediaItemCount int
}

func (g Genre) GetID() string       { return g.ID }
func (g Genre) GetTitle() string    { return g.Name }
func (g Genre) GetItemType() string { return "genre" }
func (g Genre) GetDescription() string {
	if g.MediaItemCount == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", g.MediaItemCount)
}

// Mixlist is a user-curated named collection of media items. Membership is
// mutated only through explicit add/remove operations.
type Mixlist struct {
	ID    string
	Name  string
	Items []MediaItem
}

func (x Mixlist) GetID() string       { return x.ID }
func (x Mixlist) GetTitle() string    { return x.Name }
func (x Mixlist) GetItemType() string { return "mixlist" }
func (x Mixlist) GetDescription() string {
	if len(x.Items) == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", len(x.Items))
}

// NoteLink ties a note to a media item with an optional description of the
// relationship.
type NoteLink struct {
	MediaItemID string
	Title       string
	Description string
}

// Note is a vault note created by an external sync process. Only the
// description and media links are mutable from this client.
type Note struct {
	ID           string
	Title        string
	Description  string
	VaultName    string
	Tags         []string
	NoteDate     *time.Time
	DateImported time.Time
	LastSyncedAt *time.Time
	Links        []NoteLink
}

func (n Note) GetID() string       { return n.ID }
func (n Note) GetTitle() string    { return n.Title }
func (n Note) GetItemType() string { return "note" }
func (n Note) GetDescription() string {
	return n.VaultName
}

// PodcastSeries groups episodes imported from an external catalog.
type PodcastSeries struct {
	ID           string
	Title        string
	Publisher    string
	Description  string
	Thumbnail    string
	ExternalID   string
	IsSubscribed bool
	LastSyncDate *time.Time
	EpisodeCount int
}

func (s PodcastSeries) GetID() string       { return s.ID }
func (s PodcastSeries) GetTitle() string    { return s.Title }
func (s PodcastSeries) GetItemType() string { return "series" }
func (s PodcastSeries) GetDescription() string {
	if s.Publisher != "" {
		return s.Publisher
	}
	if s.EpisodeCount == 1 {
		return "1 episode"
	}
	return fmt.Sprintf("%d episodes", s.EpisodeCount)
}

// PodcastEpisode is an episode media item scoped to its series. ExternalID
// de-duplicates against the third-party catalog during import flows.
type PodcastEpisode struct {
	ID              string
	SeriesID        string
	Title           string
	AudioLink       string
	ReleaseDate     *time.Time
	DurationSeconds int
	EpisodeNumber   int
	SeasonNumber    int
	ExternalID      string
	Thumbnail       string
}

// EpisodeCode returns the formatted episode identifier (e.g. "S1E5").
func (e PodcastEpisode) EpisodeCode() string {
	if e.SeasonNumber > 0 && e.EpisodeNumber > 0 {
		return fmt.Sprintf("S%dE%d", e.SeasonNumber, e.EpisodeNumber)
	}
	if e.EpisodeNumber > 0 {
		return fmt.Sprintf("Episode %d", e.EpisodeNumber)
	}
	return ""
}

func (e PodcastEpisode) GetID() string       { return e.ID }
func (e PodcastEpisode) GetTitle() string    { return e.Title }
func (e PodcastEpisode) GetItemType() string { return "episode" }
func (e PodcastEpisode) GetDescription() string {
	if code := e.EpisodeCode(); code != "" {
		return code
	}
	if e.DurationSeconds > 0 {
		return formatMinutes((e.DurationSeconds + 59) / 60)
	}
	return ""
}

// NormalizeLabel lowercases and trims a topic or genre name before it is
// sent to the server, so near-duplicate labels do not drift apart by case.
func NormalizeLabel(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NormalizeLabels applies NormalizeLabel to each name, dropping empties and
// case-insensitive duplicates while preserving first-seen order.
func NormalizeLabels(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = NormalizeLabel(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
