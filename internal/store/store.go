package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pmeridian/charta/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketMedia    = []byte("media")
	bucketLabels   = []byte("labels")
	bucketMixlists = []byte("mixlists")
	bucketPodcasts = []byte("podcasts")
	bucketNotes    = []byte("notes")
)

// CatalogStore caches fetched catalog lists in BoltDB so reopened views
// render instantly while a refetch runs. It is a cache, not a source of
// truth: every mutation invalidates the lists it may have changed.
type CatalogStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

func NewCatalogStore(baseCacheDir, serverURL string) (*CatalogStore, error) {
	if baseCacheDir == "" {
		// Memory-only mode (no persistence)
		return &CatalogStore{cache: make(map[string][]byte)}, nil
	}

	dir := baseCacheDir
	if serverURL != "" {
		dir = filepath.Join(baseCacheDir, hashServerURL(serverURL))
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "charta.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMedia, bucketLabels, bucketMixlists, bucketPodcasts, bucketNotes} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &CatalogStore{db: db, cache: make(map[string][]byte)}, nil
}

func hashServerURL(serverURL string) string {
	normalized := strings.TrimRight(strings.ToLower(serverURL), "/")
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *CatalogStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *CatalogStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	// Read from BoltDB
	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return false
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *CatalogStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	cacheKey := string(bucket) + ":" + key

	// Update memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	// Write to BoltDB
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *CatalogStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	// Clear from memory cache
	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Delete from BoltDB
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

func (s *CatalogStore) deletePrefix(bucket []byte, prefix string) {
	// Clear from memory cache
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	// Delete from BoltDB using prefix scan
	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		c := b.Cursor()
		prefixBytes := []byte(prefix)
		for k, _ := c.Seek(prefixBytes); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

// === Media lists (key: list:{scope}) ===

// MediaKeyAll is the scope key for the unfiltered media list. Filtered
// scopes are built with MediaKeyByType/ByTopic/ByGenre.
const MediaKeyAll = "all"

func MediaKeyByType(t domain.MediaType) string { return "type:" + string(t) }
func MediaKeyByTopic(topicID string) string    { return "topic:" + topicID }
func MediaKeyByGenre(genreID string) string    { return "genre:" + genreID }

func (s *CatalogStore) GetMediaList(scope string) ([]*domain.MediaItem, bool) {
	var items []*domain.MediaItem
	ok := s.get(bucketMedia, "list:"+scope, &items)
	return items, ok
}

func (s *CatalogStore) SaveMediaList(scope string, items []*domain.MediaItem) error {
	return s.set(bucketMedia, "list:"+scope, items)
}

func (s *CatalogStore) GetMediaItem(id string) (*domain.MediaItem, bool) {
	var item domain.MediaItem
	if !s.get(bucketMedia, "item:"+id, &item) {
		return nil, false
	}
	return &item, true
}

func (s *CatalogStore) SaveMediaItem(item *domain.MediaItem) error {
	return s.set(bucketMedia, "item:"+item.ID, item)
}

// InvalidateMedia wipes every cached media list and item. A media mutation
// can change any type/topic/genre scope, so the whole bucket goes.
func (s *CatalogStore) InvalidateMedia() {
	s.deletePrefix(bucketMedia, "list:")
	s.deletePrefix(bucketMedia, "item:")
}

func (s *CatalogStore) InvalidateMediaItem(id string) {
	s.delete(bucketMedia, "item:"+id)
	// Lists embed the item, so they are stale too.
	s.deletePrefix(bucketMedia, "list:")
}

// === Topics and genres ===

func (s *CatalogStore) GetTopics() ([]domain.Topic, bool) {
	var topics []domain.Topic
	ok := s.get(bucketLabels, "topics", &topics)
	return topics, ok
}

func (s *CatalogStore) SaveTopics(topics []domain.Topic) error {
	return s.set(bucketLabels, "topics", topics)
}

func (s *CatalogStore) GetGenres() ([]domain.Genre, bool) {
	var genres []domain.Genre
	ok := s.get(bucketLabels, "genres", &genres)
	return genres, ok
}

func (s *CatalogStore) SaveGenres(genres []domain.Genre) error {
	return s.set(bucketLabels, "genres", genres)
}

func (s *CatalogStore) InvalidateTopics() {
	s.delete(bucketLabels, "topics")
}

func (s *CatalogStore) InvalidateGenres() {
	s.delete(bucketLabels, "genres")
}

// === Mixlists ===

func (s *CatalogStore) GetMixlists() ([]domain.Mixlist, bool) {
	var lists []domain.Mixlist
	ok := s.get(bucketMixlists, "list", &lists)
	return lists, ok
}

func (s *CatalogStore) SaveMixlists(lists []domain.Mixlist) error {
	return s.set(bucketMixlists, "list", lists)
}

func (s *CatalogStore) GetMixlist(id string) (*domain.Mixlist, bool) {
	var list domain.Mixlist
	if !s.get(bucketMixlists, "item:"+id, &list) {
		return nil, false
	}
	return &list, true
}

func (s *CatalogStore) SaveMixlist(list *domain.Mixlist) error {
	return s.set(bucketMixlists, "item:"+list.ID, list)
}

func (s *CatalogStore) InvalidateMixlists() {
	s.delete(bucketMixlists, "list")
	s.deletePrefix(bucketMixlists, "item:")
}

func (s *CatalogStore) InvalidateMixlist(id string) {
	s.delete(bucketMixlists, "item:"+id)
	s.delete(bucketMixlists, "list")
}

// === Podcast series and episodes ===

func (s *CatalogStore) GetPodcastSeries() ([]domain.PodcastSeries, bool) {
	var series []domain.PodcastSeries
	ok := s.get(bucketPodcasts, "series", &series)
	return series, ok
}

func (s *CatalogStore) SavePodcastSeries(series []domain.PodcastSeries) error {
	return s.set(bucketPodcasts, "series", series)
}

func (s *CatalogStore) GetSeriesEpisodes(seriesID string) ([]domain.PodcastEpisode, bool) {
	var episodes []domain.PodcastEpisode
	ok := s.get(bucketPodcasts, "episodes:"+seriesID, &episodes)
	return episodes, ok
}

func (s *CatalogStore) SaveSeriesEpisodes(seriesID string, episodes []domain.PodcastEpisode) error {
	return s.set(bucketPodcasts, "episodes:"+seriesID, episodes)
}

func (s *CatalogStore) InvalidatePodcastSeries() {
	s.delete(bucketPodcasts, "series")
}

// InvalidateSeries wipes one series' episode list along with the series
// list itself (subscription and sync state live on the series row).
func (s *CatalogStore) InvalidateSeries(seriesID string) {
	s.delete(bucketPodcasts, "episodes:"+seriesID)
	s.delete(bucketPodcasts, "series")
}

// === Notes ===

func (s *CatalogStore) GetNotes() ([]domain.Note, bool) {
	var notes []domain.Note
	ok := s.get(bucketNotes, "list", &notes)
	return notes, ok
}

func (s *CatalogStore) SaveNotes(notes []domain.Note) error {
	return s.set(bucketNotes, "list", notes)
}

func (s *CatalogStore) GetNotesForMedia(mediaID string) ([]domain.Note, bool) {
	var notes []domain.Note
	ok := s.get(bucketNotes, "media:"+mediaID, &notes)
	return notes, ok
}

func (s *CatalogStore) SaveNotesForMedia(mediaID string, notes []domain.Note) error {
	return s.set(bucketNotes, "media:"+mediaID, notes)
}

func (s *CatalogStore) InvalidateNotes() {
	s.delete(bucketNotes, "list")
	s.deletePrefix(bucketNotes, "media:")
}

// === Full wipe ===

func (s *CatalogStore) InvalidateAll() {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketMedia, bucketLabels, bucketMixlists, bucketPodcasts, bucketNotes} {
			b := tx.Bucket(bucket)
			if b == nil {
				continue
			}
			c := b.Cursor()
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				if err := b.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
