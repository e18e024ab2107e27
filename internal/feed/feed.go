// Package feed assembles the session playlist from the published video and
// clothing documents. Clothing items are joined into video outfits by
// outfit id; one item referenced by several videos is shared between their
// outfits, never copied.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/syncwatch/server/internal/domain"
)

type videoDocument struct {
	Id          int               `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Poster      string            `json:"poster"`
	Sources     map[string]string `json:"sources"`
	OutfitId    int               `json:"outfit_id"`
}

type clothingDocument struct {
	Id          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Photo       string `json:"photo"`
	Outfits     []int  `json:"outfits"`
}

type Config struct {
	VideosURL   string
	ClothingURL string
	Timeout     time.Duration
}

type Loader struct {
	client *http.Client
	cfg    Config
	logger *slog.Logger
}

func NewLoader(cfg Config, logger *slog.Logger) *Loader {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Loader{
		client: &http.Client{Timeout: timeout},
		cfg:    cfg,
		logger: logger,
	}
}

// Load fetches both documents and returns the validated videos in document
// order. Records failing validation are skipped with a log line; a bad
// record must never enter the playlist.
func (l *Loader) Load(ctx context.Context) ([]*domain.Video, error) {
	var videoDocs []videoDocument
	if err := l.fetch(ctx, l.cfg.VideosURL, &videoDocs); err != nil {
		return nil, fmt.Errorf("failed to load videos feed: %w", err)
	}

	var clothingDocs []clothingDocument
	if err := l.fetch(ctx, l.cfg.ClothingURL, &clothingDocs); err != nil {
		return nil, fmt.Errorf("failed to load clothing feed: %w", err)
	}

	outfits := make(map[int]*domain.Outfit, len(videoDocs))
	for _, doc := range videoDocs {
		outfits[doc.OutfitId] = domain.NewOutfit()
	}

	for _, doc := range clothingDocs {
		clothing, err := domain.NewClothing(&domain.NewClothingParams{
			Id:          doc.Id,
			Name:        doc.Name,
			Description: doc.Description,
			Photo:       doc.Photo,
		})
		if err != nil {
			l.logger.WarnContext(ctx, "skipping clothing item", "id", doc.Id, "error", err)
			continue
		}

		for _, outfitId := range doc.Outfits {
			if outfit, ok := outfits[outfitId]; ok {
				outfit.Add(clothing)
			}
		}
	}

	videos := make([]*domain.Video, 0, len(videoDocs))
	for _, doc := range videoDocs {
		video, err := domain.NewVideo(&domain.NewVideoParams{
			Id:          doc.Id,
			Name:        doc.Name,
			Description: doc.Description,
			Poster:      doc.Poster,
			Sources:     doc.Sources,
			Outfit:      outfits[doc.OutfitId],
		})
		if err != nil {
			l.logger.WarnContext(ctx, "skipping video", "id", doc.Id, "error", err)
			continue
		}

		videos = append(videos, video)
	}

	return videos, nil
}

func (l *Loader) fetch(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	return json.Unmarshal(stripJSONP(body), dst)
}

// stripJSONP unwraps callback-padded documents ("callback([...]);") to
// their JSON body. Plain JSON passes through untouched.
func stripJSONP(body []byte) []byte {
	trimmed := strings.TrimSpace(string(body))
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed)
	}

	start := strings.Index(trimmed, "(")
	end := strings.LastIndex(trimmed, ")")
	if start == -1 || end == -1 || end <= start {
		return body
	}

	return []byte(trimmed[start+1 : end])
}
