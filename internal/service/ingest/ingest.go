package ingest

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	apperrors "github.com/mcardoso/vidsage/internal/errors"
	"github.com/mcardoso/vidsage/internal/model"
	"github.com/mcardoso/vidsage/internal/repository/media"
)

// youtubeURLPatterns covers the accepted video URL shapes
var youtubeURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/watch\?v=[\w-]+`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/v/[\w-]+`),
	regexp.MustCompile(`^https?://youtu\.be/[\w-]+`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/embed/[\w-]+`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/[\w-]+`),
}

var (
	durationHours   = regexp.MustCompile(`(\d+)H`)
	durationMinutes = regexp.MustCompile(`(\d+)M`)
	durationSeconds = regexp.MustCompile(`(\d+)S`)
)

// Metadata is what the scraper extracts from a video page
type Metadata struct {
	Title           string
	Author          string
	DurationMinutes float64
}

// Service registers new videos from their URLs
type Service interface {
	// Ingest validates the URL, scrapes the video page for metadata, and
	// creates the media item in the ingested stage.
	Ingest(ctx context.Context, videoURL string) (*model.MediaItem, error)
}

// ingestService implements Service
type ingestService struct {
	repo       media.Repository
	httpClient *http.Client
	baseURL    string // overrides the page URL host in tests; empty in production
}

// NewService creates a new ingest Service
func NewService(repo media.Repository) Service {
	return &ingestService{
		repo:       repo,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Ingest validates, scrapes, and persists one video URL
func (s *ingestService) Ingest(ctx context.Context, videoURL string) (*model.MediaItem, error) {
	videoURL = strings.TrimSpace(videoURL)
	if !IsValidYouTubeURL(videoURL) {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "not a valid YouTube video URL: "+videoURL)
	}

	meta, err := s.scrape(ctx, s.pageURL(videoURL))
	if err != nil {
		return nil, err
	}

	item := &model.MediaItem{
		Title:           meta.Title,
		URL:             videoURL,
		Author:          meta.Author,
		DurationMinutes: meta.DurationMinutes,
		Stage:           model.StageIngested,
		CreatedAt:       time.Now(),
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *ingestService) pageURL(videoURL string) string {
	if s.baseURL == "" {
		return videoURL
	}
	return s.baseURL
}

// scrape pulls title, author and duration out of the video page markup
func (s *ingestService) scrape(ctx context.Context, pageURL string) (*Metadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to build page request")
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to fetch video page")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.New(apperrors.CodeExternal, "video page returned status "+strconv.Itoa(resp.StatusCode))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to parse video page")
	}

	meta := &Metadata{}

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && title != "" {
		meta.Title = title
	} else {
		meta.Title = strings.TrimSpace(strings.TrimSuffix(doc.Find("title").Text(), " - YouTube"))
	}
	if meta.Title == "" {
		return nil, apperrors.New(apperrors.CodeExternal, "video page has no title")
	}

	if author, ok := doc.Find(`span[itemprop="author"] link[itemprop="name"]`).Attr("content"); ok {
		meta.Author = author
	} else if author, ok := doc.Find(`link[itemprop="name"]`).Attr("content"); ok {
		meta.Author = author
	}

	if duration, ok := doc.Find(`meta[itemprop="duration"]`).Attr("content"); ok {
		meta.DurationMinutes = parseISODuration(duration)
	}

	return meta, nil
}

// IsValidYouTubeURL reports whether url matches one of the accepted shapes
func IsValidYouTubeURL(url string) bool {
	for _, pattern := range youtubeURLPatterns {
		if pattern.MatchString(url) {
			return true
		}
	}
	return false
}

// parseISODuration converts an ISO 8601 duration like PT1H23M45S to minutes.
// Malformed input yields zero rather than an error; duration is advisory.
func parseISODuration(duration string) float64 {
	var total float64
	if m := durationHours.FindStringSubmatch(duration); m != nil {
		v, _ := strconv.Atoi(m[1])
		total += float64(v) * 60
	}
	if m := durationMinutes.FindStringSubmatch(duration); m != nil {
		v, _ := strconv.Atoi(m[1])
		total += float64(v)
	}
	if m := durationSeconds.FindStringSubmatch(duration); m != nil {
		v, _ := strconv.Atoi(m[1])
		total += float64(v) / 60
	}
	return total
}
