// Package aoty reads recently reviewed releases and their genres from the
// albumoftheyear.org critic-review site.
package aoty

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/okian/soltify/internal/adapters/upstream"
	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/internal/domain/source"
	"github.com/okian/soltify/pkg/logger"
)

// DefaultBaseURL is the site root.
const DefaultBaseURL = "https://www.albumoftheyear.org"

const (
	criticRowLabel = "critic score"
	genreRowIndex  = 3
)

// Reader scrapes the release listing and album pages.
type Reader struct {
	base     string
	maxPages int
	now      func() time.Time
	up       *upstream.Client
	log      logger.Logger
}

// New creates a Reader. baseURL defaults to DefaultBaseURL.
func New(baseURL string, opts ...Option) *Reader {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	r := &Reader{
		base: strings.TrimRight(baseURL, "/"),
		now:  time.Now,
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.up == nil {
		r.up = upstream.New("aoty", upstream.WithLogger(r.log))
	}
	return r
}

// NewReleases returns one listing page, newest first. The cursor is the page
// number; the empty cursor is page 1.
func (r *Reader) NewReleases(ctx context.Context, cursor string) (source.Page[model.Release], error) {
	page := 1
	if cursor != "" {
		n, err := strconv.Atoi(cursor)
		if err != nil || n < 1 {
			return source.Page[model.Release]{}, fmt.Errorf("%w: bad page cursor %q", ErrParse, cursor)
		}
		page = n
	}

	path := "/releases"
	if page > 1 {
		path = fmt.Sprintf("/releases/%d/", page)
	}
	doc, err := r.fetch(ctx, r.base+path)
	if err != nil {
		return source.Page[model.Release]{}, err
	}

	now := r.now()
	var out source.Page[model.Release]
	doc.Find(".albumBlock").Each(func(_ int, block *goquery.Selection) {
		rel, err := r.release(block, now)
		if err != nil {
			r.log.Debug(ctx, "skipping listing entry", logger.Int("page", page), logger.Error(err))
			return
		}
		out.Items = append(out.Items, rel)
	})

	out.More = len(out.Items) > 0 && (r.maxPages == 0 || page < r.maxPages)
	if out.More {
		out.Next = strconv.Itoa(page + 1)
	}
	return out, nil
}

// Genres returns the comma separated genre string from a release's page, or
// the empty string when the page lists none.
func (r *Reader) Genres(ctx context.Context, rel model.Release) (string, error) {
	if rel.Link == "" {
		return "", nil
	}
	link := rel.Link
	if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
		link = r.base + "/" + strings.TrimLeft(link, "/")
	}

	doc, err := r.fetch(ctx, link)
	if err != nil {
		return "", err
	}
	rows := doc.Find(".albumTopBox").Last().Find(".detailRow")
	if rows.Length() <= genreRowIndex {
		return "", nil
	}
	return strings.TrimSpace(rows.Eq(genreRowIndex).Text()), nil
}

func (r *Reader) release(block *goquery.Selection, now time.Time) (model.Release, error) {
	rel := model.Release{
		Name:       strings.TrimSpace(block.Find(".albumTitle").First().Text()),
		ArtistName: strings.TrimSpace(block.Find(".artistTitle").First().Text()),
		Kind:       model.KindAlbum,
		Source:     model.SourceCritic,
	}
	if rel.Name == "" || rel.ArtistName == "" {
		return rel, fmt.Errorf("%w: entry without artist or title", ErrParse)
	}

	var dateText string
	if d := block.Find(".date").First(); d.Length() > 0 {
		dateText = d.Text()
	}
	date, err := ListingDate(dateText, now)
	if err != nil {
		return rel, err
	}
	rel.ReleaseDate = date

	rel.CriticRating, rel.NumCritics = criticRating(block)
	if href, ok := block.Find("a").Last().Attr("href"); ok {
		rel.Link = href
	}
	return rel, nil
}

// criticRating returns the critic score and review count, zero when the
// entry has no critic row.
func criticRating(block *goquery.Selection) (float64, int) {
	var (
		rating float64
		count  int
	)
	block.Find(".ratingRow").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		texts := row.Find(".ratingText")
		if strings.TrimSpace(texts.First().Text()) != criticRowLabel {
			return true
		}
		rating, _ = strconv.ParseFloat(strings.TrimSpace(row.Find(".rating").First().Text()), 64)
		n := strings.Trim(strings.TrimSpace(texts.Eq(1).Text()), "()")
		count, _ = strconv.Atoi(strings.ReplaceAll(n, ",", ""))
		return false
	})
	return rating, count
}

func (r *Reader) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, err := r.up.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "soltify-radar")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, rawURL, err)
	}
	return doc, nil
}
