package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	feedUserAgent       = "quillforge-core-feedpoll/1.0"
	feedRequestTimeout  = 30 * time.Second
	feedHardTimeout     = 5 * time.Minute
	defaultWatchdogAge  = 10 * time.Minute // twice the per-target hard timeout
)

// Feed is one polling target (spec §4.8's feed-polling canonical instance).
type Feed struct {
	ID            string
	URL           string
	LastCheck     time.Time
	CheckInterval time.Duration
	IsPolling     bool
	PollingSince  *time.Time
}

// FeedItem is one parsed, deduplicated feed entry ready to persist.
type FeedItem struct {
	Link        string
	Title       string
	Content     string
	ContentHash string
	PublishedAt time.Time
	Truncated   bool
}

// FeedRepository is the narrow storage seam feed polling needs; a
// store/sqlite-backed implementation is the reference one (DESIGN.md), but
// any backend satisfying this interface works.
type FeedRepository interface {
	ListDueFeeds(ctx context.Context) ([]Feed, error)
	ClaimPolling(ctx context.Context, feedID string) (claimed bool, err error)
	ReleasePolling(ctx context.Context, feedID string) error
	ReleaseStalePolling(ctx context.Context, olderThan time.Duration) error
	IsDuplicate(ctx context.Context, feedID, contentHash string) (bool, error)
	SaveItems(ctx context.Context, feedID string, items []FeedItem) error
	TouchLastCheck(ctx context.Context, feedID string) error
}

// NewFeedPollJob builds the canonical feed-polling Job of spec §4.8: target
// discovery with a watchdog sweep for orphaned is_polling flags, atomic
// per-target claim, HTTP fetch + parse + dedupe + optional enrichment,
// and an idempotent release in all cases (success, failure, or timeout).
func NewFeedPollJob(repo FeedRepository, interval time.Duration, concurrencyCap int) Job {
	client := &http.Client{Timeout: feedRequestTimeout}

	return Job{
		Name:             "feed_poll",
		Interval:         interval,
		ConcurrencyCap:   concurrencyCap,
		PerTargetTimeout: feedHardTimeout,
		Discover: func(ctx context.Context) ([]string, error) {
			if err := repo.ReleaseStalePolling(ctx, defaultWatchdogAge); err != nil {
				return nil, fmt.Errorf("feedpoll: watchdog sweep: %w", err)
			}
			feeds, err := repo.ListDueFeeds(ctx)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(feeds))
			for _, f := range feeds {
				ids = append(ids, f.ID)
			}
			return ids, nil
		},
		Handle: func(ctx context.Context, feedID string) error {
			return pollOneFeed(ctx, client, repo, feedID)
		},
	}
}

func pollOneFeed(ctx context.Context, client *http.Client, repo FeedRepository, feedID string) error {
	claimed, err := repo.ClaimPolling(ctx, feedID)
	if err != nil {
		return fmt.Errorf("feedpoll: claim %s: %w", feedID, err)
	}
	if !claimed {
		return nil // already held: idempotent skip, per spec §4.8
	}
	defer repo.ReleasePolling(ctx, feedID) //nolint:errcheck // best-effort release; watchdog recovers orphans

	feeds, err := repo.ListDueFeeds(ctx)
	if err != nil {
		return fmt.Errorf("feedpoll: re-list for %s: %w", feedID, err)
	}
	var target *Feed
	for i := range feeds {
		if feeds[i].ID == feedID {
			target = &feeds[i]
			break
		}
	}
	if target == nil {
		return nil
	}

	entries, err := fetchAndParse(ctx, client, target.URL)
	if err != nil {
		return fmt.Errorf("feedpoll: fetch %s: %w", feedID, err)
	}

	var toSave []FeedItem
	for _, e := range entries {
		hash := contentHash(e.Link, e.Content)
		dup, err := repo.IsDuplicate(ctx, feedID, hash)
		if err != nil {
			return fmt.Errorf("feedpoll: dedupe check %s: %w", feedID, err)
		}
		if dup {
			continue
		}
		e.ContentHash = hash
		if e.Truncated {
			if full, err := enrichFromSourcePage(ctx, client, e.Link); err == nil && full != "" {
				e.Content = full
			}
		}
		toSave = append(toSave, e)
	}

	if len(toSave) > 0 {
		if err := repo.SaveItems(ctx, feedID, toSave); err != nil {
			return fmt.Errorf("feedpoll: save items %s: %w", feedID, err)
		}
	}
	return repo.TouchLastCheck(ctx, feedID)
}

func contentHash(link, content string) string {
	sum := sha256.Sum256([]byte(link + "\x00" + content))
	return hex.EncodeToString(sum[:])
}

// rssDoc is a minimal RSS 2.0 + Atom decode target. No pack library
// specializes in feed parsing, so this is stdlib xml, justified in
// DESIGN.md.
type rssDoc struct {
	Channel struct {
		Items []struct {
			Link    string `xml:"link"`
			Title   string `xml:"title"`
			Content string `xml:"description"`
		} `xml:"item"`
	} `xml:"channel"`
	Entries []struct {
		Link struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Title   string `xml:"title"`
		Content string `xml:"summary"`
	} `xml:"entry"`
}

const truncationMarker = "..."
const shortContentThreshold = 280

func fetchAndParse(ctx context.Context, client *http.Client, url string) ([]FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var doc rssDoc
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]FeedItem, 0, len(doc.Channel.Items)+len(doc.Entries))
	for _, it := range doc.Channel.Items {
		items = append(items, FeedItem{
			Link:      it.Link,
			Title:     it.Title,
			Content:   it.Content,
			Truncated: looksTruncated(it.Content),
		})
	}
	for _, e := range doc.Entries {
		items = append(items, FeedItem{
			Link:      e.Link.Href,
			Title:     e.Title,
			Content:   e.Content,
			Truncated: looksTruncated(e.Content),
		})
	}
	return items, nil
}

func looksTruncated(content string) bool {
	trimmed := strings.TrimSpace(content)
	return len(trimmed) < shortContentThreshold || strings.HasSuffix(trimmed, truncationMarker)
}

// enrichFromSourcePage pulls the canonical article body from link using
// goquery, per spec §4.8's "optionally enrich ... when RSS content
// appears truncated".
func enrichFromSourcePage(ctx context.Context, client *http.Client, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", feedUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", err
	}

	if article := doc.Find("article").First(); article.Length() > 0 {
		return strings.TrimSpace(article.Text()), nil
	}
	return strings.TrimSpace(doc.Find("body").Text()), nil
}
