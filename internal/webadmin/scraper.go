package webadmin

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxKeywords   = 12
	maxReviews    = 6
	summaryMinLen = 60
)

var reviewClass = regexp.MustCompile(`(?i)review|testimonial|comment|feedback`)

// PageSummary — то, что парсер контента достаёт со страницы.
type PageSummary struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	H1          string   `json:"h1"`
	Summary     string   `json:"summary"`
	Keywords    []string `json:"keywords"`
}

// ImportedReview — отзыв, найденный на странице.
type ImportedReview struct {
	Name string `json:"name"`
	Text string `json:"text"`
	Tag  string `json:"tag"`
}

// Scraper скачивает страницы и разбирает их goquery.
type Scraper struct {
	client *http.Client
}

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{client: &http.Client{Timeout: timeout}}
}

// Fetch скачивает страницу. Статус >= 400 считается ошибкой.
func (s *Scraper) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; site-admin/1.0)")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%d %s for url: %s", resp.StatusCode, http.StatusText(resp.StatusCode), url)
	}
	return goquery.NewDocumentFromReader(resp.Body)
}

// ParseContent собирает title, description, h1, первый длинный абзац и ключевые слова.
func ParseContent(doc *goquery.Document) PageSummary {
	out := PageSummary{Keywords: []string{}}

	out.Title = strings.TrimSpace(doc.Find("title").First().Text())
	out.Description = strings.TrimSpace(doc.Find(`meta[name="description"]`).First().AttrOr("content", ""))
	out.H1 = textOf(doc.Find("h1").First(), "")

	for _, p := range paragraphs(doc) {
		if utf8.RuneCountInString(p) > summaryMinLen {
			out.Summary = p
			break
		}
	}

	raw := doc.Find(`meta[name="keywords"]`).First().AttrOr("content", "")
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out.Keywords = append(out.Keywords, k)
		}
		if len(out.Keywords) == maxKeywords {
			break
		}
	}
	return out
}

// ParseReviews ищет блоки с классом review/testimonial/comment/feedback (40..320 символов),
// если таких нет — берёт абзацы 40..220 символов. Не больше шести.
func ParseReviews(doc *goquery.Document) []ImportedReview {
	var candidates []string
	doc.Find("blockquote, div, article").Each(func(_ int, s *goquery.Selection) {
		if !reviewClass.MatchString(s.AttrOr("class", "")) {
			return
		}
		text := textOf(s, " ")
		if n := utf8.RuneCountInString(text); n >= 40 && n <= 320 {
			candidates = append(candidates, text)
		}
	})

	if len(candidates) == 0 {
		for _, p := range paragraphs(doc) {
			if n := utf8.RuneCountInString(p); n >= 40 && n <= 220 {
				candidates = append(candidates, p)
			}
		}
	}

	if len(candidates) > maxReviews {
		candidates = candidates[:maxReviews]
	}

	items := make([]ImportedReview, 0, len(candidates))
	for i, text := range candidates {
		items = append(items, ImportedReview{
			Name: fmt.Sprintf("Отзыв %d", i+1),
			Text: text,
			Tag:  "Импортировано",
		})
	}
	return items
}

func paragraphs(doc *goquery.Document) []string {
	var out []string
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		out = append(out, textOf(s, " "))
	})
	return out
}

// textOf склеивает текстовые узлы через sep, обрезая пробелы у каждого и пропуская пустые.
func textOf(s *goquery.Selection, sep string) string {
	var parts []string
	var walk func(sel *goquery.Selection)
	walk = func(sel *goquery.Selection) {
		sel.Contents().Each(func(_ int, child *goquery.Selection) {
			if goquery.NodeName(child) == "#text" {
				if t := strings.TrimSpace(child.Text()); t != "" {
					parts = append(parts, t)
				}
				return
			}
			walk(child)
		})
	}
	walk(s)
	return strings.Join(parts, sep)
}
