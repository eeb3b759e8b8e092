// Package webadmin — веб-админка лендинга: правка JSON-документа с контентом
// и импорт текста с чужих страниц.
package webadmin

import (
	"regexp"
	"strings"
)

// Document — всё содержимое сайта, хранится одним JSON-файлом.
type Document struct {
	Meta         *Meta         `json:"meta,omitempty"`
	Content      *Content      `json:"content,omitempty"`
	Services     []Service     `json:"services,omitempty"`
	Pricing      []Price       `json:"pricing,omitempty"`
	Groups       []Group       `json:"groups,omitempty"`
	Testimonials []Testimonial `json:"testimonials,omitempty"`
	UpdatedAt    string        `json:"updatedAt,omitempty"`
}

type Meta struct {
	Title         string `json:"title" form:"title" binding:"required"`
	Description   string `json:"description" form:"description" binding:"required"`
	Keywords      string `json:"keywords" form:"keywords"`
	OGTitle       string `json:"og_title" form:"og_title"`
	OGDescription string `json:"og_description" form:"og_description"`
}

type Content struct {
	HeroTitle    string `json:"hero_title" form:"hero_title" binding:"required"`
	HeroSubtitle string `json:"hero_subtitle" form:"hero_subtitle" binding:"required"`
	HeroBadge    string `json:"hero_badge" form:"hero_badge"`
	AboutTitle   string `json:"about_title" form:"about_title" binding:"required"`
	AboutText    string `json:"about_text" form:"about_text" binding:"required"`
	AboutQuote   string `json:"about_quote" form:"about_quote"`
	CTATitle     string `json:"cta_title" form:"cta_title" binding:"required"`
	CTAText      string `json:"cta_text" form:"cta_text" binding:"required"`
}

type Service struct {
	ID          string `json:"id" form:"-"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Duration    string `json:"duration" form:"duration"`
	Price       string `json:"price" form:"price"`
}

type Price struct {
	ID          string `json:"id" form:"-"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Price       string `json:"price" form:"price"`
}

type Group struct {
	ID          string `json:"id" form:"-"`
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
	Schedule    string `json:"schedule" form:"schedule"`
	Price       string `json:"price" form:"price"`
	// в форме поле называется format_name
	Format string `json:"format" form:"format_name"`
}

type Testimonial struct {
	ID   string `json:"id" form:"-"`
	Name string `json:"name" form:"name"`
	Text string `json:"text" form:"text"`
	Tag  string `json:"tag" form:"tag"`
}

var (
	slugStrip    = regexp.MustCompile(`[^\p{L}\p{N}_\s-]`)
	slugCollapse = regexp.MustCompile(`[\s_-]+`)
)

// Slugify превращает название в кусок id: "Йога для начинающих!" → "йога-для-начинающих".
func Slugify(value string) string {
	value = strings.ToLower(strings.TrimSpace(slugStrip.ReplaceAllString(value, "")))
	value = slugCollapse.ReplaceAllString(value, "-")
	if value == "" {
		return "item"
	}
	return value
}
