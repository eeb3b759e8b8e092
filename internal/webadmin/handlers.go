package webadmin

import (
	"errors"
	"net/http"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/common"
)

var okResponse = gin.H{"status": "ok"}

func (s *Server) loadOrFail(c *gin.Context) (*Document, bool) {
	doc, err := s.store.Load()
	if err != nil {
		log.WithError(err).Error("Не удалось прочитать документ")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Data file is unreadable"})
		return nil, false
	}
	return doc, true
}

func (s *Server) index(c *gin.Context) {
	doc, ok := s.loadOrFail(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "index.html", gin.H{"data": doc})
}

func (s *Server) data(c *gin.Context) {
	doc, ok := s.loadOrFail(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (s *Server) adminHome(c *gin.Context) {
	s.renderAdmin(c, "", "")
}

func (s *Server) adminSection(c *gin.Context) {
	key := c.Param("section")
	for _, sec := range Sections {
		if sec.Key == key {
			s.renderAdmin(c, sec.Key, sec.Title)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"detail": "Section not found"})
}

func (s *Server) renderAdmin(c *gin.Context, section, title string) {
	doc, ok := s.loadOrFail(c)
	if !ok {
		return
	}
	c.HTML(http.StatusOK, "admin.html", gin.H{
		"data":        doc,
		"section":     section,
		"title":       title,
		"sections":    Sections,
		"authEnabled": s.auth.Enabled(),
	})
}

// --- вход ---

func (s *Server) loginPage(c *gin.Context) {
	if !s.auth.Enabled() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.HTML(http.StatusOK, "login.html", gin.H{})
}

func (s *Server) login(c *gin.Context) {
	if !s.auth.Enabled() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	token, err := s.auth.Login(c.ClientIP(), c.PostForm("password"))
	switch {
	case errors.Is(err, common.ErrTooManyAttempts):
		c.HTML(http.StatusTooManyRequests, "login.html", gin.H{"error": "Слишком много попыток, подождите час."})
		return
	case err != nil:
		c.HTML(http.StatusUnauthorized, "login.html", gin.H{"error": "Неверный пароль."})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookie, token, int(s.cfg.SessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (s *Server) logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		s.auth.Logout(token)
	}
	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, "/login")
}

// --- документ ---

func (s *Server) saveMeta(c *gin.Context) {
	var meta Meta
	if err := c.ShouldBind(&meta); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.update(c, "", func(doc *Document) error {
		doc.Meta = &meta
		return nil
	})
}

func (s *Server) saveContent(c *gin.Context) {
	var content Content
	if err := c.ShouldBind(&content); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	s.update(c, "", func(doc *Document) error {
		doc.Content = &content
		return nil
	})
}

// saveItem — общий обработчик для списков: mode=create|update|delete, item_id.
func saveItem[T any](s *Server, col collection[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in T
		if err := c.ShouldBind(&in); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}

		mode, itemID := c.PostForm("mode"), c.PostForm("item_id")
		if mode != ModeDelete {
			if field := col.missingField(&in); field != "" {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "field required: " + field})
				return
			}
		}

		s.update(c, col.label+" not found", func(doc *Document) error {
			return col.apply(doc, mode, itemID, in)
		})
	}
}

// update сохраняет документ и отвечает {"status":"ok"}.
// notFound — текст 404, если fn не нашла элемент.
func (s *Server) update(c *gin.Context, notFound string, fn func(doc *Document) error) {
	err := s.store.Update(fn)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, okResponse)
	case errors.Is(err, common.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": notFound})
	default:
		log.WithError(err).Error("Не удалось сохранить документ")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Save failed"})
	}
}

// --- парсеры ---

func (s *Server) fetch(c *gin.Context) (*goquery.Document, bool) {
	url := c.PostForm("url")
	if url == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "field required: url"})
		return nil, false
	}
	doc, err := s.scraper.Fetch(c.Request.Context(), url)
	if err != nil {
		log.WithError(err).WithField("url", url).Warn("Не удалось скачать страницу")
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Fetch error: " + err.Error()})
		return nil, false
	}
	return doc, true
}

func (s *Server) parseContent(c *gin.Context) {
	doc, ok := s.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ParseContent(doc))
}

func (s *Server) parseReviews(c *gin.Context) {
	doc, ok := s.fetch(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": ParseReviews(doc)})
}
