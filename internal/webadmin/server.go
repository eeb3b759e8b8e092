package webadmin

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/moderator-bot/internal/config"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "webadmin_session"

// Section — раздел админки.
type Section struct {
	Key   string
	Title string
}

// Sections — разделы в порядке меню. Другие адреса /admin/:section отдают 404.
var Sections = []Section{
	{"meta", "SEO"},
	{"content", "Тексты"},
	{"services", "Услуги"},
	{"pricing", "Цены"},
	{"groups", "Группы"},
	{"testimonials", "Отзывы"},
	{"parsers", "Импорт"},
}

// Server — HTTP-часть админки.
type Server struct {
	cfg     *config.WebAdminConfig
	store   *Store
	scraper *Scraper
	auth    *Auth
}

func NewServer(cfg *config.WebAdminConfig) *Server {
	return &Server{
		cfg:     cfg,
		store:   NewStore(cfg.DataFile),
		scraper: NewScraper(cfg.ScraperTimeout),
		auth:    NewAuth(cfg.PasswordHash, cfg.SessionTTL),
	}
}

// Router собирает gin.Engine со всеми маршрутами.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     s.cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.SetHTMLTemplate(template.Must(template.New("").ParseFS(templatesFS, "templates/*.html")))

	r.GET("/", s.index)
	r.GET("/login", s.loginPage)
	r.POST("/login", s.login)
	r.POST("/logout", s.logout)

	admin := r.Group("/admin", s.requireAuth(false))
	{
		admin.GET("", s.adminHome)
		admin.GET("/:section", s.adminSection)
	}

	api := r.Group("/api")
	{
		api.GET("/data", s.data)

		protected := api.Group("", s.requireAuth(true))
		protected.POST("/meta", s.saveMeta)
		protected.POST("/content", s.saveContent)
		protected.POST("/services", saveItem(s, services))
		protected.POST("/prices", saveItem(s, prices))
		protected.POST("/groups", saveItem(s, groups))
		protected.POST("/testimonials", saveItem(s, testimonials))
		protected.POST("/parser/content", s.parseContent)
		protected.POST("/parser/reviews", s.parseReviews)
	}

	return r
}

// Run слушает адрес из конфига до отмены ctx.
func (s *Server) Run(ctx context.Context) error {
	if s.auth.Enabled() {
		log.Info("Вход в админку по паролю включён")
	} else {
		log.Warn("WEBADMIN_PASSWORD_HASH не задан, админка открыта без пароля")
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", s.cfg.Addr).Info("Веб-админка запущена")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestLogger пишет запросы в logrus вместо стандартного логгера gin.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := log.WithFields(log.Fields{
			"component": "webadmin",
			"method":    c.Request.Method,
			"path":      c.Request.URL.Path,
			"status":    status,
			"latency":   time.Since(start).String(),
			"client":    c.ClientIP(),
		})
		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Debug("request")
		}
	}
}

// requireAuth пускает только с живой сессией. Страницы уводят на /login, API отвечает 401.
func (s *Server) requireAuth(api bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.auth.Enabled() {
			c.Next()
			return
		}
		token, _ := c.Cookie(sessionCookie)
		if s.auth.Valid(token) {
			c.Next()
			return
		}
		if api {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Not authenticated"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}
