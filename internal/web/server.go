// Package web serves the search page, the JSON API and file downloads.
package web

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/deusflow/newsdesk/internal/app"
	"github.com/deusflow/newsdesk/internal/archive"
	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/news"
	"github.com/deusflow/newsdesk/internal/ratelimit"
	"github.com/deusflow/newsdesk/internal/source"
	"github.com/deusflow/newsdesk/internal/storage"
)

//go:embed templates/*.html
var templateFS embed.FS

// Runner executes searches. app.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, q news.Query) (*app.Result, error)
	Sources() []source.Source
	Categories() []string
}

type Deps struct {
	Runner  Runner
	History storage.History   // optional
	Archive archive.Archiver  // optional
	Budget  *ratelimit.Budget // optional
	Title   string
}

type Server struct {
	deps   Deps
	engine *gin.Engine
}

func New(deps Deps) *Server {
	if deps.Title == "" {
		deps.Title = "newsdesk"
	}
	s := &Server{deps: deps}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())
	r.SetHTMLTemplate(template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")))

	r.GET("/", s.index)
	r.GET("/export", s.export)
	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.GET("/news", s.apiNews)
	api.GET("/sources", s.apiSources)
	api.GET("/history", s.apiHistory)
	api.GET("/stats", s.apiStats)

	s.engine = r
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

var funcs = template.FuncMap{
	"date": func(n news.Item) string {
		d := n.Date()
		if d.IsZero() {
			return ""
		}
		return d.Format("2006-01-02 15:04")
	},
	"has": func(list []string, v string) bool {
		for _, s := range list {
			if strings.EqualFold(s, v) {
				return true
			}
		}
		return false
	},
}
