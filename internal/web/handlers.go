package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/deusflow/newsdesk/internal/app"
	"github.com/deusflow/newsdesk/internal/export"
	"github.com/deusflow/newsdesk/internal/logger"
	"github.com/deusflow/newsdesk/internal/metrics"
)

type pageData struct {
	Title      string
	Params     searchParams
	Sources    []string
	Categories []string
	Formats    []string
	Searched   bool
	Result     *app.Result
	Error      string
}

func (s *Server) index(c *gin.Context) {
	data := pageData{
		Title:      s.deps.Title,
		Categories: s.deps.Runner.Categories(),
		Formats:    export.Formats(),
	}
	for _, src := range s.deps.Runner.Sources() {
		data.Sources = append(data.Sources, src.Name)
	}

	if len(c.Request.URL.Query()) == 0 {
		c.HTML(http.StatusOK, "index.html", data)
		return
	}

	data.Searched = true
	if err := c.ShouldBindQuery(&data.Params); err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}
	q, err := data.Params.query()
	if err != nil {
		data.Error = err.Error()
		c.HTML(http.StatusBadRequest, "index.html", data)
		return
	}

	res, err := s.deps.Runner.Run(c.Request.Context(), q)
	if err != nil {
		data.Error = err.Error()
		c.HTML(statusFor(err), "index.html", data)
		return
	}
	data.Result = res
	c.HTML(http.StatusOK, "index.html", data)
}

func (s *Server) apiNews(c *gin.Context) {
	var p searchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := p.query()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.deps.Runner.Run(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) export(c *gin.Context) {
	var p searchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	format, err := p.format()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	q, err := p.query()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := s.deps.Runner.Run(c.Request.Context(), q)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	meta := export.Meta{
		Title:       s.deps.Title,
		Link:        requestURL(c),
		Description: fmt.Sprintf("%d items", len(res.Items)),
		Generated:   now,
	}
	if err := export.Write(&buf, format, res.Items, meta); err != nil {
		logger.Error("export failed", "format", format, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	name := export.Filename(format, now)
	if s.deps.Archive != nil {
		if where, err := s.deps.Archive.Save(c.Request.Context(), name, export.ContentType(format), buf.Bytes()); err != nil {
			logger.Warn("archive failed", "file", name, "error", err)
		} else {
			logger.Debug("export archived", "location", where)
		}
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("X-Result-Count", strconv.Itoa(len(res.Items)))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func (s *Server) apiSources(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources":    s.deps.Runner.Sources(),
		"categories": s.deps.Runner.Categories(),
		"formats":    export.Formats(),
	})
}

func (s *Server) apiHistory(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []any{}})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	runs, err := s.deps.History.Recent(c.Request.Context(), limit)
	if err != nil {
		logger.Error("history query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if runs == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []any{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) apiStats(c *gin.Context) {
	out := gin.H{"pipeline": metrics.Global.GetStats()}
	if s.deps.Budget != nil {
		out["ai_budget"] = s.deps.Budget.GetStats()
	}
	if s.deps.History != nil {
		if stats, err := s.deps.History.Stats(c.Request.Context()); err == nil {
			out["history"] = stats
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) health(c *gin.Context) {
	stats := metrics.Global.GetStats()

	code, status := http.StatusOK, "ok"
	if !metrics.Global.Healthy() {
		code, status = http.StatusServiceUnavailable, "error"
	}
	c.JSON(code, gin.H{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func statusFor(err error) int {
	if errors.Is(err, app.ErrInvalidQuery) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func requestURL(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host + "/"
}
