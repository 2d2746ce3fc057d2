// Package server binds the engine to HTTP. It only decodes the request into
// raw parameters and encodes the envelope; everything else is the engine's.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"goDT/internal/engine"
	"goDT/internal/request"
)

// Server serves data-grid requests for the tables of an engine.
type Server struct {
	engine  *engine.Engine
	log     zerolog.Logger
	metrics *Metrics
	router  *gin.Engine
}

// New builds the router:
//
//	GET|POST /api/tables/:table
//	GET      /healthz
//	GET      /metrics
func New(eng *engine.Engine, log zerolog.Logger, m *Metrics) *Server {
	if m == nil {
		m = NewMetrics()
	}
	s := &Server{engine: eng, log: log, metrics: m}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(log), accessLog(m))

	r.GET("/healthz", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))

	api := r.Group("/api")
	api.GET("/tables", s.listTables)
	api.GET("/tables/:table", s.table)
	api.POST("/tables/:table", s.table)

	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.log.Info().Msg("shutting down")
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listTables(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tables": s.engine.Tables()})
}

func (s *Server) table(c *gin.Context) {
	raw, err := rawParams(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	resp, err := s.engine.ProcessRaw(c.Request.Context(), c.Param("table"), raw)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// rawParams decodes the request into the nested parameter map: a JSON body
// as is, forms and query strings through their bracketed keys.
func rawParams(c *gin.Context) (map[string]any, error) {
	if c.Request.Method == http.MethodPost && strings.HasPrefix(c.ContentType(), "application/json") {
		var raw map[string]any
		if err := c.ShouldBindJSON(&raw); err != nil {
			return nil, &AppError{Code: http.StatusBadRequest, Message: "invalid JSON body", Err: err}
		}
		return raw, nil
	}
	if err := c.Request.ParseForm(); err != nil {
		return nil, &AppError{Code: http.StatusBadRequest, Message: "invalid form", Err: err}
	}
	return request.FromValues(c.Request.Form)
}

func (s *Server) fail(c *gin.Context, err error) {
	app := toAppError(err)
	_ = c.Error(err)
	if app.Code >= http.StatusInternalServerError {
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
	}
	c.AbortWithStatusJSON(app.Code, gin.H{"error": app.Message})
}
