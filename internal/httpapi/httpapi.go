// Package httpapi serves health, metrics and read-only karma endpoints.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/keshon/trollbot/internal/xp"
)

const maxLimit = 100

// Server exposes the bot over HTTP.
type Server struct {
	Store    xp.Store
	Gatherer prometheus.Gatherer
	Logger   zerolog.Logger
	// Ready reports whether the gateway session is up. Nil means always.
	Ready func() bool
}

type entry struct {
	Place  int    `json:"place"`
	UserID string `json:"user_id"`
	XP     int64  `json:"xp"`
}

// Handler builds the router. The gin mode is left to the caller.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/healthz", s.health)
	if s.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true})))
	}
	api := r.Group("/api")
	api.GET("/leaderboard", s.leaderboard)
	api.GET("/users/:id", s.user)
	return r
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Msg("HTTP request")
	}
}

func (s *Server) health(c *gin.Context) {
	if s.Ready != nil && !s.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "connecting"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) leaderboard(c *gin.Context) {
	limit := 10
	if q := c.Query("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLimit)
	}

	records, err := s.Store.Top(c.Request.Context(), limit)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list leaderboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "couldn't list leaderboard"})
		return
	}

	out := make([]entry, 0, len(records))
	for i, rec := range records {
		place := i + 1
		if i > 0 && rec.XP == records[i-1].XP {
			place = out[i-1].Place
		}
		out = append(out, entry{Place: place, UserID: rec.UserID, XP: rec.XP})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": out})
}

func (s *Server) user(c *gin.Context) {
	id := c.Param("id")
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a snowflake"})
		return
	}
	stats, ok, err := s.Store.Stats(c.Request.Context(), id)
	if err != nil {
		s.Logger.Error().Err(err).Str("user", id).Msg("Failed to rank user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "couldn't rank user"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "user has no karma yet"})
		return
	}
	c.JSON(http.StatusOK, entry{Place: stats.Place, UserID: id, XP: stats.XP})
}

// Serve listens on addr until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("couldn't start HTTP server: %w", err)
	}
	srv := http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	errc := make(chan error, 1)
	go func() {
		s.Logger.Info().Str("addr", l.Addr().String()).Msg("HTTP server listening")
		errc <- srv.Serve(l)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdown)
}
