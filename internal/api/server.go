package api

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"

	"github.com/tqqq-trading/internal/storage"
)

// Server exposes backtest runs over HTTP.
type Server struct {
	echo *echo.Echo
	repo *storage.BacktestRepository
}

// NewServer creates the API server. The repository may be nil, in
// which case runs are not persisted and history endpoints return 404.
func NewServer(repo *storage.BacktestRepository) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	s := &Server{
		echo: e,
		repo: repo,
	}

	h := newBacktestHandler(repo)
	e.GET("/health", s.health)
	e.POST("/api/backtest", h.RunBacktest)
	e.GET("/api/backtests", h.ListBacktests)
	e.GET("/api/backtests/:id", h.GetBacktest)

	return s
}

// Start blocks serving HTTP on the given address.
func (s *Server) Start(addr string) error {
	log.Info().Str("addr", addr).Msg("API server starting")
	return s.echo.Start(addr)
}

// Echo exposes the underlying router (used by tests).
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(200, map[string]string{"status": "ok"})
}
