package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
	"github.com/joseph-ayodele/rental-ledger/internal/server/middleware"
)

// Importer runs the control-file pipeline on a file on disk.
type Importer interface {
	ProcessFile(ctx context.Context, path, fileName string) (*importer.Report, error)
}

type PropertyStore interface {
	ListProperties(ctx context.Context) ([]*entity.Property, error)
	Create(ctx context.Context, p *entity.Property) (*entity.Property, error)
}

type ReservationReader interface {
	List(ctx context.Context, f repository.ReservationFilter) ([]*entity.Reservation, error)
}

type RunReader interface {
	GetByID(ctx context.Context, id string) (*entity.ImportRun, error)
}

type Exporter interface {
	ReservationsXLSX(ctx context.Context, f repository.ReservationFilter) ([]byte, error)
}

// CatalogCache is dropped whenever the property catalog changes.
type CatalogCache interface {
	Invalidate()
}

// Deps wires the HTTP surface. Only Importer is required; routes whose
// dependency is nil are not registered.
type Deps struct {
	Importer       Importer
	Properties     PropertyStore
	Reservations   ReservationReader
	Runs           RunReader
	Exporter       Exporter
	Catalog        CatalogCache
	Health         func(ctx context.Context) error
	UploadDir      string
	MaxUploadBytes int64
	RateLimitRPS   float64
	RateLimitBurst int
	Logger         *slog.Logger
}

type Server struct {
	deps   Deps
	logger *slog.Logger
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.MaxUploadBytes <= 0 {
		deps.MaxUploadBytes = constants.MaxUploadBytes
	}
	if deps.UploadDir == "" {
		deps.UploadDir = os.TempDir()
	}
	return &Server{deps: deps, logger: deps.Logger}
}

// Router builds the gin engine with the middleware chain and all routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(s.logger))
	router.Use(middleware.RequestLogger(s.logger))
	router.Use(middleware.RateLimit(s.deps.RateLimitRPS, s.deps.RateLimitBurst, s.logger))

	router.GET("/health", s.health)
	router.POST("/upload-control-file", s.uploadControlFile)

	if s.deps.Properties != nil {
		router.GET("/properties", s.listProperties)
		router.POST("/properties", s.createProperty)
	}
	if s.deps.Reservations != nil {
		router.GET("/reservations", s.listReservations)
	}
	if s.deps.Exporter != nil {
		router.GET("/reservations/export", s.exportReservations)
	}
	if s.deps.Runs != nil {
		router.GET("/imports/:id", s.getImportRun)
	}
	return router
}

// HTTPServer returns a configured *http.Server for addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		// uploads wait on the extraction backend
		WriteTimeout: 3 * time.Minute,
	}
}

func (s *Server) health(c *gin.Context) {
	if s.deps.Health != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		if err := s.deps.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "time": time.Now().UTC().Format(time.RFC3339)})
}
