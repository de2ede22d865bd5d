package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/raine/pricemate/internal/listing"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/storage"
)

// EstimateStore persists priced submissions.
type EstimateStore interface {
	SaveEstimate(rec *storage.EstimateRecord) error
	// GetEstimate returns nil, nil when id is unknown.
	GetEstimate(id string) (*storage.EstimateRecord, error)
	CountEstimates() (int, error)
}

// Options configures the HTTP API.
type Options struct {
	Store    EstimateStore
	Analyzer llm.Analyzer
	Listings listing.Generator

	AllowedOrigins  []string
	RateLimitLimit  int64
	RateLimitPeriod time.Duration
	MaxImageBytes   int64
	Production      bool

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the estimate backend served over HTTP.
type Server struct {
	store         EstimateStore
	analyzer      llm.Analyzer
	listings      listing.Generator
	maxImageBytes int64
	now           func() time.Time
	engine        *gin.Engine
}

// DefaultMaxImageBytes bounds decoded images when Options.MaxImageBytes is unset.
const DefaultMaxImageBytes = 8 << 20

func New(opts Options) *Server {
	s := &Server{
		store:         opts.Store,
		analyzer:      opts.Analyzer,
		listings:      opts.Listings,
		maxImageBytes: opts.MaxImageBytes,
		now:           opts.Now,
	}
	if s.analyzer == nil {
		s.analyzer = llm.PlaceholderAnalyzer{}
	}
	if s.listings == nil {
		s.listings = listing.TemplateGenerator{}
	}
	if s.maxImageBytes <= 0 {
		s.maxImageBytes = DefaultMaxImageBytes
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.engine = s.setupRouter(opts)
	return s
}

// Handler returns the gin engine serving the API.
func (s *Server) Handler() *gin.Engine {
	return s.engine
}

func (s *Server) setupRouter(opts Options) *gin.Engine {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger())
	r.Use(ErrorHandler())
	r.Use(CORSMiddleware(opts.AllowedOrigins))

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.POST("/estimates", s.createEstimate)
		api.GET("/estimates/:id", s.getEstimate)
		api.POST("/listings/publish", s.publishListing)
		api.POST("/analyze", RateLimitMiddleware(opts.RateLimitLimit, opts.RateLimitPeriod), s.analyze)
	}

	return r
}
