package server

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
	"github.com/raine/pricemate/internal/llm"
	"github.com/raine/pricemate/internal/pricing"
	"github.com/raine/pricemate/internal/storage"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

func (s *Server) health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	if _, err := s.store.CountEstimates(); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	if llm.GetGeminiAnalyzer(s.analyzer) != nil {
		checks["vision"] = "gemini"
	} else {
		checks["vision"] = "placeholder"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: s.now(),
		Checks:    checks,
	})
}

// createEstimate handles POST /api/estimates.
func (s *Server) createEstimate(c *gin.Context) {
	s.limitJSONBody(c)
	var req createEstimateRequest
	verrs, err := bindError(c.ShouldBindJSON(&req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	form := req.form()
	if err := form.Validate(); err != nil {
		_ = c.Error(err)
		return
	}
	if len(verrs) > 0 {
		_ = c.Error(invalidFields(verrs))
		return
	}

	rec := &storage.EstimateRecord{
		ID:          uuid.NewString(),
		Form:        form,
		DamageScore: req.DamageScore,
		Result:      pricing.FixtureForCategory(form.Category),
		CreatedAt:   s.now(),
	}
	if req.ImageURI != nil {
		img, err := s.decodeImage(*req.ImageURI)
		if err != nil {
			_ = c.Error(err)
			return
		}
		rec.ImageMIME = img.MIMEType
	}

	if err := s.store.SaveEstimate(rec); err != nil {
		_ = c.Error(fmt.Errorf("failed to save estimate: %w", err))
		return
	}

	log.Info().
		Str("estimateID", rec.ID).
		Str("category", form.Category).
		Bool("hasImage", rec.ImageMIME != "").
		Msg("estimate created")

	c.JSON(http.StatusCreated, pricing.CreateEstimateResponse{ID: rec.ID})
}

// getEstimate handles GET /api/estimates/:id. Fixture identifiers handed
// out by the stub backend resolve too, so both strategies share ids.
func (s *Server) getEstimate(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.store.GetEstimate(id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if rec != nil {
		c.JSON(http.StatusOK, rec.Result)
		return
	}
	if res, ok := pricing.Fixture(id); ok {
		c.JSON(http.StatusOK, res)
		return
	}
	_ = c.Error(apperror.New(apperror.KindNotFound, apperror.MsgNotFound))
}

// publishListing handles POST /api/listings/publish.
func (s *Server) publishListing(c *gin.Context) {
	var req listingRequest
	verrs, err := bindError(c.ShouldBindJSON(&req))
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := req.Item.Validate(); err != nil {
		_ = c.Error(err)
		return
	}
	if len(verrs) > 0 {
		_ = c.Error(invalidFields(verrs))
		return
	}

	content, err := s.listings.GenerateListing(c.Request.Context(), req.Item, req.Price)
	if err != nil {
		if apperror.KindOf(err) == "" {
			err = apperror.Wrap(err, apperror.KindServer, apperror.MsgListingFailed)
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, content)
}

// analyze handles POST /api/analyze. The image arrives either as a JSON
// data URL or as the "image" field of a multipart form.
func (s *Server) analyze(c *gin.Context) {
	img, err := s.readAnalyzeImage(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	analysis, err := s.analyzer.AnalyzeImage(c.Request.Context(), img)
	if err != nil {
		if apperror.KindOf(err) == "" {
			err = apperror.Wrap(err, apperror.KindAnalysisUnavailable, apperror.MsgAnalysisFailed)
		}
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) readAnalyzeImage(c *gin.Context) (*estimate.Image, error) {
	if c.ContentType() == "multipart/form-data" {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxImageBytes+bodyHeadroom)
		fh, err := c.FormFile("image")
		if err != nil {
			return nil, bodyError(err)
		}
		if fh.Size > s.maxImageBytes {
			return nil, apperror.New(apperror.KindValidation, apperror.MsgImageTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open upload: %w", err)
		}
		defer f.Close()
		data, err := io.ReadAll(io.LimitReader(f, s.maxImageBytes+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return s.checkImage(data)
	}

	s.limitJSONBody(c)
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, bodyError(err)
	}
	return s.decodeImage(req.ImageURI)
}

// decodeImage parses a data URL and verifies the payload is an image. The
// sniffed media type wins over the declared one.
func (s *Server) decodeImage(uri string) (*estimate.Image, error) {
	declared, err := estimate.ParseDataURL(uri)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindValidation, apperror.MsgInvalidImage)
	}
	img, err := s.checkImage(declared.Data)
	if err != nil {
		return nil, err
	}
	if img.MIMEType != declared.MIMEType {
		log.Debug().Str("declared", declared.MIMEType).Str("sniffed", img.MIMEType).Msg("image media type mismatch")
	}
	return img, nil
}

// bodyHeadroom covers everything in a request body besides the image.
const bodyHeadroom = 64 << 10

// limitJSONBody caps a JSON body at the base64 size of the largest accepted
// image plus headroom.
func (s *Server) limitJSONBody(c *gin.Context) {
	limit := (s.maxImageBytes+2)/3*4 + len("data:;base64,") + bodyHeadroom
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
}

func (s *Server) checkImage(data []byte) (*estimate.Image, error) {
	if int64(len(data)) > s.maxImageBytes {
		return nil, apperror.New(apperror.KindValidation, apperror.MsgImageTooLarge)
	}
	img, err := estimate.NewImage(data)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindValidation, apperror.MsgInvalidImage)
	}
	return img, nil
}
