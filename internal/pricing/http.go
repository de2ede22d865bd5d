package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
)

const DefaultBaseURL = "http://localhost:4000"

// HTTPBackend talks to the estimate server over JSON.
type HTTPBackend struct {
	httpClient *resty.Client
	baseURL    string
}

var _ Backend = (*HTTPBackend)(nil)

func NewHTTPBackend(baseURL string) *HTTPBackend {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	b := HTTPBackend{baseURL: baseURL}
	b.httpClient = resty.New().
		SetDebug(false).
		SetBaseURL(baseURL).
		SetRetryCount(0).
		SetHeaders(
			map[string]string{
				"Accept":       "application/json",
				"Content-Type": "application/json",
			},
		)

	return &b
}

// BaseURL returns the address requests are sent to.
func (b *HTTPBackend) BaseURL() string {
	return b.baseURL
}

func (b *HTTPBackend) req(ctx context.Context) *resty.Request {
	return b.httpClient.
		NewRequest().
		SetContext(ctx)
}

func (b *HTTPBackend) CreateEstimate(ctx context.Context, sub estimate.Submission) (string, error) {
	res, err := b.req(ctx).
		SetBody(NewCreateEstimateRequest(sub)).
		Post("/api/estimates")
	res, err = b.handleError(ctx, "createEstimate", res, err)
	if err != nil {
		return "", err
	}

	var out CreateEstimateResponse
	if err := decode(res, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", apperror.New(apperror.KindServer, apperror.MsgUnexpected)
	}
	return out.ID, nil
}

func (b *HTTPBackend) GetEstimate(ctx context.Context, id string) (*estimate.Result, error) {
	if id == "" {
		return nil, apperror.New(apperror.KindValidation, apperror.MsgMissingEstimateID)
	}

	res, err := b.req(ctx).
		SetPathParams(map[string]string{
			"id": id,
		}).
		Get("/api/estimates/{id}")
	res, err = b.handleError(ctx, "getEstimate", res, err)
	if err != nil {
		return nil, err
	}

	var out estimate.Result
	if err := decode(res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (b *HTTPBackend) GenerateListing(ctx context.Context, item estimate.FormData, price float64) (*estimate.ListingContent, error) {
	res, err := b.req(ctx).
		SetBody(ListingRequest{Item: item, Price: price}).
		Post("/api/listings/publish")
	res, err = b.handleError(ctx, "generateListing", res, err)
	if err != nil {
		return nil, err
	}

	var out estimate.ListingContent
	if err := decode(res, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// handleError maps transport failures and >399 responses onto the error
// taxonomy. Without this, failing responses would have nil error.
func (b *HTTPBackend) handleError(ctx context.Context, op string, res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		log.Error().Err(err).Str("op", op).Str("baseURL", b.baseURL).Msg("backend unreachable")
		return res, apperror.Unreachable(b.baseURL, err)
	}
	if !res.IsError() {
		return res, nil
	}

	status := res.StatusCode()
	cause := errors.New(res.Status())
	log.Error().Str("op", op).Int("status", status).Str("body", string(res.Body())).Msg("backend request failed")

	if status == http.StatusNotFound {
		return res, apperror.Wrap(cause, apperror.KindNotFound, apperror.MsgNotFound).WithStatus(status)
	}

	var body ErrorResponse
	if json.Unmarshal(res.Body(), &body) == nil {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		if msg != "" {
			return res, apperror.Wrap(cause, apperror.KindServer, msg).WithStatus(status)
		}
	}
	return res, apperror.ServerStatus(status, cause)
}

func decode(res *resty.Response, v any) error {
	if err := json.Unmarshal(res.Body(), v); err != nil {
		log.Error().Err(err).Str("body", string(res.Body())).Msg("failed to decode backend response")
		return apperror.Wrap(err, apperror.KindServer, apperror.MsgUnexpected)
	}
	return nil
}
