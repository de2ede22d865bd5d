package server

import (
	"errors"
	"net/http"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/raine/pricemate/internal/apperror"
	"github.com/raine/pricemate/internal/estimate"
)

// createEstimateRequest is the body of POST /api/estimates.
type createEstimateRequest struct {
	Category    string   `json:"category" binding:"required"`
	Brand       string   `json:"brand" binding:"required"`
	Model       string   `json:"model" binding:"required"`
	Year        string   `json:"year" binding:"required,numeric"`
	Condition   string   `json:"condition" binding:"required"`
	Accessories string   `json:"accessories"`
	Region      string   `json:"region" binding:"required"`
	ImageURI    *string  `json:"imageUri"`
	DamageScore *float64 `json:"damageScore" binding:"omitempty,min=0,max=1"`
}

func (r createEstimateRequest) form() estimate.FormData {
	return estimate.FormData{
		Category:    r.Category,
		Brand:       r.Brand,
		Model:       r.Model,
		Year:        r.Year,
		Condition:   estimate.Condition(r.Condition),
		Accessories: r.Accessories,
		Region:      estimate.Region(r.Region),
	}
}

// listingRequest is the body of POST /api/listings/publish.
type listingRequest struct {
	Item  estimate.FormData `json:"item"`
	Price float64           `json:"price" binding:"gt=0"`
}

// analyzeRequest is the JSON body of POST /api/analyze. Multipart uploads
// use the "image" form field instead.
type analyzeRequest struct {
	ImageURI string `json:"imageUri" binding:"required"`
}

// bindError classifies a ShouldBind failure. Malformed bodies are
// rejected outright; tag violations are returned so that the caller can
// run the domain validation first, which names the missing fields.
func bindError(err error) (validator.ValidationErrors, error) {
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, nil
	}
	return nil, bodyError(err)
}

// bodyError maps a body that could not be read or decoded. A body cut off
// by the size limit is reported as an oversized image.
func bodyError(err error) *apperror.Error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperror.Wrap(err, apperror.KindValidation, apperror.MsgImageTooLarge)
	}
	return apperror.Wrap(err, apperror.KindValidation, apperror.MsgInvalidRequest)
}

// invalidFields names the fields of verrs as they appear in JSON.
func invalidFields(verrs validator.ValidationErrors) *apperror.Error {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, jsonName(fe.Field()))
	}
	return apperror.InvalidFields(fields)
}

func jsonName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}
	return string(unicode.ToLower(r)) + field[size:]
}
