package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure by how the flow should react to it.
type Kind string

const (
	KindValidation          Kind = "VALIDATION_ERROR"
	KindNetworkUnreachable  Kind = "NETWORK_UNREACHABLE"
	KindNotFound            Kind = "NOT_FOUND"
	KindServer              Kind = "SERVER_ERROR"
	KindAnalysisUnavailable Kind = "ANALYSIS_UNAVAILABLE"
	KindStorageUnavailable  Kind = "STORAGE_UNAVAILABLE"
	KindRateLimited         Kind = "RATE_LIMITED"
)

// Error carries a user-facing message next to the underlying cause.
// Message is always safe to show to the user; Cause is for logs.
type Error struct {
	Kind    Kind
	Message string
	// Status is the HTTP status associated with the failure, either the one
	// received from the backend or the one the server should answer with.
	Status int
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Status:  kindToHTTPStatus(kind),
	}
}

func Wrap(err error, kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Status:  kindToHTTPStatus(kind),
		Cause:   err,
	}
}

// WithStatus returns a copy of e carrying the given HTTP status.
func (e *Error) WithStatus(status int) *Error {
	cp := *e
	cp.Status = status
	return &cp
}

func kindToHTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNetworkUnreachable, KindAnalysisUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func IsNotFound(err error) bool {
	return Is(err, KindNotFound)
}

func IsValidation(err error) bool {
	return Is(err, KindValidation)
}

func IsNetworkUnreachable(err error) bool {
	return Is(err, KindNetworkUnreachable)
}

// UserMessage extracts the message to display for err. Errors outside the
// taxonomy get the generic fallback so internals never leak to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return MsgUnexpected
}

const (
	MsgUnexpected          = "حدث خطأ غير متوقع. يرجى المحاولة مرة أخرى."
	MsgUnexpectedNetwork   = "حدث خطأ غير متوقع في الشبكة. يرجى المحاولة مرة أخرى."
	MsgNotFound            = "المورد المطلوب غير موجود."
	MsgAnalysisFailed      = "فشل تحليل الصورة. لا بأس، يمكنك إكمال البيانات يدوياً."
	MsgListingFailed       = "فشل إنشاء وصف الإعلان. يرجى المحاولة مرة أخرى."
	MsgMissingEstimateID   = "لم يتم العثور على معرّف التقييم."
	MsgTooManyRequests     = "طلبات كثيرة جداً، يرجى المحاولة لاحقاً."
	MsgStorageUnavailable  = "تعذر الوصول إلى التخزين المحلي."
	MsgInvalidRequest      = "الطلب غير صالح."
	MsgInvalidImage        = "الصورة غير صالحة. يرجى اختيار صورة أخرى."
	MsgImageTooLarge       = "حجم الصورة كبير جداً."
	msgInvalidTemplate     = "قيم غير صالحة للحقول: %s"
	msgUnreachableTemplate = "فشل الاتصال بالخادم على %s.\nيرجى التأكد من أن الخادم المحلي يعمل وأنك متصل بالشبكة."
	msgServerTemplate      = "حدث خطأ في الخادم (الحالة: %d)"
)

// Unreachable builds the NetworkUnreachable error naming the backend address.
func Unreachable(baseURL string, cause error) *Error {
	return Wrap(cause, KindNetworkUnreachable, fmt.Sprintf(msgUnreachableTemplate, baseURL))
}

// InvalidFields builds the validation error for fields with out-of-range values.
func InvalidFields(fields []string) *Error {
	return New(KindValidation, fmt.Sprintf(msgInvalidTemplate, strings.Join(fields, "، ")))
}

// ServerStatus builds the generic server error for a status without a usable body.
func ServerStatus(status int, cause error) *Error {
	return Wrap(cause, KindServer, fmt.Sprintf(msgServerTemplate, status)).WithStatus(status)
}
