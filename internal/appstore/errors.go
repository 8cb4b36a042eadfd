package appstore

import (
	"errors"
	"fmt"

	"github.com/winback/message-service/internal/http/ratelimit"
)

// Error codes returned by the messaging endpoints.
const (
	CodeInvalidLocale      int64 = 4000164
	CodeInvalidProduct     int64 = 4000023
	CodeHeaderTooLong      int64 = 4010001
	CodeBodyTooLong        int64 = 4010002
	CodeAltTextTooLong     int64 = 4010003
	CodeMaxMessagesReached int64 = 4010004
	CodeMessageNotApproved int64 = 4030017
	CodeImageNotApproved   int64 = 4030018
	CodeNotFound           int64 = 4040001
	CodeDuplicateMessageID int64 = 4090001
	CodeRateLimitExceeded  int64 = 4290000
)

// APIError is a structured rejection from the remote API. It is a
// per-unit error: one row failing with it never aborts a run.
type APIError struct {
	Status  int    `json:"status"`
	Code    int64  `json:"errorCode"`
	Message string `json:"errorMessage"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error %d (code %d): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("API error %d (code %d)", e.Status, e.Code)
}

// IsNotFound reports whether err is the remote not-found rejection.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Code == CodeNotFound || apiErr.Status == 404)
}

// IsDuplicate reports whether err means the message ID already exists.
func IsDuplicate(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Code == CodeDuplicateMessageID || apiErr.Status == 409)
}

// IsRateLimited reports whether err is a rate-limit rejection that
// survived all retries.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Code == CodeRateLimitExceeded || apiErr.Status == 429) {
		return true
	}
	var retryErr *ratelimit.RequestRetryError
	return errors.As(err, &retryErr) && retryErr.LastStatus == 429
}
