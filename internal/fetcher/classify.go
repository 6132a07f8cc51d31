package fetcher

import (
	"errors"
	"net/http"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ClassifyError turns a failed list call into a FetchError.
//
//	| Status code | ErrorType          |
//	|-------------|--------------------|
//	| 401         | UNAUTHORIZED_ERROR |
//	| 500         | SYSTEM_ERROR       |
//	| other/none  | UNKNOWN_ERROR      |
//
// Missing values are reported as 0 and "" rather than failing, so one
// malformed error never aborts the sibling fetches.
func ClassifyError(err error) FetchError {
	statusCode := statusCodeOf(err)
	path := ""

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		path = reqErr.Path
	}

	return FetchError{
		ErrorType:    errorTypeFor(statusCode),
		ResourcePath: path,
		StatusCode:   statusCode,
	}
}

func errorTypeFor(statusCode int) ErrorType {
	switch statusCode {
	case http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case http.StatusInternalServerError:
		return ErrorTypeSystem
	default:
		return ErrorTypeUnknown
	}
}

// statusCodeOf prefers an explicit RequestError code and falls back to the
// Kubernetes API status carried anywhere in the chain.
func statusCodeOf(err error) int {
	if err == nil {
		return 0
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.StatusCode != 0 {
		return reqErr.StatusCode
	}

	var apiStatus apierrors.APIStatus
	if errors.As(err, &apiStatus) {
		return int(apiStatus.Status().Code)
	}

	return 0
}
