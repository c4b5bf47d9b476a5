package apperr

import "net/http"

// HTTPStatus returns the status code used at the HTTP boundary for k.
func HTTPStatus(k Kind) int {
	switch k {
	case KindValidation, KindCancelled, KindAlreadyAnchored:
		return http.StatusBadRequest
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
