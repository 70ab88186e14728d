package response

import "net/http"

// 状态码兜底文案，handler 没给 message 时使用
var defaultMessages = map[int]string{
	http.StatusBadRequest:            "Bad request.",
	http.StatusUnauthorized:          "Authentication required.",
	http.StatusForbidden:             "Forbidden.",
	http.StatusNotFound:              "Not found.",
	http.StatusConflict:              "Conflict.",
	http.StatusRequestEntityTooLarge: "Request body too large.",
	http.StatusTooManyRequests:       "Too many requests.",
	http.StatusInternalServerError:   "Unhandled server error.",
	http.StatusServiceUnavailable:    "Service unavailable.",
	http.StatusGatewayTimeout:        "Request timed out.",
}

func DefaultMessage(status int) string {
	if m, ok := defaultMessages[status]; ok {
		return m
	}
	return http.StatusText(status)
}
