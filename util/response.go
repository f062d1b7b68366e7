package util

import (
	libconstants "github.com/filswan/go-swan-lib/constants"
)

type BasicResponse struct {
	Status  string      `json:"status"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// CreateErrorResponse fills both message and error, the field providers put their reason in.
func CreateErrorResponse(code int, errMsg ...string) BasicResponse {
	var msg string
	if len(errMsg) == 0 {
		msg = codeMsg[code]
	} else {
		msg = errMsg[0]
	}
	return BasicResponse{
		Status:  libconstants.SWAN_API_STATUS_FAIL,
		Code:    code,
		Message: msg,
		Error:   msg,
	}
}

const (
	JsonError = 400

	SignatureError = 4001
	NonceError     = 4002
	EnvError       = 4003
	JobNotFound    = 4004
)

var codeMsg = map[int]string{
	JsonError: "An error occurred while converting to json",

	SignatureError: "Invalid signature",
	NonceError:     "Nonce must be greater than the last used nonce",
	EnvError:       "Compute environment not served by this endpoint",
	JobNotFound:    "Compute job not found",
}
