package util

import (
	"testing"

	libconstants "github.com/filswan/go-swan-lib/constants"
	"github.com/stretchr/testify/assert"
)

func TestCreateErrorResponse(t *testing.T) {
	resp := CreateErrorResponse(SignatureError)
	assert.Equal(t, libconstants.SWAN_API_STATUS_FAIL, resp.Status)
	assert.Equal(t, SignatureError, resp.Code)
	assert.Equal(t, "Invalid signature", resp.Message)
	assert.Equal(t, resp.Message, resp.Error)

	resp = CreateErrorResponse(JsonError, "missing datasets")
	assert.Equal(t, "missing datasets", resp.Error)
}
