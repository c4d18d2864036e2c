package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeErrSuccess(t *testing.T) {
	env := &Envelope{Success: true}
	assert.NoError(t, env.Err(200))
}

func TestEnvelopeErrStructured(t *testing.T) {
	env := &Envelope{
		Success: false,
		Error: &Error{
			Code:    "VALIDATION",
			Message: "email is required",
			Details: map[string]string{"field": "email"},
		},
	}

	err := env.Err(400)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "VALIDATION", apiErr.Code)
	assert.Equal(t, "email is required", apiErr.Message)
	assert.Equal(t, 400, apiErr.Status)
	assert.Equal(t, "email", apiErr.Details["field"])
	assert.Contains(t, apiErr.Error(), "VALIDATION")
}

func TestEnvelopeErrSynthesized(t *testing.T) {
	// Some gateway endpoints report failure with only the top-level message.
	env := &Envelope{Success: false, Message: "upstream unavailable"}

	err := env.Err(502)
	require.Error(t, err)

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream unavailable", apiErr.Message)
	assert.Equal(t, 502, apiErr.Status)
}

func TestEnvelopeDecode(t *testing.T) {
	payload, err := json.Marshal(map[string]string{"accessToken": "acc-1"})
	require.NoError(t, err)
	env := &Envelope{Success: true, Data: payload}

	var out RefreshResponse
	require.NoError(t, env.Decode(&out))
	assert.Equal(t, "acc-1", out.AccessToken)
}

func TestEnvelopeDecodeNilDiscards(t *testing.T) {
	env := &Envelope{Success: true}
	assert.NoError(t, env.Decode(nil))
}

func TestEnvelopeDecodeMissingData(t *testing.T) {
	env := &Envelope{Success: true}
	var out RefreshResponse
	assert.Error(t, env.Decode(&out))
}

func TestErrorStatusNotSerialized(t *testing.T) {
	raw, err := json.Marshal(&Error{Code: "X", Message: "y", Status: 401})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "401")
}
