package dtos

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	app_error "github.com/xenn00/chat-delivery/internal/errors"
)

func TestFailure_CarriesKindAndData(t *testing.T) {
	resp := Failure(app_error.NotFound("room not found", "room_id"), map[string]string{"status": "FAILED"}, "req-1")

	raw, err := jsoniter.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, jsoniter.Unmarshal(raw, &decoded))

	assert.Equal(t, "req-1", decoded["request_id"])
	assert.Equal(t, "FAILED", decoded["data"].(map[string]any)["status"])
	errs := decoded["errors"].(map[string]any)
	assert.Equal(t, float64(404), errs["code"])
	assert.Equal(t, "not_found", errs["kind"])
	assert.Equal(t, "room_id", errs["field"])
}

func TestSuccess_OmitsErrors(t *testing.T) {
	raw, err := jsoniter.Marshal(Success("ok", 3, ""))
	require.NoError(t, err)

	assert.JSONEq(t, `{"message":"ok","data":3}`, string(raw))
}
