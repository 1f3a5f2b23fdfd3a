package http

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cashledger/internal/core"
)

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Amount string `json:"amount"`
	}

	req := httptest.NewRequest("POST", "/api/entries", strings.NewReader(`{"amount":"12.50"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), req, &v))
	assert.Equal(t, "12.50", v.Amount)

	req = httptest.NewRequest("POST", "/api/entries", strings.NewReader(""))
	assert.ErrorIs(t, decodeJSON(httptest.NewRecorder(), req, &v), errEmptyBody)

	req = httptest.NewRequest("POST", "/api/entries", strings.NewReader(`{"amount":"1","extra":true}`))
	assert.ErrorContains(t, decodeJSON(httptest.NewRecorder(), req, &v), "decode request body")
}

func TestFormAmount(t *testing.T) {
	var v struct {
		Amount formAmount `json:"amount"`
	}
	for raw, want := range map[string]string{
		`{"amount":12.5}`:       "12.5",
		`{"amount":"1,250.50"}`: "1250.5",
		`{"amount":""}`:         "0",
		`{"amount":null}`:       "0",
	} {
		v.Amount = formAmount{}
		require.NoError(t, json.Unmarshal([]byte(raw), &v), raw)
		assert.Equal(t, want, v.Amount.Decimal().String(), raw)
	}

	err := json.Unmarshal([]byte(`{"amount":"12 rupees"}`), &v)
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestReadText(t *testing.T) {
	req := httptest.NewRequest("POST", "/api/import", strings.NewReader("  Date\tType\x00\nrow\x07  "))
	text, err := readText(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Equal(t, "Date\tType\nrow", text)

	req = httptest.NewRequest("POST", "/api/import", strings.NewReader(" \n\t "))
	_, err = readText(httptest.NewRecorder(), req)
	assert.ErrorIs(t, err, errEmptyBody)
}

func TestPathDate(t *testing.T) {
	now := func() time.Time { return time.Date(2025, 3, 24, 21, 30, 0, 0, time.UTC) }

	for _, raw := range []string{"", "today", "TODAY"} {
		req := httptest.NewRequest("GET", "/api/days/x", nil)
		req.SetPathValue("date", raw)
		d, err := pathDate(req, now)
		require.NoError(t, err, raw)
		assert.Equal(t, core.NewDate(2025, 3, 24), d, raw)
	}

	req := httptest.NewRequest("GET", "/api/days/x", nil)
	req.SetPathValue("date", "2025-02-28")
	d, err := pathDate(req, now)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2025, 2, 28), d)

	req.SetPathValue("date", "yesterday")
	_, err = pathDate(req, now)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestQueryHelpers(t *testing.T) {
	fallback := core.NewDate(2025, 3, 23)
	req := httptest.NewRequest("GET", "/api/days/today?source=2025-03-20&strict=YES&flag=maybe", nil)

	d, err := queryDate(req, "source", fallback)
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2025, 3, 20), d)

	d, err = queryDate(req, "missing", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, d)

	assert.True(t, queryBool(req, "strict", false))
	assert.True(t, queryBool(req, "flag", true))
	assert.False(t, queryBool(req, "flag", false))
	assert.False(t, queryBool(req, "missing", false))
}

func TestSplitExportFile(t *testing.T) {
	view, format, ok := splitExportFile("Daily.CSV")
	assert.True(t, ok)
	assert.Equal(t, "daily", view)
	assert.Equal(t, "csv", format)

	for _, bad := range []string{"daily", ".csv", "daily."} {
		_, _, ok := splitExportFile(bad)
		assert.False(t, ok, bad)
	}
}
