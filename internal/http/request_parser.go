package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cashledger/internal/core"
)

// maxBodyBytes bounds JSON bodies and pasted imports.
const maxBodyBytes = 8 << 20

var errEmptyBody = errors.New("request body is empty")

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errEmptyBody
		}
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// decodeError answers a body that failed to decode: 422 for a value the
// domain rejects, 400 for anything malformed.
func decodeError(err error) *JSONResponseBuilder {
	if statusFor(err) == http.StatusUnprocessableEntity {
		return ServiceError(err, "")
	}
	return BadRequestError(err.Error())
}

// formAmount reads an amount sent as a JSON number or as a string such as
// "1,250.50". null and "" mean absent.
type formAmount decimal.Decimal

func (a *formAmount) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		*a = formAmount(decimal.Zero)
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if strings.TrimSpace(raw) == "" {
			*a = formAmount(decimal.Zero)
			return nil
		}
	}
	d, err := core.ParseAmount(raw)
	if err != nil {
		return fmt.Errorf("%w: %s", err, raw)
	}
	*a = formAmount(d)
	return nil
}

func (a formAmount) Decimal() decimal.Decimal { return decimal.Decimal(a) }

// readText reads a bounded plain-text body and strips control characters.
func readText(w http.ResponseWriter, r *http.Request) (string, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}
	text := sanitizeInput(string(body))
	if text == "" {
		return "", errEmptyBody
	}
	return text, nil
}

// pathDate parses the {date} path segment. "today" resolves against now.
func pathDate(r *http.Request, now func() time.Time) (core.Date, error) {
	raw := strings.TrimSpace(r.PathValue("date"))
	if raw == "" || strings.EqualFold(raw, "today") {
		return core.DateOf(now()), nil
	}
	return core.ParseDate(raw)
}

// queryDate parses an optional date query parameter, using fallback when absent.
func queryDate(r *http.Request, key string, fallback core.Date) (core.Date, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	return core.ParseDate(raw)
}

// queryBool reads a boolean query flag; anything but true/1/yes is def.
func queryBool(r *http.Request, key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key))) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return def
	}
}

// splitExportFile splits "daily.csv" into its view and format.
func splitExportFile(file string) (view, format string, ok bool) {
	i := strings.LastIndexByte(file, '.')
	if i <= 0 || i == len(file)-1 {
		return "", "", false
	}
	return strings.ToLower(file[:i]), strings.ToLower(file[i+1:]), true
}
