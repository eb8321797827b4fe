package schoolmenu

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrMenuIDMissing indicates a remote fetch was attempted without a menu ID.
	ErrMenuIDMissing = errors.New("schoolmenu: menu ID is required")
	// ErrInvalidDayCount indicates numDays is outside the 1-5 range.
	ErrInvalidDayCount = errors.New("schoolmenu: day count out of range")
	// ErrNoMenuData indicates the API response carried no usable menu object.
	ErrNoMenuData = errors.New("schoolmenu: no menu data returned")
)

// APIError captures a failed menu API exchange: a non-2xx status, or a 2xx
// response whose GraphQL envelope carries an error list.
type APIError struct {
	StatusCode int
	// Messages holds the GraphQL error messages when present.
	Messages []string
	// RawBody keeps the original payload for debugging.
	RawBody []byte
}

func (e *APIError) Error() string {
	b := strings.Builder{}
	b.WriteString("schoolmenu: menu API error (status=")
	b.WriteString(strconv.Itoa(e.StatusCode))
	b.WriteString(")")
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	return b.String()
}

func buildAPIError(status int, body []byte) error {
	ae := &APIError{StatusCode: status, RawBody: body}
	if msg := strings.TrimSpace(string(body)); msg != "" && len(msg) < 200 {
		ae.Messages = []string{msg}
	}
	return ae
}

func graphqlError(status int, errs []wireError, body []byte) error {
	ae := &APIError{StatusCode: status, RawBody: body}
	for _, e := range errs {
		if m := strings.TrimSpace(e.Message); m != "" {
			ae.Messages = append(ae.Messages, m)
		}
	}
	return ae
}
