package mkmtrees

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ejrshadbolt/mkmtrees-sub001/paging"
)

// apiError is the failure envelope for every /api/ response.
type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// apiMessage is the success envelope for endpoints that return no resource.
type apiMessage struct {
	Message string `json:"message"`
}

func badRequest(msg string) error {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}

// conflict is a 400 with an explanation, used for uniqueness and
// in-use guards.
func conflict(msg, detail string) error {
	return echo.NewHTTPError(http.StatusBadRequest, apiError{Error: msg, Message: detail})
}

func notFound(what string) error {
	return echo.NewHTTPError(http.StatusNotFound, what+" not found")
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
}

func unavailable(what string) error {
	return echo.NewHTTPError(http.StatusInternalServerError, what+" not available")
}

// internalError keeps err for the log and sends only msg.
func internalError(msg string, err error) error {
	return echo.NewHTTPError(http.StatusInternalServerError, msg).SetInternal(err)
}

// lookupError maps a store read error to 404 or 500.
func lookupError(what string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return notFound(what)
	}
	return internalError("Failed to fetch "+strings.ToLower(what), err)
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("Invalid " + name)
	}
	return id, nil
}

func bindJSON(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return badRequest("Invalid request body")
	}
	return nil
}

// requireFields reports the names whose values are blank, in order.
func requireFields(fields ...[2]string) error {
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f[1]) == "" {
			missing = append(missing, f[0])
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return badRequest(fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")))
}

func field(name, value string) [2]string { return [2]string{name, value} }

func pageParams(c echo.Context, defaultLimit int) paging.Params {
	return paging.FromQuery(c.QueryParam, defaultLimit, 100)
}

// queryBool parses an optional boolean query parameter.
func queryBool(c echo.Context, name string) *bool {
	v, err := strconv.ParseBool(c.QueryParam(name))
	if err != nil {
		return nil
	}
	return &v
}

// str returns *p or fallback.
func str(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return strings.TrimSpace(*p)
}

func boolOr(p *bool, fallback bool) bool {
	if p == nil {
		return fallback
	}
	return *p
}

func intOr(p *int, fallback int) int {
	if p == nil {
		return fallback
	}
	return *p
}

// refOr resolves an optional foreign key in an update body: absent keeps
// the stored value, zero clears it.
func refOr(p *int64, fallback *int64) *int64 {
	if p == nil {
		return fallback
	}
	if *p == 0 {
		return nil
	}
	v := *p
	return &v
}

// currentUserID is set by requireAdmin.
func currentUserID(c echo.Context) *int64 {
	id, ok := c.Get(userIDKey).(int64)
	if !ok {
		return nil
	}
	return &id
}
