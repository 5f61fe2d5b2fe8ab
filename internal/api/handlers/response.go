package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gulmohar/billing/internal/api/middleware"
	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/utils"
)

// respondError writes {"error": message} with the status mapped from err.
// Server-side failures are attached to the context for the request logger.
func respondError(c *gin.Context, err error) {
	status := ierr.HTTPStatusFromErr(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": ierr.DisplayMessage(err)})
}

func parseIDParam(c *gin.Context, what string) (utils.SixID, bool) {
	id, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		respondError(c, ierr.WithError(err).
			WithHintf("%s not found", what).
			Mark(ierr.ErrNotFound))
		return utils.SixID{}, false
	}
	return id, true
}

func currentUserID(c *gin.Context) (utils.SixID, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		respondError(c, ierr.NewError("no user in context").
			WithHint("Not authorized").
			Mark(ierr.ErrUnauthorized))
		return utils.SixID{}, false
	}
	return id, true
}

// queryInt parses an optional integer query parameter. Absent or malformed
// values yield def.
func queryInt(c *gin.Context, key string, def int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// requiredQueryInt parses a mandatory integer query parameter.
func requiredQueryInt(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, ierr.NewErrorf("missing %s", key).
			WithHintf("%s is required", key).
			Mark(ierr.ErrValidation)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, ierr.WithError(err).
			WithHintf("%s must be a number", key).
			Mark(ierr.ErrValidation)
	}
	return v, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseTime accepts RFC3339 timestamps as well as the zone-less forms HTML
// date and datetime-local inputs produce; zone-less values are read in loc.
// dateOnly reports whether the value carried no time of day.
func parseTime(raw string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, false, nil
	}
	for _, layout := range dateLayouts[1:] {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, layout == "2006-01-02", nil
		}
	}
	return time.Time{}, false, ierr.NewErrorf("unparseable time %q", raw).Mark(ierr.ErrValidation)
}

// optionalTime parses a time field that may be empty; invalid values are a
// validation error naming the field.
func optionalTime(field, raw string, loc *time.Location) (time.Time, bool, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false, nil
	}
	t, dateOnly, err := parseTime(raw, loc)
	if err != nil {
		return time.Time{}, false, ierr.WithError(err).
			WithHintf("%s must be a valid date", field).
			Mark(ierr.ErrValidation)
	}
	return t, dateOnly, nil
}
