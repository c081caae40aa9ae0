// Package form turns untrusted café form input into validated fields.
package form

import (
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"mspro-labs/cafe-critic/internal/models"
)

// Length limits for free-text fields.
const (
	MaxNameLen        = 100
	MaxCityLen        = 100
	MaxDescriptionLen = 500
	MaxReviewLen      = 2000
)

const (
	minRating = 0
	maxRating = 5
)

// CafeForm holds the raw, unvalidated values of one café submission.
type CafeForm struct {
	Name          string
	City          string
	Website       string
	MapLocation   string
	Description   string
	OverallRating string
	Coffee        string
	Tea           string
	Wifi          string
	Cake          string
	Work          string
	Breakfast     string
	Review        string
}

// FieldErrors maps a form field name to its error message.
type FieldErrors map[string]string

func (e FieldErrors) add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// FromRequest reads a submitted café form. The request body must be form-encoded.
func FromRequest(r *http.Request) CafeForm {
	v := func(key string) string { return strings.TrimSpace(r.PostFormValue(key)) }
	return CafeForm{
		Name:          v("name"),
		City:          v("city"),
		Website:       v("website"),
		MapLocation:   v("map_location"),
		Description:   v("description"),
		OverallRating: v("overall_rating"),
		Coffee:        v("coffee"),
		Tea:           v("tea"),
		Wifi:          v("wifi"),
		Cake:          v("cake"),
		Work:          v("work"),
		Breakfast:     v("breakfast"),
		Review:        v("review"),
	}
}

// FromCafe pre-fills a form from a stored record.
func FromCafe(c models.Cafe) CafeForm {
	return CafeForm{
		Name:          c.Name,
		City:          c.City,
		Website:       c.Website,
		MapLocation:   c.MapLocation,
		Description:   c.Description,
		OverallRating: formatFloat(c.OverallRating),
		Coffee:        formatInt(c.Coffee),
		Tea:           formatInt(c.Tea),
		Wifi:          formatInt(c.Wifi),
		Cake:          formatInt(c.Cake),
		Work:          formatInt(c.Work),
		Breakfast:     formatInt(c.Breakfast),
		Review:        c.Review,
	}
}

// Validate checks every field and returns the normalized fields.
// If any rule fails the fields are zero and errs is non-empty.
func (f CafeForm) Validate() (models.CafeFields, FieldErrors) {
	errs := FieldErrors{}
	out := models.CafeFields{
		Name:        f.Name,
		City:        f.City,
		Website:     f.Website,
		MapLocation: f.MapLocation,
		Description: f.Description,
		Review:      f.Review,
	}

	if f.Name == "" {
		errs.add("name", "Name is required.")
	}
	checkLength(errs, "name", f.Name, MaxNameLen)
	checkLength(errs, "city", f.City, MaxCityLen)
	checkLength(errs, "description", f.Description, MaxDescriptionLen)
	checkLength(errs, "review", f.Review, MaxReviewLen)

	if f.Website != "" && !isURL(f.Website) {
		errs.add("website", "Website must be a valid URL, e.g. https://example.com.")
	}

	out.OverallRating = parseFloatRating(errs, "overall_rating", f.OverallRating)
	out.Coffee = parseIntRating(errs, "coffee", f.Coffee)
	out.Tea = parseIntRating(errs, "tea", f.Tea)
	out.Wifi = parseIntRating(errs, "wifi", f.Wifi)
	out.Cake = parseIntRating(errs, "cake", f.Cake)
	out.Work = parseIntRating(errs, "work", f.Work)
	out.Breakfast = parseIntRating(errs, "breakfast", f.Breakfast)

	if len(errs) > 0 {
		return models.CafeFields{}, errs
	}
	return out, nil
}

func checkLength(errs FieldErrors, field, value string, max int) {
	if utf8.RuneCountInString(value) > max {
		errs.add(field, fmt.Sprintf("Must be at most %d characters.", max))
	}
}

func isURL(raw string) bool {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

var ratingMsg = fmt.Sprintf("Must be a number between %d and %d.", minRating, maxRating)

// parseFloatRating treats a blank value as unset rather than zero.
func parseFloatRating(errs FieldErrors, field, raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || v < minRating || v > maxRating {
		errs.add(field, ratingMsg)
		return nil
	}
	return &v
}

func parseIntRating(errs FieldErrors, field, raw string) *int {
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < minRating || v > maxRating {
		errs.add(field, fmt.Sprintf("Must be a whole number between %d and %d.", minRating, maxRating))
		return nil
	}
	return &v
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func formatInt(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}
