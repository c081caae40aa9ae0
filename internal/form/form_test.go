package form

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mspro-labs/cafe-critic/internal/models"
)

func TestValidateMinimal(t *testing.T) {
	fields, errs := CafeForm{Name: "Moja Sredcovka"}.Validate()
	require.Empty(t, errs)
	assert.Equal(t, models.CafeFields{Name: "Moja Sredcovka"}, fields)
}

func TestValidateFull(t *testing.T) {
	f := CafeForm{
		Name:          "Kafeterija",
		City:          "Zagreb",
		Website:       "https://kafeterija.hr/menu",
		MapLocation:   "somewhere near the square",
		Description:   "Espresso bar",
		OverallRating: "4.5",
		Coffee:        "5",
		Tea:           "0",
		Wifi:          "3",
		Cake:          "2",
		Work:          "4",
		Breakfast:     "1",
		Review:        "Nice.",
	}
	fields, errs := f.Validate()
	require.Empty(t, errs)

	require.NotNil(t, fields.OverallRating)
	assert.Equal(t, 4.5, *fields.OverallRating)
	require.NotNil(t, fields.Tea)
	assert.Equal(t, 0, *fields.Tea)
	require.NotNil(t, fields.Breakfast)
	assert.Equal(t, 1, *fields.Breakfast)
	assert.Equal(t, "somewhere near the square", fields.MapLocation)
}

func TestValidateBlankRatingsAreUnset(t *testing.T) {
	fields, errs := CafeForm{Name: "Blank"}.Validate()
	require.Empty(t, errs)
	assert.Nil(t, fields.OverallRating)
	for _, facet := range fields.Facets() {
		assert.Nil(t, facet.Rating, facet.Label)
	}
}

func TestValidateRatingsOutOfRange(t *testing.T) {
	fields := []string{"overall_rating", "coffee", "tea", "wifi", "cake", "work", "breakfast"}
	for _, field := range fields {
		for _, value := range []string{"6", "-1", "5.5", "abc"} {
			f := CafeForm{Name: "Range"}
			set(&f, field, value)

			out, errs := f.Validate()
			assert.Contains(t, errs, field, "%s=%q", field, value)
			assert.Len(t, errs, 1)
			assert.Equal(t, models.CafeFields{}, out)
		}
	}
}

func TestValidateRatingBounds(t *testing.T) {
	_, errs := CafeForm{Name: "Edges", OverallRating: "0", Coffee: "5", Tea: "0"}.Validate()
	assert.Empty(t, errs)

	_, errs = CafeForm{Name: "Fractional", Coffee: "2.5"}.Validate()
	assert.Contains(t, errs, "coffee")

	_, errs = CafeForm{Name: "NaN", OverallRating: "NaN"}.Validate()
	assert.Contains(t, errs, "overall_rating")
}

func TestValidateWebsite(t *testing.T) {
	testCases := []struct {
		input string
		valid bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"not-a-url", false},
		{"example.com", false},
		{"ftp://example.com", false},
		{"https://", false},
	}

	for _, tc := range testCases {
		_, errs := CafeForm{Name: "Web", Website: tc.input}.Validate()
		if tc.valid {
			assert.NotContains(t, errs, "website", tc.input)
		} else {
			assert.Contains(t, errs, "website", tc.input)
		}
	}
}

func TestValidateRequiredAndLengths(t *testing.T) {
	_, errs := CafeForm{}.Validate()
	assert.Contains(t, errs, "name")

	_, errs = CafeForm{
		Name:        strings.Repeat("n", MaxNameLen+1),
		Description: strings.Repeat("d", MaxDescriptionLen+1),
		Review:      strings.Repeat("r", MaxReviewLen+1),
	}.Validate()
	assert.Contains(t, errs, "name")
	assert.Contains(t, errs, "description")
	assert.Contains(t, errs, "review")

	_, errs = CafeForm{Name: "ok", Review: strings.Repeat("ж", MaxReviewLen)}.Validate()
	assert.Empty(t, errs)
}

func TestFromCafeRoundTrip(t *testing.T) {
	rating := 3.5
	coffee, wifi := 4, 0
	cafe := models.Cafe{ID: 3, CafeFields: models.CafeFields{
		Name:          "Prefilled",
		Website:       "https://prefilled.example",
		OverallRating: &rating,
		Coffee:        &coffee,
		Wifi:          &wifi,
	}}

	f := FromCafe(cafe)
	assert.Equal(t, "3.5", f.OverallRating)
	assert.Equal(t, "4", f.Coffee)
	assert.Equal(t, "0", f.Wifi)
	assert.Equal(t, "", f.Tea)

	fields, errs := f.Validate()
	require.Empty(t, errs)
	assert.Equal(t, cafe.CafeFields, fields)
}

func TestFromRequestTrims(t *testing.T) {
	body := url.Values{"name": {"  Spaced  "}, "coffee": {" 3 "}}.Encode()
	req := httptest.NewRequest("POST", "/add", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f := FromRequest(req)
	assert.Equal(t, "Spaced", f.Name)
	assert.Equal(t, "3", f.Coffee)
	assert.Equal(t, "", f.Tea)
}

func set(f *CafeForm, field, value string) {
	switch field {
	case "overall_rating":
		f.OverallRating = value
	case "coffee":
		f.Coffee = value
	case "tea":
		f.Tea = value
	case "wifi":
		f.Wifi = value
	case "cake":
		f.Cake = value
	case "work":
		f.Work = value
	case "breakfast":
		f.Breakfast = value
	}
}
