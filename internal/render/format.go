package render

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cropadvisor/internal/types"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FormatConfidence renders a 0..1 confidence as a percentage with one
// decimal, e.g. 0.873 -> "87.3%".
func FormatConfidence(confidence float64) string {
	return strconv.FormatFloat(confidence*100, 'f', 1, 64) + "%"
}

// FormatCurrency renders an amount in rupees with two decimals.
func FormatCurrency(amount float64) string {
	return "₹" + strconv.FormatFloat(amount, 'f', 2, 64)
}

// FormatChange renders a signed percentage change, e.g. "+2.5%".
func FormatChange(change float64) string {
	s := strconv.FormatFloat(change, 'f', -1, 64) + "%"
	if change >= 0 {
		return "+" + s
	}
	return s
}

// FormatCategoryName turns a snake_case category into title case words:
// "soil_preparation" -> "Soil Preparation". Letters after the first of each
// word keep their case.
func FormatCategoryName(category string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.ReplaceAll(category, "_", " "))
}

// SeasonKey returns the translation key for a known cropping season, or ""
// when the season should be shown verbatim.
func SeasonKey(season string) string {
	switch season {
	case "kharif", "rabi", "zaid":
		return season + "_season"
	default:
		return ""
	}
}

// RecommendationTypeKey returns the translation key for a known
// recommendation type, or "" when the type should be shown verbatim.
func RecommendationTypeKey(kind string) string {
	switch kind {
	case "temperature", "humidity", "precipitation", "sunlight":
		return "rec_" + kind
	default:
		return ""
	}
}

// PriorityLevel maps a recommendation priority to its badge level.
func PriorityLevel(priority string) types.NotificationLevel {
	switch strings.ToLower(priority) {
	case "high":
		return types.LevelDanger
	case "medium":
		return types.LevelWarning
	default:
		return types.LevelSuccess
	}
}

// FormatDay renders a YYYY-MM-DD date as "Mon, Jan 15". Unparseable input
// is returned unchanged.
func FormatDay(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Mon, Jan 2")
}

// FormatDateTime renders an ISO-8601 timestamp in a readable form.
// Unparseable input is returned unchanged.
func FormatDateTime(ts string) string {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("02 Jan 2006 15:04")
		}
	}
	return ts
}

// FormatTemp renders a temperature in Celsius.
func FormatTemp(c float64) string {
	return fmt.Sprintf("%s°C", strconv.FormatFloat(c, 'f', -1, 64))
}
