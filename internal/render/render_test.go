package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"cropadvisor/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestFormatConfidence(t *testing.T) {
	assert.Equal(t, "87.3%", FormatConfidence(0.873))
	assert.Equal(t, "100.0%", FormatConfidence(1))
	assert.Equal(t, "0.0%", FormatConfidence(0))
	assert.Equal(t, "95.0%", FormatConfidence(0.95))
}

func TestFormatCurrencyAndChange(t *testing.T) {
	assert.Equal(t, "₹25.50", FormatCurrency(25.5))
	assert.Equal(t, "+2.5%", FormatChange(2.5))
	assert.Equal(t, "+0%", FormatChange(0))
	assert.Equal(t, "-1.25%", FormatChange(-1.25))
}

func TestFormatCategoryName(t *testing.T) {
	assert.Equal(t, "Soil Preparation", FormatCategoryName("soil_preparation"))
	assert.Equal(t, "Fertilizer", FormatCategoryName("fertilizer"))
	assert.Equal(t, "A  B", FormatCategoryName("a__b"))
	assert.Equal(t, "NPK Ratio", FormatCategoryName("NPK_ratio"))

	got := FormatCategoryName("सिंचाई_tips")
	assert.True(t, utf8.ValidString(got), "%q", got)
	assert.Equal(t, "सिंचाई Tips", got)
	assert.Equal(t, "Élevage", FormatCategoryName("élevage"))
}

func TestKeysAndLevels(t *testing.T) {
	assert.Equal(t, "kharif_season", SeasonKey("kharif"))
	assert.Empty(t, SeasonKey("monsoon"))
	assert.Equal(t, "rec_sunlight", RecommendationTypeKey("sunlight"))
	assert.Empty(t, RecommendationTypeKey("frost"))
	assert.Equal(t, types.LevelDanger, PriorityLevel("HIGH"))
	assert.Equal(t, types.LevelWarning, PriorityLevel("medium"))
	assert.Equal(t, types.LevelSuccess, PriorityLevel("low"))
	assert.Equal(t, types.LevelSuccess, PriorityLevel(""))
}

func TestFormatDates(t *testing.T) {
	assert.Equal(t, "Mon, Jan 15", FormatDay("2024-01-15"))
	assert.Equal(t, "soon", FormatDay("soon"))
	assert.Equal(t, "15 Jan 2024 09:30", FormatDateTime("2024-01-15T09:30:00"))
	assert.Equal(t, "yesterday", FormatDateTime("yesterday"))
}

func TestPane_ReplaceAndAppend(t *testing.T) {
	p := NewPane("weather")
	p.Replace("first")
	p.Append("second")
	assert.Equal(t, "first\nsecond", p.String())
	assert.Equal(t, uint64(2), p.Revision())

	p.Replace("fresh")
	assert.Equal(t, "fresh", p.String())
}

func TestTextChart_Bar(t *testing.T) {
	out := TextChart{Width: 10}.Bar("Market Prices Comparison", []string{"Delhi", "Mumbai"}, []float64{50, 25})

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Market Prices Comparison")
	assert.Contains(t, lines[1], "Delhi")
	assert.Contains(t, lines[1], strings.Repeat("█", 10))
	assert.Contains(t, lines[2], strings.Repeat("█", 5))
	assert.Contains(t, lines[2], "₹25.00")
}
