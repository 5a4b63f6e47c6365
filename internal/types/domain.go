package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Envelope is the success/failure wrapper every backend response carries.
// A transport-successful response with Success=false is a domain error.
type Envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Err returns nil for a successful envelope and a domain AppError otherwise.
// The server-supplied error (or message) is preferred over fallback.
func (e Envelope) Err(fallback string) error {
	if e.Success {
		return nil
	}
	msg := e.Error
	if msg == "" {
		msg = e.Message
	}
	return NewDomainError(msg, fallback)
}

// Entry is one key/value pair of an Ordered object.
type Entry[V any] struct {
	Key   string
	Value V
}

// Ordered decodes a JSON object while keeping the server's key order, which
// a Go map would lose. Tip categories and calendar seasons are rendered in
// the order the backend sends them.
type Ordered[V any] []Entry[V]

// UnmarshalJSON implements json.Unmarshaler.
func (o *Ordered[V]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("ordered: expected object, got %v", tok)
	}

	var out Ordered[V]
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("ordered: expected string key, got %v", keyTok)
		}
		var v V
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("ordered: decoding %q: %w", key, err)
		}
		out = append(out, Entry[V]{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*o = out
	return nil
}

// MarshalJSON implements json.Marshaler, preserving entry order.
func (o Ordered[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (o Ordered[V]) Get(key string) (V, bool) {
	for _, e := range o {
		if e.Key == key {
			return e.Value, true
		}
	}
	var zero V
	return zero, false
}

// ---------------------------------------------------------------------------
// Disease detection
// ---------------------------------------------------------------------------

// DetectionResult is the classifier output for one uploaded leaf image.
type DetectionResult struct {
	Disease     string   `json:"disease"`
	CropType    string   `json:"crop_type"`
	Confidence  float64  `json:"confidence"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
}

// DetectResponse is the body of POST /detect-disease.
type DetectResponse struct {
	Envelope
	Result     DetectionResult `json:"result"`
	AnalysisID int64           `json:"analysis_id,omitempty"`
}

// RemedySet holds the three optional treatment lists for a disease.
// A nil list means the backend omitted that category.
type RemedySet struct {
	Organic    []string `json:"organic,omitempty"`
	Chemical   []string `json:"chemical,omitempty"`
	Preventive []string `json:"preventive,omitempty"`
}

// RemediesResponse is the body of GET /remedies.
type RemediesResponse struct {
	Envelope
	Remedies RemedySet `json:"remedies"`
}

// YieldTips maps a tip category (snake_case) to its ordered tips.
type YieldTips = Ordered[[]string]

// YieldTipsResponse is the body of GET /yield-tips.
type YieldTipsResponse struct {
	Envelope
	Tips YieldTips `json:"tips"`
}

// ---------------------------------------------------------------------------
// Crop calendar
// ---------------------------------------------------------------------------

// CropCalendar is the seasonal timing and planting-density guidance for a crop.
type CropCalendar struct {
	SowingTime     Ordered[string] `json:"sowing_time,omitempty"`
	HarvestTime    Ordered[string] `json:"harvest_time,omitempty"`
	GrowthDuration string          `json:"growth_duration,omitempty"`
	Spacing        string          `json:"spacing,omitempty"`
	SeedRate       string          `json:"seed_rate,omitempty"`
}

// CalendarEnvelope mirrors the backend's nested calendar object.
type CalendarEnvelope struct {
	Crop     string        `json:"crop,omitempty"`
	Location string        `json:"location,omitempty"`
	Calendar *CropCalendar `json:"calendar"`
}

// CropCalendarResponse is the body of GET /crop-calendar.
type CropCalendarResponse struct {
	Envelope
	Calendar *CalendarEnvelope `json:"calendar"`
}

// ---------------------------------------------------------------------------
// Market prices
// ---------------------------------------------------------------------------

// PriceEntry is one market's quote for a crop.
type PriceEntry struct {
	Crop   string  `json:"crop,omitempty"`
	Price  float64 `json:"price"`
	Market string  `json:"market"`
	Unit   string  `json:"unit"`
	Date   string  `json:"date"`
}

// MarketPriceSet is the list of quotes returned per fetch.
type MarketPriceSet struct {
	Crop        string       `json:"crop"`
	Prices      []PriceEntry `json:"prices"`
	Source      string       `json:"source"`
	LastUpdated string       `json:"last_updated"`
}

// MarketPricesResponse is the body of GET /market-prices.
type MarketPricesResponse struct {
	Envelope
	Prices MarketPriceSet `json:"prices"`
}

// TrendPoint is one day of a price trend; Change is a percentage.
type TrendPoint struct {
	Date   string  `json:"date"`
	Price  float64 `json:"price"`
	Change float64 `json:"change"`
}

// PriceTrends is a trend series over Period.
type PriceTrends struct {
	Period string       `json:"period"`
	Trends []TrendPoint `json:"trends"`
}

// PriceTrendsResponse is the body of GET /market-prices/trends.
type PriceTrendsResponse struct {
	Envelope
	Trends PriceTrends `json:"trends"`
}

// ---------------------------------------------------------------------------
// Weather
// ---------------------------------------------------------------------------

// CurrentConditions is the current weather at a location.
type CurrentConditions struct {
	Temp        float64 `json:"temp"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
	Pressure    float64 `json:"pressure"`
	Description string  `json:"description"`
}

// ForecastDay is one daily forecast entry.
type ForecastDay struct {
	Date        string  `json:"date"`
	TempMax     float64 `json:"temp_max"`
	TempMin     float64 `json:"temp_min"`
	Humidity    float64 `json:"humidity,omitempty"`
	Description string  `json:"description"`
}

// WeatherData groups current conditions with the daily forecast.
type WeatherData struct {
	Current  *CurrentConditions `json:"current"`
	Forecast []ForecastDay      `json:"forecast"`
}

// WeatherSnapshot is the weather report for one location.
type WeatherSnapshot struct {
	Location string       `json:"location"`
	Source   string       `json:"source"`
	Data     *WeatherData `json:"data"`
}

// WeatherResponse is the body of GET /weather.
type WeatherResponse struct {
	Envelope
	Weather WeatherSnapshot `json:"weather"`
}

// Recommendation is one weather-driven farming recommendation.
type Recommendation struct {
	Priority string `json:"priority"`
	Type     string `json:"type"`
	Message  string `json:"message"`
}

// FarmingAdvice is the advice block for a location.
type FarmingAdvice struct {
	Location               string           `json:"location,omitempty"`
	FarmingRecommendations []Recommendation `json:"farming_recommendations"`
}

// WeatherAdviceResponse is the body of GET /weather/advice.
type WeatherAdviceResponse struct {
	Envelope
	Advice FarmingAdvice `json:"advice"`
}

// ---------------------------------------------------------------------------
// Service metadata
// ---------------------------------------------------------------------------

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LanguageInfo describes one language the backend can serve.
type LanguageInfo struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// LanguagesResponse is the body of GET /languages.
type LanguagesResponse struct {
	Envelope
	Languages []LanguageInfo `json:"languages"`
}
