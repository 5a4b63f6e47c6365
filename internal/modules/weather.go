package modules

import (
	"context"
	"fmt"
	"strings"

	"cropadvisor/internal/render"
	"cropadvisor/internal/types"
)

// maxForecastDays is the number of forecast entries shown.
const maxForecastDays = 5

// WeatherBackend is the part of the API client the weather module uses.
type WeatherBackend interface {
	Weather(ctx context.Context, location string) (*types.WeatherResponse, error)
	WeatherAdvice(ctx context.Context, location string) (*types.WeatherAdviceResponse, error)
}

// Weather shows current conditions and the forecast for a location, followed
// by weather-driven farming recommendations.
type Weather struct {
	*machine
	backend WeatherBackend

	// Guarded by machine.mu.
	location string
	snapshot *types.WeatherSnapshot
	advice   *types.FarmingAdvice
}

// NewWeather creates the weather module with an initial location.
func NewWeather(backend WeatherBackend, deps Deps, location string) *Weather {
	return &Weather{
		machine:  newMachine(string(types.TabWeather), deps),
		backend:  backend,
		location: location,
	}
}

// Activate fetches weather the first time the tab is shown.
func (w *Weather) Activate(ctx context.Context) error {
	if !w.firstActivation() {
		return nil
	}
	return w.Fetch(ctx)
}

// Location returns the selected location.
func (w *Weather) Location() string {
	var loc string
	w.locked(func() { loc = w.location })
	return loc
}

// SetLocation replaces the selected location and fetches weather for it.
func (w *Weather) SetLocation(ctx context.Context, location string) error {
	if err := validateSelection("location", location); err != nil {
		return err
	}
	w.locked(func() { w.location = location })
	return w.Fetch(ctx)
}

// Fetch loads weather for the selected location, then farming advice as a
// secondary request.
func (w *Weather) Fetch(ctx context.Context) error {
	location := w.Location()

	seq, err := primary(ctx, w.machine, "weather", "fetching_weather", "Failed to fetch weather",
		func(ctx context.Context) (*types.WeatherResponse, error) {
			return w.backend.Weather(ctx, location)
		},
		func(resp *types.WeatherResponse) {
			snap := resp.Weather
			if snap.Location == "" {
				snap.Location = location
			}
			w.snapshot = &snap
			w.advice = nil
			w.draw()
		},
	)
	if err != nil {
		return err
	}

	secondary(ctx, w.machine, seq, "weather_advice",
		func(ctx context.Context) (*types.WeatherAdviceResponse, error) {
			return w.backend.WeatherAdvice(ctx, location)
		},
		func(resp *types.WeatherAdviceResponse) {
			if len(resp.Advice.FarmingRecommendations) == 0 {
				return
			}
			advice := resp.Advice
			w.advice = &advice
			w.pane.Append(w.adviceSection(&advice))
		},
	)
	return nil
}

// Snapshot returns the last rendered weather report.
func (w *Weather) Snapshot() *types.WeatherSnapshot {
	var s *types.WeatherSnapshot
	w.locked(func() { s = w.snapshot })
	return s
}

// Rerender redraws the retained report in the active language.
func (w *Weather) Rerender() {
	w.locked(func() {
		if w.snapshot != nil {
			w.draw()
		}
	})
}

// draw renders the retained data. Callers hold machine.mu.
func (w *Weather) draw() {
	snap := w.snapshot
	if snap.Data == nil || snap.Data.Current == nil {
		w.pane.Replace(render.Muted(w.deps.Localizer.Translatef("no_weather_data_for", map[string]string{"location": snap.Location})))
		return
	}

	cur := snap.Data.Current
	lines := []string{
		render.Heading(w.t("weather_information")),
		render.Field(w.t("location"), snap.Location),
		render.Field(w.t("source"), snap.Source),
		"",
		render.Heading(w.t("current_weather")),
		render.FormatTemp(cur.Temp) + "  " + cur.Description,
		render.Field(w.t("humidity"), fmt.Sprintf("%g%%", cur.Humidity)),
		render.Field(w.t("wind"), fmt.Sprintf("%g m/s", cur.WindSpeed)),
		render.Field(w.t("pressure"), fmt.Sprintf("%g hPa", cur.Pressure)),
	}

	forecast := snap.Data.Forecast
	if len(forecast) > maxForecastDays {
		forecast = forecast[:maxForecastDays]
	}
	if len(forecast) > 0 {
		lines = append(lines, "", render.Heading(w.t("day_forecast")))
		for _, day := range forecast {
			lines = append(lines, fmt.Sprintf("%s  %s / %s  %s",
				render.FormatDay(day.Date),
				render.FormatTemp(day.TempMax),
				render.FormatTemp(day.TempMin),
				render.Muted(day.Description),
			))
		}
	}
	w.pane.Replace(strings.Join(lines, "\n"))

	if w.advice != nil {
		w.pane.Append(w.adviceSection(w.advice))
	}
}

func (w *Weather) adviceSection(a *types.FarmingAdvice) string {
	lines := []string{render.Heading(w.t("farming_recommendations"))}
	for _, rec := range a.FarmingRecommendations {
		kind := rec.Type
		if key := render.RecommendationTypeKey(rec.Type); key != "" {
			kind = w.t(key)
		}
		lines = append(lines, render.Badge(render.PriorityLevel(rec.Priority), rec.Priority)+" "+kind+": "+rec.Message)
	}
	return strings.Join(lines, "\n")
}
