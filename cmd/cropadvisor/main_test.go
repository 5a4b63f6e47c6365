package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"cropadvisor/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var backendFixtures = map[string]string{
	"/api/health":               `{"status":"healthy","timestamp":"2024-01-15T09:30:00","version":"1.0.0"}`,
	"/api/languages":            `{"success":true,"languages":[{"code":"hi","name":"Hindi"},{"code":"en","name":"English"}]}`,
	"/api/market-prices":        `{"success":true,"prices":{"crop":"wheat","prices":[{"price":25.5,"market":"Delhi","unit":"kg","date":"2024-01-15"}],"source":"Agmarknet","last_updated":"2024-01-15T09:30:00"}}`,
	"/api/market-prices/trends": `{"success":true,"trends":{"period":"3 days","trends":[{"date":"2024-01-15","price":25.5,"change":2}]}}`,
	"/api/weather":              `{"success":true,"weather":{"location":"pune","source":"OpenWeatherMap","data":{"current":{"temp":24,"humidity":50,"wind_speed":2,"pressure":1010,"description":"clear"},"forecast":[]}}}`,
	"/api/weather/advice":       `{"success":true,"advice":{"farming_recommendations":[{"priority":"medium","type":"humidity","message":"Watch for fungal growth"}]}}`,
	"/api/yield-tips":           `{"success":true,"tips":{"fertilizer":["Split nitrogen doses"]}}`,
	"/api/crop-calendar":        `{"success":true,"calendar":{"calendar":{"sowing_time":{"rabi":"October-November"}}}}`,
}

type harness struct {
	out    bytes.Buffer
	errOut bytes.Buffer

	mu    sync.Mutex
	paths []string
}

func (h *harness) requested() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

// setupEnv points the client at a fixture backend and a private prefs file.
func setupEnv(t *testing.T) *harness {
	t.Helper()
	h := &harness{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.mu.Lock()
		h.paths = append(h.paths, r.URL.Path+"?"+r.URL.RawQuery)
		h.mu.Unlock()
		body, ok := backendFixtures[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	t.Setenv("API_BASE_URL", server.URL+"/api")
	t.Setenv("PREFS_FILE", filepath.Join(t.TempDir(), "prefs.yaml"))
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("HTTP_MAX_RETRIES", "0")
	return h
}

func (h *harness) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	h.out.Reset()
	h.errOut.Reset()
	c := newCLI(strings.NewReader(stdin), &h.out, &h.errOut)
	root := newRootCmd(c)
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestPrices_PrintsPaneWithTrends(t *testing.T) {
	h := setupEnv(t)

	require.NoError(t, h.run(t, "", "prices", "--crop", "wheat", "--market", "delhi", "--days", "3"))

	out := h.out.String()
	assert.Contains(t, out, "== Market Prices ==")
	assert.Contains(t, out, "₹25.50")
	assert.Contains(t, out, "Price Trends (3 days)")
	assert.Contains(t, h.requested(), "/api/market-prices?crop=wheat&market=delhi")
	assert.Contains(t, h.requested(), "/api/market-prices/trends?crop=wheat&days=3")
	assert.Contains(t, h.errOut.String(), "Fetching market prices...")
}

func TestWeather_PrintsAdvice(t *testing.T) {
	h := setupEnv(t)

	require.NoError(t, h.run(t, "", "weather", "--location", "pune"))

	out := h.out.String()
	assert.Contains(t, out, "Location: pune")
	assert.Contains(t, out, "[medium] Humidity: Watch for fungal growth")
}

func TestTips_UsesCalendarLocation(t *testing.T) {
	h := setupEnv(t)
	t.Setenv("CALENDAR_LOCATION", "maharashtra")

	require.NoError(t, h.run(t, "", "tips", "--crop", "wheat"))

	assert.Contains(t, h.out.String(), "Rabi Season: October-November")
	assert.Contains(t, h.requested(), "/api/crop-calendar?crop=wheat&location=maharashtra")
}

func TestLang_SetPersistsAcrossInvocations(t *testing.T) {
	h := setupEnv(t)

	require.NoError(t, h.run(t, "", "lang", "set", "hi"))
	assert.Contains(t, h.out.String(), "हिंदी")

	require.NoError(t, h.run(t, "", "lang"))
	assert.Equal(t, "hi (हिंदी)\n", h.out.String())
}

func TestLang_SetRejectsUnsupported(t *testing.T) {
	h := setupEnv(t)

	err := h.run(t, "", "lang", "set", "fr")
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))

	var buf bytes.Buffer
	reportError(&buf, err)
	assert.Contains(t, buf.String(), `unsupported language "fr"`)
}

func TestDetect_RejectsNonImageWithoutUpload(t *testing.T) {
	h := setupEnv(t)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, writeFile(path, "plain text"))

	err := h.run(t, "", "detect", path)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	assert.Contains(t, h.errOut.String(), "Please upload a valid image file (JPG, PNG)")
	assert.Empty(t, h.requested())
}

func TestHealthAndLanguages(t *testing.T) {
	h := setupEnv(t)

	require.NoError(t, h.run(t, "", "health"))
	assert.Contains(t, h.out.String(), "status: healthy")
	assert.Contains(t, h.out.String(), "version: 1.0.0")

	require.NoError(t, h.run(t, "", "languages"))
	assert.Equal(t, "en\tEnglish\nhi\tHindi\n", h.out.String())
}

func TestShell_TabSwitchAndLanguage(t *testing.T) {
	h := setupEnv(t)

	script := "tab weather\nlang hi\nshow\nbogus\nquit\n"
	require.NoError(t, h.run(t, script, "shell"))

	out := h.out.String()
	assert.Contains(t, out, "Welcome to Crop Health Assistant")
	assert.Contains(t, out, "Location: pune")
	assert.Contains(t, h.errOut.String(), `unknown command "bogus"`)

	// The weather pane was rendered in English and is shown unchanged after
	// the switch to Hindi.
	assert.Equal(t, 2, strings.Count(out, "Current Weather"))
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errors.New("boom"))
	assert.Equal(t, "fatal: boom\n", buf.String())

	buf.Reset()
	reportError(&buf, types.NewStatusError(500, nil))
	assert.Empty(t, buf.String(), "module failures were already notified")
}
