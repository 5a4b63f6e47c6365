package modules

import (
	"context"
	"testing"
	"time"

	"cropadvisor/internal/external"
	"cropadvisor/internal/feedback"
	"cropadvisor/internal/i18n"
	"cropadvisor/internal/types"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) DetectDisease(ctx context.Context, file external.MultipartFile) (*types.DetectResponse, error) {
	args := m.Called(ctx, file)
	if r := args.Get(0); r != nil {
		return r.(*types.DetectResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) Remedies(ctx context.Context, disease, crop string) (*types.RemediesResponse, error) {
	args := m.Called(ctx, disease, crop)
	if r := args.Get(0); r != nil {
		return r.(*types.RemediesResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) YieldTips(ctx context.Context, crop string) (*types.YieldTipsResponse, error) {
	args := m.Called(ctx, crop)
	if r := args.Get(0); r != nil {
		return r.(*types.YieldTipsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) CropCalendar(ctx context.Context, crop, location string) (*types.CropCalendarResponse, error) {
	args := m.Called(ctx, crop, location)
	if r := args.Get(0); r != nil {
		return r.(*types.CropCalendarResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) MarketPrices(ctx context.Context, crop, market string) (*types.MarketPricesResponse, error) {
	args := m.Called(ctx, crop, market)
	if r := args.Get(0); r != nil {
		return r.(*types.MarketPricesResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) PriceTrends(ctx context.Context, crop string, days int) (*types.PriceTrendsResponse, error) {
	args := m.Called(ctx, crop, days)
	if r := args.Get(0); r != nil {
		return r.(*types.PriceTrendsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) Weather(ctx context.Context, location string) (*types.WeatherResponse, error) {
	args := m.Called(ctx, location)
	if r := args.Get(0); r != nil {
		return r.(*types.WeatherResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockBackend) WeatherAdvice(ctx context.Context, location string) (*types.WeatherAdviceResponse, error) {
	args := m.Called(ctx, location)
	if r := args.Get(0); r != nil {
		return r.(*types.WeatherAdviceResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Mock Charter ---

type mockCharter struct {
	mock.Mock
}

func (m *mockCharter) Bar(title string, labels []string, values []float64) string {
	args := m.Called(title, labels, values)
	return args.String(0)
}

// --- Fixtures ---

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

// fixture bundles the shared collaborators. Notifications never expire so
// tests can inspect everything that was shown.
type fixture struct {
	deps     Deps
	loading  *feedback.Loading
	notifier *feedback.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tables, err := i18n.LoadEmbedded()
	require.NoError(t, err)

	loading := feedback.NewLoading(nil)
	notifier := feedback.NewNotifier(feedback.WithAfterFunc(func(time.Duration, func()) feedback.Timer {
		return heldTimer{}
	}))
	return &fixture{
		deps: Deps{
			Localizer: i18n.New(tables, nil),
			Loading:   loading,
			Notifier:  notifier,
		},
		loading:  loading,
		notifier: notifier,
	}
}

func (f *fixture) levels() []types.NotificationLevel {
	var out []types.NotificationLevel
	for _, n := range f.notifier.Active() {
		out = append(out, n.Level)
	}
	return out
}

func (f *fixture) messages() []string {
	var out []string
	for _, n := range f.notifier.Active() {
		out = append(out, n.Message)
	}
	return out
}

// assertLoading returns a mock Run func that records whether the loading
// indicator was visible while the backend was called.
func assertLoading(f *fixture, seen *bool) func(mock.Arguments) {
	return func(mock.Arguments) {
		*seen = f.loading.Visible()
	}
}

func envOK() types.Envelope { return types.Envelope{Success: true} }

func envFailed(msg string) types.Envelope { return types.Envelope{Success: false, Error: msg} }

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
