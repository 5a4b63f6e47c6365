// Package app is the composition root of the advisor: it owns the shared
// collaborators, the four feature modules and the active language.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"cropadvisor/internal/config"
	"cropadvisor/internal/feedback"
	"cropadvisor/internal/i18n"
	"cropadvisor/internal/modules"
	"cropadvisor/internal/prefs"
	"cropadvisor/internal/render"
	"cropadvisor/internal/types"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

// Backend is everything the feature modules need from the API client.
type Backend interface {
	modules.DiseaseBackend
	modules.MarketBackend
	modules.WeatherBackend
	modules.TipsBackend
}

// Module is the surface the shell uses to drive a feature module.
type Module interface {
	Activate(ctx context.Context) error
	Pane() *render.Pane
	State() types.ModuleState
	Rerender()
}

// Options carries the dependencies of a Shell.
type Options struct {
	Backend    Backend
	Translator *i18n.Translator
	Prefs      prefs.Store
	Loading    *feedback.Loading
	Notifier   *feedback.Notifier
	Charter    render.Charter
	Logger     *slog.Logger
	Modules    config.ModulesConfig

	// RetranslateDynamic re-renders already displayed results when the
	// language changes. When false, results keep the language that was
	// active when they were rendered.
	RetranslateDynamic bool
}

// Shell wires the feature modules together and owns tab and language state.
type Shell struct {
	translator *i18n.Translator
	prefs      prefs.Store
	notifier   *feedback.Notifier
	loading    *feedback.Loading
	logger     *slog.Logger
	validate   *validator.Validate

	Disease *modules.Disease
	Market  *modules.Market
	Weather *modules.Weather
	Tips    *modules.Tips

	mu          sync.Mutex
	active      types.Tab
	unsubscribe []func()
}

// New builds the shell and restores the persisted language, if any.
func New(opts Options) (*Shell, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Charter == nil {
		opts.Charter = render.TextChart{}
	}
	if opts.Loading == nil {
		opts.Loading = feedback.NewLoading(nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = feedback.NewNotifier()
	}
	if opts.Prefs == nil {
		opts.Prefs = prefs.NewMemoryStore()
	}

	deps := modules.Deps{
		Localizer: opts.Translator,
		Loading:   opts.Loading,
		Notifier:  opts.Notifier,
		Logger:    logger,
	}

	s := &Shell{
		translator: opts.Translator,
		prefs:      opts.Prefs,
		notifier:   opts.Notifier,
		loading:    opts.Loading,
		logger:     logger,
		validate:   validator.New(),
		Disease:    modules.NewDisease(opts.Backend, deps),
		Market: modules.NewMarket(opts.Backend, opts.Charter, deps, modules.MarketOptions{
			Crop:       opts.Modules.DefaultCrop,
			Market:     opts.Modules.DefaultMarket,
			TrendsDays: opts.Modules.TrendsDays,
		}),
		Weather: modules.NewWeather(opts.Backend, deps, opts.Modules.DefaultLocation),
		Tips:    modules.NewTips(opts.Backend, deps, opts.Modules.DefaultCrop, opts.Modules.CalendarLocation),
		active:  types.TabDisease,
	}

	if err := s.restoreLanguage(); err != nil {
		return nil, err
	}

	if opts.RetranslateDynamic {
		s.unsubscribe = append(s.unsubscribe, s.translator.Subscribe(func(types.Language) {
			for _, tab := range types.Tabs {
				s.Module(tab).Rerender()
			}
		}))
	}

	return s, nil
}

func (s *Shell) restoreLanguage() error {
	code, ok, err := s.prefs.Get(prefs.LanguageKey)
	if err != nil {
		s.logger.Warn("failed to read preferences, using default language", "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	lang := types.Language(code)
	if !lang.IsSupported() {
		s.logger.Warn("ignoring unsupported stored language", "language", code)
		return nil
	}
	if err := s.translator.SetLanguage(lang); err != nil {
		return fmt.Errorf("restoring language %q: %w", code, err)
	}
	return nil
}

// Close drops the shell's language subscriptions.
func (s *Shell) Close() {
	s.mu.Lock()
	subs := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}

// Translator returns the shared translator.
func (s *Shell) Translator() *i18n.Translator {
	return s.translator
}

// Notifier returns the shared notifier.
func (s *Shell) Notifier() *feedback.Notifier {
	return s.notifier
}

// Loading returns the shared loading indicator.
func (s *Shell) Loading() *feedback.Loading {
	return s.loading
}

// Language returns the active language.
func (s *Shell) Language() types.Language {
	return s.translator.Language()
}

// SetLanguage validates code, persists it and makes it active. Subscribers
// registered through OnLanguageChange are notified. Rendered results are
// left untouched unless the shell was built with RetranslateDynamic.
func (s *Shell) SetLanguage(code string) error {
	if err := s.validate.Var(code, "required,oneof=en hi mr te"); err != nil {
		return types.NewAppErrorWithDetails(
			types.ErrCodeValidationLanguage,
			fmt.Sprintf("unsupported language %q", code),
			err,
			map[string]any{"language": code},
		)
	}

	if err := s.prefs.Set(prefs.LanguageKey, code); err != nil {
		s.logger.Warn("failed to persist language", "language", code, "error", err)
	}
	return s.translator.SetLanguage(types.Language(code))
}

// OnLanguageChange registers fn to run after every language change.
func (s *Shell) OnLanguageChange(fn func(types.Language)) (unsubscribe func()) {
	return s.translator.Subscribe(fn)
}

// Label is one translated static UI string.
type Label struct {
	Key  string
	Text string
}

var staticLabelKeys = []string{
	"app_title",
	"disease_detection",
	"market_prices",
	"weather",
	"farming_tips",
	"upload_image",
	"supports_formats",
	"analyze_image",
	"select_crop",
	"select_market",
	"get_prices",
	"location",
	"get_weather",
	"select_crop_tips",
	"get_tips",
}

// StaticLabels returns the chrome strings in the active language.
func (s *Shell) StaticLabels() []Label {
	out := make([]Label, 0, len(staticLabelKeys))
	for _, key := range staticLabelKeys {
		out = append(out, Label{Key: key, Text: s.translator.Translate(key)})
	}
	return out
}

// TabTitle returns the translated title of tab.
func (s *Shell) TabTitle(tab types.Tab) string {
	switch tab {
	case types.TabDisease:
		return s.translator.Translate("disease_detection")
	case types.TabMarket:
		return s.translator.Translate("market_prices")
	case types.TabWeather:
		return s.translator.Translate("weather")
	case types.TabTips:
		return s.translator.Translate("farming_tips")
	default:
		return string(tab)
	}
}

// Module returns the module behind tab, or nil for an unknown tab.
func (s *Shell) Module(tab types.Tab) Module {
	switch tab {
	case types.TabDisease:
		return s.Disease
	case types.TabMarket:
		return s.Market
	case types.TabWeather:
		return s.Weather
	case types.TabTips:
		return s.Tips
	default:
		return nil
	}
}

// ActiveTab returns the visible tab.
func (s *Shell) ActiveTab() types.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SwitchTab makes tab visible. A module fetches automatically only the first
// time its tab is shown.
func (s *Shell) SwitchTab(ctx context.Context, tab types.Tab) error {
	mod := s.Module(tab)
	if mod == nil {
		return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("unknown tab %q", tab), nil)
	}
	s.mu.Lock()
	s.active = tab
	s.mu.Unlock()
	return mod.Activate(ctx)
}

// Warmup activates the market, weather and tips modules concurrently. One
// module failing does not stop the others.
func (s *Shell) Warmup(ctx context.Context) error {
	var g errgroup.Group
	for _, tab := range []types.Tab{types.TabMarket, types.TabWeather, types.TabTips} {
		mod := s.Module(tab)
		g.Go(func() error {
			if err := mod.Activate(ctx); err != nil {
				return fmt.Errorf("%s: %w", tab, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Welcome shows the startup message in the disease pane.
func (s *Shell) Welcome() {
	s.Disease.Welcome()
}
