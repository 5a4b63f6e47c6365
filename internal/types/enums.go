package types

import "strings"

// Language is one of the supported UI language codes.
type Language string

const (
	LangEnglish Language = "en"
	LangHindi   Language = "hi"
	LangMarathi Language = "mr"
	LangTelugu  Language = "te"
)

// DefaultLanguage is used when nothing has been persisted yet and as the
// second step of the translation fallback chain.
const DefaultLanguage = LangEnglish

// SupportedLanguages lists the selectable languages in menu order.
var SupportedLanguages = []Language{LangEnglish, LangHindi, LangMarathi, LangTelugu}

// DisplayName returns the native name shown in the language menu.
func (l Language) DisplayName() string {
	switch l {
	case LangHindi:
		return "हिंदी"
	case LangMarathi:
		return "मराठी"
	case LangTelugu:
		return "తెలుగు"
	default:
		return "English"
	}
}

// IsSupported reports whether l is in SupportedLanguages.
func (l Language) IsSupported() bool {
	for _, s := range SupportedLanguages {
		if s == l {
			return true
		}
	}
	return false
}

// Severity is the categorical risk level of a detected disease.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// SeverityClass is the visual indicator class a severity maps to.
type SeverityClass string

const (
	ClassHealthy SeverityClass = "healthy"
	ClassDisease SeverityClass = "disease"
	ClassSevere  SeverityClass = "severe"
)

// Class maps a severity to its indicator class. Unknown values are treated
// as low.
func (s Severity) Class() SeverityClass {
	switch Severity(strings.ToLower(string(s))) {
	case SeverityHigh:
		return ClassSevere
	case SeverityMedium:
		return ClassDisease
	default:
		return ClassHealthy
	}
}

// NotificationLevel is the severity of a transient user notification.
type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelWarning NotificationLevel = "warning"
	LevelDanger  NotificationLevel = "danger"
)

// Tab identifies one feature pane of the app shell.
type Tab string

const (
	TabDisease Tab = "disease"
	TabMarket  Tab = "market"
	TabWeather Tab = "weather"
	TabTips    Tab = "tips"
)

// Tabs lists the app shell panes in display order.
var Tabs = []Tab{TabDisease, TabMarket, TabWeather, TabTips}

// ModuleState is the request/render state of a feature module.
type ModuleState string

const (
	StateIdle     ModuleState = "idle"
	StateLoading  ModuleState = "loading"
	StateRendered ModuleState = "rendered"
	StateErrored  ModuleState = "errored"
)
