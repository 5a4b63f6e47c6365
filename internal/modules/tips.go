package modules

import (
	"context"
	"strings"

	"cropadvisor/internal/render"
	"cropadvisor/internal/types"
)

// TipsBackend is the part of the API client the farming tips module uses.
type TipsBackend interface {
	YieldTips(ctx context.Context, crop string) (*types.YieldTipsResponse, error)
	CropCalendar(ctx context.Context, crop, location string) (*types.CropCalendarResponse, error)
}

// Tips shows the yield improvement guide for a crop followed by its sowing
// calendar.
type Tips struct {
	*machine
	backend          TipsBackend
	calendarLocation string

	// Guarded by machine.mu.
	crop     string
	tips     types.YieldTips
	calendar *types.CropCalendar
	rendered bool
}

// NewTips creates the farming tips module. The crop calendar is always
// requested for calendarLocation.
func NewTips(backend TipsBackend, deps Deps, crop, calendarLocation string) *Tips {
	return &Tips{
		machine:          newMachine(string(types.TabTips), deps),
		backend:          backend,
		calendarLocation: calendarLocation,
		crop:             crop,
	}
}

// Activate fetches tips the first time the tab is shown.
func (t *Tips) Activate(ctx context.Context) error {
	if !t.firstActivation() {
		return nil
	}
	return t.Fetch(ctx)
}

// Crop returns the selected crop.
func (t *Tips) Crop() string {
	var crop string
	t.locked(func() { crop = t.crop })
	return crop
}

// SetCrop replaces the selected crop and fetches tips for it.
func (t *Tips) SetCrop(ctx context.Context, crop string) error {
	if err := validateSelection("crop", crop); err != nil {
		return err
	}
	t.locked(func() { t.crop = crop })
	return t.Fetch(ctx)
}

// Fetch loads tips for the selected crop, then the crop calendar as a
// secondary request.
func (t *Tips) Fetch(ctx context.Context) error {
	crop := t.Crop()

	seq, err := primary(ctx, t.machine, "farming_tips", "fetching_tips", "Failed to fetch tips",
		func(ctx context.Context) (*types.YieldTipsResponse, error) {
			return t.backend.YieldTips(ctx, crop)
		},
		func(resp *types.YieldTipsResponse) {
			t.tips = resp.Tips
			t.calendar = nil
			t.rendered = true
			t.draw()
		},
	)
	if err != nil {
		return err
	}

	secondary(ctx, t.machine, seq, "crop_calendar",
		func(ctx context.Context) (*types.CropCalendarResponse, error) {
			return t.backend.CropCalendar(ctx, crop, t.calendarLocation)
		},
		func(resp *types.CropCalendarResponse) {
			if resp.Calendar == nil || resp.Calendar.Calendar == nil {
				return
			}
			t.calendar = resp.Calendar.Calendar
			t.pane.Append(t.calendarSection(t.calendar))
		},
	)
	return nil
}

// TipsShown returns the last rendered tips.
func (t *Tips) TipsShown() types.YieldTips {
	var tips types.YieldTips
	t.locked(func() { tips = t.tips })
	return tips
}

// Rerender redraws the retained tips and calendar in the active language.
func (t *Tips) Rerender() {
	t.locked(func() {
		if t.rendered {
			t.draw()
		}
	})
}

// draw renders the retained data. Callers hold machine.mu.
func (t *Tips) draw() {
	if len(t.tips) == 0 {
		t.pane.Replace(render.Muted(t.t("no_tips_available")))
		return
	}

	lines := []string{render.Heading(t.t("yield_improvement_guide"))}
	for _, e := range t.tips {
		lines = append(lines, render.FormatCategoryName(e.Key), render.Bullets(e.Value))
	}
	t.pane.Replace(strings.Join(lines, "\n"))

	if t.calendar != nil {
		t.pane.Append(t.calendarSection(t.calendar))
	}
}

func (t *Tips) calendarSection(cal *types.CropCalendar) string {
	lines := []string{render.Heading(t.t("crop_calendar")), t.t("sowing_times")}
	lines = append(lines, t.seasons(cal.SowingTime)...)
	lines = append(lines, t.t("harvest_times"))
	lines = append(lines, t.seasons(cal.HarvestTime)...)
	lines = append(lines,
		render.Field(t.t("growth_duration"), t.orNA(cal.GrowthDuration)),
		render.Field(t.t("plant_spacing"), t.orNA(cal.Spacing)),
		render.Field(t.t("seed_rate"), t.orNA(cal.SeedRate)),
	)
	return strings.Join(lines, "\n")
}

func (t *Tips) seasons(times types.Ordered[string]) []string {
	out := make([]string, 0, len(times))
	for _, e := range times {
		name := e.Key
		if key := render.SeasonKey(e.Key); key != "" {
			name = t.t(key)
		}
		out = append(out, "  "+name+": "+e.Value)
	}
	return out
}

func (t *Tips) orNA(v string) string {
	if v == "" {
		return t.t("not_available")
	}
	return v
}
