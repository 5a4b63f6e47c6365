package modules

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cropadvisor/internal/external"
	"cropadvisor/internal/render"
	"cropadvisor/internal/types"
)

// DiseaseBackend is the part of the API client the disease module uses.
type DiseaseBackend interface {
	DetectDisease(ctx context.Context, file external.MultipartFile) (*types.DetectResponse, error)
	Remedies(ctx context.Context, disease, crop string) (*types.RemediesResponse, error)
	YieldTips(ctx context.Context, crop string) (*types.YieldTipsResponse, error)
}

// Image is a validated leaf image ready for upload.
type Image struct {
	Name      string
	MediaType string
	Data      []byte
}

// Disease uploads a leaf image for classification and shows the diagnosis,
// optionally followed by remedies and yield tips.
type Disease struct {
	*machine
	backend DiseaseBackend

	// Guarded by machine.mu.
	selected *Image
	result   *types.DetectionResult
	extras   []any // *types.RemedySet or types.YieldTips, in display order
	resSeq   uint64
}

// NewDisease creates the disease detection module.
func NewDisease(backend DiseaseBackend, deps Deps) *Disease {
	return &Disease{
		machine: newMachine(string(types.TabDisease), deps),
		backend: backend,
	}
}

// Activate has nothing to fetch; the disease pane starts from the welcome
// message.
func (d *Disease) Activate(context.Context) error {
	d.firstActivation()
	return nil
}

// Welcome shows the localized welcome message in the result pane.
func (d *Disease) Welcome() {
	d.pane.Replace(render.Muted(d.t("welcome")))
}

// SelectFile validates and selects the image at path. The file size is
// checked against the ceiling before its content is read in full.
func (d *Disease) SelectFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("cannot open %s", path), err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("cannot stat %s", path), err)
	}

	head := make([]byte, 3072)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("cannot read %s", path), err)
	}
	head = head[:n]

	if _, err := d.check(head, info.Size()); err != nil {
		return err
	}

	rest, err := io.ReadAll(f)
	if err != nil {
		return types.NewAppError(types.ErrCodeValidationInvalidSelect, fmt.Sprintf("cannot read %s", path), err)
	}
	return d.Select(filepath.Base(path), append(head, rest...))
}

// Select validates and selects an in-memory image. A rejected image leaves
// the previous selection untouched and shows a warning.
func (d *Disease) Select(name string, data []byte) error {
	mediaType, err := d.check(data, int64(len(data)))
	if err != nil {
		return err
	}
	d.locked(func() {
		d.selected = &Image{Name: name, MediaType: mediaType, Data: data}
	})
	d.deps.Notifier.Success(d.t("image_selected"))
	return nil
}

func (d *Disease) check(data []byte, size int64) (string, error) {
	mediaType, err := validateImage(data, size)
	if err == nil {
		return mediaType, nil
	}
	key := "please_upload_valid"
	var appErr *types.AppError
	if errors.As(err, &appErr) && appErr.Code == types.ErrCodeValidationFileTooLarge {
		key = "image_size_limit"
	}
	d.logger.Info("image rejected", "error", err)
	d.deps.Notifier.Warning(d.t(key))
	return "", err
}

// Selected returns the currently selected image, if any.
func (d *Disease) Selected() *Image {
	var img *Image
	d.locked(func() { img = d.selected })
	return img
}

// Analyze uploads the selected image and renders the diagnosis.
func (d *Disease) Analyze(ctx context.Context) error {
	img := d.Selected()
	if img == nil {
		d.deps.Notifier.Warning(d.t("please_select_image"))
		return types.NewAppError(types.ErrCodeValidationNoImage, "no image selected", nil)
	}

	_, err := primary(ctx, d.machine, "detect_disease", "analyzing_image", "Analysis failed",
		func(ctx context.Context) (*types.DetectResponse, error) {
			return d.backend.DetectDisease(ctx, external.MultipartFile{
				Field:       "image",
				Filename:    img.Name,
				ContentType: img.MediaType,
				Data:        img.Data,
			})
		},
		func(resp *types.DetectResponse) {
			result := resp.Result
			d.result = &result
			d.extras = nil
			d.resSeq = d.seq
			d.draw()
		},
	)
	return err
}

// Result returns the last rendered diagnosis.
func (d *Disease) Result() *types.DetectionResult {
	var r *types.DetectionResult
	d.locked(func() { r = d.result })
	return r
}

func (d *Disease) current() (*types.DetectionResult, uint64) {
	var (
		r   *types.DetectionResult
		seq uint64
	)
	d.locked(func() { r, seq = d.result, d.resSeq })
	return r, seq
}

// Remedies fetches treatment options for the last diagnosis and appends
// them below it.
func (d *Disease) Remedies(ctx context.Context) error {
	result, seq := d.current()
	if result == nil {
		d.deps.Notifier.Warning(d.t("please_select_image"))
		return types.NewAppError(types.ErrCodeValidationNoImage, "no diagnosis to fetch remedies for", nil)
	}
	return followUp(ctx, d.machine, seq, "remedies", "fetching_remedies", "Failed to fetch remedies",
		func(ctx context.Context) (*types.RemediesResponse, error) {
			return d.backend.Remedies(ctx, result.Disease, result.CropType)
		},
		func(resp *types.RemediesResponse) {
			set := resp.Remedies
			d.extras = append(d.extras, &set)
			d.pane.Append(d.remediesSection(&set))
		},
	)
}

// YieldTips fetches yield improvement tips for the diagnosed crop and
// appends them below the diagnosis.
func (d *Disease) YieldTips(ctx context.Context) error {
	result, seq := d.current()
	if result == nil {
		d.deps.Notifier.Warning(d.t("please_select_image"))
		return types.NewAppError(types.ErrCodeValidationNoImage, "no diagnosis to fetch yield tips for", nil)
	}
	return followUp(ctx, d.machine, seq, "yield_tips", "fetching_yield_tips", "Failed to fetch yield tips",
		func(ctx context.Context) (*types.YieldTipsResponse, error) {
			return d.backend.YieldTips(ctx, result.CropType)
		},
		func(resp *types.YieldTipsResponse) {
			d.extras = append(d.extras, resp.Tips)
			d.pane.Append(d.tipsSection(resp.Tips))
		},
	)
}

// Reset clears the selection and the result pane.
func (d *Disease) Reset() {
	d.locked(func() {
		d.seq++
		d.selected = nil
		d.result = nil
		d.extras = nil
		d.resSeq = 0
		d.state = types.StateIdle
		d.pane.Replace(render.Muted(d.t("upload_to_start")))
	})
}

// Rerender redraws the retained diagnosis in the active language.
func (d *Disease) Rerender() {
	d.locked(func() {
		if d.result != nil {
			d.draw()
		}
	})
}

// draw renders the diagnosis and its follow-ups. Callers hold machine.mu.
func (d *Disease) draw() {
	d.pane.Replace(d.resultSection(d.result))
	for _, extra := range d.extras {
		switch v := extra.(type) {
		case *types.RemedySet:
			d.pane.Append(d.remediesSection(v))
		case types.YieldTips:
			d.pane.Append(d.tipsSection(v))
		}
	}
}

func (d *Disease) resultSection(r *types.DetectionResult) string {
	lines := []string{
		render.SeverityIndicator(r.Severity.Class()) + " " + render.Heading(r.Disease),
		render.Field(d.t("crop_type"), r.CropType),
		render.Field(d.t("confidence"), render.FormatConfidence(r.Confidence)),
		render.Field(d.t("severity"), d.t(strings.ToLower(string(r.Severity)))),
		render.Muted(d.t("detection_confidence")) + " " + confidenceBar(r.Confidence),
		render.Field(d.t("description"), r.Description),
	}
	return strings.Join(lines, "\n")
}

func confidenceBar(confidence float64) string {
	const width = 20
	n := int(confidence*width + 0.5)
	if n < 0 {
		n = 0
	}
	if n > width {
		n = width
	}
	return strings.Repeat("█", n) + strings.Repeat("░", width-n)
}

func (d *Disease) remediesSection(set *types.RemedySet) string {
	sections := []string{render.Heading(d.t("treatment_options"))}
	for _, group := range []struct {
		key   string
		items []string
	}{
		{"organic_remedies", set.Organic},
		{"chemical_treatments", set.Chemical},
		{"preventive_measures", set.Preventive},
	} {
		if group.items == nil {
			continue
		}
		sections = append(sections, d.t(group.key), render.Bullets(group.items))
	}
	return strings.Join(sections, "\n")
}

func (d *Disease) tipsSection(tips types.YieldTips) string {
	sections := []string{render.Heading(d.t("yield_improvement"))}
	for _, e := range tips {
		sections = append(sections, render.FormatCategoryName(e.Key), render.Bullets(e.Value))
	}
	return strings.Join(sections, "\n")
}
