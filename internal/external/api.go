package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"cropadvisor/internal/types"
)

// MultipartFile is an in-memory file part for multipart uploads.
type MultipartFile struct {
	Field       string // form field name, e.g. "image"
	Filename    string
	ContentType string
	Data        []byte
}

// CallOptions customizes a single backend call.
type CallOptions struct {
	Method    string // defaults to GET, or POST when a body is present
	Query     url.Values
	JSON      any
	Multipart *MultipartFile
	Headers   http.Header
}

// APIClient issues calls against the crop-health backend rooted at baseURL.
type APIClient struct {
	*BaseClient
	baseURL string
	logger  *slog.Logger
}

// NewAPIClient creates an APIClient. baseURL must not have a trailing slash;
// endpoints are appended verbatim (e.g. "/weather").
func NewAPIClient(base *BaseClient, baseURL string, logger *slog.Logger) *APIClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &APIClient{
		BaseClient: base,
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// BaseURL returns the backend root this client targets.
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Call performs one request and decodes the JSON body into out.
//
// A JSON content type is attached by default and omitted for multipart
// bodies. Any non-2xx status fails with a network_http_status error carrying
// the code; transport failures fail with network_transport_failure. On
// success the decoded body is returned unconditionally: inspecting the
// success flag is the caller's job.
func (c *APIClient) Call(ctx context.Context, endpoint string, opts CallOptions, out any) error {
	req, err := c.newRequest(ctx, endpoint, opts)
	if err != nil {
		return err
	}

	resp, err := c.Do(req)
	if err != nil {
		c.logger.ErrorContext(ctx, "API call failed",
			"endpoint", endpoint,
			"error", err,
		)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a bounded amount so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		statusErr := types.NewStatusError(resp.StatusCode, nil)
		c.logger.ErrorContext(ctx, "API call failed",
			"endpoint", endpoint,
			"status", resp.StatusCode,
		)
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return types.NewAppError(
			types.ErrCodeNetworkDecode,
			fmt.Sprintf("invalid JSON from %s", endpoint),
			err,
		)
	}
	return nil
}

func (c *APIClient) newRequest(ctx context.Context, endpoint string, opts CallOptions) (*http.Request, error) {
	target := c.baseURL + endpoint
	if len(opts.Query) > 0 {
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		target += sep + opts.Query.Encode()
	}

	var (
		body        io.Reader
		contentType = "application/json"
	)
	switch {
	case opts.Multipart != nil:
		buf, ct, err := encodeMultipart(opts.Multipart)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case opts.JSON != nil:
		raw, err := json.Marshal(opts.JSON)
		if err != nil {
			return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to encode request body", err)
		}
		body = bytes.NewReader(raw)
	}

	method := opts.Method
	if method == "" {
		method = http.MethodGet
		if body != nil {
			method = http.MethodPost
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeInternalUnexpected, "failed to build request", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	for k, vs := range opts.Headers {
		// Caller headers override the defaults, except that a multipart body
		// always keeps its boundary content type.
		if opts.Multipart != nil && http.CanonicalHeaderKey(k) == "Content-Type" {
			continue
		}
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return req, nil
}

func encodeMultipart(f *MultipartFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	field := f.Field
	if field == "" {
		field = "image"
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.Filename))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to create multipart part", err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return nil, "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to write multipart part", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", types.NewAppError(types.ErrCodeInternalUnexpected, "failed to finish multipart body", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// ---------------------------------------------------------------------------
// Typed endpoints
//
// Each returns the decoded body as-is. A success:false body is NOT turned
// into an error here; callers check resp.Envelope.Err.
// ---------------------------------------------------------------------------

// DetectDisease uploads one leaf image to POST /detect-disease.
func (c *APIClient) DetectDisease(ctx context.Context, file MultipartFile) (*types.DetectResponse, error) {
	if file.Field == "" {
		file.Field = "image"
	}
	var out types.DetectResponse
	err := c.Call(ctx, "/detect-disease", CallOptions{Method: http.MethodPost, Multipart: &file}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Remedies fetches GET /remedies?disease=&crop=.
func (c *APIClient) Remedies(ctx context.Context, disease, crop string) (*types.RemediesResponse, error) {
	var out types.RemediesResponse
	q := url.Values{"disease": {disease}, "crop": {crop}}
	if err := c.Call(ctx, "/remedies", CallOptions{Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// YieldTips fetches GET /yield-tips?crop=.
func (c *APIClient) YieldTips(ctx context.Context, crop string) (*types.YieldTipsResponse, error) {
	var out types.YieldTipsResponse
	if err := c.Call(ctx, "/yield-tips", CallOptions{Query: url.Values{"crop": {crop}}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CropCalendar fetches GET /crop-calendar?crop=&location=.
func (c *APIClient) CropCalendar(ctx context.Context, crop, location string) (*types.CropCalendarResponse, error) {
	var out types.CropCalendarResponse
	q := url.Values{"crop": {crop}, "location": {location}}
	if err := c.Call(ctx, "/crop-calendar", CallOptions{Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// MarketPrices fetches GET /market-prices?crop=&market=.
func (c *APIClient) MarketPrices(ctx context.Context, crop, market string) (*types.MarketPricesResponse, error) {
	var out types.MarketPricesResponse
	q := url.Values{"crop": {crop}, "market": {market}}
	if err := c.Call(ctx, "/market-prices", CallOptions{Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PriceTrends fetches GET /market-prices/trends?crop=&days=.
func (c *APIClient) PriceTrends(ctx context.Context, crop string, days int) (*types.PriceTrendsResponse, error) {
	var out types.PriceTrendsResponse
	q := url.Values{"crop": {crop}, "days": {strconv.Itoa(days)}}
	if err := c.Call(ctx, "/market-prices/trends", CallOptions{Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Weather fetches GET /weather?location=.
func (c *APIClient) Weather(ctx context.Context, location string) (*types.WeatherResponse, error) {
	var out types.WeatherResponse
	if err := c.Call(ctx, "/weather", CallOptions{Query: url.Values{"location": {location}}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WeatherAdvice fetches GET /weather/advice?location=.
func (c *APIClient) WeatherAdvice(ctx context.Context, location string) (*types.WeatherAdviceResponse, error) {
	var out types.WeatherAdviceResponse
	if err := c.Call(ctx, "/weather/advice", CallOptions{Query: url.Values{"location": {location}}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health fetches GET /health.
func (c *APIClient) Health(ctx context.Context) (*types.HealthResponse, error) {
	var out types.HealthResponse
	if err := c.Call(ctx, "/health", CallOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Languages fetches GET /languages.
func (c *APIClient) Languages(ctx context.Context) (*types.LanguagesResponse, error) {
	var out types.LanguagesResponse
	if err := c.Call(ctx, "/languages", CallOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
