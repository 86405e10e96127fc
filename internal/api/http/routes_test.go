package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-analytics/internal/report"
	"github.com/i474232898/weather-analytics/internal/store"
	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/i474232898/weather-analytics/internal/weather/providers"
)

var testCities = []string{"Москва", "Sochi", "Murmansk"}

type fakeProvider struct{}

func (fakeProvider) Name() string { return "fake" }

func (fakeProvider) Fetch(_ context.Context, city string) (weather.WeatherRecord, error) {
	records := map[string]weather.WeatherRecord{
		"Москва":   {City: "Москва", Country: "RU", Temperature: 18.5, FeelsLike: 17.9, Humidity: 60, WindSpeed: 3.2, Description: "облачно"},
		"Sochi":    {City: "Sochi", Country: "RU", Temperature: 26.1, FeelsLike: 27, Humidity: 75, WindSpeed: 1.5, Description: "ясно"},
		"Murmansk": {City: "Murmansk", Country: "RU", Temperature: 7.4, FeelsLike: 4.2, Humidity: 88, WindSpeed: 6.8, Description: "облачно"},
	}
	r, ok := records[city]
	if !ok {
		return weather.WeatherRecord{}, providers.ErrCityNotFound
	}
	r.Timestamp = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return r, nil
}

func (fakeProvider) FetchForecast(_ context.Context, city string) (weather.Forecast, error) {
	if city != "Sochi" {
		return weather.Forecast{}, providers.ErrCityNotFound
	}
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	return weather.Forecast{
		City: city,
		Points: []weather.ForecastPoint{
			{Time: start, Temperature: 21, Description: "ясно"},
			{Time: start.Add(3 * time.Hour), Temperature: 25, Description: "ясно"},
		},
	}, nil
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	app := fiber.New()
	svc := weather.NewService(store.NewMemoryStore(10, time.Hour), fakeProvider{}, 2)
	RegisterRoutes(app, svc, testCities)
	return app
}

func do(t *testing.T, app *fiber.App, method, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, target, nil), -1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, body
}

func collect(t *testing.T, app *fiber.App) {
	t.Helper()
	resp, body := do(t, app, http.MethodPost, "/api/v1/collect")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("collect: expected status %d, got %d: %s", http.StatusCreated, resp.StatusCode, body)
	}
}

func TestReportBeforeCollectionIsNotFound(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/v1/report", "/api/v1/report/summary", "/api/v1/charts/temperature"} {
		resp, _ := do(t, app, http.MethodGet, path)
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s: expected status %d, got %d", path, http.StatusNotFound, resp.StatusCode)
		}
	}
}

func TestCollectThenReport(t *testing.T) {
	app := newTestApp(t)
	collect(t, app)

	resp, body := do(t, app, http.MethodGet, "/api/v1/report")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}

	var payload struct {
		Report  report.Report           `json:"report"`
		Records []weather.WeatherRecord `json:"records"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Records) != len(testCities) {
		t.Fatalf("expected %d records, got %d", len(testCities), len(payload.Records))
	}
	if payload.Records[0].City != "Москва" {
		t.Errorf("records out of order: first is %q", payload.Records[0].City)
	}
	if payload.Report.Hottest.City != "Sochi" {
		t.Errorf("expected hottest Sochi, got %q", payload.Report.Hottest.City)
	}
	if payload.Report.Summary.Count != len(testCities) {
		t.Errorf("expected count %d, got %d", len(testCities), payload.Report.Summary.Count)
	}
	if got := payload.Report.Conditions.Total(); got != len(testCities) {
		t.Errorf("condition counts sum to %d, want %d", got, len(testCities))
	}
}

func TestSummaryIsPlainText(t *testing.T) {
	app := newTestApp(t)
	collect(t, app)

	resp, body := do(t, app, http.MethodGet, "/api/v1/report/summary")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if ct := resp.Header.Get(fiber.HeaderContentType); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("unexpected content type %q", ct)
	}
	if !strings.Contains(string(body), "Murmansk") {
		t.Errorf("summary does not mention the coldest city:\n%s", body)
	}
}

func TestExportCSV(t *testing.T) {
	app := newTestApp(t)
	collect(t, app)

	resp, body := do(t, app, http.MethodGet, "/api/v1/report/export.csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if !bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}) {
		t.Errorf("csv is missing the UTF-8 BOM")
	}
	if !strings.Contains(resp.Header.Get(fiber.HeaderContentDisposition), report.TableFile) {
		t.Errorf("unexpected content disposition %q", resp.Header.Get(fiber.HeaderContentDisposition))
	}
	if !strings.Contains(string(body), "Москва") {
		t.Errorf("csv does not contain Cyrillic city name")
	}
}

func TestChartValidation(t *testing.T) {
	app := newTestApp(t)
	collect(t, app)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/charts/radar", http.StatusBadRequest},
		{"/api/v1/charts/temperature?field=altitude", http.StatusBadRequest},
		{"/api/v1/charts/temperature?overlay=feels_like", http.StatusOK},
		{"/api/v1/charts/humidity-wind", http.StatusOK},
		{"/api/v1/charts/conditions", http.StatusOK},
	}
	for _, tt := range tests {
		resp, _ := do(t, app, http.MethodGet, tt.path)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.want, resp.StatusCode)
			continue
		}
		if tt.want == http.StatusOK && resp.Header.Get(fiber.HeaderContentType) != "image/png" {
			t.Errorf("%s: unexpected content type %q", tt.path, resp.Header.Get(fiber.HeaderContentType))
		}
	}
}

func TestExtremal(t *testing.T) {
	app := newTestApp(t)
	collect(t, app)

	resp, body := do(t, app, http.MethodGet, "/api/v1/extremal?field=humidity&direction=min")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	var payload struct {
		Record weather.WeatherRecord `json:"record"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Record.City != "Москва" {
		t.Errorf("expected least humid Москва, got %q", payload.Record.City)
	}

	resp, _ = do(t, app, http.MethodGet, "/api/v1/extremal?field=altitude")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown field: expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
	resp, _ = do(t, app, http.MethodGet, "/api/v1/extremal?direction=sideways")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown direction: expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}
}

func TestForecastEndpoints(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		path string
		want int
	}{
		{"/api/v1/forecast", http.StatusBadRequest},
		{"/api/v1/forecast?city=Atlantis", http.StatusNotFound},
		{"/api/v1/forecast?city=Sochi", http.StatusOK},
		{"/api/v1/forecast/chart?city=Sochi", http.StatusOK},
	}
	for _, tt := range tests {
		resp, _ := do(t, app, http.MethodGet, tt.path)
		if resp.StatusCode != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.path, tt.want, resp.StatusCode)
		}
	}
}

func TestHistoryValidation(t *testing.T) {
	app := newTestApp(t)
	collect(t, app)

	// Missing parameters should return 400.
	resp, _ := do(t, app, http.MethodGet, "/api/v1/history")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// to before from should also return 400.
	resp, _ = do(t, app, http.MethodGet, "/api/v1/history?from=2024-06-02T00:00:00Z&to=2024-06-01T00:00:00Z")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, resp.StatusCode)
	}

	// A range that ends before any collection has nothing to return.
	resp, _ = do(t, app, http.MethodGet, "/api/v1/history?from=0&to=1")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}

	from := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	to := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	resp, body := do(t, app, http.MethodGet, "/api/v1/history?from="+from+"&to="+to)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, resp.StatusCode, body)
	}
	var payload struct {
		Batches []weather.Batch `json:"batches"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Batches) != 1 {
		t.Errorf("expected 1 batch, got %d", len(payload.Batches))
	}
}
