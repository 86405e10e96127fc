package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-analytics/internal/chart"
	"github.com/i474232898/weather-analytics/internal/export"
	"github.com/i474232898/weather-analytics/internal/report"
	"github.com/i474232898/weather-analytics/internal/store"
	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/i474232898/weather-analytics/internal/weather/providers"
)

var validate = validator.New()

// collectTimeout bounds on-demand collections and forecasts triggered over HTTP.
const collectTimeout = 60 * time.Second

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, cities []string) {
	v1 := app.Group("/api/v1")

	v1.Get("/report", func(c *fiber.Ctx) error {
		batch, rep, err := latestReport(service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"batch":   batchMeta(batch),
			"report":  rep,
			"records": batch.Records,
		})
	})

	v1.Get("/report/summary", func(c *fiber.Ctx) error {
		_, rep, err := latestReport(service)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(rep.Text())
	})

	v1.Get("/report/export.csv", func(c *fiber.Ctx) error {
		batch, err := latestBatch(service)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := export.WriteTable(&buf, batch.Records); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to export weather data")
		}
		c.Attachment(report.TableFile)
		c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
		return c.Send(buf.Bytes())
	})

	v1.Get("/charts/:kind", func(c *fiber.Ctx) error {
		q := chartQuery{
			Kind:    c.Params("kind"),
			Field:   c.Query("field", string(weather.FieldTemperature)),
			Overlay: c.Query("overlay"),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batch, err := latestBatch(service)
		if err != nil {
			return err
		}

		img, err := q.render(batch.Records)
		if err != nil {
			return mapError(err, "failed to render chart")
		}
		c.Type("png")
		return c.Send(img)
	})

	v1.Get("/extremal", func(c *fiber.Ctx) error {
		field, err := weather.ParseField(c.Query("field", string(weather.FieldTemperature)))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		dir, err := weather.ParseDirection(c.Query("direction", "max"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batch, err := latestBatch(service)
		if err != nil {
			return err
		}
		rec, err := weather.Extremal(batch.Records, field, dir)
		if err != nil {
			return mapError(err, "failed to compute extremal city")
		}
		return c.JSON(fiber.Map{
			"field":     field,
			"direction": dir.String(),
			"record":    rec,
		})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		fc, err := forecast(c, service)
		if err != nil {
			return err
		}
		stats, err := weather.ForecastStats(fc.Points)
		if err != nil {
			return mapError(err, "failed to summarize forecast")
		}
		return c.JSON(fiber.Map{
			"forecast": fc,
			"stats":    stats,
		})
	})

	v1.Get("/forecast/chart", func(c *fiber.Ctx) error {
		fc, err := forecast(c, service)
		if err != nil {
			return err
		}
		img, err := chart.ForecastLine(fc)
		if err != nil {
			return mapError(err, "failed to render forecast chart")
		}
		c.Type("png")
		return c.Send(img)
	})

	v1.Post("/collect", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
		defer cancel()

		batch, err := service.Collect(ctx, cities)
		if err != nil {
			return mapError(err, "failed to collect weather data")
		}
		return c.Status(fiber.StatusCreated).JSON(batchMeta(batch))
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		req, err := parseHistoryQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		batches, err := service.Range(req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		return c.JSON(fiber.Map{
			"from":    req.From,
			"to":      req.To,
			"batches": batches,
		})
	})
}

func latestBatch(service *weather.Service) (weather.Batch, error) {
	batch, err := service.Latest()
	if err != nil {
		return weather.Batch{}, mapError(err, "failed to fetch weather data")
	}
	return batch, nil
}

func latestReport(service *weather.Service) (weather.Batch, report.Report, error) {
	batch, err := latestBatch(service)
	if err != nil {
		return weather.Batch{}, report.Report{}, err
	}
	rep, err := report.Build(batch.Records)
	if err != nil {
		return weather.Batch{}, report.Report{}, mapError(err, "failed to build report")
	}
	return batch, rep, nil
}

func forecast(c *fiber.Ctx, service *weather.Service) (weather.Forecast, error) {
	q := cityQuery{City: c.Query("city")}
	if err := validate.Struct(q); err != nil {
		return weather.Forecast{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	fc, err := service.Forecast(ctx, q.City)
	if err != nil {
		return weather.Forecast{}, mapError(err, "failed to fetch forecast")
	}
	return fc, nil
}

// mapError translates domain errors into HTTP errors.
func mapError(err error, fallback string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no weather data collected yet")
	case errors.Is(err, providers.ErrCityNotFound):
		return fiber.NewError(fiber.StatusNotFound, "city not found")
	case errors.Is(err, weather.ErrEmptyInput):
		return fiber.NewError(fiber.StatusUnprocessableEntity, "no weather records to aggregate")
	case errors.Is(err, weather.ErrUnknownField):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrForecastUnsupported):
		return fiber.NewError(fiber.StatusNotImplemented, err.Error())
	case errors.Is(err, weather.ErrNoRecords):
		return fiber.NewError(fiber.StatusBadGateway, "no city could be fetched from the weather provider")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

func batchMeta(b weather.Batch) fiber.Map {
	return fiber.Map{
		"id":          b.ID,
		"collectedAt": b.CollectedAt,
		"provider":    b.Provider,
		"records":     len(b.Records),
		"failures":    b.Failures,
	}
}

// chartQuery holds the parameters of the chart endpoint.
type chartQuery struct {
	Kind    string `validate:"required,oneof=temperature humidity-wind conditions"`
	Field   string `validate:"omitempty,oneof=temperature feels_like temp_min temp_max pressure humidity wind_speed clouds"`
	Overlay string `validate:"omitempty,oneof=temperature feels_like temp_min temp_max pressure humidity wind_speed clouds"`
}

func (q chartQuery) render(records []weather.WeatherRecord) ([]byte, error) {
	switch q.Kind {
	case "humidity-wind":
		return chart.DualBar(records, weather.FieldHumidity, weather.FieldWindSpeed)
	case "conditions":
		return chart.Pie(weather.ConditionFrequency(records))
	default:
		var overlay *weather.Field
		if q.Overlay != "" {
			f := weather.Field(q.Overlay)
			overlay = &f
		}
		return chart.BarComparison(records, weather.Field(q.Field), overlay)
	}
}

// cityQuery identifies a city for forecast endpoints.
type cityQuery struct {
	City string `validate:"required"`
}

// historyQuery is the validated range of the history endpoint.
type historyQuery struct {
	From time.Time `validate:"required"`
	To   time.Time `validate:"required,gtefield=From"`
}

func parseHistoryQuery(c *fiber.Ctx) (historyQuery, error) {
	var q historyQuery
	for _, p := range []struct {
		name string
		dst  *time.Time
	}{
		{"from", &q.From},
		{"to", &q.To},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			return q, fmt.Errorf("%s query parameter is required", p.name)
		}
		ts, err := parseTime(raw)
		if err != nil {
			return q, fmt.Errorf("%s: %w", p.name, err)
		}
		*p.dst = ts
	}
	return q, validate.Struct(q)
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02"}

// parseTime accepts RFC3339 (optionally with fractional seconds), a bare date, or unix seconds.
func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q; use RFC3339, YYYY-MM-DD or unix seconds", s)
}
