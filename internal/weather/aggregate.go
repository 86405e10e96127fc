package weather

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Summary holds descriptive statistics over a set of records.
type Summary struct {
	MeanTemp      float64 `json:"meanTemp"`
	MaxTemp       float64 `json:"maxTemp"`
	MinTemp       float64 `json:"minTemp"`
	MeanHumidity  float64 `json:"meanHumidity"`
	MeanWindSpeed float64 `json:"meanWindSpeed"`
	Count         int     `json:"count"`
}

// SummaryStatistics computes mean/max/min temperature, mean humidity and mean
// wind speed, each rounded to 2 decimal places.
func SummaryStatistics(records []WeatherRecord) (Summary, error) {
	if len(records) == 0 {
		return Summary{}, ErrEmptyInput
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
	)
	maxTemp := records[0].Temperature
	minTemp := records[0].Temperature

	for _, r := range records {
		sumTemp += r.Temperature
		sumHumidity += float64(r.Humidity)
		sumWind += r.WindSpeed

		if r.Temperature > maxTemp {
			maxTemp = r.Temperature
		}
		if r.Temperature < minTemp {
			minTemp = r.Temperature
		}
	}

	n := float64(len(records))

	return Summary{
		MeanTemp:      Round(sumTemp/n, 2),
		MaxTemp:       Round(maxTemp, 2),
		MinTemp:       Round(minTemp, 2),
		MeanHumidity:  Round(sumHumidity/n, 2),
		MeanWindSpeed: Round(sumWind/n, 2),
		Count:         len(records),
	}, nil
}

// Extremal returns the record holding the maximum or minimum value of field.
// Ties resolve to the first record in input order.
func Extremal(records []WeatherRecord, field Field, dir Direction) (WeatherRecord, error) {
	if len(records) == 0 {
		return WeatherRecord{}, ErrEmptyInput
	}

	best, err := field.Value(records[0])
	if err != nil {
		return WeatherRecord{}, err
	}
	bestIdx := 0

	for i := 1; i < len(records); i++ {
		v, _ := field.Value(records[i])
		if (dir == Max && v > best) || (dir == Min && v < best) {
			best = v
			bestIdx = i
		}
	}

	return records[bestIdx], nil
}

// ConditionCount is the number of records sharing one description.
type ConditionCount struct {
	Description string `json:"description"`
	Count       int    `json:"count"`
}

// Frequencies is an ordered condition distribution: count descending, ties in
// order of first appearance.
type Frequencies []ConditionCount

// Map returns the distribution as a plain description -> count mapping.
func (f Frequencies) Map() map[string]int {
	m := make(map[string]int, len(f))
	for _, c := range f {
		m[c.Description] = c.Count
	}
	return m
}

// Total is the sum of all counts.
func (f Frequencies) Total() int {
	total := 0
	for _, c := range f {
		total += c.Count
	}
	return total
}

// ConditionFrequency counts the records per distinct description. Counts sum to
// len(records); an empty input yields an empty distribution.
func ConditionFrequency(records []WeatherRecord) Frequencies {
	index := make(map[string]int)
	freq := make(Frequencies, 0)

	for _, r := range records {
		i, ok := index[r.Description]
		if !ok {
			i = len(freq)
			index[r.Description] = i
			freq = append(freq, ConditionCount{Description: r.Description})
		}
		freq[i].Count++
	}

	// Stable keeps first-appearance order among equal counts.
	sort.SliceStable(freq, func(a, b int) bool {
		return freq[a].Count > freq[b].Count
	})

	return freq
}

// ConditionFrequencyStrict is ConditionFrequency but signals empty input.
func ConditionFrequencyStrict(records []WeatherRecord) (Frequencies, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}
	return ConditionFrequency(records), nil
}

// ForecastSummary describes the temperature range of a forecast.
type ForecastSummary struct {
	Min    float64   `json:"min"`
	Max    float64   `json:"max"`
	Mean   float64   `json:"mean"` // rounded to 1 decimal place
	MaxAt  time.Time `json:"maxAt"`
	Count  int       `json:"count"`
	Start  time.Time `json:"start"`
	Finish time.Time `json:"finish"`
}

// ForecastStats reduces a forecast series to min/max/mean temperature.
func ForecastStats(points []ForecastPoint) (ForecastSummary, error) {
	if len(points) == 0 {
		return ForecastSummary{}, fmt.Errorf("forecast stats: %w", ErrEmptyInput)
	}

	s := ForecastSummary{
		Min:    points[0].Temperature,
		Max:    points[0].Temperature,
		MaxAt:  points[0].Time,
		Count:  len(points),
		Start:  points[0].Time,
		Finish: points[0].Time,
	}

	var sum float64
	for _, p := range points {
		sum += p.Temperature
		if p.Temperature > s.Max {
			s.Max = p.Temperature
			s.MaxAt = p.Time
		}
		if p.Temperature < s.Min {
			s.Min = p.Temperature
		}
		if p.Time.Before(s.Start) {
			s.Start = p.Time
		}
		if p.Time.After(s.Finish) {
			s.Finish = p.Time
		}
	}
	s.Mean = Round(sum/float64(len(points)), 1)

	return s, nil
}

// Round rounds v to the given number of decimal places, half away from zero.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
