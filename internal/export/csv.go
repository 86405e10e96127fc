package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-analytics/internal/weather"
)

// utf8BOM lets spreadsheet tools detect UTF-8 (Cyrillic city names etc.).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Header is the column layout of exported tables.
var Header = []string{
	"city",
	"country",
	"temperature",
	"feels_like",
	"temp_min",
	"temp_max",
	"pressure",
	"humidity",
	"description",
	"wind_speed",
	"clouds",
	"timestamp",
}

// ErrBadHeader is returned when a table does not start with Header.
var ErrBadHeader = errors.New("unexpected table header")

// ErrCarriageReturn is returned for text fields containing '\r'. The CSV
// reader folds "\r\n" inside quoted fields into "\n", so such values would
// not survive a round trip.
var ErrCarriageReturn = errors.New("carriage return in text field")

// ExportTable writes records to path as UTF-8 CSV with a header row.
func ExportTable(records []weather.WeatherRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export table: %w", err)
	}

	if err := WriteTable(f, records); err != nil {
		f.Close()
		return fmt.Errorf("export table %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("export table %s: %w", path, err)
	}
	return nil
}

// WriteTable writes the BOM, the header and one row per record to w.
// Nothing is written if any record fails validation.
func WriteTable(w io.Writer, records []weather.WeatherRecord) error {
	for i, r := range records {
		if err := checkText(r); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func checkText(r weather.WeatherRecord) error {
	for _, f := range []struct{ name, value string }{
		{"city", r.City},
		{"country", r.Country},
		{"description", r.Description},
	} {
		if strings.ContainsRune(f.value, '\r') {
			return fmt.Errorf("%s %q: %w", f.name, f.value, ErrCarriageReturn)
		}
	}
	return nil
}

func row(r weather.WeatherRecord) []string {
	return []string{
		r.City,
		r.Country,
		formatFloat(r.Temperature),
		formatFloat(r.FeelsLike),
		formatFloat(r.TempMin),
		formatFloat(r.TempMax),
		formatFloat(r.Pressure),
		strconv.Itoa(r.Humidity),
		r.Description,
		formatFloat(r.WindSpeed),
		strconv.Itoa(r.Clouds),
		r.Timestamp.Format(time.RFC3339Nano),
	}
}

// formatFloat uses the shortest representation that parses back to the same value.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ImportTable reads a table written by ExportTable.
func ImportTable(path string) ([]weather.WeatherRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("import table: %w", err)
	}
	defer f.Close()

	records, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("import table %s: %w", path, err)
	}
	return records, nil
}

// ReadTable parses a table written by WriteTable. A leading BOM is optional.
func ReadTable(r io.Reader) ([]weather.WeatherRecord, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty table", ErrBadHeader)
		}
		return nil, err
	}
	if strings.Join(header, ",") != strings.Join(Header, ",") {
		return nil, fmt.Errorf("%w: %v", ErrBadHeader, header)
	}

	var records []weather.WeatherRecord
	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		rec, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseRow(f []string) (weather.WeatherRecord, error) {
	p := rowParser{fields: f}

	rec := weather.WeatherRecord{
		City:        f[0],
		Country:     f[1],
		Temperature: p.parseFloat(2),
		FeelsLike:   p.parseFloat(3),
		TempMin:     p.parseFloat(4),
		TempMax:     p.parseFloat(5),
		Pressure:    p.parseFloat(6),
		Humidity:    p.parseInt(7),
		Description: f[8],
		WindSpeed:   p.parseFloat(9),
		Clouds:      p.parseInt(10),
		Timestamp:   p.parseTime(11),
	}
	return rec, p.err
}

// rowParser keeps the first conversion error.
type rowParser struct {
	fields []string
	err    error
}

func (p *rowParser) fail(i int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %s: %w", Header[i], err)
	}
}

func (p *rowParser) parseFloat(i int) float64 {
	v, err := strconv.ParseFloat(p.fields[i], 64)
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func (p *rowParser) parseInt(i int) int {
	v, err := strconv.Atoi(p.fields[i])
	if err != nil {
		p.fail(i, err)
	}
	return v
}

func (p *rowParser) parseTime(i int) time.Time {
	v, err := time.Parse(time.RFC3339Nano, p.fields[i])
	if err != nil {
		p.fail(i, err)
	}
	return v
}
