package climate

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"weatherchart/internal/csvio"
	"weatherchart/internal/join"
)

// JoinOptions configures Join.
type JoinOptions struct {
	Input     string
	Temps     string
	Output    string
	Overrides map[string]string
}

// Table holds monthly normals as written by Process, keyed by country then
// month. Values keep their file text so joined cells equal the source.
type Table struct {
	countries []string
	temps     map[string]map[int]string
}

// LoadTable reads a monthly temperature file.
func LoadTable(path string) (*Table, error) {
	tbl, err := csvio.Load(path)
	if err != nil {
		return nil, err
	}
	idx, err := tbl.Require("country", "month", "avg_temp")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	t := &Table{temps: make(map[string]map[int]string)}
	for i, rec := range tbl.Rows {
		m, err := strconv.Atoi(strings.TrimSpace(rec[idx[1]]))
		if err != nil || m < 1 || m > 12 {
			return nil, fmt.Errorf("%s row %d: bad month %q", path, i+2, rec[idx[1]])
		}
		c := rec[idx[0]]
		byMonth, ok := t.temps[c]
		if !ok {
			byMonth = make(map[int]string, 12)
			t.temps[c] = byMonth
			t.countries = append(t.countries, c)
		}
		byMonth[m] = rec[idx[2]]
	}
	return t, nil
}

// Countries lists the countries in file order.
func (t *Table) Countries() []string { return t.countries }

// Temp returns the normal for country and month.
func (t *Table) Temp(country string, month int) (string, bool) {
	v, ok := t.temps[country][month]
	return v, ok && !csvio.IsBlank(v)
}

// MonthOf extracts the calendar month from a YYYY-MM-DD date.
func MonthOf(date string) (int, bool) {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(date))
	if err != nil {
		return 0, false
	}
	return int(d.Month()), true
}

// Join appends month and avg_temp to every row. Rows whose region does not
// resolve, or whose country lacks that month, get a blank avg_temp.
func Join(ctx context.Context, opts JoinOptions) (join.Stats, error) {
	log := zerolog.Ctx(ctx)

	temps, err := LoadTable(opts.Temps)
	if err != nil {
		return join.Stats{}, err
	}
	resolver := join.NewResolver(temps.Countries(), opts.Overrides)
	log.Info().Int("countries", len(temps.Countries())).Msg("climate normals loaded")

	var stats join.Stats
	var badDates int
	_, err = join.Append(ctx, opts.Input, opts.Output, []string{"month", "avg_temp"}, func(r *csvio.Reader) (join.RowFunc, error) {
		idx, err := r.Require("date", "region")
		if err != nil {
			return nil, err
		}
		return func(rec []string) []string {
			region := rec[idx[1]]
			month, ok := MonthOf(rec[idx[0]])
			if !ok {
				badDates++
				stats.Observe(region, false)
				return []string{"", ""}
			}
			m := strconv.Itoa(month)
			country, ok := resolver.Resolve(region)
			if !ok {
				stats.Observe(region, false)
				return []string{m, ""}
			}
			t, ok := temps.Temp(country, month)
			stats.Observe(region, ok)
			return []string{m, t}
		}, nil
	})
	if err != nil {
		return stats, err
	}
	if badDates > 0 {
		log.Warn().Int("rows", badDates).Msg("unparseable chart dates")
	}
	stats.Log(*log, "climate", 10)
	return stats, nil
}
