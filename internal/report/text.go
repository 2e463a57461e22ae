package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/lzrdig/FineOffsetNET/internal/stats"
	fo "github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
}

func withUnit(v fo.Value, unit string) string {
	if !v.Valid {
		return fo.Placeholder
	}
	return v.Text + " " + unit
}

// WriteStatus prints the ring and clock state of the settings block.
func WriteStatus(w io.Writer, s fo.Settings, loc *time.Location) error {
	t := newTable(w)
	fmt.Fprintf(t, "Magic number:\t0x%02X%02X\n", s.Magic[0], s.Magic[1])
	fmt.Fprintf(t, "Read period:\t%d minutes\n", s.ReadPeriod)
	fmt.Fprintf(t, "Timezone:\tCET%+d\n", s.Timezone)
	fmt.Fprintf(t, "Data count:\t%d out of %d (%.1f%%)\n", s.DataCount, fo.HistoryMax, float64(s.DataCount)/fo.HistoryMax*100)
	fmt.Fprintf(t, "Current memory position:\t%d (0x%04X)\n", s.CurrentPos, s.CurrentPos)
	fmt.Fprintf(t, "Current relative pressure:\t%s\n", withUnit(s.RelPressure, "hPa"))
	fmt.Fprintf(t, "Current absolute pressure:\t%s\n", withUnit(s.AbsPressure, "hPa"))
	fmt.Fprintf(t, "Unknown bytes:\t0x%X\n", s.Unknown[:])
	fmt.Fprintf(t, "Station date/time:\t%s\n", timeText(s.StationTime, loc))
	return t.Flush()
}

func pick(on bool, yes, no string) string {
	if on {
		return yes
	}
	return no
}

// firstSet names the first flag of flags that is set in d, or "none".
func firstSet(d fo.DisplayFlags, flags []fo.DisplayFlags, names []string) string {
	for i, f := range flags {
		if d.Has(f) {
			return names[i]
		}
	}
	return "none"
}

// WriteSettings prints units, display options, alarms and recorded extremes.
func WriteSettings(w io.Writer, s fo.Settings, loc *time.Location) error {
	t := newTable(w)
	d := s.Display

	fmt.Fprintln(t, "Unit settings:")
	fmt.Fprintf(t, "  Indoor temperature unit:\t%s\n", s.Units.InTempUnit())
	fmt.Fprintf(t, "  Outdoor temperature unit:\t%s\n", s.Units.OutTempUnit())
	fmt.Fprintf(t, "  Rain unit:\t%s\n", s.Units.RainUnit())
	fmt.Fprintf(t, "  Pressure unit:\t%s\n", s.Units.PressureUnit())
	fmt.Fprintf(t, "  Wind speed unit:\t%s\n", s.WindUnits)

	fmt.Fprintln(t, "Display settings:")
	fmt.Fprintf(t, "  Pressure:\t%s\n", pick(d.Has(fo.DisplayRelativePressure), "Relative", "Absolute"))
	fmt.Fprintf(t, "  Wind speed:\t%s\n", pick(d.Has(fo.DisplayWindGust), "Gust", "Average"))
	fmt.Fprintf(t, "  Time:\t%s\n", pick(d.Has(fo.Display12Hour), "12 hour", "24 hour"))
	fmt.Fprintf(t, "  Date:\t%s\n", pick(d.Has(fo.DisplayMMDDYY), "Month-day-year", "Day-month-year"))
	fmt.Fprintf(t, "  Time scale:\t%s\n", pick(d.Has(fo.DisplayTimeScale12Hour), "12 hour", "24 hour"))
	fmt.Fprintf(t, "  Date line:\t%s\n", firstSet(d,
		[]fo.DisplayFlags{fo.DisplayDateComplete, fo.DisplayDateAndWeekday, fo.DisplayAlarmTime},
		[]string{"Complete date", "Date and weekday", "Alarm time"}))
	fmt.Fprintf(t, "  Outdoor temperature:\t%s\n", firstSet(d,
		[]fo.DisplayFlags{fo.DisplayOutTemp, fo.DisplayOutWindChill, fo.DisplayOutDewPoint},
		[]string{"Temperature", "Wind chill", "Dew point"}))
	fmt.Fprintf(t, "  Rain:\t%s\n", firstSet(d,
		[]fo.DisplayFlags{fo.DisplayRainHour, fo.DisplayRainDay, fo.DisplayRainWeek, fo.DisplayRainMonth, fo.DisplayRainTotal},
		[]string{"Hour", "Day", "Week", "Month", "Total"}))

	fmt.Fprintf(t, "Alarms enabled:\t%s\n", s.AlarmEnable)
	a := s.Alarms
	for _, row := range []struct {
		name string
		th   fo.Threshold
		unit string
	}{
		{"Indoor humidity", a.InHumidity, "%"},
		{"Indoor temperature", a.InTemp, "C"},
		{"Outdoor humidity", a.OutHumidity, "%"},
		{"Outdoor temperature", a.OutTemp, "C"},
		{"Wind chill", a.WindChill, "C"},
		{"Dew point", a.DewPoint, "C"},
		{"Absolute pressure", a.AbsPressure, "hPa"},
		{"Relative pressure", a.RelPressure, "hPa"},
	} {
		fmt.Fprintf(t, "  %s alarm:\t%s .. %s\n", row.name, withUnit(row.th.Low, row.unit), withUnit(row.th.High, row.unit))
	}
	fmt.Fprintf(t, "  Wind average alarm:\t%s\n", withUnit(a.WindAvg, "m/s"))
	fmt.Fprintf(t, "  Wind gust alarm:\t%s\n", withUnit(a.WindGust, "m/s"))
	fmt.Fprintf(t, "  Rain 1h alarm:\t%s\n", withUnit(a.RainHour, "mm"))
	fmt.Fprintf(t, "  Rain 24h alarm:\t%s\n", withUnit(a.RainDay, "mm"))

	fmt.Fprintln(t, "Recorded extremes:")
	for _, row := range []struct {
		name     string
		max, min *fo.Extreme
		unit     string
	}{
		{"Indoor humidity", &s.Max.InHumidity, &s.Min.InHumidity, "%"},
		{"Outdoor humidity", &s.Max.OutHumidity, &s.Min.OutHumidity, "%"},
		{"Indoor temperature", &s.Max.InTemp, &s.Min.InTemp, "C"},
		{"Outdoor temperature", &s.Max.OutTemp, &s.Min.OutTemp, "C"},
		{"Wind chill", &s.Max.WindChill, &s.Min.WindChill, "C"},
		{"Dew point", &s.Max.DewPoint, &s.Min.DewPoint, "C"},
		{"Absolute pressure", &s.Max.AbsPressure, &s.Min.AbsPressure, "hPa"},
		{"Relative pressure", &s.Max.RelPressure, &s.Min.RelPressure, "hPa"},
		{"Wind average", &s.Max.WindAvg, nil, "m/s"},
		{"Wind gust", &s.Max.WindGust, nil, "m/s"},
		{"Rain hour", &s.Max.RainHour, nil, "mm"},
		{"Rain day", &s.Max.RainDay, nil, "mm"},
		{"Rain week", &s.Max.RainWeek, nil, "mm"},
		{"Rain month", &s.Max.RainMonth, nil, "mm"},
		{"Rain total", &s.Max.RainTotal, nil, "mm"},
	} {
		line := fmt.Sprintf("  %s:\tmax %s (%s)", row.name, withUnit(row.max.Value, row.unit), timeText(row.max.Date, loc))
		if row.min != nil {
			line += fmt.Sprintf("\tmin %s (%s)", withUnit(row.min.Value, row.unit), timeText(row.min.Date, loc))
		}
		fmt.Fprintln(t, line)
	}
	return t.Flush()
}

// WriteSummary prints the newest record of history followed by trailing rain
// totals and per-metric statistics.
func WriteSummary(w io.Writer, s fo.Settings, history []fo.HistoryEntry) error {
	if len(history) == 0 {
		_, err := fmt.Fprintln(w, "No history records stored.")
		return err
	}
	offset, _ := s.PressureOffset()
	v := NewEntryView(history[0], offset)

	t := newTable(w)
	fmt.Fprintf(t, "Record:\t%d at %s (0x%04X)\n", v.Index, v.Timestamp.Format(time.DateTime), history[0].Address)
	fmt.Fprintln(t, "Indoor:")
	fmt.Fprintf(t, "  Temperature:\t%s\n", measurementText(v.InTemp))
	fmt.Fprintf(t, "  Humidity:\t%s\n", measurementText(v.InHumidity))
	fmt.Fprintf(t, "Outdoor:\t%s\n", pick(v.ContactLost, "NO CONTACT WITH SENSOR", ""))
	fmt.Fprintf(t, "  Temperature:\t%s\n", measurementText(v.OutTemp))
	fmt.Fprintf(t, "  Wind chill:\t%s\n", measurementText(v.WindChill))
	fmt.Fprintf(t, "  Dew point:\t%s\n", measurementText(v.DewPoint))
	fmt.Fprintf(t, "  Humidity:\t%s\n", measurementText(v.OutHumidity))
	fmt.Fprintf(t, "  Absolute pressure:\t%s\n", measurementText(v.AbsPressure))
	fmt.Fprintf(t, "  Relative pressure:\t%s\n", measurementText(v.RelPressure))
	fmt.Fprintf(t, "  Average windspeed:\t%s\n", measurementText(v.WindAvg))
	fmt.Fprintf(t, "  Gust wind speed:\t%s\n", measurementText(v.WindGust))
	fmt.Fprintf(t, "  Wind direction:\t%s %s\n", measurementText(v.WindDir), v.WindCompass)
	fmt.Fprintf(t, "  Total rain:\t%s\n", measurementText(v.Rain))

	rain := NewRainView(history)
	fmt.Fprintf(t, "Rain (history covers %s):\n", rain.Covered)
	fmt.Fprintf(t, "  Last hour:\t%.1f mm\n", rain.Hour)
	fmt.Fprintf(t, "  Last 24 hours:\t%.1f mm\n", rain.Day)
	fmt.Fprintf(t, "  Last 7 days:\t%.1f mm\n", rain.Week)
	fmt.Fprintf(t, "  Last 30 days:\t%.1f mm\n", rain.Month)

	if sums := stats.FromHistory(history, offset); len(sums) > 0 {
		fmt.Fprintf(t, "Statistics over %d records:\tmin\tmax\tmean\tstddev\ttrend/h\n", len(history))
		for _, sm := range sums {
			fmt.Fprintf(t, "  %s (%s):\t%.1f\t%.1f\t%.1f\t%.2f\t%+.2f\n", sm.Name, sm.Unit, sm.Min, sm.Max, sm.Mean, sm.StdDev, sm.Trend)
		}
	}
	return t.Flush()
}

func measurementText(m Measurement) string {
	if m.Value == nil || m.Unit == "" {
		return m.Text
	}
	return m.Text + " " + m.Unit
}

// HistoryHeader names the columns written by WriteHistoryCSV.
var HistoryHeader = []string{
	"index", "read_time", "record_time", "delay", "in_humidity", "in_temp",
	"out_humidity", "out_temp", "dew_point", "wind_chill", "abs_pressure",
	"rel_pressure", "wind_avg", "wind_avg_bft", "wind_gust", "wind_gust_bft",
	"wind_dir", "wind_dir_text", "rain_ticks", "rain_total", "rain_since_last",
	"rain_1h", "rain_24h", "rain_7d", "rain_30d",
	"status0", "status1", "status2", "status3", "status4", "status5", "status6", "status7",
	"address", "raw",
}

// WriteHistoryCSV writes one line per entry (newest first). Rain columns are
// computed from the entries themselves, so windows reaching past the oldest
// entry are truncated.
func WriteHistoryCSV(w io.Writer, readAt time.Time, history []fo.HistoryEntry, pressureOffset float64, header bool) error {
	cw := csv.NewWriter(w)
	if header {
		if err := cw.Write(HistoryHeader); err != nil {
			return err
		}
	}

	for i, e := range history {
		v := NewEntryView(e, pressureOffset)
		rec := e.Record
		tail := history[i:]

		sinceLast := fo.Placeholder
		if i+1 < len(history) && rec.Rain.Valid && history[i+1].Record.Rain.Valid {
			mm := fo.RainOver(tail[:2], e.Timestamp.Sub(history[i+1].Timestamp))
			sinceLast = strconv.FormatFloat(mm, 'f', 1, 64)
		}
		bft := func(val fo.Value) string {
			if n, ok := val.Float(); ok {
				return strconv.Itoa(fo.Beaufort(n))
			}
			return fo.Placeholder
		}
		mm := func(window time.Duration) string {
			return strconv.FormatFloat(fo.RainOver(tail, window), 'f', 1, 64)
		}

		row := []string{
			strconv.Itoa(e.Index),
			readAt.Format(time.DateTime),
			e.Timestamp.Format(time.DateTime),
			strconv.Itoa(rec.Delay),
			v.InHumidity.Text, v.InTemp.Text,
			v.OutHumidity.Text, v.OutTemp.Text,
			v.DewPoint.Text, v.WindChill.Text,
			v.AbsPressure.Text, v.RelPressure.Text,
			v.WindAvg.Text, bft(rec.WindAvg),
			v.WindGust.Text, bft(rec.WindGust),
			v.WindDir.Text, v.WindCompass,
			strconv.Itoa(rec.RainTicks), v.Rain.Text,
			sinceLast,
			mm(fo.RainHourWindow), mm(fo.RainDayWindow), mm(fo.RainWeekWindow), mm(fo.RainMonthWindow),
		}
		for bit := range 8 {
			row = append(row, strconv.Itoa(int(rec.Status>>bit)&1))
		}
		row = append(row, fmt.Sprintf("0x%04X", e.Address), v.Raw)
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
