package fineoffset

import "fmt"

// windDirInvalid marks a wind direction byte without a reading.
const windDirInvalid = 0x80

// windDirPoints is the number of compass points a direction index selects.
const windDirPoints = 16

// WeatherRecord is one decoded history record.
type WeatherRecord struct {
	Delay       int // minutes since the previous record
	InHumidity  Value
	InTemp      Value
	OutHumidity Value
	OutTemp     Value
	DewPoint    Value
	AbsPressure Value
	WindAvg     Value
	WindGust    Value
	WindDir     Value
	Rain        Value // cumulative, mm
	RainTicks   int
	Status      Status
	Raw         [ChunkSize]byte
}

// WindDirIndex returns the compass index 0..15. Bytes outside that range
// decode as an invalid direction.
func (r WeatherRecord) WindDirIndex() (int, bool) {
	if !r.WindDir.Valid {
		return 0, false
	}
	return int(r.Raw[RecordWindDir.Offset]), true
}

// DecodeRecord decodes one history record. Chunks shorter than ChunkSize fail
// with ErrMalformedChunk; only the first ChunkSize bytes are used.
func DecodeRecord(chunk []byte) (WeatherRecord, error) {
	if len(chunk) < ChunkSize {
		return WeatherRecord{}, fmt.Errorf("%w: %d of %d bytes", ErrMalformedChunk, len(chunk), ChunkSize)
	}

	var rec WeatherRecord
	copy(rec.Raw[:], chunk[:ChunkSize])
	raw := rec.Raw[:]

	fields := []struct {
		f   Field
		dst *Value
	}{
		{RecordInHumidity, &rec.InHumidity},
		{RecordInTemp, &rec.InTemp},
		{RecordOutHumidity, &rec.OutHumidity},
		{RecordOutTemp, &rec.OutTemp},
		{RecordDewPoint, &rec.DewPoint},
		{RecordAbsPressure, &rec.AbsPressure},
		{RecordWindAvg, &rec.WindAvg},
		{RecordWindGust, &rec.WindGust},
		{RecordWindDir, &rec.WindDir},
		{RecordRain, &rec.Rain},
	}
	for _, fd := range fields {
		v, err := fd.f.Decode(raw)
		if err != nil {
			return WeatherRecord{}, fmt.Errorf("%w: %w", ErrMalformedChunk, err)
		}
		*fd.dst = v
	}

	rec.Delay = int(raw[RecordDelay.Offset])
	rec.Status = Status(raw[RecordStatus.Offset])
	if dir := raw[RecordWindDir.Offset]; dir&windDirInvalid != 0 || dir >= windDirPoints {
		rec.WindDir = invalid(RecordWindDir.Type)
	}
	if rec.Rain.Valid {
		rec.RainTicks = int(le16(raw[RecordRain.Offset:]))
	}
	return rec, nil
}

// RelPressure returns the record's absolute pressure corrected by offset hPa.
func (r WeatherRecord) RelPressure(offset float64) Value {
	abs, ok := r.AbsPressure.Float()
	if !ok {
		return r.AbsPressure
	}
	v := r.AbsPressure
	v.Number = abs + offset
	v.Text = formatNumber(v.Number, RecordAbsPressure.Scale)
	return v
}

// WindChill derives wind chill from outdoor temperature and average wind.
func (r WeatherRecord) WindChill() Value {
	t, okT := r.OutTemp.Float()
	w, okW := r.WindAvg.Float()
	if !okT || !okW {
		return invalid(SignedShort)
	}
	n := WindChillC(t, w)
	return Value{Type: SignedShort, Number: n, Text: formatNumber(n, 0.1), Valid: true}
}
