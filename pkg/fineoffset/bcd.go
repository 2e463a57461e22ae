package fineoffset

import "time"

func bcdDigit(b byte) (int, bool) {
	hi, lo := b>>4, b&0x0F
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return int(hi)*10 + int(lo), true
}

func bcdEncode(n int) byte {
	n = (n%100 + 100) % 100
	return byte(n/10)<<4 | byte(n%10)
}

// decodeBCDDateTime reads yy mm dd hh mm. The result is a wall-clock reading
// in UTC; callers attach the station's zone with InLocation.
func decodeBCDDateTime(raw []byte) (time.Time, bool) {
	var f [5]int
	for i := range f {
		d, ok := bcdDigit(raw[i])
		if !ok {
			return time.Time{}, false
		}
		f[i] = d
	}
	year, month, day, hour, minute := f[0]+2000, f[1], f[2], f[3], f[4]
	if month < 1 || month > 12 || day < 1 || day > 31 || hour > 23 || minute > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
	if t.Day() != day {
		// 31st of a short month
		return time.Time{}, false
	}
	return t, true
}

func decodeBCDTime(raw []byte) (hour, minute int, ok bool) {
	if hour, ok = bcdDigit(raw[0]); !ok || hour > 23 {
		return 0, 0, false
	}
	if minute, ok = bcdDigit(raw[1]); !ok || minute > 59 {
		return 0, 0, false
	}
	return hour, minute, true
}

// EncodeBCDDateTime renders t as the five BCD bytes the station stores.
// Years outside 2000..2099 wrap modulo 100.
func EncodeBCDDateTime(t time.Time) [5]byte {
	return [5]byte{
		bcdEncode(t.Year() - 2000),
		bcdEncode(int(t.Month())),
		bcdEncode(t.Day()),
		bcdEncode(t.Hour()),
		bcdEncode(t.Minute()),
	}
}

// EncodeBCDTime renders hour and minute as two BCD bytes.
func EncodeBCDTime(hour, minute int) [2]byte {
	return [2]byte{bcdEncode(hour), bcdEncode(minute)}
}

// InLocation reinterprets the wall clock of t in loc. Station clocks carry no
// zone, so decoded dates are anchored explicitly by the caller.
func InLocation(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}
