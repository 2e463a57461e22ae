package emulator

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/lzrdig/FineOffsetNET/pkg/fineoffset"
)

// Generator appends synthetic records to an Image the way a console does:
// one record per read period, ring position and count kept in the settings
// block, the clock following the newest record.
type Generator struct {
	img  *Image
	rng  *rand.Rand
	tick time.Time

	currentPos int
	dataCount  int
	rainTicks  int
	pressure   float64
	seq        int

	// SensorDropEvery makes every n-th record a lost-contact record with
	// sentinel outdoor values. Zero disables it.
	SensorDropEvery int
}

const (
	relPressureOffset = -6.0
	defaultReadPeriod = 30
)

// NewGenerator initialises the settings block of img. start is the time of
// the first record that Advance will write.
func NewGenerator(img *Image, start time.Time, readPeriod int, seed uint64) *Generator {
	if readPeriod < 1 || readPeriod > 240 {
		readPeriod = defaultReadPeriod
	}
	g := &Generator{
		img:        img,
		rng:        rand.New(rand.NewPCG(seed, seed^0x5DEECE66D)),
		tick:       start.Truncate(time.Minute),
		currentPos: fineoffset.HistoryStart,
		pressure:   1013,
	}

	img.mu.Lock()
	defer img.mu.Unlock()

	b := make([]byte, fineoffset.SettingsBlockSize)
	b[0], b[1] = 0x55, 0xAA
	b[fineoffset.SettingsReadPeriod.Offset] = byte(readPeriod)
	b[fineoffset.SettingsUnits.Offset] = byte(fineoffset.UnitPressureHPa)
	b[fineoffset.SettingsWindUnits.Offset] = byte(fineoffset.WindUnitMS)
	b[fineoffset.SettingsDisplay1.Offset] = 0x01
	b[fineoffset.SettingsAlarmEnable2.Offset] = byte(fineoffset.AlarmOutTempLow >> 16)

	putSigned(b, fineoffset.AlarmOutTempLo.Offset, -100)
	putSigned(b, fineoffset.AlarmOutTempHi.Offset, 300)
	b[fineoffset.AlarmInHumidityHi.Offset] = 65
	b[fineoffset.AlarmInHumidityLo.Offset] = 35
	b[fineoffset.AlarmOutHumidityHi.Offset] = 95
	b[fineoffset.AlarmOutHumidityLo.Offset] = 20
	putUnsigned(b, fineoffset.AlarmRainDay.Offset, 100)
	at := fineoffset.EncodeBCDTime(7, 0)
	copy(b[fineoffset.AlarmTime.Offset:], at[:])

	g.img.put(0, b)
	g.syncSettings()
	return g
}

// Fill appends n records.
func (g *Generator) Fill(n int) {
	for range n {
		g.Advance()
	}
}

// Advance appends one record and updates the settings block. It returns the
// raw record.
func (g *Generator) Advance() [fineoffset.ChunkSize]byte {
	g.img.mu.Lock()
	defer g.img.mu.Unlock()

	period := g.readPeriod()
	if g.dataCount > 0 {
		g.tick = g.tick.Add(time.Duration(period) * time.Minute)
		g.currentPos += fineoffset.ChunkSize
		if g.currentPos >= fineoffset.HistoryEnd {
			g.currentPos = fineoffset.HistoryStart
		}
	}
	g.dataCount = min(g.dataCount+1, fineoffset.HistoryMax)

	rec := g.record(period)
	g.img.put(g.currentPos, rec[:])
	// the console acknowledges a settings change by clearing the marker
	g.img.mem[fineoffset.DataRefreshedAddress] = 0
	g.syncSettings()
	g.seq++
	return rec
}

// Clock returns the time of the newest record.
func (g *Generator) Clock() time.Time {
	return g.tick
}

func (g *Generator) readPeriod() int {
	p := int(g.img.mem[fineoffset.ReadPeriodAddress])
	if p < 1 || p > 240 {
		return defaultReadPeriod
	}
	return p
}

// syncSettings must be called with the image lock held.
func (g *Generator) syncSettings() {
	b := g.img.mem[:fineoffset.SettingsBlockSize]
	putUnsigned(b, fineoffset.SettingsDataCount.Offset, uint16(g.dataCount))
	putUnsigned(b, fineoffset.SettingsCurrentPos.Offset, uint16(g.currentPos))
	putUnsigned(b, fineoffset.SettingsAbsPressure.Offset, uint16(math.Round(g.pressure*10)))
	putUnsigned(b, fineoffset.SettingsRelPressure.Offset, uint16(math.Round((g.pressure+relPressureOffset)*10)))
	dt := fineoffset.EncodeBCDDateTime(g.tick)
	copy(b[fineoffset.SettingsDateTime.Offset:], dt[:])
}

func (g *Generator) record(period int) [fineoffset.ChunkSize]byte {
	hour := float64(g.tick.Hour()) + float64(g.tick.Minute())/60
	outTemp := 8 + 7*math.Sin(2*math.Pi*(hour-9)/24) + g.rng.Float64() - 0.5
	inTemp := 21 + g.rng.Float64() - 0.5
	outHum := min(max(70-2*(outTemp-8)+(g.rng.Float64()-0.5)*5, 10), 99)
	inHum := 45 + g.rng.IntN(6)
	g.pressure = min(max(g.pressure+(g.rng.Float64()-0.5)*0.4, 980), 1040)
	windAvg := g.rng.Float64() * 6
	gust := windAvg + g.rng.Float64()*4
	if g.rng.Float64() < 0.15 {
		g.rainTicks = (g.rainTicks + 1 + g.rng.IntN(3)) & 0xFFFF
	}

	var r [fineoffset.ChunkSize]byte
	r[0] = byte(period)
	r[1] = byte(inHum)
	putSigned(r[:], 2, int(math.Round(inTemp*10)))
	r[4] = byte(outHum)
	putSigned(r[:], 5, int(math.Round(outTemp*10)))
	putUnsigned(r[:], 7, uint16(math.Round(g.pressure*10)))
	wa, wg := int(math.Round(windAvg*10)), int(math.Round(gust*10))
	r[9] = byte(wa)
	r[10] = byte(wg)
	r[11] = byte(wa>>8)&0x0F | byte(wg>>8)<<4
	r[12] = byte(g.rng.IntN(16))
	putUnsigned(r[:], 13, uint16(g.rainTicks))

	if g.SensorDropEvery > 0 && g.seq%g.SensorDropEvery == g.SensorDropEvery-1 {
		r[4], r[5], r[6] = 0xFF, 0xFF, 0xFF
		r[9], r[10], r[11] = 0xFF, 0xFF, 0xFF
		r[12] = 0xFF
		r[15] = byte(fineoffset.StatusContactLost)
	}
	return r
}

func putSigned(b []byte, off, n int) {
	raw := fineoffset.EncodeSignedShort(n)
	copy(b[off:], raw[:])
}

func putUnsigned(b []byte, off int, n uint16) {
	raw := fineoffset.EncodeUnsignedShort(n)
	copy(b[off:], raw[:])
}
