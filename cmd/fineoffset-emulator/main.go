package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lzrdig/FineOffsetNET/internal/emulator"
	"github.com/lzrdig/FineOffsetNET/internal/log"
)

func main() {
	listen := flag.String("listen", "127.0.0.1:7000", "host:port to serve the console protocol on")
	records := flag.Int("records", 200, "History records to generate at startup")
	readPeriod := flag.Int("read-period", 5, "Minutes between history records (1..240)")
	seed := flag.Uint64("seed", 1, "Seed for the weather generator")
	sensorDrop := flag.Int("sensor-drop", 0, "Make every n-th record a lost-contact record; 0 disables")
	advance := flag.Duration("advance", 0, "Append a record at this interval; 0 keeps the history fixed")
	corrupt := flag.Float64("flaky-corrupt", 0, "Probability of corrupting one reply byte")
	silent := flag.Float64("flaky-silent", 0, "Probability of not answering a frame")
	reject := flag.Float64("flaky-reject", 0, "Probability of answering a write without acknowledgement")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	img := emulator.NewImage()
	first := time.Now().Add(-time.Duration(*records-1) * time.Duration(*readPeriod) * time.Minute)
	gen := emulator.NewGenerator(img, first, *readPeriod, *seed)
	gen.SensorDropEvery = *sensorDrop
	gen.Fill(*records)
	log.Infof("generated %d records, newest at %v", *records, gen.Clock().Format(time.DateTime))

	flaky := emulator.FlakyConfig{
		Enabled:         *corrupt > 0 || *silent > 0 || *reject > 0,
		CorruptByteRate: *corrupt,
		NoResponseRate:  *silent,
		RejectWriteRate: *reject,
	}
	server := emulator.NewServer(*listen, img, flaky, log.GetSugaredLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gCtx)
	})
	if *advance > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(*advance)
			defer ticker.Stop()
			for {
				select {
				case <-gCtx.Done():
					return nil
				case <-ticker.C:
					gen.Advance()
					log.Debugf("appended record at %v", gen.Clock().Format(time.DateTime))
				}
			}
		})
	}

	log.Infof("Fine Offset emulator listening on %s", *listen)
	if err := g.Wait(); err != nil {
		log.Errorf("emulator error: %v", err)
		log.Exit(1)
	}
}
