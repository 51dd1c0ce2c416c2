package main

import (
	"fmt"
	"math/rand"

	"github.com/sanspareilsmyn/iolens/internal/trace"
)

// synthOptions shapes a generated trace.
type synthOptions struct {
	Files      int
	OpsPerFile int
	// SeqRatio is the probability that an operation continues where the
	// previous one ended instead of seeking.
	SeqRatio float64
	Start    float64 // seconds
}

// synthesize builds a plausible trace: mostly sequential 4-256 KiB requests
// with exponential-ish latencies and occasional slow outliers.
func synthesize(rng *rand.Rand, opts synthOptions) *trace.Dataset {
	ds := trace.NewDataset()
	clock := opts.Start
	for f := 0; f < opts.Files; f++ {
		name := fmt.Sprintf("/data/synthetic/file-%02d.dat", f)
		ds.Reads[name] = synthFile(rng, opts, &clock, 4)
		if rng.Float64() < 0.5 {
			ds.Writes[name] = synthFile(rng, opts, &clock, 64)
		}
	}
	return ds
}

func synthFile(rng *rand.Rand, opts synthOptions, clock *float64, minSize float64) trace.FileTrace {
	ft := trace.FileTrace{FirstTime: *clock}
	offset := 0.0
	for i := 0; i < opts.OpsPerFile; i++ {
		size := minSize * float64(int(1)<<rng.Intn(6))
		if rng.Float64() > opts.SeqRatio {
			offset = float64(rng.Intn(1<<16)) * 4
		}
		dur := rng.ExpFloat64() * 0.2
		if rng.Float64() < 0.02 {
			dur += 5 + rng.Float64()*20
		}
		*clock += rng.ExpFloat64() * 0.001
		ft.Ops = append(ft.Ops, trace.Operation{
			Offset:   offset,
			Size:     size,
			Start:    *clock,
			Duration: dur,
		})
		offset += size
		*clock += dur / 1000
	}
	return ft
}
