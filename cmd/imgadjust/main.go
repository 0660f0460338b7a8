// Command imgadjust applies the editor's adjustment chain to an image file
// without opening a window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"imgedit/internal/filters"
	"imgedit/internal/history"
	imgutil "imgedit/internal/image"
	"imgedit/internal/logging"
	"imgedit/internal/pipeline"
	"imgedit/internal/selection"
	"imgedit/pkg/geometry"
)

// fixedSelection scopes the adjustments to a region given on the command line.
type fixedSelection struct{ region selection.Region }

func (f fixedSelection) Selection() selection.Region { return f.region }

func main() {
	in := flag.String("in", "", "input image")
	out := flag.String("out", "", "output image; the extension selects the format")
	rect := flag.String("rect", "", "restrict the adjustments to x,y,w,h")
	verbose := flag.Bool("v", false, "log pipeline activity")
	showHist := flag.Bool("histogram", false, "print channel statistics of the result")

	values := make(map[pipeline.Control]*float64)
	for _, c := range pipeline.Controls() {
		min, max, neutral := c.Range()
		values[c] = flag.Float64(c.String(), neutral,
			fmt.Sprintf("%s, %.0f to %.0f (neutral %.0f)", c.Label(), min, max, neutral))
	}
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Println("Usage: imgadjust -in <image> -out <image> [-rect x,y,w,h] [-brightness 120] [-blur 150] ...")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *verbose {
		logging.SetLogger(logging.NewText(os.Stderr, slog.LevelDebug))
	}

	region := selection.Region{}
	if *rect != "" {
		r, err := parseRect(*rect)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -rect: %v\n", err)
			os.Exit(1)
		}
		region = selection.NewRect(r)
	}

	img, format, err := imgutil.Load(*in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Loaded %s image: %dx%d pixels\n", format, img.Bounds().Dx(), img.Bounds().Dy())

	store := history.NewStore()
	if err := store.Reset(img); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start history: %v\n", err)
		os.Exit(1)
	}

	var failed error
	p := pipeline.New(store, fixedSelection{region}, nil, time.Hour)
	p.OnError(func(err error) { failed = err })
	changed := 0
	for _, c := range pipeline.Controls() {
		_, _, neutral := c.Range()
		if v := *values[c]; v != neutral {
			p.OnParameterChanged(c.Label(), v, c)
			changed++
		}
	}
	p.Flush()
	if failed != nil && !errors.Is(failed, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Adjustment failed: %v\n", failed)
		os.Exit(1)
	}
	fmt.Printf("Applied %d adjustment(s), %d history entries\n", changed, store.Len())

	result := store.Latest()
	if err := imgutil.Save(*out, result); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save image: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %s\n", *out)

	if *showHist {
		printHistogram(filters.ComputeHistogram(result))
	}
}

// parseRect parses "x,y,w,h".
func parseRect(s string) (geometry.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geometry.Rect{}, fmt.Errorf("want x,y,w,h, got %q", s)
	}
	var v [4]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return geometry.Rect{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		v[i] = f
	}
	r := geometry.NewRect(v[0], v[1], v[2], v[3])
	if r.Empty() {
		return geometry.Rect{}, fmt.Errorf("empty rectangle %q", s)
	}
	return r, nil
}

func printHistogram(h filters.Histogram) {
	fmt.Printf("\n%-6s %10s %10s\n", "Chan", "Mean", "Peak bin")
	for _, ch := range []struct {
		name  string
		table []float64
	}{{"red", h.Red}, {"green", h.Green}, {"blue", h.Blue}, {"luma", h.Luma}} {
		mean, peakBin := tableStats(ch.table)
		fmt.Printf("%-6s %10.1f %10d\n", ch.name, mean, peakBin)
	}
}

// tableStats returns the mean value and the most frequent bin of a
// histogram table.
func tableStats(table []float64) (mean float64, peakBin int) {
	var total, weighted, best float64
	for bin, n := range table {
		total += n
		weighted += float64(bin) * n
		if n > best {
			best, peakBin = n, bin
		}
	}
	if total > 0 {
		mean = weighted / total
	}
	return mean, peakBin
}
