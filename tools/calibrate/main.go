// Command calibrate finds where a game keeps its score in emulator memory.
//
// It attaches to the first reachable memory path, lists heap offsets where six BCD digits sit past the
// anchor address, and, given -expect, the NES addresses whose digits spell the expected score.
package main

import (
	"arcadia/games"
	"arcadia/memory"
	"arcadia/nes"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// include these memory drivers:
import (
	_ "arcadia/nes/grpcmem"
	_ "arcadia/nes/mock"
	_ "arcadia/nes/retroarch"
)

// include these games:
import (
	_ "arcadia/games/galaga"
	_ "arcadia/games/mario"
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFCC00"))

type options struct {
	game      string
	expect    int
	anchor    int
	step      int
	bins      int
	width     int
	histogram bool
}

func main() {
	initConsole()
	log.SetFlags(0)

	var (
		opts   options
		paths  string
		anchor string
	)
	flag.StringVar(&paths, "paths", "grpcmem=localhost:8191,retroarch=localhost:55355", "memory paths to try, driver=address[,...]")
	flag.StringVar(&opts.game, "game", "mario", "game config used for -expect")
	flag.IntVar(&opts.expect, "expect", -1, "score currently on screen; lists the addresses that hold it")
	flag.StringVar(&anchor, "anchor", fmt.Sprintf("0x%04X", games.DefaultScanAnchor), "NES address scanned for digits at each offset")
	flag.IntVar(&opts.step, "step", games.DefaultScanStep, "offset scan step")
	flag.BoolVar(&opts.histogram, "histogram", false, "print a histogram of RAM byte values")
	flag.IntVar(&opts.bins, "bins", 16, "histogram bins")
	flag.IntVar(&opts.width, "width", 50, "histogram width")
	flag.Parse()

	a, err := strconv.ParseInt(anchor, 0, 32)
	if err != nil {
		log.Fatalf("calibrate: bad -anchor: %v", err)
	}
	opts.anchor = int(a)

	pl, err := memory.ParsePaths(paths)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}
	accessor := memory.NewAccessor(pl...)
	defer accessor.Close()

	view, err := accessor.Wait(context.Background(), 0, 0)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}
	snap, err := nes.CaptureAll(view)
	if err != nil {
		log.Fatalf("calibrate: %v", err)
	}

	fmt.Println(titleStyle.Render(fmt.Sprintf("%s: %s view, %d bytes", accessor.Path(), snap.Kind(), snap.Len())))
	if err = run(os.Stdout, snap, opts); err != nil {
		log.Fatalf("calibrate: %v", err)
	}
}

func run(w io.Writer, view nes.View, opts options) error {
	if nes.KindOf(view) == nes.KindHeap {
		candidates := games.ScanForScoreOffsets(view, opts.anchor, opts.step)
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d offset candidates at $%04X", len(candidates), opts.anchor)))
		if len(candidates) > 0 {
			fmt.Fprintln(w, offsetTable(candidates))
		}
	}

	if opts.expect >= 0 {
		cfg, err := games.ByID(opts.game)
		if err != nil {
			return err
		}
		if cfg, err = cfg.ForKind(nes.KindOf(view)); err != nil {
			return err
		}
		matches := games.FindScoreAddresses(cfg, view, opts.expect)
		fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%d addresses holding %s", len(matches), games.FormatScore(opts.expect))))
		if len(matches) > 0 {
			fmt.Fprintln(w, matchTable(matches))
		}
	}

	if opts.histogram {
		return printHistogram(w, view, opts.bins, opts.width)
	}
	return nil
}

func offsetTable(candidates []games.OffsetCandidate) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("offset", "hex", "digits")
	for _, c := range candidates {
		t.Row(strconv.Itoa(c.Offset), fmt.Sprintf("0x%X", c.Offset), c.Digits)
	}
	return t.Render()
}

func matchTable(matches []games.AddressMatch) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("address", "digits", "score")
	for _, m := range matches {
		t.Row(m.String(), fmt.Sprint(m.Digits), games.FormatScore(m.Score))
	}
	return t.Render()
}

// printHistogram plots the distribution of byte values over the first RAMSize bytes of view. On a RAM
// view that is the whole of work RAM.
func printHistogram(w io.Writer, view nes.View, bins, width int) error {
	n := nes.RAMSize
	if view.Len() < n {
		n = view.Len()
	}
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	if _, err := view.ReadAt(buf, 0); err != nil && err != io.EOF {
		return err
	}

	data := make([]float64, n)
	for i, b := range buf {
		data[i] = float64(b)
	}
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("byte values of $0000-$%04X", n-1)))
	return histogram.Fprint(w, histogram.Hist(bins, data), histogram.Linear(width))
}
