package stats

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"

	"github.com/pidgy/drafthud/core/global"
	"github.com/pidgy/drafthud/core/notify"
	"github.com/pidgy/drafthud/core/rgba"
	"github.com/pidgy/drafthud/core/team"
)

const maxX = 20

var (
	// Disabled drops every collected value.
	Disabled = false

	averages = make(map[string]float64)
	asets    = make(map[string][]float64)

	counts = make(map[string]int)

	latencies = []float64{0}

	statsq = make(chan func(), 1024)
)

func init() {
	go func() {
		for fn := range statsq {
			fn()
		}
	}()
}

func Clear() {
	notify.System("[Stats] Clearing detection statistics")
	statsq <- func() {
		clear()
	}
}

// Collect records one sample of stat, such as an OCR confidence or a
// portrait distance.
func Collect(stat string, v float64) {
	if Disabled {
		return
	}

	if math.IsInf(v, 0) || math.IsNaN(v) {
		return
	}

	stat = sanitize(stat)

	statsq <- func() {
		asets[stat] = append(asets[stat], v)

		sum := 0.0
		for _, n := range asets[stat] {
			sum += n
		}
		averages[stat] = sum / float64(len(asets[stat]))

		counts[stat]++
	}
}

func Counts() map[string]int {
	cq := make(chan map[string]int)

	statsq <- func() {
		defer close(cq)

		c := make(map[string]int, len(counts))
		for k, v := range counts {
			c[k] = v
		}

		cq <- c
	}

	return <-cq
}

// Average returns the mean of every sample collected for stat.
func Average(stat string) float64 {
	aq := make(chan float64)

	statsq <- func() {
		defer close(aq)
		aq <- averages[sanitize(stat)]
	}

	return <-aq
}

func Data() {
	for _, line := range Lines() {
		if line == "" {
			continue
		}

		switch {
		case strings.Contains(line, team.Blue.String()):
			notify.Feed(team.Blue.RGBA(), line)
		case strings.Contains(line, team.Red.String()):
			notify.Feed(team.Red.RGBA(), line)
		case strings.Contains(line, "ocr"):
			notify.Feed(rgba.Yellow, line)
		case strings.Contains(line, "portrait"):
			notify.Feed(rgba.SlateGray, line)
		default:
			notify.System(line)
		}
	}
}

// Latency records the duration of one detection pass.
func Latency(d time.Duration) {
	if Disabled {
		return
	}

	statsq <- func() {
		if len(latencies) == maxX {
			latencies = append(latencies[1:], ms(d))
		} else {
			latencies = append(latencies, ms(d))
		}
	}
}

func LatencyGraph() string {
	lq := make(chan []float64)

	statsq <- func() {
		defer close(lq)
		lq <- append([]float64(nil), latencies...)
	}

	return asciigraph.Plot(<-lq, []asciigraph.Option{
		asciigraph.Height(5),
		asciigraph.Width(40),
		asciigraph.Precision(0),
		asciigraph.Caption("Detection pass (ms)"),
	}...)
}

func Lines() []string {
	lineq := make(chan []string)

	statsq <- func() {
		defer close(lineq)

		if len(counts) == 0 {
			notify.Warn("[Stats] No detection statistics to display...")
			lineq <- nil
			return
		}

		buf := &bytes.Buffer{}
		table := tablewriter.NewWriter(buf)
		table.SetCenterSeparator("-")
		table.SetAutoFormatHeaders(false)
		table.SetColumnSeparator("|")
		table.SetRowSeparator("")
		table.SetColMinWidth(0, 6)
		table.SetColMinWidth(1, 7)
		table.SetColumnAlignment(
			[]int{
				tablewriter.ALIGN_LEFT,
				tablewriter.ALIGN_LEFT,
				tablewriter.ALIGN_LEFT,
			},
		)
		table.SetBorder(false)
		table.Append(
			[]string{
				"Samples",
				"Average",
				"Statistic",
			},
		)

		sorted := sortable{}
		for n := range counts {
			if global.DebugMode || counts[n] > 0 {
				sorted.add(n, counts[n], averages[n])
			}
		}

		sorted.Sort()

		for _, s := range sorted {
			table.Append(
				[]string{
					fmt.Sprintf("%d", s.Samples),
					fmt.Sprintf("%.1f", s.Average),
					s.Name,
				},
			)
		}

		table.Render()

		notify.System("[Stats] Detection statistics")

		lineq <- strings.Split(buf.String(), "\n")
	}

	return <-lineq
}

func clear() {
	averages = make(map[string]float64)
	asets = make(map[string][]float64)
	counts = make(map[string]int)
	latencies = []float64{0}
}

func ms(d time.Duration) float64 {
	return math.Round(float64(d) / float64(time.Millisecond))
}

func sanitize(stat string) string {
	return strings.ToLower(strings.TrimSpace(stat))
}
