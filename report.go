package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"pingmon/recorder"
)

// runReport prints the summary of a recorded session and renders an RTT
// chart. Without an explicit session it reports the most recent one.
func runReport(dbPath, sessionID, outPath string) error {
	if dbPath == "" {
		return fmt.Errorf("report needs a database, set --record.path or record.path in the config file")
	}

	rec, err := recorder.Open(dbPath)
	if err != nil {
		return err
	}
	defer rec.Close()

	if sessionID == "" {
		sessionID, err = rec.LatestSession()
		if err != nil {
			return err
		}
	}

	s, err := rec.Summarize(sessionID)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, s)

	samples, err := rec.Samples(sessionID)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(dbPath), fmt.Sprintf("pingmon-%s.png", shortID(sessionID)))
	}
	if err := renderChart(samples, s, outPath); err != nil {
		return err
	}
	fmt.Printf("Chart written to %s\n", outPath)

	return nil
}

func printSummary(w io.Writer, s recorder.Summary) {
	fmt.Fprintf(w, "Session:  %s\n", s.SessionID)
	fmt.Fprintf(w, "Target:   %s\n", s.Target)
	fmt.Fprintf(w, "Started:  %s\n", s.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Duration: %s\n", s.EndedAt.Sub(s.StartedAt).Round(time.Second))
	fmt.Fprintf(w, "Packets:  %s sent, %s lost (%.1f%% loss)\n",
		humanize.Comma(int64(s.Total)), humanize.Comma(int64(s.Lost)), s.LossPct)
	if s.RTTAvg != nil {
		fmt.Fprintf(w, "RTT:      avg=%.2fms min=%.2fms max=%.2fms\n", *s.RTTAvg, *s.RTTMin, *s.RTTMax)
	} else {
		fmt.Fprintln(w, "RTT:      no successful probes")
	}
}

func renderChart(samples []recorder.Sample, s recorder.Summary, outPath string) error {
	var xs []time.Time
	var ys []float64
	for _, sm := range samples {
		if sm.Success && sm.RTT != nil {
			xs = append(xs, sm.Timestamp)
			ys = append(ys, *sm.RTT)
		}
	}
	if len(ys) < 2 {
		return fmt.Errorf("session %s has too few timed replies to chart", s.SessionID)
	}

	graph := chart.Chart{
		Title: fmt.Sprintf("Round Trip Time - %s", s.Target),
		TitleStyle: chart.Style{
			FontSize: 16,
		},
		Background: chart.Style{
			Padding: chart.Box{
				Top:    20,
				Left:   20,
				Right:  20,
				Bottom: 20,
			},
		},
		Width:  1200,
		Height: 400,
		XAxis: chart.XAxis{
			Name: "Time",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			ValueFormatter: chart.TimeMinuteValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "RTT (ms)",
			Style: chart.Style{
				StrokeColor: drawing.ColorBlack,
				FontSize:    10,
			},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1.0,
			},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name: s.Target,
				Style: chart.Style{
					StrokeColor: chart.GetDefaultColor(0),
					StrokeWidth: 2,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	if len(ys) > 10 {
		ts := graph.Series[0].(chart.TimeSeries)
		graph.Series = append(graph.Series, chart.SMASeries{
			Name: "Moving Avg",
			Style: chart.Style{
				StrokeColor:     chart.GetDefaultColor(1),
				StrokeWidth:     2,
				StrokeDashArray: []float64{5, 5},
			},
			InnerSeries: ts,
			Period:      10,
		})
	}

	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", outPath, err)
	}
	defer file.Close()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
