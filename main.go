package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"pingmon/config"
	"pingmon/monitor"
	"pingmon/probe"
	"pingmon/recorder"
)

const version string = "0.1.0"

var (
	showVersion = kingpin.Flag("version", "Print version information").Bool()
	configFile  = kingpin.Flag("config.path", "Path to config file").Default("").String()
	logLevel    = kingpin.Flag("log.level", "Only log messages with the given severity or above. Valid levels: [trace, debug, info, warn, error, fatal]").Default("info").String()
	recordPath  = kingpin.Flag("record.path", "SQLite file for recording probe outcomes, empty disables recording").Default("").String()

	runCmd        = kingpin.Command("run", "Ping a target and display rolling statistics").Default()
	targetHost    = runCmd.Flag("target", "Host to ping").Envar("TARGET_HOST").String()
	pingInterval  = runCmd.Flag("ping.interval", "Time between probes, plain numbers are milliseconds").Default("100ms").Envar("PING_INTERVAL").String()
	pingTimeout   = runCmd.Flag("ping.timeout", "Timeout for a single probe").Default("1s").Duration()
	pingMode      = runCmd.Flag("ping.mode", "How probes are sent. Valid modes: [exec, icmp]").Default(config.ModeExec).String()
	verbose       = runCmd.Flag("verbose", "Print one line per probe instead of redrawing the screen").Short('v').Bool()
	watchReload   = runCmd.Flag("config.watch", "Reload alert thresholds and log level when the config file changes").Bool()
	listenAddress = runCmd.Flag("web.listen-address", "Address on which to expose metrics, empty disables the listener").Default("").String()
	metricsPath   = runCmd.Flag("web.telemetry-path", "Path under which to expose metrics").Default("/metrics").String()
	lossThreshold = runCmd.Flag("alerts.loss-threshold", "Log an alert when one minute packet loss reaches this percentage, 0 disables").Default("0").Float64()
	rttThreshold  = runCmd.Flag("alerts.rtt-threshold", "Log an alert when one minute average RTT reaches this duration, 0 disables").Default("0s").Duration()

	reportCmd     = kingpin.Command("report", "Summarize a recorded session and render an RTT chart")
	reportSession = reportCmd.Flag("session", "Session ID to report, defaults to the most recent").Default("").String()
	reportOut     = reportCmd.Flag("out", "Output PNG path, defaults to a file next to the database").Default("").String()
)

func main() {
	cmd := kingpin.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		kingpin.FatalUsage("could not load config.path: %v", err)
	}

	setLogLevel(cfg.Log.Level)

	switch cmd {
	case runCmd.FullCommand():
		if err := cfg.Validate(); err != nil {
			kingpin.FatalUsage("%v", err)
		}

		if mpath := *metricsPath; mpath == "" {
			log.Warnln("web.telemetry-path is empty, correcting to `/metrics`")
			mpath = "/metrics"
			metricsPath = &mpath
		} else if mpath[0] != '/' {
			mpath = "/" + mpath
			metricsPath = &mpath
		}

		if err := runMonitor(cfg); err != nil {
			log.Errorln(err)
			os.Exit(2)
		}
	case reportCmd.FullCommand():
		if err := runReport(cfg.Record.Path, *reportSession, *reportOut); err != nil {
			log.Errorln(err)
			os.Exit(2)
		}
	}
}

func printVersion() {
	fmt.Println("pingmon")
	fmt.Printf("Version: %s\n", version)
	fmt.Println("Console ping monitor with rolling statistics")
}

func runMonitor(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Infof("Starting pingmon (Version: %s)", version)

	host := cfg.Target
	addr, resolved := resolveTarget(ctx, net.DefaultResolver, host)
	if resolved {
		fmt.Printf("Resolved %s to %s\n", host, addr)
	} else {
		fmt.Printf("Using %s as IP address\n", addr)
	}

	interval := cfg.Ping.Interval.Duration()
	timeout := cfg.Ping.Timeout.Duration()

	var prober monitor.Prober
	switch cfg.Ping.Mode {
	case config.ModeICMP:
		p, err := probe.NewICMP(addr, timeout)
		if err != nil {
			return fmt.Errorf("cannot start monitoring: %w", err)
		}
		defer p.Close()
		// the driver resolves the destination itself, its address is the
		// one actually probed
		addr = p.Addr()
		prober = p
	default:
		p, err := probe.NewExec(addr, timeout)
		if err != nil {
			return fmt.Errorf("cannot start monitoring: %w", err)
		}
		prober = p
	}

	var rec *recorder.Recorder
	if cfg.Record.Path != "" {
		r, err := recorder.Open(cfg.Record.Path)
		if err != nil {
			return err
		}
		defer r.Close()

		id, err := r.Begin(host)
		if err != nil {
			return err
		}
		log.Infof("Recording session %s to %s", id, cfg.Record.Path)
		rec = r
	}

	display := newConsoleDisplay(host, addr, interval, *verbose)
	alerts := newAlerter(cfg.Alerts.LossThreshold, cfg.Alerts.RTTThreshold.Duration())
	ledger := monitor.NewLedger(0)

	m := monitor.New(addr, prober, ledger, multiReporter{display, alerts}, interval)
	m.OnOutcome = func(o monitor.Outcome) {
		if *verbose {
			display.Observe(o)
		}
		if rec != nil {
			if err := rec.Record(o); err != nil {
				log.Warnf("Could not record outcome: %v", err)
			}
		}
	}

	fmt.Printf("Starting ping monitor for %s (%s)\n", host, addr)
	fmt.Printf("Ping interval: %dms\n", interval.Milliseconds())
	fmt.Println("Collecting initial data...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return m.Run(gctx) })

	if cfg.Web.ListenAddress != "" {
		g.Go(func() error { return startServer(gctx, cfg.Web.ListenAddress, addr, ledger) })
	}
	if *configFile != "" && *watchReload {
		g.Go(func() error { return watchConfig(gctx, *configFile, cfg, alerts) })
	}

	err := g.Wait()

	fmt.Println("\nShutting down ping monitor...")

	if rec != nil {
		if eerr := rec.End(); eerr != nil {
			log.Warnf("Could not close session: %v", eerr)
		}
		if s, serr := rec.Summarize(rec.SessionID()); serr == nil {
			fmt.Println()
			printSummary(os.Stdout, s)
		}
	}

	return err
}

// multiReporter fans a report out to the display and the alerter.
type multiReporter []monitor.Reporter

func (mr multiReporter) Report(target string, now time.Time, windows []monitor.WindowStats) {
	for _, r := range mr {
		r.Report(target, now, windows)
	}
}

// resolveTarget looks up host and prefers its first IPv4 address. Hosts that
// do not resolve are pinged as given.
func resolveTarget(ctx context.Context, resolver Resolver, host string) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	addrs, err := resolver.LookupIPAddr(ctx, host)
	if err != nil || len(addrs) == 0 {
		return host, false
	}

	for _, a := range addrs {
		if a.IP.To4() != nil {
			return a.IP.String(), true
		}
	}

	return addrs[0].IP.String(), true
}

func startServer(ctx context.Context, listen, target string, ledger *monitor.Ledger) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, indexHTML, *metricsPath)
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(newPingCollector(target, ledger))

	l := log.New()
	l.Level = log.ErrorLevel

	mux.Handle(*metricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		ErrorLog:      l,
		ErrorHandling: promhttp.ContinueOnError,
	}))

	srv := &http.Server{Addr: listen, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("Listening for %s on %s", *metricsPath, listen)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		cfg := &config.Config{}
		if err := addFlagToConfig(cfg); err != nil {
			return nil, err
		}

		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot load config file: %w", err)
	}
	defer f.Close()

	cfg, err := config.FromYAML(f)
	if err != nil {
		return nil, err
	}
	if err := addFlagToConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// addFlagToConfig updates cfg with command line flag values, unless the
// config has non-zero values.
func addFlagToConfig(cfg *config.Config) error {
	if cfg.Target == "" {
		cfg.Target = *targetHost
	}
	if cfg.Ping.Interval == 0 {
		d, err := parseInterval(*pingInterval)
		if err != nil {
			return err
		}
		cfg.Ping.Interval.Set(d)
	}
	if cfg.Ping.Timeout == 0 {
		cfg.Ping.Timeout.Set(*pingTimeout)
	}
	if cfg.Ping.Mode == "" {
		cfg.Ping.Mode = *pingMode
	}
	if cfg.Alerts.LossThreshold == 0 {
		cfg.Alerts.LossThreshold = *lossThreshold
	}
	if cfg.Alerts.RTTThreshold == 0 {
		cfg.Alerts.RTTThreshold.Set(*rttThreshold)
	}
	if cfg.Web.ListenAddress == "" {
		cfg.Web.ListenAddress = *listenAddress
	}
	if cfg.Record.Path == "" {
		cfg.Record.Path = *recordPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = *logLevel
	}

	return nil
}

// parseInterval reads a Go duration, treating plain numbers as milliseconds
// so that PING_INTERVAL=100 means 100ms.
func parseInterval(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: use a duration like 100ms or a millisecond count", s)
	}

	return d, nil
}

const indexHTML = `<!doctype html>
<html>
<head>
	<meta charset="UTF-8">
	<title>pingmon (Version ` + version + `)</title>
</head>
<body>
	<h1>pingmon</h1>
	<p><a href="%s">Metrics</a></p>
</body>
</html>
`
