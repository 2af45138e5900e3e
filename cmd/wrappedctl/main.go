package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/matheus3301/wrapped/internal/analytics"
	"github.com/matheus3301/wrapped/internal/api"
	"github.com/matheus3301/wrapped/internal/config"
	"github.com/matheus3301/wrapped/internal/lock"
	"github.com/matheus3301/wrapped/internal/parse"
	"github.com/matheus3301/wrapped/internal/paths"
	"github.com/matheus3301/wrapped/internal/report"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type options struct {
	json    bool
	year    int
	format  parse.Format
	local   bool
	verbose bool
	cfg     *config.Config
}

func main() {
	configFlag := flag.String("config", "", "config file (default ~/.wrapped/config.toml)")
	jsonFlag := flag.Bool("json", false, "output in JSON format")
	yearFlag := flag.Int("year", 0, "year to analyze (overrides config; default current year)")
	formatFlag := flag.String("format", "auto", "export format: auto, whatsapp or telegram")
	localFlag := flag.Bool("local", false, "analyze in-process instead of through the daemon")
	verboseFlag := flag.Bool("v", false, "log parser activity to stderr")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	format, err := parse.ParseFormat(*formatFlag)
	if err != nil {
		fatal(err)
	}

	configPath := *configFlag
	if configPath == "" {
		configPath = paths.ConfigPath()
	}
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		fatal(fmt.Errorf("load config: %w", err))
	}

	opts := options{
		json:    *jsonFlag,
		year:    *yearFlag,
		format:  format,
		local:   *localFlag,
		verbose: *verboseFlag,
		cfg:     cfg,
	}

	switch args[0] {
	case "analyze":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: wrappedctl analyze <file|->")
			os.Exit(1)
		}
		cmdAnalyze(opts, args[1])
	case "status":
		cmdStatus(opts)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: wrappedctl [--json] [--year N] [--format auto|whatsapp|telegram] [--local] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "commands:")
	fmt.Fprintln(os.Stderr, "  analyze <file>   Analyze a WhatsApp .txt or Telegram .json export (- for stdin)")
	fmt.Fprintln(os.Stderr, "  status           Show daemon status")
}

func cmdAnalyze(opts options, path string) {
	name, data, err := readExport(path)
	if err != nil {
		fatal(err)
	}

	resp, err := runAnalyze(opts, name, data, analyzeRemote)
	if err != nil {
		fatal(err)
	}

	if opts.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Parsed %d %s messages.\n\n", resp.ParsedMessages, resp.Source)
	if err := report.Write(os.Stdout, resp.Stats); err != nil {
		fatal(err)
	}
}

type analyzeFunc func(opts options, name string, data []byte) (*api.AnalyzeResponse, error)

// runAnalyze goes through the daemon when its socket exists and analyzes
// in-process otherwise. A socket nobody answers on (codes.Unavailable) also
// falls back to in-process analysis.
func runAnalyze(opts options, name string, data []byte, remote analyzeFunc) (*api.AnalyzeResponse, error) {
	if opts.local || !daemonRunning() {
		return analyzeLocal(opts, name, data)
	}
	resp, err := remote(opts, name, data)
	if status.Code(err) == codes.Unavailable {
		if opts.verbose {
			fmt.Fprintf(os.Stderr, "daemon unavailable, analyzing locally: %v\n", err)
		}
		return analyzeLocal(opts, name, data)
	}
	return resp, err
}

func analyzeLocal(opts options, name string, data []byte) (*api.AnalyzeResponse, error) {
	logger := zap.NewNop()
	if opts.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		logger = l
	}
	defer func() { _ = logger.Sync() }()

	format := opts.format
	if format == parse.FormatAuto {
		format = parse.DetectFormat(name, data)
	}
	year := opts.year
	if year <= 0 {
		year = opts.cfg.Year(time.Now())
	}

	msgs := parse.New(parse.WithLogger(logger)).ParseAs(format, data)
	stats := analytics.AnalyzeWith(msgs, year, opts.cfg.Options())
	return &api.AnalyzeResponse{
		Source:         string(format),
		ParsedMessages: len(msgs),
		Stats:          stats,
		Highlights:     stats.Highlights(5),
	}, nil
}

func analyzeRemote(opts options, name string, data []byte) (*api.AnalyzeResponse, error) {
	c, err := api.NewClient(paths.SocketPath(), opts.cfg.MaxUploadBytes()/3*4+(1<<20))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to daemon: %w", err)
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	return c.Analyze(ctx, &api.AnalyzeRequest{
		FileName: name,
		Format:   string(opts.format),
		Year:     opts.year,
		Data:     data,
	})
}

func cmdStatus(opts options) {
	if !daemonRunning() {
		if pid := lock.Owner(paths.BaseDir()); pid != 0 {
			fmt.Fprintf(os.Stderr, "error: daemon socket missing but lock names PID %d\n", pid)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "error: daemon is not running (start wrappedd)")
		os.Exit(1)
	}

	c, err := api.NewClient(paths.SocketPath(), 0)
	if err != nil {
		fatal(fmt.Errorf("cannot connect to daemon: %w", err))
	}
	defer func() { _ = c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := c.GetStatus(ctx)
	if err != nil {
		fatal(err)
	}
	if opts.json {
		outputJSON(resp)
		return
	}
	fmt.Printf("Status:   %s\n", resp.Status)
	fmt.Printf("PID:      %d\n", resp.PID)
	fmt.Printf("Uptime:   %s\n", (time.Duration(resp.UptimeMs) * time.Millisecond).Round(time.Second))
	fmt.Printf("Analyses: %d\n", resp.Analyses)
}

// readExport returns the file's base name and contents; "-" reads stdin.
func readExport(path string) (string, []byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "-", data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("read export: %w", err)
	}
	return filepath.Base(path), data, nil
}

func daemonRunning() bool {
	_, err := os.Stat(paths.SocketPath())
	return !errors.Is(err, fs.ErrNotExist)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func outputJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "json encode error: %v\n", err)
	}
}
