package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/piwi3910/PhotoBOM/internal/batch"
	"github.com/piwi3910/PhotoBOM/internal/export"
	"github.com/piwi3910/PhotoBOM/internal/importer"
	"github.com/piwi3910/PhotoBOM/internal/logging"
	"github.com/piwi3910/PhotoBOM/internal/metrics"
	"github.com/piwi3910/PhotoBOM/internal/model"
	"github.com/piwi3910/PhotoBOM/internal/project"
	"github.com/piwi3910/PhotoBOM/internal/report"
	"github.com/piwi3910/PhotoBOM/internal/server"
	"github.com/piwi3910/PhotoBOM/internal/store"
)

// Exit codes. Run-level problems print a message and exit 0.
const (
	exitOK    = 0
	exitUsage = 2
)

// serveListening is called with the bound address once serve accepts
// connections.
var serveListening = func(net.Addr) {}

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath string
	logLevel   string
	dbPath     string
}

func (c *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&c.configPath, "config", project.DefaultConfigPath(), "path to the JSON config file")
	fs.StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	fs.StringVar(&c.dbPath, "db", "", "SQLite run history path override")
}

// load reads the config file, applies environment and flag overrides and
// builds the logger.
func (c *commonFlags) load() (model.AppConfig, *zap.Logger, error) {
	cfg, err := project.LoadAppConfig(c.configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("load config %s: %w", c.configPath, err)
	}
	if cfg, err = project.ApplyEnv(cfg, os.LookupEnv); err != nil {
		return cfg, nil, err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.dbPath != "" {
		cfg.DBPath = c.dbPath
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return cfg, nil, fmt.Errorf("create logger: %w", err)
	}
	return cfg, logger, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "templates":
			return runTemplates(args[1:], stdout, stderr)
		case "totals":
			return runTotals(args[1:], stdout, stderr)
		case "history":
			return runHistory(ctx, args[1:], stdout, stderr)
		case "serve":
			return runServe(ctx, args[1:], stdout, stderr)
		}
	}
	return runBatch(ctx, args, stdout, stderr)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func runBatch(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("photobom", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var common commonFlags
	var (
		image       = fs.String("image", "", "image file to process")
		images      = fs.String("images", "", "comma-separated image files to process in order")
		dir         = fs.String("dir", "", "process every PNG/JPEG under this directory")
		demo        = fs.Bool("demo", false, "generate and process a synthetic wood table image")
		demo3       = fs.Bool("demo3", false, "generate and process synthetic table, chair and shelf images")
		exportList  = fs.String("export", "", "export formats: csv,xlsx,pdf,labels")
		outputDir   = fs.String("output", "", "output directory override")
		noValidate  = fs.Bool("no-validate", false, "report validation problems without withholding the summary")
		metricsFile = fs.String("metrics-file", "", "write Prometheus metrics to this textfile after the run")
		upload      = fs.Bool("upload", false, "upload exported files to the configured S3 bucket")
	)
	common.register(fs)

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, logger, err := common.load()
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	if *metricsFile != "" {
		cfg.MetricsFile = *metricsFile
	}
	if *noValidate {
		cfg.Validation.Enforce = false
	}
	formatNames := cfg.ExportFormats
	if *exportList != "" {
		formatNames = splitList(*exportList)
	}
	formats, err := export.ParseFormats(formatNames)
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitUsage
	}

	paths, err := collectPaths(stdout, cfg, *image, splitList(*images), fs.Args(), *dir, *demo, *demo3)
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		return exitOK
	}

	rec := metrics.NewRecorder()
	p := batch.NewProcessor(cfg, logger)
	p.Metrics = rec
	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer st.Close()
			p.History = st
		}
	}

	out := p.Run(ctx, paths)
	for _, f := range out.Failures {
		fmt.Fprintf(stdout, "[WARN] Skipping %s: %v\n", f.Path, f.Err)
	}
	if out.Processed() == 0 {
		fmt.Fprintln(stdout, "No images were processed.")
		return exitOK
	}

	for _, r := range out.Results {
		if r.Category != model.ExpectedCategory(r.Template) {
			fmt.Fprintf(stdout, "\n[WARN] %s looks %s; using the %s BOM anyway.\n", r.Name, r.Category, r.BOMName)
		}
		if r.Duplicate {
			fmt.Fprintf(stdout, "\n[WARN] %s looks like a duplicate of an earlier photo.\n", r.Name)
		}
		report.WriteAssembly(stdout, r)
	}

	var violations []string
	if out.ValidationErr != nil {
		violations = out.ValidationErr.Violations
		report.WriteValidationFailure(stdout, out.ValidationErr, cfg.Validation)
	} else {
		report.WriteSummary(stdout, *out.Summary)
	}

	exporter := export.Exporter{Dir: cfg.OutputDir, Base: cfg.ReportBaseName, Now: time.Now}
	written, err := exporter.Export(formats, out.Results, out.Summary, violations)
	for _, w := range written {
		fmt.Fprintf(stdout, "Exported: %s\n", w)
	}
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] Export failed: %v\n", err)
	}

	if *upload && len(written) > 0 {
		uploadReports(ctx, stdout, logger, cfg.S3, out.RunID, written)
	}

	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics file", zap.String("path", cfg.MetricsFile), zap.Error(err))
		}
	}
	return exitOK
}

// collectPaths turns the image selection flags into an ordered path list.
// Named images that cannot be found are reported and left out.
func collectPaths(stdout io.Writer, cfg model.AppConfig, image string, images, rest []string, dir string, demo, demo3 bool) ([]string, error) {
	switch {
	case demo3:
		return project.GenerateDemoSet(cfg.InputDir)
	case demo:
		p := filepath.Join(cfg.InputDir, project.DemoTableName)
		if err := project.GenerateDemoTable(p); err != nil {
			return nil, err
		}
		return []string{p}, nil
	case dir != "":
		return project.ScanDir(dir)
	}

	named := append(images, rest...)
	if len(named) == 0 {
		p, err := project.ResolveImagePath(image, cfg.InputDir)
		if err != nil {
			return nil, fmt.Errorf("%w. Use --image <path> or --demo", err)
		}
		return []string{p}, nil
	}

	var paths []string
	for _, n := range named {
		p, err := project.ResolveImagePath(n, cfg.InputDir)
		if err != nil {
			fmt.Fprintf(stdout, "[WARN] %v\n", err)
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func uploadReports(ctx context.Context, stdout io.Writer, logger *zap.Logger, s3cfg model.S3Config, runID string, files []string) {
	if !s3cfg.Enabled() {
		fmt.Fprintln(stdout, "[WARN] --upload given but no S3 bucket is configured")
		return
	}
	s3cfg.Prefix = path.Join(s3cfg.Prefix, runID)
	uploader, err := export.NewS3Uploader(ctx, s3cfg, logger)
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] Upload failed: %v\n", err)
		return
	}
	keys, err := uploader.UploadAll(ctx, files)
	for _, k := range keys {
		fmt.Fprintf(stdout, "Uploaded: s3://%s/%s\n", s3cfg.Bucket, k)
	}
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] Upload failed: %v\n", err)
	}
}

func runTemplates(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("templates", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	ids := fs.Args()
	if len(ids) == 0 {
		for _, id := range model.TemplateIDs() {
			ids = append(ids, string(id))
		}
	}
	for _, id := range ids {
		bom, ok := model.LookupTemplate(model.TemplateID(id))
		if !ok {
			fmt.Fprintf(stdout, "[WARN] Unknown template %q\n", id)
			continue
		}
		if err := report.WriteTemplate(stdout, bom); err != nil {
			fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		}
	}
	return exitOK
}

func runTotals(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("totals", flag.ContinueOnError)
	fs.SetOutput(stderr)
	exportList := fs.String("export", "", "re-export the priced items: csv,xlsx")
	outputDir := fs.String("output", "output", "output directory for exports")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "usage: photobom totals [--export csv,xlsx] FILE")
		return exitUsage
	}
	file := fs.Arg(0)

	result := importer.ImportFile(file)
	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "[INFO] %s\n", w)
	}
	for _, err := range result.Errors {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
	}
	if result.HasErrors() {
		return exitOK
	}

	items, total, err := model.ComputeTotals(result.Items)
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		return exitOK
	}
	fmt.Fprintf(stdout, "\n=== Bill of Materials (%s) ===\n", filepath.Base(file))
	report.WriteTable(stdout, items)
	fmt.Fprintf(stdout, "\nAssembly Total: %s\n", report.FormatCurrency(total))

	formats, err := export.ParseFormats(splitList(*exportList))
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitUsage
	}
	base := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	for _, f := range formats {
		dst := filepath.Join(*outputDir, base+"_priced."+string(f))
		switch f {
		case export.FormatCSV:
			err = export.ExportCSV(dst, items)
		case export.FormatXLSX:
			err = export.ExportXLSX(dst, items)
		default:
			fmt.Fprintf(stdout, "[WARN] %s export needs photos; skipped\n", f)
			continue
		}
		if err != nil {
			fmt.Fprintf(stdout, "[ERROR] Export failed: %v\n", err)
			continue
		}
		fmt.Fprintf(stdout, "Exported: %s\n", dst)
	}
	return exitOK
}

func runHistory(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	limit := fs.Int("n", 10, "number of runs to list (0 for all)")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, logger, err := common.load()
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	if cfg.DBPath == "" {
		fmt.Fprintln(stdout, "Run history is disabled; set db_path or --db.")
		return exitOK
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		return exitOK
	}
	defer st.Close()

	if fs.NArg() == 1 {
		run, err := st.GetRun(ctx, fs.Arg(0))
		if err != nil {
			fmt.Fprintf(stdout, "[ERROR] %v\n", err)
			return exitOK
		}
		report.WriteRun(stdout, run)
		return exitOK
	}

	runs, err := st.ListRuns(ctx, *limit)
	if err != nil {
		fmt.Fprintf(stdout, "[ERROR] %v\n", err)
		return exitOK
	}
	report.WriteRuns(stdout, runs)
	return exitOK
}

func runServe(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var common commonFlags
	common.register(fs)
	addr := fs.String("addr", ":8080", "listen address")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	cfg, logger, err := common.load()
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] %v\n", err)
		return exitUsage
	}
	defer logger.Sync()

	var history server.RunHistory
	if cfg.DBPath != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			logger.Warn("run history disabled", zap.Error(err))
		} else {
			defer st.Close()
			history = st
		}
	}

	rec := metrics.NewRecorder()
	p := batch.NewProcessor(cfg, logger)
	p.Metrics = rec

	ln, err := net.Listen("tcp", *addr)
	if err != nil {
		fmt.Fprintf(stderr, "[ERROR] listen %s: %v\n", *addr, err)
		return exitUsage
	}

	srv := &http.Server{
		Handler:           server.New(p, history, rec, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("listening", zap.String("addr", ln.Addr().String()))
	serveListening(ln.Addr())

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(stdout, "[ERROR] server stopped: %v\n", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}
	return exitOK
}
