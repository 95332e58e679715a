package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/stoltzen/stoltzen-cli/internal/fetcher"
	"github.com/stoltzen/stoltzen-cli/internal/pipeline"
	"github.com/stoltzen/stoltzen-cli/internal/report"
)

// stdoutPath selects standard output for --output.
const stdoutPath = "-"

var errBinaryToTerminal = eris.New("xlsx output needs --output <file> when stdout is a terminal")

// stdoutIsTerminal is swapped in tests.
var stdoutIsTerminal = report.IsTerminal

// outputFlags are shared by every report-producing command.
type outputFlags struct {
	format string
	output string
	year   int
}

// resolve fills unset flags: year defaults to the current calendar year,
// format to fallback.
func (o outputFlags) resolve(fallback string) (report.Format, int, error) {
	name := o.format
	if name == "" {
		name = fallback
	}
	f, err := report.ParseFormat(name)
	if err != nil {
		return "", 0, err
	}

	year := o.year
	if year == 0 {
		year = time.Now().Year()
	}
	return f, year, nil
}

func newDriver() *pipeline.Driver {
	f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		UserAgent:    cfg.Fetch.UserAgent,
		Timeout:      cfg.Fetch.Timeout(),
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes(),
		RatePerSec:   cfg.Fetch.RatePerSec,
	})
	return pipeline.NewDriver(f, pipeline.Options{
		BaseURL:     cfg.Source.BaseURL,
		Concurrency: cfg.Enrich.Concurrency,
	})
}

// writeReport writes res to path ("-" for stdout) and, when stderr is a
// terminal, prints a summary table there.
func writeReport(res *pipeline.Result, format report.Format, path string, stdout, stderr io.Writer) error {
	if path == stdoutPath {
		if err := res.Report.Write(stdout, format); err != nil {
			return err
		}
	} else {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrap(err, "create output file")
		}
		if err := res.Report.Write(f, format); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrap(err, "close output file")
		}
	}

	if report.IsTerminal(stderr) {
		if err := res.Report.RenderSummary(stderr); err != nil {
			zap.L().Debug("render summary", zap.Error(err))
		}
	}

	zap.L().Info("report written",
		zap.String("format", string(format)),
		zap.String("output", path),
		zap.Int("participants", res.Report.Len()),
		zap.Int("skipped", res.Skipped),
		zap.Int("dropped", res.Dropped),
		zap.Int("profiles_failed", res.Enrich.Failed),
	)
	return nil
}

// runAndWrite is the common tail of every command: run, then write.
func runAndWrite(ctx context.Context, run func(ctx context.Context, year int) (*pipeline.Result, error), flags outputFlags, fallbackFormat string, stdout, stderr io.Writer) error {
	format, year, err := flags.resolve(fallbackFormat)
	if err != nil {
		return err
	}
	if format == report.FormatXLSX && flags.output == stdoutPath && stdoutIsTerminal(stdout) {
		return errBinaryToTerminal
	}

	res, err := run(ctx, year)
	if err != nil {
		return err
	}
	return writeReport(res, format, flags.output, stdout, stderr)
}
