// Package main provides the CLI entrypoint for api-projector.
//
// api-projector reads a parsed library snapshot (JSON) and a projection
// configuration (YAML), projects the declared API onto target-language
// modules and reports the resulting tree, boundary calls and diagnostics.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"

	"api-projector/internal/assemble"
	"api-projector/internal/config"
	"api-projector/internal/decl"
	"api-projector/internal/diagnostic"
)

func main() {
	snapshotPath := flag.String("snapshot", "snapshot.json", "Parsed library snapshot (JSON)")
	configPath := flag.String("config", "projection.yaml", "Projection configuration (YAML)")
	reportPath := flag.String("report", "", "Write the projection report to this file (JSON)")
	verbose := flag.Bool("v", false, "Dump the full module tree")
	flag.Parse()

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(*snapshotPath, *configPath, *reportPath, *verbose, log); err != nil {
		log.Error("projection failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(snapshotPath, configPath, reportPath string, verbose bool, log *zap.Logger) error {
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}

	snap, err := loadSnapshot(snapshotPath)
	if err != nil {
		return err
	}

	log.Info("snapshot loaded",
		zap.String("library", cfg.Library),
		zap.Int("types", len(snap.Types)),
		zap.Int("methods", len(snap.Methods)))

	out, runErr := assemble.Run(snap, cfg, log)

	printDiagnostics(out.Diagnostics)

	if verbose && out.Modules != nil {
		spew.Dump(out.Modules)
	}

	if reportPath != "" {
		if err := writeReport(out, reportPath); err != nil {
			return err
		}
	}

	return runErr
}

func loadSnapshot(path string) (*decl.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file %s: %w", path, err)
	}

	var snap decl.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}

	return &snap, nil
}

func printDiagnostics(diags *diagnostic.Diagnostics) {
	for _, d := range diags.Errors {
		fmt.Fprintln(os.Stderr, "error:", d.String())
	}

	for _, d := range diags.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", d.String())
	}
}

// report is the serializable summary of a projection run.
type report struct {
	Modules     []*assemble.Module        `json:"modules"`
	Units       []assemble.UnitModule     `json:"units"`
	Calls       []assemble.CallDescriptor `json:"calls"`
	Diagnostics *diagnostic.Diagnostics   `json:"diagnostics"`
}

func writeReport(out *assemble.Output, path string) error {
	data, err := json.MarshalIndent(report{
		Modules:     out.Modules,
		Units:       out.Units,
		Calls:       out.CallDescriptors,
		Diagnostics: out.Diagnostics,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write report file %s: %w", path, err)
	}

	return nil
}
