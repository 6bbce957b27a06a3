package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/coilworks/slitplan/internal/export"
	"github.com/coilworks/slitplan/internal/importer"
	"github.com/coilworks/slitplan/internal/logger"
	"github.com/coilworks/slitplan/internal/planner"
	"github.com/coilworks/slitplan/internal/solver"
)

var (
	planCoilsPath  string
	planOrdersPath string
	planOutPath    string
	planFormat     string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Run a one-shot optimization over spreadsheet files",
	RunE:  runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planCoilsPath, "coils", "", "coil inventory file (.xlsx or .csv)")
	planCmd.Flags().StringVar(&planOrdersPath, "orders", "", "order catalog file (.xlsx or .csv)")
	planCmd.Flags().StringVarP(&planOutPath, "out", "o", "", "output file (default: stdout for json)")
	planCmd.Flags().StringVarP(&planFormat, "format", "f", "json", "output format: json, xlsx, pdf, html, labels")
	_ = planCmd.MarkFlagRequired("coils")
	_ = planCmd.MarkFlagRequired("orders")
	rootCmd.AddCommand(planCmd)
}

func importFile(path string) importer.Result {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return importer.ImportCSV(path)
	}
	return importer.ImportExcel(path)
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New("plan")

	coilRes := importFile(planCoilsPath)
	orderRes := importFile(planOrdersPath)
	for _, w := range append(coilRes.Warnings, orderRes.Warnings...) {
		log.Warnf("import: %s", w)
	}
	for _, e := range append(coilRes.Errors, orderRes.Errors...) {
		log.Errorf("import: %s", e)
	}
	if len(coilRes.Records) == 0 {
		return fmt.Errorf("no usable coil rows in %s", planCoilsPath)
	}

	sv := solver.New()
	if cfg.Solver.MaxCells > 0 {
		sv.MaxCells = cfg.Solver.MaxCells
	}
	asm := &planner.Assembler{Solver: sv, Workers: cfg.Planner.Workers}

	if cfg.Planner.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Planner.SolveTimeout)
		defer cancel()
	}

	plan, err := asm.Assemble(ctx, coilRes.Coils(), orderRes.Orders())
	if err != nil {
		var pf *planner.PartialFailureError
		if !errors.As(err, &pf) {
			return err
		}
		log.Warnf("%v; failed slots remain in the plan", err)
	}

	s := export.Summarize(plan)
	log.Infof("%d coils planned, %d failed, mean utilization %.1f%%", s.Coils, s.Failed, s.MeanUtilization)

	switch strings.ToLower(planFormat) {
	case "json":
		out := os.Stdout
		if planOutPath != "" {
			f, err := os.Create(planOutPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(plan)
	case "xlsx":
		return export.WriteWorkbook(requireOut(), plan)
	case "pdf":
		return export.ExportPDF(requireOut(), plan)
	case "labels":
		return export.ExportLabels(requireOut(), plan)
	case "html":
		f, err := os.Create(requireOut())
		if err != nil {
			return err
		}
		defer f.Close()
		return export.RenderChart(f, plan)
	default:
		return fmt.Errorf("unsupported format: %s", planFormat)
	}
}

// requireOut falls back to a format-derived default output name.
func requireOut() string {
	if planOutPath != "" {
		return planOutPath
	}
	return "plan." + strings.ToLower(planFormat)
}
