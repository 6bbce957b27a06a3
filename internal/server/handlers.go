package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/coilworks/slitplan/internal/export"
	"github.com/coilworks/slitplan/internal/importer"
	"github.com/coilworks/slitplan/internal/model"
	"github.com/coilworks/slitplan/internal/planner"
)

// ImportDiagnostics carries the row-level messages an uploaded file
// produced.
type ImportDiagnostics struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// OptimizeResponse is the JSON shape of a completed run.
type OptimizeResponse struct {
	Plan           model.Plan        `json:"plan"`
	Summary        export.Summary    `json:"summary"`
	PartialFailure bool              `json:"partial_failure"`
	CoilImport     ImportDiagnostics `json:"coil_import"`
	OrderImport    ImportDiagnostics `json:"order_import"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// importUpload parses one uploaded spreadsheet by extension.
func (s *Server) importUpload(fh *multipart.FileHeader) (importer.Result, error) {
	if fh.Size > s.cfg.Server.MaxUploadBytes {
		return importer.Result{}, fmt.Errorf("file %s exceeds upload limit", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return importer.Result{}, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".csv", ".txt":
		data, err := io.ReadAll(f)
		if err != nil {
			return importer.Result{}, err
		}
		return importer.ImportCSVData(data), nil
	default:
		return importer.ImportExcelFromReader(f), nil
	}
}

// runPlan parses both uploads and assembles the plan. It returns the
// response and an HTTP status; a non-zero message means the request
// was rejected before solving.
func (s *Server) runPlan(c *gin.Context) (*OptimizeResponse, int, string) {
	coilFile, err := c.FormFile("coils")
	if err != nil {
		return nil, http.StatusBadRequest, "missing coils file"
	}
	orderFile, err := c.FormFile("orders")
	if err != nil {
		return nil, http.StatusBadRequest, "missing orders file"
	}

	coilRes, err := s.importUpload(coilFile)
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}
	orderRes, err := s.importUpload(orderFile)
	if err != nil {
		return nil, http.StatusBadRequest, err.Error()
	}

	if len(coilRes.Records) == 0 {
		return nil, http.StatusUnprocessableEntity, "coils file contains no usable rows: " + strings.Join(coilRes.Errors, "; ")
	}

	ctx := c.Request.Context()
	if s.cfg.Planner.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Planner.SolveTimeout)
		defer cancel()
	}

	plan, err := s.asm.Assemble(ctx, coilRes.Coils(), orderRes.Orders())
	s.metrics.RecordPlan()

	partial := false
	if err != nil {
		var pf *planner.PartialFailureError
		if !errors.As(err, &pf) {
			return nil, http.StatusInternalServerError, err.Error()
		}
		partial = true
		s.log.Warnf("plan assembled with failures: %v", err)
	}

	return &OptimizeResponse{
		Plan:           plan,
		Summary:        export.Summarize(plan),
		PartialFailure: partial,
		CoilImport:     ImportDiagnostics{Errors: coilRes.Errors, Warnings: coilRes.Warnings},
		OrderImport:    ImportDiagnostics{Errors: orderRes.Errors, Warnings: orderRes.Warnings},
	}, http.StatusOK, ""
}

// handleOptimize runs a full optimization from two uploaded
// spreadsheets and returns the plan as JSON. Partial failure is still
// a 200: failed slots carry their marker and the caller decides
// whether the plan is acceptable.
func (s *Server) handleOptimize(c *gin.Context) {
	resp, status, msg := s.runPlan(c)
	if msg != "" {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, resp)
}

// handleReport runs a full optimization and renders the utilization
// chart as a standalone HTML page.
func (s *Server) handleReport(c *gin.Context) {
	resp, status, msg := s.runPlan(c)
	if msg != "" {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := export.RenderChart(c.Writer, resp.Plan); err != nil {
		s.log.Errorf("render chart: %v", err)
	}
}

func (s *Server) handleDownloadCoils(c *gin.Context) {
	s.serveSample(c, "inventory.xlsx", export.SampleCoilsWorkbook)
}

func (s *Server) handleDownloadOrders(c *gin.Context) {
	s.serveSample(c, "order.xlsx", export.SampleOrdersWorkbook)
}

// serveSample streams a generated sample workbook, mirroring the
// default-file download links of the legacy tool.
func (s *Server) serveSample(c *gin.Context, name string, build func() (*excelize.File, error)) {
	f, err := build()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Status(http.StatusOK)
	if _, err := f.WriteTo(c.Writer); err != nil {
		s.log.Errorf("stream %s: %v", name, err)
	}
}
