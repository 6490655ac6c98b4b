package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/krs-admin-api/internal/models"
	"github.com/noah-isme/krs-admin-api/internal/query"
	appErrors "github.com/noah-isme/krs-admin-api/pkg/errors"
	"github.com/noah-isme/krs-admin-api/pkg/export"
)

type exportRepository interface {
	ListAll(ctx context.Context, q query.ListQuery, maxRows int) ([]models.EnrollmentRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// Export formats accepted by the export endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportFile is a rendered export ready to stream as an attachment.
type ExportFile struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExportService renders the filtered enrollment view as a downloadable file.
type ExportService struct {
	enrollments exportRepository
	csv         csvRenderer
	pdf         pdfRenderer
	maxRows     int
	logger      *zap.Logger
}

// NewExportService constructs an ExportService. maxRows caps how many rows a
// single export may fetch; zero means unbounded.
func NewExportService(enrollments exportRepository, csv csvRenderer, pdf pdfRenderer, maxRows int, logger *zap.Logger) *ExportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{enrollments: enrollments, csv: csv, pdf: pdf, maxRows: maxRows, logger: logger}
}

var exportHeaders = []string{"ID", "NIM", "Student", "Course Code", "Course", "Semester", "Academic Year", "Status", "Created At", "Updated At"}

// Generate fetches the complete filtered result set and renders it in the
// requested format. An empty format defaults to CSV.
func (s *ExportService) Generate(ctx context.Context, q query.ListQuery, format string) (*ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = ExportFormatCSV
	}
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Validation("validation failed", map[string]string{"format": "format must be csv or pdf"})
	}

	rows, err := s.enrollments.ListAll(ctx, q, s.maxRows)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to export enrollments")
	}

	dataset := buildEnrollmentDataset(rows)
	timestamp := time.Now().UTC().Format("20060102_150405")

	switch format {
	case ExportFormatPDF:
		payload, err := s.pdf.Render(dataset, "Enrollments")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{
			Content:     payload,
			Filename:    fmt.Sprintf("enrollments_%s.pdf", timestamp),
			ContentType: "application/pdf",
		}, nil
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{
			Content:     payload,
			Filename:    fmt.Sprintf("enrollments_%s.csv", timestamp),
			ContentType: "text/csv",
		}, nil
	}
}

func buildEnrollmentDataset(rows []models.EnrollmentRow) export.Dataset {
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		dataRows = append(dataRows, map[string]string{
			"ID":            strconv.FormatInt(row.ID, 10),
			"NIM":           row.StudentNIM,
			"Student":       row.StudentName,
			"Course Code":   row.CourseCode,
			"Course":        row.CourseName,
			"Semester":      strconv.Itoa(row.Semester),
			"Academic Year": row.AcademicYear,
			"Status":        string(row.Status),
			"Created At":    row.CreatedAt.UTC().Format(time.RFC3339),
			"Updated At":    row.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: dataRows}
}
