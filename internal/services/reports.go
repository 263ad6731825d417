package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/store"
)

// URLPrefix is where UPLOAD_DIR is served.
const URLPrefix = "/uploads"

// reportExts are the document types accepted for upload. Anything a browser
// would render as active content (html, svg, js) is refused.
var reportExts = map[string]bool{
	".pdf": true, ".txt": true, ".csv": true,
	".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".odt": true, ".ods": true,
	".png": true, ".jpg": true, ".jpeg": true,
}

// ReportService stores uploaded report files on disk and their metadata in
// the store.
type ReportService struct {
	store store.Reports
	dir   string
}

func NewReportService(st store.Reports, dir string) (*ReportService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &ReportService{store: st, dir: dir}, nil
}

type NewReport struct {
	Title       string
	Description string
	Filename    string
	Body        io.Reader
}

func (s *ReportService) Create(ctx context.Context, actor models.Actor, in NewReport) (*models.Report, error) {
	if _, ok := actor.(models.Admin); !ok {
		return nil, fmt.Errorf("%w: only admins upload reports", models.ErrForbidden)
	}
	if strings.TrimSpace(in.Title) == "" || in.Body == nil {
		return nil, fmt.Errorf("%w: title and file are required", models.ErrValidation)
	}

	ext := strings.ToLower(filepath.Ext(filepath.Base(in.Filename)))
	if !reportExts[ext] {
		return nil, fmt.Errorf("%w: file type %q is not accepted", models.ErrValidation, ext)
	}

	id := uuid.NewString()
	name := id + ext
	dst := filepath.Join(s.dir, name)
	if err := writeFile(dst, in.Body); err != nil {
		return nil, err
	}

	r := &models.Report{
		ID:          id,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		FilePath:    path.Join(URLPrefix, name),
	}
	if err := s.store.CreateReport(ctx, r); err != nil {
		_ = os.Remove(dst)
		return nil, err
	}
	log.Printf("[reports] stored %s as %s", r.ID, r.FilePath)
	return r, nil
}

func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	return s.store.ListReports(ctx)
}

func (s *ReportService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, ok := actor.(models.Admin); !ok {
		return fmt.Errorf("%w: only admins delete reports", models.ErrForbidden)
	}
	r, err := s.store.GetReport(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteReport(ctx, id); err != nil {
		return err
	}
	file := filepath.Join(s.dir, path.Base(r.FilePath))
	if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[reports] remove %s: %v", file, err)
	}
	return nil
}

func writeFile(dst string, body io.Reader) error {
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("write report file: %w", err)
	}
	return f.Close()
}
