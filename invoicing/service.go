package invoicing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/event-invoicer/config"
	"github.com/yourusername/event-invoicer/models"
	"github.com/yourusername/event-invoicer/render"
)

// ErrPDFNotWritten marks a save whose invoice was stored but whose PDF was not.
var ErrPDFNotWritten = errors.New("invoice saved but the PDF could not be written")

// InvoiceStore is the persistence the service needs.
type InvoiceStore interface {
	CreateInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoice(ctx context.Context, id uint) (*models.Invoice, error)
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
}

// Service saves drafts and renders invoice documents.
type Service struct {
	store        InvoiceStore
	outputDir    string
	duplicateDir string
	document     render.Options
	logger       *logrus.Logger
}

func NewService(store InvoiceStore, cfg *config.Config, logger *logrus.Logger) (*Service, error) {
	terms, err := loadTerms(cfg.TermsFile)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:        store,
		outputDir:    cfg.OutputDir,
		duplicateDir: cfg.DuplicateDir,
		logger:       logger,
		document: render.Options{
			BusinessName:    cfg.BusinessName,
			BusinessAddress: cfg.BusinessAddress,
			BusinessPhone:   cfg.BusinessPhone,
			LogoPath:        cfg.LogoPath,
			Terms:           terms,
			Bank: render.BankDetails{
				Name:          cfg.BankName,
				AccountName:   cfg.BankAccountName,
				AccountNumber: cfg.BankAccountNumber,
				SortCode:      cfg.BankSortCode,
			},
		},
	}, nil
}

// Save persists the draft and renders the original copy into the output
// directory. An invalid draft is rejected before anything is written. When
// only rendering fails the saved invoice is still returned with the error.
func (s *Service) Save(ctx context.Context, draft *Draft) (*models.Invoice, string, error) {
	inv, err := draft.Invoice()
	if err != nil {
		return nil, "", err
	}

	if err := s.store.CreateInvoice(ctx, inv); err != nil {
		return nil, "", fmt.Errorf("save invoice: %w", err)
	}

	saved, err := s.store.GetInvoice(ctx, inv.ID)
	if err != nil {
		return inv, "", fmt.Errorf("reload saved invoice %d: %w", inv.ID, err)
	}

	path, err := render.WriteFile(s.outputDir, saved, s.document)
	if err != nil {
		s.logger.WithError(err).WithField("invoice_id", saved.ID).Error("invoice saved without PDF")
		return saved, "", fmt.Errorf("%w: %w", ErrPDFNotWritten, err)
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id": saved.ID,
		"items":      len(saved.Items),
		"total":      saved.TotalAmount.StringFixed(2),
		"path":       path,
	}).Info("invoice saved")
	return saved, path, nil
}

// Regenerate renders the duplicate copy of a stored invoice, including the
// terms page, into the duplicate directory.
func (s *Service) Regenerate(ctx context.Context, id uint) (*models.Invoice, string, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, "", err
	}
	s.checkTotal(inv)

	opts := s.document
	opts.Duplicate = true
	path, err := render.WriteFile(s.duplicateDir, inv, opts)
	if err != nil {
		return inv, "", err
	}

	s.logger.WithFields(logrus.Fields{
		"invoice_id": inv.ID,
		"path":       path,
	}).Info("duplicate rendered")
	return inv, path, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	return s.store.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]models.Invoice, error) {
	return s.store.ListInvoices(ctx)
}

// checkTotal warns when the stored total disagrees with its items. The
// stored total is what gets printed.
func (s *Service) checkTotal(inv *models.Invoice) {
	if sum := inv.ItemsTotal(); !sum.Equal(inv.TotalAmount) {
		s.logger.WithFields(logrus.Fields{
			"invoice_id":  inv.ID,
			"stored":      inv.TotalAmount.StringFixed(2),
			"items_total": sum.StringFixed(2),
		}).Warn("stored total does not match item totals")
	}
}

// loadTerms reads one term per paragraph; paragraphs are separated by blank lines.
func loadTerms(path string) ([]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read terms file: %w", err)
	}

	var terms []string
	for _, para := range strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n\n") {
		if para = strings.Join(strings.Fields(para), " "); para != "" {
			terms = append(terms, para)
		}
	}
	return terms, nil
}
