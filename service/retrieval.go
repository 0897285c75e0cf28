package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"agreement-radar/logic/export"
	"agreement-radar/types"
)

const (
	searchLimit         = 20
	defaultCalendarDays = 90
)

// AgreementDetail is one agreement with its derived key dates.
type AgreementDetail struct {
	Agreement *types.Agreement `json:"agreement"`
	KeyDates  []types.KeyDate  `json:"keyDates"`
}

// List returns every agreement, newest first.
func (s *AgreementService) List(ctx context.Context) ([]types.Agreement, error) {
	agreements, err := s.repo.ListAgreements(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if agreements == nil {
		agreements = []types.Agreement{}
	}
	return agreements, nil
}

func (s *AgreementService) Get(ctx context.Context, rawID string) (*AgreementDetail, error) {
	agreement, err := s.lookup(ctx, rawID)
	if err != nil {
		return nil, err
	}
	keyDates, err := s.repo.ListKeyDates(ctx, agreement.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if keyDates == nil {
		keyDates = []types.KeyDate{}
	}
	return &AgreementDetail{Agreement: agreement, KeyDates: keyDates}, nil
}

// SourceFile is the originally uploaded document of an agreement.
type SourceFile struct {
	FileName string
	Data     []byte
}

// Download returns the raw bytes stored for an agreement.
func (s *AgreementService) Download(ctx context.Context, rawID string) (*SourceFile, error) {
	agreement, err := s.lookup(ctx, rawID)
	if err != nil {
		return nil, err
	}

	data, err := s.objects.Get(ctx, agreement.SourceFilePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: source file of agreement %s", ErrNotFound, agreement.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return &SourceFile{FileName: agreement.SourceFileName, Data: data}, nil
}

// Search looks agreements up by vendor, title or file name. The search index
// is used when configured and reachable; the repository LIKE query otherwise.
func (s *AgreementService) Search(ctx context.Context, query string) ([]types.Agreement, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query must not be empty", ErrInvalidInput)
	}

	if s.search != nil {
		ids, err := s.search.SearchAgreementIDs(ctx, query, searchLimit)
		if err == nil {
			agreements, err := s.repo.GetAgreementsByIDs(ctx, ids)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
			}
			return agreements, nil
		}
		s.log.Warn().Err(err).Str("query", query).Msg("search index unavailable, falling back to SQL")
	}

	agreements, err := s.repo.SearchByKeyword(ctx, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if agreements == nil {
		agreements = []types.Agreement{}
	}
	return agreements, nil
}

// KeyDatesBetween is the calendar feed. Empty bounds default to today and
// today + 90 days.
func (s *AgreementService) KeyDatesBetween(ctx context.Context, rng types.KeyDateRange) ([]types.UpcomingKeyDate, error) {
	today := types.DateOf(s.now())
	from, to := today, today.AddDays(defaultCalendarDays)

	if rng.From != "" {
		d, err := types.ParseDate(rng.From)
		if err != nil {
			return nil, fmt.Errorf("%w: from: %v", ErrInvalidInput, err)
		}
		from = d
	}
	if rng.To != "" {
		d, err := types.ParseDate(rng.To)
		if err != nil {
			return nil, fmt.Errorf("%w: to: %v", ErrInvalidInput, err)
		}
		to = d
	}
	if to.Before(from.Time) {
		return nil, fmt.Errorf("%w: to %s is before from %s", ErrInvalidInput, to, from)
	}

	rows, err := s.repo.ListKeyDatesBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if rows == nil {
		rows = []types.UpcomingKeyDate{}
	}
	return rows, nil
}

// Export writes every agreement and key date as an XLSX workbook.
func (s *AgreementService) Export(ctx context.Context, w io.Writer) error {
	agreements, err := s.repo.ListAgreements(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	keyDates, err := s.repo.ListAllKeyDates(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return export.WriteWorkbook(w, agreements, keyDates)
}

func (s *AgreementService) lookup(ctx context.Context, rawID string) (*types.Agreement, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: id %q is not a UUID", ErrInvalidInput, rawID)
	}
	agreement, err := s.repo.GetAgreement(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: agreement %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return agreement, nil
}
