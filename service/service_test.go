package service

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"agreement-radar/types"
)

type memRepo struct {
	agreements    []types.Agreement
	keyDates      []types.KeyDate
	createErr     error
	keyDatesErr   error
	searchQueries []string
}

func (m *memRepo) CreateAgreement(ctx context.Context, a *types.Agreement) error {
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	m.agreements = append(m.agreements, *a)
	return nil
}

func (m *memRepo) CreateKeyDates(ctx context.Context, kds []types.KeyDate) error {
	if m.keyDatesErr != nil {
		return m.keyDatesErr
	}
	m.keyDates = append(m.keyDates, kds...)
	return nil
}

func (m *memRepo) ListAgreements(ctx context.Context) ([]types.Agreement, error) {
	out := make([]types.Agreement, 0, len(m.agreements))
	for i := len(m.agreements) - 1; i >= 0; i-- {
		out = append(out, m.agreements[i])
	}
	return out, nil
}

func (m *memRepo) GetAgreement(ctx context.Context, id uuid.UUID) (*types.Agreement, error) {
	for _, a := range m.agreements {
		if a.ID == id {
			a := a
			return &a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memRepo) GetAgreementsByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Agreement, error) {
	var out []types.Agreement
	for _, id := range ids {
		if a, err := m.GetAgreement(ctx, id); err == nil {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memRepo) ListKeyDates(ctx context.Context, id uuid.UUID) ([]types.KeyDate, error) {
	var out []types.KeyDate
	for _, kd := range m.keyDates {
		if kd.AgreementID == id {
			out = append(out, kd)
		}
	}
	return out, nil
}

func (m *memRepo) ListAllKeyDates(ctx context.Context) ([]types.KeyDate, error) {
	return m.keyDates, nil
}

func (m *memRepo) ListKeyDatesBetween(ctx context.Context, from, to types.Date) ([]types.UpcomingKeyDate, error) {
	var out []types.UpcomingKeyDate
	for _, kd := range m.keyDates {
		if !kd.OccursOn.Before(from.Time) && !kd.OccursOn.After(to.Time) {
			out = append(out, types.UpcomingKeyDate{KeyDate: kd})
		}
	}
	return out, nil
}

func (m *memRepo) SearchByKeyword(ctx context.Context, keyword string, limit int) ([]types.Agreement, error) {
	m.searchQueries = append(m.searchQueries, keyword)
	var out []types.Agreement
	for _, a := range m.agreements {
		if strings.Contains(strings.ToLower(a.Vendor), strings.ToLower(keyword)) {
			out = append(out, a)
		}
	}
	return out, nil
}

type memObjects struct {
	puts map[string][]byte
	err  error
}

func (o *memObjects) Get(ctx context.Context, key string) ([]byte, error) {
	data, ok := o.puts[key]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: key, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (o *memObjects) KeyFor(fileName string) string { return "uploads/1700000000000-" + fileName }

func (o *memObjects) Put(ctx context.Context, key string, data []byte) error {
	if o.err != nil {
		return o.err
	}
	if o.puts == nil {
		o.puts = map[string][]byte{}
	}
	o.puts[key] = data
	return nil
}

type staticText string

func (s staticText) Extract(ctx context.Context, fileName string, data []byte) string {
	return string(s)
}

type stubFields struct {
	answer string
	err    error
	calls  int
}

func (f *stubFields) Extract(ctx context.Context, text string) (string, error) {
	f.calls++
	return f.answer, f.err
}

func (f *stubFields) ModelName() string { return "test-model" }

type stubIndex struct {
	indexed []uuid.UUID
	ids     []uuid.UUID
	err     error
}

func (s *stubIndex) IndexAgreement(ctx context.Context, a *types.Agreement, kds []types.KeyDate) error {
	s.indexed = append(s.indexed, a.ID)
	return s.err
}

func (s *stubIndex) SearchAgreementIDs(ctx context.Context, q string, topK int) ([]uuid.UUID, error) {
	return s.ids, s.err
}

const acmeAnswer = `{"vendor":"Acme","agreementTitle":"MSA","effectiveDate":"2024-09-16","termLengthMonths":12,"endDate":null,"autoRenews":true,"noticeDays":30,"explicitOptOutDate":null}`

func newTestService(repo *memRepo, objects *memObjects, fields *stubFields, idx SearchIndex) *AgreementService {
	svc := NewAgreementService(repo, objects, staticText("MASTER SERVICES AGREEMENT"), fields, idx, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2025, 8, 1, 9, 0, 0, 0, time.UTC) }
	return svc
}

func TestUpload_HappyPath(t *testing.T) {
	repo, objects, fields := &memRepo{}, &memObjects{}, &stubFields{answer: acmeAnswer}
	idx := &stubIndex{}
	svc := newTestService(repo, objects, fields, idx)

	a, err := svc.Upload(context.Background(), "msa.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, a.ID)
	assert.Equal(t, "Acme", a.Vendor)
	assert.Equal(t, "2025-09-15", a.EndDate.String())
	assert.Equal(t, 12, a.RenewalFrequencyMonths)
	assert.Equal(t, "uploads/1700000000000-msa.pdf", a.SourceFilePath)
	assert.Equal(t, "test-model", a.ModelName)
	assert.Len(t, a.SourceSHA256, 64)
	assert.Contains(t, objects.puts, a.SourceFilePath)

	require.Len(t, repo.keyDates, 3)
	assert.Equal(t, types.KeyDateNoticeDeadline, repo.keyDates[2].Kind)
	assert.Equal(t, "2025-08-16", repo.keyDates[2].OccursOn.String())
	assert.Equal(t, []uuid.UUID{a.ID}, idx.indexed)
}

func TestUpload_StorageFailureStopsBeforeModel(t *testing.T) {
	repo, fields := &memRepo{}, &stubFields{answer: acmeAnswer}
	svc := newTestService(repo, &memObjects{err: errors.New("disk full")}, fields, nil)

	_, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrStorage)
	assert.Zero(t, fields.calls)
	assert.Empty(t, repo.agreements)
}

func TestUpload_ExtractionFailures(t *testing.T) {
	cases := map[string]*stubFields{
		"model error":    {err: errors.New("timeout")},
		"not json":       {answer: "sorry, I cannot"},
		"missing keys":   {answer: `{"vendor":"Acme"}`},
		"bad date":       {answer: `{"vendor":"Acme","agreementTitle":"MSA","autoRenews":false,"endDate":"2025/09/15"}`},
		"trailing brace": {answer: acmeAnswer + "}"},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			repo := &memRepo{}
			svc := newTestService(repo, &memObjects{}, fields, nil)

			_, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
			assert.ErrorIs(t, err, ErrExtraction)
			assert.Empty(t, repo.agreements)
		})
	}
}

func TestUpload_EmptyVendorIsValidationError(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: `{"vendor":"  ","agreementTitle":"","autoRenews":false}`}, nil)

	_, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	var fields []string
	for _, issue := range verr.Issues {
		fields = append(fields, issue.Field)
	}
	assert.ElementsMatch(t, []string{"vendor", "title"}, fields)
	assert.Empty(t, repo.agreements)
}

func TestUpload_PersistenceFailure(t *testing.T) {
	repo := &memRepo{createErr: errors.New("connection refused")}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: acmeAnswer}, nil)

	_, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrPersistence)
	assert.Empty(t, repo.keyDates)
}

func TestUpload_KeyDateFailureKeepsAgreement(t *testing.T) {
	repo := &memRepo{keyDatesErr: errors.New("constraint")}
	idx := &stubIndex{err: errors.New("es down")}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: acmeAnswer}, idx)

	a, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Len(t, repo.agreements, 1)
	assert.Equal(t, a.ID, repo.agreements[0].ID)
}

func TestUpload_NoEndDateMeansNoKeyDates(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: `{"vendor":"Acme","agreementTitle":"MSA","autoRenews":true,"noticeDays":30}`}, nil)

	a, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Nil(t, a.EndDate)
	assert.Empty(t, repo.keyDates)
}

func TestUpload_NoFile(t *testing.T) {
	svc := newTestService(&memRepo{}, &memObjects{}, &stubFields{}, nil)
	_, err := svc.Upload(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestGet(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: acmeAnswer}, nil)
	a, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, a.ID, detail.Agreement.ID)
	assert.Len(t, detail.KeyDates, 3)

	_, err = svc.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSearch_UsesIndexThenFallsBack(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: acmeAnswer}, nil)
	a, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	require.NoError(t, err)

	idx := &stubIndex{ids: []uuid.UUID{a.ID}}
	svc.search = idx
	found, err := svc.Search(context.Background(), "acme")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Empty(t, repo.searchQueries)

	idx.err = errors.New("es down")
	found, err = svc.Search(context.Background(), " acme ")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, []string{"acme"}, repo.searchQueries)

	_, err = svc.Search(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestKeyDatesBetween(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: acmeAnswer}, nil)
	_, err := svc.Upload(context.Background(), "msa.pdf", []byte("x"))
	require.NoError(t, err)

	// default window is today (2025-08-01) .. +90 days
	rows, err := svc.KeyDatesBetween(context.Background(), types.KeyDateRange{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	rows, err = svc.KeyDatesBetween(context.Background(), types.KeyDateRange{From: "2025-08-01", To: "2025-08-31"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.KeyDateNoticeDeadline, rows[0].Kind)

	_, err = svc.KeyDatesBetween(context.Background(), types.KeyDateRange{From: "2025-13-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.KeyDatesBetween(context.Background(), types.KeyDateRange{From: "2025-09-01", To: "2025-08-01"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestListAndExport(t *testing.T) {
	repo := &memRepo{}
	svc := newTestService(repo, &memObjects{}, &stubFields{answer: acmeAnswer}, nil)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	_, err = svc.Upload(context.Background(), "first.pdf", []byte("1"))
	require.NoError(t, err)
	second, err := svc.Upload(context.Background(), "second.pdf", []byte("2"))
	require.NoError(t, err)

	list, err = svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	var buf bytes.Buffer
	require.NoError(t, svc.Export(context.Background(), &buf))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Key dates")
	require.NoError(t, err)
	assert.Len(t, rows, 7)
}

func TestDownload(t *testing.T) {
	repo, objects := &memRepo{}, &memObjects{}
	svc := newTestService(repo, objects, &stubFields{answer: acmeAnswer}, nil)
	a, err := svc.Upload(context.Background(), "msa.pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)

	file, err := svc.Download(context.Background(), a.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "msa.pdf", file.FileName)
	assert.Equal(t, []byte("%PDF-1.4"), file.Data)

	delete(objects.puts, a.SourceFilePath)
	_, err = svc.Download(context.Background(), a.ID.String())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Download(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
