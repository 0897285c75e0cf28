package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"agreement-radar/logic/ingestion/extract"
	"agreement-radar/logic/ingestion/record"
	"agreement-radar/logic/keydates"
	"agreement-radar/types"
)

// AgreementStore is the relational side of the service.
type AgreementStore interface {
	CreateAgreement(ctx context.Context, agreement *types.Agreement) error
	CreateKeyDates(ctx context.Context, keyDates []types.KeyDate) error
	ListAgreements(ctx context.Context) ([]types.Agreement, error)
	GetAgreement(ctx context.Context, id uuid.UUID) (*types.Agreement, error)
	GetAgreementsByIDs(ctx context.Context, ids []uuid.UUID) ([]types.Agreement, error)
	ListKeyDates(ctx context.Context, agreementID uuid.UUID) ([]types.KeyDate, error)
	ListAllKeyDates(ctx context.Context) ([]types.KeyDate, error)
	ListKeyDatesBetween(ctx context.Context, from, to types.Date) ([]types.UpcomingKeyDate, error)
	SearchByKeyword(ctx context.Context, keyword string, limit int) ([]types.Agreement, error)
}

// ObjectStore keeps the raw uploaded bytes.
type ObjectStore interface {
	KeyFor(fileName string) string
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// TextExtractor turns document bytes into plain text; it never fails.
type TextExtractor interface {
	Extract(ctx context.Context, fileName string, data []byte) string
}

// FieldExtractor asks the language model for the raw JSON answer.
type FieldExtractor interface {
	Extract(ctx context.Context, text string) (string, error)
	ModelName() string
}

// SearchIndex mirrors agreements for keyword search. Optional.
type SearchIndex interface {
	IndexAgreement(ctx context.Context, agreement *types.Agreement, keyDates []types.KeyDate) error
	SearchAgreementIDs(ctx context.Context, query string, topK int) ([]uuid.UUID, error)
}

type AgreementService struct {
	repo    AgreementStore
	objects ObjectStore
	text    TextExtractor
	fields  FieldExtractor
	search  SearchIndex
	log     zerolog.Logger
	now     func() time.Time
}

// 构造函数：依赖注入。search 可以为 nil
func NewAgreementService(repo AgreementStore, objects ObjectStore, text TextExtractor, fields FieldExtractor, search SearchIndex, log zerolog.Logger) *AgreementService {
	return &AgreementService{
		repo:    repo,
		objects: objects,
		text:    text,
		fields:  fields,
		search:  search,
		log:     log,
		now:     time.Now,
	}
}

// Upload runs the ingestion pipeline for one document: text extraction, raw
// storage, field extraction, normalization, record building, insert and key
// date derivation. The returned agreement is the persisted row.
func (s *AgreementService) Upload(ctx context.Context, fileName string, data []byte) (*types.Agreement, error) {
	if fileName == "" && len(data) == 0 {
		return nil, ErrNoFile
	}
	start := s.now()
	log := s.log.With().Str("file", fileName).Int("bytes", len(data)).Logger()

	sum := sha256.Sum256(data)
	digest := hex.EncodeToString(sum[:])

	text := s.text.Extract(ctx, fileName, data)
	log.Debug().Int("chars", len(text)).Msg("text extracted")

	key := s.objects.KeyFor(fileName)
	if err := s.objects.Put(ctx, key, data); err != nil {
		log.Error().Err(err).Str("key", key).Msg("raw upload failed")
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	llmStart := s.now()
	raw, err := s.fields.Extract(ctx, text)
	if err != nil {
		log.Error().Err(err).Msg("field extraction failed")
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	log.Debug().Dur("took", s.now().Sub(llmStart)).Msg("model answered")

	fields, err := extract.Normalize([]byte(raw))
	if err != nil {
		log.Warn().Err(err).Msg("model output rejected")
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	agreement, err := record.Build(fields, record.UploadMeta{
		FileName:  fileName,
		FilePath:  key,
		SHA256:    digest,
		ModelName: s.fields.ModelName(),
		RawJSON:   []byte(raw),
	})
	if err != nil {
		var verr *record.ValidationError
		if errors.As(err, &verr) {
			return nil, &ValidationError{Issues: verr.Issues}
		}
		return nil, err
	}

	if err := s.repo.CreateAgreement(ctx, agreement); err != nil {
		log.Error().Err(err).Msg("insert agreement failed")
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	keyDates := keydates.ForAgreement(agreement)
	if err := s.repo.CreateKeyDates(ctx, keyDates); err != nil {
		// the agreement stays; its key dates can be re-derived later
		log.Error().Err(err).Str("agreement_id", agreement.ID.String()).Msg("insert key dates failed")
	}

	if s.search != nil {
		if err := s.search.IndexAgreement(ctx, agreement, keyDates); err != nil {
			log.Warn().Err(err).Str("agreement_id", agreement.ID.String()).Msg("search index failed")
		}
	}

	log.Info().
		Str("agreement_id", agreement.ID.String()).
		Int("key_dates", len(keyDates)).
		Dur("took", s.now().Sub(start)).
		Msg("agreement ingested")
	return agreement, nil
}
