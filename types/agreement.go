package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ParseStatusParsed is the only status the ingestion pipeline produces.
const ParseStatusParsed = "parsed"

// ExtractedFields is the normalized shape of the model's JSON answer.
type ExtractedFields struct {
	Vendor                 string `json:"vendor"`
	AgreementTitle         string `json:"agreementTitle"`
	EffectiveDate          *Date  `json:"effectiveDate"`
	TermLengthMonths       int    `json:"termLengthMonths"`
	EndDate                *Date  `json:"endDate"`
	AutoRenews             bool   `json:"autoRenews"`
	NoticeDays             int    `json:"noticeDays"`
	ExplicitOptOutDate     *Date  `json:"explicitOptOutDate"`
	RenewalFrequencyMonths int    `json:"renewalFrequencyMonths"`
}

// Agreement 对应数据库里的 agreements 表
type Agreement struct {
	ID                     uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Vendor                 string         `gorm:"column:vendor;type:varchar(255);not null;index" json:"vendor"`
	Title                  string         `gorm:"column:title;type:varchar(512);not null" json:"title"`
	EffectiveDate          *Date          `gorm:"column:effective_on;type:date" json:"effectiveDate"`
	EndDate                *Date          `gorm:"column:end_on;type:date;index" json:"endDate"`
	TermLengthMonths       int            `gorm:"column:term_months;not null;default:0" json:"termLengthMonths"`
	AutoRenews             bool           `gorm:"column:auto_renews;not null;default:false" json:"autoRenews"`
	NoticeDays             int            `gorm:"column:notice_days;not null;default:0" json:"noticeDays"`
	ExplicitOptOutDate     *Date          `gorm:"column:explicit_opt_out_on;type:date" json:"explicitOptOutDate"`
	RenewalFrequencyMonths int            `gorm:"column:renewal_frequency_months;not null;default:12" json:"renewalFrequencyMonths"`
	SourceFileName         string         `gorm:"column:source_file_name;type:varchar(255);not null" json:"sourceFileName"`
	SourceFilePath         string         `gorm:"column:source_file_path;type:varchar(1024);not null" json:"sourceFilePath"`
	SourceSHA256           string         `gorm:"column:source_sha256;type:varchar(64);index" json:"sourceSha256,omitempty"`
	ModelName              string         `gorm:"column:model_name;type:varchar(128)" json:"modelName,omitempty"`
	ParseStatus            string         `gorm:"column:parse_status;type:varchar(32);not null" json:"parseStatus"`
	RawExtraction          datatypes.JSON `gorm:"column:raw_extraction" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Agreement) TableName() string {
	return "agreements"
}

// BeforeCreate assigns the server-side id when the caller did not.
func (a *Agreement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type KeyDateKind string

const (
	KeyDateTermEnd        KeyDateKind = "TERM_END"
	KeyDateRenewal        KeyDateKind = "RENEWAL"
	KeyDateNoticeDeadline KeyDateKind = "NOTICE_DEADLINE"
)

// KeyDate 对应 key_dates 表，每条记录属于一份 Agreement
type KeyDate struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	AgreementID uuid.UUID   `gorm:"column:agreement_id;type:uuid;not null;index" json:"agreementId"`
	Kind        KeyDateKind `gorm:"column:kind;type:varchar(32);not null" json:"kind"`
	OccursOn    Date        `gorm:"column:occurs_on;type:date;not null;index" json:"occursOn"`
	Description string      `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	CreatedAt   time.Time   `gorm:"column:created_at" json:"createdAt"`
}

func (KeyDate) TableName() string {
	return "key_dates"
}

func (k *KeyDate) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// UpcomingKeyDate is a key date joined with the owning agreement, used by the
// calendar feed and the reminder job.
type UpcomingKeyDate struct {
	KeyDate
	Vendor string `json:"vendor"`
	Title  string `json:"title"`
}
