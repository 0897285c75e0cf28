package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"agreement-radar/types"
)

func TestWriteWorkbook(t *testing.T) {
	end := types.NewDate(2025, time.September, 15)
	a := types.Agreement{
		ID:                     uuid.New(),
		Vendor:                 "Acme",
		Title:                  "MSA",
		EndDate:                &end,
		AutoRenews:             true,
		NoticeDays:             30,
		RenewalFrequencyMonths: 12,
		SourceFileName:         "msa.pdf",
		CreatedAt:              time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	keyDates := []types.KeyDate{
		{AgreementID: a.ID, Kind: types.KeyDateNoticeDeadline, OccursOn: end.AddDays(-30), Description: "30 day notice"},
		{AgreementID: a.ID, Kind: types.KeyDateTermEnd, OccursOn: end, Description: "Term ends"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, []types.Agreement{a}, keyDates))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{AgreementsSheet, KeyDatesSheet}, f.GetSheetList())

	rows, err := f.GetRows(AgreementsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, agreementHeaders, rows[0])
	assert.Equal(t, "Acme", rows[1][0])
	assert.Equal(t, "", rows[1][2])
	assert.Equal(t, "2025-09-15", rows[1][3])
	assert.Equal(t, "yes", rows[1][5])
	assert.Equal(t, "30", rows[1][6])
	assert.Equal(t, "2025-01-02 03:04:05", rows[1][10])

	rows, err = f.GetRows(KeyDatesSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2025-08-16", "NOTICE_DEADLINE", "30 day notice", "Acme", "MSA"}, rows[1])
	assert.Equal(t, "TERM_END", rows[2][1])
}

func TestWriteWorkbook_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkbook(&buf, nil, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(KeyDatesSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
