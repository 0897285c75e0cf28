// Package keydates derives the calendar events that drive renewal reminders.
package keydates

import (
	"fmt"

	"github.com/google/uuid"

	"agreement-radar/types"
)

// Derive returns the key dates for an agreement. The order is for readability
// only; consumers must not treat it as chronological.
func Derive(end *types.Date, autoRenews bool, noticeDays int, agreementID uuid.UUID) []types.KeyDate {
	if end == nil || end.IsZero() {
		return nil
	}

	out := []types.KeyDate{{
		AgreementID: agreementID,
		Kind:        types.KeyDateTermEnd,
		OccursOn:    *end,
		Description: "Term ends",
	}}
	if !autoRenews {
		return out
	}

	// renewal coincides with term end
	out = append(out, types.KeyDate{
		AgreementID: agreementID,
		Kind:        types.KeyDateRenewal,
		OccursOn:    *end,
		Description: "Auto-renew",
	})
	if noticeDays > 0 {
		out = append(out, types.KeyDate{
			AgreementID: agreementID,
			Kind:        types.KeyDateNoticeDeadline,
			OccursOn:    end.AddDays(-noticeDays),
			Description: fmt.Sprintf("%d day notice", noticeDays),
		})
	}
	return out
}

// ForAgreement derives key dates from a persisted agreement.
func ForAgreement(a *types.Agreement) []types.KeyDate {
	return Derive(a.EndDate, a.AutoRenews, a.NoticeDays, a.ID)
}
