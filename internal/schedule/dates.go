package schedule

import (
	"time"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
)

// DownPaymentDate is the start date rolled forward off a weekend.
func DownPaymentDate(start time.Time) time.Time {
	return datetime.MoveToBusinessDay(start)
}

// InstallmentDate is the due date of installment i (1-based): 30*i calendar
// days after start, rolled forward off a weekend.
func InstallmentDate(start time.Time, i int) time.Time {
	return datetime.MoveToBusinessDay(datetime.AddDays(start, constants.InstallmentCadenceDays*i))
}
