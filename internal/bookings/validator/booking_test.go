package validator

import (
	"io"
	"testing"

	"courtside/pkg/logger"
	"courtside/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) *BookingValidator {
	t.Helper()
	return NewBookingValidator(logger.New(logger.Options{Level: "error", Output: io.Discard}))
}

func validBooking() *model.Booking {
	return &model.Booking{
		FacilityID:   "656f000000000000000000aa",
		FacilityName: "Tennis Court A",
		UserID:       "resident-1",
		Date:         "2026-09-07",
		Slot:         "09:00 - 10:00",
		Status:       model.BookingPending,
	}
}

func TestValidateBooking(t *testing.T) {
	v := newTestValidator(t)

	t.Run("valid booking passes", func(t *testing.T) {
		assert.NoError(t, v.Validate(validBooking()))
	})

	t.Run("missing required fields reported per field", func(t *testing.T) {
		b := validBooking()
		b.FacilityID = ""
		b.Slot = ""
		err := v.Validate(b)
		var verrs ValidationErrors
		require.ErrorAs(t, err, &verrs)
		assert.Len(t, verrs, 2)
	})

	t.Run("date must be ISO calendar form", func(t *testing.T) {
		for _, date := range []string{"07-09-2026", "2026/09/07", "tomorrow", "2026-13-40"} {
			b := validBooking()
			b.Date = date
			assert.Error(t, v.Validate(b), "date %q should fail", date)
		}
	})

	t.Run("slot must be a clock range with start before end", func(t *testing.T) {
		for _, slot := range []string{"9-10", "09:00-10:00", "10:00 - 09:00", "09:00 - 09:00", "09:00 to 10:00"} {
			b := validBooking()
			b.Slot = slot
			assert.Error(t, v.Validate(b), "slot %q should fail", slot)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		b := validBooking()
		b.Status = "cancelled"
		assert.Error(t, v.Validate(b))
	})
}
