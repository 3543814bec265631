package service

import (
	"time"

	"courtside/pkg/model"
)

func parseDate(date string) (time.Time, error) {
	return time.Parse(model.DateLayout, date)
}
