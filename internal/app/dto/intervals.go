package dto

import (
	"time"

	"rentable/internal/domain/shared/interval"
)

type IntervalDTO struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type FreeIntervals struct {
	ItemID string        `json:"item_id"`
	Count  int           `json:"count"`
	Items  []IntervalDTO `json:"items"`
}

type BlockedRanges struct {
	ItemID string        `json:"item_id"`
	Items  []IntervalDTO `json:"items"`
}

func MapIntervals(ivs []interval.Interval) []IntervalDTO {
	out := make([]IntervalDTO, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, IntervalDTO{Start: iv.Start, End: iv.End})
	}
	return out
}
