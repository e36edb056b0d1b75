package order

import (
	"math"
	"time"
)

const (
	StatusPacked         = "packed"
	StatusInTransit      = "in_transit"
	StatusOutForDelivery = "out_for_delivery"
	StatusDelivered      = "delivered"
)

type Checkpoint struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Reached bool   `json:"reached"`
}

type Progress struct {
	Progress    int          `json:"progress"`
	Status      string       `json:"status"`
	Checkpoints []Checkpoint `json:"checkpoints"`
}

// DeriveProgress computes live delivery state from elapsed wall-clock time
// against the order's ETA. Pure: no timer state is kept anywhere, the same
// order and instant always produce the same result, and progress never
// decreases as long as now only moves forward.
func DeriveProgress(o Order, now time.Time) Progress {
	elapsed := now.Sub(o.CreatedAt).Milliseconds()

	pct := 100
	if o.EtaMs > 0 {
		pct = int(math.Round(float64(elapsed) / float64(o.EtaMs) * 100))
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	status := StatusPacked
	switch {
	case pct >= 100:
		status = StatusDelivered
	case pct >= 75:
		status = StatusOutForDelivery
	case pct >= 40:
		status = StatusInTransit
	}

	return Progress{
		Progress: pct,
		Status:   status,
		Checkpoints: []Checkpoint{
			{Key: StatusPacked, Label: "Packed", Reached: pct >= 10},
			{Key: StatusInTransit, Label: "In Transit", Reached: pct >= 40},
			{Key: StatusOutForDelivery, Label: "Out for Delivery", Reached: pct >= 75},
			{Key: StatusDelivered, Label: "Delivered", Reached: pct >= 100},
		},
	}
}
