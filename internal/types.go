package internal

// Result is what the transform pipeline hands back to its caller. Artifact
// and Filename are set only together with OK on a non-empty report; an OK
// result with a nil Artifact is an informational empty-result outcome.
type Result struct {
	OK       bool
	Message  string
	Filename string
	Artifact []byte
}

// ReportRow is one product line of the priority list, numeric fields already
// coerced and the derived metrics filled in.
type ReportRow struct {
	Code         string
	Name         string
	PrevDayStock float64
	TodayMade    float64
	DeliveryQty  float64
	ShortageQty  float64

	// Fulfillment is PrevDayStock/DeliveryQty (0 when DeliveryQty is 0).
	Fulfillment float64
	// DeliveryShortageRatio is DeliveryQty/ShortageQty when ShortageQty > 0,
	// otherwise -1. Sort tie-break only, never rendered.
	DeliveryShortageRatio float64
}
