package storage

import "priceScope/internal/model"

// ReportSink receives the per-token results of one pricing pass.
type ReportSink interface {
	WritePass(reports []model.PriceReport) error
}
