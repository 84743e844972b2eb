package mutation

import (
	"math"
	"time"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/abgdnv/observatory/internal/catalog/query"
	"github.com/abgdnv/observatory/internal/catalog/store/db"
)

// MaxRangeDays bounds the number of days one submission may cover.
const MaxRangeDays = 366

// PriceSubmission is a POST /prices body. Price must fit the NUMERIC(12, 2) column. It names either a single date or an inclusive
// dateFrom/dateTo range; each day of the range is upserted.
type PriceSubmission struct {
	ProductID int64   `json:"productId" validate:"required,gt=0"`
	ShopID    int64   `json:"shopId" validate:"required,gt=0"`
	Price     float64 `json:"price" validate:"required,gt=0,lte=9999999999.99"`
	Date      string  `json:"date"`
	DateFrom  string  `json:"dateFrom"`
	DateTo    string  `json:"dateTo"`
}

// Entries validates s and expands it into one upsert per day. Prices are rounded to cents.
func (s PriceSubmission) Entries() ([]db.UpsertPriceParams, error) {
	vErr := &catalogerrors.ValidationError{}
	if err := Struct(s); err != nil {
		fields, ok := catalogerrors.AsValidation(err)
		if !ok {
			return nil, err
		}
		for k, v := range fields.Fields {
			vErr.Add(k, v)
		}
	}

	price := math.Round(s.Price*100) / 100
	if s.Price > 0 && price <= 0 {
		vErr.Add("price", "must be at least 0.01")
	}

	dates := s.dates(vErr)
	if err := vErr.OrNil(); err != nil {
		return nil, err
	}

	entries := make([]db.UpsertPriceParams, 0, len(dates))
	for _, date := range dates {
		entries = append(entries, db.UpsertPriceParams{
			ProductID: s.ProductID,
			ShopID:    s.ShopID,
			Date:      date,
			Price:     price,
		})
	}
	return entries, nil
}

func (s PriceSubmission) dates(vErr *catalogerrors.ValidationError) []time.Time {
	ranged := s.DateFrom != "" || s.DateTo != ""
	switch {
	case s.Date != "" && ranged:
		vErr.Add("date", "use either date or dateFrom and dateTo")
		return nil
	case s.Date != "":
		date, err := query.ParseDate(s.Date)
		if err != nil {
			vErr.Add("date", "expected YYYY-MM-DD: "+s.Date)
			return nil
		}
		return []time.Time{date}
	case !ranged:
		vErr.Add("date", "failed on rule: required")
		return nil
	}

	filter, err := query.NewPriceFilter(nil, nil, s.DateFrom, s.DateTo, nil)
	if err != nil {
		if fields, ok := catalogerrors.AsValidation(err); ok {
			for k, v := range fields.Fields {
				vErr.Add(k, v)
			}
		}
		return nil
	}
	from, to := *filter.DateFrom, *filter.DateTo
	if days := int(to.Sub(from).Hours()/24) + 1; days > MaxRangeDays {
		vErr.Add("dateTo", "range must not exceed 366 days")
		return nil
	}
	var dates []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
