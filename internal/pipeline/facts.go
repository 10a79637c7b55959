package pipeline

import (
	"context"

	"github.com/seenimoa/intrinsic/internal/lineitems"
	"github.com/seenimoa/intrinsic/pkg/models"
)

// Facts extracts the line items of a ticker without valuing it.
func (p *Pipeline) Facts(ctx context.Context, ticker string) (*models.Facts, error) {
	in, err := p.gather(ctx, ticker, false)
	if err != nil {
		return nil, err
	}
	li := lineitems.Extract(in.bag)
	company, _ := p.companyContext(in, func(string) {})

	out := &models.Facts{
		Company:       company,
		Currency:      li.Currency,
		FiscalYearEnd: li.FiscalYearEnd,
	}
	named := li.Named()
	for _, name := range li.Names() {
		item := named[name]
		s := models.LineItem{Name: name}
		if item.TTM != nil {
			s.TTM = models.Finite(item.TTM.Value)
		}
		if item.Latest != nil {
			s.Latest = models.Finite(item.Latest.Value)
			s.LatestDate = item.Latest.Date
		}
		if item.Yearly != nil {
			s.Years = append([]int(nil), item.Yearly.Years...)
			s.Values = append([]float64(nil), item.Yearly.Values...)
		}
		out.Items = append(out.Items, s)
	}
	return out, nil
}
