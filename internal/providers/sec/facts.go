package sec

import (
	"bytes"
	"context"
	"fmt"

	"github.com/seenimoa/intrinsic/internal/facts"
)

// CompanyFacts returns the decoded XBRL fact bag for a CIK together with
// the raw document.
func (p *Provider) CompanyFacts(ctx context.Context, cik string) (*facts.Bag, []byte, error) {
	url := fmt.Sprintf("%s/api/xbrl/companyfacts/CIK%s.json", p.dataURL, padCIK(cik))
	data, err := p.document(ctx, "companyfacts:"+cik, cik, url)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, fmt.Errorf("%w: CIK %s", ErrNoFacts, cik)
		}
		return nil, nil, fmt.Errorf("sec companyfacts: %w", err)
	}

	bag, err := facts.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("sec companyfacts CIK %s: %w", cik, err)
	}
	if len(bag.Facts) == 0 {
		return nil, nil, fmt.Errorf("%w: CIK %s", ErrNoFacts, cik)
	}
	return bag, data, nil
}
