package chinabond

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// BondAdapter collects the treasury yield curve from the ChinaBond
// published table: one row per term, term in years and yield in percent.
type BondAdapter struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	curveURL   string
}

// NewBondAdapter creates the adapter.
func NewBondAdapter(httpClient *httputil.Client, log *logger.Logger) *BondAdapter {
	return &BondAdapter{
		httpClient: httpClient,
		logger:     log.WithField("source", "chinabond"),
		curveURL:   "https://yield.chinabond.com.cn/cbweb-cbrc-web/cbrc/queryGjqxInfo",
	}
}

// Category identifies the adapter.
func (a *BondAdapter) Category() contracts.Category {
	return contracts.CategoryBond
}

// Fetch downloads and parses the yield curve table.
func (a *BondAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	raw, err := a.httpClient.GetBody(ctx, a.curveURL, nil)
	if err != nil {
		return contracts.Payload{}, &contracts.TransientFetchError{Source: "chinabond", Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(raw)))
	if err != nil {
		return contracts.Payload{}, fmt.Errorf("parse yield curve page: %w", err)
	}

	yields := ParseCurve(doc)
	if len(yields) == 0 {
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: "chinabond",
			Err:    fmt.Errorf("yield curve table is empty"),
		}
	}

	return contracts.Payload{Bonds: yields}, nil
}

// ParseCurve walks every table row and keeps rows shaped
// "<term>年 | <yield>". Header and malformed rows are skipped.
func ParseCurve(doc *goquery.Document) []contracts.BondYield {
	var yields []contracts.BondYield

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}

		term, ok := parseTerm(strings.TrimSpace(cells.Eq(0).Text()))
		if !ok {
			return
		}
		yieldText := strings.TrimSuffix(strings.TrimSpace(cells.Eq(1).Text()), "%")
		yield, err := strconv.ParseFloat(yieldText, 64)
		if err != nil {
			return
		}

		yields = append(yields, contracts.BondYield{
			Name:      fmt.Sprintf("国债%g年", term),
			TermYears: term,
			Yield:     yield,
		})
	})

	return yields
}

func parseTerm(text string) (float64, bool) {
	text = strings.TrimSuffix(text, "年")
	term, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || term <= 0 {
		return 0, false
	}
	return term, true
}
