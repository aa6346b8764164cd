package sina

import (
	"context"
	"fmt"
	"strconv"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// watchedCommodities is the fixed commodity board, in display order.
// Global futures symbols quote in USD.
var watchedCommodities = []struct {
	Symbol string
	Name   string
	Unit   string
}{
	{"hf_GC", "伦敦金", "美元/盎司"},
	{"hf_SI", "伦敦银", "美元/盎司"},
	{"hf_CL", "WTI原油", "美元/桶"},
	{"hf_HG", "LME铜", "美元/磅"},
}

// The global futures feed leads with the latest price.
const (
	hfFieldPrice = 0
	hfMinFields  = 1
)

// CommodityAdapter collects global commodity prices from the Sina quote feed.
type CommodityAdapter struct {
	client *Client
	logger *logger.Logger
}

// NewCommodityAdapter creates the adapter.
func NewCommodityAdapter(client *Client, log *logger.Logger) *CommodityAdapter {
	return &CommodityAdapter{
		client: client,
		logger: log.WithField("source", "sina_hf"),
	}
}

// Category identifies the adapter.
func (a *CommodityAdapter) Category() contracts.Category {
	return contracts.CategoryCommodity
}

// Fetch requests the whole commodity board in one batched call.
func (a *CommodityAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	symbols := make([]string, len(watchedCommodities))
	for i, c := range watchedCommodities {
		symbols[i] = c.Symbol
	}

	quotes, err := a.client.FetchList(ctx, symbols)
	if err != nil {
		return contracts.Payload{}, &contracts.TransientFetchError{Source: "sina_hf", Err: err}
	}

	var commodities []contracts.CommodityQuote
	for _, c := range watchedCommodities {
		fields, ok := quotes[c.Symbol]
		if !ok || len(fields) < hfMinFields {
			continue
		}
		price, err := strconv.ParseFloat(fields[hfFieldPrice], 64)
		if err != nil || price <= 0 {
			continue
		}
		commodities = append(commodities, contracts.CommodityQuote{
			Name:     c.Name,
			Price:    price,
			Unit:     c.Unit,
			Currency: "USD",
		})
	}

	if len(commodities) == 0 {
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: "sina_hf",
			Err:    fmt.Errorf("quote feed returned no parseable commodities"),
		}
	}

	payload := contracts.Payload{Commodities: commodities}
	if len(commodities) < len(watchedCommodities) {
		a.logger.Warnf("Partial commodity board: %d of %d", len(commodities), len(watchedCommodities))
		return payload, contracts.ErrPartialData
	}
	return payload, nil
}
