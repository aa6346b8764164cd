package eastmoney

import (
	"context"
	"fmt"
	"time"

	"github.com/zhenliu/marketbrief/internal/calendar"
	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// products is the CFFEX index futures board: product code to underlying
// index name. IH lists no next-quarter contract.
var products = []struct {
	Code string
	Name string
}{
	{"IF", "沪深300"},
	{"IC", "中证500"},
	{"IM", "中证1000"},
	{"IH", "上证50"},
}

// quoteResponse is the push2 single-quote envelope. Prices arrive scaled
// by 1000 and the change percent by 100.
type quoteResponse struct {
	Data *struct {
		Price         float64 `json:"f43"`
		ChangePercent float64 `json:"f170"`
	} `json:"data"`
}

// FuturesAdapter collects the index futures contract ladder from the
// Eastmoney push2 quote API, one request per contract.
type FuturesAdapter struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	now        func() time.Time
}

// NewFuturesAdapter creates the adapter. The clock decides which contract
// months make up the ladder.
func NewFuturesAdapter(httpClient *httputil.Client, log *logger.Logger) *FuturesAdapter {
	return &FuturesAdapter{
		httpClient: httpClient,
		logger:     log.WithField("source", "eastmoney"),
		baseURL:    "https://push2.eastmoney.com",
		now:        time.Now,
	}
}

// Category identifies the adapter.
func (a *FuturesAdapter) Category() contracts.Category {
	return contracts.CategoryFutures
}

// Fetch walks the product/month ladder. A single contract failing leaves
// the rest of the ladder intact and the payload is reported as partial;
// only a fully empty ladder is a transient failure.
func (a *FuturesAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	asOf := a.now()

	var quotes []contracts.FuturesQuote
	var failed int
	for _, product := range products {
		for _, month := range calendar.ContractMonths {
			if product.Code == "IH" && month == calendar.MonthNextQuarter {
				continue
			}

			quote, err := a.fetchContract(ctx, product.Code, product.Name, month, asOf)
			if err != nil {
				failed++
				a.logger.WithError(err).Warnf("Contract %s %s failed", product.Code, month)
				continue
			}
			quotes = append(quotes, quote)
		}
	}

	if len(quotes) == 0 {
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: "eastmoney",
			Err:    fmt.Errorf("all %d ladder contracts failed", failed),
		}
	}

	payload := contracts.Payload{Futures: quotes}
	if failed > 0 {
		return payload, contracts.ErrPartialData
	}
	return payload, nil
}

func (a *FuturesAdapter) fetchContract(ctx context.Context, product, name, month string, asOf time.Time) (contracts.FuturesQuote, error) {
	code := calendar.ContractCode(product, month, asOf)
	url := fmt.Sprintf("%s/api/qt/stock/get?secid=90.%s&fields=f43,f170", a.baseURL, code)

	var resp quoteResponse
	if err := a.httpClient.GetJSON(ctx, url, nil, &resp); err != nil {
		return contracts.FuturesQuote{}, err
	}
	if resp.Data == nil || resp.Data.Price <= 0 {
		return contracts.FuturesQuote{}, fmt.Errorf("no quote for contract %s", code)
	}

	return contracts.FuturesQuote{
		Product:       product,
		Name:          name,
		Contract:      code,
		Month:         month,
		Price:         resp.Data.Price / 1000,
		ChangePercent: resp.Data.ChangePercent / 100,
		Expiry:        calendar.ContractExpiry(month, asOf).Format("2006-01-02"),
	}, nil
}
