package tencent

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// watchedIndices is the fixed board of A-share indices, in display order.
var watchedIndices = []struct {
	Code string
	Name string
}{
	{"sh000001", "上证指数"},
	{"sz399001", "深证成指"},
	{"sh000300", "沪深300"},
	{"sh000905", "中证500"},
	{"sh000852", "中证1000"},
	{"sh000016", "上证50"},
	{"sh000688", "科创50"},
	{"sz399006", "创业板指"},
}

// IndexAdapter collects spot index quotes from the Tencent quote feed.
// The feed answers one GB18030 text line per code:
//
//	v_sh000001="1~上证指数~000001~4146.63~4147.23~...~-0.60~-0.01~...";
type IndexAdapter struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewIndexAdapter creates the adapter.
func NewIndexAdapter(httpClient *httputil.Client, log *logger.Logger) *IndexAdapter {
	return &IndexAdapter{
		httpClient: httpClient,
		logger:     log.WithField("source", "tencent"),
		baseURL:    "https://qt.gtimg.cn",
	}
}

// Category identifies the adapter.
func (a *IndexAdapter) Category() contracts.Category {
	return contracts.CategoryIndex
}

// Fetch requests the whole index board in one batched call.
func (a *IndexAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	codes := make([]string, len(watchedIndices))
	for i, idx := range watchedIndices {
		codes[i] = idx.Code
	}
	url := fmt.Sprintf("%s/q=%s", a.baseURL, strings.Join(codes, ","))

	raw, err := a.httpClient.GetBody(ctx, url, nil)
	if err != nil {
		return contracts.Payload{}, &contracts.TransientFetchError{Source: "tencent", Err: err}
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
	if err != nil {
		return contracts.Payload{}, fmt.Errorf("decode quote feed: %w", err)
	}

	quotes := ParseQuotes(string(decoded))
	if len(quotes) == 0 {
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: "tencent",
			Err:    fmt.Errorf("quote feed returned no parseable indices"),
		}
	}

	payload := contracts.Payload{Indices: quotes}
	if len(quotes) < len(watchedIndices) {
		a.logger.Warnf("Partial index board: %d of %d", len(quotes), len(watchedIndices))
		return payload, contracts.ErrPartialData
	}
	return payload, nil
}

// Quote feed field positions within the tilde-separated record.
const (
	fieldName          = 1
	fieldPrice         = 3
	fieldChangePercent = 32
	minFields          = 38
)

// ParseQuotes extracts index quotes from the decoded feed text. Records
// that are too short or carry unparseable numbers are skipped.
func ParseQuotes(content string) []contracts.IndexQuote {
	var quotes []contracts.IndexQuote

	for _, line := range strings.Split(content, ";") {
		line = strings.TrimSpace(line)
		start := strings.Index(line, "v_")
		end := strings.Index(line, "=\"")
		if start < 0 || end < 0 || !strings.HasSuffix(line, "\"") {
			continue
		}

		code := line[start+2 : end]
		parts := strings.Split(line[end+2:len(line)-1], "~")
		if len(parts) < minFields {
			continue
		}

		price, err := strconv.ParseFloat(parts[fieldPrice], 64)
		if err != nil || price <= 0 {
			continue
		}
		changePercent, err := strconv.ParseFloat(parts[fieldChangePercent], 64)
		if err != nil {
			continue
		}

		quotes = append(quotes, contracts.IndexQuote{
			Code:          code,
			Name:          parts[fieldName],
			Price:         price,
			ChangePercent: changePercent,
			Currency:      "CNY",
		})
	}
	return quotes
}
