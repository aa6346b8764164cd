package sina

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// Client fetches the Sina hq var-list quote feed. The feed answers one
// line per symbol,
//
//	var hq_str_fx_susdcny="21:30:05,7.1245,...";
//
// encoded as GB18030 and gated behind a finance.sina.com.cn referer.
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	quoteURL   string
}

// NewClient creates the feed client.
func NewClient(httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log.WithField("source", "sina"),
		quoteURL:   "https://hq.sinajs.cn",
	}
}

// FetchList requests a comma-joined symbol list and returns the decoded
// fields per symbol. Symbols with an empty quote are omitted.
func (c *Client) FetchList(ctx context.Context, symbols []string) (map[string][]string, error) {
	url := fmt.Sprintf("%s/list=%s", c.quoteURL, strings.Join(symbols, ","))
	headers := map[string]string{"Referer": "https://finance.sina.com.cn"}

	raw, err := c.httpClient.GetBody(ctx, url, headers)
	if err != nil {
		return nil, err
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("decode quote feed: %w", err)
	}

	return parseVarList(string(decoded)), nil
}

func parseVarList(content string) map[string][]string {
	quotes := make(map[string][]string)
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "var hq_str_") {
			continue
		}
		eq := strings.Index(line, "=\"")
		if eq < 0 || !strings.HasSuffix(line, "\";") {
			continue
		}

		symbol := line[len("var hq_str_"):eq]
		body := line[eq+2 : len(line)-2]
		if body == "" {
			continue
		}
		quotes[symbol] = strings.Split(body, ",")
	}
	return quotes
}
