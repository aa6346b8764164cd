package sina

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

const maxHeadlines = 20

// NewsAdapter collects financial headlines from the Sina news search
// page, newest first, and classifies each one by keyword.
type NewsAdapter struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	searchURL  string
	keyword    string
	now        func() time.Time
}

// NewNewsAdapter creates the adapter.
func NewNewsAdapter(httpClient *httputil.Client, log *logger.Logger) *NewsAdapter {
	return &NewsAdapter{
		httpClient: httpClient,
		logger:     log.WithField("source", "sina_news"),
		searchURL:  "https://search.sina.com.cn/",
		keyword:    "财经",
		now:        time.Now,
	}
}

// Category identifies the adapter.
func (a *NewsAdapter) Category() contracts.Category {
	return contracts.CategoryNews
}

// Fetch scrapes the newest headlines and classifies them.
func (a *NewsAdapter) Fetch(ctx context.Context) (contracts.Payload, error) {
	searchURL := fmt.Sprintf("%s?q=%s&c=news&sort=time", a.searchURL, url.QueryEscape(a.keyword))

	raw, err := a.httpClient.GetBody(ctx, searchURL, nil)
	if err != nil {
		return contracts.Payload{}, &contracts.TransientFetchError{Source: "sina_news", Err: err}
	}

	decoded, err := simplifiedchinese.GB18030.NewDecoder().Bytes(raw)
	if err != nil {
		return contracts.Payload{}, fmt.Errorf("decode news page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(decoded)))
	if err != nil {
		return contracts.Payload{}, fmt.Errorf("parse news page: %w", err)
	}

	items := a.extract(doc)
	if len(items) == 0 {
		return contracts.Payload{}, &contracts.TransientFetchError{
			Source: "sina_news",
			Err:    fmt.Errorf("news page yielded no headlines"),
		}
	}

	return contracts.Payload{News: items}, nil
}

func (a *NewsAdapter) extract(doc *goquery.Document) []contracts.NewsItem {
	collected := a.now()
	seen := make(map[string]struct{})
	var items []contracts.NewsItem

	doc.Find("a").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || !strings.Contains(href, "sina.com.cn") {
			return true
		}
		title := strings.TrimSpace(sel.Text())
		if len([]rune(title)) < 8 {
			return true
		}

		key := href + "|" + title
		if _, dup := seen[key]; dup {
			return true
		}
		seen[key] = struct{}{}

		items = append(items, contracts.NewsItem{
			Title:      title,
			URL:        href,
			Source:     "新浪财经",
			Category:   Classify(title),
			Importance: Importance(title),
			Timestamp:  collected,
		})
		return len(items) < maxHeadlines
	})

	return items
}

var categoryKeywords = []struct {
	Category string
	Keywords []string
}{
	{"宏观政策", []string{"降息", "降准", "加息", "通胀", "gdp", "经济", "政策", "央行", "财政部", "证监会", "货币"}},
	{"国际市场", []string{"美股", "港股", "美联储", "欧洲", "日本", "韩国", "关税", "贸易"}},
	{"公司重大事项", []string{"涨停", "跌停", "并购", "重组", "上市", "ipo", "财报", "业绩", "分红", "a股", "股市", "大盘", "指数"}},
	{"行业动态", []string{"新能源", "半导体", "医药", "银行", "地产", "汽车", "科技", "ai", "人工智能", "芯片", "光伏"}},
}

var highImportanceKeywords = []string{
	"央行", "降息", "降准", "加息", "关税", "重大", "涨停", "跌停",
	"突发", "重磅", "利好", "利空", "政策", "监管", "证监会", "美股",
	"崩盘", "暴涨", "大跌", "突破", "历史",
}

// Classify buckets a headline by the first keyword group it matches.
func Classify(title string) string {
	text := strings.ToLower(title)
	for _, group := range categoryKeywords {
		for _, kw := range group.Keywords {
			if strings.Contains(text, kw) {
				return group.Category
			}
		}
	}
	return "其他"
}

// Importance flags headlines carrying market-moving keywords.
func Importance(title string) string {
	text := strings.ToLower(title)
	for _, kw := range highImportanceKeywords {
		if strings.Contains(text, kw) {
			return "high"
		}
	}
	return "medium"
}
