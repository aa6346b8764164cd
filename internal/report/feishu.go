package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/httputil"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

// FeishuReporter publishes the daily brief to a Feishu group webhook.
type FeishuReporter struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	webhookURL string
}

// NewFeishuReporter creates the reporter.
func NewFeishuReporter(httpClient *httputil.Client, log *logger.Logger, webhookURL string) *FeishuReporter {
	return &FeishuReporter{
		httpClient: httpClient,
		logger:     log.WithField("module", "feishu"),
		webhookURL: webhookURL,
	}
}

type feishuMessage struct {
	MsgType string        `json:"msg_type"`
	Content feishuContent `json:"content"`
}

type feishuContent struct {
	Text string `json:"text"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Publish sends a condensed text rendition of the brief. The webhook
// answers HTTP 200 with a body code even on rejection, so both are checked.
func (r *FeishuReporter) Publish(ctx context.Context, snap contracts.MarketSnapshot) error {
	msg := feishuMessage{
		MsgType: "text",
		Content: feishuContent{Text: condense(snap)},
	}

	resp, err := r.httpClient.PostJSON(ctx, r.webhookURL, msg)
	if err != nil {
		return fmt.Errorf("post feishu webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feishu webhook returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read feishu response: %w", err)
	}
	var feishuResp feishuResponse
	if err := json.Unmarshal(body, &feishuResp); err != nil {
		return fmt.Errorf("decode feishu response: %w", err)
	}
	if feishuResp.Code != 0 {
		return fmt.Errorf("feishu webhook rejected message: code %d, %s", feishuResp.Code, feishuResp.Msg)
	}

	r.logger.WithField("date", snap.Date).Info("Brief published to Feishu")
	return nil
}

// condense renders the phone-width summary: top index moves, the basis
// verdict, the quality verdict, and high-importance headlines.
func condense(snap contracts.MarketSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "市场每日简报 %s\n", snap.Date)
	b.WriteString(strings.Repeat("—", 12) + "\n")

	if result, ok := snap.Result(contracts.CategoryIndex); ok {
		for i, idx := range result.Payload.Indices {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%s: %.2f (%+.2f%%)\n", idx.Name, idx.Price, idx.ChangePercent)
		}
	}

	if len(snap.Basis) > 0 {
		b.WriteString("\n基差:\n")
		for i, r := range snap.Basis {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "%s: %+.2f (年化 %+.2f%%)\n", r.Contract, r.Basis, r.AnnualizedBasisRate*100)
		}
	}

	verdict := "达标"
	if !snap.MeetsQualityBar() {
		verdict = "未达标"
	}
	fmt.Fprintf(&b, "\n质量得分: %d/100 (%s)\n", snap.QualityScore, verdict)

	if result, ok := snap.Result(contracts.CategoryNews); ok {
		var shown int
		for _, item := range result.Payload.News {
			if item.Importance != "high" || shown == 3 {
				continue
			}
			shown++
			fmt.Fprintf(&b, "★ %s\n", item.Title)
		}
	}

	return b.String()
}
