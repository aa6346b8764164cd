package report

import (
	"fmt"
	"strings"

	"github.com/zhenliu/marketbrief/internal/contracts"
)

// Markdown renders the daily brief for a snapshot. Sections with no data
// are dropped rather than rendered empty.
func Markdown(snap contracts.MarketSnapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# 市场每日简报\n\n**日期**: %s\n\n---\n\n", snap.Date)

	writeIndexSection(&b, snap)
	writeBasisSection(&b, snap.Basis)
	writeQualitySection(&b, snap)
	writeNewsSection(&b, snap)

	return b.String()
}

func writeIndexSection(b *strings.Builder, snap contracts.MarketSnapshot) {
	result, ok := snap.Result(contracts.CategoryIndex)
	if !ok || len(result.Payload.Indices) == 0 {
		return
	}

	b.WriteString("## 一、行情概览\n\n| 指数 | 点位 | 涨跌幅 |\n|------|------|--------|\n")
	for _, idx := range result.Payload.Indices {
		fmt.Fprintf(b, "| %s | %.2f | %+.2f%% |\n", idx.Name, idx.Price, idx.ChangePercent)
	}
	b.WriteString("\n")
}

func writeBasisSection(b *strings.Builder, basis []contracts.BasisRecord) {
	if len(basis) == 0 {
		return
	}

	b.WriteString("## 二、基差分析\n\n| 指数 | 合约 | 期货价 | 现货价 | 基差 | 年化基差率 |\n|------|------|--------|--------|------|------------|\n")
	var premium, discount int
	for _, r := range basis {
		if r.Basis >= 0 {
			premium++
		} else {
			discount++
		}
		fmt.Fprintf(b, "| %s | %s | %.2f | %.2f | %+.2f | %+.2f%% |\n",
			r.IndexName, r.Contract, r.FuturesPrice, r.SpotPrice, r.Basis, r.AnnualizedBasisRate*100)
	}

	fmt.Fprintf(b, "\n> 升水 %d 个合约，贴水 %d 个合约\n\n", premium, discount)
}

func writeQualitySection(b *strings.Builder, snap contracts.MarketSnapshot) {
	b.WriteString("## 三、数据质量\n\n")

	verdict := "达标"
	if !snap.MeetsQualityBar() {
		verdict = "未达标"
	}
	fmt.Fprintf(b, "- 质量得分: **%d / 100** (%s)\n", snap.QualityScore, verdict)

	if len(snap.QualityDefects) == 0 {
		b.WriteString("- 无质量缺陷\n\n")
		return
	}
	for _, d := range snap.QualityDefects {
		fmt.Fprintf(b, "- [%s] %s\n", d.Category, d.Message)
	}
	b.WriteString("\n")
}

func writeNewsSection(b *strings.Builder, snap contracts.MarketSnapshot) {
	result, ok := snap.Result(contracts.CategoryNews)
	if !ok || len(result.Payload.News) == 0 {
		return
	}

	b.WriteString("## 四、重要新闻\n\n")
	count := 0
	for _, item := range result.Payload.News {
		if item.Importance != "high" {
			continue
		}
		count++
		fmt.Fprintf(b, "%d. **%s** [%s]\n", count, item.Title, item.Category)
	}
	if count == 0 {
		b.WriteString("*暂无高重要性新闻*\n")
	}
	b.WriteString("\n")
}
