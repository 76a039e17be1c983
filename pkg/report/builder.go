package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"keyword-report/pkg/ranking"
)

// DefaultLegend explains the two classification markers
const DefaultLegend = "💡 Strategy: use [Attainable] keywords for main posts and keep [Competitive] ones for reference."

var markers = map[ranking.Label]string{
	ranking.Attainable:  "💎 [Attainable]",
	ranking.Competitive: "⚠️ [Competitive]",
}

// Options configures report rendering
type Options struct {
	RankLimit int
	MinVolume int64
	Language  language.Tag
	Legend    string
}

// Builder renders category blocks and the final dated report
type Builder struct {
	opts    Options
	printer *message.Printer
	newID   func() string
}

// NewBuilder creates a builder; an undefined language renders English grouping
func NewBuilder(opts Options) *Builder {
	if opts.Language == language.Und {
		opts.Language = language.English
	}
	if opts.Legend == "" {
		opts.Legend = DefaultLegend
	}

	return &Builder{
		opts:    opts,
		printer: message.NewPrinter(opts.Language),
		newID:   uuid.NewString,
	}
}

// BuildCategory renders one category: a header and one ranked line per
// entry, or a single failure / no-match line
func (b *Builder) BuildCategory(cr CategoryReport) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "--- 🔮 %s TOP %d ---\n", cr.Name, b.opts.RankLimit)

	switch {
	case cr.Failed:
		fmt.Fprintf(&sb, "❌ %s: data collection failed\n", cr.Name)
	case len(cr.Entries) == 0:
		fmt.Fprintf(&sb, "No keywords matched the condition (≥ %s searches).\n", b.formatCount(b.opts.MinVolume))
	default:
		for i, entry := range cr.Entries {
			fmt.Fprintf(&sb, "%d. %s %s: %s searches\n", i+1, marker(entry.Label), entry.Keyword, b.formatCount(entry.Total))
		}
	}

	return sb.String()
}

// BuildFinal assembles the dated title, every category block in order,
// and the legend
func (b *Builder) BuildFinal(generatedAt time.Time, categories []CategoryReport) *FinalReport {
	date := generatedAt.Format("2006-01-02")

	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 %s Keyword Strategy Report\n", date)
	fmt.Fprintf(&sb, "Goal: keywords with %s+ monthly searches\n\n", b.formatCount(b.opts.MinVolume))

	for _, category := range categories {
		sb.WriteString(b.BuildCategory(category))
		sb.WriteString("\n")
	}
	sb.WriteString(b.opts.Legend)

	return &FinalReport{
		ID:          b.newID(),
		Date:        date,
		GeneratedAt: generatedAt,
		Categories:  categories,
		Legend:      b.opts.Legend,
		Text:        sb.String(),
	}
}

func (b *Builder) formatCount(n int64) string {
	return b.printer.Sprintf("%d", n)
}

func marker(label ranking.Label) string {
	if m, ok := markers[label]; ok {
		return m
	}
	return "[" + string(label) + "]"
}
