package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goodsign/monday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	textHeader = "| Function Name     | Num. of calls  | Total Time (ms) | Average Time (ms)|"
	textSep    = "|-------------------------------------------------------------------------|"
)

// RenderText writes a blank line, the fixed-width table and a trailing blank line.
func RenderText(w io.Writer, rep *Report) error {
	var buf bytes.Buffer
	buf.WriteString("\n")
	buf.WriteString(textHeader + "\n")
	buf.WriteString(textSep + "\n")
	for _, s := range rep.Functions {
		fmt.Fprintf(&buf, "| %-17s | %s | %.3f ms       | %.3f ms        |\n",
			s.Function, center(fmt.Sprint(s.Calls), 14), s.TotalMillis(), s.AverageMillis())
	}
	buf.WriteString("\n")
	_, err := w.Write(buf.Bytes())
	return err
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

// MarkdownOptions configures RenderMarkdown and RenderHTML.
type MarkdownOptions struct {
	Title       string    // Heading (default "Trace report")
	Source      string    // Trace file or run id shown under the heading
	Locale      string    // BCP 47 tag for numbers and dates (default "en-US")
	GeneratedAt time.Time // Zero omits the generated-at line
}

// RenderMarkdown writes the report as a GFM table with localised numbers.
func RenderMarkdown(w io.Writer, rep *Report, opts MarkdownOptions) error {
	_, err := io.WriteString(w, markdown(rep, opts))
	return err
}

// RenderHTML writes the markdown report converted to HTML.
func RenderHTML(w io.Writer, rep *Report, opts MarkdownOptions) error {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown(rep, opts)), &buf); err != nil {
		return fmt.Errorf("rendering html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func markdown(rep *Report, opts MarkdownOptions) string {
	title := opts.Title
	if title == "" {
		title = "Trace report"
	}
	locale := opts.Locale
	if locale == "" {
		locale = "en-US"
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.AmericanEnglish
	}
	p := message.NewPrinter(tag)
	ms := func(v float64) string {
		return p.Sprintf("%v", number.Decimal(v, number.MinFractionDigits(3), number.MaxFractionDigits(3)))
	}

	var sb strings.Builder
	sb.WriteString("# " + title + "\n\n")
	if opts.Source != "" {
		sb.WriteString("Source: `" + opts.Source + "`\n\n")
	}
	if !opts.GeneratedAt.IsZero() {
		loc := getMondayLocale(locale)
		sb.WriteString("Generated " + monday.Format(opts.GeneratedAt, generatedLayout(loc), loc) + "\n\n")
	}

	sb.WriteString("| Function | Calls | Total (ms) | Average (ms) |\n")
	sb.WriteString("|:---|---:|---:|---:|\n")
	for _, s := range rep.Functions {
		fmt.Fprintf(&sb, "| %s | %s | %s | %s |\n",
			escapeCell(s.Function), p.Sprintf("%v", number.Decimal(s.Calls)), ms(s.TotalMillis()), ms(s.AverageMillis()))
	}

	sb.WriteString("\n")
	sb.WriteString(p.Sprintf("%v events, pairing by %s", number.Decimal(rep.Events), rep.Mode))
	if rep.Unmatched > 0 {
		sb.WriteString(p.Sprintf(", %v unmatched", number.Decimal(rep.Unmatched)))
	}
	sb.WriteString(".\n")
	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// getMondayLocale maps a locale string to a monday.Locale for date formatting.
func getMondayLocale(locale string) monday.Locale {
	locale = strings.ToLower(strings.ReplaceAll(locale, "-", "_"))

	localeMap := map[string]monday.Locale{
		"en":    monday.LocaleEnUS,
		"en_us": monday.LocaleEnUS,
		"en_gb": monday.LocaleEnGB,
		"de":    monday.LocaleDeDE,
		"de_de": monday.LocaleDeDE,
		"fr":    monday.LocaleFrFR,
		"fr_fr": monday.LocaleFrFR,
		"fr_ca": monday.LocaleFrCA,
		"es":    monday.LocaleEsES,
		"es_es": monday.LocaleEsES,
		"it":    monday.LocaleItIT,
		"it_it": monday.LocaleItIT,
		"pt":    monday.LocalePtPT,
		"pt_br": monday.LocalePtBR,
		"nl":    monday.LocaleNlNL,
		"ru":    monday.LocaleRuRU,
		"pl":    monday.LocalePlPL,
		"sv":    monday.LocaleSvSE,
		"ja":    monday.LocaleJaJP,
		"zh":    monday.LocaleZhCN,
		"zh_tw": monday.LocaleZhTW,
		"ko":    monday.LocaleKoKR,
	}

	if loc, ok := localeMap[locale]; ok {
		return loc
	}

	// Try just the language part
	if lang, _, ok := strings.Cut(locale, "_"); ok {
		if loc, ok := localeMap[lang]; ok {
			return loc
		}
	}

	return monday.LocaleEnUS
}

// generatedLayout returns a long date-time layout in the order the locale expects.
func generatedLayout(loc monday.Locale) string {
	switch loc {
	case monday.LocaleEnUS:
		return "Monday, January 2, 2006 at 15:04:05"
	case monday.LocaleDeDE:
		return "Monday, 2. January 2006 15:04:05"
	case monday.LocaleJaJP, monday.LocaleZhCN, monday.LocaleZhTW, monday.LocaleKoKR:
		return "2006-01-02 15:04:05"
	default:
		return "Monday 2 January 2006 15:04:05"
	}
}
