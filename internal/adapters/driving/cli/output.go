package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// outputMode selects how list commands render their rows.
type outputMode string

const (
	outputTable      outputMode = "table"
	outputMarkdown   outputMode = "markdown"
	outputJSON       outputMode = "json"
	outputJSONPretty outputMode = "json-pretty"
	outputCSV        outputMode = "csv"
)

var outputModes = []outputMode{outputTable, outputMarkdown, outputJSON, outputJSONPretty, outputCSV}

func parseOutputMode(s string) (outputMode, error) {
	if s == "" {
		return outputTable, nil
	}
	for _, m := range outputModes {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	names := make([]string, len(outputModes))
	for i, m := range outputModes {
		names[i] = string(m)
	}
	return "", fmt.Errorf("unknown output mode %q (want one of: %s)", s, strings.Join(names, ", "))
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// listing is tabular command output. Records is what the JSON modes encode.
type listing struct {
	Headers []string
	Rows    [][]string
	Records any
}

func (l listing) write(w io.Writer, mode outputMode) error {
	switch mode {
	case outputJSON:
		return json.NewEncoder(w).Encode(l.Records)
	case outputJSONPretty:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l.Records)
	case outputCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write(l.Headers); err != nil {
			return err
		}
		if err := cw.WriteAll(l.Rows); err != nil {
			return err
		}
		return cw.Error()
	case outputMarkdown:
		t := l.table().
			Border(lipgloss.MarkdownBorder()).
			BorderTop(false).
			BorderBottom(false)
		_, err := fmt.Fprintln(w, t.String())
		return err
	default:
		_, err := fmt.Fprintln(w, l.table().String())
		return err
	}
}

func (l listing) table() *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(l.Headers...).
		Rows(l.Rows...)
}
