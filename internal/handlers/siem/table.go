package siem

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"case-automation/pkg/thehive"
)

// tableEnd marks the end of a description key/value table. Enrichment
// rows are inserted right before it.
const tableEnd = " |\n\n\n"

func taskOf(title, description string) thehive.Task {
	if title == "" {
		title = "Search results"
	}
	return thehive.Task{Title: title, Description: description}
}

// resultTable renders search rows as a markdown table. Columns are
// sorted so reruns produce identical output.
func resultTable(rows []map[string]any) string {
	columns := make([]string, 0, len(rows[0]))
	for column := range rows[0] {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	var sb strings.Builder
	sb.WriteString("|")
	for _, column := range columns {
		sb.WriteString(" " + escapeCell(column) + " |")
	}
	sb.WriteString("\n|")
	for range columns {
		sb.WriteString(":---|")
	}
	sb.WriteString("\n")

	for _, row := range rows {
		sb.WriteString("|")
		for _, column := range columns {
			sb.WriteString(" " + cellValue(row[column]) + " |")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// cellValue formats one cell, keeping the table layout intact for
// empty values and values containing pipes.
func cellValue(v any) string {
	if v == nil {
		return "&nbsp;"
	}
	s := fmt.Sprintf("%v", v)
	if strings.TrimSpace(s) == "" {
		return "&nbsp;"
	}
	return escapeCell(s)
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "&#124;")
}

// firstValue picks the enrichment value out of the result rows: the
// named field of the first row, or its only column when no field is
// configured.
func firstValue(rows []map[string]any, field string) string {
	if len(rows) == 0 {
		return "No result"
	}
	row := rows[0]
	if field != "" {
		return cellValue(row[field])
	}
	for _, v := range row {
		return cellValue(v)
	}
	return "No result"
}

// appendRow adds a key/value row to a description table, before the
// table end marker when one exists.
func appendRow(description, name, value string) string {
	row := fmt.Sprintf("| **%s** | %s |", name, value)
	if i := strings.LastIndex(description, tableEnd); i >= 0 {
		insertAt := i + len(" |\n")
		return description[:insertAt] + row + "\n" + description[insertAt:]
	}
	return description + "\n" + row + "\n"
}

// replaceRow rewrites the value of an existing key/value row.
func replaceRow(description, name, value string) string {
	re, err := regexp.Compile(`\|\s*\*\*` + regexp.QuoteMeta(name) + `\*\*\s*\|\s*(.*?)\s*\|`)
	if err != nil {
		return description
	}
	return re.ReplaceAllString(description, fmt.Sprintf("| **%s** | %s |", name, value))
}
