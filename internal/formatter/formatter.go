// package formatter renders holidays, users and review logs as tables, CSV, JSON or Markdown
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists every supported format in flag help order.
var Formats = []Format{FormatTable, FormatCSV, FormatJSON, FormatMarkdown}

// ParseFormat maps a flag value to a Format. The empty string selects [FormatTable].
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "table", "text", "txt":
		return FormatTable, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatCSV:
		return ".csv"
	case FormatJSON:
		return ".json"
	case FormatMarkdown:
		return ".md"
	default:
		return ".txt"
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// grid is the common tabular shape every exporter renders from.
type grid struct {
	headers []string
	rows    [][]string
}

var (
	holidayHeaders = []string{"ID", "User", "Start", "End", "Hours", "Status"}
	userHeaders    = []string{"ID", "Username", "Name", "Email", "Age", "Holiday Hours", "Role"}
	reviewHeaders  = []string{"ID", "Holiday", "Status", "Result", "Error", "Created"}
)

func holidayGrid(holidays []models.Holiday) grid {
	g := grid{headers: holidayHeaders, rows: make([][]string, 0, len(holidays))}
	for _, h := range holidays {
		g.rows = append(g.rows, []string{
			strconv.FormatInt(h.ID, 10),
			strconv.FormatInt(h.UserID, 10),
			h.StartDate.String(),
			h.EndDate.String(),
			strconv.Itoa(h.Hours()),
			string(h.Status),
		})
	}
	return g
}

func userGrid(users []models.User) grid {
	g := grid{headers: userHeaders, rows: make([][]string, 0, len(users))}
	for _, u := range users {
		g.rows = append(g.rows, []string{
			strconv.FormatInt(u.ID, 10),
			u.Username,
			u.FullName(),
			u.Email,
			strconv.Itoa(u.Age),
			strconv.FormatInt(u.HolidaysHours, 10),
			u.Role.Label(),
		})
	}
	return g
}

func reviewGrid(entries []*models.ReviewEntry) grid {
	g := grid{headers: reviewHeaders, rows: make([][]string, 0, len(entries))}
	for _, e := range entries {
		result := "ok"
		if !e.Succeeded() {
			result = "failed"
		}
		g.rows = append(g.rows, []string{
			e.ID,
			strconv.FormatInt(e.HolidayID, 10),
			string(e.Status),
			result,
			e.Error,
			e.CreatedAt.Format(time.DateTime),
		})
	}
	return g
}

// render encodes g (or v, for JSON) in the requested format.
func render(w io.Writer, format Format, g grid, v any) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case FormatCSV:
		data, err = toCSV(g)
	case FormatJSON:
		data, err = shared.MarshalJSON(v, true)
		data = append(data, '\n')
	case FormatMarkdown:
		data = toMarkdown(g)
	case FormatTable, "":
		data = toTable(g)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func toCSV(g grid) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(g.headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range g.rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func toMarkdown(g grid) []byte {
	var buf bytes.Buffer
	buf.WriteString("| " + strings.Join(g.headers, " | ") + " |\n")

	sep := make([]string, len(g.headers))
	for i := range sep {
		sep[i] = "---"
	}
	buf.WriteString("| " + strings.Join(sep, " | ") + " |\n")

	for _, row := range g.rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return buf.Bytes()
}

func toTable(g grid) []byte {
	if len(g.rows) == 0 {
		return []byte("No results\n")
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(g.headers...).
		Rows(g.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return []byte(t.String() + "\n")
}

// WriteHolidays renders holiday requests.
func WriteHolidays(w io.Writer, format Format, holidays []models.Holiday) error {
	return render(w, format, holidayGrid(holidays), holidays)
}

// WriteUsers renders a user listing.
func WriteUsers(w io.Writer, format Format, users []models.User) error {
	return render(w, format, userGrid(users), users)
}

// WriteUser renders a single profile. Table and Markdown output use a key/value layout.
func WriteUser(w io.Writer, format Format, user *models.User) error {
	if user == nil {
		return fmt.Errorf("%w: no user to render", shared.ErrEmptyResponse)
	}

	row := userGrid([]models.User{*user})
	switch format {
	case FormatTable, "", FormatMarkdown:
		g := grid{headers: []string{"Field", "Value"}}
		for i, h := range userHeaders {
			g.rows = append(g.rows, []string{h, row.rows[0][i]})
		}
		return render(w, format, g, user)
	default:
		return render(w, format, row, user)
	}
}

// WriteReviewLog renders recorded review outcomes.
func WriteReviewLog(w io.Writer, format Format, entries []*models.ReviewEntry) error {
	return render(w, format, reviewGrid(entries), entries)
}

// WriteReviewReport writes a review report to path, creating parent directories.
func WriteReviewReport(path string, format Format, entries []*models.ReviewEntry) error {
	if path == "" {
		return fmt.Errorf("%w: report path", shared.ErrMissingArgument)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := WriteReviewLog(&buf, format, entries); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
