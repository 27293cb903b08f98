package formatter

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/hmx/internal/models"
	"github.com/desertthunder/hmx/internal/shared"
	th "github.com/desertthunder/hmx/internal/testing"
)

func sampleHolidays() []models.Holiday {
	start := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)
	return []models.Holiday{
		{
			ID:        1,
			UserID:    7,
			StartDate: models.NewLocalDateTime(start),
			EndDate:   models.NewLocalDateTime(start.Add(8 * time.Hour)),
			Status:    models.StatusProcessing,
		},
		{
			ID:        2,
			UserID:    8,
			StartDate: models.NewLocalDateTime(start.AddDate(0, 0, 1)),
			EndDate:   models.NewLocalDateTime(start.AddDate(0, 0, 2)),
			Status:    models.StatusAccepted,
		},
	}
}

func sampleUsers() []models.User {
	return []models.User{
		{ID: 1, Name: "Ada", Surname: "Lovelace", Username: "ada", Email: "ada@example.com", Age: 36, HolidaysHours: 160, Role: models.RoleAdmin},
		{ID: 2, Name: "Alan", Surname: "Turing", Username: "alan", Email: "alan@example.com", Age: 41, HolidaysHours: 80, Role: models.RoleWorker},
	}
}

func sampleEntries() []*models.ReviewEntry {
	created := time.Date(2024, 7, 2, 10, 30, 0, 0, time.UTC)
	return []*models.ReviewEntry{
		{ID: "a", HolidayID: 1, Status: models.StatusAccepted, CreatedAt: created},
		{ID: "b", HolidayID: 2, Status: models.StatusRejected, Error: "holiday not found", CreatedAt: created},
	}
}

func TestParseFormat(t *testing.T) {
	tc := []struct {
		in   string
		want Format
	}{
		{"", FormatTable},
		{"table", FormatTable},
		{"txt", FormatTable},
		{"CSV", FormatCSV},
		{" json ", FormatJSON},
		{"md", FormatMarkdown},
		{"markdown", FormatMarkdown},
	}
	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("unknown", func(t *testing.T) {
		if _, err := ParseFormat("xml"); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestExtension(t *testing.T) {
	want := map[Format]string{FormatTable: ".txt", FormatCSV: ".csv", FormatJSON: ".json", FormatMarkdown: ".md"}
	for f, ext := range want {
		if got := f.Extension(); got != ext {
			t.Errorf("%s: got %q, want %q", f, got, ext)
		}
	}
}

func TestWriteHolidays(t *testing.T) {
	t.Run("CSV", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHolidays(&buf, FormatCSV, sampleHolidays()); err != nil {
			t.Fatalf("WriteHolidays failed: %v", err)
		}

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 3 {
			t.Fatalf("expected header + 2 rows, got %d lines", len(lines))
		}
		if lines[0] != "ID,User,Start,End,Hours,Status" {
			t.Errorf("unexpected header: %s", lines[0])
		}
		if lines[1] != "1,7,2024-07-01T09:00:00,2024-07-01T17:00:00,8,PROCESSING" {
			t.Errorf("unexpected row: %s", lines[1])
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHolidays(&buf, FormatJSON, sampleHolidays()); err != nil {
			t.Fatalf("WriteHolidays failed: %v", err)
		}

		var decoded []models.Holiday
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded) != 2 || decoded[1].Status != models.StatusAccepted {
			t.Errorf("unexpected decoded value: %+v", decoded)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHolidays(&buf, FormatMarkdown, sampleHolidays()); err != nil {
			t.Fatalf("WriteHolidays failed: %v", err)
		}

		output := buf.String()
		if !strings.HasPrefix(output, "| ID | User | Start | End | Hours | Status |\n| --- |") {
			t.Errorf("unexpected markdown header:\n%s", output)
		}
		if !strings.Contains(output, "| 2 | 8 |") {
			t.Errorf("markdown missing second row:\n%s", output)
		}
	})

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHolidays(&buf, FormatTable, sampleHolidays()); err != nil {
			t.Fatalf("WriteHolidays failed: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"Status", "PROCESSING", "ACCEPTED", "2024-07-02T09:00:00"} {
			if !strings.Contains(output, want) {
				t.Errorf("table missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("empty table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHolidays(&buf, FormatTable, nil); err != nil {
			t.Fatalf("WriteHolidays failed: %v", err)
		}
		if buf.String() != "No results\n" {
			t.Errorf("got %q", buf.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteHolidays(&buf, Format("xml"), sampleHolidays()); !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("write error", func(t *testing.T) {
		if err := WriteHolidays(&th.FWriter{}, FormatCSV, sampleHolidays()); err == nil {
			t.Error("expected error from failing writer")
		}
	})
}

func TestWriteUsers(t *testing.T) {
	t.Run("CSV", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteUsers(&buf, FormatCSV, sampleUsers()); err != nil {
			t.Fatalf("WriteUsers failed: %v", err)
		}
		if !strings.Contains(buf.String(), "1,ada,Ada Lovelace,ada@example.com,36,160,admin") {
			t.Errorf("unexpected CSV:\n%s", buf.String())
		}
	})

	t.Run("Table", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteUsers(&buf, FormatTable, sampleUsers()); err != nil {
			t.Fatalf("WriteUsers failed: %v", err)
		}
		if !strings.Contains(buf.String(), "Alan Turing") {
			t.Errorf("table missing user:\n%s", buf.String())
		}
	})
}

func TestWriteUser(t *testing.T) {
	user := sampleUsers()[1]

	t.Run("key value markdown", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteUser(&buf, FormatMarkdown, &user); err != nil {
			t.Fatalf("WriteUser failed: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "| Field | Value |") {
			t.Errorf("missing key/value header:\n%s", output)
		}
		if !strings.Contains(output, "| Role | worker |") {
			t.Errorf("missing role row:\n%s", output)
		}
	})

	t.Run("JSON", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteUser(&buf, FormatJSON, &user); err != nil {
			t.Fatalf("WriteUser failed: %v", err)
		}
		if !strings.Contains(buf.String(), `"role": "ROLE_WORKER"`) {
			t.Errorf("unexpected JSON:\n%s", buf.String())
		}
	})

	t.Run("CSV uses row layout", func(t *testing.T) {
		var buf bytes.Buffer
		if err := WriteUser(&buf, FormatCSV, &user); err != nil {
			t.Fatalf("WriteUser failed: %v", err)
		}
		if !strings.HasPrefix(buf.String(), "ID,Username,Name") {
			t.Errorf("unexpected CSV:\n%s", buf.String())
		}
	})

	t.Run("nil user", func(t *testing.T) {
		if err := WriteUser(&bytes.Buffer{}, FormatTable, nil); !errors.Is(err, shared.ErrEmptyResponse) {
			t.Errorf("expected ErrEmptyResponse, got %v", err)
		}
	})
}

func TestWriteReviewLog(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReviewLog(&buf, FormatCSV, sampleEntries()); err != nil {
		t.Fatalf("WriteReviewLog failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "a,1,ACCEPTED,ok,,2024-07-02 10:30:00") {
		t.Errorf("missing success row:\n%s", output)
	}
	if !strings.Contains(output, "b,2,REJECTED,failed,holiday not found,") {
		t.Errorf("missing failure row:\n%s", output)
	}
}

func TestWriteReviewReport(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports", "review.json")
		if err := WriteReviewReport(path, FormatJSON, sampleEntries()); err != nil {
			t.Fatalf("WriteReviewReport failed: %v", err)
		}

		th.AssertFileExists(t, path)
		content := th.MustReadFile(t, path)
		if !strings.Contains(content, `"holidayId": 2`) || !strings.Contains(content, `"error": "holiday not found"`) {
			t.Errorf("unexpected report:\n%s", content)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		if err := WriteReviewReport("", FormatJSON, sampleEntries()); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("unknown format leaves no file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "review.xml")
		if err := WriteReviewReport(path, Format("xml"), sampleEntries()); err == nil {
			t.Fatal("expected error")
		}
	})
}
