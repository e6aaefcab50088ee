// package formatter renders export reports (JSON, CSV, Markdown, plain text) and reads export input files
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

	"github.com/desertthunder/tapedeck/internal/models"
	"github.com/desertthunder/tapedeck/internal/shared"
	json "github.com/goccy/go-json"
	"github.com/samber/lo"
)

// Report is the serializable summary of one export.
type Report struct {
	Name       string                `json:"name"`
	Provider   string                `json:"provider"`
	State      string                `json:"state"`
	PlaylistID string                `json:"playlist_id,omitempty"`
	Requested  int                   `json:"requested"`
	Added      int                   `json:"added"`
	Unresolved []models.TrackRequest `json:"unresolved"`
	Error      string                `json:"error,omitempty"`
}

// NewReport builds a [Report] from an export result.
func NewReport(name, provider string, result *models.ExportResult) Report {
	r := Report{
		Name:       name,
		Provider:   provider,
		State:      result.State.String(),
		PlaylistID: result.PlaylistID,
		Requested:  result.RequestedCount,
		Added:      result.AddedCount,
		Unresolved: result.Unresolved,
	}
	if r.Unresolved == nil {
		r.Unresolved = []models.TrackRequest{}
	}
	if result.FatalError != nil {
		r.Error = result.FatalError.Error()
	}
	return r
}

// RecordReport builds a [Report] from a stored history record.
func RecordReport(rec *models.ExportRecord) Report {
	r := Report{
		Name:       rec.Name,
		Provider:   rec.Provider,
		State:      rec.State,
		PlaylistID: rec.PlaylistID,
		Requested:  rec.Requested,
		Added:      rec.Added,
		Unresolved: rec.Unresolved,
		Error:      rec.ErrorMessage,
	}
	if r.Unresolved == nil {
		r.Unresolved = []models.TrackRequest{}
	}
	return r
}

// ToJSON renders the report as indented JSON.
func ToJSON(r Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToCSV lists the unresolved entries with columns: Artist, Title
func ToCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Artist", "Title"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range r.Unresolved {
		if err := writer.Write([]string{entry.Artist, entry.Title}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ToMarkdown renders the report as a Markdown document.
func ToMarkdown(r Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", r.Name)
	fmt.Fprintf(&buf, "**Provider**: %s\n", r.Provider)
	fmt.Fprintf(&buf, "**State**: %s\n", r.State)
	if r.PlaylistID != "" {
		fmt.Fprintf(&buf, "**Playlist**: %s\n", r.PlaylistID)
	}
	fmt.Fprintf(&buf, "**Added**: %d of %d\n", r.Added, r.Requested)
	if r.Error != "" {
		fmt.Fprintf(&buf, "**Error**: %s\n", r.Error)
	}

	if len(r.Unresolved) > 0 {
		buf.WriteString("\n## Not Found\n\n")
		for i, entry := range r.Unresolved {
			fmt.Fprintf(&buf, "%d. %s\n", i+1, entry)
		}
	}

	return buf.Bytes(), nil
}

// ToText renders the report as plain text.
func ToText(r Report) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlist: %s\n", r.Name)
	if r.PlaylistID != "" {
		fmt.Fprintf(&buf, "ID: %s\n", r.PlaylistID)
	}
	fmt.Fprintf(&buf, "State: %s\n", r.State)
	fmt.Fprintf(&buf, "Added: %d/%d\n", r.Added, r.Requested)
	if r.Error != "" {
		fmt.Fprintf(&buf, "Error: %s\n", r.Error)
	}

	if len(r.Unresolved) > 0 {
		fmt.Fprintf(&buf, "\nUnresolved (%d):\n", len(r.Unresolved))
		for _, entry := range r.Unresolved {
			fmt.Fprintf(&buf, "  - %s\n", entry)
		}
	}

	return buf.Bytes(), nil
}

// Render dispatches on format: json, csv, md or txt.
func Render(r Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		return ToJSON(r)
	case "csv":
		return ToCSV(r)
	case "md", "markdown":
		return ToMarkdown(r)
	case "txt", "text", "":
		return ToText(r)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReport renders the report and writes it to path, choosing the format from the extension.
func WriteReport(r Report, path string) error {
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	data, err := Render(r, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// HistoryTable renders export records as aligned text rows, newest first as given.
func HistoryTable(records []*models.ExportRecord) string {
	if len(records) == 0 {
		return "No exports yet.\n"
	}

	rows := lo.Map(records, func(rec *models.ExportRecord, _ int) []string {
		return []string{
			"#" + strconv.Itoa(rec.Sequence),
			rec.CreatedAt.Local().Format("2006-01-02 15:04"),
			rec.Provider,
			rec.State,
			fmt.Sprintf("%d/%d", rec.Added, rec.Requested),
			rec.Name,
		}
	})
	rows = append([][]string{{"SEQ", "DATE", "PROVIDER", "STATE", "ADDED", "NAME"}}, rows...)

	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i == len(row)-1 {
				b.WriteString(cell)
				continue
			}
			fmt.Fprintf(&b, "%-*s  ", widths[i], cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ReadEntries parses export input from r.
//
// JSON input is either an array of {artist, title} objects or a simulate response with a "tracks" array.
// CSV input needs a header row with "artist" and "title" columns.
func ReadEntries(r io.Reader, format string) ([]models.TrackRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	switch strings.ToLower(format) {
	case "json", "":
		return readJSONEntries(data)
	case "csv":
		return readCSVEntries(data)
	default:
		return nil, fmt.Errorf("%w: unsupported input format %q", shared.ErrInvalidArgument, format)
	}
}

// ReadEntriesFile opens path and parses it by extension with [ReadEntries].
func ReadEntriesFile(path string) ([]models.TrackRequest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	return ReadEntries(f, strings.TrimPrefix(filepath.Ext(path), "."))
}

func readJSONEntries(data []byte) ([]models.TrackRequest, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var generated struct {
			Tracks []models.GeneratedTrack `json:"tracks"`
		}
		if err := json.Unmarshal(trimmed, &generated); err != nil {
			return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
		return lo.Map(generated.Tracks, func(g models.GeneratedTrack, _ int) models.TrackRequest { return g.Request() }), nil
	}

	var entries []models.TrackRequest
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return entries, nil
}

func readCSVEntries(data []byte) ([]models.TrackRequest, error) {
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := lo.Map(records[0], func(h string, _ int) string { return strings.ToLower(strings.TrimSpace(h)) })
	artistCol, titleCol := lo.IndexOf(header, "artist"), lo.IndexOf(header, "title")
	if artistCol < 0 || titleCol < 0 {
		return nil, fmt.Errorf("%w: CSV needs artist and title columns", shared.ErrInvalidInput)
	}

	entries := make([]models.TrackRequest, 0, len(records)-1)
	for _, rec := range records[1:] {
		if artistCol >= len(rec) || titleCol >= len(rec) {
			continue
		}
		entries = append(entries, models.TrackRequest{Artist: rec[artistCol], Title: rec[titleCol]})
	}
	return entries, nil
}
