package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"

	"telegram-files-client/internal/api"
	"telegram-files-client/internal/locales"
)

const (
	timestampLayout = "2006-01-02 15:04:05"
	filenameLayout  = "20060102_150405"

	// DefaultGroupType is used when the server does not say what a chat is.
	DefaultGroupType = "group"
)

// Document is the JSON written at the end of a run.
type Document struct {
	Timestamp    string            `json:"timestamp"`
	Server       string            `json:"server"`
	ServerStatus *api.ServerStatus `json:"server_status,omitempty"`
	Groups       []Group           `json:"groups"`
}

// Group is a listed chat and its formatted files.
type Group struct {
	ID    api.ID          `json:"id"`
	Name  string          `json:"name"`
	Type  string          `json:"type"`
	Files []FormattedFile `json:"files"`
}

// NewDocument starts a document stamped with now.
func NewDocument(server string, now time.Time) *Document {
	return &Document{
		Timestamp: now.Format(timestampLayout),
		Server:    server,
		Groups:    []Group{},
	}
}

// NewGroup starts an output group for g with no files.
func NewGroup(g api.Group) Group {
	groupType := g.Type
	if groupType == "" {
		groupType = DefaultGroupType
	}
	return Group{
		ID:    g.ID,
		Name:  g.Name,
		Type:  groupType,
		Files: []FormattedFile{},
	}
}

// OutputFilename returns dir/telegram_files_<YYYYMMDD_HHMMSS>.json.
func OutputFilename(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("telegram_files_%s.json", now.Format(filenameLayout)))
}

// SaveJSONOutput writes data to filename as two-space indented JSON with
// non-ASCII and HTML characters written literally. The file is closed on
// every path; a failed encode may leave a partial file behind.
func SaveJSONOutput(data any, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", filename, closeErr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	return nil
}

// WriteSummary prints one block per file: name, size, duration, resolution
// and stream URL.
func WriteSummary(w io.Writer, localizer *i18n.Localizer, files []FormattedFile) {
	for _, f := range files {
		fmt.Fprintln(w)
		fmt.Fprintln(w, locales.GetMessage(localizer, "MsgSummaryName", map[string]interface{}{"Name": f.Name}, nil))
		fmt.Fprintln(w, locales.GetMessage(localizer, "MsgSummarySize", map[string]interface{}{"Megabytes": f.Size.Megabytes.String()}, nil))
		fmt.Fprintln(w, locales.GetMessage(localizer, "MsgSummaryDuration", map[string]interface{}{
			"Duration": strconv.FormatFloat(f.MediaInfo.DurationSeconds, 'f', -1, 64),
		}, nil))
		fmt.Fprintln(w, locales.GetMessage(localizer, "MsgSummaryResolution", map[string]interface{}{
			"Width":  f.MediaInfo.Width,
			"Height": f.MediaInfo.Height,
		}, nil))
		fmt.Fprintln(w, locales.GetMessage(localizer, "MsgSummaryStream", map[string]interface{}{"URL": f.URLs.Stream}, nil))
	}
}
