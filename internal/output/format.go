// Package output turns listed files into the document written at the end of a
// run, and prints the human-readable summary.
package output

import (
	"fmt"
	"strconv"
	"strings"

	"telegram-files-client/internal/api"
)

const bytesPerMegabyte = 1024 * 1024

// Megabytes is a size rounded to two decimals. It always renders with a
// decimal point, so 2 MiB is written as 2.0.
type Megabytes float64

// ToMegabytes converts bytes to megabytes rounded half-to-even on the exact
// binary value, matching Python's round(x, 2).
func ToMegabytes(bytes int64) Megabytes {
	mb := float64(bytes) / bytesPerMegabyte
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(mb, 'f', 2, 64), 64)
	if err != nil {
		return Megabytes(mb)
	}
	return Megabytes(rounded)
}

func (m Megabytes) String() string {
	s := strconv.FormatFloat(float64(m), 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (m Megabytes) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// FileSize holds both the raw and the rounded size.
type FileSize struct {
	Bytes     int64     `json:"bytes"`
	Megabytes Megabytes `json:"megabytes"`
}

// MediaInfo describes playable media; zero values mean unknown.
type MediaInfo struct {
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	MimeType        string  `json:"mime_type"`
}

// FileURLs are the server locations to fetch the file from.
type FileURLs struct {
	Stream   string `json:"stream"`
	Download string `json:"download"`
}

// FormattedFile is a read-only view of an api.RemoteFile with derived fields.
type FormattedFile struct {
	ID        api.ID    `json:"id"`
	Name      string    `json:"name"`
	Size      FileSize  `json:"size"`
	MediaInfo MediaInfo `json:"media_info"`
	URLs      FileURLs  `json:"urls"`
}

// FormatFileInfo derives a FormattedFile. With a groupID the URLs carry it as
// a groupId query parameter; this is the shape the server's stream route
// reads, and is not the path form produced by api.Client.StreamURL.
func FormatFileInfo(file api.RemoteFile, baseURL, groupID string) FormattedFile {
	name := "Unnamed"
	if file.Name != nil {
		name = *file.Name
	}

	id := file.ID.String()
	var stream, download string
	if groupID != "" {
		stream = fmt.Sprintf("%s/files/%s/stream?groupId=%s", baseURL, id, groupID)
		download = fmt.Sprintf("%s/files/%s/download?groupId=%s", baseURL, id, groupID)
	} else {
		stream = fmt.Sprintf("%s/files/%s/stream", baseURL, id)
		download = fmt.Sprintf("%s/files/%s/download", baseURL, id)
	}

	return FormattedFile{
		ID:   file.ID,
		Name: name,
		Size: FileSize{
			Bytes:     int64(file.Size),
			Megabytes: ToMegabytes(int64(file.Size)),
		},
		MediaInfo: MediaInfo{
			DurationSeconds: file.Duration,
			Width:           file.Width,
			Height:          file.Height,
			MimeType:        file.Mime,
		},
		URLs: FileURLs{
			Stream:   stream,
			Download: download,
		},
	}
}
