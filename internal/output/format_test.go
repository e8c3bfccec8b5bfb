package output

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-files-client/internal/api"
)

func strPtr(s string) *string { return &s }

func TestToMegabytes(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0.0"},
		{2097152, "2.0"},
		{1048576 + 524288, "1.5"},
		{1234567, "1.18"},
		{5, "0.0"},
		{10737418240, "10240.0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMegabytes(tt.bytes).String())
		})
	}
}

func TestMegabytes_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(FileSize{Bytes: 2097152, Megabytes: ToMegabytes(2097152)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"bytes":2097152,"megabytes":2.0}`, string(data))
	assert.Contains(t, string(data), `"megabytes":2.0`)
}

func TestFormatFileInfo(t *testing.T) {
	file := api.RemoteFile{
		ID:       api.NewNumericID(42),
		Name:     strPtr("clip.mp4"),
		Size:     3145728,
		Duration: 12.5,
		Width:    1280,
		Height:   720,
		Mime:     "video/mp4",
	}

	got := FormatFileInfo(file, "http://localhost:8000", "g1")

	want := FormattedFile{
		ID:   api.NewNumericID(42),
		Name: "clip.mp4",
		Size: FileSize{Bytes: 3145728, Megabytes: 3},
		MediaInfo: MediaInfo{
			DurationSeconds: 12.5,
			Width:           1280,
			Height:          720,
			MimeType:        "video/mp4",
		},
		URLs: FileURLs{
			Stream:   "http://localhost:8000/files/42/stream?groupId=g1",
			Download: "http://localhost:8000/files/42/download?groupId=g1",
		},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(api.ID{})); diff != "" {
		t.Errorf("FormatFileInfo() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatFileInfo_Defaults(t *testing.T) {
	got := FormatFileInfo(api.RemoteFile{ID: api.NewID("abc")}, "http://localhost:8000", "")

	assert.Equal(t, "Unnamed", got.Name)
	assert.Equal(t, int64(0), got.Size.Bytes)
	assert.Equal(t, "0.0", got.Size.Megabytes.String())
	assert.Equal(t, MediaInfo{}, got.MediaInfo)
	assert.Equal(t, "http://localhost:8000/files/abc/stream", got.URLs.Stream)
	assert.Equal(t, "http://localhost:8000/files/abc/download", got.URLs.Download)
}

func TestFormatFileInfo_EmptyNameIsKept(t *testing.T) {
	got := FormatFileInfo(api.RemoteFile{ID: api.NewID("abc"), Name: strPtr("")}, "http://x", "")
	assert.Equal(t, "", got.Name)
}

func TestFormatFileInfo_DiffersFromStreamURL(t *testing.T) {
	client, err := api.New("http://localhost:8000")
	require.NoError(t, err)

	formatted := FormatFileInfo(api.RemoteFile{ID: api.NewID("f1")}, client.BaseURL(), "g1")

	assert.Equal(t, "http://localhost:8000/files/f1/stream?groupId=g1", formatted.URLs.Stream)
	assert.Equal(t, "http://localhost:8000/files/group/g1/file/f1/stream", client.StreamURL("f1", "g1"))
	assert.Equal(t, client.StreamURL("f1", ""), FormatFileInfo(api.RemoteFile{ID: api.NewID("f1")}, client.BaseURL(), "").URLs.Stream)
}
