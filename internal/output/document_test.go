package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telegram-files-client/internal/api"
	"telegram-files-client/internal/locales"
)

func TestMain(m *testing.M) {
	if err := locales.Init("en"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

var testNow = time.Date(2025, 3, 9, 14, 7, 2, 0, time.UTC)

func TestNewDocument(t *testing.T) {
	doc := NewDocument("http://localhost:8000", testNow)

	assert.Equal(t, "2025-03-09 14:07:02", doc.Timestamp)
	assert.Equal(t, "http://localhost:8000", doc.Server)
	assert.Nil(t, doc.ServerStatus)
	assert.NotNil(t, doc.Groups)

	data, err := json.Marshal(doc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2025-03-09 14:07:02","server":"http://localhost:8000","groups":[]}`, string(data))
}

func TestNewGroup(t *testing.T) {
	tests := []struct {
		name  string
		group api.Group
		want  string
	}{
		{"MissingType", api.Group{ID: api.NewID("g1"), Name: "Memes"}, "group"},
		{"Channel", api.Group{ID: api.NewNumericID(-1001), Name: "News", Type: "channel"}, "channel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGroup(tt.group)
			assert.Equal(t, tt.want, g.Type)
			assert.Equal(t, tt.group.Name, g.Name)
			assert.Equal(t, tt.group.ID, g.ID)
			assert.NotNil(t, g.Files)
			assert.Empty(t, g.Files)
		})
	}
}

func TestOutputFilename(t *testing.T) {
	assert.Equal(t, "telegram_files_20250309_140702.json", OutputFilename("", testNow))
	assert.Equal(t, filepath.Join("out", "telegram_files_20250309_140702.json"), OutputFilename("out", testNow))
}

func TestSaveJSONOutput(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.json")
	doc := NewDocument("http://localhost:8000", testNow)
	group := NewGroup(api.Group{ID: api.NewID("g1"), Name: "Мемы & <видео>"})
	group.Files = append(group.Files, FormatFileInfo(
		api.RemoteFile{ID: api.NewID("f1"), Name: strPtr("кот.mp4"), Size: 2097152},
		"http://localhost:8000", "g1"))
	doc.Groups = append(doc.Groups, group)

	require.NoError(t, SaveJSONOutput(doc, filename))

	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	text := string(raw)
	assert.True(t, strings.HasPrefix(text, "{\n  \"timestamp\""), "two-space indent expected, got:\n%s", text)
	assert.Contains(t, text, `"name": "Мемы & <видео>"`)
	assert.Contains(t, text, `"name": "кот.mp4"`)
	assert.Contains(t, text, `"megabytes": 2.0`)
	assert.NotContains(t, text, `\u`)

	var decoded Document
	require.NoError(t, json.Unmarshal(raw, &decoded))
	if diff := cmp.Diff(doc.Groups[0].Name, decoded.Groups[0].Name); diff != "" {
		t.Errorf("group name mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "g1", decoded.Groups[0].ID.String())
}

func TestSaveJSONOutput_MissingDirectory(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "missing", "out.json")
	err := SaveJSONOutput(map[string]string{"a": "b"}, filename)
	assert.Error(t, err)
}

func TestSaveJSONOutput_UnencodableData(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "out.json")
	err := SaveJSONOutput(map[string]any{"ch": make(chan int)}, filename)
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	files := []FormattedFile{
		FormatFileInfo(api.RemoteFile{
			ID:       api.NewID("f1"),
			Name:     strPtr("a.mp4"),
			Size:     2097152,
			Duration: 3.5,
			Width:    640,
			Height:   480,
		}, "http://localhost:8000", "g1"),
		FormatFileInfo(api.RemoteFile{ID: api.NewID("f2")}, "http://localhost:8000", "g1"),
	}

	var buf bytes.Buffer
	WriteSummary(&buf, locales.NewLocalizer("en"), files)

	want := "\nName: a.mp4\n" +
		"Size: 2.0 MB\n" +
		"Duration: 3.5 seconds\n" +
		"Resolution: 640x480\n" +
		"Stream URL: http://localhost:8000/files/f1/stream?groupId=g1\n" +
		"\nName: Unnamed\n" +
		"Size: 0.0 MB\n" +
		"Duration: 0 seconds\n" +
		"Resolution: 0x0\n" +
		"Stream URL: http://localhost:8000/files/f2/stream?groupId=g1\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteSummary() mismatch (-want +got):\n%s", diff)
	}
}
