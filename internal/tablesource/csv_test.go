package tablesource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Delimiter
	}{
		{
			name:    "comma separated",
			content: "id,header,body\nm1,Hello,World\nm2,Hi,There",
			want:    DelimiterComma,
		},
		{
			name:    "semicolon separated",
			content: "id;header;body\nm1;Hello;World\nm2;Hi;There",
			want:    DelimiterSemicolon,
		},
		{
			name:    "tab separated",
			content: "id\theader\tbody\nm1\tHello\tWorld",
			want:    DelimiterTab,
		},
		{
			name:    "semicolon wins over commas inside text",
			content: "id;header;body\nm1;Hello, friend;See you, soon\nm2;Hi;There",
			want:    DelimiterSemicolon,
		},
		{
			name:    "empty content defaults to comma",
			content: "",
			want:    DelimiterComma,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectDelimiter(tt.content))
		})
	}
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain fields",
			line: "a,b,c",
			want: []string{"a", "b", "c"},
		},
		{
			name: "quoted field with delimiter",
			line: `m1,"Hello, friend",body`,
			want: []string{"m1", "Hello, friend", "body"},
		},
		{
			name: "escaped quotes",
			line: `m1,"She said ""hi""",body`,
			want: []string{"m1", `She said "hi"`, "body"},
		},
		{
			name: "trailing empty field",
			line: "a,b,",
			want: []string{"a", "b", ""},
		},
		{
			name: "unicode content",
			line: "m1,Dobrodošli natrag,tijelo",
			want: []string{"m1", "Dobrodošli natrag", "tijelo"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLine(tt.line, ',', '"'))
		})
	}
}

func TestParseCSV(t *testing.T) {
	content := []byte("Message ID,Header,Body\nm1,Hello,World\n\nm2,Hi,There\n")
	table, err := ParseCSV(content, "messages.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"Message ID", "Header", "Body"}, table.Columns)
	require.Len(t, table.Records, 2)
	assert.Equal(t, "m1", table.Records[0]["Message ID"])
	assert.Equal(t, "There", table.Records[1]["Body"])
}

func TestParseCSVShortRowsPadded(t *testing.T) {
	content := []byte("id,header,body\nm1,Hello\n")
	table, err := ParseCSV(content, "short.csv")
	require.NoError(t, err)

	require.Len(t, table.Records, 1)
	assert.Equal(t, "", table.Records[0]["body"])
}

func TestParseCSVWindowsLineEndings(t *testing.T) {
	content := []byte("id,header\r\nm1,Hello\r\nm2,Hi\r\n")
	table, err := ParseCSV(content, "crlf.csv")
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, "Hello", table.Records[0]["header"])
}

func TestParseCSVBOM(t *testing.T) {
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("id,header\nm1,Hello\n")...)
	table, err := ParseCSV(content, "bom.csv")
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "header"}, table.Columns)
}

func TestParseCSVQuotedMultilineCell(t *testing.T) {
	content := []byte("id,header,body\nm1,Hi,\"line one\nline two\"\nm2,Hello,World\n")
	table, err := ParseCSV(content, "multiline.csv")
	require.NoError(t, err)

	require.Len(t, table.Records, 2)
	assert.Equal(t, "line one\nline two", table.Records[0]["body"])
	assert.Equal(t, "m2", table.Records[1]["id"])
	assert.Equal(t, "World", table.Records[1]["body"])
}

func TestParseCSVNoHeader(t *testing.T) {
	_, err := ParseCSV([]byte("   \n\n"), "empty.csv")
	assert.Error(t, err)
}

func TestFailedPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "csv source", in: "data/messages.csv", want: filepath.Join("data", "messages_failed.csv")},
		{name: "xlsx source exports csv", in: "messages.xlsx", want: "messages_failed.csv"},
		{name: "no extension", in: "messages", want: "messages_failed.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FailedPath(tt.in))
		})
	}
}

func TestFailedTableRoundTrip(t *testing.T) {
	src := &Table{
		Name:    "messages.csv",
		Columns: []string{"id", "header", "body"},
		Records: []Record{
			{"id": "m1", "header": "Hello, friend", "body": "World"},
			{"id": "m2", "header": "Hi", "body": "There"},
		},
	}

	failed := FailedTable(src, []Record{src.Records[0]}, []string{"header: too long"})
	assert.Equal(t, []string{"id", "header", "body", "error"}, failed.Columns)
	require.Len(t, failed.Records, 1)
	assert.Equal(t, "header: too long", failed.Records[0]["error"])

	path := filepath.Join(t.TempDir(), "messages_failed.csv")
	require.NoError(t, WriteCSV(failed, path))

	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)

	reparsed, parseErr := ParseCSV(content, "messages_failed.csv")
	require.NoError(t, parseErr)
	assert.Equal(t, failed.Columns, reparsed.Columns)
	require.Len(t, reparsed.Records, 1)
	assert.Equal(t, "Hello, friend", reparsed.Records[0]["header"])
	assert.Equal(t, "m1", reparsed.Records[0]["id"])
}

func TestFailedTableRoundTripMultilineCell(t *testing.T) {
	// XLSX sources preserve newlines inside cells, so the retry export
	// must carry them through its own CSV quoting and back.
	src := &Table{
		Name:    "messages.xlsx",
		Columns: []string{"id", "header", "body"},
		Records: []Record{
			{"id": "m1", "header": "Hi", "body": "line one\nline two"},
		},
	}

	failed := FailedTable(src, src.Records, []string{"body: too long"})
	path := filepath.Join(t.TempDir(), "messages_failed.csv")
	require.NoError(t, WriteCSV(failed, path))

	content, readErr := os.ReadFile(path)
	require.NoError(t, readErr)

	reparsed, parseErr := ParseCSV(content, "messages_failed.csv")
	require.NoError(t, parseErr)
	require.Len(t, reparsed.Records, 1)
	assert.Equal(t, "line one\nline two", reparsed.Records[0]["body"])
	assert.Equal(t, "m1", reparsed.Records[0]["id"])
	assert.Equal(t, "body: too long", reparsed.Records[0]["error"])
}
