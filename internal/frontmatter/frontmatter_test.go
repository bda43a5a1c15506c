package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		wantHeader string
		wantBody   string
		wantHad    bool
	}{
		{name: "no header", in: "# Title\n", wantBody: "# Title\n"},
		{name: "header", in: "---\ntitle: x\n---\nbody\n", wantHeader: "title: x\n", wantBody: "body\n", wantHad: true},
		{name: "empty header", in: "---\n---\nbody", wantHeader: "", wantBody: "body", wantHad: true},
		{name: "crlf", in: "---\r\ntitle: x\r\n---\r\nbody\r\n", wantHeader: "title: x\r\n", wantBody: "body\r\n", wantHad: true},
		{name: "closing at eof", in: "---\ntitle: x\n---", wantHeader: "title: x\n", wantBody: "", wantHad: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header, body, had, err := Split([]byte(tt.in))
			require.NoError(t, err)
			require.Equal(t, tt.wantHad, had)
			require.Equal(t, tt.wantHeader, string(header))
			require.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestSplit_MissingClosingDelimiter(t *testing.T) {
	_, _, _, err := Split([]byte("---\ntitle: x\nbody\n"))
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParse(t *testing.T) {
	meta, body, err := Parse([]byte("---\ntitle: Papers\ntemplate: article\nauthor: me\n---\n# Hi\n"))
	require.NoError(t, err)
	require.Equal(t, "Papers", meta.Title)
	require.Equal(t, "article", meta.Template)
	require.Equal(t, "me", meta.Params["author"])
	require.Equal(t, "# Hi\n", string(body))

	meta, body, err = Parse([]byte("plain"))
	require.NoError(t, err)
	require.Empty(t, meta.Title)
	require.NotNil(t, meta.Params)
	require.Equal(t, "plain", string(body))

	_, _, err = Parse([]byte("---\ntitle: [\n---\n"))
	require.Error(t, err)
}
