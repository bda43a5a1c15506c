package logfields

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHelperKeys(t *testing.T) {
	cases := []struct {
		attr slog.Attr
		key  string
		want any
	}{
		{BuildID("b1"), KeyBuildID, "b1"},
		{Source("refs.bib"), KeySource, "refs.bib"},
		{Template("bibliography"), KeyTemplate, "bibliography"},
		{Document("index.md"), KeyDocument, "index.md"},
		{Tag("journal"), KeyTag, "journal"},
		{Entries(3), KeyEntries, int64(3)},
		{Style("plain"), KeyStyle, "plain"},
		{Path("/tmp/x"), KeyPath, "/tmp/x"},
		{DurationMS(1.5), KeyDurationMS, 1.5},
	}
	for _, c := range cases {
		require.Equal(t, c.key, c.attr.Key)
		require.Equal(t, c.want, c.attr.Value.Any())
	}
}

func TestError(t *testing.T) {
	require.Equal(t, "", Error(nil).Value.String())
	require.Equal(t, "boom", Error(errors.New("boom")).Value.String())
	require.Equal(t, KeyError, Error(nil).Key)
}
