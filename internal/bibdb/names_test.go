package bibdb

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNames(t *testing.T) {
	tests := []struct {
		name  string
		field string
		want  []Person
	}{
		{
			name:  "first last",
			field: "Donald E. Knuth",
			want:  []Person{{First: []string{"Donald", "E."}, Last: []string{"Knuth"}}},
		},
		{
			name:  "last comma first",
			field: "Knuth, Donald E.",
			want:  []Person{{First: []string{"Donald", "E."}, Last: []string{"Knuth"}}},
		},
		{
			name:  "von part",
			field: "Ludwig van Beethoven",
			want:  []Person{{First: []string{"Ludwig"}, Prelast: []string{"van"}, Last: []string{"Beethoven"}}},
		},
		{
			name:  "von last comma jr comma first",
			field: "van der Berg, Jr., Hans",
			want: []Person{{
				First:   []string{"Hans"},
				Prelast: []string{"van", "der"},
				Last:    []string{"Berg"},
				Lineage: []string{"Jr."},
			}},
		},
		{
			name:  "several authors with and",
			field: "Alice Smith and Bob Jones AND Carol White",
			want: []Person{
				{First: []string{"Alice"}, Last: []string{"Smith"}},
				{First: []string{"Bob"}, Last: []string{"Jones"}},
				{First: []string{"Carol"}, Last: []string{"White"}},
			},
		},
		{
			name:  "braced corporate name",
			field: "{Barnes and Noble}",
			want:  []Person{{Last: []string{"{Barnes and Noble}"}}},
		},
		{
			name:  "empty",
			field: "",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ParseNames(tt.field))
		})
	}
}

func TestPerson_String(t *testing.T) {
	p := ParseNames("Hans van der Berg")[0]
	require.Equal(t, "van der Berg, Hans", p.String())
	require.Equal(t, "van der Berg", p.LastNames())
}

func TestClean(t *testing.T) {
	tests := map[string]string{
		"{LaTeX}: A System":      "LaTeX: A System",
		`Erd{\H{o}}s`:            "Erdős",
		`G\"odel`:                "Gödel",
		`{\"u}ber`:               "über",
		`Fran\c{c}ois`:           "François",
		`Stra\ss{}e`:             "Straße",
		"97--111":                "97–111",
		"yes---no":               "yes\u2014no",
		`Tom \& Jerry`:           "Tom & Jerry",
		`100\%`:                  "100%",
		"Donald~E. Knuth":        "Donald\u00a0E. Knuth",
		`\emph{Important} stuff`: "Important stuff",
		"multi\n  line":          "multi line",
	}
	for in, want := range tests {
		require.Equal(t, want, Clean(in), "input %q", in)
	}
}
