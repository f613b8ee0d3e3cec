package completion_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/nqls"
	"github.com/rlch/nqls/completion"
)

func TestCompleteSnippets(t *testing.T) {
	t.Parallel()

	snippets := []nqls.Snippet{
		{Name: "Orders Summary", Content: "SELECT 1"},
		{Name: "summary2"},
		{Name: "active_users"},
	}

	tests := []struct {
		name   string
		filter string
		want   []string
	}{
		{name: "substring anywhere", filter: "sum", want: []string{"Orders Summary", "summary2"}},
		{name: "case insensitive", filter: "SUMMARY", want: []string{"Orders Summary", "summary2"}},
		{name: "empty filter matches all", filter: "", want: []string{"Orders Summary", "summary2", "active_users"}},
		{name: "no match", filter: "zzz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := completion.CompleteSnippets(tt.filter, snippets)
			require.NotNil(t, got)

			names := make([]string, 0, len(got))
			for _, c := range got {
				assert.Equal(t, c.Name, c.DisplayValue)
				assert.Empty(t, c.Meta)

				names = append(names, c.Name)
			}

			if diff := cmp.Diff(tt.want, names); diff != "" {
				t.Errorf("names mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompleteSnippets_NilList(t *testing.T) {
	t.Parallel()

	got := completion.CompleteSnippets("x", nil)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	in := []nqls.Candidate{
		{Name: "TOTAL", Meta: "Orders :type/Float"},
		{Name: "TAX", Meta: "Orders :type/Float"},
		{Name: "TOTAL", Meta: "ORDERS :type/Float"},
		{Name: "total", Meta: "lower"},
	}

	want := []nqls.Candidate{
		{Name: "TOTAL", Meta: "Orders :type/Float"},
		{Name: "TAX", Meta: "Orders :type/Float"},
		{Name: "total", Meta: "lower"},
	}

	if diff := cmp.Diff(want, completion.Dedupe(in)); diff != "" {
		t.Errorf("Dedupe mismatch (-want +got):\n%s", diff)
	}
}
