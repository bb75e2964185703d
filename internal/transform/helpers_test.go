package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"homologation/pkg/models"
)

func raw(pairs ...string) models.RawTable {
	if len(pairs)%2 != 0 {
		panic("raw: odd number of arguments")
	}
	out := make(models.RawTable, 0, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, models.Raw(pairs[i], pairs[i+1]))
	}
	return out
}

func transformMap(t *testing.T, tr *Transformer, in models.RawTable) (map[string]string, Result) {
	t.Helper()
	res, err := tr.Transform(in)
	require.NoError(t, err)
	return res.Table.Map(), res
}

func issueFields(res Result) []string {
	out := make([]string, 0, len(res.Issues))
	for _, is := range res.Issues {
		out = append(out, is.Field)
	}
	return out
}
