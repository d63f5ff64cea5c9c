package list

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The fake store used by the usecase tests has no schema, so a raw insert
// that skips a NOT NULL column only fails against a live database. Pin the
// pair insert to the full column set here instead.
func TestInsertPairSuppliesAllColumns(t *testing.T) {
	for _, column := range []string{"guild_id", "list_id", "created_on"} {
		require.Contains(t, insertPairQuery, column)
	}

	require.Equal(t, 3, strings.Count(insertPairQuery, "$"))
}
