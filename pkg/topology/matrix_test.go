package topology

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjacencyMatrixText(t *testing.T) {
	t.Run("two node pair renders exact cells", func(t *testing.T) {
		f := newFixture(2)
		f.connect(1, 2, 10, 10, 0)
		g, err := Build(f.recs, testBuildConfig())
		require.NoError(t, err)

		want := fmt.Sprintf("%-40s| ", "") +
			fmt.Sprintf("%-40s| ", "sre1 (20001) -> sre2 (20002): 20120") + "\n\n" +
			fmt.Sprintf("%-40s| ", "sre2 (20002) -> sre1 (20001): 20210") +
			fmt.Sprintf("%-40s| ", "") + "\n\n"
		assert.Equal(t, want, g.AdjacencyMatrixText())
	})

	t.Run("rows ordered by ascending system id", func(t *testing.T) {
		g, err := Build(ringFixture().recs, testBuildConfig())
		require.NoError(t, err)

		rows := strings.Split(strings.TrimSuffix(g.AdjacencyMatrixText(), "\n\n"), "\n\n")
		require.Len(t, rows, 5)
		for i, row := range rows {
			if i == 0 {
				// sre1 connects to sre2 and sre3 only.
				assert.Contains(t, row, "sre1 (20001) -> sre2 (20002)")
				assert.Contains(t, row, "sre1 (20001) -> sre3 (20003)")
				assert.NotContains(t, row, "-> sre4")
				assert.NotContains(t, row, "-> sre5")
			}
			// Every node in the ring has outgoing links, so each row carries
			// at least one cell owned by its node.
			assert.Contains(t, row, fmt.Sprintf("sre%d (%d) ->", i+1, 20001+i))
		}
	})

	t.Run("diagonal and unconnected cells stay blank", func(t *testing.T) {
		f := newFixture(3)
		f.connect(1, 2, 10, 10, 0)
		g, err := Build(f.recs, testBuildConfig())
		require.NoError(t, err)

		rows := strings.Split(strings.TrimSuffix(g.AdjacencyMatrixText(), "\n\n"), "\n\n")
		require.Len(t, rows, 3)
		// sre3 is isolated, its whole row is blank cells.
		assert.Equal(t, strings.Repeat(fmt.Sprintf("%-40s| ", ""), 3), rows[2])
	})

	t.Run("parallel links select the lower metric", func(t *testing.T) {
		f := newFixture(2)
		f.connect(1, 2, 20, 20, 0)
		f.connect(1, 2, 10, 10, 1)
		g, err := Build(f.recs, testBuildConfig())
		require.NoError(t, err)

		out := g.AdjacencyMatrixText()
		assert.Contains(t, out, "sre1 (20001) -> sre2 (20002): 20121")
		assert.NotContains(t, out, "sre1 (20001) -> sre2 (20002): 20120")
	})

	t.Run("equal metric parallel links select the smaller interface name", func(t *testing.T) {
		f := newFixture(2)
		f.connect(1, 2, 10, 10, 1)
		f.connect(1, 2, 10, 10, 0)
		g, err := Build(f.recs, testBuildConfig())
		require.NoError(t, err)

		// to-sre2-0 sorts before to-sre2-1 regardless of record order.
		out := g.AdjacencyMatrixText()
		assert.Contains(t, out, "sre1 (20001) -> sre2 (20002): 20120")
		assert.NotContains(t, out, "sre1 (20001) -> sre2 (20002): 20121")
	})
}

func TestFormatPath(t *testing.T) {
	t.Run("ring acceptance path", func(t *testing.T) {
		g, err := Build(ringFixture().recs, testBuildConfig())
		require.NoError(t, err)

		path, err := g.ShortestPath("sre1", "sre5")
		require.NoError(t, err)
		assert.Equal(t,
			"Path from sre1 (20001) to sre5 (20005): "+
				"[<Name: sre1, SystemID: 0100.0000.0001>, "+
				"<Name: sre2, SystemID: 0100.0000.0002>, "+
				"<Name: sre5, SystemID: 0100.0000.0005>]",
			FormatPath(path))
	})

	t.Run("single node path", func(t *testing.T) {
		g, err := Build(ringFixture().recs, testBuildConfig())
		require.NoError(t, err)

		path, err := g.ShortestPath("sre2", "sre2")
		require.NoError(t, err)
		assert.Equal(t,
			"Path from sre2 (20002) to sre2 (20002): [<Name: sre2, SystemID: 0100.0000.0002>]",
			FormatPath(path))
	})

	t.Run("empty path", func(t *testing.T) {
		assert.Equal(t, "", FormatPath(nil))
	})
}
