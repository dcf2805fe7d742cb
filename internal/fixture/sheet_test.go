package fixture

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/ladder/internal/sheet"
)

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	require.NotEmpty(t, seed.Topics)

	first := seed.Topics[0]
	assert.Equal(t, "arrays", first.ID)
	require.NotEmpty(t, first.Problems)
	assert.Equal(t, sheet.DifficultyEasy, first.Problems[0].Difficulty)
	assert.NotEmpty(t, seed.Progress)
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "valid",
			doc: `
topics:
  - id: t1
    title: One
    problems:
      - id: p1
        title: P1
        difficulty: hard
progress:
  - problemId: p1
    completed: true
`,
		},
		{
			name:    "missing topic id",
			doc:     "topics:\n  - title: One\n",
			wantErr: "id is required",
		},
		{
			name:    "duplicate topic",
			doc:     "topics:\n  - id: t1\n  - id: t1\n",
			wantErr: "duplicate id",
		},
		{
			name: "duplicate problem across topics",
			doc: `
topics:
  - id: t1
    problems: [{id: p1}]
  - id: t2
    problems: [{id: p1}]
`,
			wantErr: `problem "p1": duplicate id`,
		},
		{
			name:    "unknown progress problem",
			doc:     "topics:\n  - id: t1\nprogress:\n  - problemId: nope\n",
			wantErr: "unknown problem",
		},
		{
			name:    "bad yaml",
			doc:     "topics: [",
			wantErr: "parse sheet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seed, err := ParseSeed([]byte(tt.doc))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, seed.Topics, 1)
			assert.Equal(t, sheet.DifficultyHard, seed.Topics[0].Problems[0].Difficulty)
			assert.Equal(t, []SeedRecord{{ProblemID: "p1", Completed: true}}, seed.Progress)
		})
	}
}

func TestLoadSeed(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		seed, err := LoadSeed("  ")
		require.NoError(t, err)
		assert.NotEmpty(t, seed.Topics)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sheet.yaml")
		require.NoError(t, os.WriteFile(path, []byte("topics:\n  - id: only\n    title: Only\n"), 0o644))

		seed, err := LoadSeed(path)
		require.NoError(t, err)
		require.Len(t, seed.Topics, 1)
		assert.Equal(t, "Only", seed.Topics[0].Title)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read sheet")
	})
}
