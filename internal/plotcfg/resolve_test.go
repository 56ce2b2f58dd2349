package plotcfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestResolve(t *testing.T) {
	const jsonDoc = `{"detailed_plots":[{"file":"from-json.csv","from":"10:00:00","length":"01:00"}]}`
	const csvDoc = "File,Start,Duration\nfrom-csv.csv,11:00:00,00:30\n"

	t.Run("json wins when present", func(t *testing.T) {
		dir := t.TempDir()
		src := Sources{
			JSONPath: writeFile(t, dir, "cfg.json", jsonDoc),
			CSVPath:  writeFile(t, dir, "cfg.csv", csvDoc),
		}
		res, err := Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, src.JSONPath, res.Source)
		assert.Equal(t, []string{"from-json.csv"}, files(res.Requests))
	})

	t.Run("csv used when json missing", func(t *testing.T) {
		dir := t.TempDir()
		src := Sources{
			JSONPath: filepath.Join(dir, "cfg.json"),
			CSVPath:  writeFile(t, dir, "cfg.csv", csvDoc),
		}
		res, err := Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, src.CSVPath, res.Source)
		assert.Equal(t, []string{"from-csv.csv"}, files(res.Requests))
	})

	t.Run("csv used when json is empty", func(t *testing.T) {
		dir := t.TempDir()
		src := Sources{
			JSONPath: writeFile(t, dir, "cfg.json", `{"detailed_plots":{}}`),
			CSVPath:  writeFile(t, dir, "cfg.csv", csvDoc),
		}
		res, err := Resolve(src)
		require.NoError(t, err)
		assert.Equal(t, src.CSVPath, res.Source)
	})

	t.Run("malformed json is an error", func(t *testing.T) {
		dir := t.TempDir()
		src := Sources{
			JSONPath: writeFile(t, dir, "cfg.json", `{"detailed_plots":[{"file":"a.csv","from":"25:00:00","length":"01:00"}]}`),
			CSVPath:  writeFile(t, dir, "cfg.csv", csvDoc),
		}
		_, err := Resolve(src)
		assert.ErrorIs(t, err, ErrInvalidTime)
	})

	t.Run("nothing configured", func(t *testing.T) {
		dir := t.TempDir()
		res, err := Resolve(Sources{
			JSONPath: filepath.Join(dir, "cfg.json"),
			CSVPath:  filepath.Join(dir, "cfg.csv"),
		})
		require.NoError(t, err)
		assert.Empty(t, res.Requests)
		assert.Empty(t, res.Source)
	})
}
