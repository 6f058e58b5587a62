package maintenance

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/artmatrix/internal/address"
	"github.com/dyluth/artmatrix/internal/filter"
	"github.com/dyluth/artmatrix/internal/resolver"
	"github.com/dyluth/artmatrix/pkg/catalog"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupClient(t *testing.T) *catalog.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := catalog.NewClient(&redis.Options{Addr: mr.Addr()}, "details")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func setupSQLite(t *testing.T) *catalog.SQLiteStore {
	t.Helper()
	store, err := catalog.OpenSQLite(filepath.Join(t.TempDir(), "art.db"), "details")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in      string
		want    Range
		wantErr bool
	}{
		{in: "2", want: Range{2, 2}},
		{in: "1-4", want: Range{1, 4}},
		{in: " 3 - 4 ", want: Range{3, 4}},
		{in: "", wantErr: true},
		{in: "a-4", wantErr: true},
		{in: "4-1", wantErr: true},
		{in: "1-", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKeyRange_Keys(t *testing.T) {
	t.Run("default block", func(t *testing.T) {
		keys := DefaultKeyRange().Keys()
		require.Len(t, keys, 4*16)
		assert.Equal(t, "R1C15-r1c1", keys[0])
		assert.Equal(t, "R1C15-r1c2", keys[1])
		assert.Equal(t, "R1C18-r4c4", keys[len(keys)-1])
	})

	t.Run("narrowed sub range", func(t *testing.T) {
		kr := KeyRange{ParentRow: 3, StartCol: 2, EndCol: 2, SubRows: Range{2, 2}, SubCols: Range{1, 2}}
		assert.Equal(t, []string{"R3C2-r2c1", "R3C2-r2c2"}, kr.Keys())
	})
}

type flakyDeleter struct {
	fail    map[string]bool
	deleted []string
}

func (d *flakyDeleter) DeleteEntry(ctx context.Context, key string) error {
	if d.fail[key] {
		return errors.New("permission denied")
	}
	d.deleted = append(d.deleted, key)
	return nil
}

func TestDeleteKeys(t *testing.T) {
	ctx := context.Background()
	keys := []string{"R1C15-r1c1", "R1C15-r1c2", "R1C15-r1c3"}

	t.Run("dry run deletes nothing", func(t *testing.T) {
		store := &flakyDeleter{}
		var buf bytes.Buffer

		report := DeleteKeys(ctx, store, keys, true, &buf)

		assert.Empty(t, store.deleted)
		assert.Equal(t, DeleteReport{Targets: 3, DryRun: true}, report)
		assert.Contains(t, buf.String(), "DRY RUN")
		assert.Contains(t, buf.String(), "R1C15-r1c2\n")
	})

	t.Run("failures are counted and do not abort", func(t *testing.T) {
		store := &flakyDeleter{fail: map[string]bool{"R1C15-r1c2": true}}
		var buf bytes.Buffer

		report := DeleteKeys(ctx, store, keys, false, &buf)

		assert.Equal(t, []string{"R1C15-r1c1", "R1C15-r1c3"}, store.deleted)
		assert.Equal(t, 2, report.Deleted)
		assert.Equal(t, 1, report.Failed)
		assert.Contains(t, buf.String(), "failed: R1C15-r1c2 (permission denied)")
		assert.Contains(t, buf.String(), "Done: 2 deleted, 1 failed")
	})

	t.Run("against redis", func(t *testing.T) {
		client := setupClient(t)
		require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R1C15-r1c1"}))

		report := DeleteKeys(ctx, client, keys, false, &bytes.Buffer{})

		assert.Equal(t, 3, report.Deleted)
		_, err := client.GetEntry(ctx, "R1C15-r1c1")
		assert.True(t, catalog.IsNotFound(err))
	})
}

func TestImportFile_Array(t *testing.T) {
	store := setupSQLite(t)
	ctx := context.Background()

	input := `[
  {"id": "R1C1-r1c1", "title": "Sunset", "year": 1999, "imageUrl": "https://x/1.png", "tags": ["oil"]},
  {"slug": "legacy-slug", "title": "Old"},
  {"parentRow": 2, "parentCol": "5", "modalRow": 3, "modalCol": 1, "title": "Built"},
  {"title": "No key at all"}
]`
	var out bytes.Buffer
	report, err := ImportFile(ctx, store, strings.NewReader(input), &out)
	require.NoError(t, err)

	assert.Equal(t, ImportReport{Written: 3, Skipped: 1}, report)

	e, err := store.GetEntry(ctx, "R1C1-r1c1")
	require.NoError(t, err)
	assert.Equal(t, "Sunset", e.Title)
	assert.Equal(t, "1999", e.Year)
	assert.Equal(t, []string{"oil"}, e.Tags)

	_, err = store.GetEntry(ctx, "legacy-slug")
	require.NoError(t, err)

	e, err = store.GetEntry(ctx, "R2C5-r3c1")
	require.NoError(t, err)
	assert.Equal(t, "Built", e.Title)

	assert.Contains(t, out.String(), "skipped record 3")
}

func TestImportFile_ObjectMap(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	input := `{"R1C1-r2c2": {"title": "B"}, "R1C1-r1c1": {"title": "A"}}`
	var out bytes.Buffer
	report, err := ImportFile(ctx, client, strings.NewReader(input), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Written)

	// Written in key order
	assert.Less(t, strings.Index(out.String(), "R1C1-r1c1"), strings.Index(out.String(), "R1C1-r2c2"))

	e, err := client.GetEntry(ctx, "R1C1-r2c2")
	require.NoError(t, err)
	assert.Equal(t, "B", e.Title)
}

func TestImportFile_Errors(t *testing.T) {
	ctx := context.Background()
	store := setupSQLite(t)

	for name, input := range map[string]string{
		"empty":      "   ",
		"scalar":     `"nope"`,
		"bad array":  `[{"id": 5}]`,
		"bad object": `{"k": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ImportFile(ctx, store, strings.NewReader(input), &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestImportFile_InvalidKeyIsSkipped(t *testing.T) {
	store := setupSQLite(t)
	report, err := ImportFile(context.Background(), store, strings.NewReader(`[{"id": "has space"}]`), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
}

func TestGeneratePlaceholders(t *testing.T) {
	b := Bounds{RowStart: 2, RowEnd: 2, ColStart: 1, ColEnd: 2}
	existing := map[string]bool{"R2C1-r1c1": true}

	out := GeneratePlaceholders(existing, b)

	require.Len(t, out, 31)
	assert.Equal(t, "R2C1-r1c2", out[0].ID)
	assert.Equal(t, 1, out[0].ModalRow)
	assert.Equal(t, 2, out[0].ModalCol)
	assert.Equal(t, "R2C2-r4c4", out[len(out)-1].ID)
	assert.Empty(t, out[0].ImageURL)
}

func TestDefaultBounds(t *testing.T) {
	out := GeneratePlaceholders(nil, DefaultBounds())
	assert.Len(t, out, 17*14*16)
}

func TestGenerateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detail.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": "R2C1-r1c1", "title": "keep me", "custom": true}]`), 0644))
	b := Bounds{RowStart: 2, RowEnd: 2, ColStart: 1, ColEnd: 1}

	added, err := GenerateFile(path, b)
	require.NoError(t, err)
	assert.Equal(t, 15, added)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal(data, &records))
	require.Len(t, records, 16)
	assert.Equal(t, "keep me", records[0]["title"])
	assert.Equal(t, true, records[0]["custom"])

	t.Run("second run adds nothing", func(t *testing.T) {
		added, err := GenerateFile(path, b)
		require.NoError(t, err)
		assert.Zero(t, added)
	})

	t.Run("generated file imports cleanly", func(t *testing.T) {
		f, err := os.Open(path)
		require.NoError(t, err)
		defer f.Close()

		report, err := ImportFile(context.Background(), setupSQLite(t), f, &bytes.Buffer{})
		require.NoError(t, err)
		assert.Equal(t, 16, report.Written)
	})
}

func TestGenerateFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := GenerateFile(filepath.Join(dir, "missing.json"), DefaultBounds())
	assert.Error(t, err)

	obj := filepath.Join(dir, "obj.json")
	require.NoError(t, os.WriteFile(obj, []byte(`{"a": {}}`), 0644))
	_, err = GenerateFile(obj, DefaultBounds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a JSON array")
}

func TestSeedTestEntry(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	entry, err := SeedTestEntry(ctx, client)
	require.NoError(t, err)
	assert.Equal(t, TestEntryKey, entry.Key)

	stored, err := client.GetEntry(ctx, TestEntryKey)
	require.NoError(t, err)
	assert.Equal(t, "Test Work", stored.Title)

	// The test document must never surface as a sibling
	set := resolver.New(client, resolver.WithStrictImages(false)).ResolveParent(ctx, address.ParentKey{Row: 1, Col: 1})
	assert.Zero(t, set.Found)
}

func TestGetEntry(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()
	require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R01C01-r01c01", Title: "Padded"}))
	r := resolver.New(client)

	t.Run("resolves historical spelling", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, GetEntry(ctx, r, "R1C1-r1c1", &buf))

		var e catalog.Entry
		require.NoError(t, json.Unmarshal(buf.Bytes(), &e))
		assert.Equal(t, "Padded", e.Title)
	})

	t.Run("not found", func(t *testing.T) {
		err := GetEntry(ctx, r, "R9C9-r1c1", &bytes.Buffer{})
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
		assert.Equal(t, "entry 'R9C9-r1c1' not found", err.Error())
		assert.Len(t, err.(*EntryNotFoundError).Tried, 4)
	})
}

func TestListEntries(t *testing.T) {
	client := setupClient(t)
	ctx := context.Background()

	t.Run("empty collection", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ListEntries(ctx, client, "details", OutputFormatDefault, nil, &buf))
		assert.Contains(t, buf.String(), "No entries found in collection 'details'")
	})

	require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R1C1-r1c1", Title: "A", ImageURL: "https://x/a.png", Description: "\n\nfirst line\nsecond"}))
	require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R1C1-r1c2", Title: "B", ImageURL: "no_URL"}))
	require.NoError(t, client.SetEntry(ctx, &catalog.Entry{Key: "R2C2-r1c1", Title: "C", ImageURL: "img/c.png"}))

	t.Run("table", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ListEntries(ctx, client, "details", OutputFormatDefault, nil, &buf))
		out := buf.String()
		assert.Contains(t, out, "KEY")
		assert.Contains(t, out, "first line")
		assert.Contains(t, out, "raw")
		assert.Contains(t, out, "3 entries found")
	})

	t.Run("jsonl with filters", func(t *testing.T) {
		var buf bytes.Buffer
		criteria := &filter.Criteria{KeyGlob: "R1C1-*", RequireImage: true, Strict: true}
		require.NoError(t, ListEntries(ctx, client, "details", OutputFormatJSONL, criteria, &buf))

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)
		var e catalog.Entry
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &e))
		assert.Equal(t, "R1C1-r1c1", e.Key)
	})

	t.Run("single entry wording", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, ListEntries(ctx, client, "details", "", &filter.Criteria{ParentKey: "R2C2"}, &buf))
		assert.Contains(t, buf.String(), "1 entry found")
	})

	t.Run("unknown format", func(t *testing.T) {
		err := ListEntries(ctx, client, "details", "xml", nil, &bytes.Buffer{})
		assert.EqualError(t, err, "unknown output format: xml")
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "テスト作...", truncate("テスト作品のタイトル", 7))
}
