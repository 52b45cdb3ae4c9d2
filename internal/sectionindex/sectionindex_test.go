package sectionindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const databaseSource = `<?php
return [
    'default' => env('DB_CONNECTION', 'mysql'),
    'connections' => [
        'mysql' => [
            'host' => env('DB_HOST', '127.0.0.1'),
            'port' => env("DB_PORT", "3306"),
        ],
        'redis' => [
            'password' => env('REDIS_PASSWORD', null),
        ],
    ],
];`

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "QuotedKeysWithDefaults",
			content: databaseSource,
			want:    []string{"DB_CONNECTION", "DB_HOST", "DB_PORT", "REDIS_PASSWORD"},
		},
		{
			name:    "UnicodeSpaceInsideCall",
			content: "env(\u00a0'APP_ENV'\u00a0,\u2003'local')",
			want:    []string{"APP_ENV"},
		},
		{
			name:    "NoDefaultArgument",
			content: `'key' => env('APP_KEY'),`,
			want:    []string{"APP_KEY"},
		},
		{
			name:    "WhitespaceInsideCall",
			content: `env(  'APP_URL'  ,  'http://localhost' )`,
			want:    []string{"APP_URL"},
		},
		{
			name:    "NestedCallInDefaultStillMatchesKey",
			content: `env('APP_NAME', ucfirst('laravel'))`,
			want:    []string{"APP_NAME"},
		},
		{
			name:    "IgnoresLowercaseAndDynamicKeys",
			content: `env('app_name') env($key) env(KEY) config('app.name')`,
			want:    nil,
		},
		{
			name:    "RepeatedKeyReportedOnce",
			content: `env('A') env('B') env('A', 'x')`,
			want:    []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if diff := cmp.Diff(tt.want, Scan(tt.content)); diff != "" {
				t.Fatalf("unexpected keys (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuild(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "database.php", databaseSource)
	writeFile(t, dir, "app.php", `<?php return ['name' => env('APP_NAME', 'Laravel')];`)
	writeFile(t, dir, "notes.txt", `env('IGNORED_TXT')`)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.php"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	writeFile(t, filepath.Join(dir, "sub"), "deep.php", `env('IGNORED_DEEP')`)

	idx, err := Build(dir, DefaultExtension)
	require.NoError(t, err)

	want := Index{
		"DB_CONNECTION":  "database",
		"DB_HOST":        "database",
		"DB_PORT":        "database",
		"REDIS_PASSWORD": "database",
		"APP_NAME":       "app",
	}
	if diff := cmp.Diff(want, idx); diff != "" {
		t.Fatalf("unexpected index (-want +got):\n%s", diff)
	}

	section, ok := idx.Section("DB_PORT")
	assert.True(t, ok)
	assert.Equal(t, "database", section)

	_, ok = idx.Section("IGNORED_TXT")
	assert.False(t, ok)
}

func TestBuildExtensionWithoutDot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "cache.inc", `env('CACHE_STORE')`)

	idx, err := Build(dir, "inc")
	require.NoError(t, err)
	assert.Equal(t, Index{"CACHE_STORE": "cache"}, idx)
}

func TestBuildSharedKeyHasSingleOwner(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "cache.php", `env('REDIS_HOST')`)
	writeFile(t, dir, "queue.php", `env('REDIS_HOST') env('QUEUE_CONNECTION')`)

	idx, err := Build(dir, DefaultExtension)
	require.NoError(t, err)

	// Ownership follows directory-listing order, so either section may win.
	assert.Contains(t, []string{"cache", "queue"}, idx["REDIS_HOST"])
	assert.Equal(t, "queue", idx["QUEUE_CONNECTION"])
	assert.Len(t, idx, 2)
}

func TestBuildFirstWriterWinsWithinIndex(t *testing.T) {
	t.Parallel()

	idx := Index{"REDIS_HOST": "cache"}
	idx.add("queue", `env('REDIS_HOST') env('QUEUE_CONNECTION')`)

	assert.Equal(t, Index{"REDIS_HOST": "cache", "QUEUE_CONNECTION": "queue"}, idx)
}

func TestBuildMissingDirectory(t *testing.T) {
	t.Parallel()

	_, err := Build(filepath.Join(t.TempDir(), "config"), DefaultExtension)
	require.ErrorIs(t, err, ErrDirectoryRead)
}

func TestBuildUnreadableMemberFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.php")
	require.NoError(t, os.Symlink(filepath.Join(dir, "absent.php"), broken))

	_, err := Build(dir, DefaultExtension)
	require.ErrorIs(t, err, ErrFileRead)
	assert.Contains(t, err.Error(), broken)
}

func TestBuildSkipsBareExtensionFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".php", `env('HIDDEN')`)
	writeFile(t, dir, "app.php", `env('APP_NAME')`)

	idx, err := Build(dir, DefaultExtension)
	require.NoError(t, err)
	assert.Equal(t, Index{"APP_NAME": "app"}, idx)
}

func TestBuildEmptyDirectory(t *testing.T) {
	t.Parallel()

	idx, err := Build(t.TempDir(), DefaultExtension)
	require.NoError(t, err)
	assert.Empty(t, idx)
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}
