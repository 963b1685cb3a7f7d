package todomark_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"filippo.io/age"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickward/todomark"
)

func setupRootManager(t *testing.T, files map[string]string) *todomark.RootManager {
	t.Helper()

	tmp := t.TempDir()
	writeFiles(t, tmp, files)

	rm, err := todomark.NewRootManager(tmp)
	require.NoError(t, err)

	return rm
}

func encrypt(t *testing.T, plaintext string, recipient age.Recipient) string {
	t.Helper()

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, recipient)
	require.NoError(t, err)
	_, err = w.Write([]byte(plaintext))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	return buf.String()
}

func TestFileLineSource_Lines(t *testing.T) {
	t.Parallel()

	rm := setupRootManager(t, map[string]string{
		"plain.txt":    "one\ntwo\n",
		"crlf.txt":     "one\r\ntwo",
		"bom.txt":      "\xEF\xBB\xBFTODO: bom",
		"utf16le.txt":  "\xFF\xFET\x00O\x00D\x00O\x00\n\x00x\x00",
		"utf16be.txt":  "\xFE\xFF\x00T\x00O\x00D\x00O",
		"nul.bin":      "TODO\x00",
		"latin1.txt":   "caf\xE9",
		"sub/deep.txt": "deep",
	})
	source := todomark.NewFileLineSource(rm, nil)
	ctx := context.Background()

	tests := []struct {
		path      string
		wantLines []string
		wantOK    bool
	}{
		{path: "plain.txt", wantLines: []string{"one", "two", ""}, wantOK: true},
		{path: "crlf.txt", wantLines: []string{"one", "two"}, wantOK: true},
		{path: "bom.txt", wantLines: []string{"TODO: bom"}, wantOK: true},
		{path: "utf16le.txt", wantLines: []string{"TODO", "x"}, wantOK: true},
		{path: "utf16be.txt", wantLines: []string{"TODO"}, wantOK: true},
		{path: "sub/deep.txt", wantLines: []string{"deep"}, wantOK: true},
		{path: "nul.bin", wantOK: false},
		{path: "latin1.txt", wantOK: false},
		{path: "missing.txt", wantOK: false},
		{path: "../escape.txt", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			lines, ok := source.Lines(ctx, tt.path)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLines, lines)
			}
		})
	}
}

func TestFileLineSource_Cancelled(t *testing.T) {
	t.Parallel()

	rm := setupRootManager(t, map[string]string{"a.txt": "TODO"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := todomark.NewFileLineSource(rm, nil).Lines(ctx, "a.txt")
	assert.False(t, ok)
}

func TestFileLineSource_Encrypted(t *testing.T) {
	t.Parallel()

	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	other, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	rm := setupRootManager(t, map[string]string{
		"secret.md.age": encrypt(t, "notes\n// TODO: rotate keys", identity.Recipient()),
		"foreign.age":   encrypt(t, "TODO: unreadable", other.Recipient()),
	})
	ctx := context.Background()

	// Without identities encrypted files are absent
	_, ok := todomark.NewFileLineSource(rm, nil).Lines(ctx, "secret.md.age")
	assert.False(t, ok)

	keyring := todomark.NewKeyring()
	require.NoError(t, keyring.AddIdentity(identity.String()))
	source := todomark.NewFileLineSource(rm, keyring)

	lines, ok := source.Lines(ctx, "secret.md.age")
	require.True(t, ok)
	assert.Equal(t, []string{"notes", "// TODO: rotate keys"}, lines)

	_, ok = source.Lines(ctx, "foreign.age")
	assert.False(t, ok)
}

func TestKeyring(t *testing.T) {
	t.Parallel()

	keyring := todomark.NewKeyring()
	assert.False(t, keyring.HasIdentities())
	assert.Error(t, keyring.AddIdentity("not-a-key"))

	_, err := keyring.Decrypt([]byte("age-encryption.org/v1\n"))
	assert.Error(t, err)

	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)

	keyFile := filepath.Join(t.TempDir(), "key.txt")
	require.NoError(t, os.WriteFile(keyFile, []byte("# created for tests\n"+identity.String()+"\n"), 0600))
	require.NoError(t, keyring.AddIdentitiesFromFile(keyFile))
	assert.True(t, keyring.HasIdentities())

	plaintext, err := keyring.Decrypt([]byte(encrypt(t, "hello", identity.Recipient())))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(plaintext))

	assert.Error(t, keyring.AddIdentitiesFromFile(filepath.Join(t.TempDir(), "missing.txt")))

	var nilKeyring *todomark.Keyring
	assert.False(t, nilKeyring.HasIdentities())
}

func TestIsAgeEncrypted(t *testing.T) {
	t.Parallel()

	assert.True(t, todomark.IsAgeEncrypted([]byte("age-encryption.org/v1\n-> X25519 abc")))
	assert.False(t, todomark.IsAgeEncrypted([]byte("age-encryption.org")))
	assert.False(t, todomark.IsAgeEncrypted([]byte("# TODO: plain markdown file")))
}

func TestRootManager(t *testing.T) {
	t.Parallel()

	rm := setupRootManager(t, map[string]string{
		"inbox.md":            "title: Inbox",
		"resources/looney.md": "title: Looney Tunes",
	})

	content, err := rm.ReadFile("resources/looney.md")
	require.NoError(t, err)
	assert.Equal(t, "title: Looney Tunes", string(content))

	_, err = rm.ReadFile("nonexistent.md")
	assert.Error(t, err)

	_, err = rm.ReadFile("../outside.md")
	assert.Error(t, err)

	assert.True(t, rm.FileExists("inbox.md"))
	assert.False(t, rm.FileExists("resources"))
	assert.False(t, rm.FileExists("nope.md"))

	info, err := rm.Stat("inbox.md")
	require.NoError(t, err)
	assert.Equal(t, "inbox.md", info.Name())
	assert.False(t, info.IsDir())

	assert.True(t, filepath.IsAbs(rm.Path()))
	assert.Equal(t, filepath.Join(rm.Path(), "resources", "looney.md"), rm.Abs("resources/looney.md"))

	_, err = todomark.NewRootManager(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
