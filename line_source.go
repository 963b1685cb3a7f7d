package todomark

import (
	"bytes"
	"context"
	"log"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// FileLineSource reads lines from files below a RootManager. Age-encrypted files are
// decrypted when the keyring can open them; UTF-16 files with a byte order mark are
// transcoded. Anything else that is not valid UTF-8 text is reported as absent.
type FileLineSource struct {
	root    *RootManager
	keyring *Keyring
}

// NewFileLineSource creates a FileLineSource. keyring may be nil.
func NewFileLineSource(root *RootManager, keyring *Keyring) *FileLineSource {
	return &FileLineSource{root: root, keyring: keyring}
}

// Lines implements LineSource.
func (s *FileLineSource) Lines(ctx context.Context, path string) ([]string, bool) {
	if ctx.Err() != nil {
		return nil, false
	}

	content, err := s.root.ReadFile(path)
	if err != nil {
		return nil, false
	}

	if IsAgeEncrypted(content) {
		if !s.keyring.HasIdentities() {
			return nil, false
		}
		content, err = s.keyring.Decrypt(content)
		if err != nil {
			log.Printf("Skipping %s: %v", path, err)
			return nil, false
		}
	}

	text, ok := decodeText(content)
	if !ok {
		return nil, false
	}

	return SplitLines(text), true
}

var (
	utf16LEBOM = []byte{0xFF, 0xFE}
	utf16BEBOM = []byte{0xFE, 0xFF}
	utf8BOM    = []byte{0xEF, 0xBB, 0xBF}
)

// decodeText returns content as UTF-8 text, or false when it does not look like text.
func decodeText(content []byte) (string, bool) {
	if bytes.HasPrefix(content, utf16LEBOM) || bytes.HasPrefix(content, utf16BEBOM) {
		decoder := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		decoded, _, err := transform.Bytes(decoder, content)
		if err != nil {
			return "", false
		}
		content = decoded
	}

	content = bytes.TrimPrefix(content, utf8BOM)

	if bytes.IndexByte(content, 0) >= 0 || !utf8.Valid(content) {
		return "", false
	}

	return string(content), true
}
