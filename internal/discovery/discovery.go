// Package discovery finds the text files a marker scan should read.
//
// Files are selected with doublestar globs relative to the scan root. A file is kept when it
// matches at least one include glob and no exclude glob; directories matching an exclude glob
// are pruned without being walked. Paths with a known binary extension are dropped before any
// content is read.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/patrickward/todomark"
)

// Options configures a discovery run.
type Options struct {
	Include []string // Globs selecting files, all files when empty
	Exclude []string // Globs removing files and pruning directories
	Limit   int      // Maximum number of files, 0 means no limit
}

// DefaultExcludes are the directories and files no scan is interested in.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/CVS/**",
	"**/.DS_Store",
	"**/node_modules/**",
	"**/bower_components/**",
	"**/vendor/**",
	"**/dist/**",
	"**/out/**",
	"**/build/**",
	"**/.vscode/**",
	"**/.idea/**",
}

var errLimitReached = errors.New("file limit reached")

// DefaultOptions scans every file below the root, up to 256 files.
var DefaultOptions = Options{
	Include: []string{"**/*"},
	Exclude: DefaultExcludes,
	Limit:   256,
}

// ParseGlobs joins globs into a single brace-set pattern, e.g. {**/*.go,**/*.md}.
func ParseGlobs(globs []string) string {
	return "{" + strings.Join(globs, ",") + "}"
}

// Validate checks that every glob is well formed.
func (o Options) Validate() error {
	if o.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", o.Limit)
	}
	for _, group := range [][]string{o.Include, o.Exclude} {
		for _, glob := range group {
			if !doublestar.ValidatePattern(glob) {
				return fmt.Errorf("invalid glob %q", glob)
			}
		}
	}
	return nil
}

// Discover returns the slash-separated, root-relative paths of the files selected by opts,
// sorted. When the limit is reached the walk stops and the first files in walk order are kept.
func Discover(ctx context.Context, rm *todomark.RootManager, opts Options) ([]string, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	include := opts.Include
	if len(include) == 0 {
		include = []string{"**/*"}
	}

	var files []string

	err := rm.WalkDir(".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // Continue walking despite errors
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if p == "." {
			return nil
		}

		if d.IsDir() {
			if matchesAny(opts.Exclude, p) {
				return fs.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		if matchesAny(opts.Exclude, p) || !matchesAny(include, p) || IsBinaryPath(p) {
			return nil
		}

		files = append(files, p)
		if opts.Limit > 0 && len(files) >= opts.Limit {
			return errLimitReached
		}
		return nil
	})

	if err != nil && !errors.Is(err, errLimitReached) {
		return nil, fmt.Errorf("failed to scan %s: %w", rm.Path(), err)
	}

	log.Printf("Discovered %d files below %s", len(files), rm.Path())

	// WalkDir visits entries in lexical order, so files is already sorted.
	return files, nil
}

// matchesAny reports whether name matches one of the globs. A trailing "/**" also matches
// the directory itself, so "**/.git/**" prunes ".git".
func matchesAny(globs []string, name string) bool {
	for _, glob := range globs {
		if ok, _ := doublestar.Match(glob, name); ok {
			return true
		}
	}
	return false
}

// binaryExtensions lists extensions of files that are never text.
var binaryExtensions = map[string]bool{
	"3gp": true, "7z": true, "a": true, "aac": true, "ai": true, "avi": true, "bin": true,
	"bmp": true, "bz2": true, "class": true, "dat": true, "db": true, "dll": true, "dmg": true,
	"doc": true, "docx": true, "dylib": true, "eot": true, "exe": true, "flac": true, "flv": true,
	"gif": true, "gz": true, "ico": true, "icns": true, "iso": true, "jar": true, "jpeg": true,
	"jpg": true, "lz": true, "m4a": true, "mkv": true, "mov": true, "mp3": true, "mp4": true,
	"mpeg": true, "o": true, "obj": true, "ogg": true, "otf": true, "pdf": true, "png": true,
	"ppt": true, "pptx": true, "psd": true, "pyc": true, "rar": true, "so": true, "sqlite": true,
	"svgz": true, "tar": true, "tgz": true, "tif": true, "tiff": true, "ttf": true, "wasm": true,
	"wav": true, "webm": true, "webp": true, "woff": true, "woff2": true, "xls": true,
	"xlsx": true, "xz": true, "zip": true, "zst": true,
}

// IsBinaryPath reports whether the extension of p belongs to a binary format.
func IsBinaryPath(p string) bool {
	ext := strings.TrimPrefix(path.Ext(p), ".")
	return binaryExtensions[strings.ToLower(ext)]
}
