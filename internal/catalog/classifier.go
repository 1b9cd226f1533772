package catalog

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultVideoExtensions are the extensions treated as video when a file is
// larger than the size threshold.
var DefaultVideoExtensions = []string{
	"ASX", "GXF", "M2V", "M3U", "M4V", "MPEG1", "MPEG2", "MTS", "MXF",
	"OGM", "PLS", "BUP", "B4S", "CUE", "DIVX", "DV", "FLV", "M1V", "M2TS", "MKV", "MOV", "MPEG4",
	"TS", "VLC", "VOB", "XSPF", "DAT", "IFO", "3G2", "MPEG", "MPG", "OGG", "3GP", "WMV", "AVI", "ASF",
	"MP4", "M4P",
}

// DefaultSubtitleExtensions are the extensions treated as subtitles when a
// file is at or below the size threshold.
var DefaultSubtitleExtensions = []string{"SRT", "SUB", "IDX"}

// Classifier assigns file categories from a filename and size. It is
// immutable once constructed and safe for concurrent use.
type Classifier struct {
	videoPattern    string
	subtitlePattern string
}

// NewClassifier compiles the extension lists into match patterns.
func NewClassifier(videoExts, subtitleExts []string) (*Classifier, error) {
	video, err := extensionPattern(videoExts)
	if err != nil {
		return nil, fmt.Errorf("video extensions: %w", err)
	}
	sub, err := extensionPattern(subtitleExts)
	if err != nil {
		return nil, fmt.Errorf("subtitle extensions: %w", err)
	}
	return &Classifier{videoPattern: video, subtitlePattern: sub}, nil
}

// DefaultClassifier returns a Classifier using the default extension lists.
func DefaultClassifier() *Classifier {
	c, err := NewClassifier(DefaultVideoExtensions, DefaultSubtitleExtensions)
	if err != nil {
		panic(err)
	}
	return c
}

// extensionPattern builds a lowercase pattern matching "[!.]*.{ext1,ext2,...}".
// Filenames starting with "." never match.
func extensionPattern(exts []string) (string, error) {
	cleaned := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext == "" {
			continue
		}
		cleaned = append(cleaned, ext)
	}
	if len(cleaned) == 0 {
		return "", fmt.Errorf("%w: received an empty extensions list", ErrInvalidArgument)
	}
	pattern := "[!.]*.{" + strings.Join(cleaned, ",") + "}"
	if !doublestar.ValidatePattern(pattern) {
		return "", fmt.Errorf("%w: invalid extension pattern %q", ErrInvalidArgument, pattern)
	}
	return pattern, nil
}

// Classify categorizes a bare filename by extension and by its size
// against threshold (both in bytes).
func (c *Classifier) Classify(filename string, size, threshold int64) (Category, error) {
	if err := mustBeFilename(filename); err != nil {
		return 0, err
	}
	if size > threshold {
		if c.IsVideo(filename) {
			return Movie, nil
		}
		return Unusual, nil
	}
	// Subtitle extensions larger than the threshold are Unusual, not Subtitle.
	if c.IsSubtitle(filename) {
		return Subtitle, nil
	}
	return PossiblyJunk, nil
}

// IsVideo reports whether the final component of name has a video extension.
func (c *Classifier) IsVideo(name string) bool {
	return matchName(c.videoPattern, name)
}

// IsSubtitle reports whether the final component of name has a subtitle extension.
func (c *Classifier) IsSubtitle(name string) bool {
	return matchName(c.subtitlePattern, name)
}

func matchName(pattern, name string) bool {
	ok, err := doublestar.Match(pattern, strings.ToLower(filepath.Base(name)))
	return err == nil && ok
}

func mustBeFilename(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: expected a bare filename but received %q, did you provide a full path?", ErrInvalidArgument, name)
	}
	return nil
}

func mustBeAbsolute(path string) error {
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: expected an absolute path but received a relative path: %q", ErrInvalidArgument, path)
	}
	return nil
}
