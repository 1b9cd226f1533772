package catalog

import "fmt"

// Category classifies a catalog entry.
type Category int

const (
	Movie Category = iota
	Subtitle
	Unusual
	PossiblyJunk
	// Folder is only used when reporting the type of an entry; folders are
	// tracked as children, never in a file category set.
	Folder
)

// numFileCategories is the number of categories that hold file names.
const numFileCategories = int(Folder)

// FileCategories lists the categories a file can belong to.
var FileCategories = [numFileCategories]Category{Movie, Subtitle, Unusual, PossiblyJunk}

func (c Category) String() string {
	switch c {
	case Movie:
		return "Movie"
	case Subtitle:
		return "Subtitle"
	case Unusual:
		return "Unusual"
	case PossiblyJunk:
		return "PossiblyJunk"
	case Folder:
		return "Folder"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// IsFile reports whether c is one of the file categories.
func (c Category) IsFile() bool {
	return c >= Movie && c < Folder
}

// ParseCategory returns the Category named s, as produced by String.
func ParseCategory(s string) (Category, error) {
	for c := Movie; c <= Folder; c++ {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, s)
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
