package links

// Category is the coarse file type a caller asks a link for. It only
// matters when the object is missing and a placeholder is wanted.
type Category string

const (
	CategoryImage        Category = "image"
	CategoryVideo        Category = "video"
	CategoryAudio        Category = "audio"
	CategoryDocument     Category = "document"
	CategoryArchive      Category = "archive"
	CategoryPresentation Category = "presentation"
	CategoryCode         Category = "code"
	CategorySpreadsheet  Category = "spreadsheet"
)

// PlaceholderBucket holds every placeholder object.
const PlaceholderBucket = "default"

// Placeholder is the object served in place of a missing one.
type Placeholder struct {
	Bucket string
	Path   string
}

var placeholders = map[Category]Placeholder{
	CategoryImage:        {PlaceholderBucket, "img/placeholder.jpg"},
	CategoryVideo:        {PlaceholderBucket, "vid/placeholder.mp4"},
	CategoryAudio:        {PlaceholderBucket, "aud/placeholder.mp3"},
	CategoryDocument:     {PlaceholderBucket, "doc/placeholder.pdf"},
	CategoryArchive:      {PlaceholderBucket, "zip/placeholder.zip"},
	CategoryPresentation: {PlaceholderBucket, "ppt/placeholder.pptx"},
	CategoryCode:         {PlaceholderBucket, "src/placeholder.py"},
	CategorySpreadsheet:  {PlaceholderBucket, "xls/placeholder.xlsx"},
}

// LookupPlaceholder returns the placeholder registered for c.
func LookupPlaceholder(c Category) (Placeholder, bool) {
	p, ok := placeholders[c]
	return p, ok
}

// Categories lists every category with a placeholder, in no particular order.
func Categories() []Category {
	out := make([]Category, 0, len(placeholders))
	for c := range placeholders {
		out = append(out, c)
	}
	return out
}
