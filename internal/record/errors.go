package record

import "fmt"

// InvalidExtraction reports document text that did not match the layout an
// extractor expects. The runner logs it and skips the document.
type InvalidExtraction struct {
	Text     string
	Expected string
}

func (e *InvalidExtraction) Error() string {
	return fmt.Sprintf("could not parse %q: expected %s", e.Text, e.Expected)
}

// Invalid is shorthand for constructing an InvalidExtraction
func Invalid(text, expected string) error {
	return &InvalidExtraction{Text: text, Expected: expected}
}
