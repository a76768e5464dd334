package models

import "regexp"

var (
	titlePattern = regexp.MustCompile(`^[A-ZА-Я][\w \-.,]+`)
	urlPattern   = regexp.MustCompile(`^https?://[a-z0-9\-/_]+\.(ru|com|net)/[a-z0-9\-/_]+/$`)
)

// Validate checks the page fields against the schema rules.
// Returns a *ValidationError describing every failing field, or nil.
func (p *PageDetail) Validate() error {
	fields := make(map[string]string)

	if !titlePattern.MatchString(p.Title) {
		fields["title"] = "enter valid title"
	}
	if !urlPattern.MatchString(p.URL) {
		fields["url"] = "enter valid URL"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
