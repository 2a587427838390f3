package notify

import "strings"

// Render substitutes {title} and {url}. Other placeholders are left as is.
func Render(tmpl string, ev BookmarkEvent) string {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	return strings.NewReplacer("{title}", ev.Title, "{url}", ev.URL).Replace(tmpl)
}
