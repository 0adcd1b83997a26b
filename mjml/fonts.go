package mjml

import "strings"

// DefaultFonts are the web fonts known without an mj-font declaration.
var DefaultFonts = googleFonts("Open Sans", "Droid Sans", "Lato", "Roboto", "Ubuntu")

func googleFonts(names ...string) map[string]string {
	m := make(map[string]string, len(names))
	for _, name := range names {
		m[name] = "https://fonts.googleapis.com/css?family=" + strings.ReplaceAll(name, " ", "+") + ":300,400,500,700"
	}
	return m
}
