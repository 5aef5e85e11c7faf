// ABOUTME: Embeds the transcript page template into the binary using go:embed
// ABOUTME: Provides templateFS for parsing the template once at startup

package transcript

import "embed"

//go:embed templates/*.html
var templateFS embed.FS
