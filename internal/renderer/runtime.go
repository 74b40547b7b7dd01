package renderer

import (
	_ "embed"
	"strings"

	"github.com/mintaslang/dew/internal/types"
)

//go:embed runtime.css
var runtimeCSS string

//go:embed runtime.js
var runtimeJS string

// injectRuntime inserts the keyframe styles and the client runtime script
// before </body>, with the render data serialized as the runtime's initial
// state. Documents without a body are left untouched.
func injectRuntime(s string, data map[string]types.Value) string {
	if !strings.Contains(s, "</body>") {
		return s
	}

	script := strings.Replace(runtimeJS, "DATA_PLACEHOLDER", types.Table(data).JS(), 1)

	var b strings.Builder
	b.WriteString("\n<style>\n")
	b.WriteString(runtimeCSS)
	b.WriteString("</style>\n<script>\n")
	b.WriteString(script)
	b.WriteString("</script>\n")

	return strings.Replace(s, "</body>", b.String()+"</body>", 1)
}
