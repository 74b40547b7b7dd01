package renderer

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed props.yml
var propsYAML []byte

//go:embed animations.yml
var animationsYAML []byte

var (
	aliasTable     map[string]string
	animationTable map[string]string
)

func init() {
	var props struct {
		Aliases map[string]string `yaml:"aliases"`
	}
	if err := yaml.Unmarshal(propsYAML, &props); err != nil {
		panic(fmt.Sprintf("renderer: bad props.yml: %v", err))
	}
	aliasTable = props.Aliases

	var anims struct {
		Animations map[string]string `yaml:"animations"`
	}
	if err := yaml.Unmarshal(animationsYAML, &anims); err != nil {
		panic(fmt.Sprintf("renderer: bad animations.yml: %v", err))
	}
	animationTable = anims.Animations
}

// propToCSS maps a styled-block property line to CSS. Most aliases come
// from the embedded table; properties whose output depends on the value are
// handled here. Unknown properties are skipped.
func propToCSS(prop, value string) (string, bool) {
	switch prop {
	case "text-weight", "font-weight", "weight", "bold":
		return "font-weight: " + fontWeight(value), true
	case "text-wrap", "wrap-text":
		switch value {
		case "true":
			return "white-space: normal", true
		case "false":
			return "white-space: nowrap", true
		}
		return "white-space: " + value, true
	case "font-style", "italic":
		if value == "true" {
			return "font-style: italic", true
		}
		return "font-style: " + value, true
	case "scroll":
		v := value
		if v == "true" {
			v = "auto"
		}
		return "overflow: " + v + "; -webkit-overflow-scrolling: touch", true
	case "bg-gradient", "gradient":
		if strings.Contains(value, "to ") || strings.Contains(value, "deg") {
			return "background: linear-gradient(" + value + ")", true
		}
		return "background: linear-gradient(135deg, " + value + ")", true
	case "shape":
		return "border-radius: " + shapeRadius(value), true
	case "shadow", "box-shadow":
		return shadowCSS(value), true
	case "effect":
		return effectCSS(value)
	case "transition":
		switch value {
		case "all":
			return "transition: all 0.3s ease", true
		case "fast":
			return "transition: all 0.15s ease", true
		case "slow":
			return "transition: all 0.5s ease", true
		case "none":
			return "transition: none", true
		}
		return "transition: " + value, true
	case "animation", "anim":
		return "animation: " + animationName(value) + " 0.5s ease", true
	case "animation-iteration", "animation-loop":
		if value == "true" || value == "infinite" {
			return "animation-iteration-count: infinite", true
		}
		return "animation-iteration-count: " + value, true
	case "stack":
		dir := "column"
		if value == "horizontal" || value == "row" {
			dir = "row"
		}
		return "display: flex; flex-direction: " + dir + "; gap: 10px", true
	}

	tpl, ok := aliasTable[prop]
	if !ok {
		return "", false
	}
	if strings.Contains(tpl, "{}") {
		return strings.ReplaceAll(tpl, "{}", value), true
	}
	return tpl, true
}

func fontWeight(value string) string {
	switch value {
	case "thin":
		return "100"
	case "light":
		return "300"
	case "normal":
		return "400"
	case "medium":
		return "500"
	case "semibold":
		return "600"
	case "bold":
		return "700"
	case "extrabold":
		return "800"
	case "black":
		return "900"
	}
	return value
}

func shapeRadius(value string) string {
	switch value {
	case "circle":
		return "50%"
	case "pill", "rounded-full":
		return "9999px"
	case "rect", "square":
		return "0"
	case "rounded":
		return "8px"
	case "rounded-sm":
		return "4px"
	case "rounded-lg":
		return "12px"
	case "rounded-xl":
		return "16px"
	case "rounded-2xl":
		return "24px"
	}
	return value
}

func shadowCSS(value string) string {
	switch value {
	case "sm":
		return "box-shadow: 0 1px 2px rgba(0,0,0,0.05)"
	case "md":
		return "box-shadow: 0 4px 6px rgba(0,0,0,0.1)"
	case "lg":
		return "box-shadow: 0 10px 15px rgba(0,0,0,0.1)"
	case "xl":
		return "box-shadow: 0 20px 25px rgba(0,0,0,0.1)"
	case "2xl":
		return "box-shadow: 0 25px 50px rgba(0,0,0,0.25)"
	case "inner":
		return "box-shadow: inset 0 2px 4px rgba(0,0,0,0.1)"
	case "none":
		return "box-shadow: none"
	}
	return "box-shadow: " + value
}

func effectCSS(value string) (string, bool) {
	switch value {
	case "blur":
		return "filter: blur(4px)", true
	case "blur-sm":
		return "filter: blur(2px)", true
	case "blur-lg":
		return "filter: blur(8px)", true
	case "blur-xl":
		return "filter: blur(16px)", true
	case "glow":
		return "box-shadow: 0 0 20px currentColor", true
	case "neon":
		return "box-shadow: 0 0 10px currentColor, 0 0 20px currentColor, 0 0 40px currentColor", true
	case "glass", "glassmorphism":
		return "backdrop-filter: blur(10px); background: rgba(255,255,255,0.1); border: 1px solid rgba(255,255,255,0.2)", true
	case "frost":
		return "backdrop-filter: blur(20px) saturate(180%); background: rgba(255,255,255,0.7)", true
	case "grayscale":
		return "filter: grayscale(100%)", true
	case "sepia":
		return "filter: sepia(100%)", true
	case "invert":
		return "filter: invert(100%)", true
	case "saturate":
		return "filter: saturate(200%)", true
	case "hue-rotate":
		return "filter: hue-rotate(90deg)", true
	}
	return "", false
}

func animationName(value string) string {
	if mapped, ok := animationTable[value]; ok {
		return mapped
	}
	return value
}
