package assembly

import (
	"fmt"
	"regexp"
	"strings"
)

// componentPattern matches a component token, optionally as the sole
// content of a paragraph (markdown wraps standalone lines in <p>).
var componentPattern = regexp.MustCompile(`<p>\s*\{\{(COMPONENT_[A-Z0-9_]+)\}\}\s*</p>|\{\{(COMPONENT_[A-Z0-9_]+)\}\}`)

// Component renders the markup for one embedded component.
type Component func() string

// Components maps token names (COMPONENT_*) to renderers.
type Components map[string]Component

// DefaultComponents returns the built-in avatar grid and opt-in form.
func DefaultComponents() Components {
	return Components{
		"COMPONENT_AVATAR_GRID": AvatarGrid(defaultAvatars),
		"COMPONENT_OPTIN_FORM":  OptinForm,
	}
}

// Expand replaces known component tokens in one pass. Generated markup is
// not scanned again; unknown tokens stay as they are.
func (c Components) Expand(text string) string {
	if len(c) == 0 || !strings.Contains(text, "{{COMPONENT_") {
		return text
	}
	return componentPattern.ReplaceAllStringFunc(text, func(tok string) string {
		m := componentPattern.FindStringSubmatch(tok)
		name := m[1]
		if name == "" {
			name = m[2]
		}
		render, ok := c[name]
		if !ok {
			return tok
		}
		return render()
	})
}

var defaultAvatars = []string{
	"Scaling Founder", "Marketing Director", "Ecom Owner", "SaaS CEO", "Local Biz Owner",
	"Real Estate Agent", "Coach/Consultant", "Agency Owner", "Startup CTO", "Enterprise VP",
}

// AvatarGrid returns a component listing names as initial-badge cards.
func AvatarGrid(names []string) Component {
	return func() string {
		var b strings.Builder
		b.WriteString(`<div class="grid grid-cols-2 md:grid-cols-5 gap-4 my-8">`)
		for _, n := range names {
			initial := ""
			if n != "" {
				initial = string([]rune(n)[0])
			}
			fmt.Fprintf(&b, "\n  <div class=\"p-4 border border-slate-700 rounded-lg text-center bg-slate-800\">"+
				"\n    <div class=\"w-12 h-12 bg-blue-600/20 rounded-full mx-auto mb-2 flex items-center justify-center text-blue-400 font-bold\">%s</div>"+
				"\n    <div class=\"text-xs font-medium text-white\">%s</div>"+
				"\n  </div>", initial, n)
		}
		b.WriteString("\n</div>")
		return b.String()
	}
}

// OptinForm renders the strategy-session opt-in form.
func OptinForm() string {
	return `<div class="bg-blue-900/20 border border-blue-800 p-8 rounded-xl my-8 text-center">
  <h3 class="text-2xl font-bold text-white mb-4">Book Your Strategy Session</h3>
  <p class="text-slate-400 mb-6">Stop guessing. Get a custom roadmap consisting of the exact systems we used to scale.</p>
  <form class="max-w-md mx-auto space-y-4">
    <input type="email" placeholder="Enter your work email" class="w-full p-3 bg-slate-900 border border-slate-700 rounded-lg text-white" />
    <button type="button" class="w-full bg-blue-600 hover:bg-blue-500 text-white font-bold py-3 rounded-lg transition-colors">Get My Roadmap</button>
    <p class="text-xs text-slate-500">No spam. Unsubscribe anytime.</p>
  </form>
</div>`
}
