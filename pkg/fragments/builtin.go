package fragments

import (
	_ "embed"
	"sort"
)

// Embedded builtin workflow templates
var (
	//go:embed workflows/refine.md
	refineContent string

	//go:embed workflows/solve.md
	solveContent string
)

var builtinFragments = map[string]string{
	"refine": refineContent,
	"solve":  solveContent,
}

// builtinFragment returns the embedded template for a name, if one exists
func builtinFragment(name string) (string, bool) {
	content, ok := builtinFragments[name]
	return content, ok
}

// builtinFragmentNames returns the sorted names of the embedded workflows
func builtinFragmentNames() []string {
	names := make([]string, 0, len(builtinFragments))
	for name := range builtinFragments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
