package gen

import (
	"regexp"
	"strings"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/pipegraph/compiler/load"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func isIdent(s string) bool { return identPattern.MatchString(s) }

// defaultFields names ports declared with the default tag.
var defaultFields = map[load.Category]string{
	load.Inputs:      "In",
	load.Outputs:     "Out",
	load.SideInputs:  "SideIn",
	load.SideOutputs: "SideOut",
}

// fieldName returns the struct field holding the handle of p: the explicit
// name when set, otherwise the camel-cased tag, pluralized for repeated ports.
func fieldName(cat load.Category, p *load.Port) string {
	if p.Name != "" {
		return p.Name
	}
	// A Caser is not safe for concurrent use.
	title := cases.Title(language.English)
	var b strings.Builder
	for _, w := range strings.Split(p.Tag, "_") {
		b.WriteString(title.String(w))
	}
	name := b.String()
	switch {
	case name == "":
		name = defaultFields[cat]
	case !isIdent(name):
		name = "Port" + name
	}
	if p.Repeated {
		name = inflect.Pluralize(name)
	}
	return name
}

// fileName returns the generated file of a contract.
func fileName(c *load.Contract) string {
	return inflect.Underscore(c.FuncName()) + ".go"
}
