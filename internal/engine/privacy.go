package engine

import (
	"strings"

	"github.com/mvp-joe/pydocjson/internal/model"
)

// defaultPrivacy returns the privacy class an object gets from its name and
// its parent's class, before any rule is applied.
func defaultPrivacy(d *model.Documentable) model.PrivacyClass {
	if p := d.Parent; p != nil && p.Privacy == model.Hidden {
		return model.Hidden
	}
	if isDunder(d.Name) {
		return model.Public
	}
	if strings.HasPrefix(d.Name, "_") {
		return model.Private
	}
	if p := d.Parent; p != nil && p.Privacy == model.Private {
		return model.Private
	}
	return model.Public
}

func isDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// applyPrivacy assigns a privacy class to every object, parents first so
// children can inherit.
func applyPrivacy(sys *model.System, rules []PrivacyRule) {
	for _, d := range sys.AllObjects() {
		class := defaultPrivacy(d)
		for i := range rules {
			if rules[i].Match(d.FullName) {
				class = rules[i].Class
			}
		}
		d.Privacy = class
	}
}
