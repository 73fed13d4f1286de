package manifest

import (
	"strings"

	"github.com/mailru/easyjson/jlexer"
)

// dependency is one entry of a package.json dependency map.
type dependency struct {
	Name    string
	Version string
}

// packageJSON holds the package.json fields the inspector reads. Maps are
// decoded into slices so that declaration order survives.
type packageJSON struct {
	Name             string
	Scripts          []string
	Dependencies     []dependency
	DevDependencies  []dependency
	PeerDependencies []dependency
}

// UnmarshalEasyJSON implements easyjson.Unmarshaler.
func (p *packageJSON) UnmarshalEasyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "name":
			p.Name = in.String()
		case "scripts":
			for _, s := range decodeDependencies(in) {
				p.Scripts = append(p.Scripts, s.Name)
			}
		case "dependencies":
			p.Dependencies = decodeDependencies(in)
		case "devDependencies":
			p.DevDependencies = decodeDependencies(in)
		case "peerDependencies":
			p.PeerDependencies = decodeDependencies(in)
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}

// decodeDependencies reads a string-to-string object in declaration order.
func decodeDependencies(in *jlexer.Lexer) []dependency {
	var deps []dependency
	in.Delim('{')
	for !in.IsDelim('}') {
		name := strings.Clone(in.UnsafeFieldName(false))
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		deps = append(deps, dependency{Name: name, Version: in.String()})
		in.WantComma()
	}
	in.Delim('}')
	return deps
}

// lookup returns the version declared for name, if any.
func lookup(deps []dependency, name string) (string, bool) {
	for _, d := range deps {
		if d.Name == name {
			return d.Version, true
		}
	}
	return "", false
}
