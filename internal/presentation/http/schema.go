package http

import (
	"path"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/danielgtaylor/huma/v2"
)

// schemaNamer qualifies schema names with their domain package so that
// blog.Post and social.Post do not collide. Slices inside generic arguments
// get a List prefix.
func schemaNamer(t reflect.Type, hint string) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	name := t.Name()
	if name == "" {
		return huma.DefaultSchemaNamer(t, hint)
	}
	if pkg := path.Base(t.PkgPath()); pkg != "" && pkg != "." && pkg != "http" && !strings.Contains(name, "[") {
		name = pkg + "." + name
	}
	name = strings.ReplaceAll(name, "[]", "List~")

	var b strings.Builder
	for _, part := range strings.FieldsFunc(name, func(r rune) bool {
		return r == '[' || r == ']' || r == '*' || r == ','
	}) {
		for strings.HasPrefix(part, "List~") {
			b.WriteString("List")
			part = strings.TrimPrefix(part, "List~")
		}
		part = part[strings.LastIndex(part, "/")+1:]
		for _, piece := range strings.Split(part, ".") {
			if piece == "" || piece == "http" {
				continue
			}
			r, size := utf8.DecodeRuneInString(piece)
			b.WriteRune(unicode.ToUpper(r))
			b.WriteString(piece[size:])
		}
	}
	return b.String()
}
