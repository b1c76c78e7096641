package endpoint

import (
	"reflect"
	"runtime"
	"strings"
)

type identity struct {
	module     string
	view       string
	classBased bool
}

func funcIdentity(fn any) identity {
	pc := reflect.ValueOf(fn).Pointer()
	f := runtime.FuncForPC(pc)
	if f == nil {
		return identity{}
	}
	return parseFuncName(f.Name())
}

// parseFuncName splits a runtime function name such as
// "example.com/app/items.(*ItemView).Get-fm" into the package path and the
// view. A local part that still holds a "." once closure suffixes are
// dropped names a method, so the view is its receiver type.
func parseFuncName(name string) identity {
	name = strings.TrimSuffix(name, "-fm")

	slash := strings.LastIndex(name, "/")
	dot := strings.Index(name[slash+1:], ".")
	if dot < 0 {
		return identity{view: name}
	}
	dot += slash + 1

	parts := strings.Split(name[dot+1:], ".")
	for len(parts) > 1 && isClosureSegment(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}

	id := identity{module: name[:dot], view: parts[0]}
	if len(parts) > 1 {
		id.classBased = true
		id.view = strings.TrimSuffix(strings.TrimPrefix(parts[0], "(*"), ")")
	}
	return id
}

func isClosureSegment(s string) bool {
	s = strings.TrimPrefix(s, "func")
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
