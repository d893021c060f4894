package store

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ErrPathNotFound is returned when a Path does not resolve.
var ErrPathNotFound = errors.New("store: path not found")

// Path addresses a value inside nested state. Elements are field names or
// map keys (string) and slice indices (int).
type Path []any

// ParsePath splits a dotted path such as "daily.0.high". Elements that parse
// as non-negative integers become indices.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ".")
	p := make(Path, 0, len(parts))
	for _, part := range parts {
		if n, err := strconv.Atoi(part); err == nil && n >= 0 {
			p = append(p, n)
			continue
		}
		p = append(p, part)
	}
	return p
}

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, e := range p {
		parts[i] = fmt.Sprint(e)
	}
	return strings.Join(parts, ".")
}

// Lookup resolves p against v. Struct fields match case-insensitively.
func (p Path) Lookup(v any) (any, error) {
	cur := reflect.ValueOf(v)
	for i, elem := range p {
		cur = indirect(cur)
		if !cur.IsValid() {
			return nil, fmt.Errorf("%w: %s (nil at %s)", ErrPathNotFound, p, p[:i])
		}
		next, ok := step(cur, elem)
		if !ok {
			return nil, fmt.Errorf("%w: %s (no %v in %s)", ErrPathNotFound, p, elem, cur.Type())
		}
		cur = next
	}
	cur = indirect(cur)
	if !cur.IsValid() {
		return nil, nil
	}
	return cur.Interface(), nil
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func step(v reflect.Value, elem any) (reflect.Value, bool) {
	switch v.Kind() {
	case reflect.Struct:
		name, ok := elem.(string)
		if !ok {
			return reflect.Value{}, false
		}
		f := v.FieldByNameFunc(func(field string) bool { return strings.EqualFold(field, name) })
		if !f.IsValid() || !f.CanInterface() {
			return reflect.Value{}, false
		}
		return f, true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, false
		}
		key := reflect.ValueOf(fmt.Sprint(elem)).Convert(v.Type().Key())
		m := v.MapIndex(key)
		return m, m.IsValid()
	case reflect.Slice, reflect.Array:
		idx, ok := elem.(int)
		if !ok || idx < 0 || idx >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(idx), true
	}
	return reflect.Value{}, false
}

// lister is implemented by slot states that expose themselves as a list.
type lister interface{ list() any }

// Lookup resolves path inside the container. The first element names the
// slot; keyed slots resolve as a list in insertion order.
func (p *Props) Lookup(path Path) (any, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("%w: empty path", ErrPathNotFound)
	}
	name, ok := path[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: slot name %v", ErrPathNotFound, path[0])
	}
	v, ok := p.load(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is empty", ErrPathNotFound, p.namespace, name)
	}
	if l, ok := v.(lister); ok {
		v = l.list()
	}
	return path[1:].Lookup(v)
}
