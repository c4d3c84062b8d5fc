package route

import "strings"

// Match is the result of resolving a concrete path against route entries.
type Match struct {
	Entry  Entry
	Params map[string]string
}

// Find resolves p (without query) against entries. Static and parameterised
// routes are tried in declaration order; catch-all routes only when nothing
// else matched.
func Find(entries []Entry, p string) (Match, bool) {
	p = cleanPath(p)
	var fallback *Match
	for _, e := range entries {
		params, ok := matchPattern(e.FullPath, p)
		if !ok {
			continue
		}
		m := Match{Entry: e, Params: params}
		if isCatchAll(e.FullPath) {
			if fallback == nil {
				fallback = &m
			}
			continue
		}
		return m, true
	}
	if fallback != nil {
		return *fallback, true
	}
	return Match{}, false
}

// FindInTree is Find over Flatten(tree).
func FindInTree(tree []Node, p string) (Match, bool) {
	return Find(Flatten(tree), p)
}

func isCatchAll(pattern string) bool {
	return strings.Contains(pattern, "(.*)")
}

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchPattern(pattern, p string) (map[string]string, bool) {
	pat := splitSegments(pattern)
	segs := splitSegments(p)
	params := map[string]string{}

	i := 0
	for j, ps := range pat {
		switch {
		case strings.HasPrefix(ps, ":") && strings.Contains(ps, "(.*)"):
			name := strings.TrimPrefix(ps[:strings.Index(ps, "(")], ":")
			params[name] = strings.Join(segs[i:], "/")
			return params, j == len(pat)-1
		case strings.HasPrefix(ps, ":") && strings.HasSuffix(ps, "?"):
			name := strings.TrimSuffix(strings.TrimPrefix(ps, ":"), "?")
			if i < len(segs) {
				params[name] = segs[i]
				i++
			}
		case strings.HasPrefix(ps, ":"):
			if i >= len(segs) || segs[i] == "" {
				return nil, false
			}
			params[strings.TrimPrefix(ps, ":")] = segs[i]
			i++
		default:
			if i >= len(segs) || segs[i] != ps {
				return nil, false
			}
			i++
		}
	}
	if i != len(segs) {
		return nil, false
	}
	return params, true
}
