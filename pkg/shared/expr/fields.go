package expr

// ReferencedFields returns the top-level payload fields an expression
// dereferences, deduplicated in order of first appearance. Callers use it
// to tell a missing field apart from a comparison that is merely false:
// the evaluator fetches a missing map key as nil without complaint, so
// field presence has to be checked before evaluation.
//
// Both access forms are recognized, `payload.class` and
// `payload["class"]`. Text inside string literals is ignored, as is
// `payload` appearing as a property of something else.
func ReferencedFields(expression string) []string {
	fields := make([]string, 0, 4)
	seen := make(map[string]struct{})
	add := func(f string) {
		if f == "" {
			return
		}
		if _, ok := seen[f]; ok {
			return
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}

	s := expression
	for i := 0; i < len(s); {
		c := s[i]
		if c == '"' || c == '\'' {
			i = skipString(s, i)
			continue
		}
		if !isIdentStart(c) {
			i++
			continue
		}
		start := i
		for i < len(s) && isIdentPart(s[i]) {
			i++
		}
		if s[start:i] != root {
			continue
		}
		// a property access like foo.payload is not the root
		if prev := lastNonSpace(s, start-1); prev >= 0 && s[prev] == '.' {
			continue
		}
		j := nextNonSpace(s, i)
		switch {
		case j < len(s) && s[j] == '.':
			j = nextNonSpace(s, j+1)
			k := j
			for k < len(s) && isIdentPart(s[k]) {
				k++
			}
			add(s[j:k])
			i = k
		case j < len(s) && s[j] == '[':
			j = nextNonSpace(s, j+1)
			if j < len(s) && (s[j] == '"' || s[j] == '\'') {
				quote := s[j]
				k := j + 1
				for k < len(s) && s[k] != quote {
					k++
				}
				add(s[j+1 : k])
				i = k + 1
			} else {
				i = j
			}
		}
	}
	return fields
}

func skipString(s string, i int) int {
	quote := s[i]
	i++
	for i < len(s) && s[i] != quote {
		if s[i] == '\\' {
			i++
		}
		i++
	}
	return i + 1
}

func lastNonSpace(s string, i int) int {
	for i >= 0 && (s[i] == ' ' || s[i] == '\t') {
		i--
	}
	return i
}

func nextNonSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
