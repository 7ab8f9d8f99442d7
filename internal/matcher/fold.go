package matcher

// ASCII-only case folding. Folding is deliberately not Unicode-aware:
// widening it (e.g. via strings.EqualFold) would change which inputs match
// an authorization rule for values that differ only in non-ASCII case.

// foldByte maps an upper-case ASCII letter to lower case.
func foldByte(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// lowerASCII returns s with upper-case ASCII letters folded to lower case.
func lowerASCII(s string) string {
	i := 0
	for ; i < len(s); i++ {
		if c := s[i]; c >= 'A' && c <= 'Z' {
			break
		}
	}
	if i == len(s) {
		return s
	}
	b := []byte(s)
	for ; i < len(b); i++ {
		b[i] = foldByte(b[i])
	}
	return string(b)
}

// equalFoldASCII reports whether a and b are equal under ASCII folding.
func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if foldByte(a[i]) != foldByte(b[i]) {
			return false
		}
	}
	return true
}

// hasPrefixFoldASCII reports whether s starts with prefix under ASCII folding.
func hasPrefixFoldASCII(s, prefix string) bool {
	return len(s) >= len(prefix) && equalFoldASCII(s[:len(prefix)], prefix)
}

// hasSuffixFoldASCII reports whether s ends with suffix under ASCII folding.
func hasSuffixFoldASCII(s, suffix string) bool {
	return len(s) >= len(suffix) && equalFoldASCII(s[len(s)-len(suffix):], suffix)
}
