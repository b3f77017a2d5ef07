package utils

import (
	"unicode"
	"unicode/utf8"
)

// Bucket hash for names. Names compare with strings.EqualFold, so every rune
// of a case orbit hashes the same. Plain ASCII takes the fast path.
func NameHash(str string) uint32 {
	hash := uint32(0)
	for i := 0; i < len(str); {
		c := rune(str[i])
		if c < utf8.RuneSelf {
			i++
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
		} else {
			var size int
			c, size = utf8.DecodeRuneInString(str[i:])
			i += size
			c = foldRune(c)
		}
		hash = (hash << 7) - hash + uint32(c)
	}
	return hash
}

// Smallest rune of the orbit, lowered when it is an ASCII capital so that
// ASCII input hashes the same on both paths
func foldRune(r rune) rune {
	rep := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < rep {
			rep = f
		}
	}
	if rep >= 'A' && rep <= 'Z' {
		rep += 'a' - 'A'
	}
	return rep
}
