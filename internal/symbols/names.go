package symbols

import "strings"

var fileSuffixes = []string{"_8h", "_8c", "_8hpp", "_8cpp"}

// IsFileID reports whether id is a mangled source file name such as
// "coap__server_8h".
func IsFileID(id string) bool {
	for _, s := range fileSuffixes {
		if strings.HasSuffix(id, s) && len(id) > len(s) {
			return true
		}
	}
	return false
}

var escapes = map[byte]byte{
	'_': '_',
	'1': ':',
	'2': '/',
	'3': '<',
	'4': '>',
	'5': '*',
	'6': '&',
	'7': '|',
	'8': '.',
	'9': '!',
}

var zeroEscapes = map[byte]byte{
	'0': ',',
	'1': ' ',
	'2': '{',
	'3': '}',
	'4': '?',
	'5': '^',
	'6': '%',
	'7': '(',
	'8': ')',
	'9': '+',
	'a': '=',
	'b': '$',
	'c': '\\',
	'd': '@',
	'e': ']',
	'f': '[',
	'g': '#',
}

// FileName reverses Doxygen's file name mangling: "coap__server_8h" becomes
// "coap_server.h". Upper case letters are mangled as "_" plus the lower case
// letter. Unknown escapes are kept as written.
func FileName(id string) string {
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if c != '_' || i+1 >= len(id) {
			b.WriteByte(c)
			continue
		}
		next := id[i+1]
		if next == '0' && i+2 < len(id) {
			if r, ok := zeroEscapes[id[i+2]]; ok {
				b.WriteByte(r)
				i += 2
				continue
			}
		}
		if r, ok := escapes[next]; ok {
			b.WriteByte(r)
			i++
			continue
		}
		if next >= 'a' && next <= 'z' {
			b.WriteByte(next - 'a' + 'A')
			i++
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
