package parser

import "strings"

// entityTable is the fixed set of named and numeric entities decoded in post
// documents. Source documents come from an exporter that entity-encodes both
// HTML punctuation and Vietnamese diacritics; anything outside this table
// passes through unchanged.
var entityTable = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   "\"",
	"&apos;":   "'",
	"&#34;":    "\"",
	"&#39;":    "'",
	"&nbsp;":   " ",
	"&hellip;": "…",
	"&ndash;":  "–",
	"&mdash;":  "—",
	"&lsquo;":  "‘",
	"&rsquo;":  "’",
	"&ldquo;":  "“",
	"&rdquo;":  "”",

	// Vietnamese precomposed letters the exporter is known to encode.
	"&#224;":  "à",
	"&#225;":  "á",
	"&#226;":  "â",
	"&#227;":  "ã",
	"&#232;":  "è",
	"&#233;":  "é",
	"&#234;":  "ê",
	"&#236;":  "ì",
	"&#237;":  "í",
	"&#242;":  "ò",
	"&#243;":  "ó",
	"&#244;":  "ô",
	"&#245;":  "õ",
	"&#249;":  "ù",
	"&#250;":  "ú",
	"&#253;":  "ý",
	"&#273;":  "đ",
	"&#417;":  "ơ",
	"&#432;":  "ư",
	"&#7841;": "ạ",
	"&#7843;": "ả",
	"&#7845;": "ấ",
	"&#7847;": "ầ",
	"&#7853;": "ậ",
	"&#7855;": "ắ",
	"&#7857;": "ằ",
	"&#7863;": "ặ",
	"&#7865;": "ẹ",
	"&#7867;": "ẻ",
	"&#7871;": "ế",
	"&#7873;": "ề",
	"&#7879;": "ệ",
	"&#7885;": "ọ",
	"&#7887;": "ỏ",
	"&#7889;": "ố",
	"&#7891;": "ồ",
	"&#7897;": "ộ",
	"&#7899;": "ớ",
	"&#7901;": "ờ",
	"&#7907;": "ợ",
	"&#7909;": "ụ",
	"&#7911;": "ủ",
	"&#7913;": "ứ",
	"&#7915;": "ừ",
	"&#7921;": "ự",
	"&#7923;": "ỳ",
	"&#7927;": "ỷ",
	"&#7929;": "ỹ",
}

// maxEntityLen bounds the lookahead when scanning for a terminating
// semicolon.
const maxEntityLen = 10

// DecodeEntities replaces table entities, rescanning until none remain.
// Stacked encodings like "&amp;lt;" unwrap fully, and decoding is a fixed
// point: applying it to its own output changes nothing.
func DecodeEntities(s string) string {
	for {
		decoded := decodePass(s)
		if decoded == s {
			return decoded
		}
		s = decoded
	}
}

// decodePass replaces table entities in one left-to-right scan.
func decodePass(s string) string {
	amp := strings.IndexByte(s, '&')
	if amp < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for {
		b.WriteString(s[:amp])
		s = s[amp:]

		semi := strings.IndexByte(s[:min(len(s), maxEntityLen)], ';')
		if semi < 0 {
			b.WriteByte('&')
			s = s[1:]
		} else if repl, ok := entityTable[s[:semi+1]]; ok {
			b.WriteString(repl)
			s = s[semi+1:]
		} else {
			b.WriteByte('&')
			s = s[1:]
		}

		amp = strings.IndexByte(s, '&')
		if amp < 0 {
			b.WriteString(s)
			return b.String()
		}
	}
}
