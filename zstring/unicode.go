package zstring

import "github.com/oliverhutch/goz/zcore"

// defaultUnicodeTable maps the 69 extended ZSCII codes (155-223) to the
// Unicode code points the standard assigns them by default, used whenever
// a story doesn't supply its own table via the header extension (spec.md
// S3 "Alphabet": "the unicode table ... is either the built-in default or
// read from the header-extension table").
var defaultUnicodeTable = [69]rune{
	'ä', 'ö', 'ü', 'Ä', 'Ö', 'Ü', 'ß', '»', '«', 'ë',
	'ï', 'ÿ', 'Ë', 'Ï', 'á', 'é', 'í', 'ó', 'ú', 'ý',
	'Á', 'É', 'Í', 'Ó', 'Ú', 'Ý', 'à', 'è', 'ì', 'ò',
	'ù', 'À', 'È', 'Ì', 'Ò', 'Ù', 'â', 'ê', 'î', 'ô',
	'û', 'Â', 'Ê', 'Î', 'Ô', 'Û', 'å', 'Å', 'ø', 'Ø',
	'ã', 'ñ', 'õ', 'Ã', 'Ñ', 'Õ', 'æ', 'Æ', 'ç', 'Ç',
	'þ', 'ð', 'Þ', 'Ð', '£', 'œ', 'Œ', '¡', '¿',
}

// unicodeTable returns the 69-entry table in effect for m: the header's
// extension table if the story declares one, otherwise the default.
func unicodeTable(m *zcore.Memory) [69]rune {
	if m.ExtensionTableBase == 0 {
		return defaultUnicodeTable
	}
	count := m.ReadByte(m.ExtensionTableBase)
	if count == 0 {
		return defaultUnicodeTable
	}
	entryAddr := uint32(m.ReadWord(m.ExtensionTableBase + 3*2))
	if entryAddr == 0 {
		return defaultUnicodeTable
	}
	table := defaultUnicodeTable
	n := int(count)
	if n > 69 {
		n = 69
	}
	for i := 0; i < n; i++ {
		table[i] = rune(m.ReadWord(entryAddr + uint32(i*2)))
	}
	return table
}

// zsciiToUnicode resolves an extended ZSCII code to a rune via the active
// unicode table. Only 155-223, the range the 69-entry table covers, are
// resolved; any other code reports false.
func zsciiToUnicode(code uint8, m *zcore.Memory) (rune, bool) {
	if code < 155 || code > 223 {
		return 0, false
	}
	table := unicodeTable(m)
	return table[code-155], true
}

// unicodeToZscii is the inverse lookup, used by Encode.
func unicodeToZscii(r rune, m *zcore.Memory) (uint8, bool) {
	table := unicodeTable(m)
	for i, candidate := range table {
		if candidate == r {
			return uint8(155 + i), true
		}
	}
	return 0, false
}
