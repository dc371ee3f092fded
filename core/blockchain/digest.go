package blockchain

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"unicode/utf16"
)

const hexDigits = "0123456789abcdef"

// Digest hashes the canonical form of a block's fields with SHA-256.
//
// The canonical form is a JSON object with keys sorted by name, ", " and ": "
// separators and every string ASCII-escaped, e.g.
//
//	{"block_no": 1, "data": "Data for block 1", "nonce": 0, "prev_hash": "00..."}
//
// Keeping this exact byte layout lets other implementations reproduce the
// same hashes from the same field values.
func Digest(index, nonce int, data, prevHash string) string {
	var sb strings.Builder
	sb.Grow(len(data) + len(prevHash) + 64)

	sb.WriteString(`{"block_no": `)
	sb.WriteString(strconv.Itoa(index))
	sb.WriteString(`, "data": `)
	writeASCIIString(&sb, data)
	sb.WriteString(`, "nonce": `)
	sb.WriteString(strconv.Itoa(nonce))
	sb.WriteString(`, "prev_hash": `)
	writeASCIIString(&sb, prevHash)
	sb.WriteString(`}`)

	hash := sha256.Sum256([]byte(sb.String()))
	return hex.EncodeToString(hash[:])
}

// writeASCIIString writes s as a quoted JSON string. Only printable ASCII is
// written as is; everything else becomes a short escape or \uXXXX.
func writeASCIIString(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r <= 0x7e:
				sb.WriteByte(byte(r))
			case r > 0xffff:
				r1, r2 := utf16.EncodeRune(r)
				writeUnicodeEscape(sb, r1)
				writeUnicodeEscape(sb, r2)
			default:
				writeUnicodeEscape(sb, r)
			}
		}
	}
	sb.WriteByte('"')
}

func writeUnicodeEscape(sb *strings.Builder, r rune) {
	sb.WriteString(`\u`)
	sb.WriteByte(hexDigits[(r>>12)&0xf])
	sb.WriteByte(hexDigits[(r>>8)&0xf])
	sb.WriteByte(hexDigits[(r>>4)&0xf])
	sb.WriteByte(hexDigits[r&0xf])
}
