package guardian

import (
	"strings"
)

// SyntheticEmailDomain is the domain of the emails derived from import rows.
const SyntheticEmailDomain = "parent.local"

type KeyKind int

const (
	KeyNone KeyKind = iota
	KeyByPhone
	KeyByName
)

func (k KeyKind) String() string {
	switch k {
	case KeyByPhone:
		return "phone"
	case KeyByName:
		return "name"
	default:
		return "none"
	}
}

// Key identifies a Guardian across import rows and across imports.
// Email is the stored value of the key (Guardian.Email).
type Key struct {
	Kind  KeyKind
	Email string
}

func (k Key) IsZero() bool { return k.Kind == KeyNone }

// Contact holds the guardian fields of an import row. A field is present when non-empty.
type Contact struct {
	MotherName  string
	MotherPhone string
	FatherName  string
	FatherPhone string
}

func (c Contact) primaryName() string {
	if c.MotherName != "" {
		return c.MotherName
	}
	return c.FatherName
}

func (c Contact) primaryPhone() string {
	if c.MotherPhone != "" {
		return c.MotherPhone
	}
	return c.FatherPhone
}

// DeriveKey computes the guardian key of an import row:
//   - no mother or father name: no guardian
//   - a mother or father phone: "<phone>@parent.local", the phone kept verbatim
//   - otherwise: the primary name lowercased with all whitespace removed, "@parent.local"
//
// Mother values take precedence over father values. Names are not unicode normalized, and both
// the stripped whitespace and the case folding follow the JavaScript string functions that
// computed the keys already stored.
func DeriveKey(c Contact) Key {
	name := c.primaryName()
	if name == "" {
		return Key{Kind: KeyNone}
	}
	if phone := c.primaryPhone(); phone != "" {
		return Key{Kind: KeyByPhone, Email: phone + "@" + SyntheticEmailDomain}
	}
	return Key{Kind: KeyByName, Email: foldName(name) + "@" + SyntheticEmailDomain}
}

// foldName removes the runes matched by the ECMAScript \s class and lowercases the rest.
// Dotted capital I lowercases to "i" followed by a combining dot above, unlike unicode.ToLower.
func foldName(name string) string {
	var sb strings.Builder
	sb.Grow(len(name))
	for _, r := range name {
		switch {
		case isECMASpace(r):
		case r == 'İ':
			sb.WriteString("i\u0307")
		default:
			sb.WriteString(strings.ToLower(string(r)))
		}
	}
	return sb.String()
}

// isECMASpace reports whether r is a WhiteSpace or LineTerminator code point of ECMAScript.
// U+0085 is not one of them while U+FEFF is.
func isECMASpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ', 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000, 0xFEFF:
		return true
	}
	return r >= 0x2000 && r <= 0x200A
}

// Guardian builds the record created for a new key.
func (c Contact) Guardian(key Key) Guardian {
	return Guardian{
		FullName:    c.primaryName(),
		Email:       key.Email,
		Phone:       c.primaryPhone(),
		MotherName:  c.MotherName,
		MotherPhone: c.MotherPhone,
		FatherName:  c.FatherName,
		FatherPhone: c.FatherPhone,
	}
}

// IsSyntheticEmail reports whether email was derived by DeriveKey.
func IsSyntheticEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), "@"+SyntheticEmailDomain)
}
