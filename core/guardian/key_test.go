package guardian

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		name    string
		contact Contact
		want    Key
	}{
		{name: "no names", contact: Contact{}, want: Key{Kind: KeyNone}},
		{
			name:    "phones but no names",
			contact: Contact{MotherPhone: "5551112222", FatherPhone: "5553334444"},
			want:    Key{Kind: KeyNone},
		},
		{
			name:    "mother phone",
			contact: Contact{MotherName: "Ayşe Kaya", MotherPhone: "5551112222"},
			want:    Key{Kind: KeyByPhone, Email: "5551112222@parent.local"},
		},
		{
			name:    "mother phone wins over father phone",
			contact: Contact{FatherName: "Ali Kaya", MotherPhone: "5551112222", FatherPhone: "5553334444"},
			want:    Key{Kind: KeyByPhone, Email: "5551112222@parent.local"},
		},
		{
			name:    "father phone with mother name",
			contact: Contact{MotherName: "Ayşe Kaya", FatherPhone: "5553334444"},
			want:    Key{Kind: KeyByPhone, Email: "5553334444@parent.local"},
		},
		{
			name:    "phone kept verbatim",
			contact: Contact{FatherName: "Ali", FatherPhone: "+90 555 333 44 44"},
			want:    Key{Kind: KeyByPhone, Email: "+90 555 333 44 44@parent.local"},
		},
		{
			name:    "mother name",
			contact: Contact{MotherName: "Ayşe Kaya", FatherName: "Ali Kaya"},
			want:    Key{Kind: KeyByName, Email: "ayşekaya@parent.local"},
		},
		{
			name:    "father name",
			contact: Contact{FatherName: "Ali  Kaya"},
			want:    Key{Kind: KeyByName, Email: "alikaya@parent.local"},
		},
		{
			name:    "all whitespace stripped",
			contact: Contact{MotherName: " Zeynep\tNur Demir\n"},
			want:    Key{Kind: KeyByName, Email: "zeynepnurdemir@parent.local"},
		},
		{
			name:    "dotted capital I keeps its dot",
			contact: Contact{FatherName: "İbrahim Kaya"},
			want:    Key{Kind: KeyByName, Email: "i\u0307brahimkaya@parent.local"},
		},
		{
			name:    "undotted i",
			contact: Contact{MotherName: "IŞIL YILDIZ"},
			want:    Key{Kind: KeyByName, Email: "işilyildiz@parent.local"},
		},
		{
			name:    "byte order mark and no-break spaces stripped",
			contact: Contact{MotherName: "\ufeffElif\u00a0Şahin\u3000Ak"},
			want:    Key{Kind: KeyByName, Email: "elifşahinak@parent.local"},
		},
		{
			name:    "next line kept",
			contact: Contact{MotherName: "Elif\u0085Ak"},
			want:    Key{Kind: KeyByName, Email: "elif\u0085ak@parent.local"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveKey(tt.contact))
		})
	}
}

// Name keys fold case but not diacritics: differently cased spellings collide,
// differently accented spellings do not.
func TestDeriveKey_nameCollisions(t *testing.T) {
	upper := DeriveKey(Contact{MotherName: "AYŞE KAYA"})
	lower := DeriveKey(Contact{MotherName: "ayşe kaya"})
	spaced := DeriveKey(Contact{MotherName: "Ayşe   Kaya"})
	ascii := DeriveKey(Contact{MotherName: "Ayse Kaya"})

	assert.Equal(t, upper, lower)
	assert.Equal(t, upper, spaced)
	assert.NotEqual(t, upper, ascii)

	// I folds to i while İ and ı keep keys of their own
	dotted := DeriveKey(Contact{FatherName: "İsmail Er"})
	plain := DeriveKey(Contact{FatherName: "ismail er"})
	capital := DeriveKey(Contact{FatherName: "ISMAIL ER"})
	undotted := DeriveKey(Contact{FatherName: "ısmaıl er"})

	assert.Equal(t, "i\u0307smailer@parent.local", dotted.Email)
	assert.NotEqual(t, dotted, plain)
	assert.Equal(t, plain, capital)
	assert.Equal(t, "ısmaıler@parent.local", undotted.Email)
	assert.NotEqual(t, plain, undotted)
}

func TestContact_Guardian(t *testing.T) {
	c := Contact{MotherName: "Ayşe Kaya", FatherName: "Ali Kaya", FatherPhone: "5553334444"}
	g := c.Guardian(DeriveKey(c))

	assert.Equal(t, Guardian{
		FullName:    "Ayşe Kaya",
		Email:       "5553334444@parent.local",
		Phone:       "5553334444",
		MotherName:  "Ayşe Kaya",
		FatherName:  "Ali Kaya",
		FatherPhone: "5553334444",
	}, g)
	assert.True(t, g.HasSyntheticEmail())
}

func TestIsSyntheticEmail(t *testing.T) {
	assert.True(t, IsSyntheticEmail("5551112222@parent.local"))
	assert.True(t, IsSyntheticEmail("AliKaya@PARENT.LOCAL"))
	assert.False(t, IsSyntheticEmail("ali@example.com"))
	assert.False(t, IsSyntheticEmail("parent.local"))
}
