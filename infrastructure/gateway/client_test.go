package gateway

import "testing"

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		name  string
		phone string
		want  string
	}{
		{"already international", "5511999990000", "5511999990000"},
		{"local mobile gets country code", "11999990000", "5511999990000"},
		{"formatted local number", "(11) 99999-0000", "5511999990000"},
		{"plus prefix stripped", "+55 11 99999-0000", "5511999990000"},
		{"whatsapp jid suffix stripped", "5511999990000@s.whatsapp.net", "5511999990000"},
		{"short number untouched", "4004", "4004"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizePhone(tc.phone); got != tc.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tc.phone, got, tc.want)
			}
		})
	}
}
