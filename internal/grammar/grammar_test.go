package grammar

import "testing"

func TestAAn(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Apple", "an Apple"},
		{"apple", "an apple"},
		{"Banana", "a Banana"},
		{"  Orange", "an   Orange"},
		{"Umbrella", "an Umbrella"},
		{"university", "an university"}, // orthographic heuristic
		{"", "a "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := AAn(tt.in); got != tt.want {
				t.Errorf("AAn(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCap(t *testing.T) {
	tests := map[string]string{
		"dentist":  "Dentist",
		"eCOM":     "ECOM",
		"":         "",
		"élan":     "Élan",
		"1st team": "1st team",
	}
	for in, want := range tests {
		if got := Cap(in); got != want {
			t.Errorf("Cap(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolve_Tokens(t *testing.T) {
	v := Neutral()
	tests := []struct {
		name, in, want string
	}{
		{"lookup", "[[PRONOUN]] [[ISARE]] ready", "they are ready"},
		{"lowercase token", "[[pronoun]]", "they"},
		{"unknown passes through", "[[NOPE]] stays", "[[NOPE]] stays"},
		{"a_an", "[[A_AN:Apple]] and [[A_AN:Banana]]", "an Apple and a Banana"},
		{"cap", "[[CAP:dentist]] team", "Dentist team"},
		{"lookup feeds a_an", "[[A_AN:[[NOUN]]]]", "an owner"},
		{"no tokens", "plain text", "plain text"},
	}
	v["noun"] = "owner"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.in, v); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewVariant_LowercasesKeys(t *testing.T) {
	v := NewVariant(map[string]string{"Pronoun": "he", "ISARE": "is"})
	if got := Resolve("[[PRONOUN]] [[ISARE]]", v); got != "he is" {
		t.Errorf("got %q", got)
	}
}

func TestWithDefaults(t *testing.T) {
	v := Variant{"pronoun": "she"}.WithDefaults()
	if v["pronoun"] != "she" {
		t.Errorf("pronoun = %q", v["pronoun"])
	}
	if v["isare"] != "are" {
		t.Errorf("isare = %q, want neutral default", v["isare"])
	}
}
