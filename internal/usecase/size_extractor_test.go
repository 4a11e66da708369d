package usecase

import "testing"

func TestExtractSizeFromReference(t *testing.T) {
	testCases := []struct {
		name      string
		reference string
		want      string
	}{
		{
			name:      "trailing hyphen number",
			reference: "REF-2037-07",
			want:      "07",
		},
		{
			name:      "hyphen number followed by space",
			reference: "CAM-12 AZUL",
			want:      "12",
		},
		{
			name:      "three digit group is not a size",
			reference: "REF-2037",
			want:      "",
		},
		{
			name:      "no hyphen number",
			reference: "ABC123",
			want:      "",
		},
		{
			name:      "empty reference",
			reference: "",
			want:      "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSizeFromReference(tc.reference)
			if got != tc.want {
				t.Errorf("ExtractSizeFromReference(%q) = %q, want %q", tc.reference, got, tc.want)
			}
		})
	}
}

func TestExtractSizeFromDescription(t *testing.T) {
	testCases := []struct {
		name        string
		description string
		want        string
	}{
		{
			name:        "brand hyphen rule wins over explicit marker",
			description: "CAMISA MASCULINA-12-AZUL TAM M",
			want:        "12",
		},
		{
			name:        "feminina variant of brand rule",
			description: "VESTIDO FEMININA-8-VERDE",
			want:        "8",
		},
		{
			name:        "invalid brand candidate falls through the chain",
			description: "CAMISA MASCULINA-123-AZUL TAM M",
			want:        "M",
		},
		{
			name:        "infant plus common markers force INFANTIL",
			description: "CONJUNTO INFANTIL COMUM TAM M",
			want:        "INFANTIL",
		},
		{
			name:        "standard token whole word",
			description: "CAMISETA BRANCA GG",
			want:        "GG",
		},
		{
			name:        "standard token not matched inside word",
			description: "BERMUDA MAGGA",
			want:        "",
		},
		{
			name:        "shoe range",
			description: "TENIS PRETO 37/38",
			want:        "37/38",
		},
		{
			name:        "explicit TAM marker",
			description: "BLUSA LISA TAM. 38",
			want:        "38",
		},
		{
			name:        "explicit TAMANHO marker",
			description: "CALCA JEANS TAMANHO: 44",
			want:        "44",
		},
		{
			name:        "category word",
			description: "PIJAMA JUVENIL ESTAMPADO",
			want:        "JUVENIL",
		},
		{
			name:        "trailing hyphen number",
			description: "CALCA SOCIAL-42",
			want:        "42",
		},
		{
			name:        "invalid explicit marker candidate yields nothing",
			description: "BLUSA TAM ABC",
			want:        "",
		},
		{
			name:        "no rule matches",
			description: "CINTO DE COURO",
			want:        "",
		},
		{
			name:        "empty description",
			description: "",
			want:        "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractSizeFromDescription(tc.description)
			if got != tc.want {
				t.Errorf("ExtractSizeFromDescription(%q) = %q, want %q", tc.description, got, tc.want)
			}
		})
	}
}

func TestExtractSizePrecedence(t *testing.T) {
	t.Run("valid reference size wins over description", func(t *testing.T) {
		got := ExtractSize("REF-2037-07", "CAMISETA BRANCA GG")
		if got != "07" {
			t.Errorf("got %q, want %q", got, "07")
		}
	})

	t.Run("invalid reference falls back to description", func(t *testing.T) {
		got := ExtractSize("REF-2037", "CAMISETA BRANCA GG")
		if got != "GG" {
			t.Errorf("got %q, want %q", got, "GG")
		}
	})
}

func TestNormalizeSizeToken(t *testing.T) {
	testCases := []struct {
		in   string
		want string
	}{
		{"PEQUENO", "P"},
		{"MEDIO", "M"},
		{"MÉDIO", "M"},
		{"GRANDE", "G"},
		{"EXTRA GRANDE", "XG"},
		{"EXTRA PEQUENO", "PP"},
		{" gg ", "GG"},
		{"42", "42"},
	}

	for _, tc := range testCases {
		if got := normalizeSizeToken(tc.in); got != tc.want {
			t.Errorf("normalizeSizeToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestIsValidSize(t *testing.T) {
	valid := []string{"PP", "P", "M", "G", "GG", "XG", "XXG", "INFANTIL", "ADULTO", "JUVENIL", "7", "07", "42", "37/38"}
	for _, s := range valid {
		if !isValidSize(s) {
			t.Errorf("isValidSize(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "XGG", "ABC", "123", "4/2", "37/380", "M2X"}
	for _, s := range invalid {
		if isValidSize(s) {
			t.Errorf("isValidSize(%q) = true, want false", s)
		}
	}
}

func TestExtractSizeFromDescriptionTrace(t *testing.T) {
	size, trace := ExtractSizeFromDescriptionTrace("CAMISA MASCULINA-12-AZUL TAM M")

	if size != "12" {
		t.Fatalf("size = %q, want %q", size, "12")
	}
	if len(trace) != 1 {
		t.Fatalf("trace has %d entries, want 1 (chain stops at first accepted rule)", len(trace))
	}
	if trace[0].Rule != "brand-hyphen" || !trace[0].Accepted {
		t.Errorf("unexpected first trace entry: %+v", trace[0])
	}

	size, trace = ExtractSizeFromDescriptionTrace("CINTO DE COURO")
	if size != "" {
		t.Fatalf("size = %q, want empty", size)
	}
	if len(trace) != len(descriptionRules) {
		t.Fatalf("trace has %d entries, want %d (every rule attempted)", len(trace), len(descriptionRules))
	}
	for _, entry := range trace {
		if entry.Accepted {
			t.Errorf("rule %s accepted on non-matching description", entry.Rule)
		}
	}

	_, trace = ExtractSizeFromDescriptionTrace("CAMISA MASCULINA-123-AZUL TAM M")
	if trace[0].Rule != "brand-hyphen" || trace[0].Accepted || !trace[0].Matched {
		t.Errorf("expected brand-hyphen to match and be rejected, got %+v", trace[0])
	}
}
