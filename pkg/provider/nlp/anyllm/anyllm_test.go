package anyllm

import "testing"

func TestNew_Validation(t *testing.T) {
	t.Parallel()
	if _, err := New("", "gpt-4o-mini"); err == nil {
		t.Error("expected error for empty provider name")
	}
	if _, err := New("openai", ""); err == nil {
		t.Error("expected error for empty model")
	}
	if _, err := New("not-a-provider", "model"); err == nil {
		t.Error("expected error for unknown provider name")
	}
}

func TestStripFences(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{`{"labels":["a"]}`, `{"labels":["a"]}`},
		{"```json\n{\"labels\":[\"a\"]}\n```", `{"labels":["a"]}`},
		{"```\n{\"orgs\":[]}\n```", `{"orgs":[]}`},
		{"  {\"orgs\":[]}  ", `{"orgs":[]}`},
	}
	for _, tt := range tests {
		if got := stripFences(tt.in); got != tt.want {
			t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
