package telegram

import "testing"

func TestTokenPrefix(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "long token truncated", token: "123456789:abcdef", want: "12345678..."},
		{name: "short token kept whole", token: "abc", want: "abc..."},
		{name: "exactly eight bytes", token: "12345678", want: "12345678..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tokenPrefix(tt.token); got != tt.want {
				t.Errorf("tokenPrefix(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestNewTelegramBotEmptyToken(t *testing.T) {
	if _, err := NewTelegramBot("", nil); err == nil {
		t.Error("NewTelegramBot(\"\") should fail")
	}
}
