package domain

import "time"

// Session é o registro servidor de um refresh token emitido. O token cru
// nunca é armazenado; apenas o hash SHA-256 (TokenHash). Uma linha por token,
// criada no login, rotacionada na renovação e removida no logout ou na troca
// de senha (que revoga todas as sessões do usuário).
type Session struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	TokenHash  string    `json:"-"`
	ExpiresAt  time.Time `json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
	LastUsedAt time.Time `json:"lastUsedAt"`
	UserAgent  string    `json:"userAgent,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
}

// Expired informa se a sessão já passou da validade.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
