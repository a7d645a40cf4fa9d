package domain

import "time"

// Resultado é a pontuação de um participante em um evento.
type Resultado struct {
	ID          string    `json:"id"`
	EventoID    string    `json:"eventoId"`
	UserID      string    `json:"userId"`
	ClubeID     string    `json:"clubeId,omitempty"`
	Pontuacao   float64   `json:"pontuacao"`
	Posicao     int       `json:"posicao,omitempty"`
	Observacoes string    `json:"observacoes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ResultadoFilter restringe listagens de resultados por evento, usuário ou
// clube. ClubeID segue a mesma regra de isolamento de EventoFilter.
type ResultadoFilter struct {
	ClubeID  string
	EventoID string
	UserID   string
}
