package domain

import "time"

// Status possíveis de um evento de tiro.
const (
	EventoAberto    = "aberto"
	EventoEncerrado = "encerrado"
	EventoCancelado = "cancelado"
)

// Evento representa um evento (prova, treino, competição) de um clube.
// ClubeID vazio indica evento global, visível a todos os clubes.
type Evento struct {
	ID               string    `json:"id"`
	ClubeID          string    `json:"clubeId,omitempty"`
	Nome             string    `json:"nome"`
	Descricao        string    `json:"descricao,omitempty"`
	Data             time.Time `json:"data"`
	Local            string    `json:"local"`
	Status           string    `json:"status"` // aberto | encerrado | cancelado
	MaxParticipantes int       `json:"maxParticipantes,omitempty"`
	ValorInscricao   float64   `json:"valorInscricao,omitempty"`
	CriadoPor        string    `json:"criadoPor"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// EventoFilter restringe listagens de eventos. ClubeID é preenchido pelo
// serviço a partir do AuthContext (isolamento por clube), nunca pelo cliente
// direto, exceto para system_admin.
type EventoFilter struct {
	ClubeID    string
	Status     string
	DataInicio *time.Time
	DataFim    *time.Time
}

// Participante é a inscrição de um usuário em um evento.
type Participante struct {
	ID            string    `json:"id"`
	EventoID      string    `json:"eventoId"`
	UserID        string    `json:"userId"`
	ClubeID       string    `json:"clubeId,omitempty"`
	Nome          string    `json:"nome,omitempty"` // denormalizado do cadastro
	Presenca      bool      `json:"presenca"`
	DataInscricao time.Time `json:"dataInscricao"`
}
