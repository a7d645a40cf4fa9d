package domain

import "time"

// Planos de mensalidade aceitos.
const (
	PlanoMensal     = "mensal"
	PlanoTrimestral = "trimestral"
	PlanoSemestral  = "semestral"
	PlanoAnual      = "anual"
)

// Mensalidade é a cobrança recorrente de um associado junto ao clube.
type Mensalidade struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	ClubeID       string     `json:"clubeId"`
	TipoPlano     string     `json:"tipoPlano"` // mensal | trimestral | semestral | anual
	Valor         float64    `json:"valor"`
	DataInicio    time.Time  `json:"dataInicio"`
	DataFim       time.Time  `json:"dataFim"`
	Status        string     `json:"status"` // ativa | inativa
	DataPagamento *time.Time `json:"dataPagamento,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ValidTipoPlano informa se o plano é um dos aceitos.
func ValidTipoPlano(plano string) bool {
	switch plano {
	case PlanoMensal, PlanoTrimestral, PlanoSemestral, PlanoAnual:
		return true
	}
	return false
}
