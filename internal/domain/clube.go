package domain

import "time"

// Endereco é o endereço físico do clube.
type Endereco struct {
	Logradouro  string `json:"logradouro"`
	Numero      string `json:"numero"`
	Complemento string `json:"complemento,omitempty"`
	Bairro      string `json:"bairro"`
	Cidade      string `json:"cidade"`
	Estado      string `json:"estado"`
	CEP         string `json:"cep"`
}

// Contato agrupa os dados de contato do responsável pelo clube.
type Contato struct {
	Telefone    string `json:"telefone"`
	Email       string `json:"email"`
	Responsavel string `json:"responsavel"`
}

// Status possíveis da licença de operação de um clube.
const (
	LicencaAtiva     = "ativa"
	LicencaSuspensa  = "suspensa"
	LicencaCancelada = "cancelada"
	LicencaPendente  = "pendente"
)

// Licenca descreve o licenciamento do clube junto à plataforma.
type Licenca struct {
	Status         string    `json:"status"` // ativa | suspensa | cancelada | pendente
	Plano          string    `json:"plano"`  // basico | intermediario | premium
	DataVencimento time.Time `json:"dataVencimento"`
	ValorMensal    float64   `json:"valorMensal"`
}

// Clube é a fronteira de tenant do sistema: quase todo dado é visível apenas
// a principais do mesmo clube. O flag Ativo bloqueia inclusive o login dos
// membros quando falso, independente do cadastro individual.
type Clube struct {
	ID                  string    `json:"id"`
	Nome                string    `json:"nome"`
	CNPJ                string    `json:"cnpj"`
	CertificadoRegistro string    `json:"certificadoRegistro,omitempty"`
	Endereco            Endereco  `json:"endereco"`
	Contato             Contato   `json:"contato"`
	Licenca             Licenca   `json:"licenca"`
	Ativo               bool      `json:"ativo"`
	DataCadastro        time.Time `json:"dataCadastro"`
	UpdatedAt           time.Time `json:"updatedAt"`
}
