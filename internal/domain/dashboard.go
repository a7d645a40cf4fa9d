package domain

// DashboardStats é o resumo operacional da plataforma exibido ao system_admin.
type DashboardStats struct {
	TotalClubes    int     `json:"totalClubes"`
	ClubesAtivos   int     `json:"clubesAtivos"`
	TotalUsuarios  int     `json:"totalUsuarios"`
	UsuariosAtivos int     `json:"usuariosAtivos"`
	TotalEventos   int     `json:"totalEventos"`
	EventosAbertos int     `json:"eventosAbertos"`
	ReceitaMensal  float64 `json:"receitaMensal"`
}
