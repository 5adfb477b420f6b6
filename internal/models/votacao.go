package models

import "time"

// Voto representa um voto registrado. Imutável após a inserção.
// DataVoto é a data-calendário no formato YYYY-MM-DD: a unicidade
// (dispositivo, categoria, dia) é decidida por essa string, não por
// faixas de timestamp.
type Voto struct {
	ID            int64     `json:"id"`
	CandidatoID   int       `json:"candidato_id"`
	CategoriaID   int       `json:"categoria_id"`
	DispositivoID string    `json:"dispositivo_id"`
	IPAddress     string    `json:"ip_address"`
	UserAgent     string    `json:"user_agent"`
	DataVoto      string    `json:"data_voto"`
	HoraVoto      time.Time `json:"hora_voto"`
}

// Candidato pertence a exatamente uma categoria. TotalVotos é um
// contador denormalizado, recalculado após cada voto aceito.
type Candidato struct {
	ID             int        `json:"id"`
	CategoriaID    int        `json:"categoria_id"`
	Nome           string     `json:"nome"`
	FotoURL        string     `json:"foto_url"`
	Biografia      string     `json:"biografia"`
	DescricaoCurta string     `json:"descricao_curta"`
	TotalVotos     int        `json:"total_votos"`
	Ativo          bool       `json:"ativo"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at"`
}

type Categoria struct {
	ID    int    `json:"id"`
	Nome  string `json:"nome"`
	Icone string `json:"icone"`
	Cor   string `json:"cor"`
	Ativo bool   `json:"ativo"`
}

// Configuracao é uma entrada chave-valor da tabela configuracoes
// (votacao_ativa, data_inicio_votacao, data_fim_votacao,
// mostrar_confete, data_gala).
type Configuracao struct {
	ID    int    `json:"id"`
	Chave string `json:"chave"`
	Valor string `json:"valor"`
}
