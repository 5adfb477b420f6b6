package models

import "time"

// EventoVoto é publicado no tópico gala_votos após cada voto aceito.
type EventoVoto struct {
	EventoID      string    `json:"evento_id"`
	CandidatoID   int       `json:"candidato_id"`
	CategoriaID   int       `json:"categoria_id"`
	DispositivoID string    `json:"dispositivo_id"`
	DataVoto      string    `json:"data_voto"`
	HoraVoto      time.Time `json:"hora_voto"`
	TotalVotos    int       `json:"total_votos"`
}

// EventoLogin é publicado no tópico gala_auditoria para cada tentativa
// de login, com ou sem sucesso.
type EventoLogin struct {
	EventoID  string    `json:"evento_id"`
	Email     string    `json:"email"`
	Sucesso   bool      `json:"sucesso"`
	Motivo    string    `json:"motivo,omitempty"`
	IPAddress string    `json:"ip_address"`
	Timestamp time.Time `json:"timestamp"`
}
