// Package kafka publica eventos de domínio (votos aceitos e tentativas
// de login) em tópicos Kafka. A publicação é melhor-esforço: falha de
// broker nunca derruba a requisição que originou o evento.
package kafka

import (
	"encoding/json"
	"log"

	"github.com/Shopify/sarama"
)

const (
	TopicoVotos     = "gala_votos"
	TopicoAuditoria = "gala_auditoria"
)

// Produtor embrulha um sarama.SyncProducer.
type Produtor struct {
	produtor sarama.SyncProducer
}

// NovoProdutor conecta ao broker. O retorno nil com err nil ocorre
// quando broker é vazio: eventos ficam desabilitados.
func NovoProdutor(broker string) (*Produtor, error) {
	if broker == "" {
		return nil, nil
	}

	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5

	produtor, err := sarama.NewSyncProducer([]string{broker}, config)
	if err != nil {
		return nil, err
	}

	log.Println("Produtor Kafka inicializado com sucesso")
	return &Produtor{produtor: produtor}, nil
}

// Publicar serializa o evento em JSON e envia ao tópico. Chamável em
// Produtor nil (no-op), para o caso de eventos desabilitados.
func (p *Produtor) Publicar(topico string, evento interface{}) error {
	if p == nil {
		return nil
	}

	dados, err := json.Marshal(evento)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: topico,
		Value: sarama.StringEncoder(dados),
	}

	_, _, err = p.produtor.SendMessage(msg)
	return err
}

func (p *Produtor) Fechar() {
	if p != nil && p.produtor != nil {
		p.produtor.Close()
	}
}
