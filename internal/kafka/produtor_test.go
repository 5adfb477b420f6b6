package kafka

import "testing"

func TestProdutorDesabilitado(t *testing.T) {
	produtor, err := NovoProdutor("")
	if err != nil {
		t.Fatalf("broker vazio não é erro: %v", err)
	}
	if produtor != nil {
		t.Fatal("broker vazio deveria desabilitar o produtor")
	}

	// Produtor nil é seguro de usar.
	if err := produtor.Publicar(TopicoVotos, map[string]string{"x": "y"}); err != nil {
		t.Errorf("publicar com produtor desabilitado deveria ser no-op: %v", err)
	}
	produtor.Fechar()
}
