// Package auth cuida de senhas e tokens de administrador.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"gala-votacao-app/internal/models"
)

// custoBcrypt segue o custo usado ao provisionar os administradores.
const custoBcrypt = 12

var ErrTokenInvalido = errors.New("token inválido")

// Claims do token de administrador.
type Claims struct {
	ID          int    `json:"id"`
	Email       string `json:"email"`
	Nome        string `json:"nome"`
	NivelAcesso string `json:"nivel_acesso"`
	jwt.RegisteredClaims
}

// GerarToken emite um JWT HS256 com a validade informada.
func GerarToken(admin *models.Administrador, secret string, validade time.Duration, agora time.Time) (string, error) {
	claims := Claims{
		ID:          admin.ID,
		Email:       admin.Email,
		Nome:        admin.Nome,
		NivelAcesso: admin.NivelAcesso,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(agora),
			ExpiresAt: jwt.NewNumericDate(agora.Add(validade)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	assinado, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("erro ao assinar token: %v", err)
	}
	return assinado, nil
}

// ValidarToken verifica assinatura e expiração e devolve as claims.
func ValidarToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de assinatura inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrTokenInvalido
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalido
	}
	return claims, nil
}

// HashSenha gera o hash bcrypt de uma senha.
func HashSenha(senha string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(senha), custoBcrypt)
	if err != nil {
		return "", fmt.Errorf("erro ao gerar hash de senha: %v", err)
	}
	return string(hash), nil
}

// VerificarSenha compara a senha em texto plano com o hash armazenado.
func VerificarSenha(senha, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(senha)) == nil
}
