package utils

import gonanoid "github.com/matoous/go-nanoid/v2"

const (
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	idLength   = 21
)

// GenerateID gera o identificador de sessão usado como jti do token
func GenerateID() (string, error) {
	return gonanoid.Generate(characters, idLength)
}
