// internal/core/domain/errors.go
package domain

import "errors"

var (
	// ErrEmptyTarget el target no puede estar vacío
	ErrEmptyTarget = errors.New("target domain cannot be empty")

	// ErrInvalidDomain el dominio no tiene formato válido
	ErrInvalidDomain = errors.New("invalid domain format")

	// ErrInvalidCandidate el candidato de discovery no es un hostname utilizable
	ErrInvalidCandidate = errors.New("invalid discovery candidate")

	// ErrNoSourcesAvailable no hay fuentes de discovery habilitadas
	ErrNoSourcesAvailable = errors.New("no discovery sources available")

	// ErrQueueEmpty la cola de discovery no tiene entradas pendientes
	ErrQueueEmpty = errors.New("discovery queue is empty")
)
