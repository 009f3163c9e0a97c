package domain

import "fmt"

// transitionTable описывает разрешенные переходы между статусами сущности
type transitionTable[S comparable] map[S][]S

// allows проверяет, разрешен ли переход from -> to
func (t transitionTable[S]) allows(from, to S) bool {
	for _, next := range t[from] {
		if next == to {
			return true
		}
	}
	return false
}

// next возвращает все статусы, в которые можно перейти из from
func (t transitionTable[S]) next(from S) []S {
	out := make([]S, len(t[from]))
	copy(out, t[from])
	return out
}

// transition возвращает новый статус или ошибку ErrInvalidStatusTransition
func transition[S comparable](t transitionTable[S], from, to S) (S, error) {
	if !t.allows(from, to) {
		return from, fmt.Errorf("%w: %v -> %v", ErrInvalidStatusTransition, from, to)
	}
	return to, nil
}
