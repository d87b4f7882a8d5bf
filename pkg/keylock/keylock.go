// Package keylock provee un mutex por clave, en proceso, que respeta la cancelación del contexto.
package keylock

import (
	"context"
	"sync"
)

// Locker serializa el trabajo por clave; claves distintas no se bloquean entre sí.
// Las entradas se liberan cuando nadie espera la clave.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	ch   chan struct{}
	refs int
}

// New construye el locker.
func New() *Locker {
	return &Locker{locks: make(map[string]*entry)}
}

// Lock espera la clave hasta obtenerla o hasta que ctx termine.
// La función devuelta libera la clave; llamarla más de una vez no tiene efecto.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &entry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-e.ch
				l.release(key, e)
			})
		}, nil
	case <-ctx.Done():
		l.release(key, e)
		return nil, ctx.Err()
	}
}

func (l *Locker) release(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}
