package storage

import "context"

// namespaced: представление хранилища одного устройства (владельца) поверх общего.
type namespaced struct {
	parent DocumentStore
	prefix string
}

// Namespace возвращает хранилище, в котором все ключи имеют префикс device:<ownerID>:.
// Close представления не закрывает родителя.
func Namespace(parent DocumentStore, ownerID string) DocumentStore {
	return &namespaced{parent: parent, prefix: "device:" + ownerID + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, error) {
	return n.parent.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.parent.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Remove(ctx context.Context, key string) error {
	return n.parent.Remove(ctx, n.prefix+key)
}

func (n *namespaced) Close() error { return nil }
