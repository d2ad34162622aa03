package db

import (
	"crypto/sha256"
	"encoding/binary"
	"sort"
)

type overlayEntry struct {
	value   []byte
	deleted bool
}

// OverlayProvider buffers writes on top of a base provider. Reads see the buffered writes first.
// Nothing reaches the base until CommitTo is used with a batch of the base provider; dropping
// the overlay discards every buffered write.
type OverlayProvider struct {
	base    DatabaseProvider
	entries map[string]overlayEntry
}

// NewOverlayProvider creates an empty overlay over base
func NewOverlayProvider(base DatabaseProvider) *OverlayProvider {
	return &OverlayProvider{
		base:    base,
		entries: make(map[string]overlayEntry),
	}
}

func (o *OverlayProvider) Get(key []byte) ([]byte, error) {
	if e, ok := o.entries[string(key)]; ok {
		if e.deleted {
			return nil, nil
		}
		return append([]byte(nil), e.value...), nil
	}
	return o.base.Get(key)
}

func (o *OverlayProvider) GetBatch(keys [][]byte) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	missing := make([][]byte, 0, len(keys))
	for _, key := range keys {
		e, ok := o.entries[string(key)]
		if !ok {
			missing = append(missing, key)
			continue
		}
		if !e.deleted {
			result[string(key)] = append([]byte(nil), e.value...)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	fromBase, err := o.base.GetBatch(missing)
	if err != nil {
		return nil, err
	}
	for k, v := range fromBase {
		result[k] = v
	}
	return result, nil
}

func (o *OverlayProvider) Put(key, value []byte) error {
	o.entries[string(key)] = overlayEntry{value: append([]byte(nil), value...)}
	return nil
}

func (o *OverlayProvider) Delete(key []byte) error {
	o.entries[string(key)] = overlayEntry{deleted: true}
	return nil
}

func (o *OverlayProvider) Has(key []byte) (bool, error) {
	if e, ok := o.entries[string(key)]; ok {
		return !e.deleted, nil
	}
	return o.base.Has(key)
}

// Close is a no-op, the base provider is owned by the caller
func (o *OverlayProvider) Close() error {
	return nil
}

// Batch returns a batch whose Write lands in the overlay, not in the base
func (o *OverlayProvider) Batch() DatabaseBatch {
	return &overlayBatch{overlay: o}
}

// Dirty reports whether any write was buffered
func (o *OverlayProvider) Dirty() bool {
	return len(o.entries) > 0
}

// Discard drops every buffered write
func (o *OverlayProvider) Discard() {
	o.entries = make(map[string]overlayEntry)
}

// CommitTo adds every buffered write to batch in key order
func (o *OverlayProvider) CommitTo(batch DatabaseBatch) {
	for _, key := range o.sortedKeys() {
		e := o.entries[key]
		if e.deleted {
			batch.Delete([]byte(key))
		} else {
			batch.Put([]byte(key), e.value)
		}
	}
}

// DeltaHash computes a deterministic hash over the buffered writes.
// Each write is encoded as: len(key)|key|deleted(1B)|len(value)|value, keys sorted.
func (o *OverlayProvider) DeltaHash() [32]byte {
	if len(o.entries) == 0 {
		return [32]byte{}
	}
	h := sha256.New()
	buf := make([]byte, 8)
	for _, key := range o.sortedKeys() {
		e := o.entries[key]
		binary.BigEndian.PutUint64(buf, uint64(len(key)))
		h.Write(buf)
		h.Write([]byte(key))
		if e.deleted {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
		binary.BigEndian.PutUint64(buf, uint64(len(e.value)))
		h.Write(buf)
		h.Write(e.value)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (o *OverlayProvider) sortedKeys() []string {
	keys := make([]string, 0, len(o.entries))
	for k := range o.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type overlayOp struct {
	key    []byte
	value  []byte
	delete bool
}

type overlayBatch struct {
	overlay *OverlayProvider
	ops     []overlayOp
}

func (b *overlayBatch) Put(key, value []byte) {
	b.ops = append(b.ops, overlayOp{key: append([]byte(nil), key...), value: append([]byte(nil), value...)})
}

func (b *overlayBatch) Delete(key []byte) {
	b.ops = append(b.ops, overlayOp{key: append([]byte(nil), key...), delete: true})
}

func (b *overlayBatch) Write() error {
	for _, op := range b.ops {
		if op.delete {
			_ = b.overlay.Delete(op.key)
		} else {
			_ = b.overlay.Put(op.key, op.value)
		}
	}
	return nil
}

func (b *overlayBatch) Reset() {
	b.ops = b.ops[:0]
}

func (b *overlayBatch) Close() error {
	b.ops = nil
	return nil
}
