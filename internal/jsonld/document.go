package jsonld

// Document is an ordered JSON object. Set on an existing key overwrites the
// value in place, so the last write wins and the first position is kept.
type Document struct {
	keys   []string
	values map[string]any
}

func NewDocument() *Document {
	return &Document{values: make(map[string]any)}
}

func newTyped(typ string) *Document {
	return NewDocument().Set("@type", typ)
}

func (d *Document) Set(key string, value any) *Document {
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
	return d
}

func (d *Document) Get(key string) (any, bool) {
	v, ok := d.values[key]
	return v, ok
}

func (d *Document) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (d *Document) Keys() []string {
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

func (d *Document) Len() int {
	return len(d.keys)
}

// Doc returns the nested document stored under key, or nil.
func (d *Document) Doc(key string) *Document {
	v, _ := d.values[key].(*Document)
	return v
}
