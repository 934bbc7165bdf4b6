package jsonld

// Builder assembles documents and serializes them with its Encoder.
type Builder struct {
	encoder Encoder
}

// NewBuilder returns a Builder using enc, or DefaultEncoder when enc is nil.
func NewBuilder(enc Encoder) *Builder {
	if enc == nil {
		enc = DefaultEncoder
	}
	return &Builder{encoder: enc}
}

func (b *Builder) ProductJSON(p Product, variants []VariantStock, currency string) (string, error) {
	doc, err := BuildProduct(p, variants, currency)
	if err != nil {
		return "", err
	}
	return b.encode(doc)
}

func (b *Builder) CollectionJSON(items []VariantStock, category *Category, defaultName *string) (string, error) {
	doc, err := BuildCollection(items, category, defaultName)
	if err != nil {
		return "", err
	}
	return b.encode(doc)
}

func (b *Builder) encode(doc *Document) (string, error) {
	data, err := b.encoder.Encode(doc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
