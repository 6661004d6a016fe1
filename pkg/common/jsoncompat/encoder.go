package jsoncompat

type Encoder interface {
	Encode(v any) error
}
