package per

// Field describes one SEQUENCE field or CHOICE alternative: its wire name,
// its codec, and (for SEQUENCE fields) whether it is OPTIONAL or carries a
// DEFAULT value.
type Field struct {
	Name       string
	Codec      Codec
	Optional   bool
	HasDefault bool
	Default    interface{}
}

func (f Field) hasPreambleBit() bool { return f.Optional || f.HasDefault }
