package schema

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/go-asn1/per/bitstream"
	"github.com/go-asn1/per/per"
	"github.com/go-asn1/per/internal"
)

// Registry maps a named schema to its compiled codec. BuildAll returns a
// fully resolved Registry; every entry is safe to Encode/Decode with
// immediately, including entries reached only through a recursive $ref.
type Registry map[string]per.Codec

// proxyCodec is the lazy codec proxy described in spec.md §4.6: BuildAll
// allocates one per named schema up front and inserts it into the
// registry before compiling anything, so that a $ref child compiles to a
// proxy lookup rather than an infinite recursion. Once BuildAll finishes,
// target is set and every method call forwards to it.
type proxyCodec struct {
	kind   per.Kind
	target per.Codec
}

func (p *proxyCodec) Kind() per.Kind { return p.kind }

func (p *proxyCodec) Encode(buf *bitstream.BitBuffer, value interface{}) error {
	internal.Assert(p.target != nil, &internal.SchemaError{Detail: "lazy codec proxy dereferenced before buildAll completed"})
	return p.target.Encode(buf, value)
}

func (p *proxyCodec) Decode(buf *bitstream.BitBuffer) (interface{}, error) {
	internal.Assert(p.target != nil, &internal.SchemaError{Detail: "lazy codec proxy dereferenced before buildAll completed"})
	return p.target.Decode(buf)
}

func (p *proxyCodec) DecodeWithMetadata(buf *bitstream.BitBuffer) (*per.Node, error) {
	internal.Assert(p.target != nil, &internal.SchemaError{Detail: "lazy codec proxy dereferenced before buildAll completed"})
	return p.target.DecodeWithMetadata(buf)
}

// kindForType returns the per.Kind a node of the given type compiles to,
// used to answer Kind() on a proxy before its target is built.
func kindForType(t NodeType) (per.Kind, error) {
	switch t {
	case TypeBoolean:
		return per.KindBoolean, nil
	case TypeInteger:
		return per.KindInteger, nil
	case TypeEnumerated:
		return per.KindEnumerated, nil
	case TypeBitString:
		return per.KindBitString, nil
	case TypeOctetString:
		return per.KindOctetString, nil
	case TypeIA5String:
		return per.KindIA5String, nil
	case TypeVisibleString:
		return per.KindVisibleString, nil
	case TypeUTF8String:
		return per.KindUTF8String, nil
	case TypeObjectIdentifier:
		return per.KindOID, nil
	case TypeNull:
		return per.KindNull, nil
	case TypeSequence:
		return per.KindSequence, nil
	case TypeSequenceOf:
		return per.KindSequenceOf, nil
	case TypeChoice:
		return per.KindChoice, nil
	default:
		return 0, &internal.SchemaError{Detail: fmt.Sprintf("unknown node type %q", t)}
	}
}

// Build compiles a single schema node in isolation. A $ref node fails,
// since resolving one requires the registry that BuildAll produces.
func Build(node *Node) (per.Codec, error) {
	return build(node, nil)
}

// BuildAll compiles every named schema in nodes into a Registry. Each
// name gets a lazy proxy up front so that cyclic $ref chains among the
// named schemas resolve correctly; a $ref to a name outside nodes fails.
func BuildAll(nodes map[string]*Node) (Registry, error) {
	registry := make(Registry, len(nodes))
	proxies := make(map[string]*proxyCodec, len(nodes))
	for name, node := range nodes {
		kind, err := kindForType(node.Type)
		if err != nil {
			return nil, err
		}
		p := &proxyCodec{kind: kind}
		proxies[name] = p
		registry[name] = p
	}
	for name, node := range nodes {
		codec, err := build(node, registry)
		if err != nil {
			return nil, err
		}
		proxies[name].target = codec
	}
	return registry, nil
}

func build(node *Node, registry Registry) (per.Codec, error) {
	if node == nil {
		return nil, &internal.SchemaError{Detail: "nil schema node"}
	}
	switch node.Type {
	case TypeRef:
		if registry == nil {
			return nil, &internal.SchemaError{Detail: "cannot resolve reference without registry"}
		}
		codec, ok := registry[node.Ref]
		if !ok {
			return nil, &internal.SchemaError{Detail: fmt.Sprintf("unresolved reference %q", node.Ref)}
		}
		return codec, nil
	case TypeBoolean:
		return per.NewBoolean(), nil
	case TypeNull:
		return per.NewNull(), nil
	case TypeObjectIdentifier:
		return per.NewOID(), nil
	case TypeInteger:
		return per.NewInteger(integerConstraint(node)), nil
	case TypeEnumerated:
		return per.NewEnumerated(node.Root, node.Extension, node.Extensible), nil
	case TypeBitString:
		return per.NewBitString(sizeConstraint(node)), nil
	case TypeOctetString:
		return per.NewOctetString(sizeConstraint(node)), nil
	case TypeIA5String, TypeVisibleString, TypeUTF8String:
		return per.NewCharacterString(charConstraint(node)), nil
	case TypeSequenceOf:
		item, err := build(node.Item, registry)
		if err != nil {
			return nil, err
		}
		return per.NewSequenceOf(item, sizeConstraint(node)), nil
	case TypeSequence:
		fields, err := buildFields(node.Fields, registry)
		if err != nil {
			return nil, err
		}
		extFields, err := buildFields(node.ExtensionFields, registry)
		if err != nil {
			return nil, err
		}
		return per.NewSequence(fields, extFields, node.Extensible), nil
	case TypeChoice:
		alts, err := buildFields(node.Alternatives, registry)
		if err != nil {
			return nil, err
		}
		extAlts, err := buildFields(node.ExtensionAlternatives, registry)
		if err != nil {
			return nil, err
		}
		return per.NewChoice(alts, extAlts, node.Extensible), nil
	default:
		return nil, &internal.SchemaError{Detail: fmt.Sprintf("unknown node type %q", node.Type)}
	}
}

func buildFields(nodes []FieldNode, registry Registry) ([]per.Field, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]per.Field, len(nodes))
	for i, fn := range nodes {
		codec, err := build(fn.Schema, registry)
		if err != nil {
			return nil, &internal.SchemaError{Detail: fmt.Sprintf("field %q: %s", fn.Name, err)}
		}
		f := per.Field{Name: fn.Name, Codec: codec, Optional: fn.Optional}
		if fn.hasDefault() {
			def, err := convertDefault(fn.Schema.Type, fn.DefaultValue)
			if err != nil {
				return nil, &internal.SchemaError{Detail: fmt.Sprintf("field %q default: %s", fn.Name, err)}
			}
			f.HasDefault = true
			f.Default = def
		}
		out[i] = f
	}
	return out, nil
}

func integerConstraint(node *Node) per.IntegerConstraint {
	c := per.IntegerConstraint{Extensible: node.Extensible}
	if node.Min != nil {
		c.Min = big.NewInt(*node.Min)
	}
	if node.Max != nil {
		c.Max = big.NewInt(*node.Max)
	}
	return c
}

func sizeConstraint(node *Node) per.SizeConstraint {
	return per.SizeConstraint{
		FixedSize:  node.FixedSize,
		MinSize:    node.MinSize,
		MaxSize:    node.MaxSize,
		Extensible: node.SizeExtensible,
	}
}

func charConstraint(node *Node) per.CharStringConstraint {
	var kind per.CharStringKind
	switch node.Type {
	case TypeVisibleString:
		kind = per.VisibleString
	case TypeUTF8String:
		kind = per.UTF8String
	default:
		kind = per.IA5String
	}
	c := per.CharStringConstraint{Kind: kind, Size: sizeConstraint(node)}
	if node.Alphabet != "" {
		c.Alphabet = []rune(node.Alphabet)
	}
	return c
}

// convertDefault converts a JSON-decoded default value into the Go
// representation the corresponding codec's Decode would produce, so that
// the DEFAULT-elision comparison in per.SequenceCodec.Encode compares
// like with like.
func convertDefault(t NodeType, raw interface{}) (interface{}, error) {
	switch t {
	case TypeInteger:
		switch v := raw.(type) {
		case float64:
			bi, _ := big.NewFloat(v).Int(nil)
			return bi, nil
		case json.Number:
			bi, ok := new(big.Int).SetString(v.String(), 10)
			if !ok {
				return nil, fmt.Errorf("invalid integer default %q", v)
			}
			return bi, nil
		case int:
			return big.NewInt(int64(v)), nil
		case int64:
			return big.NewInt(v), nil
		case *big.Int:
			return v, nil
		default:
			return nil, fmt.Errorf("unsupported integer default type %T", raw)
		}
	case TypeBoolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("unsupported boolean default type %T", raw)
		}
		return b, nil
	case TypeEnumerated, TypeIA5String, TypeVisibleString, TypeUTF8String:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("unsupported string default type %T", raw)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("defaults are not supported for type %q", t)
	}
}
