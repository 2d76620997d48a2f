package asn1

import (
	"fmt"

	"github.com/go-asn1/per/internal"
	"github.com/go-asn1/per/schema"
)

// ConvertOptions controls Convert's handling of constructs the schema
// model does not need to carry verbatim.
type ConvertOptions struct {
	// OID selects whether OBJECT IDENTIFIER type assignments used only
	// as value containers are kept or omitted from the registry. This
	// library has no standalone OID value syntax to convert, so OID is
	// always kept; the field exists for API parity with the language-
	// neutral surface in spec.md §6.
	OID string // "keep" or "omit"
}

// Convert transforms a parsed Module into a map of schema.Node suitable
// for schema.BuildAll. Types that refer to themselves, directly or
// through a cycle of named types, are converted to $ref nodes instead of
// being inlined; acyclic references are inlined in place. A name that is
// neither a primitive nor defined in the module fails with a
// *internal.UnresolvedReferenceError.
func Convert(mod *Module, opts ConvertOptions) (map[string]*schema.Node, error) {
	defs := make(map[string]TypeExpr, len(mod.Assignments))
	for _, a := range mod.Assignments {
		defs[a.Name] = a.Type
	}

	c := &converter{defs: defs, visiting: map[string]bool{}, result: map[string]*schema.Node{}}
	for _, a := range mod.Assignments {
		node, err := c.convertNamed(a.Name)
		if err != nil {
			return nil, err
		}
		c.result[a.Name] = node
	}
	return c.result, nil
}

type converter struct {
	defs     map[string]TypeExpr
	visiting map[string]bool
	result   map[string]*schema.Node
}

// convertNamed converts the type assignment named name, using the
// currently-visiting set to detect a cycle back to name itself.
func (c *converter) convertNamed(name string) (*schema.Node, error) {
	if n, ok := c.result[name]; ok {
		return n, nil
	}
	typ, ok := c.defs[name]
	if !ok {
		return nil, &internal.UnresolvedReferenceError{Name: name}
	}
	c.visiting[name] = true
	node, err := c.convertType(typ)
	delete(c.visiting, name)
	if err != nil {
		return nil, err
	}
	c.result[name] = node
	return node, nil
}

func (c *converter) convertType(typ TypeExpr) (*schema.Node, error) {
	switch t := typ.(type) {
	case BooleanType:
		return &schema.Node{Type: schema.TypeBoolean}, nil
	case NullType:
		return &schema.Node{Type: schema.TypeNull}, nil
	case ObjectIdentifierType:
		return &schema.Node{Type: schema.TypeObjectIdentifier}, nil
	case IntegerType:
		n := &schema.Node{Type: schema.TypeInteger, Extensible: t.Extensible}
		if t.Constraint != nil {
			min, max := t.Constraint.Min, t.Constraint.Max
			n.Min, n.Max = &min, &max
		}
		return n, nil
	case EnumeratedType:
		n := &schema.Node{Type: schema.TypeEnumerated, Extensible: t.Extensible}
		for _, v := range t.Values {
			n.Root = append(n.Root, v.Name)
		}
		for _, v := range t.ExtensionValues {
			n.Extension = append(n.Extension, v.Name)
		}
		return n, nil
	case BitStringType:
		n := &schema.Node{Type: schema.TypeBitString}
		applySize(n, t.Size)
		return n, nil
	case OctetStringType:
		n := &schema.Node{Type: schema.TypeOctetString}
		applySize(n, t.Size)
		return n, nil
	case CharacterStringType:
		var st schema.NodeType
		switch t.Kind {
		case CharVisible:
			st = schema.TypeVisibleString
		case CharUTF8:
			st = schema.TypeUTF8String
		default:
			st = schema.TypeIA5String
		}
		n := &schema.Node{Type: st, Alphabet: t.Alphabet}
		applySize(n, t.Size)
		return n, nil
	case SequenceOfType:
		item, err := c.convertType(t.Item)
		if err != nil {
			return nil, err
		}
		n := &schema.Node{Type: schema.TypeSequenceOf, Item: item}
		applySize(n, t.Size)
		return n, nil
	case SequenceType:
		fields, err := c.convertFields(t.Fields)
		if err != nil {
			return nil, err
		}
		extFields, err := c.convertFields(t.ExtensionFields)
		if err != nil {
			return nil, err
		}
		return &schema.Node{Type: schema.TypeSequence, Fields: fields, ExtensionFields: extFields, Extensible: t.Extensible}, nil
	case ChoiceType:
		alts, err := c.convertFields(t.Alternatives)
		if err != nil {
			return nil, err
		}
		extAlts, err := c.convertFields(t.ExtensionAlternatives)
		if err != nil {
			return nil, err
		}
		return &schema.Node{Type: schema.TypeChoice, Alternatives: alts, ExtensionAlternatives: extAlts, Extensible: t.Extensible}, nil
	case ReferenceType:
		return c.convertReference(t.Name)
	default:
		return nil, &internal.SchemaError{Detail: fmt.Sprintf("unsupported ASN.1 type node %T", typ)}
	}
}

// convertReference resolves a named type reference: a self-cycle (the
// name is currently being converted higher up the call stack) emits a
// $ref node; otherwise the referenced type is inlined by converting it
// in place.
func (c *converter) convertReference(name string) (*schema.Node, error) {
	if c.visiting[name] {
		return &schema.Node{Type: schema.TypeRef, Ref: name}, nil
	}
	if _, defined := c.defs[name]; !defined {
		return nil, &internal.UnresolvedReferenceError{Name: name}
	}
	return c.convertNamed(name)
}

func (c *converter) convertFields(fields []SeqField) ([]schema.FieldNode, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	out := make([]schema.FieldNode, len(fields))
	for i, f := range fields {
		childSchema, err := c.convertType(f.Type)
		if err != nil {
			return nil, err
		}
		fn := schema.FieldNode{Name: f.Name, Schema: childSchema, Optional: f.Optional}
		if f.HasDefault {
			fn.DefaultValue = f.DefaultValue
		}
		out[i] = fn
	}
	return out, nil
}

func applySize(n *schema.Node, sc *SizeConstraint) {
	if sc == nil {
		return
	}
	n.FixedSize = sc.Fixed
	n.MinSize = sc.Min
	n.MaxSize = sc.Max
	n.SizeExtensible = sc.Extensible
}
