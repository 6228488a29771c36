package decl

import (
	"errors"
)

// OperatorKind identifies an overloadable operator.
type OperatorKind int

const (
	OpAssignment OperatorKind = iota
	OpAddition
	OpSubtraction
	OpMultiplication
	OpDivision
	OpModulo
	OpEqual
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpIndex
	OpCall
	OpIncrement
	OpDecrement
	OpNegation
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpShiftLeft
	OpShiftRight
	// OpConversion is a conversion operator; ConversionType holds the target.
	OpConversion
)

// Operator is the operator tag of a callable declaration.
type Operator struct {
	Kind OperatorKind
	// ConversionType is set for OpConversion.
	ConversionType *Type
}

var operatorBoundaryNames = map[OperatorKind]string{
	OpAssignment:     "assign",
	OpAddition:       "add",
	OpSubtraction:    "sub",
	OpMultiplication: "mul",
	OpDivision:       "div",
	OpModulo:         "rem",
	OpEqual:          "eq",
	OpNotEqual:       "neq",
	OpLess:           "lt",
	OpGreater:        "gt",
	OpLessEqual:      "le",
	OpGreaterEqual:   "ge",
	OpIndex:          "index",
	OpCall:           "call",
	OpIncrement:      "inc",
	OpDecrement:      "dec",
	OpNegation:       "neg",
	OpBitwiseAnd:     "bit_and",
	OpBitwiseOr:      "bit_or",
	OpBitwiseXor:     "bit_xor",
	OpShiftLeft:      "shl",
	OpShiftRight:     "shr",
}

// BoundaryName returns the identifier fragment used for this operator in
// boundary and target names.
func (o *Operator) BoundaryName() (string, error) {
	if o.Kind == OpConversion {
		return "", errors.New("conversion operators are named from their target type")
	}

	name, ok := operatorBoundaryNames[o.Kind]
	if !ok {
		return "", errors.New("unsupported operator kind")
	}

	return name, nil
}
