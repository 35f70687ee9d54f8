package graphlite

import "fmt"

// TypeKind enumerates the GQL type system's base kinds (§3 Type system).
type TypeKind uint8

const (
	TypeBoolean TypeKind = iota
	TypeString
	TypeBytes
	TypeDecimal
	TypeInteger
	TypeBigInt
	TypeSmallInt
	TypeInt128
	TypeInt256
	TypeFloat
	TypeFloat32
	TypeReal
	TypeDouble
	TypeVector
	TypeDate
	TypeTime
	TypeTimestamp
	TypeZonedTime
	TypeZonedDateTime
	TypeLocalTime
	TypeLocalDateTime
	TypeDuration
	TypeReference
	TypePath
	TypeList
	TypeRecord
	TypeGraph
	TypeBindingTable
)

// TypeSpec is the descriptive type of an expression or declared property.
// Precision/scale/max fields are only meaningful for the kinds that declare
// them; zero means "unspecified" rather than a literal zero bound.
type TypeSpec struct {
	Kind TypeKind

	Max       int // String/Bytes/List max length, 0 = unbounded
	Precision int // Decimal/Float/temporal precision, 0 = unspecified
	Scale     int // Decimal scale
	Dim       int // Vector dimensionality

	HasTimezone bool
	ElemType    *TypeSpec // List element type
	Target      string    // Reference target type name, "" if untyped
	GraphSpec   string    // Graph type specification name, "" if untyped
}

func Simple(k TypeKind) TypeSpec { return TypeSpec{Kind: k} }

func (t TypeSpec) String() string {
	switch t.Kind {
	case TypeString:
		if t.Max > 0 {
			return fmt.Sprintf("STRING(%d)", t.Max)
		}
		return "STRING"
	case TypeDecimal:
		return fmt.Sprintf("DECIMAL(%d,%d)", t.Precision, t.Scale)
	case TypeList:
		if t.ElemType != nil {
			return fmt.Sprintf("LIST<%s>", t.ElemType.String())
		}
		return "LIST"
	default:
		return typeKindNames[t.Kind]
	}
}

var typeKindNames = map[TypeKind]string{
	TypeBoolean:        "BOOLEAN",
	TypeString:         "STRING",
	TypeBytes:          "BYTES",
	TypeDecimal:        "DECIMAL",
	TypeInteger:        "INTEGER",
	TypeBigInt:         "BIGINT",
	TypeSmallInt:       "SMALLINT",
	TypeInt128:         "INT128",
	TypeInt256:         "INT256",
	TypeFloat:          "FLOAT",
	TypeFloat32:        "FLOAT32",
	TypeReal:           "REAL",
	TypeDouble:         "DOUBLE",
	TypeVector:         "VECTOR",
	TypeDate:           "DATE",
	TypeTime:           "TIME",
	TypeTimestamp:      "TIMESTAMP",
	TypeZonedTime:      "ZONED TIME",
	TypeZonedDateTime:  "ZONED DATETIME",
	TypeLocalTime:      "LOCAL TIME",
	TypeLocalDateTime:  "LOCAL DATETIME",
	TypeDuration:       "DURATION",
	TypeReference:      "REFERENCE",
	TypePath:           "PATH",
	TypeList:           "LIST",
	TypeRecord:         "RECORD",
	TypeGraph:          "GRAPH",
	TypeBindingTable:   "BINDING TABLE",
}

// IsScalar reports whether the type is a single atomic value (not a
// collection, path, record, graph or binding table).
func (t TypeSpec) IsScalar() bool {
	switch t.Kind {
	case TypeList, TypePath, TypeRecord, TypeGraph, TypeBindingTable:
		return false
	}
	return true
}

func (t TypeSpec) IsNumeric() bool {
	return t.IsExactNumeric() || t.IsApproximateNumeric()
}

func (t TypeSpec) IsExactNumeric() bool {
	switch t.Kind {
	case TypeDecimal, TypeInteger, TypeBigInt, TypeSmallInt, TypeInt128, TypeInt256:
		return true
	}
	return false
}

func (t TypeSpec) IsApproximateNumeric() bool {
	switch t.Kind {
	case TypeFloat, TypeFloat32, TypeReal, TypeDouble:
		return true
	}
	return false
}

func (t TypeSpec) IsCollection() bool {
	switch t.Kind {
	case TypeList, TypePath, TypeBindingTable:
		return true
	}
	return false
}

func (t TypeSpec) IsTemporal() bool {
	switch t.Kind {
	case TypeDate, TypeTime, TypeTimestamp, TypeZonedTime, TypeZonedDateTime,
		TypeLocalTime, TypeLocalDateTime, TypeDuration:
		return true
	}
	return false
}

func (t TypeSpec) HasTimezoneComponent() bool {
	switch t.Kind {
	case TypeZonedTime, TypeZonedDateTime:
		return true
	}
	return t.HasTimezone
}

func (t TypeSpec) HasTimeComponent() bool {
	switch t.Kind {
	case TypeTime, TypeTimestamp, TypeZonedTime, TypeZonedDateTime, TypeLocalTime, TypeLocalDateTime:
		return true
	}
	return false
}

func (t TypeSpec) HasDateComponent() bool {
	switch t.Kind {
	case TypeDate, TypeTimestamp, TypeZonedDateTime, TypeLocalDateTime:
		return true
	}
	return false
}
