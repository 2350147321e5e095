package reader

import (
	"fmt"

	"github.com/segmentio/parquet-go"

	"github.com/vegasq/parquet2root/batch"
)

// SchemaInfo describes a single column of a Parquet file and the branch
// type it converts to.
type SchemaInfo struct {
	Name         string `json:"name"`
	PhysicalType string `json:"physical_type"`
	LogicalType  string `json:"logical_type"`
	Kind         string `json:"kind"`
	Optional     bool   `json:"optional"`
	Repeated     bool   `json:"repeated"`
	Supported    bool   `json:"supported"`
}

// ExtractSchemaInfo extracts schema information from a Parquet file.
//
// For nested types, field names use dot notation (e.g., "address.street").
// Columns that cannot be converted are listed with Supported set to false
// instead of failing, so callers can show the user what is wrong.
func ExtractSchemaInfo(path string) ([]SchemaInfo, error) {
	reader, err := NewReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = reader.Close() }()

	var infos []SchemaInfo
	for _, field := range reader.Schema().Fields() {
		infos = append(infos, extractFieldInfo(field, "", false, false)...)
	}
	return infos, nil
}

// extractFieldInfo walks a field recursively. nested is set once any parent
// is a group, since only top-level leaves become branches.
func extractFieldInfo(field parquet.Field, prefix string, parentRepeated, nested bool) []SchemaInfo {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated := parentRepeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		var infos []SchemaInfo
		for _, child := range children {
			infos = append(infos, extractFieldInfo(child, name, repeated, true)...)
		}
		return infos
	}

	info := SchemaInfo{
		Name:         name,
		PhysicalType: physicalType(field),
		LogicalType:  logicalType(field),
		Optional:     field.Optional(),
		Repeated:     repeated,
	}
	if kind, err := kindOf(field); err == nil && !nested {
		info.Kind = kind.String()
		info.Supported = true
	}
	return []SchemaInfo{info}
}

// kindOf maps a top-level parquet field to the scalar kind of its batch
// column.
func kindOf(field parquet.Field) (batch.Kind, error) {
	if len(field.Fields()) > 0 || field.Type() == nil {
		return batch.Invalid, fmt.Errorf("%w: %s is a group", ErrUnsupportedColumn, field.Name())
	}
	if field.Repeated() {
		return batch.Invalid, fmt.Errorf("%w: %s is repeated", ErrUnsupportedColumn, field.Name())
	}

	typ := field.Type()
	switch typ.Kind() {
	case parquet.Boolean:
		return batch.Bool, nil
	case parquet.Int32:
		if lt := typ.LogicalType(); lt != nil && lt.Integer != nil {
			switch {
			case lt.Integer.BitWidth == 8 && lt.Integer.IsSigned:
				return batch.Int8, nil
			case lt.Integer.BitWidth == 8:
				return batch.Uint8, nil
			case lt.Integer.BitWidth == 16 && lt.Integer.IsSigned:
				return batch.Int16, nil
			case lt.Integer.BitWidth == 16:
				return batch.Uint16, nil
			case !lt.Integer.IsSigned:
				return batch.Uint32, nil
			}
		}
		return batch.Int32, nil
	case parquet.Int64:
		if lt := typ.LogicalType(); lt != nil && lt.Integer != nil && !lt.Integer.IsSigned {
			return batch.Uint64, nil
		}
		return batch.Int64, nil
	case parquet.Float:
		return batch.Float32, nil
	case parquet.Double:
		return batch.Float64, nil
	case parquet.ByteArray, parquet.FixedLenByteArray:
		return batch.String, nil
	default:
		return batch.Invalid, fmt.Errorf("%w: %s has physical type %s", ErrUnsupportedColumn, field.Name(), physicalType(field))
	}
}

// physicalType returns the physical type name of a Parquet field.
func physicalType(field parquet.Field) string {
	if field.Type() == nil || len(field.Fields()) > 0 {
		return "GROUP"
	}

	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	default:
		return "UNKNOWN"
	}
}

// logicalType returns the logical type name of a Parquet field.
func logicalType(field parquet.Field) string {
	if field.Type() == nil || len(field.Fields()) > 0 {
		return ""
	}
	lt := field.Type().LogicalType()
	if lt == nil {
		return ""
	}
	return lt.String()
}
