package table

import (
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

const (
	parquetProcs = 4

	// Index columns written by dataframe libraries, not data.
	pandasIndexPrefix = "__index_level_"
)

// Characters parquet-go schema tags can't hold in a name.
var tagUnsafe = strings.NewReplacer(",", "_", "=", "_", "\t", "_")

// parquetNames returns column names storable in schema tags. Names clashing
// after cleanup, or after parquet-go maps them to field names, get a numeric
// suffix.
func parquetNames(columns []Column) []string {
	names := make([]string, len(columns))
	seen := make(map[string]struct{}, len(columns))
	for i, col := range columns {
		base := strings.TrimSpace(tagUnsafe.Replace(col.Name))
		if base == "" {
			base = fmt.Sprintf("column_%d", i+1)
		}
		name := base
		for n := 2; ; n++ {
			key := common.StringToVariableName(name)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				break
			}
			name = fmt.Sprintf("%s_%d", base, n)
		}
		names[i] = name
	}
	return names
}

func parquetSchema(t *Table) []string {
	names := parquetNames(t.Columns)
	md := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		var typ string
		switch storedKind(col.Kind) {
		case KindInt:
			typ = "type=INT64"
		case KindFloat:
			typ = "type=DOUBLE"
		default:
			typ = "type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"
		}
		md[i] = fmt.Sprintf("name=%s, %s, repetitiontype=OPTIONAL", names[i], typ)
	}
	return md
}

func writeParquet(path string, t *Table) error {
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer fw.Close()

	pw, err := writer.NewCSVWriter(parquetSchema(t), fw, parquetProcs)
	if err != nil {
		return fmt.Errorf("new writer: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	kinds := make([]Kind, len(t.Columns))
	for i, col := range t.Columns {
		kinds[i] = storedKind(col.Kind)
	}

	for i, src := range t.Rows {
		row := make([]any, len(src))
		for j, v := range src {
			row[j] = Coerce(v, kinds[j])
		}
		if err := pw.Write(row); err != nil {
			return fmt.Errorf("write row #%d: %w", i, err)
		}
	}

	if err := pw.WriteStop(); err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	return nil
}

func readParquet(path string) (*Table, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetColumnReader(fr, parquetProcs)
	if err != nil {
		return nil, fmt.Errorf("new reader: %w", err)
	}
	defer pr.ReadStop()

	numRows := pr.GetNumRows()
	// The reader renames footer schema into Go names, external names are
	// kept in schema infos. Element zero is the root.
	elems := pr.SchemaHandler.SchemaElements
	infos := pr.SchemaHandler.Infos
	t := &Table{Rows: make([][]any, numRows)}
	for i := range t.Rows {
		t.Rows[i] = make([]any, 0, len(elems)-1)
	}

	var leaf int64
	for i := 1; i < len(elems); i++ {
		elem, name := elems[i], infos[i].ExName
		if elem.GetNumChildren() > 0 {
			return nil, fmt.Errorf("nested column %q not supported", name)
		}
		index := leaf
		leaf++

		if strings.HasPrefix(name, pandasIndexPrefix) {
			continue
		}

		kind, convert, err := parquetKind(name, elem)
		if err != nil {
			return nil, err
		}

		values, _, _, err := pr.ReadColumnByIndex(index, numRows)
		if err != nil {
			return nil, fmt.Errorf("read column %q: %w", name, err)
		} else if int64(len(values)) != numRows {
			return nil, fmt.Errorf("column %q has %d values, want %d",
				name, len(values), numRows)
		}

		t.Columns = append(t.Columns, Column{Name: name, Kind: kind})
		for j, v := range values {
			t.Rows[j] = append(t.Rows[j], convert(v))
		}
	}
	return t, nil
}

func parquetKind(name string, elem *parquet.SchemaElement,
) (Kind, func(any) any, error) {
	if !elem.IsSetType() {
		return 0, nil, fmt.Errorf("column %q has no type", name)
	}

	switch elem.GetType() {
	case parquet.Type_INT64:
		return KindInt, identity, nil
	case parquet.Type_INT32:
		return KindInt, func(v any) any {
			if n, ok := v.(int32); ok {
				return int64(n)
			}
			return v
		}, nil
	case parquet.Type_DOUBLE:
		return KindFloat, identity, nil
	case parquet.Type_FLOAT:
		return KindFloat, func(v any) any {
			if n, ok := v.(float32); ok {
				return float64(n)
			}
			return v
		}, nil
	case parquet.Type_BYTE_ARRAY, parquet.Type_FIXED_LEN_BYTE_ARRAY:
		return KindString, func(v any) any {
			if b, ok := v.([]byte); ok {
				return string(b)
			}
			return v
		}, nil
	case parquet.Type_BOOLEAN:
		return KindString, func(v any) any {
			if b, ok := v.(bool); ok {
				return fmt.Sprint(b)
			}
			return v
		}, nil
	}
	return 0, nil, fmt.Errorf("column %q: unsupported type %v", name,
		elem.GetType())
}

func identity(v any) any { return v }
