package codec

import (
	"bytes"
	"encoding/binary"
	"math"

	"isadb/internal/dbcore"
)

const (
	tagNull   byte = 0
	tagInt    byte = 1
	tagFloat  byte = 2
	tagString byte = 3
)

// EncodePage serializes a page to a compact binary blob: row count, field
// count, then per field its name and one tagged value per row. This is the
// page's own round-trippable format named by spec.md §6.
func EncodePage(page *dbcore.Page) ([]byte, error) {
	var buf bytes.Buffer

	writeU32(&buf, uint32(page.RowCount))
	writeU16(&buf, uint16(len(page.FieldOrder)))

	for _, name := range page.FieldOrder {
		field := page.Fields[name]
		writeString(&buf, name)
		for i := 0; i < field.Length(); i++ {
			writeValue(&buf, field.Values[i])
		}
	}
	return buf.Bytes(), nil
}

// DecodePage rebuilds a page from its binary blob. schema supplies the
// FieldSchema for each named column (page blobs carry values, not types).
func DecodePage(data []byte, path string, schema *dbcore.TableSchema) (*dbcore.Page, error) {
	r := bytes.NewReader(data)
	rowCount, err := readU32(r)
	if err != nil {
		return nil, dbcore.Wrap(dbcore.KindIO, err, "decode page %s: row count", path)
	}
	fieldCount, err := readU16(r)
	if err != nil {
		return nil, dbcore.Wrap(dbcore.KindIO, err, "decode page %s: field count", path)
	}

	page := dbcore.NewPage(path)
	for i := 0; i < int(fieldCount); i++ {
		name, err := readString(r)
		if err != nil {
			return nil, dbcore.Wrap(dbcore.KindIO, err, "decode page %s: field name", path)
		}
		fs := schema.FieldByName(name)
		if fs == nil {
			return nil, dbcore.Newf(dbcore.KindIO, "decode page %s: unknown field %q", path, name)
		}
		field := dbcore.NewField(fs)
		for j := uint32(0); j < rowCount; j++ {
			v, err := readValue(r)
			if err != nil {
				return nil, dbcore.Wrap(dbcore.KindIO, err, "decode page %s: field %q value %d", path, name, j)
			}
			field.Values = append(field.Values, v)
		}
		if err := page.AddField(name, field, nil); err != nil {
			return nil, err
		}
	}
	return page, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeU16(buf, uint16(len(s)))
	buf.WriteString(s)
}

func writeValue(buf *bytes.Buffer, v any) {
	switch x := v.(type) {
	case nil:
		buf.WriteByte(tagNull)
	case int64:
		buf.WriteByte(tagInt)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(x))
		buf.Write(b[:])
	case float64:
		buf.WriteByte(tagFloat)
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(x))
		buf.Write(b[:])
	case string:
		buf.WriteByte(tagString)
		writeString(buf, x)
	default:
		buf.WriteByte(tagNull)
	}
}

func readU16(r *bytes.Reader) (uint16, error) {
	var b [2]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readU16(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if _, err := r.Read(b); err != nil {
		return "", err
	}
	return string(b), nil
}

func readValue(r *bytes.Reader) (any, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagNull:
		return nil, nil
	case tagInt:
		var b [8]byte
		if _, err := r.Read(b[:]); err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b[:])), nil
	case tagFloat:
		var b [8]byte
		if _, err := r.Read(b[:]); err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b[:])), nil
	case tagString:
		return readString(r)
	default:
		return nil, dbcore.Newf(dbcore.KindIO, "unknown value tag %d", tag)
	}
}
