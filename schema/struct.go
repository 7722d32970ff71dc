package schema

import (
	"math"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/patel999jay/uwacomm/codecerr"
)

// Identifier is implemented by message types that carry a wire id. The id
// is descriptor metadata; it is never encoded as a body field.
type Identifier interface {
	UwacommID() int
}

// Sizer is implemented by message types that declare an advisory upper
// bound on their encoded body size.
type Sizer interface {
	UwacommMaxBytes() int
}

// tagName is the struct tag consulted by Describe. The tag declares the
// field kind followed by comma-separated kind parameters:
//
//	Depth    uint16  `uwacomm:"uint,min=0,max=10000"`
//	Heading  int16   `uwacomm:"int,min=-180,max=180"`
//	Mode     string  `uwacomm:"enum,values=idle|transit|survey"`
//	Callsign string  `uwacomm:"string,len=8"`
//	Seal     []byte  `uwacomm:"bytes,len=4"`
//	Temp     float64 `uwacomm:"float,min=-5,max=40,precision=2"`
//	Active   bool    `uwacomm:"bool"`
//
// Bool fields may omit the tag. A tag of "-" skips the field.
const tagName = "uwacomm"

type structBinding struct {
	desc  *MessageDescriptor
	index [][]int // struct field index per descriptor field
}

var bindingCache sync.Map // reflect.Type -> *structBinding

// Describe derives a validated MessageDescriptor from the uwacomm struct
// tags of v, which must be a struct or a pointer to one. Results are cached
// per type. If v implements Identifier or Sizer, the message id and the
// max_bytes limit are taken from those methods.
func Describe(v interface{}) (*MessageDescriptor, error) {
	b, err := bindingFor(v)
	if err != nil {
		return nil, err
	}
	return b.desc, nil
}

// ValuesOf extracts the ordered field values of v in the canonical codec
// types: bool, int64, string (enum and fixed strings), []byte and float64.
func ValuesOf(v interface{}) ([]interface{}, error) {
	b, err := bindingFor(v)
	if err != nil {
		return nil, err
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	values := make([]interface{}, len(b.desc.Fields))
	for i := range b.desc.Fields {
		f := &b.desc.Fields[i]
		fv := rv.FieldByIndex(b.index[i])

		switch f.Kind {
		case Bool:
			values[i] = fv.Bool()
		case UInt, SInt:
			switch fv.Kind() {
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				u := fv.Uint()
				if u > math.MaxInt64 {
					return nil, codecerr.New(codecerr.OutOfRange, "value %d exceeds the representable integer range", u).InField(f.Name)
				}
				values[i] = int64(u)
			default:
				values[i] = fv.Int()
			}
		case Enum, FixedString:
			values[i] = fv.String()
		case FixedBytes:
			values[i] = fv.Bytes()
		case BoundedFloat:
			values[i] = fv.Float()
		}
	}
	return values, nil
}

// Apply assigns the ordered canonical values produced by a decode back onto
// the fields of v, which must be a pointer to a struct of the same type
// that produced the values' descriptor.
func Apply(v interface{}, values []interface{}) error {
	b, err := bindingFor(v)
	if err != nil {
		return err
	}
	if len(values) != len(b.desc.Fields) {
		return codecerr.New(codecerr.InvalidSchema, "message has %d values but descriptor declares %d fields", len(values), len(b.desc.Fields))
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() {
		return codecerr.New(codecerr.InvalidSchema, "target must be a non-nil struct pointer, got %T", v)
	}
	rv = rv.Elem()

	for i := range b.desc.Fields {
		f := &b.desc.Fields[i]
		fv := rv.FieldByIndex(b.index[i])

		switch f.Kind {
		case Bool:
			fv.SetBool(values[i].(bool))
		case UInt, SInt:
			n := values[i].(int64)
			switch fv.Kind() {
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				if n < 0 || fv.OverflowUint(uint64(n)) {
					return codecerr.New(codecerr.OutOfRange, "decoded value %d overflows %s", n, fv.Type()).InField(f.Name)
				}
				fv.SetUint(uint64(n))
			default:
				if fv.OverflowInt(n) {
					return codecerr.New(codecerr.OutOfRange, "decoded value %d overflows %s", n, fv.Type()).InField(f.Name)
				}
				fv.SetInt(n)
			}
		case Enum, FixedString:
			fv.SetString(values[i].(string))
		case FixedBytes:
			fv.SetBytes(values[i].([]byte))
		case BoundedFloat:
			fv.SetFloat(values[i].(float64))
		}
	}
	return nil
}

func bindingFor(v interface{}) (*structBinding, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, codecerr.New(codecerr.InvalidSchema, "message must be a struct or struct pointer, got %T", v)
	}

	if cached, ok := bindingCache.Load(t); ok {
		return cached.(*structBinding), nil
	}

	b, err := buildBinding(t, v)
	if err != nil {
		return nil, err
	}
	bindingCache.Store(t, b)
	return b, nil
}

func buildBinding(t reflect.Type, v interface{}) (*structBinding, error) {
	b := &structBinding{
		desc: &MessageDescriptor{Name: t.Name(), ID: NoID},
	}

	if ident, ok := v.(Identifier); ok {
		b.desc.ID = ident.UwacommID()
	}
	if sizer, ok := v.(Sizer); ok {
		b.desc.MaxBytes = sizer.UwacommMaxBytes()
	}

	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		tag := sf.Tag.Get(tagName)
		if tag == "-" {
			continue
		}

		fd, err := parseFieldTag(sf, tag)
		if err != nil {
			return nil, err
		}
		if fd == nil {
			continue
		}
		b.desc.Fields = append(b.desc.Fields, *fd)
		b.index = append(b.index, sf.Index)
	}

	if err := b.desc.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func parseFieldTag(sf reflect.StructField, tag string) (*FieldDescriptor, error) {
	if tag == "" {
		// Untagged bool fields are self-describing; anything else needs
		// declared bounds to be encodable.
		if sf.Type.Kind() == reflect.Bool {
			return &FieldDescriptor{Name: sf.Name, Kind: Bool}, nil
		}
		return nil, codecerr.New(codecerr.InvalidSchema, "field requires a %q tag with bounds", tagName).InField(sf.Name)
	}

	parts := strings.Split(tag, ",")
	fd := &FieldDescriptor{Name: sf.Name}

	switch parts[0] {
	case "bool":
		fd.Kind = Bool
	case "uint":
		fd.Kind = UInt
	case "int":
		fd.Kind = SInt
	case "enum":
		fd.Kind = Enum
	case "bytes":
		fd.Kind = FixedBytes
	case "string":
		fd.Kind = FixedString
	case "float":
		fd.Kind = BoundedFloat
	default:
		return nil, codecerr.New(codecerr.InvalidSchema, "unknown field kind %q", parts[0]).InField(sf.Name)
	}

	for _, part := range parts[1:] {
		key, value, found := strings.Cut(part, "=")
		if !found {
			return nil, codecerr.New(codecerr.InvalidSchema, "malformed tag option %q", part).InField(sf.Name)
		}

		var err error
		switch key {
		case "min":
			err = parseBound(fd, value, true)
		case "max":
			err = parseBound(fd, value, false)
		case "values":
			fd.Values = strings.Split(value, "|")
		case "len":
			fd.Length, err = strconv.Atoi(value)
		case "precision":
			fd.Precision, err = strconv.Atoi(value)
		default:
			return nil, codecerr.New(codecerr.InvalidSchema, "unknown tag option %q", key).InField(sf.Name)
		}
		if err != nil {
			return nil, codecerr.Wrap(err, codecerr.InvalidSchema, "malformed tag option %q", part).InField(sf.Name)
		}
	}

	if err := checkFieldType(sf.Type, fd.Kind); err != nil {
		return nil, err.InField(sf.Name)
	}
	return fd, nil
}

func parseBound(fd *FieldDescriptor, value string, lower bool) error {
	if fd.Kind == BoundedFloat {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if lower {
			fd.Min = f
		} else {
			fd.Max = f
		}
		return nil
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return err
	}
	if lower {
		fd.Lo = n
	} else {
		fd.Hi = n
	}
	return nil
}

func checkFieldType(t reflect.Type, kind Kind) *codecerr.Error {
	ok := false
	switch kind {
	case Bool:
		ok = t.Kind() == reflect.Bool
	case UInt, SInt:
		switch t.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
			reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			ok = true
		}
	case Enum, FixedString:
		ok = t.Kind() == reflect.String
	case FixedBytes:
		ok = t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
	case BoundedFloat:
		ok = t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64
	}
	if !ok {
		return codecerr.New(codecerr.InvalidSchema, "go type %s is not compatible with field kind %s", t, kind)
	}
	return nil
}
