package schema

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/patel999jay/uwacomm/codecerr"
)

// The declarative schema document understood by Load:
//
//	messages:
//	  - name: StatusReport
//	    id: 42
//	    max_bytes: 16
//	    fields:
//	      - {name: vehicle_id, type: uint, min: 0, max: 255}
//	      - {name: depth_cm, type: uint, min: 0, max: 10000}
//	      - {name: mode, type: enum, values: [idle, transit, survey]}
//	      - {name: battery, type: float, min: 0, max: 100, precision: 1}
//	      - {name: callsign, type: string, length: 8}
//	      - {name: active, type: bool}
type fileDoc struct {
	Messages []fileMessage `yaml:"messages"`
}

type fileMessage struct {
	Name     string      `yaml:"name"`
	ID       *int        `yaml:"id"`
	MaxBytes int         `yaml:"max_bytes"`
	Fields   []fileField `yaml:"fields"`
}

type fileField struct {
	Name      string    `yaml:"name"`
	Type      string    `yaml:"type"`
	Min       yaml.Node `yaml:"min"`
	Max       yaml.Node `yaml:"max"`
	Values    []string  `yaml:"values"`
	Length    int       `yaml:"length"`
	Precision int       `yaml:"precision"`
}

// Load parses a declarative schema document and returns the validated
// message descriptors in declaration order.
func Load(r io.Reader) ([]*MessageDescriptor, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading schema document")
	}

	var doc fileDoc
	if err = yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "parsing schema document")
	}
	if len(doc.Messages) == 0 {
		return nil, codecerr.New(codecerr.InvalidSchema, "schema document declares no messages")
	}

	descs := make([]*MessageDescriptor, 0, len(doc.Messages))
	for _, fm := range doc.Messages {
		desc, err := fm.descriptor()
		if err != nil {
			return nil, errors.Wrapf(err, "message %q", fm.Name)
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// LoadFile is a convenience wrapper around Load for schema files on disk.
func LoadFile(path string) ([]*MessageDescriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening schema file")
	}
	defer f.Close()

	return Load(f)
}

func (fm *fileMessage) descriptor() (*MessageDescriptor, error) {
	if fm.Name == "" {
		return nil, codecerr.New(codecerr.InvalidSchema, "message requires a name")
	}

	desc := &MessageDescriptor{
		Name:     fm.Name,
		ID:       NoID,
		MaxBytes: fm.MaxBytes,
	}
	if fm.ID != nil {
		desc.ID = *fm.ID
	}

	for _, ff := range fm.Fields {
		fd, err := ff.descriptor()
		if err != nil {
			return nil, err
		}
		desc.Fields = append(desc.Fields, *fd)
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return desc, nil
}

func (ff *fileField) descriptor() (*FieldDescriptor, error) {
	fd := &FieldDescriptor{
		Name:      ff.Name,
		Values:    ff.Values,
		Length:    ff.Length,
		Precision: ff.Precision,
	}

	switch ff.Type {
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
		return nil, codecerr.New(codecerr.InvalidSchema, "unknown field type %q", ff.Type).InField(ff.Name)
	}

	// Integer bounds must not travel through a float64, so the kind picks
	// the decode target.
	if fd.Kind == BoundedFloat {
		if err := decodeBound(ff.Min, &fd.Min); err != nil {
			return nil, errors.Wrapf(err, "field %q: min", ff.Name)
		}
		if err := decodeBound(ff.Max, &fd.Max); err != nil {
			return nil, errors.Wrapf(err, "field %q: max", ff.Name)
		}
	} else if fd.Kind == UInt || fd.Kind == SInt {
		if err := decodeBound(ff.Min, &fd.Lo); err != nil {
			return nil, errors.Wrapf(err, "field %q: min", ff.Name)
		}
		if err := decodeBound(ff.Max, &fd.Hi); err != nil {
			return nil, errors.Wrapf(err, "field %q: max", ff.Name)
		}
	}
	return fd, nil
}

func decodeBound(node yaml.Node, out interface{}) error {
	if node.Kind == 0 {
		return codecerr.New(codecerr.InvalidSchema, "bound is required")
	}
	return node.Decode(out)
}
