// Package coerce converts raw recognized strings into declared argument types.
package coerce

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
)

// Tag names the declared target type of a vocabulary argument.
type Tag string

const (
	TagNone    Tag = "none"
	TagString  Tag = "string"
	TagBool    Tag = "bool"
	TagInt     Tag = "int"
	TagInt8    Tag = "int8"
	TagInt16   Tag = "int16"
	TagInt32   Tag = "int32"
	TagInt64   Tag = "int64"
	TagUint    Tag = "uint"
	TagUint8   Tag = "uint8"
	TagUint16  Tag = "uint16"
	TagUint32  Tag = "uint32"
	TagUint64  Tag = "uint64"
	TagFloat32 Tag = "float32"
	TagFloat64 Tag = "float64"
	TagDecimal Tag = "decimal"
	TagTime    Tag = "time"
)

// Func converts one raw recognized string into its typed value.
type Func func(raw string) (any, error)

// Error reports a recognized value that could not be converted to its tag.
type Error struct {
	Tag Tag
	Raw string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("coerce %q as %s: %v", e.Raw, e.Tag, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Registry maps type tags to conversion functions. It is built once at
// startup and read-only afterwards.
type Registry struct {
	funcs map[Tag]Func
}

// NewRegistry returns a registry preloaded with all built-in tags.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[Tag]Func)}

	identity := func(raw string) (any, error) { return raw, nil }
	r.funcs[TagNone] = identity
	r.funcs[TagString] = identity

	r.funcs[TagBool] = func(raw string) (any, error) {
		return strconv.ParseBool(strings.TrimSpace(raw))
	}

	r.funcs[TagInt] = signed(0, func(v int64) any { return int(v) })
	r.funcs[TagInt8] = signed(8, func(v int64) any { return int8(v) })
	r.funcs[TagInt16] = signed(16, func(v int64) any { return int16(v) })
	r.funcs[TagInt32] = signed(32, func(v int64) any { return int32(v) })
	r.funcs[TagInt64] = signed(64, func(v int64) any { return v })

	r.funcs[TagUint] = unsigned(0, func(v uint64) any { return uint(v) })
	r.funcs[TagUint8] = unsigned(8, func(v uint64) any { return uint8(v) })
	r.funcs[TagUint16] = unsigned(16, func(v uint64) any { return uint16(v) })
	r.funcs[TagUint32] = unsigned(32, func(v uint64) any { return uint32(v) })
	r.funcs[TagUint64] = unsigned(64, func(v uint64) any { return v })

	r.funcs[TagFloat32] = func(raw string) (any, error) {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 32)
		if err != nil {
			return nil, err
		}
		return float32(v), nil
	}
	r.funcs[TagFloat64] = func(raw string) (any, error) {
		return strconv.ParseFloat(strings.TrimSpace(raw), 64)
	}

	r.funcs[TagDecimal] = func(raw string) (any, error) {
		return decimal.NewFromString(strings.TrimSpace(raw))
	}

	r.funcs[TagTime] = func(raw string) (any, error) {
		return dateparse.ParseAny(strings.TrimSpace(raw))
	}

	return r
}

// Register installs or replaces the conversion function for a tag.
func (r *Registry) Register(tag Tag, fn Func) {
	r.funcs[tag] = fn
}

// Known reports whether a conversion function exists for tag.
func (r *Registry) Known(tag Tag) bool {
	_, ok := r.funcs[tag]
	return ok
}

// Coerce converts raw into tag's typed value. Failures are *Error.
func (r *Registry) Coerce(tag Tag, raw string) (any, error) {
	fn, ok := r.funcs[tag]
	if !ok {
		return nil, &Error{Tag: tag, Raw: raw, Err: fmt.Errorf("unknown type tag")}
	}
	value, err := fn(raw)
	if err != nil {
		return nil, &Error{Tag: tag, Raw: raw, Err: err}
	}
	return value, nil
}

// ParseTag validates a tag string from vocabulary configuration.
func ParseTag(s string) (Tag, error) {
	tag := Tag(strings.ToLower(strings.TrimSpace(s)))
	switch tag {
	case TagNone, TagString, TagBool,
		TagInt, TagInt8, TagInt16, TagInt32, TagInt64,
		TagUint, TagUint8, TagUint16, TagUint32, TagUint64,
		TagFloat32, TagFloat64, TagDecimal, TagTime:
		return tag, nil
	case "":
		return TagNone, nil
	default:
		return "", fmt.Errorf("unknown type tag %q", s)
	}
}

func signed(bits int, cast func(int64) any) Func {
	return func(raw string) (any, error) {
		v, err := strconv.ParseInt(strings.TrimSpace(raw), 10, bits)
		if err != nil {
			return nil, err
		}
		return cast(v), nil
	}
}

func unsigned(bits int, cast func(uint64) any) Func {
	return func(raw string) (any, error) {
		v, err := strconv.ParseUint(strings.TrimSpace(raw), 10, bits)
		if err != nil {
			return nil, err
		}
		return cast(v), nil
	}
}
