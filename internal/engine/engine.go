package engine

import (
	"errors"
	"fmt"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// Object receives the members of a decoded object in input order.
type Object interface {
	Set(key string, v any)
}

// Builder controls how containers and numbers are materialized.
type Builder struct {
	// NewObject returns an empty object; nil decodes objects into map[string]any.
	NewObject func() Object
	// Number converts number text; nil keeps the text as a string.
	Number func(string) (any, error)
}

// ErrTrailingData is returned when a value is followed by more tokens.
var ErrTrailingData = errors.New("engine: unexpected data after top-level value")

type mapObject map[string]any

func (m mapObject) Set(k string, v any) { m[k] = v }

// Decode builds a single value from the token stream and requires the stream
// to end right after it.
func Decode(src TokenSource, b Builder) (any, error) {
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	v, err := b.value(src, tok)
	if err != nil {
		return nil, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}
		return nil, ErrTrailingData
	}
	return v, nil
}

func (b Builder) value(src TokenSource, tok Token) (any, error) {
	switch tok.Kind {
	case KindBeginObject:
		return b.object(src)
	case KindBeginArray:
		return b.array(src)
	case KindString:
		return tok.String, nil
	case KindNumber:
		if b.Number == nil {
			return tok.Number, nil
		}
		return b.Number(tok.Number)
	case KindBool:
		return tok.Bool, nil
	case KindNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("engine: unexpected token kind %d at offset %d", tok.Kind, tok.Offset)
	}
}

func (b Builder) object(src TokenSource) (any, error) {
	var obj Object
	var m mapObject
	if b.NewObject != nil {
		obj = b.NewObject()
	} else {
		m = make(mapObject)
		obj = m
	}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok.Kind == KindEndObject {
			if m != nil {
				return map[string]any(m), nil
			}
			return obj, nil
		}
		if tok.Kind != KindKey {
			return nil, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		v, err := b.value(src, vt)
		if err != nil {
			return nil, err
		}
		obj.Set(tok.String, v)
	}
}

func (b Builder) array(src TokenSource) (any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, unexpectedEOF(err)
		}
		if tok.Kind == KindEndArray {
			return arr, nil
		}
		v, err := b.value(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
