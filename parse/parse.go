package parse

import (
	"github.com/garciat/kinfer/files"
	"github.com/garciat/kinfer/source"
)

type Parser interface {
	ParseFile(path string) (*source.FileDef, error)
	ParseSource(path, text string) (*source.FileDef, error)
}

func NewParser() Parser {
	return &parser{}
}

func (p *parser) ParseFile(path string) (*source.FileDef, error) {
	text, err := files.ReadSource(path)
	if err != nil {
		return nil, err
	}
	return p.ParseSource(path, text)
}

func (p *parser) ParseSource(path, text string) (*source.FileDef, error) {
	return ParseSource(path, text)
}
