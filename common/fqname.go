package common

import (
	"strings"
)

// FqName is a dotted package name such as `kotlin.collections`.
type FqName string

const RootFqName FqName = ""

func (n FqName) IsRoot() bool {
	return n == RootFqName
}

func (n FqName) Segments() []string {
	if n.IsRoot() {
		return nil
	}
	return strings.Split(string(n), ".")
}

func (n FqName) ShortName() Identifier {
	parts := n.Segments()
	if len(parts) == 0 {
		return Identifier{}
	}
	return NewIdentifier(parts[len(parts)-1])
}

func (n FqName) Parent() FqName {
	i := strings.LastIndex(string(n), ".")
	if i == -1 {
		return RootFqName
	}
	return n[:i]
}

func (n FqName) Child(name Identifier) FqName {
	if n.IsRoot() {
		return FqName(name.Value)
	}
	return FqName(string(n) + "." + name.Value)
}

func (n FqName) String() string {
	if n.IsRoot() {
		return "<root>"
	}
	return string(n)
}
