package common

var (
	IgnoreIdent = Identifier{Value: "_"}
	ItIdent     = Identifier{Value: "it"}
	ThisIdent   = Identifier{Value: "this"}
)

type Identifier struct {
	Value string
}

func (i Identifier) String() string {
	return i.Value
}

func NewIdentifier(name string) Identifier {
	return Identifier{name}
}
